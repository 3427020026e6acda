package domain

// CreativeRecord is the outcome of one publish run. Created by the
// publisher once the run succeeds and never mutated afterwards; a failed
// run produces no record at all.
type CreativeRecord struct {
	Mode          Mode
	CampaignID    string
	Paid          bool
	EntityID      string
	UploadedCount int
}

// PublishResult is what the pipeline hands back to its caller.
type PublishResult struct {
	Record      CreativeRecord
	PreviewURLs []string
}

// CampaignMapping resolves a card to its downstream client and campaign.
type CampaignMapping struct {
	ClientID     string
	CampaignID   string
	CampaignCode string
}
