package domain

// Attachment references one file attached to the source card. Supplied by
// the ingestion layer and never mutated here.
type Attachment struct {
	ID       string
	Name     string
	MimeType string
	URL      string
	IsUpload bool
}

// AssetCandidate is a downloaded attachment with whatever dimension
// information could be probed. Rank encodes classification confidence:
// 2 for an exact square at a canonical high-resolution size, 1 for an
// exact square at any other size, 0 when included only by filename hint
// or by the unknown-dimensions fallback.
type AssetCandidate struct {
	Data      []byte
	Filename  string
	Width     int
	Height    int
	Rank      int
	PixelArea int
}

// AdMeta carries the optional presentation fields extracted from the card
// description. Treated as an opaque bag; empty strings mean absent.
type AdMeta struct {
	Primary     string
	Headline    string
	Description string
	CTA         string
	URL         string
	DisplayLink string
}
