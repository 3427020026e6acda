package source

import "adbridge/internal/domain"

// Card is the inbound task card as supplied by the source platform's
// webhook payload.
type Card struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Desc        string              `json:"desc"`
	Attachments []domain.Attachment `json:"attachments"`
}

// WebhookEvent is the envelope the source platform posts to our hook.
type WebhookEvent struct {
	Action struct {
		Type string `json:"type"`
	} `json:"action"`
	Card Card           `json:"card"`
	Meta *domain.AdMeta `json:"meta,omitempty"`
}
