package preview

import (
	"context"
	"fmt"

	"adbridge/internal/adpiler"
	"adbridge/internal/domain"
	"adbridge/internal/infra"
)

// Resolver builds shareable preview links for created social entities.
// Resolution is best-effort: any failure is logged and yields no previews,
// never an error.
type Resolver struct {
	api      *adpiler.Client
	domain   string
	override string
	logger   infra.Logger
}

func NewResolver(api *adpiler.Client, previewDomain, codeOverride string, logger infra.Logger) *Resolver {
	return &Resolver{api: api, domain: previewDomain, override: codeOverride, logger: logger}
}

// Resolve derives the campaign code (mapping, then configured override,
// then platform lookup) and builds the preview URL for the entity.
func (r *Resolver) Resolve(ctx context.Context, mapping domain.CampaignMapping, campaignID, entityID string) []string {
	code := mapping.CampaignCode
	if code == "" {
		code = r.override
	}
	if code == "" {
		looked, err := r.lookupCode(ctx, campaignID)
		if err != nil {
			r.logger.Warn().Err(err).Str("campaign_id", campaignID).Msg("preview: campaign code lookup failed")
			return nil
		}
		code = looked
	}
	if code == "" {
		r.logger.Warn().Str("campaign_id", campaignID).Msg("preview: no campaign code available")
		return nil
	}
	return []string{fmt.Sprintf("https://%s/%s?ad=%s", r.domain, code, entityID)}
}

func (r *Resolver) lookupCode(ctx context.Context, campaignID string) (string, error) {
	res, err := r.api.GetJSON(ctx, "campaigns/"+campaignID)
	if err != nil {
		return "", err
	}
	return res.String("code"), nil
}
