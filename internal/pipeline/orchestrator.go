package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"adbridge/internal/classify"
	"adbridge/internal/domain"
	"adbridge/internal/history"
	"adbridge/internal/infra"
	"adbridge/internal/mapping"
	"adbridge/internal/preview"
	"adbridge/internal/publish"
	"adbridge/internal/source"
)

// CommentPoster is the fire-and-forget notification sink; implementations
// must swallow their own failures.
type CommentPoster interface {
	PostComment(ctx context.Context, cardID, text string)
}

// Job is one card to publish. Jobs are independent: concurrent Run calls
// share no mutable state.
type Job struct {
	Card source.Card
	Meta domain.AdMeta
}

// Options wires the orchestrator's collaborators. Mapping, Comments and
// History are optional.
type Options struct {
	Classifier        *classify.Classifier
	Publisher         *publish.Publisher
	Previews          *preview.Resolver
	Mapping           mapping.Lookup
	Comments          CommentPoster
	History           *history.Store
	Logger            infra.Logger
	ForcedMode        *domain.Mode
	PaidDefault       bool
	DefaultClientID   string
	DefaultCampaignID string
}

// Orchestrator sequences one publish job: classify, select mode, publish,
// resolve previews, record, summarize. Strictly sequential; the first
// fatal condition aborts the remainder.
type Orchestrator struct {
	opts Options
}

func New(opts Options) *Orchestrator {
	return &Orchestrator{opts: opts}
}

// Run executes the pipeline for one card. Exactly one CreativeRecord is
// produced, or an error before any record exists.
func (o *Orchestrator) Run(ctx context.Context, job Job) (domain.PublishResult, error) {
	logger := o.opts.Logger

	m, err := o.resolveMapping(job.Card.Name)
	if err != nil {
		return domain.PublishResult{}, err
	}
	logger.Info().
		Str("card_id", job.Card.ID).
		Str("campaign_id", m.CampaignID).
		Msg("pipeline: mapping resolved")

	assets := o.opts.Classifier.Classify(ctx, job.Card.Attachments)

	mode := publish.SelectMode(job.Card.Name, assets.DisplayAsset, len(assets.SquareAssets), len(assets.NonDisplayImages), o.opts.ForcedMode)
	paid := publish.ResolvePaid(job.Card.Name, o.opts.PaidDefault)
	logger.Info().
		Str("card_id", job.Card.ID).
		Str("mode", string(mode)).
		Bool("paid", paid).
		Int("squares", len(assets.SquareAssets)).
		Int("non_display_images", len(assets.NonDisplayImages)).
		Msg("pipeline: mode selected")

	rec, err := o.opts.Publisher.Publish(ctx, publish.Request{
		Title:      job.Card.Name,
		CampaignID: m.CampaignID,
		Paid:       paid,
		Meta:       job.Meta,
		Mode:       mode,
		Assets:     assets,
	})
	if err != nil {
		return domain.PublishResult{}, fmt.Errorf("pipeline: mode %s: %w", mode, err)
	}

	var previews []string
	if o.opts.Previews != nil && rec.EntityID != "" {
		previews = o.opts.Previews.Resolve(ctx, m, m.CampaignID, rec.EntityID)
	}

	if o.opts.History != nil {
		if err := o.opts.History.Record(ctx, job.Card.ID, rec, previews); err != nil {
			logger.Warn().Err(err).Str("card_id", job.Card.ID).Msg("pipeline: history record failed")
		}
	}

	if o.opts.Comments != nil {
		o.opts.Comments.PostComment(ctx, job.Card.ID, summary(rec, previews))
	}

	logger.Info().
		Str("card_id", job.Card.ID).
		Str("entity_id", rec.EntityID).
		Int("uploaded", rec.UploadedCount).
		Msg("pipeline: publish complete")
	return domain.PublishResult{Record: rec, PreviewURLs: previews}, nil
}

func (o *Orchestrator) resolveMapping(cardTitle string) (domain.CampaignMapping, error) {
	if o.opts.Mapping != nil {
		m, err := o.opts.Mapping.Resolve(cardTitle)
		if err == nil {
			return m, nil
		}
		if !errors.Is(err, domain.ErrNoMapping) {
			return domain.CampaignMapping{}, fmt.Errorf("pipeline: %w", err)
		}
	}
	if o.opts.DefaultCampaignID != "" {
		return domain.CampaignMapping{
			ClientID:   o.opts.DefaultClientID,
			CampaignID: o.opts.DefaultCampaignID,
		}, nil
	}
	return domain.CampaignMapping{}, fmt.Errorf("pipeline: card %q: %w", cardTitle, domain.ErrNoMapping)
}

func summary(rec domain.CreativeRecord, previews []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Published %s creative %s to campaign %s", rec.Mode, rec.EntityID, rec.CampaignID)
	if rec.Mode == domain.ModePostCarousel {
		fmt.Fprintf(&b, " (%d slides)", rec.UploadedCount)
	}
	if !rec.Paid {
		b.WriteString(" [organic]")
	}
	for _, p := range previews {
		fmt.Fprintf(&b, "\nPreview: %s", p)
	}
	return b.String()
}
