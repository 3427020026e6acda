package publish

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"adbridge/internal/adpiler"
	"adbridge/internal/classify"
	"adbridge/internal/domain"
	"adbridge/internal/infra"
)

// slidePause is the fixed wait between carousel slide uploads; the
// platform rate-limits bursts and enforces slide order by call order.
const slidePause = 200 * time.Millisecond

// Request carries everything one publish run needs.
type Request struct {
	Title      string
	CampaignID string
	Paid       bool
	Meta       domain.AdMeta
	Mode       domain.Mode
	Assets     classify.Result
}

// Publisher drives the platform's multi-call creation protocol, one
// strategy per publish mode.
type Publisher struct {
	api    *adpiler.Client
	logger infra.Logger
	pause  time.Duration
	sleep  func(time.Duration)
}

// Options configures a Publisher. Sleep is swapped out in tests.
type Options struct {
	API    *adpiler.Client
	Logger infra.Logger
	Pause  time.Duration
	Sleep  func(time.Duration)
}

func NewPublisher(opts Options) *Publisher {
	pause := opts.Pause
	if pause <= 0 {
		pause = slidePause
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Publisher{api: opts.API, logger: opts.Logger, pause: pause, sleep: sleep}
}

// Publish dispatches on the selected mode. A successful run returns the
// only CreativeRecord the job will ever produce; a failed run returns none.
func (p *Publisher) Publish(ctx context.Context, req Request) (domain.CreativeRecord, error) {
	switch req.Mode {
	case domain.ModeDisplay:
		return p.publishDisplay(ctx, req)
	case domain.ModePost:
		return p.publishPost(ctx, req)
	case domain.ModePostCarousel:
		return p.publishCarousel(ctx, req)
	default:
		return domain.CreativeRecord{}, fmt.Errorf("publish: unsupported mode %q", req.Mode)
	}
}

func (p *Publisher) publishDisplay(ctx context.Context, req Request) (domain.CreativeRecord, error) {
	asset := req.Assets.DisplayAsset
	if asset == nil {
		return domain.CreativeRecord{}, fmt.Errorf("publish display for %q: %w", req.Title, domain.ErrNoDisplayAsset)
	}

	form := adpiler.NewForm()
	form.Set("name", req.Title)
	form.Set("width", "300")
	form.Set("height", "600")
	if validLandingURL(req.Meta.URL) {
		form.Set("url", req.Meta.URL)
	}
	form.AddFile("file", asset.Filename, asset.Data)

	res, err := p.api.PostMultipart(ctx, fmt.Sprintf("campaigns/%s/ads", req.CampaignID), form)
	if err != nil {
		return domain.CreativeRecord{}, fmt.Errorf("publish display: create ad: %w", err)
	}
	p.logger.Info().Str("entity_id", res.ID()).Msg("publish: display ad created")
	return domain.CreativeRecord{
		Mode:          domain.ModeDisplay,
		CampaignID:    req.CampaignID,
		Paid:          req.Paid,
		EntityID:      res.ID(),
		UploadedCount: 1,
	}, nil
}

func (p *Publisher) publishPost(ctx context.Context, req Request) (domain.CreativeRecord, error) {
	media := pickPostMedia(req.Assets)
	if media == nil {
		return domain.CreativeRecord{}, fmt.Errorf("publish post for %q: %w", req.Title, domain.ErrNoUsableMedia)
	}

	entityID, err := p.createSocialAd(ctx, req, "post")
	if err != nil {
		return domain.CreativeRecord{}, fmt.Errorf("publish post: %w", err)
	}

	if err := p.uploadSlide(ctx, entityID, *media, req.Meta); err != nil {
		// The entity exists upstream, but a post with zero slides is
		// useless; surface the failure instead of a partial record.
		return domain.CreativeRecord{}, fmt.Errorf("publish post: slide for entity %s: %w (%v)", entityID, domain.ErrNoSlidesUploaded, err)
	}

	return domain.CreativeRecord{
		Mode:          domain.ModePost,
		CampaignID:    req.CampaignID,
		Paid:          req.Paid,
		EntityID:      entityID,
		UploadedCount: 1,
	}, nil
}

func (p *Publisher) publishCarousel(ctx context.Context, req Request) (domain.CreativeRecord, error) {
	slides := carouselSlides(req.Assets)
	if len(slides) == 0 {
		return domain.CreativeRecord{}, fmt.Errorf("publish carousel for %q: %w", req.Title, domain.ErrNoUsableMedia)
	}
	sortByFilenameNumeric(slides)

	entityID, err := p.createSocialAd(ctx, req, "post-carousel")
	if err != nil {
		return domain.CreativeRecord{}, fmt.Errorf("publish carousel: %w", err)
	}

	uploaded := 0
	for i, slide := range slides {
		if i > 0 {
			p.sleep(p.pause)
		}
		if err := p.uploadSlide(ctx, entityID, slide, req.Meta); err != nil {
			p.logger.Warn().Err(err).
				Str("entity_id", entityID).
				Str("slide", slide.Filename).
				Msg("publish: carousel slide skipped")
			continue
		}
		uploaded++
	}
	if uploaded == 0 {
		return domain.CreativeRecord{}, fmt.Errorf("publish carousel: entity %s: %w", entityID, domain.ErrNoSlidesUploaded)
	}

	return domain.CreativeRecord{
		Mode:          domain.ModePostCarousel,
		CampaignID:    req.CampaignID,
		Paid:          req.Paid,
		EntityID:      entityID,
		UploadedCount: uploaded,
	}, nil
}

func (p *Publisher) createSocialAd(ctx context.Context, req Request, adType string) (string, error) {
	form := adpiler.NewForm()
	form.Set("type", adType)
	form.Set("name", req.Title)
	if req.Meta.Primary != "" {
		form.Set("message", req.Meta.Primary)
	}
	form.SetBool("paid", req.Paid)

	res, err := p.api.PostMultipart(ctx, fmt.Sprintf("campaigns/%s/social-ads", req.CampaignID), form)
	if err != nil {
		return "", fmt.Errorf("create social ad: %w", err)
	}
	id := res.ID()
	if id == "" {
		return "", fmt.Errorf("create social ad: response carried no id: %s", res.Raw)
	}
	p.logger.Info().Str("entity_id", id).Str("type", adType).Msg("publish: social ad created")
	return id, nil
}

func (p *Publisher) uploadSlide(ctx context.Context, entityID string, asset domain.AssetCandidate, meta domain.AdMeta) error {
	form := adpiler.NewForm()
	if meta.CTA != "" {
		form.Set("cta", meta.CTA)
	}
	if meta.DisplayLink != "" {
		form.Set("display_link", meta.DisplayLink)
	}
	if meta.Headline != "" {
		form.Set("headline", meta.Headline)
	}
	if meta.Description != "" {
		form.Set("description", meta.Description)
	}
	if validLandingURL(meta.URL) {
		form.Set("url", meta.URL)
	}
	form.AddFile("file", asset.Filename, asset.Data)

	if _, err := p.api.PostMultipart(ctx, fmt.Sprintf("social-ads/%s/slides", entityID), form); err != nil {
		return err
	}
	return nil
}

// pickPostMedia selects the single media item for a plain post: first
// square, else first video, else the first attachment of any type.
func pickPostMedia(assets classify.Result) *domain.AssetCandidate {
	if len(assets.SquareAssets) > 0 {
		return &assets.SquareAssets[0]
	}
	if assets.FirstVideo != nil {
		return assets.FirstVideo
	}
	return assets.FirstAttachment
}

// carouselSlides picks the best-available image set: confident squares,
// else images without a display hint, else any image.
func carouselSlides(assets classify.Result) []domain.AssetCandidate {
	var source []domain.AssetCandidate
	switch {
	case len(assets.SquareAssets) > 0:
		source = assets.SquareAssets
	case len(assets.NonDisplayImages) > 0:
		source = assets.NonDisplayImages
	default:
		source = assets.Images
	}
	slides := make([]domain.AssetCandidate, len(source))
	copy(slides, source)
	return slides
}

// sortByFilenameNumeric orders slides so img2 sorts before img10.
func sortByFilenameNumeric(slides []domain.AssetCandidate) {
	cmp := collate.New(language.Und, collate.Numeric, collate.IgnoreCase)
	sort.SliceStable(slides, func(i, j int) bool {
		return cmp.CompareString(slides[i].Filename, slides[j].Filename) < 0
	})
}

func validLandingURL(raw string) bool {
	if raw == "" {
		return false
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
