package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"os"

	"github.com/joho/godotenv"

	"adbridge/internal/adpiler"
	"adbridge/internal/classify"
	"adbridge/internal/domain"
	"adbridge/internal/infra"
	"adbridge/internal/mapping"
	"adbridge/internal/pipeline"
	"adbridge/internal/preview"
	"adbridge/internal/publish"
	"adbridge/internal/source"
)

// payload is the one-shot input: a card plus optional extracted ad fields.
type payload struct {
	Card source.Card    `json:"card"`
	Meta *domain.AdMeta `json:"meta,omitempty"`
}

func main() {
	input := flag.String("input", "-", "path to the card payload JSON, or - for stdin")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	raw, err := readInput(*input)
	if err != nil {
		logger.Fatal().Err(err).Msg("publish: read input failed")
	}
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		logger.Fatal().Err(err).Msg("publish: decode input failed")
	}
	if p.Card.ID == "" && p.Card.Name == "" {
		logger.Fatal().Msg("publish: payload carries no card")
	}

	orch, err := buildOrchestrator(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("publish: failed to build pipeline")
	}

	meta := domain.AdMeta{}
	if p.Meta != nil {
		meta = *p.Meta
	}
	result, err := orch.Run(context.Background(), pipeline.Job{Card: p.Card, Meta: meta})
	if err != nil {
		logger.Fatal().Err(err).Str("card_id", p.Card.ID).Msg("publish: failed")
	}

	out, _ := json.MarshalIndent(map[string]any{
		"mode":           result.Record.Mode,
		"campaign_id":    result.Record.CampaignID,
		"entity_id":      result.Record.EntityID,
		"paid":           result.Record.Paid,
		"uploaded_count": result.Record.UploadedCount,
		"preview_urls":   result.PreviewURLs,
	}, "", "  ")
	os.Stdout.Write(append(out, '\n'))
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func buildOrchestrator(cfg *infra.Config, logger infra.Logger) (*pipeline.Orchestrator, error) {
	api, err := adpiler.NewClient(adpiler.Options{
		BaseURL: cfg.AdpilerBaseURL,
		Token:   cfg.AdpilerToken,
		Logger:  &logger,
	})
	if err != nil {
		return nil, err
	}

	src := source.NewClient(source.Options{
		BaseURL:  cfg.SourceBaseURL,
		APIKey:   cfg.SourceAPIKey,
		APIToken: cfg.SourceAPIToken,
		Logger:   logger,
	})

	var lookup mapping.Lookup
	if cfg.MappingCSVPath != "" {
		csvLookup, err := mapping.LoadCSV(cfg.MappingCSVPath)
		if err != nil {
			return nil, err
		}
		lookup = csvLookup
	}

	var forced *domain.Mode
	if cfg.ForcedMode != "" {
		mode, err := domain.ParseMode(cfg.ForcedMode)
		if err != nil {
			return nil, err
		}
		forced = &mode
	}

	return pipeline.New(pipeline.Options{
		Classifier:        classify.NewClassifier(src.DownloadAttachment, classify.ImageConfigProber{}, logger),
		Publisher:         publish.NewPublisher(publish.Options{API: api, Logger: logger}),
		Previews:          preview.NewResolver(api, cfg.PreviewDomain, cfg.CampaignCode, logger),
		Mapping:           lookup,
		Comments:          src,
		Logger:            logger,
		ForcedMode:        forced,
		PaidDefault:       cfg.PaidDefault,
		DefaultClientID:   cfg.DefaultClientID,
		DefaultCampaignID: cfg.DefaultCampaignID,
	}), nil
}
