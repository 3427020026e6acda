package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"adbridge/internal/domain"
	"adbridge/internal/infra"
	"adbridge/internal/sqlinline"
)

// Store persists completed CreativeRecords for audit. Only finished runs
// are recorded; in-flight jobs are never written anywhere.
type Store struct {
	runner infra.SQLExecutor
	logger infra.Logger
}

func NewStore(runner infra.SQLExecutor, logger infra.Logger) *Store {
	return &Store{runner: runner, logger: logger}
}

// Record inserts one row per successful publish run.
func (s *Store) Record(ctx context.Context, cardID string, rec domain.CreativeRecord, previews []string) error {
	if s == nil || s.runner == nil {
		return nil
	}
	_, err := s.runner.Exec(
		ctx,
		sqlinline.QInsertCreativeRecord,
		uuid.NewString(),
		cardID,
		string(rec.Mode),
		rec.CampaignID,
		rec.EntityID,
		rec.Paid,
		rec.UploadedCount,
		strings.Join(previews, "\n"),
	)
	if err != nil {
		return fmt.Errorf("history: record publish for card %s: %w", cardID, err)
	}
	return nil
}

// Row is a stored publish outcome.
type Row struct {
	ID            string
	Mode          string
	CampaignID    string
	EntityID      string
	Paid          bool
	UploadedCount int
	CreatedAt     time.Time
}

// LastForCard returns the most recent publish outcome for a card, or
// (zero, false) when none exists.
func (s *Store) LastForCard(ctx context.Context, cardID string) (Row, bool, error) {
	if s == nil || s.runner == nil {
		return Row{}, false, nil
	}
	var r Row
	err := s.runner.QueryRow(ctx, sqlinline.QLastRecordForCard, cardID).
		Scan(&r.ID, &r.Mode, &r.CampaignID, &r.EntityID, &r.Paid, &r.UploadedCount, &r.CreatedAt)
	if err != nil {
		if infra.IsNoRows(err) {
			return Row{}, false, nil
		}
		return Row{}, false, fmt.Errorf("history: last record for card %s: %w", cardID, err)
	}
	return r, true, nil
}
