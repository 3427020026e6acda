package mapping

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"adbridge/internal/domain"
)

// Lookup resolves a card title to its downstream client and campaign.
type Lookup interface {
	Resolve(cardTitle string) (domain.CampaignMapping, error)
}

type row struct {
	client  string
	mapping domain.CampaignMapping
}

// CSVLookup matches the client-name prefix of a card title ("Client:
// campaign name") against rows of a client,clientId,campaignId,campaignCode
// CSV file, case-insensitively.
type CSVLookup struct {
	rows []row
}

// LoadCSV reads the mapping file once at startup.
func LoadCSV(path string) (*CSVLookup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mapping: open %s: %w", path, err)
	}
	defer f.Close()
	return parseCSV(f)
}

func parseCSV(r io.Reader) (*CSVLookup, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("mapping: parse csv: %w", err)
	}
	lookup := &CSVLookup{}
	for i, record := range records {
		if len(record) < 3 {
			continue
		}
		client := strings.TrimSpace(record[0])
		if client == "" || (i == 0 && strings.EqualFold(client, "client")) {
			continue
		}
		m := domain.CampaignMapping{
			ClientID:   strings.TrimSpace(record[1]),
			CampaignID: strings.TrimSpace(record[2]),
		}
		if len(record) > 3 {
			m.CampaignCode = strings.TrimSpace(record[3])
		}
		lookup.rows = append(lookup.rows, row{client: strings.ToLower(client), mapping: m})
	}
	return lookup, nil
}

// Resolve matches the title prefix before the first ":" (or the whole
// title when no colon is present) against the client column.
func (l *CSVLookup) Resolve(cardTitle string) (domain.CampaignMapping, error) {
	prefix := cardTitle
	if idx := strings.Index(cardTitle, ":"); idx >= 0 {
		prefix = cardTitle[:idx]
	}
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	for _, r := range l.rows {
		if r.client == prefix {
			return r.mapping, nil
		}
	}
	return domain.CampaignMapping{}, fmt.Errorf("mapping: client %q: %w", prefix, domain.ErrNoMapping)
}
