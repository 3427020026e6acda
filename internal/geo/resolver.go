package geo

import (
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"

	"adbridge/internal/infra"
)

// Resolver enriches webhook request logs with the caller's country. It is
// optional and best-effort: a nil resolver or any lookup failure yields an
// empty country code.
type Resolver struct {
	reader *geoip2.Reader
	logger infra.Logger
}

// Open loads the MaxMind database at path. An empty path disables the
// resolver (returns nil, nil).
func Open(path string, logger infra.Logger) (*Resolver, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}
	return &Resolver{reader: reader, logger: logger}, nil
}

// Country returns the ISO country code for the given IP, or "" when the
// resolver is disabled or the lookup fails.
func (r *Resolver) Country(ip string) string {
	if r == nil || r.reader == nil {
		return ""
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ""
	}
	record, err := r.reader.Country(parsed)
	if err != nil {
		r.logger.Debug().Err(err).Str("ip", ip).Msg("geo: country lookup failed")
		return ""
	}
	if record == nil {
		return ""
	}
	return record.Country.IsoCode
}

// Close releases the underlying database reader.
func (r *Resolver) Close() error {
	if r == nil || r.reader == nil {
		return nil
	}
	return r.reader.Close()
}
