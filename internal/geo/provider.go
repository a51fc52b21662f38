// ABOUTME: Read-only region lookup provider for colo identifiers
// ABOUTME: Embedded IATA table with an optional HTTP refresh, cached with TTLs
package geo

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/echolat/echolat-go/internal/logging"
	"github.com/jellydator/ttlcache/v3"
)

// Location is a human-readable description of a colo identifier.
type Location struct {
	IATA    string `json:"iata"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// Config holds provider configuration.
type Config struct {
	// RefreshURL, if set, points at a JSON map of IATA code to
	// Location consulted for codes missing from the embedded table.
	RefreshURL string
	// TTL bounds how long a remotely fetched entry is served before it
	// is refetched. Defaults to an hour.
	TTL time.Duration
}

// Provider resolves colo identifiers to locations. It is read-only from
// the consumer's point of view; the refresh policy is owned here.
// Reporting and export are the only consumers.
type Provider struct {
	config Config
	cache  *ttlcache.Cache[string, Location]
	client *http.Client
}

// NewProvider creates a provider. Call Start to enable cache expiry and
// Stop to release it.
func NewProvider(config Config) *Provider {
	if config.TTL == 0 {
		config.TTL = time.Hour
	}

	return &Provider{
		config: config,
		cache:  ttlcache.New[string, Location](ttlcache.WithTTL[string, Location](config.TTL)),
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Start begins background expiry of cached remote entries.
func (p *Provider) Start() {
	go p.cache.Start()
}

// Stop halts background expiry.
func (p *Provider) Stop() {
	p.cache.Stop()
}

// Lookup resolves a colo code. Embedded entries always resolve; remote
// entries are fetched at most once per TTL window.
func (p *Provider) Lookup(code string) (Location, bool) {
	if loc, ok := embedded[code]; ok {
		return loc, true
	}

	if item := p.cache.Get(code); item != nil {
		return item.Value(), true
	}

	if p.config.RefreshURL == "" {
		return Location{}, false
	}

	loc, err := p.fetch(code)
	if err != nil {
		logging.L().Debugf("region lookup for %s failed: %v", code, err)
		return Location{}, false
	}

	p.cache.Set(code, loc, ttlcache.DefaultTTL)
	return loc, true
}

// Describe formats a code with its location when known, or returns the
// bare code.
func (p *Provider) Describe(code string) string {
	if code == "" {
		return ""
	}
	loc, ok := p.Lookup(code)
	if !ok {
		return code
	}
	return fmt.Sprintf("%s (%s, %s)", code, loc.City, loc.Country)
}

// fetch retrieves the remote lookup table and extracts one code.
func (p *Provider) fetch(code string) (Location, error) {
	resp, err := p.client.Get(p.config.RefreshURL)
	if err != nil {
		return Location{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var table map[string]Location
	if err := json.NewDecoder(resp.Body).Decode(&table); err != nil {
		return Location{}, fmt.Errorf("decode lookup table: %w", err)
	}

	// Cache every entry from the fetch, not just the requested one.
	for k, v := range table {
		if k != code {
			p.cache.Set(k, v, ttlcache.DefaultTTL)
		}
	}

	loc, ok := table[code]
	if !ok {
		return Location{}, fmt.Errorf("code %s not in lookup table", code)
	}
	return loc, nil
}

// embedded covers the common colo codes so the provider works offline.
var embedded = map[string]Location{
	"AMS": {IATA: "AMS", City: "Amsterdam", Country: "NL"},
	"ATL": {IATA: "ATL", City: "Atlanta", Country: "US"},
	"BOM": {IATA: "BOM", City: "Mumbai", Country: "IN"},
	"CDG": {IATA: "CDG", City: "Paris", Country: "FR"},
	"DFW": {IATA: "DFW", City: "Dallas", Country: "US"},
	"EWR": {IATA: "EWR", City: "Newark", Country: "US"},
	"FRA": {IATA: "FRA", City: "Frankfurt", Country: "DE"},
	"GRU": {IATA: "GRU", City: "Sao Paulo", Country: "BR"},
	"HKG": {IATA: "HKG", City: "Hong Kong", Country: "HK"},
	"IAD": {IATA: "IAD", City: "Ashburn", Country: "US"},
	"JNB": {IATA: "JNB", City: "Johannesburg", Country: "ZA"},
	"LAX": {IATA: "LAX", City: "Los Angeles", Country: "US"},
	"LHR": {IATA: "LHR", City: "London", Country: "GB"},
	"MAD": {IATA: "MAD", City: "Madrid", Country: "ES"},
	"NRT": {IATA: "NRT", City: "Tokyo", Country: "JP"},
	"ORD": {IATA: "ORD", City: "Chicago", Country: "US"},
	"SEA": {IATA: "SEA", City: "Seattle", Country: "US"},
	"SIN": {IATA: "SIN", City: "Singapore", Country: "SG"},
	"SJC": {IATA: "SJC", City: "San Jose", Country: "US"},
	"SYD": {IATA: "SYD", City: "Sydney", Country: "AU"},
	"YYZ": {IATA: "YYZ", City: "Toronto", Country: "CA"},
}
