// Package model defines the data entities shared across PartnerForge.
package model

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Competitor is one entry from competitive intelligence enrichment.
type Competitor struct {
	Name         string `json:"name"`
	UsingAlgolia bool   `json:"using_algolia"`
}

// Company is the normalized record of enrichment facts for one target domain.
// Every field except Domain is optional. Absent values mean "no signal", never
// zero/false: optional scalars are pointers, absent slices are nil.
type Company struct {
	Domain      string `json:"domain"`
	CompanyName string `json:"company_name,omitempty"`

	// Firmographics.
	Vertical      string `json:"vertical,omitempty"`
	Industry      string `json:"industry,omitempty"`
	HQCountry     string `json:"hq_country,omitempty"`
	EmployeeCount *int   `json:"employee_count,omitempty"`
	FoundedYear   *int   `json:"founded_year,omitempty"`
	IsPublic      *bool  `json:"is_public,omitempty"`

	// Commercial.
	Revenue       *int64 `json:"revenue,omitempty"`
	MonthlyVisits *int64 `json:"sw_monthly_visits,omitempty"`
	StoreCount    *int   `json:"store_count,omitempty"`

	// Technology.
	PartnerTech   []string `json:"partner_tech,omitempty"`
	CurrentSearch string   `json:"current_search,omitempty"`

	// Intelligence extras.
	ExecQuote         bool         `json:"exec_quote,omitempty"`
	DisplacementAngle bool         `json:"displacement_angle,omitempty"`
	Competitors       []Competitor `json:"competitors,omitempty"`

	ImportBatchID string     `json:"import_batch_id,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// HasPartnerTech reports whether any partner technology was detected.
func (c *Company) HasPartnerTech() bool {
	return len(c.PartnerTech) > 0
}

// NormalizeDomain canonicalizes a raw domain or URL into the form used as the
// company identity: lowercase host with no scheme, no "www." prefix, no path,
// no port, no trailing dot.
func NormalizeDomain(raw string) (string, error) {
	d := strings.TrimSpace(strings.ToLower(raw))
	if d == "" {
		return "", eris.New("model: empty domain")
	}
	for _, scheme := range []string{"https://", "http://", "//"} {
		d = strings.TrimPrefix(d, scheme)
	}
	d = strings.TrimPrefix(d, "www.")
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	if i := strings.IndexByte(d, ':'); i >= 0 {
		d = d[:i]
	}
	d = strings.TrimSuffix(d, ".")
	if d == "" || !strings.Contains(d, ".") {
		return "", eris.Errorf("model: invalid domain %q", raw)
	}
	return d, nil
}
