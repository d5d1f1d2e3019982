// Package model defines the record types flowing through the pipeline:
// raw source records, normalized records, and canonical entities.
package model

// RawRecord is one record as delivered by an extraction source. Field names
// and value types vary by source; the record is never mutated after receipt.
type RawRecord struct {
	SourceID string         `json:"source_id" yaml:"source_id"`
	Fields   map[string]any `json:"fields" yaml:"fields"`
}

// String returns the raw string value for a field, or "" when the field is
// missing or not a string.
func (r RawRecord) String(key string) string {
	s, _ := r.Fields[key].(string)
	return s
}

// Has reports whether a field is present in the raw record.
func (r RawRecord) Has(key string) bool {
	_, ok := r.Fields[key]
	return ok
}

// NormalizedRecord is the canonical shape of a single raw record after
// cleaning. Created once by the normalizer and immutable thereafter; the
// resolver produces new entities rather than mutating these.
type NormalizedRecord struct {
	RegistryID     string `json:"registry_id,omitempty"`
	LegalName      string `json:"legal_name"`
	NormalizedName string `json:"normalized_name"`
	Website        string `json:"website,omitempty"`

	ContactEmail string `json:"contact_email,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
	LinkedIn     string `json:"linkedin,omitempty"`
	Facebook     string `json:"facebook,omitempty"`
	Instagram    string `json:"instagram,omitempty"`

	Industry     string `json:"industry,omitempty"`
	SizeCategory string `json:"size_category,omitempty"`

	EmployeeCount *int     `json:"employee_count,omitempty"`
	Revenue       *float64 `json:"revenue,omitempty"`
	FoundingYear  *int     `json:"founding_year,omitempty"`

	Keywords []string `json:"keywords,omitempty"`
	Products []string `json:"products,omitempty"`
	Services []string `json:"services,omitempty"`

	Description string `json:"description,omitempty"`

	// Free-text context from the extraction collaborator, consumed only by
	// the enrichment orchestrator.
	WebsiteContent  string `json:"website_content,omitempty"`
	AboutContent    string `json:"about_content,omitempty"`
	TeamContent     string `json:"team_content,omitempty"`
	ProductsContent string `json:"products_content,omitempty"`
	ContactContent  string `json:"contact_content,omitempty"`

	QualityScore float64 `json:"quality_score"`
	SourceID     string  `json:"source_id"`
}

// HasSocialLink reports whether any social profile link is set.
func (r *NormalizedRecord) HasSocialLink() bool {
	return r.LinkedIn != "" || r.Facebook != "" || r.Instagram != ""
}

// Match types recorded in a canonical entity's match history.
const (
	MatchRegistryExact = "registry_exact"
	MatchWebsiteExact  = "website_exact"
	MatchNameFuzzy     = "name_fuzzy"
)

// MatchRecord is one audit entry for a merge decision.
type MatchRecord struct {
	SourceID  string  `json:"source_id"`
	MatchType string  `json:"match_type"`
	Score     float64 `json:"score"`
}

// CanonicalEntity is the merged representation of one real-world company
// for the duration of a pipeline run.
type CanonicalEntity struct {
	NormalizedRecord

	ContributingSources []string      `json:"contributing_sources"`
	MatchHistory        []MatchRecord `json:"match_history,omitempty"`
}

// NewCanonicalEntity starts a canonical entity from a normalized record.
func NewCanonicalEntity(rec *NormalizedRecord) *CanonicalEntity {
	return &CanonicalEntity{
		NormalizedRecord:    *rec,
		ContributingSources: []string{rec.SourceID},
	}
}

// Clone returns a deep copy of the entity. List fields and history are
// copied so enrichment can replace-with-copy without aliasing.
func (e *CanonicalEntity) Clone() *CanonicalEntity {
	out := *e
	out.Keywords = append([]string(nil), e.Keywords...)
	out.Products = append([]string(nil), e.Products...)
	out.Services = append([]string(nil), e.Services...)
	out.ContributingSources = append([]string(nil), e.ContributingSources...)
	out.MatchHistory = append([]MatchRecord(nil), e.MatchHistory...)
	if e.EmployeeCount != nil {
		n := *e.EmployeeCount
		out.EmployeeCount = &n
	}
	if e.Revenue != nil {
		f := *e.Revenue
		out.Revenue = &f
	}
	if e.FoundingYear != nil {
		y := *e.FoundingYear
		out.FoundingYear = &y
	}
	return &out
}
