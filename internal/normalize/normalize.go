// Package normalize cleans raw source records into normalized records and
// computes per-record quality scores.
package normalize

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/company-pipeline/internal/config"
	"github.com/sells-group/company-pipeline/internal/model"
)

// ErrRejected marks records excluded from the pipeline for insufficient
// data. Not a processing error: callers skip and move on.
var ErrRejected = eris.New("normalize: record rejected")

// cleaner applies one field's cleaning rule to the record under
// construction. Invalid values leave the target field absent.
type cleaner func(n *Normalizer, out *model.NormalizedRecord, value any)

// cleanerTable maps raw field names to their cleaning rules. Aliased names
// share a rule; extra raw fields are ignored. Iterated in slice order so
// normalization is deterministic.
var cleanerTable = []struct {
	fields []string
	clean  cleaner
}{
	{[]string{"registry_id", "uen"}, cleanRegistryID},
	{[]string{"website"}, cleanWebsite},
	{[]string{"contact_email"}, cleanEmail},
	{[]string{"contact_phone"}, cleanPhone},
	{[]string{"linkedin"}, socialCleaner("linkedin")},
	{[]string{"facebook"}, socialCleaner("facebook")},
	{[]string{"instagram"}, socialCleaner("instagram")},
	{[]string{"industry"}, cleanIndustry},
	{[]string{"company_size", "size_category"}, cleanSize},
	{[]string{"employee_count", "number_of_employees"}, cleanEmployeeCount},
	{[]string{"revenue"}, cleanRevenue},
	{[]string{"founding_year"}, cleanFoundingYear},
	{[]string{"keywords"}, listCleaner(func(r *model.NormalizedRecord, v []string) { r.Keywords = v })},
	{[]string{"products", "products_offered"}, listCleaner(func(r *model.NormalizedRecord, v []string) { r.Products = v })},
	{[]string{"services", "services_offered"}, listCleaner(func(r *model.NormalizedRecord, v []string) { r.Services = v })},
	{[]string{"description"}, textCleaner(func(r *model.NormalizedRecord, v string) { r.Description = v })},
	{[]string{"website_content"}, textCleaner(func(r *model.NormalizedRecord, v string) { r.WebsiteContent = v })},
	{[]string{"about_content"}, textCleaner(func(r *model.NormalizedRecord, v string) { r.AboutContent = v })},
	{[]string{"team_content"}, textCleaner(func(r *model.NormalizedRecord, v string) { r.TeamContent = v })},
	{[]string{"products_content"}, textCleaner(func(r *model.NormalizedRecord, v string) { r.ProductsContent = v })},
	{[]string{"contact_content"}, textCleaner(func(r *model.NormalizedRecord, v string) { r.ContactContent = v })},
}

// Normalizer cleans raw records into normalized records. Pure: all state is
// configuration supplied at construction.
type Normalizer struct {
	quality  config.QualityConfig
	taxonomy config.TaxonomyConfig
}

// New creates a Normalizer with the given thresholds and enum tables.
func New(quality config.QualityConfig, taxonomy config.TaxonomyConfig) *Normalizer {
	return &Normalizer{quality: quality, taxonomy: taxonomy}
}

// Normalize cleans a raw record into a normalized record. Records without a
// usable legal name are rejected with ErrRejected.
func (n *Normalizer) Normalize(raw model.RawRecord) (*model.NormalizedRecord, error) {
	name := n.cleanLegalName(firstString(raw, "legal_name", "company_name", "name"))
	if name == "" {
		return nil, eris.Wrapf(ErrRejected, "source %q: missing or short legal name", raw.SourceID)
	}

	out := &model.NormalizedRecord{
		LegalName:      name,
		NormalizedName: NormalizeName(name),
		SourceID:       raw.SourceID,
	}

	for _, entry := range cleanerTable {
		for _, f := range entry.fields {
			if raw.Has(f) {
				entry.clean(n, out, raw.Fields[f])
				break
			}
		}
	}

	out.QualityScore = Score(out)
	return out, nil
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// cleanLegalName collapses whitespace and enforces length bounds. Names
// over the maximum are truncated, under the minimum dropped.
func (n *Normalizer) cleanLegalName(name string) string {
	name = whitespaceRun.ReplaceAllString(strings.TrimSpace(name), " ")
	if len(name) < n.quality.MinNameLength {
		return ""
	}
	if n.quality.MaxNameLength > 0 && len(name) > n.quality.MaxNameLength {
		name = strings.TrimSpace(name[:n.quality.MaxNameLength])
	}
	return name
}

// corporateSuffixes are stripped from the end of names before fuzzy
// comparison. Longer variants listed first so they match before their
// substrings.
var corporateSuffixes = []string{
	"pte ltd", "private limited", "pvt ltd", "limited", "ltd",
	"incorporated", "inc", "corporation", "corp", "llc",
	"sdn bhd", "bhd", "company", "co",
}

var nonWord = regexp.MustCompile(`[^\w\s]`)

// NormalizeName produces the lowercase, suffix-stripped, punctuation-free
// form used only for fuzzy comparison, never for display.
func NormalizeName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = nonWord.ReplaceAllString(s, " ")
	s = whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
	for _, suffix := range corporateSuffixes {
		if strings.HasSuffix(s, " "+suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, " "+suffix))
			break
		}
	}
	return s
}

// firstString returns the first non-empty string value among the given raw
// field names.
func firstString(raw model.RawRecord, keys ...string) string {
	for _, k := range keys {
		if s := raw.String(k); s != "" {
			return s
		}
	}
	return ""
}
