package enrich

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/company-pipeline/internal/normalize"
)

var (
	keywordsPrefixPattern = regexp.MustCompile(`(?i)^keywords?:\s*`)
	productsPattern       = regexp.MustCompile(`(?is)PRODUCTS:\s*(.+?)(?:SERVICES:|$)`)
	servicesPattern       = regexp.MustCompile(`(?is)SERVICES:\s*(.+)$`)
	emailLinePattern      = regexp.MustCompile(`(?i)EMAIL:\s*([^\n]+)`)
	phoneLinePattern      = regexp.MustCompile(`(?i)PHONE:\s*([^\n]+)`)
	floatPattern          = regexp.MustCompile(`(\d+\.?\d*)`)
)

// errorIndicators flag responses where the model hedged or refused.
var errorIndicators = []string{"error", "cannot", "unable", "not found", "unclear"}

// confidence scores a raw response in [0,1]: base 0.7, a bonus for matching
// the task's expected format, penalties for degenerate length and
// error-indicating language.
func confidence(content, task string, industries, sizes []string) float64 {
	if content == "" {
		return 0.0
	}
	score := 0.7

	switch task {
	case taskIndustry:
		if matchEnum(content, industries) != "" {
			score += 0.2
		}
	case taskKeywords:
		if n := len(strings.Split(content, ",")); n >= 3 && n <= 12 {
			score += 0.2
		}
	case taskSize:
		if matchEnum(content, sizes) != "" {
			score += 0.2
		}
	}

	if len(content) < 5 {
		score -= 0.3
	} else if len(content) > 1000 {
		score -= 0.1
	}

	lower := strings.ToLower(content)
	for _, indicator := range errorIndicators {
		if strings.Contains(lower, indicator) {
			score -= 0.2
			break
		}
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// matchEnum returns the first enum value appearing in the response,
// case-insensitively, or "" when none does. A bare category word matches
// its full label, so "Small" resolves to "Small (11-50)".
func matchEnum(content string, values []string) string {
	lower := strings.ToLower(content)
	for _, v := range values {
		if strings.Contains(lower, strings.ToLower(v)) {
			return v
		}
		if base := enumBase(v); base != v && strings.Contains(lower, strings.ToLower(base)) {
			return v
		}
	}
	return ""
}

// enumBase strips a trailing parenthetical qualifier from an enum label.
func enumBase(v string) string {
	if i := strings.Index(v, "("); i > 0 {
		return strings.TrimSpace(v[:i])
	}
	return v
}

// parseIndustry requires a strict enumeration match.
func parseIndustry(content string, industries []string) (string, error) {
	if v := matchEnum(strings.TrimSpace(content), industries); v != "" {
		return v, nil
	}
	return "", eris.New("enrich: no industry category in response")
}

// parseSize requires a strict size-category match.
func parseSize(content string, sizes []string) (string, error) {
	if v := matchEnum(strings.TrimSpace(content), sizes); v != "" {
		return v, nil
	}
	return "", eris.New("enrich: no size category in response")
}

// parseKeywords splits a comma-separated response, dropping fragments of
// two characters or fewer. Dedupe and the configured cap are applied by the
// caller.
func parseKeywords(content string) ([]string, error) {
	content = keywordsPrefixPattern.ReplaceAllString(strings.TrimSpace(content), "")
	var keywords []string
	for _, k := range strings.Split(content, ",") {
		k = strings.TrimSpace(k)
		if len(k) > 2 {
			keywords = append(keywords, k)
		}
	}
	if len(keywords) == 0 {
		return nil, eris.New("enrich: no keywords in response")
	}
	return keywords, nil
}

// parseProductsServices extracts the PRODUCTS: and SERVICES: sections,
// semicolon-separated, at most five items each.
func parseProductsServices(content string) (products, services []string, err error) {
	if m := productsPattern.FindStringSubmatch(content); m != nil {
		products = splitSemicolons(m[1], 5)
	}
	if m := servicesPattern.FindStringSubmatch(content); m != nil {
		services = splitSemicolons(m[1], 5)
	}
	if len(products) == 0 && len(services) == 0 {
		return nil, nil, eris.New("enrich: no products or services sections in response")
	}
	return products, services, nil
}

func splitSemicolons(s string, limit int) []string {
	var out []string
	for _, item := range strings.Split(s, ";") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// parseContact extracts the EMAIL: and PHONE: labeled lines. A "Not found"
// value counts as absent; at least one of the two must be present.
func parseContact(content string) (email, phone string, err error) {
	email = labeledValue(emailLinePattern, content)
	phone = labeledValue(phoneLinePattern, content)
	if email == "" && phone == "" {
		return "", "", eris.New("enrich: no contact info in response")
	}
	return email, phone, nil
}

func labeledValue(pattern *regexp.Regexp, content string) string {
	m := pattern.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	v := strings.TrimSpace(m[1])
	if strings.Contains(strings.ToLower(v), "not found") {
		return ""
	}
	return v
}

// parseQualityScore extracts the first decimal number and clamps it to [0,1].
func parseQualityScore(content string) (float64, error) {
	m := floatPattern.FindStringSubmatch(content)
	if m == nil {
		return 0, eris.New("enrich: no numeric score in response")
	}
	score, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, eris.Wrap(err, "enrich: parse quality score")
	}
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return normalize.Round2(score), nil
}
