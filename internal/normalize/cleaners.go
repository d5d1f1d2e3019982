package normalize

import (
	"net/mail"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/company-pipeline/internal/fuzzy"
	"github.com/sells-group/company-pipeline/internal/model"
)

// Registry identifier format: 4-digit year, 5 or 6 digits, 1 uppercase
// check letter.
var (
	registryIDExact   = regexp.MustCompile(`^(19|20)\d{2}\d{5,6}[A-Z]$`)
	registryIDExtract = regexp.MustCompile(`((?:19|20)\d{2}\d{5,6}[A-Z])`)
)

func cleanRegistryID(_ *Normalizer, out *model.NormalizedRecord, value any) {
	id := strings.ToUpper(strings.TrimSpace(asString(value)))
	if id == "" {
		return
	}
	if registryIDExact.MatchString(id) {
		out.RegistryID = id
		return
	}
	if m := registryIDExtract.FindString(id); m != "" {
		out.RegistryID = m
	}
}

func cleanWebsite(_ *Normalizer, out *model.NormalizedRecord, value any) {
	out.Website = canonicalURL(asString(value))
}

// canonicalURL normalizes a URL to scheme + lowercased host, keeping a
// non-root path. Returns "" for anything unparseable.
func canonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	canonical := u.Scheme + "://" + strings.ToLower(u.Host)
	if u.Path != "" && u.Path != "/" {
		canonical += u.Path
	}
	return canonical
}

func cleanEmail(_ *Normalizer, out *model.NormalizedRecord, value any) {
	email := strings.ToLower(strings.TrimSpace(asString(value)))
	if email == "" {
		return
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return
	}
	out.ContactEmail = email
}

func cleanPhone(n *Normalizer, out *model.NormalizedRecord, value any) {
	raw := strings.TrimSpace(asString(value))
	if raw == "" {
		return
	}
	num, err := phonenumbers.Parse(raw, n.quality.DefaultPhoneRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return
	}
	out.ContactPhone = phonenumbers.Format(num, phonenumbers.INTERNATIONAL)
}

// socialDomains lists the accepted hosts per platform.
var socialDomains = map[string][]string{
	"linkedin":  {"linkedin.com", "www.linkedin.com"},
	"facebook":  {"facebook.com", "www.facebook.com", "fb.com"},
	"instagram": {"instagram.com", "www.instagram.com"},
}

func socialCleaner(platform string) cleaner {
	return func(_ *Normalizer, out *model.NormalizedRecord, value any) {
		raw := strings.TrimSpace(asString(value))
		if raw == "" {
			return
		}
		if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
			raw = "https://" + raw
		}
		u, err := url.Parse(raw)
		if err != nil {
			return
		}
		host := strings.ToLower(u.Host)
		valid := false
		for _, d := range socialDomains[platform] {
			if host == d {
				valid = true
				break
			}
		}
		if !valid {
			return
		}
		switch platform {
		case "linkedin":
			out.LinkedIn = raw
		case "facebook":
			out.Facebook = raw
		case "instagram":
			out.Instagram = raw
		}
	}
}

var titleCaser = cases.Title(language.English)

// cleanIndustry resolves a raw industry to the fixed enumeration: exact
// match, then synonym table, then fuzzy match scoring >=80, else "Other".
func cleanIndustry(n *Normalizer, out *model.NormalizedRecord, value any) {
	raw := strings.TrimSpace(asString(value))
	if raw == "" {
		return
	}
	raw = titleCaser.String(raw)

	for _, ind := range n.taxonomy.Industries {
		if ind == raw {
			out.Industry = ind
			return
		}
	}
	if mapped, ok := n.taxonomy.IndustrySynonyms[raw]; ok {
		out.Industry = mapped
		return
	}
	if best, _, ok := fuzzy.BestMatch(raw, n.taxonomy.Industries, 80); ok {
		out.Industry = best
		return
	}
	out.Industry = "Other"
}

var digitRun = regexp.MustCompile(`\d+`)

// cleanSize resolves a raw size string: exact enum match, then bucketing of
// the largest integer found, then fuzzy match >=70, else "Unknown".
func cleanSize(n *Normalizer, out *model.NormalizedRecord, value any) {
	raw := strings.TrimSpace(asString(value))
	if raw == "" {
		return
	}

	for _, size := range n.taxonomy.CompanySizes {
		if size == raw {
			out.SizeCategory = size
			return
		}
	}

	if nums := digitRun.FindAllString(raw, -1); len(nums) > 0 {
		maxEmployees := 0
		for _, s := range nums {
			if v, err := strconv.Atoi(s); err == nil && v > maxEmployees {
				maxEmployees = v
			}
		}
		out.SizeCategory = BucketSize(maxEmployees)
		return
	}

	if best, _, ok := fuzzy.BestMatch(raw, n.taxonomy.CompanySizes, 70); ok {
		out.SizeCategory = best
		return
	}
	out.SizeCategory = "Unknown"
}

// BucketSize maps an employee count into the fixed size ranges.
func BucketSize(employees int) string {
	switch {
	case employees <= 10:
		return "Micro (1-10)"
	case employees <= 50:
		return "Small (11-50)"
	case employees <= 200:
		return "Medium (51-200)"
	case employees <= 1000:
		return "Large (201-1000)"
	default:
		return "Enterprise (1000+)"
	}
}

func cleanEmployeeCount(_ *Normalizer, out *model.NormalizedRecord, value any) {
	switch v := value.(type) {
	case string:
		if m := digitRun.FindString(v); m != "" {
			if count, err := strconv.Atoi(m); err == nil {
				out.EmployeeCount = &count
			}
		}
	default:
		if count, ok := asInt(value); ok && count >= 0 {
			out.EmployeeCount = &count
		}
	}
}

var nonNumeric = regexp.MustCompile(`[^\d.]`)

func cleanRevenue(_ *Normalizer, out *model.NormalizedRecord, value any) {
	switch v := value.(type) {
	case string:
		s := nonNumeric.ReplaceAllString(v, "")
		if s == "" {
			return
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
			out.Revenue = &f
		}
	case float64:
		if v >= 0 {
			out.Revenue = &v
		}
	case float32:
		f := float64(v)
		if f >= 0 {
			out.Revenue = &f
		}
	case int:
		f := float64(v)
		if f >= 0 {
			out.Revenue = &f
		}
	case int64:
		f := float64(v)
		if f >= 0 {
			out.Revenue = &f
		}
	}
}

var yearPattern = regexp.MustCompile(`(19|20)\d{2}`)

func cleanFoundingYear(_ *Normalizer, out *model.NormalizedRecord, value any) {
	currentYear := time.Now().Year()

	if year, ok := asInt(value); ok {
		if year >= 1800 && year <= currentYear {
			out.FoundingYear = &year
		}
		return
	}
	if s, ok := value.(string); ok {
		if m := yearPattern.FindString(s); m != "" {
			year, _ := strconv.Atoi(m)
			if year >= 1800 && year <= currentYear {
				out.FoundingYear = &year
			}
		}
	}
}

var listSeparators = regexp.MustCompile(`[,;|]`)

// listCleaner cleans keyword-style fields: split on common delimiters for
// strings, per-item trim, drop items of 2 chars or fewer, case-insensitive
// dedupe, cap at the configured size.
func listCleaner(set func(*model.NormalizedRecord, []string)) cleaner {
	return func(n *Normalizer, out *model.NormalizedRecord, value any) {
		var items []string
		switch v := value.(type) {
		case string:
			items = listSeparators.Split(v, -1)
		case []string:
			items = v
		case []any:
			for _, e := range v {
				if s, ok := e.(string); ok {
					items = append(items, s)
				}
			}
		default:
			return
		}
		set(out, CleanList(items, n.quality.ListFieldCap))
	}
}

// CleanList trims, filters short entries, dedupes case-insensitively
// preserving first occurrence, and caps the result.
func CleanList(items []string, limit int) []string {
	seen := make(map[string]bool, len(items))
	var cleaned []string
	for _, item := range items {
		item = strings.TrimSpace(item)
		if len(item) <= 2 {
			continue
		}
		key := strings.ToLower(item)
		if seen[key] {
			continue
		}
		seen[key] = true
		cleaned = append(cleaned, item)
		if limit > 0 && len(cleaned) >= limit {
			break
		}
	}
	return cleaned
}

func textCleaner(set func(*model.NormalizedRecord, string)) cleaner {
	return func(_ *Normalizer, out *model.NormalizedRecord, value any) {
		set(out, strings.TrimSpace(asString(value)))
	}
}

func asString(value any) string {
	s, _ := value.(string)
	return s
}

func asInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case float32:
		return int(v), true
	default:
		return 0, false
	}
}
