package resolve

import (
	"strings"

	"github.com/sells-group/company-pipeline/internal/model"
	"github.com/sells-group/company-pipeline/internal/normalize"
)

// Merge consolidates an incoming duplicate record into a canonical entity.
// Deterministic and idempotent on field values: the primary's non-empty
// values always win, the incoming record only fills gaps. Merge never
// deletes information; it appends provenance and recomputes the quality
// score from scratch on the merged field set.
func Merge(primary *model.CanonicalEntity, incoming *model.NormalizedRecord, matchType string, score float64, listCap int) *model.CanonicalEntity {
	merged := primary.Clone()

	fillString(&merged.RegistryID, incoming.RegistryID)
	fillString(&merged.Website, incoming.Website)
	fillString(&merged.ContactEmail, incoming.ContactEmail)
	fillString(&merged.ContactPhone, incoming.ContactPhone)
	fillString(&merged.LinkedIn, incoming.LinkedIn)
	fillString(&merged.Facebook, incoming.Facebook)
	fillString(&merged.Instagram, incoming.Instagram)
	fillString(&merged.Industry, incoming.Industry)
	fillString(&merged.SizeCategory, incoming.SizeCategory)
	fillString(&merged.Description, incoming.Description)
	fillString(&merged.WebsiteContent, incoming.WebsiteContent)
	fillString(&merged.AboutContent, incoming.AboutContent)
	fillString(&merged.TeamContent, incoming.TeamContent)
	fillString(&merged.ProductsContent, incoming.ProductsContent)
	fillString(&merged.ContactContent, incoming.ContactContent)

	if merged.EmployeeCount == nil && incoming.EmployeeCount != nil {
		n := *incoming.EmployeeCount
		merged.EmployeeCount = &n
	}
	if merged.Revenue == nil && incoming.Revenue != nil {
		f := *incoming.Revenue
		merged.Revenue = &f
	}
	if merged.FoundingYear == nil && incoming.FoundingYear != nil {
		y := *incoming.FoundingYear
		merged.FoundingYear = &y
	}

	merged.Keywords = mergeList(merged.Keywords, incoming.Keywords, listCap)
	merged.Products = mergeList(merged.Products, incoming.Products, listCap)
	merged.Services = mergeList(merged.Services, incoming.Services, listCap)

	if !contains(merged.ContributingSources, incoming.SourceID) {
		merged.ContributingSources = append(merged.ContributingSources, incoming.SourceID)
	}
	merged.MatchHistory = append(merged.MatchHistory, model.MatchRecord{
		SourceID:  incoming.SourceID,
		MatchType: matchType,
		Score:     score,
	})

	merged.QualityScore = normalize.Score(&merged.NormalizedRecord)
	return merged
}

// fillString adopts the incoming value only when the target is empty.
func fillString(dst *string, incoming string) {
	if *dst == "" {
		*dst = incoming
	}
}

// mergeList unions two lists: primary order preserved, new incoming items
// appended in their own order, case-insensitive dedupe, capped.
func mergeList(primary, incoming []string, limit int) []string {
	seen := make(map[string]bool, len(primary))
	for _, item := range primary {
		seen[strings.ToLower(item)] = true
	}
	out := append([]string(nil), primary...)
	for _, item := range incoming {
		key := strings.ToLower(item)
		if seen[key] {
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

func contains(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}
