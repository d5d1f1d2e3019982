// Package resolve deduplicates normalized records into canonical entities
// using exact-key and fuzzy-name matching, and defines the merge policy for
// records that refer to the same business.
package resolve

import (
	"go.uber.org/zap"

	"github.com/sells-group/company-pipeline/internal/fuzzy"
	"github.com/sells-group/company-pipeline/internal/model"
)

// minFuzzyNameLength guards against matching on near-empty strings. Records
// with no exact keys and a shorter normalized name always become new
// entities.
const minFuzzyNameLength = 3

// Resolver assigns each incoming record to an existing canonical entity or
// starts a new one. Strictly sequential: match decisions depend on the
// cumulative index state left by earlier merges, so records must be added
// one at a time in arrival order.
type Resolver struct {
	threshold float64
	listCap   int

	entities []*model.CanonicalEntity

	byRegistry map[string]int
	byWebsite  map[string]int
	byName     map[string]int
	nameKeys   []string // insertion order, for deterministic fuzzy ties

	matchCounts map[string]int
}

// NewResolver creates a resolver with the given fuzzy-match threshold
// (0-100, inclusive) and list-field cap for merges.
func NewResolver(threshold float64, listCap int) *Resolver {
	return &Resolver{
		threshold:   threshold,
		listCap:     listCap,
		byRegistry:  make(map[string]int),
		byWebsite:   make(map[string]int),
		byName:      make(map[string]int),
		matchCounts: make(map[string]int),
	}
}

// Add processes one record in arrival order and returns the canonical
// entity it now belongs to.
func (r *Resolver) Add(rec *model.NormalizedRecord) *model.CanonicalEntity {
	if idx, matchType, score, ok := r.match(rec); ok {
		merged := Merge(r.entities[idx], rec, matchType, score, r.listCap)
		r.entities[idx] = merged
		// Index the incoming record's keys too, so later records see the
		// superset of identifiers known for this entity.
		r.indexKeys(idx, rec.RegistryID, rec.Website, rec.NormalizedName)
		r.matchCounts[matchType]++

		zap.L().Debug("resolve: merged duplicate",
			zap.String("source_id", rec.SourceID),
			zap.String("match_type", matchType),
			zap.Float64("score", score),
			zap.String("entity", merged.LegalName),
		)
		return merged
	}

	entity := model.NewCanonicalEntity(rec)
	idx := len(r.entities)
	r.entities = append(r.entities, entity)
	r.indexKeys(idx, rec.RegistryID, rec.Website, rec.NormalizedName)

	zap.L().Debug("resolve: new entity",
		zap.String("source_id", rec.SourceID),
		zap.String("name", rec.LegalName),
	)
	return entity
}

// match runs the cascade: exact registry id, exact website, then best fuzzy
// name at or above the threshold. Returns the entity slot, match type, and
// match score (1.0 for exact matches, similarity/100 for fuzzy).
func (r *Resolver) match(rec *model.NormalizedRecord) (int, string, float64, bool) {
	if rec.RegistryID != "" {
		if idx, ok := r.byRegistry[rec.RegistryID]; ok {
			return idx, model.MatchRegistryExact, 1.0, true
		}
	}

	if rec.Website != "" {
		if idx, ok := r.byWebsite[rec.Website]; ok {
			return idx, model.MatchWebsiteExact, 1.0, true
		}
	}

	if len(rec.NormalizedName) < minFuzzyNameLength {
		return 0, "", 0, false
	}

	if name, score, ok := fuzzy.BestMatch(rec.NormalizedName, r.nameKeys, r.threshold); ok {
		return r.byName[name], model.MatchNameFuzzy, score / 100, true
	}

	return 0, "", 0, false
}

// indexKeys points the given keys at an entity slot, preserving name-key
// insertion order.
func (r *Resolver) indexKeys(idx int, registryID, website, name string) {
	if registryID != "" {
		r.byRegistry[registryID] = idx
	}
	if website != "" {
		r.byWebsite[website] = idx
	}
	if name != "" {
		if _, seen := r.byName[name]; !seen {
			r.nameKeys = append(r.nameKeys, name)
		}
		r.byName[name] = idx
	}
}

// Entities returns the canonical entities in first-seen order.
func (r *Resolver) Entities() []*model.CanonicalEntity {
	out := make([]*model.CanonicalEntity, len(r.entities))
	copy(out, r.entities)
	return out
}

// MatchCounts returns the number of merges per match type.
func (r *Resolver) MatchCounts() map[string]int {
	out := make(map[string]int, len(r.matchCounts))
	for k, v := range r.matchCounts {
		out[k] = v
	}
	return out
}
