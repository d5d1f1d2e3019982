package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/company-pipeline/internal/model"
)

func newTestResolver() *Resolver {
	return NewResolver(85, 10)
}

func rec(source, name, normalized string) *model.NormalizedRecord {
	return &model.NormalizedRecord{
		SourceID:       source,
		LegalName:      name,
		NormalizedName: normalized,
	}
}

func TestResolver_RegistryExactMatch(t *testing.T) {
	r := newTestResolver()

	a := rec("registry", "Acme Pte Ltd", "acme")
	a.RegistryID = "201812345A"
	b := rec("directory", "Totally Different Name", "totally different name")
	b.RegistryID = "201812345A"

	r.Add(a)
	r.Add(b)

	entities := r.Entities()
	require.Len(t, entities, 1)
	assert.Equal(t, "201812345A", entities[0].RegistryID)
	assert.Equal(t, []string{"registry", "directory"}, entities[0].ContributingSources)
	require.Len(t, entities[0].MatchHistory, 1)
	assert.Equal(t, model.MatchRegistryExact, entities[0].MatchHistory[0].MatchType)
	assert.Equal(t, 1.0, entities[0].MatchHistory[0].Score)
}

func TestResolver_RegistryMatch_OrderIndependentPairing(t *testing.T) {
	// Both arrival orders place the pair in one entity.
	for _, flip := range []bool{false, true} {
		r := newTestResolver()
		a := rec("s1", "Acme Pte Ltd", "acme")
		a.RegistryID = "201812345A"
		b := rec("s2", "Acme Holdings", "acme holdings")
		b.RegistryID = "201812345A"

		if flip {
			r.Add(b)
			r.Add(a)
		} else {
			r.Add(a)
			r.Add(b)
		}
		assert.Len(t, r.Entities(), 1)
	}
}

func TestResolver_WebsiteExactMatch(t *testing.T) {
	r := newTestResolver()

	a := rec("s1", "Acme Pte Ltd", "acme")
	a.Website = "https://acme.sg"
	b := rec("s2", "Unrelated Name Entirely", "unrelated name entirely")
	b.Website = "https://acme.sg"
	b.RegistryID = "201999999Z"

	r.Add(a)
	r.Add(b)

	entities := r.Entities()
	require.Len(t, entities, 1)
	assert.Equal(t, model.MatchWebsiteExact, entities[0].MatchHistory[0].MatchType)
}

func TestResolver_FuzzyNameMatch(t *testing.T) {
	r := newTestResolver()

	r.Add(rec("s1", "Acme Solutions Pte Ltd", "acme solutions"))
	r.Add(rec("s2", "Acme Solution", "acme solution"))

	entities := r.Entities()
	require.Len(t, entities, 1)
	require.Len(t, entities[0].MatchHistory, 1)
	h := entities[0].MatchHistory[0]
	assert.Equal(t, model.MatchNameFuzzy, h.MatchType)
	assert.Greater(t, h.Score, 0.85)
	assert.Less(t, h.Score, 1.0)
}

func TestResolver_FuzzyThresholdInclusive(t *testing.T) {
	// 3 edits over max length 20 → similarity exactly 85: must merge.
	r := newTestResolver()
	r.Add(rec("s1", "A", "abcdefghijklmnopqrst"))
	r.Add(rec("s2", "B", "abcdefghijklmnopqxyz"))
	assert.Len(t, r.Entities(), 1)

	// 3 edits over max length 19 → ≈84.2: must not merge.
	r = newTestResolver()
	r.Add(rec("s1", "A", "abcdefghijklmnopqrs"))
	r.Add(rec("s2", "B", "abcdefghijklmnopxyz"))
	assert.Len(t, r.Entities(), 2)
}

func TestResolver_FuzzyTieKeepsFirstRegistered(t *testing.T) {
	r := newTestResolver()

	// Both seeds are 3 edits from the incoming name (similarity exactly 85
	// over length 20) but 6 edits from each other (70), so they stay
	// separate entities and the incoming ties between them.
	r.Add(rec("s1", "First", "abcdefghijklmnopqxyz"))
	r.Add(rec("s2", "Second", "xyzdefghijklmnopqrst"))
	require.Len(t, r.Entities(), 2)

	merged := r.Add(rec("s3", "Incoming", "abcdefghijklmnopqrst"))

	assert.Equal(t, "First", merged.LegalName)
	assert.Len(t, r.Entities(), 2)
}

func TestResolver_ShortNameNeverFuzzyMatched(t *testing.T) {
	r := newTestResolver()
	r.Add(rec("s1", "AB", "ab"))
	r.Add(rec("s2", "AB", "ab"))
	assert.Len(t, r.Entities(), 2)
}

func TestResolver_MergedKeysIndexed(t *testing.T) {
	r := newTestResolver()

	a := rec("s1", "Acme Pte Ltd", "acme")
	a.RegistryID = "201812345A"
	r.Add(a)

	// Merges by fuzzy name and contributes a website.
	b := rec("s2", "ACME", "acme")
	b.Website = "https://acme.sg"
	r.Add(b)

	// A later record with only the website must find the same entity.
	c := rec("s3", "Acme SG", "acme sg")
	c.Website = "https://acme.sg"
	r.Add(c)

	entities := r.Entities()
	require.Len(t, entities, 1)
	assert.Equal(t, []string{"s1", "s2", "s3"}, entities[0].ContributingSources)
}

func TestResolver_CanonicalPairExample(t *testing.T) {
	r := newTestResolver()

	a := rec("registry", "Acme Pte Ltd", "acme")
	a.RegistryID = "201812345A"
	r.Add(a)

	b := rec("scrape", "ACME PTE. LTD.", "acme")
	b.Website = "https://acme.sg"
	r.Add(b)

	entities := r.Entities()
	require.Len(t, entities, 1)
	e := entities[0]
	assert.Equal(t, "201812345A", e.RegistryID)
	assert.Equal(t, "https://acme.sg", e.Website)
	assert.Len(t, e.ContributingSources, 2)
}

func TestResolver_MatchCounts(t *testing.T) {
	r := newTestResolver()

	a := rec("s1", "Acme Pte Ltd", "acme solutions")
	a.RegistryID = "201812345A"
	r.Add(a)

	b := rec("s2", "Acme", "acme solution")
	b.RegistryID = "201812345A"
	r.Add(b)
	r.Add(rec("s3", "Acme Solutions", "acme solutions"))

	counts := r.MatchCounts()
	assert.Equal(t, 1, counts[model.MatchRegistryExact])
	assert.Equal(t, 1, counts[model.MatchNameFuzzy])
}
