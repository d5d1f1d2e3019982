package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/company-pipeline/internal/model"
)

func baseEntity() *model.CanonicalEntity {
	r := &model.NormalizedRecord{
		SourceID:       "registry",
		RegistryID:     "201812345A",
		LegalName:      "Acme Pte Ltd",
		NormalizedName: "acme",
		Industry:       "Technology",
		Keywords:       []string{"software", "cloud"},
	}
	return model.NewCanonicalEntity(r)
}

func TestMerge_PrimaryWinsScalars(t *testing.T) {
	e := baseEntity()
	incoming := &model.NormalizedRecord{
		SourceID:   "scrape",
		LegalName:  "ACME PTE. LTD.",
		Industry:   "Finance",
		RegistryID: "209999999Z",
	}

	merged := Merge(e, incoming, model.MatchNameFuzzy, 0.92, 10)

	assert.Equal(t, "Acme Pte Ltd", merged.LegalName)
	assert.Equal(t, "Technology", merged.Industry)
	assert.Equal(t, "201812345A", merged.RegistryID)
}

func TestMerge_GapFill(t *testing.T) {
	e := baseEntity()
	count := 42
	incoming := &model.NormalizedRecord{
		SourceID:      "scrape",
		LegalName:     "Acme",
		Website:       "https://acme.sg",
		ContactEmail:  "hello@acme.sg",
		EmployeeCount: &count,
	}

	merged := Merge(e, incoming, model.MatchNameFuzzy, 0.92, 10)

	assert.Equal(t, "https://acme.sg", merged.Website)
	assert.Equal(t, "hello@acme.sg", merged.ContactEmail)
	require.NotNil(t, merged.EmployeeCount)
	assert.Equal(t, 42, *merged.EmployeeCount)
}

func TestMerge_PointerFieldsNotOverwritten(t *testing.T) {
	e := baseEntity()
	orig := 100
	e.EmployeeCount = &orig
	other := 7
	incoming := &model.NormalizedRecord{
		SourceID:      "scrape",
		LegalName:     "Acme",
		EmployeeCount: &other,
	}

	merged := Merge(e, incoming, model.MatchRegistryExact, 1.0, 10)
	assert.Equal(t, 100, *merged.EmployeeCount)
}

func TestMerge_ListUnionDedupedAndCapped(t *testing.T) {
	e := baseEntity()
	incoming := &model.NormalizedRecord{
		SourceID:  "scrape",
		LegalName: "Acme",
		Keywords:  []string{"CLOUD", "saas", "devops"},
	}

	merged := Merge(e, incoming, model.MatchRegistryExact, 1.0, 3)

	// Primary order first, case-insensitive dedupe, capped at 3.
	assert.Equal(t, []string{"software", "cloud", "saas"}, merged.Keywords)
}

func TestMerge_Provenance(t *testing.T) {
	e := baseEntity()
	incoming := &model.NormalizedRecord{SourceID: "scrape", LegalName: "Acme"}

	merged := Merge(e, incoming, model.MatchWebsiteExact, 1.0, 10)

	assert.Equal(t, []string{"registry", "scrape"}, merged.ContributingSources)
	require.Len(t, merged.MatchHistory, 1)
	assert.Equal(t, model.MatchRecord{
		SourceID:  "scrape",
		MatchType: model.MatchWebsiteExact,
		Score:     1.0,
	}, merged.MatchHistory[0])
}

func TestMerge_DuplicateSourceNotRepeated(t *testing.T) {
	e := baseEntity()
	incoming := &model.NormalizedRecord{SourceID: "registry", LegalName: "Acme"}

	merged := Merge(e, incoming, model.MatchRegistryExact, 1.0, 10)

	assert.Equal(t, []string{"registry"}, merged.ContributingSources)
	assert.Len(t, merged.MatchHistory, 1)
}

func TestMerge_Idempotent(t *testing.T) {
	e := baseEntity()
	dup := &model.NormalizedRecord{
		SourceID:       "scrape",
		RegistryID:     e.RegistryID,
		LegalName:      e.LegalName,
		NormalizedName: e.NormalizedName,
		Industry:       e.Industry,
		Keywords:       append([]string(nil), e.Keywords...),
	}

	once := Merge(e, dup, model.MatchRegistryExact, 1.0, 10)
	twice := Merge(once, dup, model.MatchRegistryExact, 1.0, 10)

	// Field values settle after one merge; only provenance grows.
	assert.Equal(t, once.NormalizedRecord, twice.NormalizedRecord)
	assert.Equal(t, once.ContributingSources, twice.ContributingSources)
	assert.Len(t, twice.MatchHistory, 2)
}

func TestMerge_QualityScoreRecomputed(t *testing.T) {
	e := baseEntity()
	incoming := &model.NormalizedRecord{
		SourceID:     "scrape",
		LegalName:    "Acme",
		Website:      "https://acme.sg",
		ContactEmail: "hello@acme.sg",
	}

	merged := Merge(e, incoming, model.MatchRegistryExact, 1.0, 10)
	assert.Greater(t, merged.QualityScore, e.QualityScore)
}

func TestMerge_DoesNotMutatePrimary(t *testing.T) {
	e := baseEntity()
	incoming := &model.NormalizedRecord{
		SourceID:  "scrape",
		LegalName: "Acme",
		Website:   "https://acme.sg",
		Keywords:  []string{"fintech"},
	}

	_ = Merge(e, incoming, model.MatchRegistryExact, 1.0, 10)

	assert.Empty(t, e.Website)
	assert.Equal(t, []string{"software", "cloud"}, e.Keywords)
	assert.Empty(t, e.MatchHistory)
}
