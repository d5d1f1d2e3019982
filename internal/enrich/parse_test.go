package enrich

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/company-pipeline/internal/config"
)

func TestParseIndustry(t *testing.T) {
	industries := config.DefaultIndustries

	got, err := parseIndustry("The industry is Technology.", industries)
	require.NoError(t, err)
	assert.Equal(t, "Technology", got)

	got, err = parseIndustry("fintech", industries)
	require.NoError(t, err)
	assert.Equal(t, "FinTech", got)

	_, err = parseIndustry("Something entirely different", industries)
	assert.Error(t, err)

	_, err = parseIndustry("", industries)
	assert.Error(t, err)
}

func TestParseSize(t *testing.T) {
	sizes := config.DefaultCompanySizes

	got, err := parseSize("Company Size: Medium (51-200)", sizes)
	require.NoError(t, err)
	assert.Equal(t, "Medium (51-200)", got)

	// A bare category word resolves to its full label.
	got, err = parseSize("Medium", sizes)
	require.NoError(t, err)
	assert.Equal(t, "Medium (51-200)", got)

	_, err = parseSize("somewhere around a hundred", sizes)
	assert.Error(t, err)
}

func TestParseKeywords(t *testing.T) {
	got, err := parseKeywords("Keywords: cloud computing, saas, ai, devops")
	require.NoError(t, err)
	assert.Equal(t, []string{"cloud computing", "saas", "devops"}, got)

	_, err = parseKeywords("a, b, c")
	assert.Error(t, err)
}

func TestParseKeywords_KeepsAllItems(t *testing.T) {
	parts := make([]string, 15)
	for i := range parts {
		parts[i] = "keyword" + strings.Repeat("x", i+1)
	}
	// Capping is the enricher's job, against the configured limit.
	got, err := parseKeywords(strings.Join(parts, ", "))
	require.NoError(t, err)
	assert.Len(t, got, 15)
}

func TestParseProductsServices(t *testing.T) {
	products, services, err := parseProductsServices(
		"PRODUCTS: CRM platform; Mobile app\nSERVICES: Consulting; Support; Training")
	require.NoError(t, err)
	assert.Equal(t, []string{"CRM platform", "Mobile app"}, products)
	assert.Equal(t, []string{"Consulting", "Support", "Training"}, services)
}

func TestParseProductsServices_ServicesOnly(t *testing.T) {
	products, services, err := parseProductsServices("SERVICES: Audit; Tax advisory")
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.Equal(t, []string{"Audit", "Tax advisory"}, services)
}

func TestParseProductsServices_CapsAtFive(t *testing.T) {
	_, services, err := parseProductsServices("SERVICES: a1; a2; a3; a4; a5; a6; a7")
	require.NoError(t, err)
	assert.Len(t, services, 5)
}

func TestParseProductsServices_NoSections(t *testing.T) {
	_, _, err := parseProductsServices("We sell many things.")
	assert.Error(t, err)
}

func TestParseContact(t *testing.T) {
	email, phone, err := parseContact("EMAIL: info@acme.sg\nPHONE: +65 6234 5678\nADDRESS: Not found")
	require.NoError(t, err)
	assert.Equal(t, "info@acme.sg", email)
	assert.Equal(t, "+65 6234 5678", phone)
}

func TestParseContact_NotFoundValues(t *testing.T) {
	email, phone, err := parseContact("EMAIL: Not found\nPHONE: +65 6234 5678")
	require.NoError(t, err)
	assert.Empty(t, email)
	assert.Equal(t, "+65 6234 5678", phone)

	_, _, err = parseContact("EMAIL: Not found\nPHONE: Not found")
	assert.Error(t, err)
}

func TestParseQualityScore(t *testing.T) {
	got, err := parseQualityScore("Quality Score: 0.85")
	require.NoError(t, err)
	assert.Equal(t, 0.85, got)

	// Clamped to [0,1].
	got, err = parseQualityScore("9.5")
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	_, err = parseQualityScore("no score here")
	assert.Error(t, err)
}

func TestConfidence(t *testing.T) {
	industries := config.DefaultIndustries
	sizes := config.DefaultCompanySizes

	assert.Zero(t, confidence("", taskIndustry, industries, sizes))

	// Enum match earns the format bonus.
	assert.InDelta(t, 0.9, confidence("Technology", taskIndustry, industries, sizes), 0.001)
	assert.InDelta(t, 0.9, confidence("Medium", taskSize, industries, sizes), 0.001)

	// Comma-separated keywords in the expected count range.
	assert.InDelta(t, 0.9, confidence("cloud, saas, devops, ai tooling", taskKeywords, industries, sizes), 0.001)

	// Short responses are penalized.
	assert.InDelta(t, 0.4, confidence("ok", taskQuality, industries, sizes), 0.001)

	// Error-indicating language is penalized.
	assert.InDelta(t, 0.5, confidence("I am unable to determine this", taskQuality, industries, sizes), 0.001)

	// Overlong responses lose a little.
	long := strings.Repeat("products and services described at length ", 30)
	assert.InDelta(t, 0.6, confidence(long, taskQuality, industries, sizes), 0.001)
}
