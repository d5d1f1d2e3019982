package normalize

import (
	"math"

	"github.com/sells-group/company-pipeline/internal/model"
)

// Field weights for the quality score. Core identity fields count double.
const (
	coreFieldWeight     = 2.0
	standardFieldWeight = 1.0
)

// Score computes the completeness quality score for a record: the weighted
// sum of populated indicators over the maximum possible sum, rounded to two
// decimal places. Always in [0,1] and deterministic for a given field set.
func Score(rec *model.NormalizedRecord) float64 {
	coreIndicators := []bool{
		rec.RegistryID != "",
		rec.LegalName != "",
		rec.Website != "",
		rec.Industry != "",
	}
	standardIndicators := []bool{
		rec.ContactEmail != "",
		rec.ContactPhone != "",
		rec.HasSocialLink(),
		rec.EmployeeCount != nil,
		rec.SizeCategory != "",
		rec.FoundingYear != nil,
		len(rec.Keywords) > 0,
	}

	total := 0.0
	for _, present := range coreIndicators {
		if present {
			total += coreFieldWeight
		}
	}
	for _, present := range standardIndicators {
		if present {
			total += standardFieldWeight
		}
	}

	max := coreFieldWeight*float64(len(coreIndicators)) + standardFieldWeight*float64(len(standardIndicators))
	return Round2(math.Min(1.0, total/max))
}

// Round2 rounds to two decimal places.
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}
