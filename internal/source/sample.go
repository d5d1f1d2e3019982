package source

import (
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/sells-group/company-pipeline/internal/model"
)

var sampleIndustries = []string{
	"Professional Services", "Technology", "F&B", "Real Estate",
	"Manufacturing", "Healthcare", "Education", "Logistics",
	"Construction", "Retail", "FinTech", "Energy",
}

var sampleSizes = []string{
	"Micro (1-10)", "Small (11-50)", "Medium (51-200)",
	"Large (201-1000)", "Enterprise (1000+)",
}

var sizeEmployees = map[string]int{
	"Micro (1-10)":       5,
	"Small (11-50)":      30,
	"Medium (51-200)":    125,
	"Large (201-1000)":   600,
	"Enterprise (1000+)": 2500,
}

// GenerateSample produces synthetic raw records shaped like registry
// extracts. Every tenth record carries the optional contact and list
// fields. The same seed yields the same records.
func GenerateSample(count int, seed int64) []*model.RawRecord {
	faker := gofakeit.New(seed)

	records := make([]*model.RawRecord, 0, count)
	for i := 0; i < count; i++ {
		industry := sampleIndustries[faker.Number(0, len(sampleIndustries)-1)]
		size := sampleSizes[faker.Number(0, len(sampleSizes)-1)]
		year := faker.Number(1990, 2023)
		uen := fmt.Sprintf("%d%06d%s", year, faker.Number(100000, 999999),
			string(rune('A'+faker.Number(0, 7))))

		name := faker.Company()
		domain := strings.ToLower(strings.ReplaceAll(name, " ", "")) + ".com.sg"

		fields := map[string]any{
			"uen":            uen,
			"company_name":   name + " Pte Ltd",
			"industry":       industry,
			"company_size":   size,
			"founding_year":  year,
			"website":        "https://www." + domain,
			"source_of_data": "sample",
		}

		if i%10 == 0 {
			fields["contact_email"] = "info@" + domain
			fields["contact_phone"] = fmt.Sprintf("+65 6%d %d",
				faker.Number(100, 999), faker.Number(1000, 9999))
			fields["linkedin"] = "https://www.linkedin.com/company/" +
				strings.ToLower(strings.ReplaceAll(name, " ", "-"))
			fields["number_of_employees"] = sizeEmployees[size]
			fields["keywords"] = strings.ToLower(industry) + ", singapore, business"
			fields["description"] = faker.Sentence(12)
		}

		records = append(records, &model.RawRecord{
			SourceID: "sample",
			Fields:   fields,
		})
	}
	return records
}
