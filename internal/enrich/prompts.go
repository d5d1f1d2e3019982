package enrich

import (
	"fmt"
	"strings"

	"github.com/sells-group/company-pipeline/internal/model"
)

// Task names, used in logs and confidence scoring.
const (
	taskIndustry = "industry_classification"
	taskKeywords = "keyword_extraction"
	taskSize     = "company_size_estimation"
	taskProducts = "products_services_extraction"
	taskContact  = "contact_info_extraction"
	taskQuality  = "data_quality_assessment"
)

const enrichSystemPrompt = `You are a data analyst enriching a company database. Answer each request using only the provided company information. Follow the requested output format exactly and do not add commentary.`

const industryPrompt = `Analyze the following company information and classify it into ONE of these industries:
%s

Company Name: %s
Website Content: %s
Description: %s

Consider the company's primary business activity, products, and services. Return ONLY the industry name from the list above.

Industry:`

const keywordsPrompt = `Extract 5-10 relevant business keywords from the following company information. Focus on:
- Products and services offered
- Technologies used
- Market segments served
- Business model
- Key capabilities

Company Name: %s
Website Content: %s
About Us: %s

Return keywords as a comma-separated list. Be specific and avoid generic terms.

Keywords:`

const sizePrompt = `Based on the following company information, estimate the company size category:
%s

Company Name: %s
Website Content: %s
About Us: %s
Team/Career Pages: %s

Look for indicators like:
- Explicit employee count mentions
- Team size descriptions
- Office locations
- Scale of operations
- Language used (e.g., "we are a small team", "our 500+ employees")

Return ONLY the size category from the list above.

Company Size:`

const productsPrompt = `Extract the main products and services offered by this company from the provided information.

Company Name: %s
Website Content: %s
Products/Services Pages: %s

Separate products and services clearly. Be specific and avoid marketing language.

Format your response as:
PRODUCTS: [list products separated by semicolons]
SERVICES: [list services separated by semicolons]

If no clear distinction, list everything under SERVICES.

Response:`

const contactPrompt = `Extract contact information from the following company website content:

Company Name: %s
Website Content: %s
Contact Page: %s

Look for:
- Email addresses (especially general/info emails)
- Phone numbers (Singapore format preferred)
- Physical addresses

Format your response as:
EMAIL: [email address or "Not found"]
PHONE: [phone number or "Not found"]
ADDRESS: [physical address or "Not found"]

Response:`

const qualityPrompt = `Assess the quality and completeness of this company data on a scale of 0.0 to 1.0:

Company Data:
- Name: %s
- Website: %s
- Industry: %s
- Employee Count: %s
- Revenue: %s
- Contact Info: Email: %s, Phone: %s
- Description: %s

Consider:
- Completeness of information
- Consistency across fields
- Reliability of sources
- Data freshness indicators

Return ONLY a decimal number between 0.0 and 1.0.

Quality Score:`

// truncate limits free-text context to keep prompts inside the token budget.
func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func buildIndustryPrompt(e *model.CanonicalEntity, industries []string) string {
	return fmt.Sprintf(industryPrompt,
		strings.Join(industries, ", "),
		e.LegalName,
		truncate(e.WebsiteContent, 2000),
		truncate(e.Description, 500),
	)
}

func buildKeywordsPrompt(e *model.CanonicalEntity) string {
	return fmt.Sprintf(keywordsPrompt,
		e.LegalName,
		truncate(e.WebsiteContent, 2000),
		truncate(e.AboutContent, 1000),
	)
}

func buildSizePrompt(e *model.CanonicalEntity, sizes []string) string {
	return fmt.Sprintf(sizePrompt,
		strings.Join(sizes, ", "),
		e.LegalName,
		truncate(e.WebsiteContent, 1500),
		truncate(e.AboutContent, 1000),
		truncate(e.TeamContent, 1000),
	)
}

func buildProductsPrompt(e *model.CanonicalEntity) string {
	return fmt.Sprintf(productsPrompt,
		e.LegalName,
		truncate(e.WebsiteContent, 2000),
		truncate(e.ProductsContent, 1500),
	)
}

func buildContactPrompt(e *model.CanonicalEntity) string {
	return fmt.Sprintf(contactPrompt,
		e.LegalName,
		truncate(e.WebsiteContent, 1500),
		truncate(e.ContactContent, 1000),
	)
}

func buildQualityPrompt(e *model.CanonicalEntity) string {
	employees := "N/A"
	if e.EmployeeCount != nil {
		employees = fmt.Sprintf("%d", *e.EmployeeCount)
	}
	revenue := "N/A"
	if e.Revenue != nil {
		revenue = fmt.Sprintf("%.0f", *e.Revenue)
	}
	return fmt.Sprintf(qualityPrompt,
		orNA(e.LegalName),
		orNA(e.Website),
		orNA(e.Industry),
		employees,
		revenue,
		orNA(e.ContactEmail),
		orNA(e.ContactPhone),
		truncate(orNA(e.Description), 500),
	)
}
