// Package generators provides dummy-PII generation functions used when
// redacting in substitute mode. Each generator takes the original value so it
// can roughly match its shape (digit grouping, URL scheme, name casing).
package generators

import (
	"fmt"
	"math/rand"
	"strings"
	"unicode"
)

var firstNames = []string{
	"Alex", "Jordan", "Taylor", "Morgan", "Casey", "Riley", "Avery",
	"Quinn", "Blake", "Cameron", "Drew", "Emerson", "Finley", "Harper",
	"Jamie", "Kendall", "Logan", "Parker", "Reese", "Sawyer",
}

var surnames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller",
	"Davis", "Martinez", "Wilson", "Anderson", "Thomas", "Moore", "Jackson",
	"Martin", "Lee", "Thompson", "White", "Harris", "Clark",
}

var streetNames = []string{
	"Oak", "Maple", "Cedar", "Pine", "Elm", "Birch", "Willow",
	"Chestnut", "Spruce", "Aspen", "Juniper", "Magnolia",
}

var streetTypes = []string{"Street", "Avenue", "Lane", "Drive", "Road", "Boulevard"}

var cities = []string{
	"Springfield", "Riverside", "Fairview", "Greenville", "Madison",
	"Georgetown", "Salem", "Clinton", "Ashland", "Burlington",
	"Clayton", "Dayton", "Franklin", "Hudson", "Kingston",
}

var companyPrefixes = []string{
	"Global", "United", "Advanced", "Premier", "Apex", "Summit",
	"Pioneer", "Vertex", "Nova", "Atlas", "Meridian", "Quantum",
}

var companySuffixes = []string{
	"Systems", "Solutions", "Industries", "Technologies", "Group",
	"Partners", "Holdings", "Consulting", "Labs", "Dynamics",
}

var jobTitles = []string{
	"Software Engineer", "Project Manager", "Data Analyst",
	"Operations Director", "Account Executive", "Product Manager",
	"Research Scientist", "Marketing Specialist", "Financial Controller",
	"Systems Administrator",
}

// EmailGenerator generates a dummy email address on a reserved example domain
func EmailGenerator(rng *rand.Rand, original string) string {
	first := strings.ToLower(firstNames[rng.Intn(len(firstNames))])
	last := strings.ToLower(surnames[rng.Intn(len(surnames))])
	domains := []string{"example.com", "example.org", "example.net"}
	domain := domains[rng.Intn(len(domains))]
	return fmt.Sprintf("%s.%s@%s", first, last, domain)
}

// PhoneGenerator generates a dummy phone number, preserving the separator
// style of the original where recognizable
func PhoneGenerator(rng *rand.Rand, original string) string {
	area := 200 + rng.Intn(800)
	exchange := 200 + rng.Intn(800)
	line := rng.Intn(10000)

	switch {
	case strings.Contains(original, "("):
		return fmt.Sprintf("(%03d) %03d-%04d", area, exchange, line)
	case strings.Contains(original, "."):
		return fmt.Sprintf("%03d.%03d.%04d", area, exchange, line)
	default:
		return fmt.Sprintf("%03d-%03d-%04d", area, exchange, line)
	}
}

// FirstNameGenerator generates a dummy first name
func FirstNameGenerator(rng *rand.Rand, original string) string {
	return matchCase(firstNames[rng.Intn(len(firstNames))], original)
}

// SurnameGenerator generates a dummy surname
func SurnameGenerator(rng *rand.Rand, original string) string {
	return matchCase(surnames[rng.Intn(len(surnames))], original)
}

// FullNameGenerator generates a dummy full name
func FullNameGenerator(rng *rand.Rand, original string) string {
	first := firstNames[rng.Intn(len(firstNames))]
	last := surnames[rng.Intn(len(surnames))]
	return fmt.Sprintf("%s %s", first, last)
}

// URLGenerator generates a dummy URL, keeping the original scheme if present
func URLGenerator(rng *rand.Rand, original string) string {
	scheme := "https"
	if strings.HasPrefix(original, "http://") {
		scheme = "http"
	}
	paths := []string{"", "/about", "/contact", "/products", "/docs"}
	domains := []string{"example.com", "example.org", "example.net"}
	domain := domains[rng.Intn(len(domains))]
	return fmt.Sprintf("%s://www.%s%s", scheme, domain, paths[rng.Intn(len(paths))])
}

// StreetAddressGenerator generates a dummy street address
func StreetAddressGenerator(rng *rand.Rand, original string) string {
	number := 1 + rng.Intn(9999)
	name := streetNames[rng.Intn(len(streetNames))]
	streetType := streetTypes[rng.Intn(len(streetTypes))]
	return fmt.Sprintf("%d %s %s", number, name, streetType)
}

// LocationGenerator generates a dummy location name
func LocationGenerator(rng *rand.Rand, original string) string {
	return cities[rng.Intn(len(cities))]
}

// CompanyNameGenerator generates a dummy company name
func CompanyNameGenerator(rng *rand.Rand, original string) string {
	prefix := companyPrefixes[rng.Intn(len(companyPrefixes))]
	suffix := companySuffixes[rng.Intn(len(companySuffixes))]
	return fmt.Sprintf("%s %s", prefix, suffix)
}

// JobTitleGenerator generates a dummy job title
func JobTitleGenerator(rng *rand.Rand, original string) string {
	return jobTitles[rng.Intn(len(jobTitles))]
}

// AccountNumGenerator generates a dummy account number with the same number
// of digits as the original, or 10 digits if the original has none
func AccountNumGenerator(rng *rand.Rand, original string) string {
	digits := 0
	for _, r := range original {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if digits == 0 {
		digits = 10
	}

	var b strings.Builder
	for i := 0; i < digits; i++ {
		fmt.Fprintf(&b, "%d", rng.Intn(10))
	}
	return b.String()
}

// GenericGenerator is the fallback for labels without a dedicated generator
func GenericGenerator(rng *rand.Rand, original string) string {
	return "[REDACTED]"
}

// matchCase adjusts the replacement to the casing of the original value
func matchCase(replacement, original string) string {
	if original == strings.ToUpper(original) && original != strings.ToLower(original) {
		return strings.ToUpper(replacement)
	}
	if original == strings.ToLower(original) {
		return strings.ToLower(replacement)
	}
	return replacement
}
