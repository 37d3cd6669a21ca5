package detectors

// PIIPatterns defines regex patterns for the structured PII labels. Labels
// match the GLiNER label set so regex findings and model findings can be
// merged without translation.
var PIIPatterns = map[string]string{
	"email":          `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`,
	"phone_number":   `\b(?:\+?1[-.]?)?\(?([0-9]{3})\)?[-.]?([0-9]{3})[-.]?([0-9]{4})\b`,
	"url":            `\bhttps?://[A-Za-z0-9.-]+(?:/[^\s"'<>]*)?`,
	"account_number": `\b(?:account|acct|IBAN)[\s#:]*([A-Z0-9]{8,24})\b`,
	"street_address": `\b\d{1,5}\s+[A-Z][A-Za-z]+\s+(?:Street|St|Avenue|Ave|Drive|Dr|Boulevard|Blvd|Road|Rd|Lane|Ln|Court|Ct|Way)\b`,
}
