// Package extract turns the free-form text blob of a tender detail page
// into typed field values. Labels are embedded in running text rather than
// a clean table, so every field is matched by an ordered chain of patterns
// evaluated in sequence with early exit on the first hit. A miss is an
// empty string, never an error.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tenderwatch/crawler/normalize"
)

var departmentRe = regexp.MustCompile(`(?i)Department\s*:\s*([^\n]+)`)

// Department matches "Department: <value>" up to the end of the line and
// trims everything from the "Bid Description" marker onward.
func Department(text string) string {
	m := departmentRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}

	return normalize.Clean(cutBefore(m[1], "Bid Description"))
}

// Most specific shapes first; once a pattern hits, the rest are not tried.
var bidNumberRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)RFQ NUMBER\s*(\d+/\d+)`),
	regexp.MustCompile(`(?i)Request for Quotation\s*:\s*RFQ NUMBER\s*(\d+/\d+)`),
	regexp.MustCompile(`(?i)Bid Number\s*:\s*([A-Z]{2,}/\d+/\d+/\d+)`),
	regexp.MustCompile(`(?i)\b([A-Z]{2,}/\d+/\d+/\d+)\b`),
	regexp.MustCompile(`(?i)\b([A-Z]{2,}/\d+/\d+)\b`),
	regexp.MustCompile(`(?i)\b([A-Z]{2,}\d+/\d+)\b`),
	regexp.MustCompile(`\b(\d+/\d+)\b`),
}

func BidNumber(text string) string {
	for _, re := range bidNumberRes {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}

	return ""
}

var bidDescriptionRe = regexp.MustCompile(`(?is)Bid Description\s*:\s*(.*?)\s*(?:Place where|Opening Date|Closing Date|\z)`)

// BidDescription captures up to the first terminator label. The captured
// value is re-split on "Place where" in case the terminator alternation
// ran past a mangled label.
func BidDescription(text string) string {
	m := bidDescriptionRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}

	return normalize.Clean(cutBefore(m[1], "Place where"))
}

var locationRe = regexp.MustCompile(`(?is)Place where goods, works or services are required\s*:\s*(.*?)\s*(?:Opening Date|Closing Date|\z)`)

func Location(text string) string {
	m := locationRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}

	return normalize.Clean(cutBefore(m[1], "Opening Date", "Closing Date"))
}

// Labels of other fields; a date candidate containing one of these ran
// past its own field and is truncated at the first occurrence.
var dateStopWords = []string{
	"Enquiries",
	"Email",
	"Tel",
	"Briefing",
	"Department",
	"Bid Description",
	"Opening Date",
	"Closing Date",
	"Modified Date",
}

const dayTimeTail = `(?:\s+\d{1,2}:\d{2}(?:\s*[AP]M)?)?`

// Date extracts the value of a date-bearing label ("Opening Date",
// "Closing Date", "Modified Date", "Date Published"). Four patterns are
// tried from most to least specific: weekday-name date, plain date, rest
// of line, anything up to a double space or newline. Candidates that
// still contain another field's label are truncated at it; single
// character candidates are treated as misses. A final lenient single-line
// match runs when the whole chain fails.
func Date(text, label string) string {
	q := regexp.QuoteMeta(label)
	patterns := []*regexp.Regexp{
		regexp.MustCompile(fmt.Sprintf(`(?i)%s\s*:\s*([A-Za-z]{3,9}day,\s*\d{1,2}\s*[A-Za-z]{3,9}\s*\d{4}%s)`, q, dayTimeTail)),
		regexp.MustCompile(fmt.Sprintf(`(?i)%s\s*:\s*(\d{1,2}\s*[A-Za-z]{3,9}\s*\d{4}%s)`, q, dayTimeTail)),
		regexp.MustCompile(fmt.Sprintf(`(?i)%s\s*:\s*([^\n]+)`, q)),
		regexp.MustCompile(fmt.Sprintf(`(?is)%s\s*:\s*(.+?)(?:\s{2,}|\n|\z)`, q)),
	}

	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		candidate := normalize.Clean(m[1])
		for _, stop := range dateStopWords {
			if stop == label {
				continue
			}
			if idx := strings.Index(candidate, stop); idx >= 0 {
				candidate = strings.TrimSpace(candidate[:idx])
				break
			}
		}

		// A single character means the pattern latched onto noise.
		if len(candidate) > 1 {
			return candidate
		}
	}

	simple := regexp.MustCompile(fmt.Sprintf(`(?im)%s\s*:\s*(\S[^\n]*)`, q))
	if m := simple.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}

	return ""
}

var contactRes = []*regexp.Regexp{
	regexp.MustCompile(`(?is)(?:Enquiries|Contact Person)\s*:\s*([^0-9,]+?)\s*(?:Tel|Email|\z)`),
	regexp.MustCompile(`(?is)(?:Enquiries|Contact Person)\s*:\s*([^,]+?)\s*(?:@|Tel|Email|\z)`),
}

var (
	phoneRemnantRe = regexp.MustCompile(`[\d()\-+]+`)
	emailRemnantRe = regexp.MustCompile(`(?s)@.*`)
)

// ContactPerson pulls the name behind "Enquiries"/"Contact Person" and
// strips phone and email remnants that leaked into the capture.
func ContactPerson(text string) string {
	for _, re := range contactRes {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		name := phoneRemnantRe.ReplaceAllString(m[1], "")
		name = emailRemnantRe.ReplaceAllString(name, "")

		return normalize.Clean(name)
	}

	return ""
}

var (
	emailFieldRe = regexp.MustCompile(`(?i)Email\s*:\s*([A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,})`)
	emailBareRe  = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
)

// Email prefers an explicit "Email:" label over any bare address in the
// blob. Addresses are lower-cased on return.
func Email(text string) string {
	if m := emailFieldRe.FindStringSubmatch(text); m != nil {
		return strings.ToLower(m[1])
	}

	if m := emailBareRe.FindString(text); m != "" {
		return strings.ToLower(m)
	}

	return ""
}

var telRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:Tel|Phone)\s*:\s*((?:\+27|0)[\s\-]?\d{2}[\s\-]?\d{3}[\s\-]?\d{4})`),
	regexp.MustCompile(`(?i)(?:Tel|Phone)\s*:\s*(\d{3}[\s\-]?\d{3}[\s\-]?\d{4})`),
	regexp.MustCompile(`(?i)(?:Tel|Phone)\s*:\s*(\d{10,})`),
}

var telSepRe = regexp.MustCompile(`[\s\-]`)

// Tel prefers South-African formatted numbers, then generic grouped ten
// digit numbers, then any bare long digit run. Separators are stripped.
func Tel(text string) string {
	for _, re := range telRes {
		if m := re.FindStringSubmatch(text); m != nil {
			return telSepRe.ReplaceAllString(strings.TrimSpace(m[1]), "")
		}
	}

	return ""
}

var venueRe = regexp.MustCompile(`(?is)Venue\s*:\s*(.*?)\s*(?:Special Conditions|Date|Time|\z)`)

func Venue(text string) string {
	m := venueRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}

	return normalize.Clean(cutBefore(m[1], "Special Conditions", "Date", "Time"))
}

var specialConditionsRe = regexp.MustCompile(`(?s)Special Conditions\s*:\s*(.*)`)

// Length cap for SpecialConditions, plus the three-character ellipsis.
const specialConditionsMax = 500

// SpecialConditions greedily takes everything after the label to the end
// of the blob and truncates the normalized value to 500 characters with
// an ellipsis marker.
func SpecialConditions(text string) string {
	m := specialConditionsRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}

	conditions := normalize.Clean(m[1])
	if runes := []rune(conditions); len(runes) > specialConditionsMax {
		conditions = string(runes[:specialConditionsMax-3]) + "..."
	}

	return conditions
}

// cutBefore truncates s at the earliest case-insensitive occurrence of
// any marker.
func cutBefore(s string, markers ...string) string {
	lower := strings.ToLower(s)
	cut := len(s)
	for _, marker := range markers {
		if idx := strings.Index(lower, strings.ToLower(marker)); idx >= 0 && idx < cut {
			cut = idx
		}
	}

	return s[:cut]
}
