package extract

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/tenderwatch/crawler/normalize"
	"github.com/tenderwatch/crawler/tender"
)

// Known tender types, checked by literal containment in order; the first
// hit wins and absence leaves the field empty.
var tenderTypes = []string{
	"Request for Quotation",
	"Request for Bid(Open-Tender)",
	"Request for Bid(Limited-Tender)",
	"Request for Proposal",
}

var (
	briefingSessionRe    = regexp.MustCompile(`(?i)Briefing Session\s*:\s*(Yes|No)`)
	compulsoryBriefingRe = regexp.MustCompile(`(?i)Compulsory Briefing\s*:\s*(Yes|No)`)
)

const briefingTimeTail = `(?:\s*-?\s*\d{1,2}:\d{2}(?:[AP]M)?)?`

// Briefing date chain, scoped to the bare "Date" label that follows the
// briefing block on the page.
var briefingDateRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Date\s*:\s*([A-Za-z]+day,\s*\d{1,2}\s*[A-Za-z]+\s*\d{4}` + briefingTimeTail + `)`),
	regexp.MustCompile(`(?i)Date\s*:\s*(\d{1,2}\s*[A-Za-z]+\s*\d{4}` + briefingTimeTail + `)`),
	regexp.MustCompile(`(?im)Date\s*:\s*([^\n]+?)\s*(?:Venue|$)`),
}

// ParseDetail converts the line-break-preserving text blob of one detail
// page into a fully populated record. Every field is always assigned; a
// failed extraction leaves its field empty and never aborts the record.
// The function is pure: identical blobs yield identical records.
func ParseDetail(text string) tender.Record {
	var rec tender.Record

	for _, tt := range tenderTypes {
		if strings.Contains(text, tt) {
			rec.TenderType = tt
			break
		}
	}

	rec.BidNumber = run(BidNumber, text)
	rec.Department = run(Department, text)
	rec.BidDescription = run(BidDescription, text)
	rec.Location = run(Location, text)

	rec.OpeningDate = dateWithLineFallback(text, "Opening Date")
	rec.ClosingDate = dateWithLineFallback(text, "Closing Date")
	rec.ModifiedDate = dateWithLineFallback(text, "Modified Date")
	rec.DatePublished = run(func(s string) string { return Date(s, "Date Published") }, text)

	rec.ContactPerson = run(ContactPerson, text)
	rec.Email = run(Email, text)
	rec.Tel = run(Tel, text)

	rec.BriefingSession = briefingFlag(briefingSessionRe, text)
	rec.CompulsoryBriefing = briefingFlag(compulsoryBriefingRe, text)

	// BriefingDate and Venue exist only when a briefing was announced,
	// no matter what briefing-shaped text appears elsewhere in the blob.
	if rec.BriefingSession == "YES" || rec.CompulsoryBriefing == "YES" {
		rec.BriefingDate = run(briefingDate, text)
		rec.Venue = run(Venue, text)
	}

	rec.SpecialConditions = run(SpecialConditions, text)

	if rec.Description == "" && rec.BidDescription != "" {
		rec.Description = rec.BidDescription
	}

	return rec
}

// run shields the record assembly from a panicking extractor; the field
// stays empty and the rest of the record is still produced.
func run(extractor func(string) string, text string) (value string) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Warn("field extractor panicked", zap.Any("cause", r))
			value = ""
		}
	}()

	return extractor(text)
}

func briefingFlag(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}

	return strings.ToUpper(m[1])
}

func briefingDate(text string) string {
	for _, re := range briefingDateRes {
		if m := re.FindStringSubmatch(text); m != nil {
			return normalize.Clean(m[1])
		}
	}

	return ""
}

// dateWithLineFallback runs the regular date chain, then falls back to a
// plain line scan when the chain produced a degenerate candidate. Some
// pages render each date in its own paragraph, which the line scan picks
// up even when the blob-level patterns tripped on surrounding text.
func dateWithLineFallback(text, label string) string {
	value := run(func(s string) string { return Date(s, label) }, text)
	if len(value) > 2 {
		return value
	}

	if line := lineDate(text, label); line != "" {
		return line
	}

	return value
}

func lineDate(text, label string) string {
	prefix := label + ":"
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, prefix); ok {
			return normalize.Clean(rest)
		}
	}

	return ""
}
