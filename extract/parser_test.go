package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleBlob = `Request for Quotation
RFQ NUMBER 12/2024
Department: Department of Health
Bid Description: Supply and delivery of surgical masks
Place where goods, works or services are required: Pretoria CBD
Opening Date: Friday, 3 May 2024 11:00 AM
Closing Date: Monday, 6 May 2024 10:00
Date Published: 1 May 2024
Enquiries: Ms T Mokoena
Tel: 012 345 6789
Email: T.Mokoena@Health.GOV.ZA
Briefing Session: Yes
Compulsory Briefing: No
Date: Thursday, 2 May 2024 - 09:00
Venue: Main Boardroom, Civic Centre
Special Conditions: Valid tax clearance certificate required`

func TestParseDetail(t *testing.T) {
	rec := ParseDetail(sampleBlob)

	assert.Equal(t, "Request for Quotation", rec.TenderType)
	assert.Equal(t, "12/2024", rec.BidNumber)
	assert.Equal(t, "Department of Health", rec.Department)
	assert.Equal(t, "Supply and delivery of surgical masks", rec.BidDescription)
	assert.Equal(t, "Pretoria CBD", rec.Location)
	assert.Equal(t, "Friday, 3 May 2024 11:00 AM", rec.OpeningDate)
	assert.Equal(t, "Monday, 6 May 2024 10:00", rec.ClosingDate)
	assert.Equal(t, "1 May 2024", rec.DatePublished)
	assert.Equal(t, "Ms T Mokoena", rec.ContactPerson)
	assert.Equal(t, "0123456789", rec.Tel)
	assert.Equal(t, "t.mokoena@health.gov.za", rec.Email)
	assert.Equal(t, "YES", rec.BriefingSession)
	assert.Equal(t, "NO", rec.CompulsoryBriefing)
	assert.NotEmpty(t, rec.BriefingDate)
	assert.Equal(t, "Main Boardroom, Civic Centre", rec.Venue)
	assert.Equal(t, "Valid tax clearance certificate required", rec.SpecialConditions)
	// No standalone description on the page, so the bid description is
	// copied over.
	assert.Equal(t, rec.BidDescription, rec.Description)
}

func TestParseDetailIdempotent(t *testing.T) {
	first := ParseDetail(sampleBlob)
	second := ParseDetail(sampleBlob)

	assert.Equal(t, first, second)
}

func TestParseDetailBriefingGate(t *testing.T) {
	tests := []struct {
		name string
		blob string
	}{
		{
			name: "both flags no",
			blob: "Briefing Session: No\nCompulsory Briefing: No\nDate: Friday, 2 May 2024\nVenue: Town Hall",
		},
		{
			name: "flags absent",
			blob: "Date: Friday, 2 May 2024\nVenue: Town Hall",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ParseDetail(tt.blob)

			// Briefing-shaped text is present, but without a YES flag both
			// fields are forced empty.
			assert.Empty(t, rec.BriefingDate)
			assert.Empty(t, rec.Venue)
		})
	}
}

func TestParseDetailCompulsoryYesEnablesBriefingFields(t *testing.T) {
	blob := "Briefing Session: No\nCompulsory Briefing: Yes\nDate: 2 May 2024\nVenue: Town Hall"
	rec := ParseDetail(blob)

	assert.Equal(t, "NO", rec.BriefingSession)
	assert.Equal(t, "YES", rec.CompulsoryBriefing)
	assert.Equal(t, "2 May 2024", rec.BriefingDate)
	assert.Equal(t, "Town Hall", rec.Venue)
}

func TestParseDetailBriefingDateRestOfLine(t *testing.T) {
	// A non-date-shaped value still counts as the briefing date; the
	// lenient pattern takes the rest of the line when no Venue follows.
	blob := "Briefing Session: Yes\nDate: to be confirmed\nContact: someone"
	rec := ParseDetail(blob)

	assert.Equal(t, "YES", rec.BriefingSession)
	assert.Equal(t, "to be confirmed", rec.BriefingDate)
}

func TestParseDetailAbsentFlagsDistinctFromNo(t *testing.T) {
	rec := ParseDetail("Department: Health")

	assert.Equal(t, "", rec.BriefingSession)
	assert.Equal(t, "", rec.CompulsoryBriefing)
}

func TestParseDetailEmptyBlob(t *testing.T) {
	rec := ParseDetail("")

	assert.Empty(t, rec.TenderType)
	assert.Empty(t, rec.BidNumber)
	assert.Empty(t, rec.Department)
	assert.Empty(t, rec.OpeningDate)
	assert.Empty(t, rec.Description)
}

func TestParseDetailTenderTypeOrder(t *testing.T) {
	blob := "Request for Proposal preceded by Request for Quotation"
	rec := ParseDetail(blob)

	// First containment match in the fixed list wins, not first position
	// in the text.
	assert.Equal(t, "Request for Quotation", rec.TenderType)
}

func TestParseDetailSpecialConditionsTruncated(t *testing.T) {
	blob := "Special Conditions: " + strings.Repeat("a", 650)
	rec := ParseDetail(blob)

	assert.Len(t, rec.SpecialConditions, 500)
	assert.True(t, strings.HasSuffix(rec.SpecialConditions, "..."))
}

func TestParseDetailLineFallbackDates(t *testing.T) {
	// A page that renders each date in its own paragraph line.
	blob := "Opening Date:\nClosing Date: 6 May 2024"
	rec := ParseDetail(blob)

	assert.Equal(t, "6 May 2024", rec.ClosingDate)
}
