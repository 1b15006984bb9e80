// Package tender defines the canonical record produced for every tender
// discovered on the listings site.
package tender

// Stub is the minimal card-level tuple read off a listing page before the
// detail page is fetched. Stubs with an empty URL are never queued.
type Stub struct {
	Title string
	URL   string
	New   bool
}

// Record is the fixed-schema output unit. Every field is always present;
// a miss during extraction is an empty string, never a dropped key.
// Records are immutable once assembled.
type Record struct {
	Title              string `json:"Title"`
	URL                string `json:"URL"`
	New                bool   `json:"New"`
	TenderType         string `json:"Tender Type"`
	BidNumber          string `json:"Bid Number"`
	Department         string `json:"Department"`
	BidDescription     string `json:"Bid Description"`
	Location           string `json:"Place where goods, works or services are required"`
	OpeningDate        string `json:"Opening Date"`
	ClosingDate        string `json:"Closing Date"`
	ModifiedDate       string `json:"Modified Date"`
	DatePublished      string `json:"Date Published"`
	ContactPerson      string `json:"Enquiries/Contact Person"`
	Email              string `json:"Email"`
	Tel                string `json:"Tel"`
	BriefingSession    string `json:"Briefing Session"`
	CompulsoryBriefing string `json:"Compulsory Briefing"`
	BriefingDate       string `json:"Briefing Date"`
	Venue              string `json:"Venue"`
	SpecialConditions  string `json:"Special Conditions"`
	Description        string `json:"Description"`
}

// Columns is the canonical column order used by the Excel export and the
// storage layer. It mirrors the record field order above.
var Columns = []string{
	"Title",
	"URL",
	"New",
	"Tender Type",
	"Bid Number",
	"Department",
	"Bid Description",
	"Place where goods, works or services are required",
	"Opening Date",
	"Closing Date",
	"Modified Date",
	"Date Published",
	"Enquiries/Contact Person",
	"Email",
	"Tel",
	"Briefing Session",
	"Compulsory Briefing",
	"Briefing Date",
	"Venue",
	"Special Conditions",
	"Description",
}

// Values returns the record's fields in Columns order. The New flag is
// rendered as "true"/"false" so every cell is a string.
func (r Record) Values() []string {
	newFlag := "false"
	if r.New {
		newFlag = "true"
	}

	return []string{
		r.Title,
		r.URL,
		newFlag,
		r.TenderType,
		r.BidNumber,
		r.Department,
		r.BidDescription,
		r.Location,
		r.OpeningDate,
		r.ClosingDate,
		r.ModifiedDate,
		r.DatePublished,
		r.ContactPerson,
		r.Email,
		r.Tel,
		r.BriefingSession,
		r.CompulsoryBriefing,
		r.BriefingDate,
		r.Venue,
		r.SpecialConditions,
		r.Description,
	}
}
