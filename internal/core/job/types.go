package job

import (
	"time"

	"github.com/google/uuid"
)

// MaxRawContent bounds the raw markup kept on a listing.
const MaxRawContent = 5000

// Listing is one extracted property listing. Text fields are never null;
// unknown values are empty strings or placeholders.
type Listing struct {
	ID             string    `json:"id"`
	OwnerName      string    `json:"owner_name"`
	ContactNumber  string    `json:"contact_number"`
	RoomCount      string    `json:"room_count"`
	NetArea        string    `json:"net_area"`
	IsInComplex    string    `json:"is_in_complex"`
	ComplexName    string    `json:"complex_name"`
	HeatingType    string    `json:"heating_type"`
	ParkingType    string    `json:"parking_type"`
	CreditSuitable string    `json:"credit_suitable"`
	Price          string    `json:"price"`
	ListingDate    string    `json:"listing_date"`
	RawHTML        string    `json:"raw_html"`
	ProcessedDate  time.Time `json:"processed_date"`
}

// NewListing stamps a fresh id and processing time.
func NewListing() Listing {
	return Listing{ID: uuid.NewString(), ProcessedDate: time.Now().UTC()}
}

// Attribute names, in export order.
const (
	FieldOwnerName      = "owner_name"
	FieldContactNumber  = "contact_number"
	FieldRoomCount      = "room_count"
	FieldNetArea        = "net_area"
	FieldIsInComplex    = "is_in_complex"
	FieldComplexName    = "complex_name"
	FieldHeatingType    = "heating_type"
	FieldParkingType    = "parking_type"
	FieldCreditSuitable = "credit_suitable"
	FieldPrice          = "price"
)

// AttributeNames lists the ten extracted attributes.
var AttributeNames = []string{
	FieldOwnerName, FieldContactNumber, FieldRoomCount, FieldNetArea, FieldIsInComplex,
	FieldComplexName, FieldHeatingType, FieldParkingType, FieldCreditSuitable, FieldPrice,
}

// Attr returns a pointer to the named attribute, or nil for unknown names.
func (l *Listing) Attr(name string) *string {
	switch name {
	case FieldOwnerName:
		return &l.OwnerName
	case FieldContactNumber:
		return &l.ContactNumber
	case FieldRoomCount:
		return &l.RoomCount
	case FieldNetArea:
		return &l.NetArea
	case FieldIsInComplex:
		return &l.IsInComplex
	case FieldComplexName:
		return &l.ComplexName
	case FieldHeatingType:
		return &l.HeatingType
	case FieldParkingType:
		return &l.ParkingType
	case FieldCreditSuitable:
		return &l.CreditSuitable
	case FieldPrice:
		return &l.Price
	}
	return nil
}

// Attributes returns the ten attribute values in AttributeNames order.
func (l Listing) Attributes() []string {
	out := make([]string, 0, len(AttributeNames))
	for _, name := range AttributeNames {
		out = append(out, *l.Attr(name))
	}
	return out
}

// Record tracks one scrape request through its lifecycle.
type Record struct {
	ID                string    `json:"id"`
	URL               string    `json:"url"`
	Month             int       `json:"month"`
	Year              int       `json:"year"`
	TotalListings     int       `json:"total_listings"`
	ProcessedListings int       `json:"processed_listings"`
	Status            Status    `json:"status"`
	Listings          []Listing `json:"listings"`
	CreatedDate       time.Time `json:"created_date"`
	ErrorMessage      string    `json:"error_message,omitempty"`
}

// NewRecord builds a record in the initial processing state.
func NewRecord(url string, month, year int) *Record {
	return &Record{
		ID:          uuid.NewString(),
		URL:         url,
		Month:       month,
		Year:        year,
		Status:      StatusProcessing,
		Listings:    []Listing{},
		CreatedDate: time.Now().UTC(),
	}
}

// Clone returns a deep copy so callers never share the listings slice.
func (r *Record) Clone() *Record {
	c := *r
	c.Listings = append([]Listing(nil), r.Listings...)
	if c.Listings == nil {
		c.Listings = []Listing{}
	}
	return &c
}
