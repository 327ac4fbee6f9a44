package domain

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Location is either a free-text place name or a structured suggestion
// picked from the autocomplete list.
type Location struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// structured is false when the location was given as a bare string.
	structured bool
}

func TextLocation(s string) Location { return Location{Name: s} }

func PlaceLocation(name, description string) Location {
	return Location{Name: name, Description: description, structured: true}
}

// Label is the human readable place name used for mock data and logs.
func (l Location) Label() string { return strings.TrimSpace(l.Name) }

func (l Location) IsZero() bool { return l.Label() == "" }

// Query builds the provider "q" value: "hotels in <name>[, <region>]".
// The region is the second comma-separated segment of a structured
// location's description, when there is one.
func (l Location) Query() string {
	q := "hotels in " + l.Label()
	if !l.structured || l.Description == "" {
		return q
	}
	parts := strings.Split(l.Description, ",")
	if len(parts) < 2 {
		return q
	}
	if region := strings.TrimSpace(parts[1]); region != "" {
		q += ", " + region
	}
	return q
}

func (l Location) MarshalJSON() ([]byte, error) {
	if !l.structured {
		return json.Marshal(l.Name)
	}
	type plain struct {
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
	}
	return json.Marshal(plain{Name: l.Name, Description: l.Description})
}

// UnmarshalJSON accepts a bare string, an object {name, description} or null.
func (l *Location) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*l = Location{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = TextLocation(s)
		return nil
	}
	var obj struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	*l = PlaceLocation(obj.Name, obj.Description)
	return nil
}

type Guests struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
}

// OrDefault fills the provider defaults (2 adults, 0 children).
func (g Guests) OrDefault() Guests {
	if g.Adults <= 0 {
		g.Adults = 2
	}
	if g.Children < 0 {
		g.Children = 0
	}
	return g
}

type SearchParams struct {
	Location Location `json:"location"`
	CheckIn  string   `json:"checkIn,omitempty"`
	CheckOut string   `json:"checkOut,omitempty"`
	Guests   Guests   `json:"guests"`
}

// ValidDate reports whether s is YYYY-MM-DD and a real calendar date.
func ValidDate(s string) bool {
	if !datePattern.MatchString(s) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// CheckFormat performs the provider-level precondition checks: location
// present and both dates well formed. Ordering is not checked here.
func (p SearchParams) CheckFormat() error {
	if p.Location.IsZero() {
		return ErrInvalidLocation
	}
	if p.CheckIn == "" || p.CheckOut == "" || !ValidDate(p.CheckIn) || !ValidDate(p.CheckOut) {
		return ErrInvalidDates
	}
	return nil
}

// CheckOrder rejects ranges where check-out is not strictly after check-in.
// Both dates must already be valid.
func (p SearchParams) CheckOrder() error {
	in, err := time.Parse(DateLayout, p.CheckIn)
	if err != nil {
		return ErrInvalidDates
	}
	out, err := time.Parse(DateLayout, p.CheckOut)
	if err != nil {
		return ErrInvalidDates
	}
	if !out.After(in) {
		return NewError(KindInvalidDates, "Check-out date must be after check-in date.", nil)
	}
	return nil
}

// SearchParamsPatch is a partial update; nil fields are left untouched.
type SearchParamsPatch struct {
	Location *Location `json:"location,omitempty"`
	CheckIn  *string   `json:"checkIn,omitempty"`
	CheckOut *string   `json:"checkOut,omitempty"`
	Guests   *Guests   `json:"guests,omitempty"`
}

// Apply merges the patch shallowly into p.
func (pp SearchParamsPatch) Apply(p SearchParams) SearchParams {
	if pp.Location != nil {
		p.Location = *pp.Location
	}
	if pp.CheckIn != nil {
		p.CheckIn = *pp.CheckIn
	}
	if pp.CheckOut != nil {
		p.CheckOut = *pp.CheckOut
	}
	if pp.Guests != nil {
		p.Guests = *pp.Guests
	}
	return p
}

// HotelQuery is the provider client input.
type HotelQuery struct {
	Params SearchParams
	APIKey string
}
