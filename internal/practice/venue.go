package practice

import "fmt"

const onlineToken = "online"

// Venue is where a session takes place: either a physical location or the
// online channel. The zero value means no venue was chosen.
type Venue struct {
	online     bool
	locationID string
}

func Online() Venue {
	return Venue{online: true}
}

func Physical(locationID string) Venue {
	return Venue{locationID: locationID}
}

// ParseVenue reads the text form produced by String.
func ParseVenue(s string) (Venue, error) {
	switch s {
	case "":
		return Venue{}, fmt.Errorf("empty venue")
	case onlineToken:
		return Online(), nil
	default:
		return Physical(s), nil
	}
}

func (v Venue) IsOnline() bool { return v.online }

func (v Venue) IsZero() bool { return !v.online && v.locationID == "" }

// LocationID is empty for online and unset venues.
func (v Venue) LocationID() string { return v.locationID }

func (v Venue) Equal(o Venue) bool {
	if v.online || o.online {
		return v.online == o.online
	}
	return v.locationID == o.locationID
}

func (v Venue) String() string {
	if v.online {
		return onlineToken
	}
	return v.locationID
}

func (v Venue) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Venue) UnmarshalText(b []byte) error {
	parsed, err := ParseVenue(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
