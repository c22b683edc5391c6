package domain

import (
	"encoding/json"
	"time"
)

// ISOLayout is the timestamp layout of browser-written records: UTC with
// exactly three fractional digits, as produced by Date.prototype.toISOString.
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

// isoTime encodes a time.Time in ISOLayout. Decoding uses time.Time's own
// RFC 3339 parser, which accepts any fractional precision.
type isoTime time.Time

func (t isoTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).UTC().Format(ISOLayout))
}

func isoPtr(t *time.Time) *isoTime {
	if t == nil {
		return nil
	}
	v := isoTime(*t)
	return &v
}

// MarshalJSON writes the persisted ticket layout. The embedded fields keep
// their order and the two timestamps, declared at a shallower depth, replace
// the time.Time ones at the end.
func (t Ticket) MarshalJSON() ([]byte, error) {
	type plain Ticket
	return json.Marshal(struct {
		plain
		CreatedAt isoTime  `json:"createdAt"`
		UpdatedAt *isoTime `json:"updatedAt,omitempty"`
	}{plain(t), isoTime(t.CreatedAt), isoPtr(t.UpdatedAt)})
}

// MarshalJSON writes the persisted user layout; tickets come last, where the
// browser appends them.
func (u User) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        string   `json:"id"`
		Name      string   `json:"name"`
		Email     string   `json:"email"`
		Password  string   `json:"password"`
		CreatedAt isoTime  `json:"createdAt"`
		Tickets   []Ticket `json:"tickets"`
	}{u.ID, u.Name, u.Email, u.Password, isoTime(u.CreatedAt), u.Tickets})
}

// MarshalJSON writes the persisted session layout.
func (s Session) MarshalJSON() ([]byte, error) {
	type plain Session
	return json.Marshal(struct {
		plain
		LoggedInAt isoTime `json:"loggedInAt"`
	}{plain(s), isoTime(s.LoggedInAt)})
}
