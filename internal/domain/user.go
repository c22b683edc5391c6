package domain

import "time"

// User is a registered account together with its embedded tickets.
// Tickets is nil until the collection is first loaded.
type User struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Email     string    `json:"email" yaml:"email"`
	Password  string    `json:"password" yaml:"password"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	Tickets   []Ticket  `json:"tickets" yaml:"tickets"`
}

// Directory is the full set of users persisted for one profile.
type Directory struct {
	Users    []User
	Revision int64
}

// FindByEmail returns the index of the user with email, or -1.
func (d *Directory) FindByEmail(email string) int {
	for i := range d.Users {
		if d.Users[i].Email == email {
			return i
		}
	}
	return -1
}

// FindByID returns the index of the user with id, or -1.
func (d *Directory) FindByID(id string) int {
	for i := range d.Users {
		if d.Users[i].ID == id {
			return i
		}
	}
	return -1
}
