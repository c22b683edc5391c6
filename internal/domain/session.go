package domain

import "time"

// Session identifies the logged-in user of a profile. It never carries the password.
type Session struct {
	ID         string    `json:"id" yaml:"id"`
	Email      string    `json:"email" yaml:"email"`
	Name       string    `json:"name" yaml:"name"`
	LoggedInAt time.Time `json:"loggedInAt" yaml:"loggedInAt"`
}

// NewSession projects user into a session stamped at now.
func NewSession(user User, now time.Time) Session {
	return Session{
		ID:         user.ID,
		Email:      user.Email,
		Name:       user.Name,
		LoggedInAt: now,
	}
}
