package handlers

import (
	"testing"

	"github.com/spec-kit/ticketapp/internal/view"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		path     string
		found    bool
		view     string
		mode     string
		ticketID string
		access   Access
	}{
		{"/", true, view.PageLanding, "", "", AccessAnyone},
		{"", true, view.PageLanding, "", "", AccessAnyone},
		{"/index.php", true, view.PageLanding, "", "", AccessAnyone},
		{"/auth/login", true, view.PageLogin, "", "", AccessGuest},
		{"/auth/signup", true, view.PageSignup, "", "", AccessGuest},
		{"/dashboard", true, view.PageDashboard, "", "", AccessUser},
		{"/tickets", true, view.PageTickets, "all", "", AccessUser},
		{"/tickets/active", true, view.PageTickets, "active", "", AccessUser},
		{"/tickets/create", true, view.PageTicketForm, "create", "", AccessUser},
		{"/tickets/edit/1714564800000", true, view.PageTicketForm, "edit", "1714564800000", AccessUser},
		{"/tickets/edit/", false, view.PageLanding, "", "", AccessAnyone},
		{"/tickets/edit/a/b", false, view.PageLanding, "", "", AccessAnyone},
		{"/tickets/edit/1/", false, view.PageLanding, "", "", AccessAnyone},
		{"/nope", false, view.PageLanding, "", "", AccessAnyone},
	}
	for _, tt := range tests {
		got, found := Resolve(tt.path)
		if found != tt.found || got.View != tt.view || got.Mode != tt.mode || got.TicketID != tt.ticketID || got.Access != tt.access {
			t.Errorf("Resolve(%q) = %+v, %v", tt.path, got, found)
		}
	}
}
