package handlers

import (
	"strings"

	"github.com/spec-kit/ticketapp/internal/view"
)

// Access says who may see a page.
type Access int

const (
	AccessAnyone Access = iota
	AccessGuest
	AccessUser
)

// Route is the outcome of resolving a page path.
type Route struct {
	View     string
	Mode     string
	TicketID string
	Access   Access
}

var exactRoutes = map[string]Route{
	"/":               {View: view.PageLanding, Access: AccessAnyone},
	"/index.php":      {View: view.PageLanding, Access: AccessAnyone},
	"/auth/login":     {View: view.PageLogin, Access: AccessGuest},
	"/auth/signup":    {View: view.PageSignup, Access: AccessGuest},
	"/dashboard":      {View: view.PageDashboard, Access: AccessUser},
	"/tickets":        {View: view.PageTickets, Mode: "all", Access: AccessUser},
	"/tickets/active": {View: view.PageTickets, Mode: "active", Access: AccessUser},
	"/tickets/create": {View: view.PageTicketForm, Mode: "create", Access: AccessUser},
}

const editPrefix = "/tickets/edit/"

// NotFoundRoute is rendered, with status 404, for paths Resolve rejects.
var NotFoundRoute = Route{View: view.PageLanding, Access: AccessAnyone}

// Resolve maps a path relative to the base path onto its view.
func Resolve(path string) (Route, bool) {
	if path == "" {
		path = "/"
	}
	if r, ok := exactRoutes[path]; ok {
		return r, true
	}
	if id, ok := strings.CutPrefix(path, editPrefix); ok && id != "" && !strings.Contains(id, "/") {
		return Route{View: view.PageTicketForm, Mode: "edit", TicketID: id, Access: AccessUser}, true
	}
	return NotFoundRoute, false
}
