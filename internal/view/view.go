// Package view renders the HTML pages and ticket fragments with html/template.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/spec-kit/ticketapp/internal/domain"
)

//go:embed templates
var templateFS embed.FS

// Page names accepted by Render.
const (
	PageLanding    = "landing"
	PageLogin      = "login"
	PageSignup     = "signup"
	PageDashboard  = "dashboard"
	PageTickets    = "tickets"
	PageTicketForm = "ticket_form"
)

var pageNames = []string{PageLanding, PageLogin, PageSignup, PageDashboard, PageTickets, PageTicketForm}

// StatusStyle is the display label and badge classes of a status.
type StatusStyle struct {
	Label string
	Class string
}

var statusStyles = map[domain.TicketStatus]StatusStyle{
	domain.TicketStatusOpen:       {Label: "Open", Class: "bg-green-100 text-green-800 border-green-300"},
	domain.TicketStatusInProgress: {Label: "In Progress", Class: "bg-amber-100 text-amber-800 border-amber-300"},
	domain.TicketStatusClosed:     {Label: "Closed", Class: "bg-gray-100 text-gray-800 border-gray-300"},
}

// Style looks up status; unknown statuses keep their raw value and get no class.
func Style(status domain.TicketStatus) StatusStyle {
	if s, ok := statusStyles[status]; ok {
		return s
	}
	return StatusStyle{Label: string(status)}
}

// FormatDate renders t as "Jan 2, 2006".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

// URL joins base and path with exactly one slash.
func URL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// Toast is a one-shot notification shown at the top of a page.
type Toast struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Success and Error build toasts of the two kinds the pages know.
func Success(msg string) *Toast { return &Toast{Message: msg, Type: "success"} }
func Error(msg string) *Toast { return &Toast{Message: msg, Type: "error"} }

// PageData is everything a page template may read.
type PageData struct {
	Title    string
	Session  *domain.Session
	Toast    *Toast
	Stats    domain.TicketStats
	Tickets  []domain.Ticket
	Ticket   *domain.Ticket
	Mode     string
	TicketID string
	Filter   string
	Form     map[string]string
	Errors   map[string]string
}

// StatCard is one tile of the dashboard stats grid.
type StatCard struct {
	Title       string
	Value       int
	Description string
	Color       string
}

// StatCards lays stats out in dashboard order.
func StatCards(stats domain.TicketStats) []StatCard {
	return []StatCard{
		{Title: "Total Tickets", Value: stats.Total, Description: "All tickets in system", Color: "text-blue-600"},
		{Title: "Open Tickets", Value: stats.Open, Description: "Awaiting action", Color: "text-green-600"},
		{Title: "In Progress", Value: stats.InProgress, Description: "Currently being worked on", Color: "text-amber-600"},
		{Title: "Resolved", Value: stats.Closed, Description: "Successfully completed", Color: "text-gray-600"},
	}
}

type cardData struct {
	Ticket      domain.Ticket
	ShowActions bool
}

// Renderer holds one parsed template set per page.
type Renderer struct {
	basePath string
	pages    map[string]*template.Template
	partials *template.Template
}

// NewRenderer parses the embedded templates. Every generated link is
// prefixed with basePath.
func NewRenderer(basePath string) (*Renderer, error) {
	funcs := template.FuncMap{
		"url":         func(path string) string { return URL(basePath, path) },
		"statusLabel": func(s domain.TicketStatus) string { return Style(s).Label },
		"statusClass": func(s domain.TicketStatus) string { return Style(s).Class },
		"formatDate":  FormatDate,
		"card": func(t domain.Ticket, showActions bool) cardData {
			return cardData{Ticket: t, ShowActions: showActions}
		},
		"statuses":  func() []domain.TicketStatus { return domain.TicketStatuses },
		"statCards": StatCards,
	}

	partials, err := template.New("partials").Funcs(funcs).ParseFS(templateFS, "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse partials: %w", err)
	}

	r := &Renderer{basePath: basePath, pages: make(map[string]*template.Template, len(pageNames)), partials: partials}
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/partials/*.html",
			"templates/pages/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// BasePath returns the prefix of generated links.
func (r *Renderer) BasePath() string {
	return r.basePath
}

// URL prefixes path with the renderer's base path.
func (r *Renderer) URL(path string) string {
	return URL(r.basePath, path)
}

// Render writes page wrapped in the layout.
func (r *Renderer) Render(w io.Writer, page string, data PageData) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

// TicketCard renders the escaped card fragment of one ticket.
func (r *Renderer) TicketCard(ticket domain.Ticket, showActions bool) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.partials.ExecuteTemplate(&buf, "ticket_card", cardData{Ticket: ticket, ShowActions: showActions}); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
