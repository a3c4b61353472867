package api

import (
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Client mirrors /api/clients entries. The totals and balance are computed by
// the server and must never be recomputed locally.
type Client struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
	Notes        *string `json:"notes"`
	HourlyRate   Money   `json:"hourly_rate"`
	TotalHours   float64 `json:"total_hours"`
	TotalRevenue Money   `json:"total_revenue"`
	TotalPaid    Money   `json:"total_paid"`
	Balance      Money   `json:"balance"`
}

// Key returns the list identity.
func (c Client) Key() int { return c.ID }

// Equal reports full content equality.
func (c Client) Equal(o Client) bool {
	return c.ID == o.ID &&
		c.Name == o.Name &&
		equalOptional(c.Email, o.Email) &&
		equalOptional(c.Phone, o.Phone) &&
		equalOptional(c.Notes, o.Notes) &&
		c.HourlyRate.Equal(o.HourlyRate) &&
		c.TotalHours == o.TotalHours &&
		c.TotalRevenue.Equal(o.TotalRevenue) &&
		c.TotalPaid.Equal(o.TotalPaid) &&
		c.Balance.Equal(o.Balance)
}

// ClientRequest is the body for creating or updating a client.
type ClientRequest struct {
	Name       string  `json:"name"`
	Email      *string `json:"email,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Notes      *string `json:"notes,omitempty"`
	HourlyRate Money   `json:"hourly_rate"`
}

// Session is a coaching session, optionally billed.
type Session struct {
	ID              int     `json:"id"`
	ClientID        int     `json:"client_id"`
	ClientName      string  `json:"client_name"`
	Date            string  `json:"date"`
	DurationMinutes int     `json:"duration_minutes"`
	Notes           *string `json:"notes"`
	Billed          bool    `json:"billed"`
	Amount          Money   `json:"amount"`
}

// Key returns the list identity.
func (s Session) Key() int { return s.ID }

// Equal reports full content equality.
func (s Session) Equal(o Session) bool {
	return s.ID == o.ID &&
		s.ClientID == o.ClientID &&
		s.ClientName == o.ClientName &&
		s.Date == o.Date &&
		s.DurationMinutes == o.DurationMinutes &&
		equalOptional(s.Notes, o.Notes) &&
		s.Billed == o.Billed &&
		s.Amount.Equal(o.Amount)
}

// ParsedDate returns the session date, or the zero time when malformed.
func (s Session) ParsedDate() time.Time {
	return parseDate(s.Date)
}

// SessionRequest is the body for creating a session. Billed defaults to true
// when built with NewSessionRequest.
type SessionRequest struct {
	ClientID        int     `json:"client_id"`
	Date            string  `json:"date"`
	DurationMinutes int     `json:"duration_minutes"`
	Notes           *string `json:"notes,omitempty"`
	Billed          bool    `json:"billed"`
}

// NewSessionRequest returns a billed session request.
func NewSessionRequest(clientID int, date string, minutes int) SessionRequest {
	return SessionRequest{ClientID: clientID, Date: date, DurationMinutes: minutes, Billed: true}
}

// Payment is money received from a client.
type Payment struct {
	ID         int     `json:"id"`
	ClientID   int     `json:"client_id"`
	ClientName string  `json:"client_name"`
	Date       string  `json:"date"`
	Amount     Money   `json:"amount"`
	Method     *string `json:"method"`
	Notes      *string `json:"notes"`
}

// Key returns the list identity.
func (p Payment) Key() int { return p.ID }

// Equal reports full content equality.
func (p Payment) Equal(o Payment) bool {
	return p.ID == o.ID &&
		p.ClientID == o.ClientID &&
		p.ClientName == o.ClientName &&
		p.Date == o.Date &&
		p.Amount.Equal(o.Amount) &&
		equalOptional(p.Method, o.Method) &&
		equalOptional(p.Notes, o.Notes)
}

// PaymentRequest is the body for recording a payment.
type PaymentRequest struct {
	ClientID int     `json:"client_id"`
	Date     string  `json:"date"`
	Amount   Money   `json:"amount"`
	Method   *string `json:"method,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

// DashboardStats is an aggregate snapshot with no identity of its own.
type DashboardStats struct {
	TotalClients     int     `json:"total_clients"`
	TotalSessions    int     `json:"total_sessions"`
	TotalHours       float64 `json:"total_hours"`
	TotalRevenue     Money   `json:"total_revenue"`
	TotalPaid        Money   `json:"total_paid"`
	TotalOutstanding Money   `json:"total_outstanding"`
}

// CalendarStatus mirrors /api/calendar/status.
type CalendarStatus struct {
	Connected bool `json:"connected"`
}

// CalendarEvent is an event owned by the external calendar provider.
type CalendarEvent struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Description string `json:"description"`
	HTMLLink    string `json:"html_link"`
}

// Key returns the list identity.
func (e CalendarEvent) Key() string { return e.ID }

// Equal reports full content equality.
func (e CalendarEvent) Equal(o CalendarEvent) bool {
	return e == o
}

// ParsedStart returns the start time, or the zero time when malformed.
func (e CalendarEvent) ParsedStart() time.Time {
	return parseDateTime(e.Start)
}

// ParsedEnd returns the end time, or the zero time when malformed.
func (e CalendarEvent) ParsedEnd() time.Time {
	return parseDateTime(e.End)
}

// CalendarEventRequest is the body for creating a calendar event.
type CalendarEventRequest struct {
	Title           string `json:"title"`
	Start           string `json:"start"`
	DurationMinutes int    `json:"duration_minutes"`
	Description     string `json:"description"`
}

// Ack is the acknowledgement returned by write endpoints. The client never
// trusts it beyond the id and message.
type Ack struct {
	ID      *int   `json:"id,omitempty"`
	Message string `json:"message"`
}

// HasID reports whether the server echoed an id.
func (a Ack) HasID() bool { return a.ID != nil }

// IDValue returns the echoed id or 0.
func (a Ack) IDValue() int {
	if a.ID == nil {
		return 0
	}
	return *a.ID
}

// Optional returns nil for blank strings, a pointer to the trimmed value otherwise.
func Optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

// Deref returns the pointed-to string or "".
func Deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func equalOptional(a, b *string) bool {
	return Deref(a) == Deref(b) && (a == nil) == (b == nil)
}

func parseDate(value string) time.Time {
	t, err := time.ParseInLocation(DateLayout, value, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseDateTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", DateLayout} {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}
