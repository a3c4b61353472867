// Package validation checks form input locally and turns it into API
// requests. A failed check never reaches the network.
package validation

import (
	"strconv"
	"strings"
	"time"

	"github.com/five82/mycoach/internal/api"
)

// EventStartLayout is the form layout for calendar event starts.
const EventStartLayout = "2006-01-02 15:04"

// ClientForm is the raw client form input.
type ClientForm struct {
	Name       string
	Email      string
	Phone      string
	Notes      string
	HourlyRate string
}

// Client validates a client form. A blank rate means 0.
func Client(form ClientForm) (api.ClientRequest, error) {
	ve := &ValidationError{}
	req := api.ClientRequest{
		Name:  strings.TrimSpace(form.Name),
		Email: api.Optional(form.Email),
		Phone: api.Optional(form.Phone),
		Notes: api.Optional(form.Notes),
	}
	if req.Name == "" {
		ve.addRequired("name")
	}
	if email := api.Deref(req.Email); email != "" && !strings.Contains(email, "@") {
		ve.addFormat("email", email, "name@example.com")
	}
	if rate := strings.TrimSpace(form.HourlyRate); rate != "" {
		m, err := api.NewMoney(rate)
		switch {
		case err != nil:
			ve.addFormat("hourly_rate", rate, "a decimal amount")
		case m.IsNegative():
			ve.addRange("hourly_rate", rate, "must not be negative")
		default:
			req.HourlyRate = m
		}
	}
	return req, ve.result()
}

// SessionForm is the raw session form input.
type SessionForm struct {
	ClientID int
	Date     string
	Duration string
	Notes    string
	Billed   bool
}

// Session validates a session form. Duration is in minutes.
func Session(form SessionForm) (api.SessionRequest, error) {
	ve := &ValidationError{}
	req := api.SessionRequest{
		ClientID: form.ClientID,
		Date:     strings.TrimSpace(form.Date),
		Notes:    api.Optional(form.Notes),
		Billed:   form.Billed,
	}
	checkClientID(ve, form.ClientID)
	checkDate(ve, req.Date)
	req.DurationMinutes = positiveInt(ve, "duration", form.Duration)
	return req, ve.result()
}

// PaymentForm is the raw payment form input.
type PaymentForm struct {
	ClientID int
	Date     string
	Amount   string
	Method   string
	Notes    string
}

// Payment validates a payment form. Zero and negative amounts are allowed
// for corrections and refunds.
func Payment(form PaymentForm) (api.PaymentRequest, error) {
	ve := &ValidationError{}
	req := api.PaymentRequest{
		ClientID: form.ClientID,
		Date:     strings.TrimSpace(form.Date),
		Method:   api.Optional(form.Method),
		Notes:    api.Optional(form.Notes),
	}
	checkClientID(ve, form.ClientID)
	checkDate(ve, req.Date)
	amount := strings.TrimSpace(form.Amount)
	if amount == "" {
		ve.addRequired("amount")
	} else if m, err := api.NewMoney(amount); err != nil {
		ve.addFormat("amount", amount, "a decimal amount")
	} else {
		req.Amount = m
	}
	return req, ve.result()
}

// EventForm is the raw calendar event form input.
type EventForm struct {
	Title       string
	Start       string
	Duration    string
	Description string
}

// CalendarEvent validates an event form. Start accepts EventStartLayout in
// local time or RFC 3339, and is sent as RFC 3339.
func CalendarEvent(form EventForm) (api.CalendarEventRequest, error) {
	ve := &ValidationError{}
	req := api.CalendarEventRequest{
		Title:       strings.TrimSpace(form.Title),
		Description: strings.TrimSpace(form.Description),
	}
	if req.Title == "" {
		ve.addRequired("title")
	}
	start := strings.TrimSpace(form.Start)
	if start == "" {
		ve.addRequired("start")
	} else if t, ok := parseStart(start); !ok {
		ve.addFormat("start", start, EventStartLayout)
	} else {
		req.Start = t.Format(time.RFC3339)
	}
	req.DurationMinutes = positiveInt(ve, "duration", form.Duration)
	return req, ve.result()
}

func parseStart(value string) (time.Time, bool) {
	if t, err := time.ParseInLocation(EventStartLayout, value, time.Local); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func checkClientID(ve *ValidationError, id int) {
	if id <= 0 {
		ve.addRequired("client")
	}
}

func checkDate(ve *ValidationError, value string) {
	if value == "" {
		ve.addRequired("date")
		return
	}
	if _, err := time.Parse(api.DateLayout, value); err != nil {
		ve.addFormat("date", value, "YYYY-MM-DD")
	}
}

func positiveInt(ve *ValidationError, field, raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		ve.addRequired(field)
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		ve.addFormat(field, raw, "whole minutes")
		return 0
	}
	if n <= 0 {
		ve.addRange(field, raw, "must be greater than zero")
		return 0
	}
	return n
}
