// Package screens instantiates the generic state holder once per resource.
package screens

import (
	"context"
	"log/slog"
	"slices"
	"sync/atomic"

	"github.com/five82/mycoach/internal/api"
	"github.com/five82/mycoach/internal/state"
)

// Backend is every API the screens use. *api.Service implements it.
type Backend interface {
	api.DashboardAPI
	api.ClientsAPI
	api.SessionsAPI
	api.PaymentsAPI
	api.CalendarAPI
}

var _ Backend = (*api.Service)(nil)

type (
	// DashboardHolder loads the aggregate dashboard.
	DashboardHolder = state.Holder[api.DashboardStats, state.None, int, struct{}]
	// ClientsHolder loads and edits the client list.
	ClientsHolder = state.Holder[[]api.Client, state.None, int, api.ClientRequest]
	// ClientHolder loads and edits one client; the filter is its id.
	ClientHolder = state.Holder[api.Client, int, int, api.ClientRequest]
	// SessionsHolder loads sessions filtered by client id (0 = all).
	SessionsHolder = state.Holder[[]api.Session, int, int, api.SessionRequest]
	// PaymentsHolder loads payments filtered by client id (0 = all).
	PaymentsHolder = state.Holder[[]api.Payment, int, int, api.PaymentRequest]
	// CalendarHolder loads the calendar; the filter is the look-ahead in days.
	CalendarHolder = state.Holder[Calendar, int, string, api.CalendarEventRequest]
)

// Calendar is the calendar screen's data.
type Calendar struct {
	Connected bool
	Events    []api.CalendarEvent
}

// NewDashboard returns the dashboard holder.
func NewDashboard(b Backend, logger *slog.Logger) *DashboardHolder {
	return state.New("dashboard", state.Ops[api.DashboardStats, state.None, int, struct{}]{
		Load: func(ctx context.Context, _ state.None) (api.DashboardStats, error) {
			return b.GetDashboard(ctx)
		},
	}, logger)
}

// NewClients returns the client list holder.
func NewClients(b Backend, logger *slog.Logger) *ClientsHolder {
	return state.New("clients", state.Ops[[]api.Client, state.None, int, api.ClientRequest]{
		Load: func(ctx context.Context, _ state.None) ([]api.Client, error) {
			return b.ListClients(ctx)
		},
		Create: b.CreateClient,
		Update: b.UpdateClient,
		Delete: b.DeleteClient,
		Clone:  slices.Clone[[]api.Client],
	}, logger)
}

// NewClient returns a holder for editing one client. Load with the client
// id; Save reloads that id. Create and Delete return state.ErrUnsupported.
func NewClient(b Backend, logger *slog.Logger) *ClientHolder {
	return state.New("client", state.Ops[api.Client, int, int, api.ClientRequest]{
		Load:   b.GetClient,
		Update: b.UpdateClient,
	}, logger)
}

// NewSessions returns the session list holder.
func NewSessions(b Backend, logger *slog.Logger) *SessionsHolder {
	return state.New("sessions", state.Ops[[]api.Session, int, int, api.SessionRequest]{
		Load:   b.ListSessions,
		Create: b.CreateSession,
		Delete: b.DeleteSession,
		Clone:  slices.Clone[[]api.Session],
	}, logger)
}

// NewPayments returns the payment list holder.
func NewPayments(b Backend, logger *slog.Logger) *PaymentsHolder {
	return state.New("payments", state.Ops[[]api.Payment, int, int, api.PaymentRequest]{
		Load:   b.ListPayments,
		Create: b.CreatePayment,
		Delete: b.DeletePayment,
		Clone:  slices.Clone[[]api.Payment],
	}, logger)
}

// NewCalendar returns the calendar holder. Events are only fetched when a
// calendar is connected.
func NewCalendar(b Backend, logger *slog.Logger) *CalendarHolder {
	return state.New("calendar", state.Ops[Calendar, int, string, api.CalendarEventRequest]{
		Load: func(ctx context.Context, days int) (Calendar, error) {
			status, err := b.CalendarStatus(ctx)
			if err != nil {
				return Calendar{}, err
			}
			if !status.Connected {
				return Calendar{}, nil
			}
			events, err := b.ListEvents(ctx, days)
			if err != nil {
				return Calendar{}, err
			}
			return Calendar{Connected: true, Events: events}, nil
		},
		Create: func(ctx context.Context, req api.CalendarEventRequest) (api.Ack, error) {
			event, err := b.CreateEvent(ctx, req)
			if err != nil {
				return api.Ack{}, err
			}
			return api.Ack{Message: "Event created: " + event.Title}, nil
		},
		Delete: b.DeleteEvent,
		Clone: func(c Calendar) Calendar {
			c.Events = slices.Clone(c.Events)
			return c
		},
	}, logger)
}

// Set bundles the holders behind the main views.
type Set struct {
	Dashboard *DashboardHolder
	Clients   *ClientsHolder
	Sessions  *SessionsHolder
	Payments  *PaymentsHolder
	Calendar  *CalendarHolder

	focus atomic.Value // screen name
}

// NewSet builds every list holder over one backend.
func NewSet(b Backend, logger *slog.Logger) *Set {
	return &Set{
		Dashboard: NewDashboard(b, logger),
		Clients:   NewClients(b, logger),
		Sessions:  NewSessions(b, logger),
		Payments:  NewPayments(b, logger),
		Calendar:  NewCalendar(b, logger),
	}
}

// Close tears every holder down.
func (s *Set) Close() {
	s.Dashboard.Close()
	s.Clients.Close()
	s.Sessions.Close()
	s.Payments.Close()
	s.Calendar.Close()
}

// Screen names, in tab order.
const (
	ScreenDashboard = "dashboard"
	ScreenClients   = "clients"
	ScreenSessions  = "sessions"
	ScreenPayments  = "payments"
	ScreenCalendar  = "calendar"
)

// Names lists the screens in tab order.
var Names = []string{ScreenDashboard, ScreenClients, ScreenSessions, ScreenPayments, ScreenCalendar}

// Refresher is the part of a holder a background refresh needs.
type Refresher interface {
	Name() string
	Reload(ctx context.Context) error
}

// Holder returns the holder behind a screen name, or nil.
func (s *Set) Holder(name string) Refresher {
	switch name {
	case ScreenDashboard:
		return s.Dashboard
	case ScreenClients:
		return s.Clients
	case ScreenSessions:
		return s.Sessions
	case ScreenPayments:
		return s.Payments
	case ScreenCalendar:
		return s.Calendar
	}
	return nil
}

// Focus records the visible screen so background refreshes target it.
func (s *Set) Focus(name string) {
	if s.Holder(name) == nil {
		return
	}
	s.focus.Store(name)
}

// Focused returns the holder of the visible screen, the dashboard by default.
func (s *Set) Focused() Refresher {
	if name, ok := s.focus.Load().(string); ok {
		return s.Holder(name)
	}
	return s.Dashboard
}
