package ui

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/mycoach/internal/api"
	"github.com/five82/mycoach/internal/screens"
	"github.com/five82/mycoach/internal/validation"
)

// handleScreenKey processes keys that act on the visible screen.
func (m Model) handleScreenKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.currentScreen() {
	case screens.ScreenClients:
		if m.clients.navigate(m.keys, msg) {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.New):
			m.modal = m.clientForm(api.Client{})
		case key.Matches(msg, m.keys.Edit):
			if c, ok := m.clients.selected(); ok {
				m.modal = m.clientForm(c)
			}
		case key.Matches(msg, m.keys.Delete):
			if c, ok := m.clients.selected(); ok {
				m.modal = m.confirmDeleteClient(c)
			}
		case key.Matches(msg, m.keys.FilterClient):
			if c, ok := m.clients.selected(); ok {
				return m.filterByClient(c.ID)
			}
		}

	case screens.ScreenSessions:
		if m.sessions.navigate(m.keys, msg) {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.New):
			m.modal = m.sessionForm()
		case key.Matches(msg, m.keys.Delete):
			if s, ok := m.sessions.selected(); ok {
				m.modal = m.confirmDeleteSession(s)
			}
		case key.Matches(msg, m.keys.FilterClient):
			return m.clearClientFilter()
		}

	case screens.ScreenPayments:
		if m.payments.navigate(m.keys, msg) {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.New):
			m.modal = m.paymentForm()
		case key.Matches(msg, m.keys.Delete):
			if p, ok := m.payments.selected(); ok {
				m.modal = m.confirmDeletePayment(p)
			}
		case key.Matches(msg, m.keys.FilterClient):
			return m.clearClientFilter()
		}

	case screens.ScreenCalendar:
		if m.events.navigate(m.keys, msg) {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.New):
			if !m.connected {
				return m.notify("No calendar connected", true)
			}
			m.modal = m.eventForm()
		case key.Matches(msg, m.keys.Delete):
			if e, ok := m.events.selected(); ok {
				m.modal = m.confirmDeleteEvent(e)
			}
		}
	}
	return m, nil
}

// filterByClient narrows sessions and payments to one client and shows the
// sessions screen.
func (m Model) filterByClient(id int) (tea.Model, tea.Cmd) {
	m.screen = slices.Index(screens.Names, screens.ScreenSessions)
	m.set.Focus(screens.ScreenSessions)
	return m, tea.Batch(
		m.loadCmd(func(ctx context.Context) error { return m.set.Sessions.Load(ctx, id) }),
		m.loadCmd(func(ctx context.Context) error { return m.set.Payments.Load(ctx, id) }),
	)
}

func (m Model) clearClientFilter() (tea.Model, tea.Cmd) {
	return m, tea.Batch(
		m.loadCmd(func(ctx context.Context) error { return m.set.Sessions.Load(ctx, 0) }),
		m.loadCmd(func(ctx context.Context) error { return m.set.Payments.Load(ctx, 0) }),
	)
}

func (m Model) openSettings() (tea.Model, tea.Cmd) {
	if m.settings == nil {
		return m, nil
	}
	settings := m.settings
	m.modal = newFormModal("Server", []formField{
		{label: "Server URL", value: settings.BaseURL(), placeholder: "http://host:8000"},
	}, func(values []string) (tea.Cmd, error) {
		if err := settings.SetServerURL(values[0]); err != nil {
			return nil, err
		}
		message := "Server set to " + settings.BaseURL()
		return func() tea.Msg {
			return actionDoneMsg{message: message, reloadAll: true}
		}, nil
	})
	return m, nil
}

func (m Model) clientForm(c api.Client) Modal {
	title := "New client"
	var rate string
	if c.ID != 0 {
		title = "Edit " + c.Name
		rate = c.HourlyRate.Format()
	}
	id := c.ID
	return newFormModal(title, []formField{
		{label: "Name", value: c.Name},
		{label: "Email", value: api.Deref(c.Email)},
		{label: "Phone", value: api.Deref(c.Phone)},
		{label: "Hourly rate", value: rate, placeholder: "0.00"},
		{label: "Notes", value: api.Deref(c.Notes)},
	}, func(values []string) (tea.Cmd, error) {
		req, err := validation.Client(validation.ClientForm{
			Name:       values[0],
			Email:      values[1],
			Phone:      values[2],
			HourlyRate: values[3],
			Notes:      values[4],
		})
		if err != nil {
			return nil, err
		}
		return m.actionCmd(screens.ScreenClients, func(ctx context.Context) (api.Ack, error) {
			return m.set.Clients.Save(ctx, id, req)
		}), nil
	})
}

func (m Model) sessionForm() Modal {
	return newFormModal("New session", []formField{
		{label: "Client", value: m.defaultClient(m.sessionFilter), placeholder: "name or id"},
		{label: "Date", value: time.Now().Format(api.DateLayout), placeholder: api.DateLayout},
		{label: "Minutes", value: "60"},
		{label: "Billed (y/n)", value: "y"},
		{label: "Notes"},
	}, func(values []string) (tea.Cmd, error) {
		req, err := validation.Session(validation.SessionForm{
			ClientID: m.resolveClient(values[0]),
			Date:     values[1],
			Duration: values[2],
			Billed:   !isNo(values[3]),
			Notes:    values[4],
		})
		if err != nil {
			return nil, err
		}
		return m.actionCmd(screens.ScreenSessions, func(ctx context.Context) (api.Ack, error) {
			return m.set.Sessions.Create(ctx, req)
		}), nil
	})
}

func (m Model) paymentForm() Modal {
	return newFormModal("New payment", []formField{
		{label: "Client", value: m.defaultClient(m.paymentFilter), placeholder: "name or id"},
		{label: "Date", value: time.Now().Format(api.DateLayout), placeholder: api.DateLayout},
		{label: "Amount", placeholder: "0.00"},
		{label: "Method", placeholder: "cash, transfer..."},
		{label: "Notes"},
	}, func(values []string) (tea.Cmd, error) {
		req, err := validation.Payment(validation.PaymentForm{
			ClientID: m.resolveClient(values[0]),
			Date:     values[1],
			Amount:   values[2],
			Method:   values[3],
			Notes:    values[4],
		})
		if err != nil {
			return nil, err
		}
		return m.actionCmd(screens.ScreenPayments, func(ctx context.Context) (api.Ack, error) {
			return m.set.Payments.Create(ctx, req)
		}), nil
	})
}

func (m Model) eventForm() Modal {
	start := time.Now().Add(time.Hour).Truncate(time.Hour)
	return newFormModal("New event", []formField{
		{label: "Title"},
		{label: "Start", value: start.Format(validation.EventStartLayout), placeholder: validation.EventStartLayout},
		{label: "Minutes", value: "60"},
		{label: "Description"},
	}, func(values []string) (tea.Cmd, error) {
		req, err := validation.CalendarEvent(validation.EventForm{
			Title:       values[0],
			Start:       values[1],
			Duration:    values[2],
			Description: values[3],
		})
		if err != nil {
			return nil, err
		}
		return m.actionCmd(screens.ScreenCalendar, func(ctx context.Context) (api.Ack, error) {
			return m.set.Calendar.Create(ctx, req)
		}), nil
	})
}

func (m Model) confirmDeleteClient(c api.Client) Modal {
	prompt := fmt.Sprintf("Delete client %s? Their sessions and payments are deleted too.", c.Name)
	return newConfirmModal(prompt, m.actionCmd(screens.ScreenClients, func(ctx context.Context) (api.Ack, error) {
		return m.set.Clients.Delete(ctx, c.ID)
	}))
}

func (m Model) confirmDeleteSession(s api.Session) Modal {
	prompt := fmt.Sprintf("Delete the %d minute session with %s on %s?", s.DurationMinutes, s.ClientName, s.Date)
	return newConfirmModal(prompt, m.actionCmd(screens.ScreenSessions, func(ctx context.Context) (api.Ack, error) {
		return m.set.Sessions.Delete(ctx, s.ID)
	}))
}

func (m Model) confirmDeletePayment(p api.Payment) Modal {
	prompt := fmt.Sprintf("Delete the payment of %s from %s on %s?", p.Amount.Format(), p.ClientName, p.Date)
	return newConfirmModal(prompt, m.actionCmd(screens.ScreenPayments, func(ctx context.Context) (api.Ack, error) {
		return m.set.Payments.Delete(ctx, p.ID)
	}))
}

func (m Model) confirmDeleteEvent(e api.CalendarEvent) Modal {
	prompt := fmt.Sprintf("Delete event %q from the calendar?", e.Title)
	return newConfirmModal(prompt, m.actionCmd(screens.ScreenCalendar, func(ctx context.Context) (api.Ack, error) {
		return m.set.Calendar.Delete(ctx, e.ID)
	}))
}

// defaultClient prefills a client field from the active filter, falling back
// to the client selected on the clients screen.
func (m Model) defaultClient(filter int) string {
	if filter > 0 {
		if name := m.clientName(filter); name != "" {
			return name
		}
		return strconv.Itoa(filter)
	}
	if c, ok := m.clients.selected(); ok {
		return c.Name
	}
	return ""
}

// resolveClient maps a name (case-insensitive) or numeric id to a client id.
// Unknown input resolves to 0, which validation reports as missing.
func (m Model) resolveClient(input string) int {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0
	}
	if id, err := strconv.Atoi(input); err == nil && id > 0 {
		return id
	}
	for _, c := range m.clients.items {
		if strings.EqualFold(c.Name, input) {
			return c.ID
		}
	}
	return 0
}

func (m Model) clientName(id int) string {
	for _, c := range m.clients.items {
		if c.ID == id {
			return c.Name
		}
	}
	return ""
}

func isNo(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "n", "no", "false", "0":
		return true
	}
	return false
}
