package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// DefaultEventDays is the calendar look-ahead used when none is given.
const DefaultEventDays = 14

// Provider supplies the HTTP client bound to the current base URL.
// *transport.Transport implements it.
type Provider interface {
	Client() (*http.Client, *url.URL, error)
}

// DashboardAPI fetches the aggregate dashboard.
type DashboardAPI interface {
	GetDashboard(ctx context.Context) (DashboardStats, error)
}

// ClientsAPI covers /api/clients.
type ClientsAPI interface {
	ListClients(ctx context.Context) ([]Client, error)
	GetClient(ctx context.Context, id int) (Client, error)
	CreateClient(ctx context.Context, req ClientRequest) (Ack, error)
	UpdateClient(ctx context.Context, id int, req ClientRequest) (Ack, error)
	DeleteClient(ctx context.Context, id int) (Ack, error)
}

// SessionsAPI covers /api/sessions. A zero clientID lists every session.
type SessionsAPI interface {
	ListSessions(ctx context.Context, clientID int) ([]Session, error)
	CreateSession(ctx context.Context, req SessionRequest) (Ack, error)
	DeleteSession(ctx context.Context, id int) (Ack, error)
}

// PaymentsAPI covers /api/payments. A zero clientID lists every payment.
type PaymentsAPI interface {
	ListPayments(ctx context.Context, clientID int) ([]Payment, error)
	CreatePayment(ctx context.Context, req PaymentRequest) (Ack, error)
	DeletePayment(ctx context.Context, id int) (Ack, error)
}

// CalendarAPI covers /api/calendar.
type CalendarAPI interface {
	CalendarStatus(ctx context.Context) (CalendarStatus, error)
	ListEvents(ctx context.Context, days int) ([]CalendarEvent, error)
	CreateEvent(ctx context.Context, req CalendarEventRequest) (CalendarEvent, error)
	DeleteEvent(ctx context.Context, id string) (Ack, error)
}

// Ensure Service implements every resource interface at compile time.
var (
	_ DashboardAPI = (*Service)(nil)
	_ ClientsAPI   = (*Service)(nil)
	_ SessionsAPI  = (*Service)(nil)
	_ PaymentsAPI  = (*Service)(nil)
	_ CalendarAPI  = (*Service)(nil)
)

// Service talks to the coaching HTTP API.
type Service struct {
	provider Provider
}

// NewService returns a Service that resolves the HTTP client per request, so a
// reconfigured transport applies to every later call.
func NewService(provider Provider) *Service {
	return &Service{provider: provider}
}

// GetDashboard retrieves the dashboard snapshot.
func (c *Service) GetDashboard(ctx context.Context) (DashboardStats, error) {
	var payload DashboardStats
	if err := c.do(ctx, http.MethodGet, "api/dashboard", nil, nil, &payload); err != nil {
		return DashboardStats{}, err
	}
	return payload, nil
}

// ListClients retrieves every client with server-computed totals.
func (c *Service) ListClients(ctx context.Context) ([]Client, error) {
	var payload []Client
	if err := c.do(ctx, http.MethodGet, "api/clients", nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// GetClient retrieves one client.
func (c *Service) GetClient(ctx context.Context, id int) (Client, error) {
	var payload Client
	if err := c.do(ctx, http.MethodGet, "api/clients/"+strconv.Itoa(id), nil, nil, &payload); err != nil {
		return Client{}, err
	}
	return payload, nil
}

// CreateClient creates a client.
func (c *Service) CreateClient(ctx context.Context, req ClientRequest) (Ack, error) {
	return c.write(ctx, http.MethodPost, "api/clients", req)
}

// UpdateClient replaces a client's editable fields.
func (c *Service) UpdateClient(ctx context.Context, id int, req ClientRequest) (Ack, error) {
	return c.write(ctx, http.MethodPut, "api/clients/"+strconv.Itoa(id), req)
}

// DeleteClient deletes a client.
func (c *Service) DeleteClient(ctx context.Context, id int) (Ack, error) {
	return c.write(ctx, http.MethodDelete, "api/clients/"+strconv.Itoa(id), nil)
}

// ListSessions retrieves sessions, optionally for one client.
func (c *Service) ListSessions(ctx context.Context, clientID int) ([]Session, error) {
	var payload []Session
	if err := c.do(ctx, http.MethodGet, "api/sessions", clientFilter(clientID), nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// CreateSession records a session.
func (c *Service) CreateSession(ctx context.Context, req SessionRequest) (Ack, error) {
	return c.write(ctx, http.MethodPost, "api/sessions", req)
}

// DeleteSession deletes a session.
func (c *Service) DeleteSession(ctx context.Context, id int) (Ack, error) {
	return c.write(ctx, http.MethodDelete, "api/sessions/"+strconv.Itoa(id), nil)
}

// ListPayments retrieves payments, optionally for one client.
func (c *Service) ListPayments(ctx context.Context, clientID int) ([]Payment, error) {
	var payload []Payment
	if err := c.do(ctx, http.MethodGet, "api/payments", clientFilter(clientID), nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// CreatePayment records a payment.
func (c *Service) CreatePayment(ctx context.Context, req PaymentRequest) (Ack, error) {
	return c.write(ctx, http.MethodPost, "api/payments", req)
}

// DeletePayment deletes a payment.
func (c *Service) DeletePayment(ctx context.Context, id int) (Ack, error) {
	return c.write(ctx, http.MethodDelete, "api/payments/"+strconv.Itoa(id), nil)
}

// CalendarStatus reports whether the backend has a calendar connected.
func (c *Service) CalendarStatus(ctx context.Context) (CalendarStatus, error) {
	var payload CalendarStatus
	if err := c.do(ctx, http.MethodGet, "api/calendar/status", nil, nil, &payload); err != nil {
		return CalendarStatus{}, err
	}
	return payload, nil
}

// ListEvents retrieves upcoming events. days <= 0 uses DefaultEventDays.
func (c *Service) ListEvents(ctx context.Context, days int) ([]CalendarEvent, error) {
	if days <= 0 {
		days = DefaultEventDays
	}
	query := url.Values{}
	query.Set("days", strconv.Itoa(days))
	var payload []CalendarEvent
	if err := c.do(ctx, http.MethodGet, "api/calendar/events", query, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// CreateEvent creates a calendar event and returns the provider's copy.
func (c *Service) CreateEvent(ctx context.Context, req CalendarEventRequest) (CalendarEvent, error) {
	var payload CalendarEvent
	if err := c.do(ctx, http.MethodPost, "api/calendar/events", nil, req, &payload); err != nil {
		return CalendarEvent{}, err
	}
	return payload, nil
}

// DeleteEvent deletes a calendar event.
func (c *Service) DeleteEvent(ctx context.Context, id string) (Ack, error) {
	return c.write(ctx, http.MethodDelete, "api/calendar/events/"+url.PathEscape(id), nil)
}

func clientFilter(clientID int) url.Values {
	if clientID <= 0 {
		return nil
	}
	query := url.Values{}
	query.Set("client_id", strconv.Itoa(clientID))
	return query
}

func (c *Service) write(ctx context.Context, method, path string, body any) (Ack, error) {
	var ack Ack
	if err := c.do(ctx, method, path, nil, body, &ack); err != nil {
		return Ack{}, err
	}
	return ack, nil
}

// do resolves path (already escaped) against the current base URL. A
// transport that was never configured is a wiring bug and panics.
func (c *Service) do(ctx context.Context, method, path string, query url.Values, body, dest any) error {
	if c == nil || c.provider == nil {
		return fmt.Errorf("api service is nil")
	}
	httpClient, base, err := c.provider.Client()
	if err != nil {
		panic(err)
	}

	rel, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("parse path %q: %w", path, err)
	}
	if len(query) > 0 {
		rel.RawQuery = query.Encode()
	}
	reqURL := base.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{
			Method:     method,
			Path:       "/" + path,
			StatusCode: resp.StatusCode,
			Detail:     parseDetail(raw),
		}
	}
	if dest == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
