// Package coachtest runs an in-memory stand-in for the coaching backend so
// packages above the transport can be tested end to end.
package coachtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/five82/mycoach/internal/api"
	"github.com/five82/mycoach/internal/transport"
)

// Server is a fake backend. Aggregates (hours, revenue, balance) are computed
// on every read, the way the real server does.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	nextID    int
	clients   map[int]api.ClientRequest
	sessions  map[int]api.SessionRequest
	payments  map[int]api.PaymentRequest
	events    map[string]api.CalendarEvent
	connected bool
	failures  map[string]int
	requests  map[string]int
}

// New starts a fake backend that is closed when the test ends.
func New(tb testing.TB) *Server {
	tb.Helper()
	s := &Server{
		nextID:    1,
		clients:   map[int]api.ClientRequest{},
		sessions:  map[int]api.SessionRequest{},
		payments:  map[int]api.PaymentRequest{},
		events:    map[string]api.CalendarEvent{},
		connected: true,
		failures:  map[string]int{},
		requests:  map[string]int{},
	}
	s.Server = httptest.NewServer(s.router())
	tb.Cleanup(s.Close)
	return s
}

// API returns a client wired to the server through a fresh transport.
func (s *Server) API(tb testing.TB) *api.Service {
	tb.Helper()
	tr := transport.New(transport.Options{})
	if err := tr.Configure(s.URL); err != nil {
		tb.Fatalf("configure transport: %v", err)
	}
	tb.Cleanup(tr.Close)
	return api.NewService(tr)
}

func (s *Server) router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.track)

	r.HandleFunc("/api/dashboard", s.getDashboard).Methods(http.MethodGet)

	r.HandleFunc("/api/clients", s.listClients).Methods(http.MethodGet)
	r.HandleFunc("/api/clients", s.createClient).Methods(http.MethodPost)
	r.HandleFunc("/api/clients/{id:[0-9]+}", s.getClient).Methods(http.MethodGet)
	r.HandleFunc("/api/clients/{id:[0-9]+}", s.updateClient).Methods(http.MethodPut)
	r.HandleFunc("/api/clients/{id:[0-9]+}", s.deleteClient).Methods(http.MethodDelete)

	r.HandleFunc("/api/sessions", s.listSessions).Methods(http.MethodGet)
	r.HandleFunc("/api/sessions", s.createSession).Methods(http.MethodPost)
	r.HandleFunc("/api/sessions/{id:[0-9]+}", s.deleteSession).Methods(http.MethodDelete)

	r.HandleFunc("/api/payments", s.listPayments).Methods(http.MethodGet)
	r.HandleFunc("/api/payments", s.createPayment).Methods(http.MethodPost)
	r.HandleFunc("/api/payments/{id:[0-9]+}", s.deletePayment).Methods(http.MethodDelete)

	r.HandleFunc("/api/calendar/status", s.calendarStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/calendar/events", s.listEvents).Methods(http.MethodGet)
	r.HandleFunc("/api/calendar/events", s.createEvent).Methods(http.MethodPost)
	r.HandleFunc("/api/calendar/events/{eventId}", s.deleteEvent).Methods(http.MethodDelete)
	return r
}

// track counts requests per route and serves injected failures.
func (s *Server) track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				key = r.Method + " " + tpl
			}
		}
		s.mu.Lock()
		s.requests[key]++
		status := s.failures[key]
		s.mu.Unlock()

		if status != 0 {
			writeJSON(w, status, map[string]string{"detail": "injected failure"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Fail makes every request to the route template fail with status until
// Recover is called. Templates use the router's syntax, for example
// "/api/clients/{id:[0-9]+}".
func (s *Server) Fail(method, template string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+template] = status
}

// Recover clears every injected failure.
func (s *Server) Recover() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = map[string]int{}
}

// Count returns how many requests hit the route template.
func (s *Server) Count(method, template string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[method+" "+template]
}

// SetCalendarConnected toggles the calendar status.
func (s *Server) SetCalendarConnected(connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = connected
}

// SeedClient stores a client and returns its id.
func (s *Server) SeedClient(req api.ClientRequest) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.allocID()
	s.clients[id] = req
	return id
}

// SeedSession stores a session and returns its id.
func (s *Server) SeedSession(req api.SessionRequest) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.allocID()
	s.sessions[id] = req
	return id
}

// SeedPayment stores a payment and returns its id.
func (s *Server) SeedPayment(req api.PaymentRequest) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.allocID()
	s.payments[id] = req
	return id
}

// SeedEvent stores a calendar event as-is.
func (s *Server) SeedEvent(event api.CalendarEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.ID] = event
}

func (s *Server) allocID() int {
	id := s.nextID
	s.nextID++
	return id
}

func (s *Server) getDashboard(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := api.DashboardStats{
		TotalClients:  len(s.clients),
		TotalSessions: len(s.sessions),
	}
	revenue, paid := decimal.Zero, decimal.Zero
	for _, id := range sortedKeys(s.clients) {
		c := s.clientLocked(id)
		stats.TotalHours += c.TotalHours
		revenue = revenue.Add(c.TotalRevenue.Decimal)
		paid = paid.Add(c.TotalPaid.Decimal)
	}
	stats.TotalRevenue = api.Money{Decimal: revenue}
	stats.TotalPaid = api.Money{Decimal: paid}
	stats.TotalOutstanding = api.Money{Decimal: revenue.Sub(paid)}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) listClients(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.Client, 0, len(s.clients))
	for _, id := range sortedKeys(s.clients) {
		out = append(out, s.clientLocked(id))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getClient(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Client not found"})
		return
	}
	writeJSON(w, http.StatusOK, s.clientLocked(id))
}

func (s *Server) createClient(w http.ResponseWriter, r *http.Request) {
	var req api.ClientRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": []map[string]string{{"msg": "name is required"}}})
		return
	}
	s.mu.Lock()
	id := s.allocID()
	s.clients[id] = req
	s.mu.Unlock()
	writeAck(w, http.StatusCreated, id, "Client created")
}

func (s *Server) updateClient(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	var req api.ClientRequest
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Client not found"})
		return
	}
	s.clients[id] = req
	writeAck(w, http.StatusOK, id, "Client updated")
}

func (s *Server) deleteClient(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Client not found"})
		return
	}
	delete(s.clients, id)
	for sid, sess := range s.sessions {
		if sess.ClientID == id {
			delete(s.sessions, sid)
		}
	}
	for pid, pay := range s.payments {
		if pay.ClientID == id {
			delete(s.payments, pid)
		}
	}
	writeAck(w, http.StatusOK, id, "Client deleted")
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	filter := queryInt(r, "client_id")
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []api.Session{}
	for _, id := range sortedKeys(s.sessions) {
		sess := s.sessionLocked(id)
		if filter > 0 && sess.ClientID != filter {
			continue
		}
		out = append(out, sess)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req api.SessionRequest
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[req.ClientID]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Client not found"})
		return
	}
	id := s.allocID()
	s.sessions[id] = req
	writeAck(w, http.StatusCreated, id, "Session created")
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Session not found"})
		return
	}
	delete(s.sessions, id)
	writeAck(w, http.StatusOK, id, "Session deleted")
}

func (s *Server) listPayments(w http.ResponseWriter, r *http.Request) {
	filter := queryInt(r, "client_id")
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []api.Payment{}
	for _, id := range sortedKeys(s.payments) {
		req := s.payments[id]
		if filter > 0 && req.ClientID != filter {
			continue
		}
		out = append(out, api.Payment{
			ID:         id,
			ClientID:   req.ClientID,
			ClientName: s.clients[req.ClientID].Name,
			Date:       req.Date,
			Amount:     req.Amount,
			Method:     req.Method,
			Notes:      req.Notes,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createPayment(w http.ResponseWriter, r *http.Request) {
	var req api.PaymentRequest
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[req.ClientID]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Client not found"})
		return
	}
	id := s.allocID()
	s.payments[id] = req
	writeAck(w, http.StatusCreated, id, "Payment recorded")
}

func (s *Server) deletePayment(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payments[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Payment not found"})
		return
	}
	delete(s.payments, id)
	writeAck(w, http.StatusOK, id, "Payment deleted")
}

func (s *Server) calendarStatus(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, api.CalendarStatus{Connected: s.connected})
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days")
	if days <= 0 {
		days = api.DefaultEventDays
	}
	horizon := time.Now().AddDate(0, 0, days)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []api.CalendarEvent{}
	for _, event := range s.events {
		if start := event.ParsedStart(); !start.IsZero() && start.After(horizon) {
			continue
		}
		out = append(out, event)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createEvent(w http.ResponseWriter, r *http.Request) {
	var req api.CalendarEventRequest
	if !decode(w, r, &req) {
		return
	}
	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid start"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	event := api.CalendarEvent{
		ID:          fmt.Sprintf("evt-%d", s.allocID()),
		Title:       req.Title,
		Start:       start.Format(time.RFC3339),
		End:         start.Add(time.Duration(req.DurationMinutes) * time.Minute).Format(time.RFC3339),
		Description: req.Description,
	}
	event.HTMLLink = "https://calendar.example/event/" + event.ID
	s.events[event.ID] = event
	writeJSON(w, http.StatusCreated, event)
}

func (s *Server) deleteEvent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["eventId"]
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Event not found"})
		return
	}
	delete(s.events, id)
	writeJSON(w, http.StatusOK, api.Ack{Message: "Event deleted"})
}

func (s *Server) clientLocked(id int) api.Client {
	req := s.clients[id]
	c := api.Client{
		ID:         id,
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Notes:      req.Notes,
		HourlyRate: req.HourlyRate,
	}
	minutes := 0
	revenue, paid := decimal.Zero, decimal.Zero
	for _, sid := range sortedKeys(s.sessions) {
		if s.sessions[sid].ClientID != id {
			continue
		}
		sess := s.sessionLocked(sid)
		minutes += sess.DurationMinutes
		revenue = revenue.Add(sess.Amount.Decimal)
	}
	for _, pay := range s.payments {
		if pay.ClientID == id {
			paid = paid.Add(pay.Amount.Decimal)
		}
	}
	c.TotalHours = float64(minutes) / 60
	c.TotalRevenue = api.Money{Decimal: revenue}
	c.TotalPaid = api.Money{Decimal: paid}
	c.Balance = api.Money{Decimal: revenue.Sub(paid)}
	return c
}

func (s *Server) sessionLocked(id int) api.Session {
	req := s.sessions[id]
	client := s.clients[req.ClientID]
	amount := decimal.Zero
	if req.Billed {
		amount = client.HourlyRate.Mul(decimal.NewFromInt(int64(req.DurationMinutes))).
			Div(decimal.NewFromInt(60)).Round(2)
	}
	return api.Session{
		ID:              id,
		ClientID:        req.ClientID,
		ClientName:      client.Name,
		Date:            req.Date,
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
		Billed:          req.Billed,
		Amount:          api.Money{Decimal: amount},
	}
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func pathID(r *http.Request) int {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	return id
}

func queryInt(r *http.Request, key string) int {
	v, _ := strconv.Atoi(r.URL.Query().Get(key))
	return v
}

func decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid JSON body"})
		return false
	}
	return true
}

func writeAck(w http.ResponseWriter, status, id int, message string) {
	writeJSON(w, status, api.Ack{ID: &id, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
