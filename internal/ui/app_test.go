package ui

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/mycoach/internal/api"
	"github.com/five82/mycoach/internal/coachtest"
	"github.com/five82/mycoach/internal/screens"
	"github.com/five82/mycoach/internal/state"
)

type fakeSettings struct {
	url   string
	theme string
	err   error
}

func (f *fakeSettings) BaseURL() string { return f.url }

func (f *fakeSettings) SetServerURL(raw string) error {
	if f.err != nil {
		return f.err
	}
	f.url = raw
	return nil
}

func (f *fakeSettings) SetTheme(name string) error {
	f.theme = name
	return nil
}

type harness struct {
	t        *testing.T
	srv      *coachtest.Server
	set      *screens.Set
	settings *fakeSettings
	m        Model
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	srv := coachtest.New(t)
	set := screens.NewSet(srv.API(t), nil)
	t.Cleanup(set.Close)
	settings := &fakeSettings{url: srv.URL + "/"}
	m := New(Options{Context: t.Context(), Screens: set, Settings: settings})
	t.Cleanup(m.Close)
	h := &harness{t: t, srv: srv, set: set, settings: settings, m: m}
	h.send(tea.WindowSizeMsg{Width: 140, Height: 40})
	return h
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	h.t.Helper()
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	return cmd
}

func (h *harness) press(keys ...string) tea.Cmd {
	h.t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		cmd = h.send(keyPress(k))
	}
	return cmd
}

func (h *harness) typeText(text string) {
	h.t.Helper()
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

// run executes cmd and feeds every resulting message back into the model.
// It must only be given commands that do not wait on subscriptions.
func (h *harness) run(cmd tea.Cmd) {
	h.t.Helper()
	if cmd == nil {
		return
	}
	msg := cmd()
	switch msg := msg.(type) {
	case nil:
	case tea.BatchMsg:
		for _, c := range msg {
			h.run(c)
		}
	default:
		h.send(msg)
	}
}

// load fetches every screen synchronously and applies the snapshots.
func (h *harness) load() {
	h.t.Helper()
	ctx := h.t.Context()
	_ = h.set.Dashboard.Load(ctx, state.None{})
	_ = h.set.Clients.Load(ctx, state.None{})
	_ = h.set.Sessions.Load(ctx, h.set.Sessions.Filter())
	_ = h.set.Payments.Load(ctx, h.set.Payments.Filter())
	_ = h.set.Calendar.Load(ctx, api.DefaultEventDays)
	h.refresh()
}

func (h *harness) refresh() {
	h.t.Helper()
	for _, name := range screens.Names {
		h.send(changedMsg{screen: name})
	}
}

func keyPress(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func seedAlice(srv *coachtest.Server) int {
	return srv.SeedClient(api.ClientRequest{Name: "Alice", HourlyRate: api.MoneyFromInt(80)})
}

func TestSwitchScreenFocusesHolder(t *testing.T) {
	h := newHarness(t)

	cmd := h.press("3")
	assert.Equal(t, screens.ScreenSessions, h.m.currentScreen())
	assert.Equal(t, "sessions", h.set.Focused().Name())
	assert.NotNil(t, cmd, "switching screens reloads the screen")

	h.press("tab")
	assert.Equal(t, screens.ScreenPayments, h.m.currentScreen())
	h.press("shift+tab", "shift+tab", "shift+tab")
	assert.Equal(t, screens.ScreenDashboard, h.m.currentScreen())
	h.press("shift+tab")
	assert.Equal(t, screens.ScreenCalendar, h.m.currentScreen())
}

func TestCreateClientThroughForm(t *testing.T) {
	h := newHarness(t)
	h.press("2")
	h.load()

	h.press("n")
	require.NotNil(t, h.m.modal)
	h.typeText("Bob")
	h.press("tab", "tab", "tab")
	h.typeText("45.50")

	h.run(h.press("enter"))
	assert.Nil(t, h.m.modal, "form closes after the write succeeds")
	assert.Equal(t, "Client created", h.m.toast)
	assert.Equal(t, 1, h.srv.Count(http.MethodPost, "/api/clients"))

	h.refresh()
	require.Len(t, h.m.clients.items, 1)
	assert.Equal(t, "Bob", h.m.clients.items[0].Name)
	assert.True(t, h.m.clients.items[0].HourlyRate.Equal(api.MustMoney("45.5")))
}

func TestInvalidClientFormNeverReachesServer(t *testing.T) {
	h := newHarness(t)
	h.press("2")

	h.press("n")
	cmd := h.press("enter")
	assert.Nil(t, cmd)
	require.NotNil(t, h.m.modal)
	form := h.m.modal.(formModal)
	assert.Contains(t, form.err, "required")
	assert.False(t, form.pending)
	assert.Zero(t, h.srv.Count(http.MethodPost, "/api/clients"))
}

func TestRejectedWriteKeepsFormOpen(t *testing.T) {
	h := newHarness(t)
	h.srv.Fail(http.MethodPost, "/api/clients", http.StatusInternalServerError)
	h.press("2")

	h.press("n")
	h.typeText("Bob")
	h.run(h.press("enter"))

	require.NotNil(t, h.m.modal)
	form := h.m.modal.(formModal)
	assert.Equal(t, "Internal Server Error (500): injected failure", form.err)
	assert.Equal(t, "Bob", form.values()[0], "input survives the failure")

	h.srv.Recover()
	h.run(h.press("enter"))
	assert.Nil(t, h.m.modal)
}

func TestEditClientPrefillsAndUpdates(t *testing.T) {
	h := newHarness(t)
	id := seedAlice(h.srv)
	h.press("2")
	h.load()

	h.press("e")
	require.NotNil(t, h.m.modal)
	form := h.m.modal.(formModal)
	assert.Equal(t, []string{"Alice", "", "", "80.00", ""}, form.values())

	h.press("tab")
	h.typeText("alice@example.com")
	h.run(h.press("enter"))
	assert.Nil(t, h.m.modal)
	assert.Equal(t, 1, h.srv.Count(http.MethodPut, "/api/clients/{id:[0-9]+}"))

	h.refresh()
	require.Len(t, h.m.clients.items, 1)
	assert.Equal(t, id, h.m.clients.items[0].ID)
	assert.Equal(t, "alice@example.com", api.Deref(h.m.clients.items[0].Email))
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	h := newHarness(t)
	seedAlice(h.srv)
	h.press("2")
	h.load()

	h.press("d")
	require.IsType(t, confirmModal{}, h.m.modal)
	h.press("n")
	assert.Nil(t, h.m.modal)
	assert.Zero(t, h.srv.Count(http.MethodDelete, "/api/clients/{id:[0-9]+}"))

	h.press("d")
	h.run(h.press("y"))
	assert.Nil(t, h.m.modal)
	assert.Equal(t, 1, h.srv.Count(http.MethodDelete, "/api/clients/{id:[0-9]+}"))
	h.refresh()
	assert.Empty(t, h.m.clients.items)
	assert.Equal(t, -1, h.m.clients.cursor)
}

func TestFilterSessionsBySelectedClient(t *testing.T) {
	h := newHarness(t)
	alice := seedAlice(h.srv)
	bob := h.srv.SeedClient(api.ClientRequest{Name: "Bob", HourlyRate: api.MoneyFromInt(60)})
	h.srv.SeedSession(api.NewSessionRequest(alice, "2026-10-01", 60))
	h.srv.SeedSession(api.NewSessionRequest(bob, "2026-10-02", 30))
	h.press("2")
	h.load()

	h.press("j")
	h.run(h.press("c"))
	assert.Equal(t, screens.ScreenSessions, h.m.currentScreen())
	assert.Equal(t, bob, h.set.Sessions.Filter())
	assert.Equal(t, bob, h.set.Payments.Filter())

	h.refresh()
	require.Len(t, h.m.sessions.items, 1)
	assert.Equal(t, "Bob", h.m.sessions.items[0].ClientName)
	assert.Contains(t, h.m.View(), "Sessions · Bob")

	h.run(h.press("c"))
	assert.Zero(t, h.set.Sessions.Filter())
	h.refresh()
	assert.Len(t, h.m.sessions.items, 2)
}

func TestNewSessionDefaultsToFilteredClient(t *testing.T) {
	h := newHarness(t)
	alice := seedAlice(h.srv)
	h.load()
	require.NoError(t, h.set.Sessions.Load(t.Context(), alice))
	h.refresh()
	h.press("3")

	h.press("n")
	form := h.m.modal.(formModal)
	assert.Equal(t, "Alice", form.values()[0])
	h.run(h.press("enter"))
	assert.Nil(t, h.m.modal)

	h.refresh()
	require.Len(t, h.m.sessions.items, 1)
	assert.True(t, h.m.sessions.items[0].Billed)
	assert.True(t, h.m.sessions.items[0].Amount.Equal(api.MoneyFromInt(80)))
	assert.Equal(t, alice, h.set.Sessions.Filter(), "filter survives the reload")
}

func TestResolveClient(t *testing.T) {
	h := newHarness(t)
	alice := seedAlice(h.srv)
	h.load()

	assert.Equal(t, alice, h.m.resolveClient("alice"))
	assert.Equal(t, alice, h.m.resolveClient(" Alice "))
	assert.Equal(t, 42, h.m.resolveClient("42"))
	assert.Zero(t, h.m.resolveClient("Carol"))
	assert.Zero(t, h.m.resolveClient(""))
}

func TestCalendarRequiresConnection(t *testing.T) {
	h := newHarness(t)
	h.srv.SetCalendarConnected(false)
	h.press("5")
	h.load()

	h.press("n")
	assert.Nil(t, h.m.modal)
	assert.Equal(t, "No calendar connected", h.m.toast)
	assert.True(t, h.m.toastError)
	assert.Contains(t, h.m.View(), "No calendar is connected")
}

func TestErrorBannerDismissedWithEscape(t *testing.T) {
	h := newHarness(t)
	h.srv.Fail(http.MethodGet, "/api/clients", http.StatusInternalServerError)
	h.press("2")
	h.load()

	assert.Contains(t, h.m.View(), "injected failure")
	h.press("esc")
	h.refresh()
	assert.Empty(t, h.set.Clients.Snapshot().Error)
	assert.NotContains(t, h.m.View(), "injected failure")
}

func TestSettingsChangeServer(t *testing.T) {
	h := newHarness(t)
	h.settings.err = errors.New("unsupported scheme")

	h.press("S")
	require.NotNil(t, h.m.modal)
	h.press("enter")
	form := h.m.modal.(formModal)
	assert.Equal(t, "unsupported scheme", form.err)

	h.settings.err = nil
	cmd := h.press("enter")
	require.NotNil(t, cmd)
	msg := cmd().(actionDoneMsg)
	assert.True(t, msg.reloadAll)

	h.send(msg)
	assert.Nil(t, h.m.modal)
	assert.Contains(t, h.m.toast, "Server set to ")
}

func TestCycleThemeSavesPreference(t *testing.T) {
	h := newHarness(t)

	h.press("T")
	assert.Equal(t, "Kanagawa", h.m.theme.Name)
	assert.Equal(t, "Kanagawa", h.settings.theme)
}

func TestViewRendersEachScreen(t *testing.T) {
	h := newHarness(t)
	alice := seedAlice(h.srv)
	h.srv.SeedSession(api.NewSessionRequest(alice, "2026-10-01", 90))
	h.srv.SeedPayment(api.PaymentRequest{ClientID: alice, Date: "2026-10-02", Amount: api.MoneyFromInt(50)})
	h.load()

	assert.Contains(t, h.m.View(), "Outstanding")
	assert.Contains(t, h.m.View(), "70.00")

	h.press("2")
	view := h.m.View()
	assert.Contains(t, view, "Alice")
	assert.Contains(t, view, "owed")

	h.press("3")
	assert.Contains(t, h.m.View(), "2026-10-01")

	h.press("4")
	assert.Contains(t, h.m.View(), "50.00")

	h.press("5")
	assert.Contains(t, h.m.View(), "No upcoming events")

	h.press("?")
	assert.Contains(t, h.m.View(), "Keyboard Shortcuts")
	h.press("x")
	assert.False(t, h.m.showHelp)
}

func TestRequestLogView(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "mycoach.log")
	content := "10:00AM INF http request method=GET url=http://coach/api/clients\n" +
		"10:00AM INF load applied seq=1\n" +
		"10:00AM WRN http request failed method=GET error=timeout\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	h.m.logFile = path

	h.run(h.press("L"))
	require.True(t, h.m.showLog)
	view := h.m.View()
	assert.Contains(t, view, "url=http://coach/api/clients")
	assert.Contains(t, view, "error=timeout")
	assert.NotContains(t, view, "load applied")

	h.press("esc")
	assert.False(t, h.m.showLog)
}

func TestRequestLogUnavailableWithoutFile(t *testing.T) {
	h := newHarness(t)

	h.press("L")
	assert.False(t, h.m.showLog)
	assert.True(t, h.m.toastError)
}

func TestToastExpires(t *testing.T) {
	h := newHarness(t)
	h.press("5")
	h.srv.SetCalendarConnected(false)
	h.load()
	h.press("n")
	require.NotEmpty(t, h.m.toast)

	h.send(toastExpiredMsg{seq: h.m.toastSeq - 1})
	assert.NotEmpty(t, h.m.toast, "stale expiry is ignored")
	h.send(toastExpiredMsg{seq: h.m.toastSeq})
	assert.Empty(t, h.m.toast)
}

func TestCtrlCQuitsFromModal(t *testing.T) {
	h := newHarness(t)
	h.press("2", "n")
	cmd := h.press("ctrl+c")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
