package ui

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/mycoach/internal/api"
	"github.com/five82/mycoach/internal/screens"
	"github.com/five82/mycoach/internal/state"
)

const toastDuration = 4 * time.Second

// Settings persists user-facing preferences. *app.Env implements it.
type Settings interface {
	BaseURL() string
	SetServerURL(raw string) error
	SetTheme(name string) error
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Screens   *screens.Set
	Settings  Settings
	LogFile   string // request log source; empty hides the log view
	ThemeName string
	Logger    *slog.Logger
}

// screenMeta is the loading state shown in the header for one screen.
type screenMeta struct {
	loading  bool
	err      string
	updated  time.Time
	offline  bool
	received bool
}

func metaOf[T, F any](snap state.Snapshot[T, F]) screenMeta {
	return screenMeta{
		loading:  snap.Loading,
		err:      snap.Error,
		updated:  snap.LastUpdated,
		offline:  snap.IsOffline(),
		received: snap.HasData,
	}
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx      context.Context
	set      *screens.Set
	settings Settings
	logger   *slog.Logger
	keys     keyMap
	logFile  string

	theme  Theme
	width  int
	height int
	ready  bool

	screen      int // index into screens.Names
	listeners   map[string]tea.Cmd
	unsubscribe []func()
	meta        map[string]screenMeta

	dashboard     api.DashboardStats
	clients       listState[api.Client, int]
	sessions      listState[api.Session, int]
	sessionFilter int
	payments      listState[api.Payment, int]
	paymentFilter int
	connected     bool
	events        listState[api.CalendarEvent, string]

	modal    Modal
	showHelp bool

	showLog bool
	logView viewport.Model

	toast      string
	toastError bool
	toastSeq   int
}

// New creates the model and subscribes to every screen's holder.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	m := Model{
		ctx:       ctx,
		set:       opts.Screens,
		settings:  opts.Settings,
		logger:    logger,
		keys:      DefaultKeyMap(),
		logFile:   opts.LogFile,
		theme:     GetTheme(opts.ThemeName),
		listeners: make(map[string]tea.Cmd, len(screens.Names)),
		meta:      make(map[string]screenMeta, len(screens.Names)),
		clients:   newListState(api.Client.Key, api.Client.Equal),
		sessions:  newListState(api.Session.Key, api.Session.Equal),
		payments:  newListState(api.Payment.Key, api.Payment.Equal),
		events:    newListState(api.CalendarEvent.Key, api.CalendarEvent.Equal),
		logView:   viewport.New(0, 0),
	}
	m.subscribe()
	m.set.Focus(screens.ScreenDashboard)
	return m
}

func (m *Model) subscribe() {
	add := func(screen string, cmd tea.Cmd, cancel func()) {
		m.listeners[screen] = cmd
		m.unsubscribe = append(m.unsubscribe, cancel)
	}
	ch1, c1 := m.set.Dashboard.Subscribe()
	add(screens.ScreenDashboard, listen(screens.ScreenDashboard, ch1), c1)
	ch2, c2 := m.set.Clients.Subscribe()
	add(screens.ScreenClients, listen(screens.ScreenClients, ch2), c2)
	ch3, c3 := m.set.Sessions.Subscribe()
	add(screens.ScreenSessions, listen(screens.ScreenSessions, ch3), c3)
	ch4, c4 := m.set.Payments.Subscribe()
	add(screens.ScreenPayments, listen(screens.ScreenPayments, ch4), c4)
	ch5, c5 := m.set.Calendar.Subscribe()
	add(screens.ScreenCalendar, listen(screens.ScreenCalendar, ch5), c5)
}

// Close releases the holder subscriptions.
func (m Model) Close() {
	for _, cancel := range m.unsubscribe {
		cancel()
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := make([]tea.Cmd, 0, 2*len(screens.Names))
	for _, name := range screens.Names {
		cmds = append(cmds, m.listeners[name])
	}
	cmds = append(cmds,
		m.loadCmd(func(ctx context.Context) error { return m.set.Dashboard.Load(ctx, state.None{}) }),
		m.loadCmd(func(ctx context.Context) error { return m.set.Clients.Load(ctx, state.None{}) }),
		m.loadCmd(func(ctx context.Context) error { return m.set.Sessions.Load(ctx, 0) }),
		m.loadCmd(func(ctx context.Context) error { return m.set.Payments.Load(ctx, 0) }),
		m.loadCmd(func(ctx context.Context) error { return m.set.Calendar.Load(ctx, api.DefaultEventDays) }),
	)
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeLogView()
		return m, nil

	case changedMsg:
		m.apply(msg.screen)
		return m, m.listeners[msg.screen]

	case actionDoneMsg:
		return m.handleActionDone(msg)

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case requestLogMsg:
		m.setLogContent(msg)
		return m, nil
	}

	if m.modal != nil {
		var cmd tea.Cmd
		var closed bool
		m.modal, cmd, closed = m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		}
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

// apply copies a holder's latest snapshot into the view state.
func (m *Model) apply(screen string) {
	switch screen {
	case screens.ScreenDashboard:
		snap := m.set.Dashboard.Snapshot()
		m.meta[screen] = metaOf(snap)
		if snap.HasData {
			m.dashboard = snap.Data
		}
	case screens.ScreenClients:
		snap := m.set.Clients.Snapshot()
		m.meta[screen] = metaOf(snap)
		if snap.HasData {
			m.clients.replace(snap.Data)
		}
	case screens.ScreenSessions:
		snap := m.set.Sessions.Snapshot()
		m.meta[screen] = metaOf(snap)
		m.sessionFilter = snap.Filter
		if snap.HasData {
			m.sessions.replace(snap.Data)
		}
	case screens.ScreenPayments:
		snap := m.set.Payments.Snapshot()
		m.meta[screen] = metaOf(snap)
		m.paymentFilter = snap.Filter
		if snap.HasData {
			m.payments.replace(snap.Data)
		}
	case screens.ScreenCalendar:
		snap := m.set.Calendar.Snapshot()
		m.meta[screen] = metaOf(snap)
		if snap.HasData {
			m.connected = snap.Data.Connected
			m.events.replace(snap.Data.Events)
		}
	}
}

func (m Model) currentScreen() string {
	return screens.Names[m.screen]
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.modal != nil {
		var cmd tea.Cmd
		var closed bool
		m.modal, cmd, closed = m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		}
		return m, cmd
	}
	if m.showLog {
		return m.handleLogKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		if m.settings != nil {
			if err := m.settings.SetTheme(m.theme.Name); err != nil {
				m.logger.Warn("save theme failed", "error", err)
			}
		}
		return m, nil
	case key.Matches(msg, m.keys.Settings):
		return m.openSettings()
	case key.Matches(msg, m.keys.RequestLog):
		if m.logFile == "" {
			return m.notify("Request log unavailable: logging to stderr", true)
		}
		m.showLog = true
		return m, readRequestLogCmd(m.logFile)
	case key.Matches(msg, m.keys.Escape):
		m.clearError()
		return m, nil
	case key.Matches(msg, m.keys.NextScreen):
		return m.switchScreen((m.screen + 1) % len(screens.Names))
	case key.Matches(msg, m.keys.PrevScreen):
		return m.switchScreen((m.screen + len(screens.Names) - 1) % len(screens.Names))
	case key.Matches(msg, m.keys.Dashboard):
		return m.switchScreen(0)
	case key.Matches(msg, m.keys.Clients):
		return m.switchScreen(1)
	case key.Matches(msg, m.keys.Sessions):
		return m.switchScreen(2)
	case key.Matches(msg, m.keys.Payments):
		return m.switchScreen(3)
	case key.Matches(msg, m.keys.Calendar):
		return m.switchScreen(4)
	case key.Matches(msg, m.keys.Reload):
		return m, m.reloadCmd(m.currentScreen())
	}

	return m.handleScreenKey(msg)
}

// switchScreen shows screen i and reloads it.
func (m Model) switchScreen(i int) (tea.Model, tea.Cmd) {
	m.screen = i
	name := m.currentScreen()
	m.set.Focus(name)
	return m, m.reloadCmd(name)
}

func (m *Model) clearError() {
	switch m.currentScreen() {
	case screens.ScreenDashboard:
		m.set.Dashboard.ClearError()
	case screens.ScreenClients:
		m.set.Clients.ClearError()
	case screens.ScreenSessions:
		m.set.Sessions.ClearError()
	case screens.ScreenPayments:
		m.set.Payments.ClearError()
	case screens.ScreenCalendar:
		m.set.Calendar.ClearError()
	}
}

func (m Model) handleActionDone(msg actionDoneMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if m.modal != nil {
		var cmd tea.Cmd
		var closed bool
		m.modal, cmd, closed = m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		}
		cmds = append(cmds, cmd)
	}
	if msg.reloadAll {
		for _, name := range screens.Names {
			cmds = append(cmds, m.reloadCmd(name))
		}
	}
	switch {
	case msg.err != nil && m.modal == nil:
		cmds = append(cmds, m.setToast(api.Message(msg.err), true))
	case msg.err == nil && msg.message != "":
		cmds = append(cmds, m.setToast(msg.message, false))
	}
	return m, tea.Batch(cmds...)
}

// notify shows a transient status line.
func (m Model) notify(text string, isError bool) (tea.Model, tea.Cmd) {
	cmd := m.setToast(text, isError)
	return m, cmd
}

func (m *Model) setToast(text string, isError bool) tea.Cmd {
	m.toastSeq++
	m.toast = text
	m.toastError = isError
	seq := m.toastSeq
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

// Messages

// changedMsg reports that a holder published a new snapshot.
type changedMsg struct {
	screen string
}

// actionDoneMsg carries the outcome of a write or a settings change.
type actionDoneMsg struct {
	screen    string
	message   string
	err       error
	reloadAll bool
}

type toastExpiredMsg struct {
	seq int
}

// Commands

// listen waits for the next snapshot on ch. A closed channel ends the loop.
func listen[T, F any](screen string, ch <-chan state.Snapshot[T, F]) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedMsg{screen: screen}
	}
}

// loadCmd runs a load; the outcome arrives through the subscription.
func (m Model) loadCmd(load func(context.Context) error) tea.Cmd {
	ctx, logger := m.ctx, m.logger
	return func() tea.Msg {
		if err := load(ctx); err != nil {
			logger.Debug("load failed", "error", err)
		}
		return nil
	}
}

func (m Model) reloadCmd(screen string) tea.Cmd {
	target := m.set.Holder(screen)
	if target == nil {
		return nil
	}
	return m.loadCmd(target.Reload)
}

// actionCmd runs a write and reports its acknowledgement.
func (m Model) actionCmd(screen string, call func(context.Context) (api.Ack, error)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		ack, err := call(ctx)
		return actionDoneMsg{screen: screen, message: ack.Message, err: err}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	defer m.Close()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	return err
}

func truncate(s string, width int) string {
	if width <= 0 || len([]rune(s)) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string([]rune(s)[:width-1]) + "…"
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
