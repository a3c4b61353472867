package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/five82/mycoach/internal/api"
	"github.com/five82/mycoach/internal/screens"
)

var screenTitles = map[string]string{
	screens.ScreenDashboard: "Dashboard",
	screens.ScreenClients:   "Clients",
	screens.ScreenSessions:  "Sessions",
	screens.ScreenPayments:  "Payments",
	screens.ScreenCalendar:  "Calendar",
}

// renderMain renders header, content and footer.
func (m Model) renderMain() string {
	if m.showLog {
		return m.renderRequestLog()
	}
	header := m.renderHeader()
	banner := m.renderBanner()
	footer := m.renderFooter()

	used := lipgloss.Height(header) + lipgloss.Height(footer)
	if banner != "" {
		used += lipgloss.Height(banner)
	}
	contentHeight := max(m.height-used, 3)

	parts := []string{header}
	if banner != "" {
		parts = append(parts, banner)
	}
	content := lipgloss.NewStyle().Height(contentHeight).MaxHeight(contentHeight).Render(m.renderContent(contentHeight))
	parts = append(parts, content, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)
	surface := styles.WithBackground(m.theme.Surface)

	tabs := make([]string, 0, len(screens.Names))
	for i, name := range screens.Names {
		label := fmt.Sprintf("%d %s", i+1, screenTitles[name])
		if i == m.screen {
			tabs = append(tabs, styles.Selected.Padding(0, 1).Render(label))
		} else {
			tabs = append(tabs, bg.Render(" "+label+" ", surface.MutedText))
		}
	}
	left := bg.Render("mycoach", surface.Logo) + bg.Spaces(2) + strings.Join(tabs, bg.Spaces(1))

	var right []string
	meta := m.meta[m.currentScreen()]
	switch {
	case meta.loading:
		right = append(right, bg.Render("loading", surface.WarningText))
	case meta.offline:
		right = append(right, bg.Render("offline", surface.DangerText))
	case !meta.updated.IsZero():
		right = append(right, bg.Render("updated "+meta.updated.Format("15:04:05"), surface.FaintText))
	}
	if m.settings != nil {
		right = append(right, bg.Render(m.settings.BaseURL(), surface.MutedText))
	}
	rightText := bg.Join(right, 2)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(rightText) - 2
	line := left + bg.Spaces(max(gap, 1)) + rightText
	return styles.Header.Width(m.width).MaxWidth(m.width).Render(line)
}

// renderBanner shows the focused screen's last error.
func (m Model) renderBanner() string {
	meta := m.meta[m.currentScreen()]
	if meta.err == "" {
		return ""
	}
	styles := m.theme.Styles()
	text := "Error: " + oneLine(meta.err) + "  (esc to dismiss)"
	return styles.DangerText.Padding(0, 1).Render(truncate(text, m.width-2))
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	if m.toast != "" {
		style := styles.SuccessText
		if m.toastError {
			style = styles.DangerText
		}
		return styles.Footer.Width(m.width).Render(style.Background(lipgloss.Color(m.theme.Surface)).Render(truncate(m.toast, m.width-2)))
	}
	var hints []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		hints = append(hints, h.Key+" "+h.Desc)
	}
	if m.currentScreen() == screens.ScreenClients {
		hints = append(hints, "e edit", "c sessions")
	}
	return styles.Footer.Width(m.width).Render(truncate(strings.Join(hints, " · "), m.width-2))
}

func (m Model) renderContent(height int) string {
	switch m.currentScreen() {
	case screens.ScreenDashboard:
		return m.renderDashboard()
	case screens.ScreenClients:
		return m.renderClients(height)
	case screens.ScreenSessions:
		return m.renderSessions(height)
	case screens.ScreenPayments:
		return m.renderPayments(height)
	case screens.ScreenCalendar:
		return m.renderCalendar(height)
	}
	return ""
}

func (m Model) renderDashboard() string {
	styles := m.theme.Styles()
	meta := m.meta[screens.ScreenDashboard]
	if !meta.received {
		return m.placeholder(meta, "")
	}
	d := m.dashboard
	outstandingStatus := balanceStatus(d.TotalOutstanding)

	card := func(label, value string, valueStyle lipgloss.Style) string {
		body := styles.MutedText.Render(label) + "\n" + valueStyle.Bold(true).Render(value)
		return lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(m.theme.Border)).
			Padding(0, 2).
			Width(22).
			Render(body)
	}
	outstanding := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.StatusColors[outstandingStatus]))

	rows := []string{
		lipgloss.JoinHorizontal(lipgloss.Top,
			card("Clients", strconv.Itoa(d.TotalClients), styles.Text),
			card("Sessions", strconv.Itoa(d.TotalSessions), styles.Text),
			card("Hours", formatHours(d.TotalHours), styles.Text),
		),
		lipgloss.JoinHorizontal(lipgloss.Top,
			card("Revenue", d.TotalRevenue.Format(), styles.AccentText),
			card("Paid", d.TotalPaid.Format(), styles.SuccessText),
			card("Outstanding", d.TotalOutstanding.Format(), outstanding),
		),
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m Model) renderClients(height int) string {
	meta := m.meta[screens.ScreenClients]
	if len(m.clients.items) == 0 {
		return m.placeholder(meta, "No clients yet. Press n to add one.")
	}
	rows := make([][]string, 0, len(m.clients.items))
	statuses := make([]string, 0, len(m.clients.items))
	for _, c := range m.clients.items {
		status := balanceStatus(c.Balance)
		statuses = append(statuses, status)
		rows = append(rows, []string{
			c.Name,
			api.Deref(c.Email),
			api.Deref(c.Phone),
			c.HourlyRate.Format(),
			formatHours(c.TotalHours),
			c.TotalRevenue.Format(),
			c.TotalPaid.Format(),
			c.Balance.Format(),
			status,
		})
	}
	headers := []string{"Name", "Email", "Phone", "Rate", "Hours", "Revenue", "Paid", "Balance", "Status"}
	return m.renderTable(headers, rows, m.clients.cursor, func(i int) bool {
		return m.clients.isHighlighted(m.clients.items[i])
	}, func(i, col int) string {
		if col == len(headers)-1 {
			return statuses[i]
		}
		return ""
	}, height)
}

func (m Model) renderSessions(height int) string {
	meta := m.meta[screens.ScreenSessions]
	title := m.filterTitle("Sessions", m.sessionFilter)
	if len(m.sessions.items) == 0 {
		return title + "\n" + m.placeholder(meta, "No sessions. Press n to record one.")
	}
	rows := make([][]string, 0, len(m.sessions.items))
	for _, s := range m.sessions.items {
		billed := "unbilled"
		if s.Billed {
			billed = "billed"
		}
		rows = append(rows, []string{
			s.Date,
			s.ClientName,
			strconv.Itoa(s.DurationMinutes),
			billed,
			s.Amount.Format(),
			oneLine(api.Deref(s.Notes)),
		})
	}
	body := m.renderTable([]string{"Date", "Client", "Minutes", "Billed", "Amount", "Notes"}, rows, m.sessions.cursor, func(i int) bool {
		return m.sessions.isHighlighted(m.sessions.items[i])
	}, func(i, col int) string {
		if col == 3 {
			return rows[i][3]
		}
		return ""
	}, height-1)
	return title + "\n" + body
}

func (m Model) renderPayments(height int) string {
	meta := m.meta[screens.ScreenPayments]
	title := m.filterTitle("Payments", m.paymentFilter)
	if len(m.payments.items) == 0 {
		return title + "\n" + m.placeholder(meta, "No payments. Press n to record one.")
	}
	rows := make([][]string, 0, len(m.payments.items))
	for _, p := range m.payments.items {
		rows = append(rows, []string{
			p.Date,
			p.ClientName,
			p.Amount.Format(),
			api.Deref(p.Method),
			oneLine(api.Deref(p.Notes)),
		})
	}
	body := m.renderTable([]string{"Date", "Client", "Amount", "Method", "Notes"}, rows, m.payments.cursor, func(i int) bool {
		return m.payments.isHighlighted(m.payments.items[i])
	}, nil, height-1)
	return title + "\n" + body
}

func (m Model) renderCalendar(height int) string {
	styles := m.theme.Styles()
	meta := m.meta[screens.ScreenCalendar]
	if !meta.received {
		return m.placeholder(meta, "")
	}
	if !m.connected {
		badge := styles.StatusStyle("disconnected").Render("disconnected")
		return " " + badge + "\n\n" + styles.MutedText.Padding(0, 1).Render("No calendar is connected. Connect one on the server to see events.")
	}
	badge := styles.StatusStyle("connected").Render("connected")
	title := " " + badge + " " + styles.MutedText.Render(fmt.Sprintf("next %d days", api.DefaultEventDays))
	if len(m.events.items) == 0 {
		return title + "\n\n" + styles.MutedText.Padding(0, 1).Render("No upcoming events. Press n to add one.")
	}
	rows := make([][]string, 0, len(m.events.items))
	for _, e := range m.events.items {
		rows = append(rows, []string{
			formatEventTime(e.Start, e.ParsedStart()),
			formatEventTime(e.End, e.ParsedEnd()),
			e.Title,
			oneLine(e.Description),
		})
	}
	body := m.renderTable([]string{"Start", "End", "Title", "Description"}, rows, m.events.cursor, func(i int) bool {
		return m.events.isHighlighted(m.events.items[i])
	}, nil, height-1)
	return title + "\n" + body
}

// renderTable draws rows with the cursor row selected and recently changed
// rows highlighted. status, when set, names a status colour for a cell.
func (m Model) renderTable(headers []string, rows [][]string, cursor int, highlighted func(int) bool, status func(row, col int) string, height int) string {
	styles := m.theme.Styles()
	visible := max(height-2, 1)
	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := min(start+visible, len(rows))

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Border))).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(true).
		Headers(headers...).
		Rows(rows[start:end]...).
		Width(m.width).
		StyleFunc(func(row, col int) lipgloss.Style {
			cell := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return cell.Inherit(styles.AccentText).Bold(true)
			}
			i := start + row
			switch {
			case i == cursor:
				return cell.Inherit(styles.Selected)
			case highlighted != nil && highlighted(i):
				cell = cell.Inherit(styles.Highlight)
			default:
				cell = cell.Inherit(styles.Text)
			}
			if status != nil {
				if name := status(i, col); name != "" {
					if color, ok := m.theme.StatusColors[name]; ok {
						cell = cell.Foreground(lipgloss.Color(color))
					}
				}
			}
			return cell
		})
	return t.Render()
}

// placeholder explains an empty content area.
func (m Model) placeholder(meta screenMeta, empty string) string {
	styles := m.theme.Styles()
	style := styles.MutedText.Padding(1, 2)
	switch {
	case meta.loading && !meta.received:
		return style.Render("Loading...")
	case meta.err != "" && !meta.received:
		return style.Render("Nothing loaded yet. Press r to retry.")
	case !meta.received:
		return style.Render("Waiting for data...")
	}
	return style.Render(empty)
}

func (m Model) filterTitle(label string, clientID int) string {
	styles := m.theme.Styles()
	if clientID <= 0 {
		return styles.MutedText.Padding(0, 1).Render(label + " · all clients")
	}
	name := m.clientName(clientID)
	if name == "" {
		name = "#" + strconv.Itoa(clientID)
	}
	return styles.AccentText.Padding(0, 1).Render(label+" · "+name) + styles.FaintText.Render("  c shows all")
}

func balanceStatus(balance api.Money) string {
	switch balance.Sign() {
	case 1:
		return "owed"
	case -1:
		return "credit"
	}
	return "settled"
}

func formatHours(hours float64) string {
	return strconv.FormatFloat(hours, 'f', 1, 64)
}

func formatEventTime(raw string, t time.Time) string {
	if t.IsZero() {
		return raw
	}
	return t.Local().Format("Mon Jan 2 15:04")
}
