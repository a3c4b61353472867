package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/mycoach/internal/logtail"
)

// requestLogLines bounds how much of the log file the view reads.
const requestLogLines = 2000

type requestLogMsg struct {
	lines []string
	err   error
}

func readRequestLogCmd(path string) tea.Cmd {
	return func() tea.Msg {
		lines, err := logtail.Read(path, requestLogLines)
		if err != nil {
			return requestLogMsg{err: err}
		}
		return requestLogMsg{lines: logtail.Requests(lines)}
	}
}

func (m *Model) setLogContent(msg requestLogMsg) {
	styles := m.theme.Styles()
	if msg.err != nil {
		m.logView.SetContent(styles.DangerText.Render("read log: " + msg.err.Error()))
		return
	}
	if len(msg.lines) == 0 {
		m.logView.SetContent(styles.MutedText.Render("No requests logged yet."))
		return
	}
	var b strings.Builder
	for _, line := range msg.lines {
		b.WriteString(styles.LevelStyle(logtail.Level(line)).Render(line))
		b.WriteString("\n")
	}
	m.logView.SetContent(b.String())
	m.logView.GotoBottom()
}

func (m *Model) resizeLogView() {
	m.logView.Width = m.width
	m.logView.Height = max(m.height-2, 1)
}

func (m Model) handleLogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.RequestLog):
		m.showLog = false
		return m, nil
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Reload):
		return m, readRequestLogCmd(m.logFile)
	case key.Matches(msg, m.keys.Top):
		m.logView.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.logView.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	m.logView, cmd = m.logView.Update(msg)
	return m, cmd
}

func (m Model) renderRequestLog() string {
	styles := m.theme.Styles()
	header := styles.Header.Width(m.width).Render("Request log · " + m.logFile)
	footer := styles.Footer.Width(m.width).Render("j/k scroll · g/G top/bottom · r refresh · esc close")
	return header + "\n" + m.logView.View() + "\n" + footer
}
