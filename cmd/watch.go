// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Ovenworks

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ovenworks/ovenctl/pkg/oven"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live oven monitor",
	Long: `Continuously poll the oven and show its state in a full-screen view,
with running exchange statistics. Press q to quit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		// hexdumps would fight the alternate screen
		c.Trace = nil

		p := tea.NewProgram(newWatchModel(c, watchInterval))
		_, err = p.Run()
		return err
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 5*time.Second, "Poll interval")
	rootCmd.AddCommand(watchCmd)
}

// One full poll of the oven.
type ovenStatus struct {
	timestamp time.Time
	temp      float64
	setpoint  float64
	mode      oven.Mode
	doorOpen  bool
	alarm     bool
	note      bool
	alarmText string
}

type watchLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

type watchModel struct {
	client   *oven.Client
	interval time.Duration

	spinner       spinner.Model
	status        *ovenStatus
	polling       bool
	log           []watchLogEntry
	maxLogEntries int
	alarmSeen     bool
	width         int
	height        int
	quitting      bool
}

type watchTickMsg time.Time
type watchStatusMsg ovenStatus
type watchErrMsg struct{ err error }

func newWatchModel(c *oven.Client, interval time.Duration) watchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	return watchModel{
		client:        c,
		interval:      interval,
		spinner:       s,
		maxLogEntries: 100,
		width:         80,
		height:        24,
	}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		pollOvenCmd(m.client),
		tea.EnterAltScreen,
	)
}

func watchTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return watchTickMsg(t)
	})
}

// pollOvenCmd reads the oven state; each getter is its own connection
// to the bridge, so a poll takes several exchanges.
func pollOvenCmd(c *oven.Client) tea.Cmd {
	return func() tea.Msg {
		var st ovenStatus
		var err error
		st.timestamp = time.Now()
		if st.temp, err = c.GetTemp(); err != nil {
			return watchErrMsg{err}
		}
		if st.setpoint, err = c.GetSetpoint(); err != nil {
			return watchErrMsg{err}
		}
		if st.mode, err = c.GetMode(); err != nil {
			return watchErrMsg{err}
		}
		if st.doorOpen, err = c.GetDoorState(); err != nil {
			return watchErrMsg{err}
		}
		if st.alarm, st.note, err = c.GetAlarmState(); err != nil {
			return watchErrMsg{err}
		}
		if st.alarm || st.note {
			if st.alarmText, err = c.GetAlarmText(); err != nil {
				return watchErrMsg{err}
			}
		}
		return watchStatusMsg(st)
	}
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			if !m.polling {
				m.polling = true
				return m, pollOvenCmd(m.client)
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case watchTickMsg:
		if !m.polling {
			m.polling = true
			return m, pollOvenCmd(m.client)
		}

	case watchStatusMsg:
		m.polling = false
		st := ovenStatus(msg)
		m.noteTransitions(st)
		m.status = &st
		return m, watchTickCmd(m.interval)

	case watchErrMsg:
		m.polling = false
		m.addLogEntry(fmt.Sprintf("POLL FAILED: %v", msg.err), true)
		return m, watchTickCmd(m.interval)
	}

	return m, nil
}

// noteTransitions logs door, alarm and mode changes between polls.
func (m *watchModel) noteTransitions(st ovenStatus) {
	prev := m.status
	if prev == nil {
		m.addLogEntry("Connected", false)
	} else {
		if st.doorOpen != prev.doorOpen {
			m.addLogEntry("Door "+openClosed(st.doorOpen), false)
		}
		if st.mode != prev.mode {
			m.addLogEntry(fmt.Sprintf("Mode changed to %04x (%s)", uint16(st.mode), st.mode), false)
		}
	}
	if st.alarm && !m.alarmSeen {
		m.addLogEntry(fmt.Sprintf("ALARM: %s", strings.TrimSpace(st.alarmText)), true)
	}
	m.alarmSeen = st.alarm
}

func (m *watchModel) addLogEntry(message string, isError bool) {
	m.log = append(m.log, watchLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})
	if len(m.log) > m.maxLogEntries {
		m.log = m.log[len(m.log)-m.maxLogEntries:]
	}
}

func (m watchModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	var s strings.Builder
	s.WriteString(titleStyle.Render("OVENCTL - LIVE MONITOR"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("Polling every %s | Press 'r' to refresh now, 'q' to quit", m.interval)))
	s.WriteString("\n\n")

	if m.polling {
		s.WriteString(m.spinner.View())
		s.WriteString(headerStyle.Render(" polling..."))
		s.WriteString("\n\n")
	}

	if m.status != nil {
		st := m.status
		content := strings.Builder{}
		content.WriteString(fmt.Sprintf("%s %s   %s %s\n",
			labelStyle.Render("Temperature:"), valueStyle.Render(fmt.Sprintf("%.1f degC", st.temp)),
			labelStyle.Render("Setpoint:"), valueStyle.Render(fmt.Sprintf("%.1f degC", st.setpoint)),
		))
		content.WriteString(fmt.Sprintf("%s %s   %s %s\n",
			labelStyle.Render("Mode:"), valueStyle.Render(fmt.Sprintf("%04x (%s)", uint16(st.mode), st.mode)),
			labelStyle.Render("Door:"), func() string {
				if st.doorOpen {
					return warningStyle.Render("open")
				}
				return valueStyle.Render("closed")
			}(),
		))
		switch {
		case st.alarm:
			content.WriteString(fmt.Sprintf("%s %s",
				errorStyle.Render("ALARM:"), errorStyle.Render(strings.TrimSpace(st.alarmText))))
		case st.note:
			content.WriteString(fmt.Sprintf("%s %s",
				warningStyle.Render("Note:"), warningStyle.Render(strings.TrimSpace(st.alarmText))))
		default:
			content.WriteString(fmt.Sprintf("%s %s",
				labelStyle.Render("Alarm:"), valueStyle.Render("none")))
		}
		s.WriteString(boxStyle.Render(content.String()))
		s.WriteString("\n")
		s.WriteString(headerStyle.Render(fmt.Sprintf("Last reading %s ago", time.Since(st.timestamp).Round(time.Second))))
		s.WriteString("\n\n")
	} else if !m.polling {
		s.WriteString(warningStyle.Render("No reading yet"))
		s.WriteString("\n\n")
	}

	// Exchange statistics
	if stats := m.client.Stats; stats != nil {
		stats.CalculateRates()
		statsContent := strings.Builder{}
		statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
			labelStyle.Render("Exchanges:"), valueStyle.Render(fmt.Sprintf("%d", stats.Exchanges)),
			labelStyle.Render("Completed:"), valueStyle.Render(fmt.Sprintf("%d", stats.Completed)),
			labelStyle.Render("Continuations:"), valueStyle.Render(fmt.Sprintf("%d", stats.Continuations)),
		))
		statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
			labelStyle.Render("Bad messages:"), errCount(stats.BadMessages, valueStyle, errorStyle),
			labelStyle.Render("Bus errors:"), errCount(stats.BusErrors, valueStyle, errorStyle),
			labelStyle.Render("Timeouts:"), errCount(stats.Timeouts, valueStyle, errorStyle),
		))
		statsContent.WriteString(fmt.Sprintf("%s %s   %s %s",
			labelStyle.Render("Exchange rate:"), valueStyle.Render(fmt.Sprintf("%.1f/s", stats.ExchangeRate)),
			labelStyle.Render("Error rate:"), func() string {
				if stats.ErrorRate > 0 {
					return errorStyle.Render(fmt.Sprintf("%.1f/s", stats.ErrorRate))
				}
				return valueStyle.Render(fmt.Sprintf("%.1f/s", stats.ErrorRate))
			}(),
		))
		s.WriteString(boxStyle.Render(statsContent.String()))
		s.WriteString("\n\n")
	}

	// Event log
	s.WriteString(labelStyle.Render("Recent Events:"))
	s.WriteString("\n")
	logHeight := m.height - 16
	if logHeight < 5 {
		logHeight = 5
	}
	startIdx := len(m.log) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}
	for _, entry := range m.log[startIdx:] {
		line := fmt.Sprintf("%s %s",
			headerStyle.Render(entry.timestamp.Format("15:04:05")),
			entry.message)
		if entry.isError {
			line = fmt.Sprintf("%s %s",
				headerStyle.Render(entry.timestamp.Format("15:04:05")),
				errorStyle.Render(entry.message))
		}
		s.WriteString(line)
		s.WriteString("\n")
	}

	return s.String()
}

func errCount(n uint64, ok, bad lipgloss.Style) string {
	if n > 0 {
		return bad.Render(fmt.Sprintf("%d", n))
	}
	return ok.Render(fmt.Sprintf("%d", n))
}
