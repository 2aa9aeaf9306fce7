// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Mara Veldt, Veloforge

package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/veloforge/fitwire/pkg/fitdecode"
)

var tuiCmd = &cobra.Command{
	Use:   "tui FILE",
	Short: "Browse a decoded FIT file interactively",
	Long: `Open an interactive browser over a decoded FIT file: message groups on
the left, the messages of the selected group on the right.

Keys: up/down select group, pgup/pgdn scroll messages, q quit.`,
	Args: cobra.ExactArgs(1),
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// Styles
var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	groupStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62"))
	paneStyle     = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// browseModel is the bubbletea model for the message browser.
type browseModel struct {
	path     string
	file     *fitdecode.DecodedFile
	names    []string
	selected int
	view     viewport.Model
	width    int
	height   int
	ready    bool
	quitting bool
}

func newBrowseModel(path string, df *fitdecode.DecodedFile) browseModel {
	return browseModel{
		path:  path,
		file:  df,
		names: df.MessageNames(),
	}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.selected > 0 {
				m.selected--
				m.view.SetContent(m.groupContent())
				m.view.GotoTop()
			}
		case "down", "j":
			if m.selected < len(m.names)-1 {
				m.selected++
				m.view.SetContent(m.groupContent())
				m.view.GotoTop()
			}
		case "pgup", "b":
			m.view.ViewUp()
		case "pgdown", "f", " ":
			m.view.ViewDown()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vw := m.width - m.listWidth() - 6
		vh := m.height - 4
		if !m.ready {
			m.view = viewport.New(vw, vh)
			m.view.SetContent(m.groupContent())
			m.ready = true
		} else {
			m.view.Width = vw
			m.view.Height = vh
		}
	}

	var cmd tea.Cmd
	m.view, cmd = m.view.Update(msg)
	return m, cmd
}

func (m browseModel) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "loading..."
	}

	title := titleStyle.Render(fmt.Sprintf("fitwire - %s (%d messages)", m.path, m.file.NumMessages()))

	var list strings.Builder
	for i, name := range m.names {
		line := fmt.Sprintf("%-24s %5d", truncate(name, 24), len(m.file.Messages(name)))
		if i == m.selected {
			list.WriteString(selectedStyle.Render(line))
		} else {
			list.WriteString(groupStyle.Render(line))
		}
		list.WriteByte('\n')
	}

	left := paneStyle.Width(m.listWidth()).Height(m.height - 4).Render(list.String())
	right := paneStyle.Render(m.view.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	status := statusStyle.Render(fmt.Sprintf("%3.0f%%  up/down select, pgup/pgdn scroll, q quit", m.view.ScrollPercent()*100))

	return lipgloss.JoinVertical(lipgloss.Left, title, body, status)
}

func (m browseModel) listWidth() int {
	return 32
}

// groupContent renders every message of the selected group.
func (m browseModel) groupContent() string {
	if len(m.names) == 0 {
		return "no messages"
	}
	name := m.names[m.selected]
	var b strings.Builder
	for i, msg := range m.file.Messages(name) {
		fmt.Fprintf(&b, "--- %s #%d ---\n", name, i+1)
		b.WriteString(fitdecode.FormatMessage(msg))
		b.WriteByte('\n')
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func runTUI(cmd *cobra.Command, args []string) error {
	profile, err := loadProfile()
	if err != nil {
		return err
	}

	df, err := fitdecode.DecodeFile(args[0], profile, decodeOptions())
	if err != nil {
		return err
	}
	if df.NumMessages() == 0 {
		return fmt.Errorf("no data messages in %s", args[0])
	}

	p := tea.NewProgram(newBrowseModel(args[0], df), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
