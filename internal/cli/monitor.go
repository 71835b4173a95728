package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/fssearchd/fssearchd/internal/config"
	"github.com/fssearchd/fssearchd/internal/pipeline"
	"github.com/fssearchd/fssearchd/internal/search"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor [pattern] [root]",
	Short: "Watch active search sessions in a terminal UI",
	Long: `monitor starts its own session registry, optionally kicks off one
search against it, and renders a live table of every session (id, type,
pattern, elapsed, result count, status). Select a row with the arrow keys
and press 'x' to stop it. Read-only otherwise: it's an operational aid, not
a new RPC surface.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	resolved, err := config.Resolve(config.ResolveOptions{
		ConfigFile: flagValues.ConfigFile,
		TargetDir:  flagValues.Dir,
		CLIFlags:   config.ToCLIFlagMap(flagValues, cmd),
	})
	if err != nil {
		return pipeline.NewError("resolving configuration", err)
	}

	registry := search.NewRegistry(registryConfigFrom(resolved.Server))
	defer registry.Close()

	if len(args) > 0 {
		root := "."
		if len(args) > 1 {
			root = args[1]
		}
		if _, err := registry.StartFlow(search.SearchOptions{
			RootPath:   root,
			Pattern:    args[0],
			SearchType: search.SearchTypeContent,
		}); err != nil {
			return pipeline.NewError("starting search", err)
		}
	}

	m := newMonitorModel(registry)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

var (
	monitorAppStyle = lipgloss.NewStyle().
				Padding(1, 2).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#7aa2f7"))

	monitorHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#7aa2f7"))

	monitorInfoStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#a9b1d6"))

	monitorSuccessStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#9ece6a")).
				Bold(true)

	monitorWarningStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#e0af68")).
				Bold(true)

	monitorErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#f7768e")).
				Bold(true)
)

type monitorTickMsg struct{}

type monitorModel struct {
	registry *search.Registry
	table    table.Model
	sessions []search.SessionSummary
	status   string
	width    int
	height   int
}

func newMonitorModel(registry *search.Registry) monitorModel {
	columns := []table.Column{
		{Title: "ID", Width: 8},
		{Title: "Type", Width: 10},
		{Title: "Pattern", Width: 24},
		{Title: "Elapsed", Width: 10},
		{Title: "Results", Width: 9},
		{Title: "Status", Width: 12},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	style := table.DefaultStyles()
	style.Header = style.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#565f89")).
		BorderBottom(true).
		Bold(true)
	style.Selected = style.Selected.
		Foreground(lipgloss.Color("#1a1b26")).
		Background(lipgloss.Color("#7aa2f7")).
		Bold(true)
	t.SetStyles(style)

	return monitorModel{registry: registry, table: t}
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(refreshSessions(m.registry), monitorTick())
}

func monitorTick() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(time.Time) tea.Msg {
		return monitorTickMsg{}
	})
}

func refreshSessions(registry *search.Registry) tea.Cmd {
	return func() tea.Msg {
		return registry.ListFlow()
	}
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "x":
			if row := m.table.Cursor(); row >= 0 && row < len(m.sessions) {
				id := m.sessions[row].ID
				stopped, err := m.registry.StopFlow(id)
				switch {
				case err != nil:
					m.status = monitorErrorStyle.Render(fmt.Sprintf("stop %s: %v", shortID(id), err))
				case stopped:
					m.status = monitorWarningStyle.Render(fmt.Sprintf("stopped %s", shortID(id)))
				default:
					m.status = monitorInfoStyle.Render(fmt.Sprintf("%s already complete", shortID(id)))
				}
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd

	case monitorTickMsg:
		return m, tea.Batch(refreshSessions(m.registry), monitorTick())

	case []search.SessionSummary:
		m.sessions = msg
		m.table.SetRows(sessionRows(msg))
		return m, nil
	}
	return m, nil
}

func sessionRows(sessions []search.SessionSummary) []table.Row {
	rows := make([]table.Row, len(sessions))
	for i, s := range sessions {
		rows[i] = table.Row{
			shortID(s.ID),
			string(s.SearchType),
			s.Pattern,
			formatElapsed(s.RuntimeMs),
			fmt.Sprintf("%d", s.TotalResults),
			sessionStatus(s),
		}
	}
	return rows
}

func sessionStatus(s search.SessionSummary) string {
	switch {
	case s.IsError:
		return monitorErrorStyle.Render("error")
	case s.WasIncomplete:
		return monitorWarningStyle.Render("cancelled")
	case s.IsComplete:
		return monitorSuccessStyle.Render("complete")
	default:
		return "running"
	}
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func formatElapsed(ms int64) string {
	return time.Duration(ms * int64(time.Millisecond)).Round(10 * time.Millisecond).String()
}

func (m monitorModel) View() string {
	header := monitorHeaderStyle.Render("fssearchd monitor") + "\n" +
		monitorInfoStyle.Render(fmt.Sprintf("%d session(s)", len(m.sessions)))

	body := m.table.View()
	if len(m.sessions) == 0 {
		body = monitorInfoStyle.Render("No sessions yet.")
	}

	footer := monitorInfoStyle.Render("↑/↓ select • x stop • q quit")
	if m.status != "" {
		footer = m.status + "\n" + footer
	}

	content := header + "\n\n" + body + "\n\n" + footer
	return monitorAppStyle.Render(content)
}
