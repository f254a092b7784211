package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	cliapi "fixture-matching/internal/cli"
	"fixture-matching/internal/database"
	"fixture-matching/internal/matching"
)

// KeyMap represents the key bindings for the interactive match table
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Accept  key.Binding
	Reject  key.Binding
	Details key.Binding
	Reload  key.Binding
	Help    key.Binding
	Quit    key.Binding
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Accept: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "accept"),
		),
		Reject: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "reject"),
		),
		Details: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n/esc", "cancel"),
		),
	}
}

// pendingAction is a match transition awaiting confirmation
type pendingAction struct {
	matchID int
	verb    string // "accept" or "reject"
}

// InteractiveTable represents the interactive match browser model
type InteractiveTable struct {
	table       table.Model
	matches     []database.Match
	client      *cliapi.Client
	formatter   *cliapi.OutputFormatter
	keys        KeyMap
	loading     bool
	spinner     spinner.Model
	err         error
	message     string
	showHelp    bool
	quitting    bool
	config      *cliapi.Config
	useColor    bool
	showConfirm bool
	pending     pendingAction
	showDetails bool
	detailsText string
}

var matchColumns = []string{"ID", "SCORE", "VESSEL", "CARGO", "STATUS", "RATIONALE"}

// NewInteractiveTable creates a new interactive match browser
func NewInteractiveTable(matches []database.Match, client *cliapi.Client, formatter *cliapi.OutputFormatter, config *cliapi.Config) *InteractiveTable {
	columns := make([]table.Column, len(matchColumns))
	for i, name := range matchColumns {
		columns[i] = table.Column{
			Title: name,
			Width: calculateColumnWidth(i, matches),
		}
	}

	rows := make([]table.Row, len(matches))
	for i, match := range matches {
		rows[i] = matchToRow(match)
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	useColor := !config.NoColor && isatty.IsTerminal(os.Stdout.Fd())

	if useColor {
		styles := table.DefaultStyles()
		styles.Header = styles.Header.
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			BorderBottom(true).
			Bold(false)
		styles.Selected = styles.Selected.
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(false)
		t.SetStyles(styles)
	}

	return &InteractiveTable{
		table:     t,
		matches:   matches,
		client:    client,
		formatter: formatter,
		keys:      DefaultKeyMap(),
		spinner:   s,
		config:    config,
		useColor:  useColor,
	}
}

// Init initializes the interactive table
func (m InteractiveTable) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m InteractiveTable) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Handle confirmation dialog first
		if m.showConfirm {
			switch {
			case key.Matches(msg, m.keys.Confirm):
				return m.confirmPending()
			case key.Matches(msg, m.keys.Cancel):
				m.showConfirm = false
				m.message = fmt.Sprintf("%s cancelled", titleCase(m.pending.verb))
				m.pending = pendingAction{}
				return m, nil
			}
			return m, nil
		}

		// Close the details view on any dismissal key
		if m.showDetails {
			if key.Matches(msg, m.keys.Cancel) || key.Matches(msg, m.keys.Quit) || key.Matches(msg, m.keys.Details) {
				m.showDetails = false
				m.detailsText = ""
				return m, nil
			}
			return m, nil
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, m.keys.Up):
			m.table, cmd = m.table.Update(msg)
			return m, cmd

		case key.Matches(msg, m.keys.Down):
			m.table, cmd = m.table.Update(msg)
			return m, cmd

		case key.Matches(msg, m.keys.Details):
			return m.handleDetails()

		case key.Matches(msg, m.keys.Accept):
			return m.requestTransition("accept")

		case key.Matches(msg, m.keys.Reject):
			return m.requestTransition("reject")

		case key.Matches(msg, m.keys.Reload):
			return m.handleReload()
		}

	case tea.WindowSizeMsg:
		m.table.SetWidth(msg.Width)
		return m, nil

	case transitionCompleteMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.message = fmt.Sprintf("Error on %s: %v", msg.verb, msg.err)
		} else {
			m.err = nil
			m = m.replaceMatch(*msg.match)
			m.message = fmt.Sprintf("Match %d %sed", msg.match.ID, msg.verb)
		}
		return m, nil

	case reloadCompleteMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.message = fmt.Sprintf("Error reloading matches: %v", msg.err)
		} else {
			m.err = nil
			m = m.setMatches(msg.matches)
			m.message = fmt.Sprintf("Loaded %d matches", len(msg.matches))
		}
		return m, nil

	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

// View renders the interactive table
func (m InteractiveTable) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	var b strings.Builder

	if m.showHelp {
		b.WriteString(m.helpView())
		b.WriteString("\n")
	}

	if m.loading {
		b.WriteString(fmt.Sprintf("%s Working...\n", m.spinner.View()))
	}

	if m.showDetails {
		b.WriteString(m.detailsText)
		b.WriteString("\n")
	} else {
		b.WriteString(m.table.View())
		b.WriteString("\n")
	}

	if m.showConfirm {
		confirmMsg := fmt.Sprintf("%s match ID %d? (y/N): ", titleCase(m.pending.verb), m.pending.matchID)
		if m.useColor {
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Render(confirmMsg))
		} else {
			b.WriteString(confirmMsg)
		}
		b.WriteString("\n")
	}

	if m.message != "" {
		color := lipgloss.Color("82")
		if m.err != nil {
			color = lipgloss.Color("196")
		}
		if m.useColor {
			b.WriteString(lipgloss.NewStyle().Foreground(color).Render(m.message))
		} else {
			b.WriteString(m.message)
		}
		b.WriteString("\n")
	}

	b.WriteString(m.statusLine())

	return b.String()
}

// helpView returns the help view
func (m InteractiveTable) helpView() string {
	help := strings.Builder{}
	help.WriteString("Help:\n")
	help.WriteString("  ↑/k         - Move up\n")
	help.WriteString("  ↓/j         - Move down\n")
	help.WriteString("  a           - Accept selected match\n")
	help.WriteString("  x           - Reject selected match\n")
	help.WriteString("  enter       - View details and score breakdown\n")
	help.WriteString("  r           - Reload matches\n")
	help.WriteString("  ?           - Toggle help\n")
	help.WriteString("  q/ctrl+c    - Quit\n")
	return help.String()
}

// statusLine returns the status line
func (m InteractiveTable) statusLine() string {
	if m.showDetails {
		return "Details View | Press enter/esc to return to matches"
	}

	if len(m.matches) == 0 {
		return "No matches found"
	}

	selected := m.table.Cursor()
	total := len(m.matches)
	return fmt.Sprintf("Match %d of %d | Press ? for help", selected+1, total)
}

// calculateColumnWidth calculates the width for a column based on its content
func calculateColumnWidth(column int, matches []database.Match) int {
	width := len(matchColumns[column])

	samples := len(matches)
	if samples > 10 {
		samples = 10
	}

	for i := 0; i < samples; i++ {
		row := matchToRow(matches[i])
		if len(row[column]) > width {
			width = len(row[column])
		}
	}

	if width < 6 {
		width = 6
	}
	if width > 50 {
		width = 50
	}

	return width
}

// matchToRow converts a match to a table row
func matchToRow(match database.Match) table.Row {
	return table.Row{
		strconv.Itoa(match.ID),
		strconv.FormatFloat(match.Score, 'f', 0, 64),
		strconv.Itoa(match.VesselID),
		strconv.Itoa(match.CargoID),
		match.Status,
		truncateString(match.Rationale, 50),
	}
}

// transitionCompleteMsg is sent when an accept or reject completes
type transitionCompleteMsg struct {
	verb  string
	match *database.Match
	err   error
}

// reloadCompleteMsg is sent when a match list reload completes
type reloadCompleteMsg struct {
	matches []database.Match
	err     error
}

// selectedMatch returns the match under the cursor
func (m InteractiveTable) selectedMatch() (*database.Match, bool) {
	if len(m.matches) == 0 {
		return nil, false
	}
	selected := m.table.Cursor()
	if selected < 0 || selected >= len(m.matches) {
		return nil, false
	}
	return &m.matches[selected], true
}

// requestTransition opens the confirmation dialog for accept or reject
func (m InteractiveTable) requestTransition(verb string) (InteractiveTable, tea.Cmd) {
	match, ok := m.selectedMatch()
	if !ok {
		m.message = "No match selected"
		return m, nil
	}

	if match.Status != database.MatchProposed {
		m.message = fmt.Sprintf("Match %d is %s; only proposed matches can be %sed", match.ID, match.Status, verb)
		return m, nil
	}

	m.showConfirm = true
	m.pending = pendingAction{matchID: match.ID, verb: verb}
	m.message = ""
	m.err = nil

	return m, nil
}

// confirmPending executes the pending transition after confirmation
func (m InteractiveTable) confirmPending() (InteractiveTable, tea.Cmd) {
	pending := m.pending
	m.showConfirm = false
	m.pending = pendingAction{}
	m.loading = true
	m.message = ""
	m.err = nil

	return m, tea.Batch(
		m.spinner.Tick,
		m.runTransition(pending),
	)
}

// runTransition performs the accept or reject API call
func (m InteractiveTable) runTransition(pending pendingAction) tea.Cmd {
	return func() tea.Msg {
		var match *database.Match
		var err error
		if pending.verb == "accept" {
			match, err = m.client.AcceptMatch(pending.matchID)
		} else {
			match, err = m.client.RejectMatch(pending.matchID)
		}
		return transitionCompleteMsg{verb: pending.verb, match: match, err: err}
	}
}

// handleReload refreshes the match list from the server
func (m InteractiveTable) handleReload() (InteractiveTable, tea.Cmd) {
	m.loading = true
	m.message = ""
	m.err = nil

	return m, tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			matches, err := m.client.GetMatches()
			return reloadCompleteMsg{matches: matches, err: err}
		},
	)
}

// handleDetails shows the selected match with its score breakdown
func (m InteractiveTable) handleDetails() (InteractiveTable, tea.Cmd) {
	match, ok := m.selectedMatch()
	if !ok {
		m.message = "No match selected"
		return m, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\nMatch Details:\n")
	fmt.Fprintf(&b, "ID: %d\n", match.ID)
	fmt.Fprintf(&b, "Vessel ID: %d\n", match.VesselID)
	fmt.Fprintf(&b, "Cargo ID: %d\n", match.CargoID)
	fmt.Fprintf(&b, "Score: %.0f\n", match.Score)
	fmt.Fprintf(&b, "Status: %s\n", match.Status)
	fmt.Fprintf(&b, "Rationale: %s\n", match.Rationale)

	var breakdown matching.Breakdown
	if err := json.Unmarshal([]byte(match.Breakdown), &breakdown); err == nil {
		fmt.Fprintf(&b, "\nBreakdown:\n")
		for _, row := range []struct {
			name   string
			result matching.CriterionResult
		}{
			{"tonnage", breakdown.Tonnage},
			{"laycan", breakdown.Laycan},
			{"distance", breakdown.Distance},
			{"volume", breakdown.Volume},
			{"requirements", breakdown.Requirements},
		} {
			if !row.result.Evaluated {
				continue
			}
			fmt.Fprintf(&b, "  %-13s %+.0f", row.name+":", row.result.Points)
			if row.result.Reason != "" {
				fmt.Fprintf(&b, "  (%s)", row.result.Reason)
			}
			b.WriteString("\n")
		}
		if breakdown.UtilizationPct > 0 {
			fmt.Fprintf(&b, "  utilization:  %.0f%%\n", breakdown.UtilizationPct)
		}
		if breakdown.DistanceNM > 0 {
			fmt.Fprintf(&b, "  distance:     %.0f nm (%.1f days)\n", breakdown.DistanceNM, breakdown.SailingDays)
		}
	}

	m.showDetails = true
	m.detailsText = b.String()
	m.message = ""
	m.err = nil
	return m, nil
}

// replaceMatch swaps an updated match into the table
func (m InteractiveTable) replaceMatch(updated database.Match) InteractiveTable {
	for i, match := range m.matches {
		if match.ID == updated.ID {
			m.matches[i] = updated
			break
		}
	}

	rows := make([]table.Row, len(m.matches))
	for i, match := range m.matches {
		rows[i] = matchToRow(match)
	}
	m.table.SetRows(rows)

	return m
}

// setMatches replaces the full match list
func (m InteractiveTable) setMatches(matches []database.Match) InteractiveTable {
	m.matches = matches

	rows := make([]table.Row, len(matches))
	for i, match := range matches {
		rows[i] = matchToRow(match)
	}
	m.table.SetRows(rows)

	return m
}

// titleCase upper-cases the first letter of an ASCII word
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// truncateString truncates a string to the specified length with ellipsis
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// runInteractiveTable runs the interactive match browser
func runInteractiveTable(matches []database.Match, client *cliapi.Client, formatter *cliapi.OutputFormatter, config *cliapi.Config) error {
	interactiveTable := NewInteractiveTable(matches, client, formatter, config)

	p := tea.NewProgram(interactiveTable, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
