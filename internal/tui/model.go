package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"movierag/internal/catalog"
	"movierag/internal/domain"
)

// SearchPort is the pipeline surface the TUI consumes.
type SearchPort interface {
	Search(prompt string, k int) ([]domain.SearchHit, error)
}

// SummarizePort is the optional summarization surface.
type SummarizePort interface {
	Summarize(hits []domain.SearchHit, prompt string) (string, error)
}

// Model is the Bubble Tea model for the interactive search shell.
type Model struct {
	search     SearchPort
	summarizer SummarizePort
	topK       int
	summarize  bool

	input     textinput.Model
	viewport  viewport.Model
	results   []domain.SearchHit
	summary   string
	status    string
	cursor    int
	ready     bool
	lastQuery string
}

// New creates a new TUI model instance.
func New(search SearchPort, summarizer SummarizePort, topK int, summarize bool) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Describe a movie you want and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		search:     search,
		summarizer: summarizer,
		topK:       topK,
		summarize:  summarize,
		input:      ti,
		viewport:   vp,
		status:     "Catalog indexed. Type to search.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around result and query boxes
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 2 // header + summary
		totalFooterLines := 1 // status
		reserved := totalHeaderLines + totalFooterLines + qh + 1
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCurrentResult())
		return m, nil
	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				m = m.runSearch(q)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		case "down":
			if len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		case "up":
			if len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) runSearch(q string) Model {
	hits, err := m.search.Search(q, m.topK)
	if err != nil {
		m.status = "Error: " + err.Error()
		m.results = nil
		m.summary = ""
		return m
	}
	m.status = fmt.Sprintf("Results for %q", q)
	m.results = hits
	m.cursor = 0
	m.lastQuery = q
	m.summary = ""
	if m.summarize && m.summarizer != nil {
		summary, err := m.summarizer.Summarize(hits, q)
		if err != nil {
			m.status += "  (summary unavailable)"
		} else {
			m.summary = summary
		}
	}
	return m
}

// View renders the TUI layout and current result.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Movie Search")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderCurrentResult() string {
	if len(m.results) == 0 {
		return "No results yet."
	}
	h := m.results[m.cursor]
	title := fmt.Sprintf("Result %d/%d  score=%.4f", m.cursor+1, len(m.results), h.Score)
	return title + "\n\n" + renderHit(h)
}

func renderHit(h domain.SearchHit) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(h.Title))
	b.WriteString("\n")
	if genre := h.Payload.StringField(catalog.GenreColumn); genre != "" {
		fmt.Fprintf(&b, "genre: %s\n", genre)
	}
	if year, ok := h.Payload.NumberField(catalog.YearColumn); ok {
		fmt.Fprintf(&b, "year: %d\n", int(year))
	}
	// Remaining payload fields, stable order.
	keys := make([]string, 0, len(h.Payload))
	for k := range h.Payload {
		if k == catalog.TitleColumn || k == catalog.GenreColumn || k == catalog.YearColumn {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := h.Payload.StringField(k); v != "" {
			fmt.Fprintf(&b, "%s: %s\n", k, v)
		}
	}
	return b.String()
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
