package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/daunroda/internal/models"
	"github.com/desertthunder/daunroda/internal/shared"
)

// Prompt asks the user to confirm deferred matches, one program per question.
type Prompt struct {
	in    io.Reader
	out   io.Writer
	open  func(string) error
	asked int
}

// NewPrompt creates a prompt reading keys from in and rendering to out.
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{in: in, out: out, open: shared.OpenBrowser}
}

// WithOpener replaces the function used to open candidate links.
func (p *Prompt) WithOpener(open func(string) error) *Prompt {
	if open != nil {
		p.open = open
	}
	return p
}

// Confirm shows item and waits for an answer. Quitting the prompt returns
// [shared.ErrReviewAborted].
func (p *Prompt) Confirm(ctx context.Context, item models.ReviewItem) (bool, error) {
	p.asked++

	m := newPromptModel(item, p.asked, p.open)
	prog := tea.NewProgram(m, tea.WithContext(ctx), tea.WithInput(p.in), tea.WithOutput(p.out))

	final, err := prog.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		return false, fmt.Errorf("review prompt failed: %w", err)
	}

	pm, ok := final.(*promptModel)
	if !ok || pm.aborted {
		return false, shared.ErrReviewAborted
	}
	return pm.answer, nil
}

// promptModel is the bubbletea model for a single question.
type promptModel struct {
	item    models.ReviewItem
	number  int
	open    func(string) error
	keys    keyMap
	help    help.Model
	status  string
	answer  bool
	aborted bool
	done    bool
}

func newPromptModel(item models.ReviewItem, number int, open func(string) error) *promptModel {
	return &promptModel{
		item:   item,
		number: number,
		open:   open,
		keys:   newKeyMap(),
		help:   help.New(),
	}
}

func (m *promptModel) Init() tea.Cmd {
	return nil
}

func (m *promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	case Msg:
		if msg.kind == MsgBrowserOpened {
			data := msg.data.(struct {
				url string
				err error
			})
			if data.err != nil {
				m.status = styles.err.Render(fmt.Sprintf("Could not open %s: %v", data.url, data.err))
			} else {
				m.status = styles.help.Render("Opened " + data.url)
			}
		}
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.yes):
			m.answer, m.done = true, true
			return m, tea.Quit
		case key.Matches(msg, m.keys.no):
			m.answer, m.done = false, true
			return m, tea.Quit
		case key.Matches(msg, m.keys.open):
			return m, m.openCandidate()
		case key.Matches(msg, m.keys.quit):
			m.aborted, m.done = true, true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *promptModel) openCandidate() tea.Cmd {
	url := m.item.Job.Candidate.WatchURL()
	open := m.open
	return func() tea.Msg {
		return browserOpenedMsg(url, open(url))
	}
}

func (m *promptModel) View() string {
	if m.done {
		return m.renderAnswer()
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(fmt.Sprintf("Review #%d · %s", m.number, m.item.Job.Playlist)))
	b.WriteString("\n")
	b.WriteString(m.item.Prompt())
	b.WriteString("\n")
	b.WriteString(styles.link.Render(m.item.Job.Candidate.WatchURL()))
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

func (m *promptModel) renderAnswer() string {
	name := m.item.Job.Track.Name()
	switch {
	case m.aborted:
		return styles.warn.Render("Stopped reviewing") + "\n"
	case m.answer:
		return styles.ok.Render("✓ "+name) + "\n"
	default:
		return styles.help.Render("✗ "+name) + "\n"
	}
}
