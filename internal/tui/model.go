package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pascalhuerten/moodle-rag/internal/core/domain"
)

// ChatPort is the TUI-facing subset of the chat API.
type ChatPort interface {
	Chat(ctx context.Context, req domain.ChatRequest) (string, error)
}

// exchange is one question and its answer
type exchange struct {
	question string
	answer   string
	err      error
}

// answerMsg carries the result of an asynchronous chat call
type answerMsg struct {
	question string
	answer   string
	err      error
}

// Model is the Bubble Tea model for the chat client.
type Model struct {
	chat        ChatPort
	input       textinput.Model
	viewport    viewport.Model
	history     []exchange
	courseID    string
	userContext string
	status      string
	waiting     bool
	ready       bool
}

// New creates a chat model. courseID and userContext are sent with every message
// until changed with /course or /context.
func New(chat ChatPort, courseID, userContext string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Frage eingeben und Enter drücken"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		chat:        chat,
		input:       ti,
		viewport:    vp,
		courseID:    courseID,
		userContext: userContext,
		status:      "Connected. /course <id>, /context <text>, /clear",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and answer events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, hh := historyBoxStyle.GetFrameSize()
		_, qh := inputBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header + scope, status, spacer
		vh := msg.Height - reserved - hh
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh)
		m.refresh()
		return m, nil

	case answerMsg:
		m.waiting = false
		m.history = append(m.history, exchange(msg))
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
		} else {
			m.status = "Ready."
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			line := strings.TrimSpace(m.input.Value())
			if line == "" || m.waiting {
				return m, nil
			}
			m.input.SetValue("")
			if strings.HasPrefix(line, "/") {
				m.command(line)
				m.refresh()
				return m, nil
			}
			m.waiting = true
			m.status = "Thinking..."
			return m, m.ask(line)
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the header, conversation, input and status line.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Moodle RAG Chat")
	scope := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.scopeLine())
	history := historyBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	return header + "\n" + scope + "\n" + history + "\n" + input + "\n" + status
}

// ask sends the question in the background
func (m Model) ask(question string) tea.Cmd {
	req := domain.ChatRequest{
		Message:     question,
		CourseID:    m.courseID,
		UserContext: m.userContext,
	}
	chat := m.chat
	return func() tea.Msg {
		answer, err := chat.Chat(context.Background(), req)
		return answerMsg{question: question, answer: answer, err: err}
	}
}

// command applies a slash command
func (m *Model) command(line string) {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "/course":
		m.courseID = arg
		if arg == "" {
			m.status = "Course cleared."
		} else {
			m.status = "Course set to " + arg + "."
		}
	case "/context":
		m.userContext = arg
		m.status = "User context updated."
	case "/clear":
		m.history = nil
		m.status = "History cleared."
	default:
		m.status = fmt.Sprintf("Unknown command %s", name)
	}
}

func (m Model) scopeLine() string {
	course := m.courseID
	if course == "" {
		course = "-"
	}
	userContext := m.userContext
	if userContext == "" {
		userContext = domain.DefaultUserContext
	}
	return fmt.Sprintf("course: %s  context: %s", course, userContext)
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}

func (m Model) renderHistory() string {
	if len(m.history) == 0 {
		return "No messages yet."
	}
	var b strings.Builder
	for i, ex := range m.history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(questionStyle.Render("Du: " + ex.question))
		b.WriteString("\n")
		if ex.err != nil {
			b.WriteString(errorStyle.Render("Fehler: " + ex.err.Error()))
			continue
		}
		b.WriteString(ex.answer)
	}
	return b.String()
}

var (
	historyBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	questionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)
