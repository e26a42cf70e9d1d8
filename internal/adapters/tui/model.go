// Package tui provides the interactive terminal chat.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/PabloGalante/agronova/internal/app/conversation"
	"github.com/PabloGalante/agronova/internal/domain"
	"github.com/PabloGalante/agronova/internal/render"
)

type (
	turnMsg struct {
		result *conversation.TurnResult
		err    error
	}
)

// Model is the chat TUI state. The transcript itself lives in the session.
type Model struct {
	ctx       context.Context
	svc       *conversation.Service
	session   *domain.Session
	modelName string

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	loading bool
	pending string
	notice  string
	ready   bool

	width  int
	height int
}

// NewChatModel creates a chat bound to one session.
func NewChatModel(ctx context.Context, svc *conversation.Service, session *domain.Session, modelName string) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask about crops, pests, weather, soil, or sustainable farming..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	return Model{
		ctx:       ctx,
		svc:       svc,
		session:   session,
		modelName: modelName,
		textarea:  ta,
		spinner:   s,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 10
		if vpHeight < 5 {
			vpHeight = 5
		}
		contentWidth := m.width - 4

		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(contentWidth - 4)
		m.updateViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "enter":
			// Sending is disabled while a turn is in flight.
			if m.loading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			m.textarea.Reset()

			if strings.HasPrefix(input, "/") {
				return m.runCommand(input)
			}
			return m.startTurn(input)
		}

	case turnMsg:
		m.loading = false
		m.pending = ""
		m.notice = ""
		if msg.err != nil {
			m.notice = msg.err.Error()
		} else if msg.result.Failure != nil {
			m.notice = "model call failed: " + string(msg.result.Failure.Kind)
		}
		m.updateViewport()
		m.viewport.GotoBottom()

	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if !m.loading {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) startTurn(text string) (tea.Model, tea.Cmd) {
	m.loading = true
	m.pending = text
	m.notice = ""
	m.updateViewport()
	m.viewport.GotoBottom()

	return m, tea.Batch(m.submit(text), m.spinner.Tick)
}

func (m Model) submit(text string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.SubmitTurn(m.ctx, m.session, text)
		return turnMsg{result: res, err: err}
	}
}

// runCommand handles /help, /topics, /topic, /sample, /reset and /quit.
func (m Model) runCommand(input string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(input)
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch fields[0] {
	case "/quit", "/exit":
		return m, tea.Quit

	case "/reset":
		m.session.Reset()
		m.notice = "conversation cleared"

	case "/topics":
		m.notice = topicList(m.svc.Topics())

	case "/topic":
		if arg == "" || arg == "clear" {
			m.session.ClearTopic()
			m.notice = "topic cleared"
		} else {
			m.session.SelectTopic(domain.TopicID(arg))
			m.notice = "topic: " + arg
		}

	case "/sample":
		prompts := m.samplePrompts()
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > len(prompts) {
			m.notice = samplesList(prompts)
			break
		}
		// A sample prompt behaves exactly like typed input.
		return m.startTurn(prompts[n-1])

	default:
		m.notice = helpText
	}

	m.updateViewport()
	return m, nil
}

// samplePrompts returns the selected topic's prompts, or all of them.
func (m Model) samplePrompts() []string {
	selected, hasTopic := m.session.Topic()
	var all []string
	for _, t := range m.svc.Topics() {
		if hasTopic && t.ID == selected {
			return t.SamplePrompts
		}
		all = append(all, t.SamplePrompts...)
	}
	return all
}

func (m *Model) updateViewport() {
	if !m.ready {
		return
	}

	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6

	for _, msg := range m.session.Transcript() {
		if msg.Role == domain.RoleUser {
			content.WriteString(userLabelStyle.Render("● You") + "\n")
			content.WriteString(userBubbleStyle.Width(bubbleWidth).Render(msg.Content))
		} else {
			rendered, err := render.Markdown(msg.Content, "dark", bubbleWidth-4)
			if err != nil {
				rendered = msg.Content
			}
			content.WriteString(assistantLabelStyle.Render("🌾 AgroNova") + "\n")
			content.WriteString(assistantBubbleStyle.Width(bubbleWidth).Render(strings.TrimRight(rendered, "\n")))
		}
		content.WriteString("\n")
	}

	if m.pending != "" {
		content.WriteString(userLabelStyle.Render("● You") + "\n")
		content.WriteString(userBubbleStyle.Width(bubbleWidth).Render(m.pending) + "\n")
	}

	m.viewport.SetContent(content.String())
}

func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	contentWidth := m.width - 4

	header := titleStyle.Render("🌱 AgroNova") + hintStyle.Render("  •  ") + subtitleStyle.Render(m.modelName)
	if topic, ok := m.session.Topic(); ok {
		header += hintStyle.Render("  •  ") + topicStyle.Render(string(topic))
	}

	status := hintStyle.Render("enter send • /help commands • ctrl+c quit")
	if m.loading {
		status = m.spinner.View() + loadingStyle.Render(" Thinking...")
	} else if m.notice != "" {
		status = noticeStyle.Render(m.notice)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Width(contentWidth).Render(header),
		m.viewport.View(),
		inputStyle.Width(contentWidth).Render(m.textarea.View()),
		status,
	)
}

const helpText = "/topics list topics • /topic <id>|clear • /sample [n] • /reset • /quit"

func topicList(all []domain.Topic) string {
	ids := make([]string, 0, len(all))
	for _, t := range all {
		ids = append(ids, string(t.ID))
	}
	return "topics: " + strings.Join(ids, ", ")
}

func samplesList(prompts []string) string {
	var b strings.Builder
	for i, p := range prompts {
		if i > 0 {
			b.WriteString(" | ")
		}
		fmt.Fprintf(&b, "%d. %s", i+1, p)
	}
	return b.String()
}

// Run starts the chat TUI in the alternate screen.
func Run(ctx context.Context, svc *conversation.Service, session *domain.Session, modelName string) error {
	p := tea.NewProgram(
		NewChatModel(ctx, svc, session, modelName),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}
