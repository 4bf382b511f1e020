// Package tui is the interactive chat program.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	downloadkb "kb-chat/internal/actions/download-kb"
	"kb-chat/internal/common/errors"
	"kb-chat/internal/models"
	"kb-chat/internal/render"
	"kb-chat/internal/session"
)

// Service is what the chat screen drives; *chat.Service implements it.
type Service interface {
	Session() *session.Session
	Ask(ctx context.Context, question string) ([]models.Turn, error)
	Upload(ctx context.Context, paths ...string) (models.Turn, error)
	Reindex(ctx context.Context) (models.Turn, error)
	DownloadKB(ctx context.Context, input *downloadkb.Input) (*downloadkb.Output, error)
	Attach(ctx context.Context, paths ...string) []string
	Detach(ctx context.Context, path string) bool
	Reset(ctx context.Context) error
}

type turnsMsg struct{ turns []models.Turn }
type actionErrMsg struct{ err error }

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7a8699"))
	busyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107"))
)

type Model struct {
	ctx      context.Context
	svc      Service
	renderer *render.Renderer

	input    textinput.Model
	spin     spinner.Model
	viewport viewport.Model

	turns     []models.Turn
	echoed    int // local turns shown until the service result replaces them
	busy      bool
	busyLabel string
	status    string
	width     int
	height    int
	quitting  bool
}

func New(ctx context.Context, svc Service, renderer *render.Renderer) Model {
	in := textinput.New()
	in.Placeholder = "Ask about your documents, or /help"
	in.Prompt = "> "
	in.CharLimit = 0
	in.Width = 60
	in.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = busyStyle

	vp := viewport.New(80, 20)

	m := Model{
		ctx:      ctx,
		svc:      svc,
		renderer: renderer,
		input:    in,
		spin:     s,
		viewport: vp,
		turns:    svc.Session().Transcript(),
		status:   fmt.Sprintf("session %s", svc.Session().ID()),
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-4, 10)
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-4, 3)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		case tea.KeyEnter:
			if m.busy {
				return m, nil
			}
			line := m.input.Value()
			m.input.SetValue("")
			return m.handleLine(line)
		}

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case turnsMsg:
		m.finish()
		m.turns = append(m.turns, msg.turns...)
		m.refresh()
		return m, nil

	case actionErrMsg:
		m.finish()
		m.refresh()
		m.status = errorStatus(msg.err)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleLine(line string) (tea.Model, tea.Cmd) {
	cmd := ParseCommand(line)
	switch cmd.Kind {
	case CmdAsk:
		if cmd.Text == "" {
			return m, nil
		}
		q := cmd.Text
		m.turns = append(m.turns, models.NewTurn(models.RoleUser, q))
		m.echoed = 1
		m.refresh()
		return m.start("Asking…", func(ctx context.Context) tea.Msg {
			turns, err := m.svc.Ask(ctx, q)
			if err != nil {
				return actionErrMsg{err}
			}
			return turnsMsg{turns}
		})

	case CmdAttach:
		if len(cmd.Args) == 0 {
			m.status = "usage: /attach <paths...>"
			return m, nil
		}
		selected := m.svc.Attach(m.ctx, cmd.Args...)
		m.status = fmt.Sprintf("%d file(s) selected", len(selected))
		return m, nil

	case CmdDetach:
		if len(cmd.Args) != 1 {
			m.status = "usage: /detach <path>"
			return m, nil
		}
		if m.svc.Detach(m.ctx, cmd.Args[0]) {
			m.status = "removed " + cmd.Args[0]
		} else {
			m.status = cmd.Args[0] + " is not selected"
		}
		return m, nil

	case CmdFiles:
		m.addLocal(filesText(m.svc.Session().SelectedFiles()))
		return m, nil

	case CmdUpload:
		paths := cmd.Args
		return m.start("Uploading…", func(ctx context.Context) tea.Msg {
			turn, err := m.svc.Upload(ctx, paths...)
			if err != nil {
				return actionErrMsg{err}
			}
			return turnsMsg{[]models.Turn{turn}}
		})

	case CmdReindex:
		return m.start("Reindexing…", func(ctx context.Context) tea.Msg {
			turn, err := m.svc.Reindex(ctx)
			if err != nil {
				return actionErrMsg{err}
			}
			return turnsMsg{[]models.Turn{turn}}
		})

	case CmdKB:
		if len(cmd.Args) == 0 {
			m.status = "usage: /kb <name|id>"
			return m, nil
		}
		name := strings.Join(cmd.Args, " ")
		return m.start("Downloading KB…", func(ctx context.Context) tea.Msg {
			out, err := m.svc.DownloadKB(ctx, &downloadkb.Input{Name: name, Mode: downloadkb.ModeBackend})
			if out != nil {
				return turnsMsg{[]models.Turn{out.Turn}}
			}
			return actionErrMsg{err}
		})

	case CmdReset:
		if err := m.svc.Reset(m.ctx); err != nil {
			m.status = errorStatus(err)
		} else {
			m.status = "new conversation"
		}
		m.turns = nil
		m.refresh()
		return m, nil

	case CmdHelp:
		m.addLocal(HelpText)
		return m, nil

	case CmdQuit:
		m.quitting = true
		return m, tea.Quit

	default:
		m.status = fmt.Sprintf("unknown command %s, try /help", cmd.Name)
		return m, nil
	}
}

// start disables input and runs fn off the UI goroutine.
func (m Model) start(label string, fn func(ctx context.Context) tea.Msg) (tea.Model, tea.Cmd) {
	m.busy = true
	m.busyLabel = label
	m.status = ""
	m.input.Blur()
	ctx := m.ctx
	return m, tea.Batch(m.spin.Tick, func() tea.Msg { return fn(ctx) })
}

func (m *Model) finish() {
	m.turns = m.turns[:len(m.turns)-m.echoed]
	m.echoed = 0
	m.busy = false
	m.busyLabel = ""
	m.input.Focus()
}

func (m *Model) addLocal(text string) {
	m.turns = append(m.turns, models.NewTurn(models.RoleSystem, text))
	m.refresh()
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderer.Transcript(m.turns))
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if m.busy {
		b.WriteString(m.spin.View() + " " + busyStyle.Render(m.busyLabel))
	} else {
		b.WriteString(m.input.View())
	}
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.status))
	return b.String()
}

// Busy reports whether a request is in flight.
func (m Model) Busy() bool {
	return m.busy
}

func (m Model) Turns() []models.Turn {
	return m.turns
}

func (m Model) Status() string {
	return m.status
}

func filesText(files []string) string {
	if len(files) == 0 {
		return "No files selected."
	}
	return "Selected files:\n  " + strings.Join(files, "\n  ")
}

func errorStatus(err error) string {
	if stdErr, ok := errors.AsStandard(err); ok {
		if stdErr.Code == errors.ErrCodeControlBusy {
			return stdErr.Message
		}
		return stdErr.Error()
	}
	return err.Error()
}

// Run starts the program on the terminal's alternate screen.
func Run(ctx context.Context, svc Service, renderer *render.Renderer) error {
	p := tea.NewProgram(New(ctx, svc, renderer), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
