package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	orchestration "github.com/koscakluka/sonic-core/core"
	"github.com/koscakluka/sonic-core/core/audio"
	"github.com/koscakluka/sonic-core/core/audio/miniaudio"
	"github.com/koscakluka/sonic-core/core/tools"
	"github.com/koscakluka/sonic-core/core/transport/websocket"
)

var voices = []string{"tiffany", "matthew", "amy"}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type phase int

const (
	phaseMenu phase = iota
	phaseConnecting
	phaseChat
	phaseDone
)

type transcriptMsg struct {
	role string
	text string
}

type connectedMsg struct{}

type endedMsg struct{ err error }

type model struct {
	phase        phase
	cursor       int
	width        int
	spinner      spinner.Model
	view         viewport.Model
	lines        []string
	err          error
	conversation *conversation
}

func newModel() model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return model{
		phase:   phaseMenu,
		spinner: s,
		view:    viewport.New(80, 20),
		width:   80,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.view.Width = msg.Width
		m.view.Height = msg.Height - 4
		return m, nil

	case tea.KeyMsg:
		switch m.phase {
		case phaseMenu:
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "up", "k":
				if m.cursor > 0 {
					m.cursor--
				}
			case "down", "j":
				if m.cursor < len(voices)-1 {
					m.cursor++
				}
			case "enter":
				m.phase = phaseConnecting
				m.conversation = newConversation(voices[m.cursor])
				return m, tea.Batch(m.spinner.Tick, m.conversation.start(), m.conversation.nextEvent())
			}
		case phaseChat, phaseConnecting:
			switch msg.String() {
			case "ctrl+c", "enter", "q":
				m.conversation.stop()
				return m, nil
			}
		case phaseDone:
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case connectedMsg:
		m.phase = phaseChat
		return m, m.conversation.nextEvent()

	case transcriptMsg:
		style := userStyle
		speaker := "you"
		if msg.role == "ASSISTANT" {
			style = assistantStyle
			speaker = "assistant"
		}
		line := style.Render(speaker+":") + " " + msg.text
		m.lines = append(m.lines, wordwrap.String(line, m.width))
		m.view.SetContent(strings.Join(m.lines, "\n"))
		m.view.GotoBottom()
		return m, m.conversation.nextEvent()

	case endedMsg:
		m.phase = phaseDone
		m.err = msg.err
		return m, tea.Quit
	}

	return m, nil
}

func (m model) View() string {
	switch m.phase {
	case phaseMenu:
		b := strings.Builder{}
		b.WriteString(titleStyle.Render("Pick a voice") + "\n\n")
		for i, voice := range voices {
			if i == m.cursor {
				b.WriteString(selectedStyle.Render("> "+voice) + "\n")
			} else {
				b.WriteString("  " + voice + "\n")
			}
		}
		b.WriteString("\n" + helpStyle.Render("up/down to choose, enter to talk, q to quit"))
		return b.String()

	case phaseConnecting:
		return m.spinner.View() + " connecting..."

	case phaseChat:
		return titleStyle.Render("Talking - press enter to hang up") + "\n" + m.view.View()

	case phaseDone:
		if m.err != nil {
			return errorStyle.Render("conversation failed: "+m.err.Error()) + "\n"
		}
		return "Conversation ended.\n"
	}
	return ""
}

// conversation owns the audio devices and the orchestrator for one call
// and bridges orchestrator callbacks into tea messages.
type conversation struct {
	voice  string
	events chan tea.Msg

	orchestrator *orchestration.Orchestrator
	stopFunc     func()
}

func newConversation(voice string) *conversation {
	return &conversation{voice: voice, events: make(chan tea.Msg, 64)}
}

func (c *conversation) nextEvent() tea.Cmd {
	return func() tea.Msg { return <-c.events }
}

func (c *conversation) stop() {
	if c.stopFunc != nil {
		c.stopFunc()
	}
}

func (c *conversation) start() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		stream, err := websocket.Dial(ctx)
		if err != nil {
			return endedMsg{err: err}
		}

		client, err := miniaudio.NewClient()
		if err != nil {
			_ = stream.Close()
			return endedMsg{err: err}
		}
		capture, err := client.NewCapture(audio.DefaultChunkFrames)
		if err != nil {
			_ = client.Close()
			_ = stream.Close()
			return endedMsg{err: err}
		}
		playback, err := client.NewPlayback()
		if err != nil {
			_ = capture.Close()
			_ = client.Close()
			_ = stream.Close()
			return endedMsg{err: err}
		}

		clock, err := tools.New("current_time",
			"Returns the current local time of the user.",
			func(struct{}) (string, error) {
				return time.Now().Format(time.RFC1123), nil
			})
		if err != nil {
			return endedMsg{err: fmt.Errorf("failed to build clock tool: %w", err)}
		}

		c.orchestrator = orchestration.NewOrchestrator(stream,
			orchestration.WithVoice(c.voice),
			orchestration.WithCaptureDevice(capture),
			orchestration.WithPlaybackDevice(playback),
			orchestration.WithTool(clock),
		)
		c.stopFunc = c.orchestrator.Stop

		go func() {
			defer client.Close()
			err := c.orchestrator.Run(ctx,
				orchestration.OnSessionStarted(func(string) {
					c.events <- connectedMsg{}
				}),
				orchestration.OnTranscript(func(role, text string) {
					c.events <- transcriptMsg{role: role, text: text}
				}),
			)
			c.events <- endedMsg{err: err}
		}()

		return nil
	}
}
