package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/crime-scene/pkg/game"
)

const PlaceHolderText = "What do you do?"

// uiMode selects what the input box means right now.
type uiMode int

const (
	modeCommand      uiMode = iota // free-form instruction, it is our turn
	modeConversation               // a dialog awaits our next line
	modeWatching                   // an agent plays; input disabled
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config        *ConsoleConfig
	client        *http.Client
	session       *game.Session
	me            *game.Character
	transcriptVp  viewport.Model
	metaVp        viewport.Model
	textarea      textarea.Model
	mode          uiMode
	ready         bool
	width         int
	height        int
	err           error
	loading       bool
	statusNote    string
	showQuitModal bool
	accusation    textarea.Model
}

type actionMsg struct {
	resp *ActionResponse
	err  error
}

type agentTickMsg struct{}

type sessionEndedMsg struct{ err error }

var (
	transcriptPanelStyle = lipgloss.NewStyle().
				PaddingTop(1).
				PaddingBottom(1).
				PaddingLeft(3)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	titleCaser = cases.Title(language.English)
)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client, sess *game.Session, me *game.Character) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 500
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	acc := textarea.New()
	acc.Placeholder = "Your final accusation (optional)"
	acc.CharLimit = 500
	acc.SetWidth(50)
	acc.SetHeight(3)
	acc.ShowLineNumbers = false

	transcriptVp := viewport.New(50, 20)
	transcriptVp.MouseWheelEnabled = true

	ui := ConsoleUI{
		config:       cfg,
		client:       client,
		session:      sess,
		me:           me,
		textarea:     ta,
		accusation:   acc,
		transcriptVp: transcriptVp,
		metaVp:       viewport.New(20, 20),
	}
	ui.mode = ui.modeForSession(nil)
	return ui
}

// modeForSession derives the input mode from the latest session state
// and action result.
func (m *ConsoleUI) modeForSession(res *game.Result) uiMode {
	if res != nil && res.Kind == game.ResultAwaitingLine && res.AwaitingSpeaker == m.me.Name {
		return modeConversation
	}
	if m.session.Conversation != nil && m.session.Conversation.Speaker() == m.me.Name {
		return modeConversation
	}
	if m.session.Conversation == nil && m.session.CurrentCharacter().Name == m.me.Name {
		return modeCommand
	}
	return modeWatching
}

func (m ConsoleUI) Init() tea.Cmd {
	if m.mode == modeWatching {
		return agentTick()
	}
	return textarea.Blink
}

func agentTick() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(time.Time) tea.Msg {
		return agentTickMsg{}
	})
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.transcriptVp, vpCmd = m.transcriptVp.Update(msg)
		return m, vpCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		transcriptWidth := int(float64(m.width)*0.72) - 4
		metaWidth := m.width - transcriptWidth - 6

		m.transcriptVp.Width = transcriptWidth - 2
		m.transcriptVp.Height = m.height - 7
		m.metaVp.Width = metaWidth - 2
		m.metaVp.Height = m.height - 4
		m.textarea.SetWidth(transcriptWidth - 4)

		m.ready = true
		m.writeTranscript()
		m.metaVp.SetContent(m.writeMetadata())

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			m.accusation.Focus()
			return m, nil

		case tea.KeyCtrlY:
			if err := clipboard.WriteAll(strings.Join(m.myLog(), "\n")); err != nil {
				m.statusNote = "Copy failed: " + err.Error()
			} else {
				m.statusNote = "Transcript copied to clipboard"
			}
			m.writeTranscript()
			return m, nil

		case tea.KeyEnter:
			if m.loading || m.mode == modeWatching {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}

			m.textarea.Reset()
			m.loading = true
			m.statusNote = ""
			m.writeTranscript()

			if m.mode == modeConversation {
				return m, m.sendConversationLine(input)
			}
			return m, m.sendCommand(input)
		}

	case actionMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			if msg.resp.Session != nil {
				m.session = msg.resp.Session
			}
			m.handleResult(msg.resp.Result)
			m.mode = m.modeForSession(&msg.resp.Result)
		}
		m.writeTranscript()
		m.metaVp.SetContent(m.writeMetadata())
		m.transcriptVp.GotoBottom()
		if m.mode == modeWatching {
			return m, agentTick()
		}
		return m, nil

	case agentTickMsg:
		if m.mode == modeWatching && !m.loading {
			m.loading = true
			m.writeTranscript()
			return m, m.stepAgent()
		}

	case sessionEndedMsg:
		return m, tea.Quit
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.transcriptVp, vpCmd = m.transcriptVp.Update(msg)
	m.metaVp, mvCmd = m.metaVp.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc:
			m.showQuitModal = false
			m.accusation.Reset()
			return m, nil
		case tea.KeyEnter:
			accusation := strings.TrimSpace(m.accusation.Value())
			return m, m.endSession(accusation)
		}
	}
	var cmd tea.Cmd
	m.accusation, cmd = m.accusation.Update(msg)
	return m, cmd
}

// handleResult folds a non-broadcast result payload into the status
// line, so validation feedback (valid locations, evidence lists) is
// visible even though it never touches the transcript.
func (m *ConsoleUI) handleResult(res game.Result) {
	switch res.Kind {
	case game.ResultSuccess, game.ResultAwaitingLine:
		if res.EvidenceInfo != "" {
			m.statusNote = fmt.Sprintf("%s: %s", res.Evidence, res.EvidenceInfo)
		}
	default:
		m.statusNote = res.Message
	}
}

func (m *ConsoleUI) myLog() []string {
	if p, ok := m.session.Players[m.me.Name]; ok {
		return p.Log
	}
	return nil
}

func (m *ConsoleUI) writeTranscript() {
	width := m.transcriptVp.Width - 6
	if width < 20 {
		width = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("CRIME SCENE") + "\n\n")
	content.WriteString(fmt.Sprintf("Playing as %s in %s.\n\n", speakerStyle.Render(m.me.Name), titleCaser.String(m.session.StoryName)))
	if m.me.Backstory != "" {
		content.WriteString(userStyle.Render("What only you know:") + "\n")
		content.WriteString(wordwrap.String(m.me.Backstory, width) + "\n\n")
	}
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")

	for _, line := range m.myLog() {
		content.WriteString(formatTranscriptLine(line, width) + "\n")
	}

	if m.statusNote != "" {
		content.WriteString("\n" + eventStyle.Render(wordwrap.String(m.statusNote, width)) + "\n")
	}
	if m.err != nil {
		content.WriteString("\n" + errorStyle.Render("Error: "+m.err.Error()) + "\n")
	}
	if m.loading {
		content.WriteString("\n" + loadingStyle.Render("...") + "\n")
	}

	m.transcriptVp.SetContent(content.String())
	m.transcriptVp.GotoBottom()
}

// formatTranscriptLine styles spoken lines ("Name: text") differently
// from narrated event lines.
func formatTranscriptLine(line string, width int) string {
	if idx := strings.Index(line, ": "); idx > 0 && idx <= 24 && !strings.Contains(line[:idx], " ") {
		speaker := line[:idx]
		return speakerStyle.Render(speaker+":") + " " + wordwrap.String(line[idx+2:], width-len(speaker)-2)
	}
	return eventStyle.Render(wordwrap.String(line, width))
}

func (m *ConsoleUI) writeMetadata() string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("GAME STATE") + "\n\n")

	content.WriteString("Session:\n")
	content.WriteString(shortID(m.session.ID) + "\n\n")

	content.WriteString("Turn:\n")
	current := m.session.CurrentCharacter().Name
	content.WriteString(fmt.Sprintf("%d (%s)\n\n", m.session.Turn, current))

	if p, ok := m.session.Players[m.me.Name]; ok {
		content.WriteString("Your location:\n")
		content.WriteString(p.Location + "\n\n")

		content.WriteString("Also here:\n")
		content.WriteString(listOrNone(p.Colocated) + "\n\n")

		content.WriteString("Evidence here:\n")
		content.WriteString(listOrNone(p.Evidence) + "\n\n")
	}

	if c := m.session.Conversation; c != nil {
		content.WriteString("Conversation:\n")
		content.WriteString(fmt.Sprintf("%s ↔ %s (round %d)\n\n", c.From, c.To, c.Round))
	}

	content.WriteString("Commands:\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• Ctrl+Y: Copy log\n")
	content.WriteString("• Ctrl+C: Quit\n")

	return content.String()
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

func shortID(id string) string {
	if len(id) > 20 {
		return id[:20] + "..."
	}
	return id
}

func (m ConsoleUI) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.showQuitModal {
		modal := modalStyle.Render(
			titleStyle.Render("END GAME") + "\n\n" +
				"Type your final accusation and press Enter,\nor press Esc to keep playing.\n\n" +
				m.accusation.View())
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
	}

	var inputView string
	switch m.mode {
	case modeConversation:
		prompt := promptStyle.Render("Your line in the conversation:")
		inputView = prompt + "\n" + m.textarea.View()
	case modeCommand:
		prompt := userStyle.Render("Your turn. What do you do?")
		inputView = prompt + "\n" + m.textarea.View()
	default:
		inputView = promptStyle.Render(fmt.Sprintf("Waiting for %s...", m.session.CurrentCharacter().Name))
	}

	transcript := transcriptPanelStyle.Render(m.transcriptVp.View() + "\n\n" + inputView)
	meta := metaPanelStyle.Render(m.metaVp.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, transcript, meta)
}

func (m *ConsoleUI) sendCommand(input string) tea.Cmd {
	return func() tea.Msg {
		resp, err := sendCommand(m.client, m.config.APIBaseURL, m.session.ID, m.me.Name, input)
		return actionMsg{resp: resp, err: err}
	}
}

func (m *ConsoleUI) sendConversationLine(line string) tea.Cmd {
	return func() tea.Msg {
		resp, err := sendLine(m.client, m.config.APIBaseURL, m.session.ID, line)
		return actionMsg{resp: resp, err: err}
	}
}

func (m *ConsoleUI) stepAgent() tea.Cmd {
	return func() tea.Msg {
		resp, err := stepAgent(m.client, m.config.APIBaseURL, m.session.ID)
		return actionMsg{resp: resp, err: err}
	}
}

func (m *ConsoleUI) endSession(accusation string) tea.Cmd {
	return func() tea.Msg {
		accusations := map[string]string{}
		if accusation != "" {
			accusations[m.me.Name] = accusation
		}
		err := endSession(m.client, m.config.APIBaseURL, m.session.ID, accusations)
		return sessionEndedMsg{err: err}
	}
}
