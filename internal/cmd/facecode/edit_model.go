package facecode

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/louisbranch/warband-face/internal/services/editor/facecode"
	"github.com/louisbranch/warband-face/internal/services/editor/syncengine"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// bigStep moves wide fields (hair, beard, age, skin tone, reserved) faster.
const bigStep = 8

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB")).
			Width(14)

	codeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98")).
			Bold(true)

	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
)

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Dec     key.Binding
	Inc     key.Binding
	BigDec  key.Binding
	BigInc  key.Binding
	Import  key.Binding
	Help    key.Binding
	Quit    key.Binding
	Confirm key.Binding
	Cancel  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "previous field")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next field")),
		Dec:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "decrease")),
		Inc:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "increase")),
		BigDec:  key.NewBinding(key.WithKeys("pgdown", "H"), key.WithHelp("pgdn/H", "decrease by 8")),
		BigInc:  key.NewBinding(key.WithKeys("pgup", "L"), key.WithHelp("pgup/L", "increase by 8")),
		Import:  key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "import code")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply code")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Dec, k.Inc, k.Import, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Dec, k.Inc, k.BigDec, k.BigInc},
		{k.Import, k.Help, k.Quit},
	}
}

// notificationQueue buffers engine notifications so the engine never waits
// on the UI loop.
type notificationQueue struct {
	mu      sync.Mutex
	pending []syncengine.Notification
	ready   chan struct{}
}

func newNotificationQueue() *notificationQueue {
	return &notificationQueue{ready: make(chan struct{}, 1)}
}

func (q *notificationQueue) Notify(n syncengine.Notification) {
	q.mu.Lock()
	q.pending = append(q.pending, n)
	q.mu.Unlock()
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *notificationQueue) drain() []syncengine.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.pending
	q.pending = nil
	return out
}

type notificationsMsg []syncengine.Notification

func (q *notificationQueue) wait() tea.Cmd {
	return func() tea.Msg {
		<-q.ready
		return notificationsMsg(q.drain())
	}
}

type editModel struct {
	engine *syncengine.Engine
	queue  *notificationQueue
	fields []facecode.FieldSpec
	labels map[string]string

	// values mirror the visual updates received so far.
	values  map[string]int
	code    facecode.Code
	lastErr string
	cursor  int

	importing bool
	input     textinput.Model
	keys      keyMap
	help      help.Model
	bar       progress.Model
}

func newEditModel(codec *facecode.Codec, hex string, opts syncengine.Options) (*editModel, error) {
	queue := newNotificationQueue()
	var (
		engine *syncengine.Engine
		err    error
	)
	if hex == "" {
		engine = syncengine.New(codec, queue, opts)
	} else {
		code, parseErr := codec.Validate(hex)
		if parseErr != nil {
			return nil, parseErr
		}
		engine, err = syncengine.NewFromCode(codec, code, queue, opts)
		if err != nil {
			return nil, err
		}
	}
	params, code, err := engine.Snapshot()
	if err != nil {
		_ = engine.Close()
		return nil, err
	}

	title := cases.Title(language.English)
	fields := codec.Layout().Fields()
	labels := make(map[string]string, len(fields))
	for _, f := range fields {
		labels[f.Name] = title.String(strings.ReplaceAll(f.Name, "_", " "))
	}

	input := textinput.New()
	input.Placeholder = "0x0000000000000000"
	input.Prompt = "code: "
	input.CharLimit = 18
	input.Width = 20

	return &editModel{
		engine: engine,
		queue:  queue,
		fields: fields,
		labels: labels,
		values: params,
		code:   code,
		input:  input,
		keys:   newKeyMap(),
		help:   help.New(),
		bar: progress.New(
			progress.WithSolidFill("#7D56F4"),
			progress.WithWidth(24),
			progress.WithoutPercentage(),
		),
	}, nil
}

func (m *editModel) Init() tea.Cmd {
	return m.queue.wait()
}

func (m *editModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case notificationsMsg:
		m.apply(msg)
		return m, m.queue.wait()
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if m.importing {
			return m.updateImport(msg)
		}
		return m.updateSliders(msg)
	}
	return m, nil
}

func (m *editModel) updateSliders(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.cursor = (m.cursor + len(m.fields) - 1) % len(m.fields)
	case key.Matches(msg, m.keys.Down):
		m.cursor = (m.cursor + 1) % len(m.fields)
	case key.Matches(msg, m.keys.Dec):
		m.nudge(-1)
	case key.Matches(msg, m.keys.Inc):
		m.nudge(1)
	case key.Matches(msg, m.keys.BigDec):
		m.nudge(-bigStep)
	case key.Matches(msg, m.keys.BigInc):
		m.nudge(bigStep)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Import):
		m.importing = true
		m.input.SetValue("")
		return m, m.input.Focus()
	}
	return m, nil
}

func (m *editModel) updateImport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.importing = false
		m.input.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		m.importing = false
		m.input.Blur()
		// Failures arrive as error notifications.
		_ = m.engine.ImportCode(m.input.Value())
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// nudge asks the engine to move the selected field; the engine rejects
// values outside the field's range.
func (m *editModel) nudge(delta int) {
	f := m.fields[m.cursor]
	_ = m.engine.ApplyEdit(f.Name, m.values[f.Name]+delta)
}

func (m *editModel) apply(batch []syncengine.Notification) {
	for _, n := range batch {
		switch n.Kind {
		case syncengine.KindVisualUpdate:
			m.values[n.Field] = n.Value
			m.lastErr = ""
		case syncengine.KindCodeUpdate:
			m.code = n.Code
		case syncengine.KindError:
			m.lastErr = fmt.Sprintf("%s: %v", n.ErrorCode, n.Err)
		}
	}
}

func (m *editModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Warband face editor"))
	b.WriteString("\n\n")

	for i, f := range m.fields {
		value := m.values[f.Name]
		cursor := "  "
		label := labelStyle.Render(m.labels[f.Name])
		if i == m.cursor {
			cursor = selectedStyle.Render("> ")
		}
		fill := 0.0
		if f.Max > f.Min {
			fill = float64(value-f.Min) / float64(f.Max-f.Min)
		}
		fmt.Fprintf(&b, "%s%s %s %d/%d\n", cursor, label, m.bar.ViewAs(fill), value, f.Max)
	}

	b.WriteString("\n")
	b.WriteString("Face code: " + codeStyle.Render(m.code.String()))
	if m.engine.Status() == syncengine.StatusPendingRegen {
		b.WriteString(pendingStyle.Render("  updating"))
	}
	b.WriteString("\n")
	if m.importing {
		b.WriteString(m.input.View() + "\n")
	}
	if m.lastErr != "" {
		b.WriteString(errorStyle.Render(m.lastErr) + "\n")
	}
	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}
