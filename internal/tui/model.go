// Package tui provides the Bubble Tea counter interface.
package tui

import (
	"context"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tapcount/internal/config"
	"github.com/verte-zerg/tapcount/internal/engine"
	"github.com/verte-zerg/tapcount/internal/log"
	"github.com/verte-zerg/tapcount/internal/model"
)

type inputMode int

const (
	modeNormal inputMode = iota
	modeGoal
	modeStep
	modeConfirmReset
)

const (
	pulseDuration  = 150 * time.Millisecond
	noticeLifetime = 3 * time.Second
	clockInterval  = time.Second
	maxNotices     = 3
)

type (
	timerMsg         engine.TimerEvent
	clockMsg         time.Time
	pulseEndMsg      struct{ id uint64 }
	noticeExpiredMsg struct{ id uint64 }
)

type notice struct {
	id   uint64
	text string
}

// Store is the persistence the counter screen needs.
type Store interface {
	engine.Persistence
	SaveTheme(ctx context.Context, name string) error
}

// Model implements the Bubble Tea counter UI. It is also the engine's Sink
// and Scheduler, so everything the engine renders or schedules ends up in
// the next View or the next batch of commands.
type Model struct {
	engine   *engine.Engine
	store    Store
	settings model.Settings

	keys   KeyMap
	help   help.Model
	input  textinput.Model
	mode   inputMode
	theme  Theme
	styles styles
	bell   io.Writer

	width  int
	height int

	snap         engine.Snapshot
	history      []model.HistoryEntry
	achievements []string
	goal         *model.Goal
	gameStatus   string

	pulsing  bool
	pulseID  uint64
	notices  []notice
	noticeID uint64

	pending []tea.Cmd
}

// NewModel constructs the counter model and starts a session, restoring
// saved data when st has any. st may be nil.
func NewModel(settings model.Settings, st Store, opts ...engine.Option) *Model {
	if settings.Step == 0 {
		settings.Step = 1
	}
	m := &Model{
		store:    st,
		settings: settings,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		input:    newInput(),
		bell:     os.Stdout,
	}
	m.applyTheme(settings.Theme)

	engineOpts := []engine.Option{engine.WithScheduler(engine.SchedulerFunc(m.after))}
	if st != nil {
		engineOpts = append(engineOpts, engine.WithPersistence(st))
	}
	engineOpts = append(engineOpts, opts...)
	m.engine = engine.New(m, engineOpts...)
	if err := m.engine.Start(context.Background()); err != nil {
		log.ErrorErr(log.CatUI, "failed to restore saved data", err)
	}
	return m
}

func newInput() textinput.Model {
	input := textinput.New()
	input.CharLimit = 12
	input.Width = 14
	return input
}

// Engine exposes the underlying game engine.
func (m *Model) Engine() *engine.Engine {
	return m.engine
}

// Settings returns the current settings, including toggles changed in the UI.
func (m *Model) Settings() model.Settings {
	return m.settings
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(clockTick(), m.flush())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case timerMsg:
		m.engine.Fire(engine.TimerEvent(msg))
		return m, m.flush()
	case clockMsg:
		m.snap = m.engine.Snapshot()
		return m, tea.Batch(clockTick(), m.flush())
	case pulseEndMsg:
		if msg.id == m.pulseID {
			m.pulsing = false
		}
		return m, nil
	case noticeExpiredMsg:
		m.dropNotice(msg.id)
		return m, nil
	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		return m, tea.Batch(cmd, m.flush())
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return tea.Quit
	}
	switch m.mode {
	case modeGoal, modeStep:
		return m.handleInputKey(msg)
	case modeConfirmReset:
		m.handleConfirmKey(msg)
		return nil
	}

	ctx := context.Background()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Increase):
		m.engine.Increase(m.settings.Step, model.ActionKeyboard)
	case key.Matches(msg, m.keys.Decrease):
		m.engine.Decrease(m.settings.Step, model.ActionKeyboard)
	case key.Matches(msg, m.keys.Reset):
		m.engine.Reset()
	case key.Matches(msg, m.keys.Plus10):
		m.engine.ApplyDelta(10, model.ActionQuick)
	case key.Matches(msg, m.keys.Plus100):
		m.engine.ApplyDelta(100, model.ActionQuick)
	case key.Matches(msg, m.keys.Minus10):
		m.engine.ApplyDelta(-10, model.ActionQuick)
	case key.Matches(msg, m.keys.Minus100):
		m.engine.ApplyDelta(-100, model.ActionQuick)
	case key.Matches(msg, m.keys.Goal):
		return m.beginInput(modeGoal, "Goal: ", "target")
	case key.Matches(msg, m.keys.Step):
		return m.beginInput(modeStep, "Step: ", strconv.Itoa(m.settings.Step))
	case key.Matches(msg, m.keys.Challenge):
		m.engine.StartChallenge()
	case key.Matches(msg, m.keys.Speed):
		m.engine.StartSpeedTest()
	case key.Matches(msg, m.keys.Precision):
		m.engine.StartPrecisionTest()
	case key.Matches(msg, m.keys.Save):
		_ = m.engine.Save(ctx)
	case key.Matches(msg, m.keys.Load):
		_ = m.engine.Load(ctx)
	case key.Matches(msg, m.keys.Export):
		if path, err := m.engine.Export(ctx); err == nil && path != "" {
			log.Info(log.CatUI, "exported", "path", path)
		}
	case key.Matches(msg, m.keys.ClearHistory):
		m.engine.ClearHistory()
	case key.Matches(msg, m.keys.ResetAll):
		m.mode = modeConfirmReset
	case key.Matches(msg, m.keys.Theme):
		m.cycleTheme(ctx)
	case key.Matches(msg, m.keys.Sound):
		m.settings.Sound = !m.settings.Sound
	case key.Matches(msg, m.keys.Animate):
		m.settings.Animate = !m.settings.Animate
		if !m.settings.Animate {
			m.pulsing = false
		}
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return nil
}

func (m *Model) beginInput(mode inputMode, prompt, placeholder string) tea.Cmd {
	m.mode = mode
	m.input.Prompt = prompt
	m.input.Placeholder = placeholder
	m.input.SetValue("")
	return m.input.Focus()
}

func (m *Model) endInput() {
	m.input.Blur()
	m.input.Reset()
	m.mode = modeNormal
}

func (m *Model) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		value := m.input.Value()
		switch m.mode {
		case modeGoal:
			if !m.engine.SetGoalInput(value) {
				log.Debug(log.CatUI, "goal input ignored", "value", value)
			}
		case modeStep:
			m.settings.Step = engine.ParseStep(value)
		}
		m.endInput()
		return nil
	case tea.KeyEsc:
		m.endInput()
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) {
	m.mode = modeNormal
	switch msg.String() {
	case "y", "Y":
		_ = m.engine.ResetAll(context.Background())
		m.applyTheme(config.Themes[0])
	}
}

func (m *Model) applyTheme(name string) {
	m.theme = themeFor(name)
	m.settings.Theme = m.theme.Name
	m.styles = newStyles(m.theme)
}

func (m *Model) cycleTheme(ctx context.Context) {
	m.applyTheme(config.NextTheme(m.settings.Theme))
	if m.store == nil {
		return
	}
	if err := m.store.SaveTheme(ctx, m.theme.Name); err != nil {
		log.ErrorErr(log.CatUI, "failed to save theme", err, "theme", m.theme.Name)
	}
}

// after implements engine.Scheduler by turning the event into a tea.Tick.
func (m *Model) after(d time.Duration, ev engine.TimerEvent) {
	m.pending = append(m.pending, tea.Tick(d, func(time.Time) tea.Msg {
		return timerMsg(ev)
	}))
}

func (m *Model) flush() tea.Cmd {
	cmds := m.pending
	m.pending = nil
	return tea.Batch(cmds...)
}

func (m *Model) dropNotice(id uint64) {
	for i, n := range m.notices {
		if n.id == id {
			m.notices = append(m.notices[:i], m.notices[i+1:]...)
			return
		}
	}
}

func clockTick() tea.Cmd {
	return tea.Tick(clockInterval, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}
