// Package engine owns the counter game state: the counter itself, history,
// achievements, the active goal and minigames.
//
// All methods must be called from a single goroutine; the Bubble Tea update loop
// provides that guarantee. Timers are delegated to a Scheduler and come back
// through Fire, where stale or cancelled events are discarded.
package engine

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/verte-zerg/tapcount/internal/log"
	"github.com/verte-zerg/tapcount/internal/model"
)

// WelcomeStatus is the game status shown when a session starts.
const WelcomeStatus = "Welcome to the Ultimate Counter App! 🎮"

// Engine holds the game state and applies user actions to it.
type Engine struct {
	state  model.State
	status string

	sink  Sink
	store Persistence
	sched Scheduler
	now   func() time.Time
	rnd   *rand.Rand

	timers      map[TimerKind]uint64
	nextTimerID uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRand overrides the random source used for minigames.
func WithRand(rnd *rand.Rand) Option {
	return func(e *Engine) { e.rnd = rnd }
}

// WithScheduler sets where timers are delivered.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.sched = s }
}

// WithPersistence sets the save/load backend.
func WithPersistence(p Persistence) Option {
	return func(e *Engine) { e.store = p }
}

// New constructs an Engine with a fresh session.
func New(sink Sink, opts ...Option) *Engine {
	if sink == nil {
		sink = NopSink{}
	}
	e := &Engine{
		sink:   sink,
		sched:  nopScheduler{},
		now:    time.Now,
		timers: map[TimerKind]uint64{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rnd == nil {
		e.rnd = rand.New(rand.NewSource(e.now().UnixNano()))
	}
	e.state = model.NewState(e.now())
	return e
}

// Start loads saved data if any exists and renders the initial screen.
func (e *Engine) Start(ctx context.Context) error {
	var err error
	loaded := false
	if e.store != nil {
		loaded, err = e.load(ctx, false)
	}
	if !loaded {
		e.renderAll()
	}
	e.setStatus(WelcomeStatus)
	return err
}

// State returns a copy of the current state.
func (e *Engine) State() model.State {
	return e.state.Clone()
}

// Snapshot returns the current state stamped with the current time.
func (e *Engine) Snapshot() Snapshot {
	return e.snapshot()
}

// Status returns the current game status line.
func (e *Engine) Status() string {
	return e.status
}

func (e *Engine) snapshot() Snapshot {
	return Snapshot{State: e.state.Clone(), Now: e.now()}
}

func (e *Engine) achievementIDs() []string {
	return append([]string{}, e.state.Achievements...)
}

func (e *Engine) setStatus(text string) {
	e.status = text
	e.sink.RenderGameStatus(text)
}

// ApplyDelta changes the counter. ActionReset sets it to zero and ignores delta.
func (e *Engine) ApplyDelta(delta int, source model.Action) {
	if source == model.ActionReset {
		delta = 0
		e.state.Count = 0
	} else {
		e.state.Count += delta
	}
	e.state.TotalClicks++
	e.updateWatermarks()
	e.addHistory(source, delta)

	e.sink.Render(e.snapshot())
	e.RecomputeAchievements()
	e.CheckGoalCompletion()
	e.sink.Animate()
	e.sink.PlaySound(SoundClick)
	e.CheckGameProgress()
}

// Increase adds step to the counter.
func (e *Engine) Increase(step int, source model.Action) {
	e.ApplyDelta(step, source)
}

// Decrease subtracts step from the counter.
func (e *Engine) Decrease(step int, source model.Action) {
	e.ApplyDelta(-step, source)
}

// Reset sets the counter to zero. It still counts as a click.
func (e *Engine) Reset() {
	e.ApplyDelta(0, model.ActionReset)
}

func (e *Engine) updateWatermarks() {
	if e.state.Count > e.state.HighestValue {
		e.state.HighestValue = e.state.Count
	}
	if e.state.Count < e.state.LowestValue {
		e.state.LowestValue = e.state.Count
	}
}

func (e *Engine) addHistory(action model.Action, value int) {
	entry := model.HistoryEntry{
		Action:    action,
		Value:     value,
		NewCount:  e.state.Count,
		Timestamp: e.now(),
	}
	history := make([]model.HistoryEntry, 0, model.HistoryLimit)
	history = append(history, entry)
	history = append(history, e.state.History...)
	if len(history) > model.HistoryLimit {
		history = history[:model.HistoryLimit]
	}
	e.state.History = history
	e.sink.RenderHistory(append([]model.HistoryEntry{}, history...))
}

// ClearHistory empties the history log.
func (e *Engine) ClearHistory() {
	e.state.History = []model.HistoryEntry{}
	e.sink.RenderHistory(nil)
	e.sink.Notify("🧹 History cleared!")
}

// Save writes the current state to the persistence backend.
func (e *Engine) Save(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	if err := e.store.SaveState(ctx, e.state.Clone(), e.now()); err != nil {
		log.ErrorErr(log.CatEngine, "save failed", err)
		e.sink.Notify("❌ Failed to save data!")
		return fmt.Errorf("failed to save state: %w", err)
	}
	e.sink.Notify("💾 Data saved successfully!")
	return nil
}

// Load replaces the current state with the saved one.
func (e *Engine) Load(ctx context.Context) error {
	_, err := e.load(ctx, true)
	return err
}

func (e *Engine) load(ctx context.Context, announceMissing bool) (bool, error) {
	if e.store == nil {
		return false, nil
	}
	st, found, err := e.store.LoadState(ctx, e.state.Clone())
	if err != nil {
		log.ErrorErr(log.CatEngine, "load failed", err)
		e.sink.Notify("❌ Failed to load data!")
		return false, fmt.Errorf("failed to load state: %w", err)
	}
	if !found {
		if announceMissing {
			e.sink.Notify("❌ No saved data found!")
		}
		return false, nil
	}

	e.cancelAll()
	st.SessionStartTime = e.now()
	e.state = st
	e.resumeTimers()
	e.renderAll()
	e.RecomputeAchievements()
	e.sink.Notify("📂 Data loaded successfully!")
	return true, nil
}

// resumeTimers re-arms timers for loaded state: a completed goal still needs
// clearing and a speed test needs its countdown.
func (e *Engine) resumeTimers() {
	if g := e.state.CurrentGoal; g != nil && g.Completed {
		e.schedule(TimerGoalClear, GoalClearDelay)
	}
	if e.state.Mode() == model.ModeSpeed {
		e.schedule(TimerSpeedTick, SpeedTickInterval)
	}
}

// Export writes the current state as a versioned JSON document.
func (e *Engine) Export(ctx context.Context) (string, error) {
	if e.store == nil {
		return "", nil
	}
	path, err := e.store.ExportState(ctx, e.state.Clone(), e.now())
	if err != nil {
		log.ErrorErr(log.CatEngine, "export failed", err)
		e.sink.Notify("❌ Failed to export data!")
		return "", fmt.Errorf("failed to export state: %w", err)
	}
	e.sink.Notify("📊 Data exported successfully!")
	return path, nil
}

// ResetAll restores every field to its default and clears persisted records.
func (e *Engine) ResetAll(ctx context.Context) error {
	e.cancelAll()
	e.state = model.NewState(e.now())
	e.setStatus("")
	e.renderAll()

	var err error
	if e.store != nil {
		if cerr := e.store.ClearAll(ctx); cerr != nil {
			log.ErrorErr(log.CatEngine, "clear failed", cerr)
			err = fmt.Errorf("failed to clear saved data: %w", cerr)
		}
	}
	e.sink.Notify("🔄 Everything has been reset!")
	return err
}

func (e *Engine) renderAll() {
	e.sink.Render(e.snapshot())
	e.sink.RenderHistory(append([]model.HistoryEntry{}, e.state.History...))
	e.sink.RenderAchievements(e.achievementIDs())
	e.renderGoal()
}

func (e *Engine) renderGoal() {
	if e.state.CurrentGoal == nil {
		e.sink.RenderGoal(nil)
		return
	}
	g := *e.state.CurrentGoal
	e.sink.RenderGoal(&g)
}
