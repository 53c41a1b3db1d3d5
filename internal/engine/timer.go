package engine

import "time"

// TimerKind names an engine-owned timer.
type TimerKind int

// Engine timers. At most one of each kind is live at a time.
const (
	TimerSpeedTick TimerKind = iota
	TimerGoalClear
)

// Timer intervals.
const (
	SpeedTickInterval = time.Second
	GoalClearDelay    = 2 * time.Second
	SpeedTestDuration = 30 * time.Second
)

func (k TimerKind) String() string {
	switch k {
	case TimerSpeedTick:
		return "speed-tick"
	case TimerGoalClear:
		return "goal-clear"
	default:
		return "unknown"
	}
}

// TimerEvent identifies one scheduled firing. The ID doubles as the cancellation
// handle: once the engine cancels or replaces a timer, events carrying the old ID
// are ignored by Fire.
type TimerEvent struct {
	Kind TimerKind
	ID   uint64
}

// Scheduler delivers a TimerEvent back to Engine.Fire after d has elapsed.
type Scheduler interface {
	After(d time.Duration, ev TimerEvent)
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(d time.Duration, ev TimerEvent)

// After implements Scheduler.
func (f SchedulerFunc) After(d time.Duration, ev TimerEvent) {
	f(d, ev)
}

type nopScheduler struct{}

func (nopScheduler) After(time.Duration, TimerEvent) {}

func (e *Engine) schedule(kind TimerKind, d time.Duration) {
	e.nextTimerID++
	id := e.nextTimerID
	e.timers[kind] = id
	e.sched.After(d, TimerEvent{Kind: kind, ID: id})
}

func (e *Engine) cancel(kind TimerKind) {
	delete(e.timers, kind)
}

func (e *Engine) cancelAll() {
	for kind := range e.timers {
		delete(e.timers, kind)
	}
}

// Pending reports whether a timer of the given kind is live.
func (e *Engine) Pending(kind TimerKind) bool {
	_, ok := e.timers[kind]
	return ok
}

// Fire handles a timer event. Stale events are dropped and Fire returns false.
func (e *Engine) Fire(ev TimerEvent) bool {
	id, ok := e.timers[ev.Kind]
	if !ok || id != ev.ID {
		return false
	}
	delete(e.timers, ev.Kind)
	switch ev.Kind {
	case TimerSpeedTick:
		e.tickSpeedTest()
	case TimerGoalClear:
		e.clearGoal()
	}
	return true
}
