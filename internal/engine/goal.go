package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/verte-zerg/tapcount/internal/log"
	"github.com/verte-zerg/tapcount/internal/model"
)

// ParseInt reads a leading base-10 integer the way a lenient form field does:
// surrounding space is ignored, an optional sign is accepted and parsing stops
// at the first non-digit ("12abc" is 12, "1.5" is 1). ok is false when no
// digits were found or the value does not fit in an int.
func ParseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseStep parses a step size. Anything unparsable or zero falls back to 1.
func ParseStep(s string) int {
	n, ok := ParseInt(s)
	if !ok || n == 0 {
		return 1
	}
	return n
}

// ParseGoal parses a goal target. Zero is rejected along with non-numbers.
func ParseGoal(s string) (int, bool) {
	n, ok := ParseInt(s)
	if !ok || n == 0 {
		return 0, false
	}
	return n, true
}

// SetGoalInput parses s and sets the goal. Invalid input is ignored.
func (e *Engine) SetGoalInput(s string) bool {
	target, ok := ParseGoal(s)
	if !ok {
		log.Debug(log.CatEngine, "goal input ignored", "input", s)
		return false
	}
	e.SetGoal(target)
	return true
}

// SetGoal replaces the current goal, finished or not.
func (e *Engine) SetGoal(target int) {
	e.cancel(TimerGoalClear)
	e.state.CurrentGoal = &model.Goal{
		Target:     target,
		StartValue: e.state.Count,
		StartTime:  e.now(),
	}
	e.renderGoal()
	e.sink.Render(e.snapshot())
	e.sink.Notify(fmt.Sprintf("🎯 Goal set: Reach %d", target))
}

// CheckGoalCompletion completes the goal when the counter equals its target.
// A goal fires once; it then stays visible for GoalClearDelay before clearing.
func (e *Engine) CheckGoalCompletion() bool {
	g := e.state.CurrentGoal
	if g == nil || g.Completed || e.state.Count != g.Target {
		return false
	}
	marker := e.goalMarker()
	e.state.Achievements = append(e.state.Achievements, marker)
	g.Completed = true
	log.Info(log.CatEngine, "goal completed", "target", g.Target, "marker", marker)

	e.renderGoal()
	e.sink.Notify("🎉 Goal Completed!")
	e.sink.PlaySound(SoundAchievement)
	e.schedule(TimerGoalClear, GoalClearDelay)
	e.RecomputeAchievements()
	return true
}

func (e *Engine) goalMarker() string {
	ms := e.now().UnixMilli()
	for {
		marker := fmt.Sprintf("%s%d", GoalMarkerPrefix, ms)
		if !e.hasAchievement(marker) {
			return marker
		}
		ms++
	}
}

func (e *Engine) hasAchievement(id string) bool {
	for _, a := range e.state.Achievements {
		if a == id {
			return true
		}
	}
	return false
}

func (e *Engine) clearGoal() {
	e.state.CurrentGoal = nil
	e.renderGoal()
	e.sink.Render(e.snapshot())
}
