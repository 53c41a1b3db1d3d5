package engine

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/tapcount/internal/log"
	"github.com/verte-zerg/tapcount/internal/model"
)

// GoalMarkerPrefix starts every achievement id appended for a completed goal.
const GoalMarkerPrefix = "goal_completed_"

// Snapshot is an immutable view of state at a point in time.
type Snapshot struct {
	model.State
	Now time.Time
}

// Elapsed returns time since the session started.
func (s Snapshot) Elapsed() time.Duration {
	d := s.Now.Sub(s.SessionStartTime)
	if d < 0 {
		return 0
	}
	return d
}

// SessionTime formats elapsed session time as MM:SS.
func (s Snapshot) SessionTime() string {
	elapsed := s.Elapsed()
	minutes := int(elapsed / time.Minute)
	seconds := int((elapsed % time.Minute) / time.Second)
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// ClicksPerMinute returns total clicks divided by elapsed minutes, rounded.
func (s Snapshot) ClicksPerMinute() int {
	minutes := float64(s.Elapsed()) / float64(time.Minute)
	if minutes <= 0 {
		return 0
	}
	return int(math.Round(float64(s.TotalClicks) / minutes))
}

// GoalsCompleted counts goal markers in the achievement set.
func (s Snapshot) GoalsCompleted() int {
	n := 0
	for _, id := range s.Achievements {
		if strings.Contains(id, "goal_completed") {
			n++
		}
	}
	return n
}

// ProgressPercent returns progress toward the goal, or the count mapped from
// [-100, 100] onto [0, 100] when no goal is set.
func (s Snapshot) ProgressPercent() float64 {
	if s.CurrentGoal != nil && s.CurrentGoal.Target != 0 {
		return math.Min(100, math.Abs(float64(s.Count)/float64(s.CurrentGoal.Target)*100))
	}
	return math.Max(0, math.Min(100, float64(s.Count+100)/200*100))
}

// Unlocked reports whether id is already in the achievement set.
func (s Snapshot) Unlocked(id string) bool {
	for _, a := range s.Achievements {
		if a == id {
			return true
		}
	}
	return false
}

// Achievement is a catalog entry.
type Achievement struct {
	ID          string
	Name        string
	Description string
	Condition   func(Snapshot) bool
}

var catalog = []Achievement{
	{ID: "first_click", Name: "First Step", Description: "Make your first click",
		Condition: func(s Snapshot) bool { return s.TotalClicks >= 1 }},
	{ID: "ten_clicks", Name: "Getting Started", Description: "Reach 10 clicks",
		Condition: func(s Snapshot) bool { return s.TotalClicks >= 10 }},
	{ID: "hundred_clicks", Name: "Century Club", Description: "Reach 100 clicks",
		Condition: func(s Snapshot) bool { return s.TotalClicks >= 100 }},
	{ID: "reach_100", Name: "Centurion", Description: "Reach count of 100",
		Condition: func(s Snapshot) bool { return s.HighestValue >= 100 }},
	{ID: "reach_1000", Name: "Millennium", Description: "Reach count of 1000",
		Condition: func(s Snapshot) bool { return s.HighestValue >= 1000 }},
	{ID: "go_negative", Name: "Underground", Description: "Go below zero",
		Condition: func(s Snapshot) bool { return s.LowestValue < 0 }},
	{ID: "big_range", Name: "Extreme Range", Description: "Have a range of 200 between highest and lowest",
		Condition: func(s Snapshot) bool { return s.HighestValue-s.LowestValue >= 200 }},
	{ID: "speed_demon", Name: "Speed Demon", Description: "Click 60 times in a minute",
		Condition: func(s Snapshot) bool { return s.ClicksPerMinute() >= 60 }},
	{ID: "goal_achiever", Name: "Goal Achiever", Description: "Complete 5 goals",
		Condition: func(s Snapshot) bool { return s.GoalsCompleted() >= 5 }},
}

// Catalog returns the achievement catalog in evaluation order.
func Catalog() []Achievement {
	out := make([]Achievement, len(catalog))
	copy(out, catalog)
	return out
}

// Describe returns the display name and description for an achievement id.
// Goal markers and ids missing from the catalog get generic labels.
func Describe(id string) (name, description string) {
	for _, a := range catalog {
		if a.ID == id {
			return a.Name, a.Description
		}
	}
	if strings.HasPrefix(id, GoalMarkerPrefix) {
		return "Goal Completed", "Reached a goal target"
	}
	return "Unknown", "Legacy achievement"
}

// Unlockable returns catalog entries whose condition holds on snap but are not
// yet unlocked, in catalog order.
func Unlockable(snap Snapshot) []Achievement {
	var out []Achievement
	for _, a := range catalog {
		if snap.Unlocked(a.ID) {
			continue
		}
		if a.Condition(snap) {
			out = append(out, a)
		}
	}
	return out
}

// RecomputeAchievements unlocks every catalog entry whose condition became true.
func (e *Engine) RecomputeAchievements() []string {
	newly := Unlockable(e.snapshot())
	if len(newly) == 0 {
		return nil
	}
	ids := make([]string, 0, len(newly))
	for _, a := range newly {
		e.state.Achievements = append(e.state.Achievements, a.ID)
		ids = append(ids, a.ID)
		log.Info(log.CatEngine, "achievement unlocked", "id", a.ID)
		e.sink.PlaySound(SoundAchievement)
		e.sink.Notify(fmt.Sprintf("🏆 Achievement Unlocked: %s!", a.Name))
	}
	e.sink.RenderAchievements(e.achievementIDs())
	return ids
}
