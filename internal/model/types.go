// Package model defines shared data structures.
package model

import "time"

// HistoryLimit caps the number of history entries kept in State.
const HistoryLimit = 10

// Settings defines play settings resolved from flags and the config file.
type Settings struct {
	Step      int
	Theme     string
	Sound     bool
	Animate   bool
	ExportDir string
}

// Action tags what produced a history entry.
type Action string

// Counter actions.
const (
	ActionIncrease Action = "increase"
	ActionDecrease Action = "decrease"
	ActionReset    Action = "reset"
	ActionQuick    Action = "quick"
	ActionKeyboard Action = "keyboard"
)

// Valid reports whether a is one of the known counter actions.
func (a Action) Valid() bool {
	switch a {
	case ActionIncrease, ActionDecrease, ActionReset, ActionQuick, ActionKeyboard:
		return true
	default:
		return false
	}
}

// HistoryEntry records a single counter change.
type HistoryEntry struct {
	Action    Action
	Value     int
	NewCount  int
	Timestamp time.Time
}

// Goal is the single user-set target.
type Goal struct {
	Target     int
	StartValue int
	StartTime  time.Time
	// Completed is set once the target was hit and stays set until the goal is cleared.
	Completed bool
}

// GameMode identifies the active minigame.
type GameMode string

// Minigame modes. ModeNone means no session is active.
const (
	ModeNone      GameMode = ""
	ModeChallenge GameMode = "challenge"
	ModeSpeed     GameMode = "speed"
	ModePrecision GameMode = "precision"
)

// ChallengeType is the comparison a challenge uses.
type ChallengeType string

// Challenge comparisons.
const (
	ChallengeExact ChallengeType = "exact"
	ChallengeAbove ChallengeType = "above"
	ChallengeBelow ChallengeType = "below"
)

// Challenge is the payload of a challenge session.
type Challenge struct {
	Name   string
	Target int
	Type   ChallengeType
}

// SpeedTest is the payload of a speed-test session.
type SpeedTest struct {
	StartTime   time.Time
	StartClicks int
	Duration    time.Duration
}

// PrecisionTest is the payload of a precision-test session.
type PrecisionTest struct {
	Target     int
	StartValue int
	Attempts   int
}

// MiniGame is the active minigame. Exactly one payload matches Mode.
type MiniGame struct {
	Mode      GameMode
	Challenge *Challenge
	Speed     *SpeedTest
	Precision *PrecisionTest
}

// State holds everything the counter tracks for a session.
type State struct {
	Count            int
	TotalClicks      int
	HighestValue     int
	LowestValue      int
	SessionStartTime time.Time
	Achievements     []string
	History          []HistoryEntry
	CurrentGoal      *Goal
	Game             *MiniGame
}

// NewState returns the zero state for a session starting at now.
func NewState(now time.Time) State {
	return State{
		SessionStartTime: now,
		Achievements:     []string{},
		History:          []HistoryEntry{},
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.Achievements = append([]string{}, s.Achievements...)
	out.History = append([]HistoryEntry{}, s.History...)
	if s.CurrentGoal != nil {
		g := *s.CurrentGoal
		out.CurrentGoal = &g
	}
	if s.Game != nil {
		game := *s.Game
		if s.Game.Challenge != nil {
			c := *s.Game.Challenge
			game.Challenge = &c
		}
		if s.Game.Speed != nil {
			sp := *s.Game.Speed
			game.Speed = &sp
		}
		if s.Game.Precision != nil {
			p := *s.Game.Precision
			game.Precision = &p
		}
		out.Game = &game
	}
	return out
}

// Mode returns the active game mode or ModeNone.
func (s State) Mode() GameMode {
	if s.Game == nil {
		return ModeNone
	}
	return s.Game.Mode
}

// SaveSummary is a row of the save log.
type SaveSummary struct {
	ID           int64
	SavedAt      time.Time
	Count        int
	TotalClicks  int
	HighestValue int
	LowestValue  int
	Achievements int
}
