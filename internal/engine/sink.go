package engine

import (
	"context"
	"time"

	"github.com/verte-zerg/tapcount/internal/model"
)

// Sound selects which cue the presentation layer plays.
type Sound int

// Sound cues.
const (
	SoundClick Sound = iota
	SoundAchievement
)

func (s Sound) String() string {
	switch s {
	case SoundClick:
		return "click"
	case SoundAchievement:
		return "achievement"
	default:
		return "unknown"
	}
}

// Sink receives every presentation side effect. Calls are fire-and-forget.
type Sink interface {
	Render(snap Snapshot)
	Animate()
	PlaySound(kind Sound)
	Notify(msg string)
	RenderHistory(entries []model.HistoryEntry)
	RenderAchievements(ids []string)
	RenderGoal(goal *model.Goal)
	RenderGameStatus(text string)
}

// NopSink discards all presentation calls.
type NopSink struct{}

func (NopSink) Render(Snapshot) {}
func (NopSink) Animate() {}
func (NopSink) PlaySound(Sound) {}
func (NopSink) Notify(string) {}
func (NopSink) RenderHistory([]model.HistoryEntry) {}
func (NopSink) RenderAchievements([]string) {}
func (NopSink) RenderGoal(*model.Goal) {}
func (NopSink) RenderGameStatus(string) {}

// Persistence stores and exports engine state.
type Persistence interface {
	// SaveState writes the full state under the app-data record.
	SaveState(ctx context.Context, st model.State, savedAt time.Time) error
	// LoadState merges the saved record over base. found is false when nothing was saved.
	LoadState(ctx context.Context, base model.State) (st model.State, found bool, err error)
	// ClearAll removes the app-data and theme records.
	ClearAll(ctx context.Context) error
	// ExportState writes a versioned JSON document and returns where it went.
	ExportState(ctx context.Context, st model.State, exportedAt time.Time) (string, error)
}
