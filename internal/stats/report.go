// Package stats contains statistics calculations and reporting.
package stats

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/verte-zerg/tapcount/internal/engine"
	"github.com/verte-zerg/tapcount/internal/model"
	"github.com/verte-zerg/tapcount/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Snapshot engine.Snapshot
	Found    bool
	Saves    []model.SaveSummary
}

// BuildReport loads the saved state and the save log.
func BuildReport(ctx context.Context, st *store.Store, lastSaves int, now time.Time) (Report, error) {
	state, found, err := st.LoadState(ctx, model.NewState(now))
	if err != nil {
		return Report{}, err
	}
	saves, err := st.ListSaves(ctx, lastSaves)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Snapshot: engine.Snapshot{State: state, Now: now},
		Found:    found,
		Saves:    saves,
	}, nil
}

// Render writes the full report. width <= 0 uses the terminal width.
func (r Report) Render(w io.Writer, width int) error {
	if !r.Found {
		if _, err := fmt.Fprintln(w, "No saved data found."); err != nil {
			return err
		}
		return RenderSaves(w, r.Saves, width)
	}
	if err := RenderSummary(w, r.Snapshot); err != nil {
		return err
	}
	if err := RenderAchievementTable(w, r.Snapshot.Achievements); err != nil {
		return err
	}
	if err := RenderHistory(w, r.Snapshot.History); err != nil {
		return err
	}
	return RenderSaves(w, r.Saves, width)
}
