// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/verte-zerg/tapcount/internal/engine"
	"github.com/verte-zerg/tapcount/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Resample picks width evenly spaced values, keeping the last one.
func Resample(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	if width == 1 {
		return []float64{values[len(values)-1]}
	}
	out := make([]float64, width)
	for i := 0; i < width; i++ {
		idx := int(math.Round(float64(i) * float64(len(values)-1) / float64(width-1)))
		out[i] = values[idx]
	}
	return out
}

// RenderSummary prints the saved counter state.
func RenderSummary(w io.Writer, snap engine.Snapshot) error {
	goal := "none"
	if g := snap.CurrentGoal; g != nil {
		goal = fmt.Sprintf("%d (remaining %d)", g.Target, g.Target-snap.Count)
		if g.Completed {
			goal = fmt.Sprintf("%d (completed)", g.Target)
		}
	}
	game := "none"
	if mode := snap.Mode(); mode != model.ModeNone {
		game = string(mode)
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Count: %d", snap.Count),
		fmt.Sprintf("Total clicks: %d", snap.TotalClicks),
		fmt.Sprintf("Highest: %d", snap.HighestValue),
		fmt.Sprintf("Lowest: %d", snap.LowestValue),
		fmt.Sprintf("Goals completed: %d", snap.GoalsCompleted()),
		fmt.Sprintf("Goal: %s", goal),
		fmt.Sprintf("Minigame: %s", game),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderAchievementTable prints every catalog entry with its lock state.
func RenderAchievementTable(w io.Writer, unlocked []string) error {
	have := make(map[string]bool, len(unlocked))
	for _, id := range unlocked {
		have[id] = true
	}
	if _, err := fmt.Fprintln(w, "Achievements"); err != nil {
		return err
	}
	headers := []string{"", "Name", "Description"}
	catalog := engine.Catalog()
	rows := make([][]string, 0, len(catalog))
	for _, a := range catalog {
		mark := "·"
		if have[a.ID] {
			mark = "🏆"
		}
		rows = append(rows, []string{mark, a.Name, a.Description})
	}
	for _, line := range formatTable(headers, rows, nil) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderHistory prints history entries newest first.
func RenderHistory(w io.Writer, history []model.HistoryEntry) error {
	if len(history) == 0 {
		_, err := fmt.Fprintln(w, "No recent changes")
		return err
	}
	if _, err := fmt.Fprintln(w, "History"); err != nil {
		return err
	}
	for _, h := range history {
		if _, err := fmt.Fprintln(w, FormatHistoryEntry(h)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// FormatHistoryEntry renders one history line, e.g. "15:04:05: +5 → 12".
func FormatHistoryEntry(h model.HistoryEntry) string {
	ts := "--:--:--"
	if !h.Timestamp.IsZero() {
		ts = h.Timestamp.Local().Format("15:04:05")
	}
	if h.Action == model.ActionReset {
		return fmt.Sprintf("%s: Reset to %d", ts, h.NewCount)
	}
	sign := ""
	if h.Value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s: %s%d → %d", ts, sign, h.Value, h.NewCount)
}

// RenderSaves prints a sparkline of the count at each save.
func RenderSaves(w io.Writer, saves []model.SaveSummary, width int) error {
	if len(saves) == 0 {
		_, err := fmt.Fprintln(w, "No saves found.")
		return err
	}
	counts := make([]float64, len(saves))
	clicks := make([]float64, len(saves))
	for i, s := range saves {
		counts[i] = float64(s.Count)
		clicks[i] = float64(s.TotalClicks)
	}
	width = SparkWidthFor(width)
	last := saves[len(saves)-1]
	lines := []string{
		fmt.Sprintf("Saves: %d (last %s)", len(saves), last.SavedAt.Local().Format("2006-01-02 15:04")),
		"Count  " + Sparkline(Resample(counts, width)),
		"Clicks " + Sparkline(Resample(clicks, width)),
		"",
	}
	lines = append(lines, recentSavesTable(saves, recentSaveRows)...)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

const recentSaveRows = 5

// recentSavesTable lists the newest saves first with right-aligned numbers.
func recentSavesTable(saves []model.SaveSummary, limit int) []string {
	headers := []string{"Saved", "Count", "Clicks", "Highest", "Lowest", "Achievements"}
	rows := make([][]string, 0, limit)
	for i := len(saves) - 1; i >= 0 && len(rows) < limit; i-- {
		s := saves[i]
		rows = append(rows, []string{
			s.SavedAt.Local().Format("01-02 15:04:05"),
			strconv.Itoa(s.Count),
			strconv.Itoa(s.TotalClicks),
			strconv.Itoa(s.HighestValue),
			strconv.Itoa(s.LowestValue),
			strconv.Itoa(s.Achievements),
		})
	}
	return formatTable(headers, rows, map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true})
}
