package engine

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/verte-zerg/tapcount/internal/model"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type scheduled struct {
	d  time.Duration
	ev TimerEvent
}

type fakeScheduler struct {
	events []scheduled
}

func (s *fakeScheduler) After(d time.Duration, ev TimerEvent) {
	s.events = append(s.events, scheduled{d: d, ev: ev})
}

func (s *fakeScheduler) last(t *testing.T, kind TimerKind) TimerEvent {
	t.Helper()
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].ev.Kind == kind {
			return s.events[i].ev
		}
	}
	t.Fatalf("no %s timer scheduled", kind)
	return TimerEvent{}
}

type recordingSink struct {
	NopSink
	notes      []string
	sounds     []Sound
	statuses   []string
	animations int
	renders    int
}

func (r *recordingSink) Render(Snapshot) { r.renders++ }
func (r *recordingSink) Animate() { r.animations++ }
func (r *recordingSink) PlaySound(kind Sound) { r.sounds = append(r.sounds, kind) }
func (r *recordingSink) Notify(msg string) { r.notes = append(r.notes, msg) }
func (r *recordingSink) RenderGameStatus(s string) { r.statuses = append(r.statuses, s) }

func (r *recordingSink) noted(substr string) bool {
	for _, n := range r.notes {
		if strings.Contains(n, substr) {
			return true
		}
	}
	return false
}

type memPersistence struct {
	saved    *model.State
	exported []model.State
	cleared  int
}

func (m *memPersistence) SaveState(_ context.Context, st model.State, _ time.Time) error {
	c := st.Clone()
	m.saved = &c
	return nil
}

func (m *memPersistence) LoadState(_ context.Context, base model.State) (model.State, bool, error) {
	if m.saved == nil {
		return base, false, nil
	}
	return m.saved.Clone(), true, nil
}

func (m *memPersistence) ClearAll(context.Context) error {
	m.saved = nil
	m.cleared++
	return nil
}

func (m *memPersistence) ExportState(_ context.Context, st model.State, _ time.Time) (string, error) {
	m.exported = append(m.exported, st.Clone())
	return "export.json", nil
}

type harness struct {
	e     *Engine
	sink  *recordingSink
	sched *fakeScheduler
	clock *fakeClock
	store *memPersistence
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		sink:  &recordingSink{},
		sched: &fakeScheduler{},
		clock: &fakeClock{t: time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)},
		store: &memPersistence{},
	}
	h.e = New(h.sink,
		WithClock(h.clock.Now),
		WithRand(rand.New(rand.NewSource(1))),
		WithScheduler(h.sched),
		WithPersistence(h.store),
	)
	return h
}

func countMarkers(ids []string) int {
	n := 0
	for _, id := range ids {
		if strings.HasPrefix(id, GoalMarkerPrefix) {
			n++
		}
	}
	return n
}

func TestApplyDeltaIncreaseThenDecrease(t *testing.T) {
	h := newHarness(t)

	h.e.Increase(5, model.ActionIncrease)
	st := h.e.State()
	require.Equal(t, 5, st.Count)
	require.Equal(t, 1, st.TotalClicks)
	require.Len(t, st.History, 1)
	assert.Equal(t, model.ActionIncrease, st.History[0].Action)
	assert.Equal(t, 5, st.History[0].Value)
	assert.Equal(t, 5, st.History[0].NewCount)

	h.e.Decrease(5, model.ActionDecrease)
	st = h.e.State()
	require.Equal(t, 0, st.Count)
	require.Equal(t, 2, st.TotalClicks)
	assert.Equal(t, 0, st.LowestValue)
	assert.Equal(t, 5, st.HighestValue)
	assert.Equal(t, -5, st.History[0].Value)
	assert.Equal(t, 2, h.sink.animations)
}

func TestApplyDeltaQuickUnlocksRangeAchievements(t *testing.T) {
	h := newHarness(t)

	h.e.ApplyDelta(100, model.ActionQuick)
	require.Equal(t, []string{"first_click", "reach_100"}, h.e.State().Achievements)

	h.e.ApplyDelta(-250, model.ActionQuick)
	st := h.e.State()
	require.Equal(t, -150, st.LowestValue)
	require.Equal(t, []string{"first_click", "reach_100", "go_negative", "big_range"}, st.Achievements)
	assert.True(t, h.sink.noted("Achievement Unlocked: Extreme Range!"))
}

func TestResetKeepsWatermarks(t *testing.T) {
	h := newHarness(t)
	h.e.ApplyDelta(30, model.ActionQuick)
	h.e.ApplyDelta(-50, model.ActionQuick)
	h.e.Reset()

	st := h.e.State()
	require.Equal(t, 0, st.Count)
	require.Equal(t, 3, st.TotalClicks)
	require.Equal(t, 30, st.HighestValue)
	require.Equal(t, -20, st.LowestValue)
	require.Equal(t, model.ActionReset, st.History[0].Action)
	require.Equal(t, 0, st.History[0].Value)
}

func TestHistoryCappedNewestFirst(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 15; i++ {
		h.e.Increase(1, model.ActionKeyboard)
	}
	st := h.e.State()
	require.Len(t, st.History, model.HistoryLimit)
	require.Equal(t, 15, st.History[0].NewCount)
	require.Equal(t, 6, st.History[model.HistoryLimit-1].NewCount)

	h.e.ClearHistory()
	require.Empty(t, h.e.State().History)
	require.True(t, h.sink.noted("History cleared!"))
}

func TestFirstClickUnlocksOnce(t *testing.T) {
	h := newHarness(t)
	require.Nil(t, h.e.RecomputeAchievements())

	h.e.Increase(1, model.ActionIncrease)
	h.e.Increase(1, model.ActionIncrease)
	h.e.Increase(1, model.ActionIncrease)

	n := 0
	for _, id := range h.e.State().Achievements {
		if id == "first_click" {
			n++
		}
	}
	require.Equal(t, 1, n)
	require.Nil(t, h.e.RecomputeAchievements())
}

func TestSpeedDemonFollowsClickRate(t *testing.T) {
	fast := newHarness(t)
	for i := 0; i < 30; i++ {
		fast.clock.Advance(500 * time.Millisecond)
		fast.e.Increase(1, model.ActionIncrease)
	}
	require.Contains(t, fast.e.State().Achievements, "speed_demon")

	slow := newHarness(t)
	for i := 0; i < 30; i++ {
		slow.clock.Advance(2 * time.Second)
		slow.e.Increase(1, model.ActionIncrease)
	}
	require.NotContains(t, slow.e.State().Achievements, "speed_demon")

	// No elapsed time means no rate yet.
	instant := newHarness(t)
	for i := 0; i < 5; i++ {
		instant.e.Increase(1, model.ActionIncrease)
	}
	require.NotContains(t, instant.e.State().Achievements, "speed_demon")
}

func TestGoalCompletesOnce(t *testing.T) {
	h := newHarness(t)
	h.e.SetGoal(10)
	require.True(t, h.sink.noted("Goal set: Reach 10"))

	h.e.Increase(5, model.ActionIncrease)
	require.Zero(t, countMarkers(h.e.State().Achievements))
	h.e.Increase(5, model.ActionIncrease)

	st := h.e.State()
	require.Equal(t, 1, countMarkers(st.Achievements))
	require.NotNil(t, st.CurrentGoal)
	require.True(t, st.CurrentGoal.Completed)
	require.True(t, h.e.Pending(TimerGoalClear))

	// Revisiting the target during the display window does not fire again.
	h.e.Decrease(1, model.ActionDecrease)
	h.e.Increase(1, model.ActionIncrease)
	require.Equal(t, 1, countMarkers(h.e.State().Achievements))

	ev := h.sched.last(t, TimerGoalClear)
	for _, s := range h.sched.events {
		if s.ev == ev {
			require.Equal(t, GoalClearDelay, s.d)
		}
	}
	h.clock.Advance(GoalClearDelay)
	require.True(t, h.e.Fire(ev))
	require.Nil(t, h.e.State().CurrentGoal)

	h.e.Decrease(1, model.ActionDecrease)
	h.e.Increase(1, model.ActionIncrease)
	require.Equal(t, 1, countMarkers(h.e.State().Achievements))
}

func TestSetGoalCancelsPendingClear(t *testing.T) {
	h := newHarness(t)
	h.e.SetGoal(1)
	h.e.Increase(1, model.ActionIncrease)
	stale := h.sched.last(t, TimerGoalClear)

	h.e.SetGoal(5)
	require.False(t, h.e.Fire(stale))
	goal := h.e.State().CurrentGoal
	require.NotNil(t, goal)
	require.Equal(t, 5, goal.Target)
	require.Equal(t, 1, goal.StartValue)
	require.False(t, goal.Completed)
}

func TestGoalAchieverAfterFiveGoals(t *testing.T) {
	h := newHarness(t)
	for i := 1; i <= 5; i++ {
		h.e.SetGoal(i)
		h.e.Increase(1, model.ActionIncrease)
	}
	st := h.e.State()
	require.Equal(t, 5, countMarkers(st.Achievements))
	require.Contains(t, st.Achievements, "goal_achiever")
}

func TestGoalMarkersUniqueWithinMillisecond(t *testing.T) {
	h := newHarness(t)
	h.e.SetGoal(1)
	h.e.Increase(1, model.ActionIncrease)
	h.e.SetGoal(2)
	h.e.Increase(1, model.ActionIncrease)

	var markers []string
	for _, id := range h.e.State().Achievements {
		if strings.HasPrefix(id, GoalMarkerPrefix) {
			markers = append(markers, id)
		}
	}
	require.Len(t, markers, 2)
	require.NotEqual(t, markers[0], markers[1])
}

func TestSetGoalInput(t *testing.T) {
	tests := []struct {
		input  string
		ok     bool
		target int
	}{
		{input: "abc", ok: false},
		{input: "", ok: false},
		{input: "0", ok: false},
		{input: "12abc", ok: true, target: 12},
		{input: " -7 ", ok: true, target: -7},
		{input: "1.5", ok: true, target: 1},
		{input: "99999999999999999999999", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			h := newHarness(t)
			require.Equal(t, tt.ok, h.e.SetGoalInput(tt.input))
			goal := h.e.State().CurrentGoal
			if !tt.ok {
				require.Nil(t, goal)
				return
			}
			require.NotNil(t, goal)
			require.Equal(t, tt.target, goal.Target)
		})
	}
}

func TestParseStep(t *testing.T) {
	require.Equal(t, 1, ParseStep(""))
	require.Equal(t, 1, ParseStep("zero"))
	require.Equal(t, 1, ParseStep("0"))
	require.Equal(t, 5, ParseStep("5"))
	require.Equal(t, -3, ParseStep("-3"))
	require.Equal(t, 2, ParseStep("+2x"))
}

func TestChallengeCompletes(t *testing.T) {
	for seed := int64(0); seed < 8; seed++ {
		h := newHarness(t)
		h.e.rnd = rand.New(rand.NewSource(seed))
		c := h.e.StartChallenge()
		require.Equal(t, model.ModeChallenge, h.e.State().Mode())
		require.Equal(t, "Challenge: "+c.Name, h.e.Status())

		var target int
		switch c.Type {
		case model.ChallengeExact:
			target = c.Target
		case model.ChallengeAbove:
			target = c.Target + 1
		case model.ChallengeBelow:
			target = c.Target - 1
		}
		h.e.ApplyDelta(target, model.ActionQuick)
		require.Equal(t, model.ModeNone, h.e.State().Mode())
		require.Equal(t, "Challenge Complete! 🎉", h.e.Status())
		require.True(t, h.sink.noted("Challenge Completed!"))
	}
}

func TestChallengeMet(t *testing.T) {
	above := model.Challenge{Target: 200, Type: model.ChallengeAbove}
	below := model.Challenge{Target: -50, Type: model.ChallengeBelow}
	exact := model.Challenge{Target: 42, Type: model.ChallengeExact}

	assert.False(t, challengeMet(above, 200))
	assert.True(t, challengeMet(above, 201))
	assert.False(t, challengeMet(below, -50))
	assert.True(t, challengeMet(below, -51))
	assert.True(t, challengeMet(exact, 42))
	assert.False(t, challengeMet(exact, 43))
	assert.False(t, challengeMet(model.Challenge{Type: "sideways"}, 0))
}

func TestPrecisionCountsAttempts(t *testing.T) {
	h := newHarness(t)
	target := h.e.StartPrecisionTest()

	h.e.ApplyDelta(1000, model.ActionQuick)
	st := h.e.State()
	require.Equal(t, model.ModePrecision, st.Mode())
	require.Equal(t, 1, st.Game.Precision.Attempts)

	h.e.ApplyDelta(target-1000, model.ActionQuick)
	require.Equal(t, model.ModeNone, h.e.State().Mode())
	require.Equal(t, "Precision Test Complete! 🎯 (2 attempts)", h.e.Status())
}

func TestPrecisionTargetRange(t *testing.T) {
	h := newHarness(t)
	seenLow, seenHigh := false, false
	for i := 0; i < 5000; i++ {
		target := h.e.StartPrecisionTest()
		require.GreaterOrEqual(t, target, -100)
		require.LessOrEqual(t, target, 99)
		seenLow = seenLow || target == -100
		seenHigh = seenHigh || target == 99
	}
	require.True(t, seenLow && seenHigh)
}

func TestSpeedTestCountsDown(t *testing.T) {
	h := newHarness(t)
	h.e.StartSpeedTest()
	require.Equal(t, "Speed Test: Click as fast as you can! (30s)", h.e.Status())

	h.e.Increase(1, model.ActionIncrease)
	h.e.Increase(1, model.ActionIncrease)
	h.e.Increase(1, model.ActionIncrease)

	h.clock.Advance(time.Second)
	require.True(t, h.e.Fire(h.sched.last(t, TimerSpeedTick)))
	require.Equal(t, "Speed Test: 29s remaining", h.e.Status())

	h.clock.Advance(29 * time.Second)
	require.True(t, h.e.Fire(h.sched.last(t, TimerSpeedTick)))
	require.Equal(t, "Speed Test Complete! You clicked 3 times in 30 seconds!", h.e.Status())
	require.Equal(t, model.ModeNone, h.e.State().Mode())
	require.False(t, h.e.Pending(TimerSpeedTick))
	require.True(t, h.sink.noted("Speed Test: 3 clicks in 30s!"))
}

func TestNewGameCancelsSpeedTimer(t *testing.T) {
	h := newHarness(t)
	h.e.StartSpeedTest()
	stale := h.sched.last(t, TimerSpeedTick)

	h.e.StartChallenge()
	h.clock.Advance(time.Minute)
	require.False(t, h.e.Fire(stale))
	require.Equal(t, model.ModeChallenge, h.e.State().Mode())

	// Restarting a speed test also invalidates the previous countdown.
	h.e.StartSpeedTest()
	first := h.sched.last(t, TimerSpeedTick)
	h.e.StartSpeedTest()
	require.False(t, h.e.Fire(first))
	require.True(t, h.e.Fire(h.sched.last(t, TimerSpeedTick)))
}

func TestSaveLoadRestartsSessionClock(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.e.Load(context.Background()))
	require.True(t, h.sink.noted("No saved data found!"))

	h.e.ApplyDelta(42, model.ActionQuick)
	require.NoError(t, h.e.Save(context.Background()))
	h.e.ApplyDelta(-42, model.ActionQuick)

	h.clock.Advance(10 * time.Minute)
	require.NoError(t, h.e.Load(context.Background()))
	st := h.e.State()
	require.Equal(t, 42, st.Count)
	require.Equal(t, h.clock.Now(), st.SessionStartTime)
	require.True(t, h.sink.noted("Data loaded successfully!"))
}

func TestLoadResumesSpeedTest(t *testing.T) {
	h := newHarness(t)
	h.e.StartSpeedTest()
	require.NoError(t, h.e.Save(context.Background()))
	h.e.StartChallenge()

	h.clock.Advance(time.Hour)
	require.NoError(t, h.e.Load(context.Background()))
	require.Equal(t, model.ModeSpeed, h.e.State().Mode())
	require.True(t, h.e.Fire(h.sched.last(t, TimerSpeedTick)))
	require.Equal(t, model.ModeNone, h.e.State().Mode())
}

func TestResetAll(t *testing.T) {
	h := newHarness(t)
	h.e.ApplyDelta(100, model.ActionQuick)
	h.e.SetGoal(100)
	h.e.StartSpeedTest()
	require.NoError(t, h.e.Save(context.Background()))

	require.NoError(t, h.e.ResetAll(context.Background()))
	st := h.e.State()
	require.Equal(t, model.NewState(h.clock.Now()), st)
	require.Equal(t, 1, h.store.cleared)
	require.Nil(t, h.store.saved)
	require.False(t, h.e.Pending(TimerSpeedTick))
	require.False(t, h.e.Pending(TimerGoalClear))
	require.Empty(t, h.e.Status())
}

func TestExport(t *testing.T) {
	h := newHarness(t)
	h.e.ApplyDelta(7, model.ActionIncrease)
	path, err := h.e.Export(context.Background())
	require.NoError(t, err)
	require.Equal(t, "export.json", path)
	require.Len(t, h.store.exported, 1)
	require.Equal(t, 7, h.store.exported[0].Count)
}

func TestStartShowsWelcome(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.e.Start(context.Background()))
	require.Equal(t, WelcomeStatus, h.e.Status())
	require.False(t, h.sink.noted("No saved data found!"))
}

func TestSnapshotMetrics(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{State: model.NewState(start), Now: start.Add(65 * time.Second)}
	snap.TotalClicks = 130
	require.Equal(t, "01:05", snap.SessionTime())
	require.Equal(t, 120, snap.ClicksPerMinute())

	snap.Now = start
	require.Equal(t, 0, snap.ClicksPerMinute())

	snap.Count = 0
	require.InDelta(t, 50.0, snap.ProgressPercent(), 1e-9)
	snap.Count = 250
	require.InDelta(t, 100.0, snap.ProgressPercent(), 1e-9)
	snap.CurrentGoal = &model.Goal{Target: -20}
	snap.Count = -5
	require.InDelta(t, 25.0, snap.ProgressPercent(), 1e-9)
}

func TestDescribe(t *testing.T) {
	name, _ := Describe("big_range")
	require.Equal(t, "Extreme Range", name)
	name, _ = Describe(GoalMarkerPrefix + "123")
	require.Equal(t, "Goal Completed", name)
	name, desc := Describe("mystery")
	require.Equal(t, "Unknown", name)
	require.Equal(t, "Legacy achievement", desc)
}

func TestApplyDeltaInvariants(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		clock := &fakeClock{t: time.Unix(0, 0)}
		e := New(nil, WithClock(clock.Now), WithRand(rand.New(rand.NewSource(1))))

		n := rapid.IntRange(0, 60).Draw(rt, "n")
		maxSeen, minSeen := 0, 0
		prevHigh, prevLow := 0, 0
		for i := 0; i < n; i++ {
			clock.Advance(time.Duration(rapid.IntRange(0, 5000).Draw(rt, "gapMs")) * time.Millisecond)
			if rapid.Bool().Draw(rt, "reset") {
				e.Reset()
			} else {
				e.ApplyDelta(rapid.IntRange(-500, 500).Draw(rt, "delta"), model.ActionQuick)
			}
			st := e.State()
			if st.Count > maxSeen {
				maxSeen = st.Count
			}
			if st.Count < minSeen {
				minSeen = st.Count
			}
			if st.HighestValue < prevHigh || st.LowestValue > prevLow {
				rt.Fatalf("watermark moved backwards")
			}
			prevHigh, prevLow = st.HighestValue, st.LowestValue
			if len(st.History) > model.HistoryLimit {
				rt.Fatalf("history length %d", len(st.History))
			}
			if st.History[0].NewCount != st.Count {
				rt.Fatalf("newest history entry %d does not match count %d", st.History[0].NewCount, st.Count)
			}
		}
		st := e.State()
		if st.TotalClicks != n {
			rt.Fatalf("total clicks %d, want %d", st.TotalClicks, n)
		}
		if st.HighestValue != maxSeen || st.LowestValue != minSeen {
			rt.Fatalf("watermarks %d/%d, want %d/%d", st.HighestValue, st.LowestValue, maxSeen, minSeen)
		}
		seen := map[string]bool{}
		for _, id := range st.Achievements {
			if seen[id] {
				rt.Fatalf("achievement %s unlocked twice", id)
			}
			seen[id] = true
		}
	})
}
