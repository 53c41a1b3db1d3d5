package engine

import (
	"fmt"
	"time"

	"github.com/verte-zerg/tapcount/internal/log"
	"github.com/verte-zerg/tapcount/internal/model"
)

// Precision targets are drawn from [precisionMin, precisionMin+precisionSpan).
const (
	precisionMin  = -100
	precisionSpan = 200
)

var challenges = []model.Challenge{
	{Name: "Reach exactly 42", Target: 42, Type: model.ChallengeExact},
	{Name: "Get to -25", Target: -25, Type: model.ChallengeExact},
	{Name: "Reach any number above 200", Target: 200, Type: model.ChallengeAbove},
	{Name: "Go below -50", Target: -50, Type: model.ChallengeBelow},
}

// Challenges returns the fixed challenge pool.
func Challenges() []model.Challenge {
	return append([]model.Challenge{}, challenges...)
}

// replaceGame drops any running minigame, cancelling its timer first.
func (e *Engine) replaceGame(game *model.MiniGame) {
	e.cancel(TimerSpeedTick)
	if prev := e.state.Mode(); prev != model.ModeNone {
		log.Debug(log.CatEngine, "minigame replaced", "previous", prev)
	}
	e.state.Game = game
}

// StartChallenge starts a random challenge.
func (e *Engine) StartChallenge() model.Challenge {
	c := challenges[e.rnd.Intn(len(challenges))]
	e.replaceGame(&model.MiniGame{Mode: model.ModeChallenge, Challenge: &c})
	e.setStatus("Challenge: " + c.Name)
	e.sink.Notify("🎲 Challenge: " + c.Name)
	return c
}

// StartSpeedTest starts a 30 second click race.
func (e *Engine) StartSpeedTest() {
	e.replaceGame(&model.MiniGame{
		Mode: model.ModeSpeed,
		Speed: &model.SpeedTest{
			StartTime:   e.now(),
			StartClicks: e.state.TotalClicks,
			Duration:    SpeedTestDuration,
		},
	})
	e.setStatus(fmt.Sprintf("Speed Test: Click as fast as you can! (%ds)", int(SpeedTestDuration/time.Second)))
	e.schedule(TimerSpeedTick, SpeedTickInterval)
}

// StartPrecisionTest starts a run to hit a random exact value.
func (e *Engine) StartPrecisionTest() int {
	target := e.rnd.Intn(precisionSpan) + precisionMin
	e.replaceGame(&model.MiniGame{
		Mode: model.ModePrecision,
		Precision: &model.PrecisionTest{
			Target:     target,
			StartValue: e.state.Count,
		},
	})
	e.setStatus(fmt.Sprintf("Precision Test: Reach exactly %d (Currently: %d)", target, e.state.Count))
	e.sink.Notify(fmt.Sprintf("🎯 Precision Test: Reach exactly %d", target))
	return target
}

// CheckGameProgress evaluates the active minigame after a counter action.
func (e *Engine) CheckGameProgress() bool {
	game := e.state.Game
	if game == nil {
		return false
	}
	switch game.Mode {
	case model.ModeChallenge:
		if game.Challenge == nil || !challengeMet(*game.Challenge, e.state.Count) {
			return false
		}
		e.state.Game = nil
		e.setStatus("Challenge Complete! 🎉")
		e.sink.Notify("🏆 Challenge Completed!")
		return true
	case model.ModePrecision:
		p := game.Precision
		if p == nil {
			return false
		}
		p.Attempts++
		if e.state.Count != p.Target {
			e.setStatus(fmt.Sprintf("Precision Test: Reach exactly %d (Currently: %d, Attempts: %d)", p.Target, e.state.Count, p.Attempts))
			return false
		}
		e.state.Game = nil
		e.setStatus(fmt.Sprintf("Precision Test Complete! 🎯 (%d attempts)", p.Attempts))
		e.sink.Notify(fmt.Sprintf("🎯 Precision Complete in %d attempts!", p.Attempts))
		return true
	default:
		return false
	}
}

func challengeMet(c model.Challenge, count int) bool {
	switch c.Type {
	case model.ChallengeExact:
		return count == c.Target
	case model.ChallengeAbove:
		return count > c.Target
	case model.ChallengeBelow:
		return count < c.Target
	default:
		return false
	}
}

func (e *Engine) tickSpeedTest() {
	game := e.state.Game
	if game == nil || game.Mode != model.ModeSpeed || game.Speed == nil {
		return
	}
	sp := game.Speed
	total := int(sp.Duration / time.Second)
	remaining := total - int(e.now().Sub(sp.StartTime)/time.Second)
	if remaining > 0 {
		e.setStatus(fmt.Sprintf("Speed Test: %ds remaining", remaining))
		e.schedule(TimerSpeedTick, SpeedTickInterval)
		return
	}
	clicks := e.state.TotalClicks - sp.StartClicks
	e.state.Game = nil
	log.Info(log.CatEngine, "speed test finished", "clicks", clicks)
	e.setStatus(fmt.Sprintf("Speed Test Complete! You clicked %d times in %d seconds!", clicks, total))
	e.sink.Notify(fmt.Sprintf("⚡ Speed Test: %d clicks in %ds!", clicks, total))
}
