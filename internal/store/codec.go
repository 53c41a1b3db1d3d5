package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/verte-zerg/tapcount/internal/model"
)

type historyJSON struct {
	Action    string `json:"action"`
	Value     int    `json:"value"`
	NewCount  int    `json:"newCount"`
	Timestamp string `json:"timestamp"`
}

type goalJSON struct {
	Target     int   `json:"target"`
	StartValue int   `json:"startValue"`
	StartTime  int64 `json:"startTime"`
	Completed  bool  `json:"completed,omitempty"`
}

type challengeJSON struct {
	Name   string `json:"name"`
	Target int    `json:"target"`
	Type   string `json:"type"`
}

type speedJSON struct {
	StartTime   int64 `json:"startTime"`
	StartClicks int   `json:"startClicks"`
	Duration    int64 `json:"duration"`
}

type precisionJSON struct {
	Target     int `json:"target"`
	StartValue int `json:"startValue"`
	Attempts   int `json:"attempts"`
}

// stateJSON is the stored document. Times are Unix milliseconds.
type stateJSON struct {
	Count            int           `json:"count"`
	TotalClicks      int           `json:"totalClicks"`
	HighestValue     int           `json:"highestValue"`
	LowestValue      int           `json:"lowestValue"`
	SessionStartTime int64         `json:"sessionStartTime"`
	Achievements     []string      `json:"achievements"`
	History          []historyJSON `json:"history"`
	CurrentGoal      *goalJSON     `json:"currentGoal"`
	GameMode         *string       `json:"gameMode"`
	GameData         any           `json:"gameData"`
	SavedAt          string        `json:"savedAt,omitempty"`
	ExportedAt       string        `json:"exportedAt,omitempty"`
	Version          string        `json:"version,omitempty"`
}

func toJSON(st model.State) stateJSON {
	out := stateJSON{
		Count:            st.Count,
		TotalClicks:      st.TotalClicks,
		HighestValue:     st.HighestValue,
		LowestValue:      st.LowestValue,
		SessionStartTime: st.SessionStartTime.UnixMilli(),
		Achievements:     append([]string{}, st.Achievements...),
		History:          make([]historyJSON, 0, len(st.History)),
		GameData:         struct{}{},
	}
	for _, h := range st.History {
		out.History = append(out.History, historyJSON{
			Action:    string(h.Action),
			Value:     h.Value,
			NewCount:  h.NewCount,
			Timestamp: h.Timestamp.Format(time.RFC3339Nano),
		})
	}
	if g := st.CurrentGoal; g != nil {
		out.CurrentGoal = &goalJSON{
			Target:     g.Target,
			StartValue: g.StartValue,
			StartTime:  g.StartTime.UnixMilli(),
			Completed:  g.Completed,
		}
	}
	if game := st.Game; game != nil && game.Mode != model.ModeNone {
		mode := string(game.Mode)
		out.GameMode = &mode
		switch {
		case game.Challenge != nil:
			out.GameData = challengeJSON{Name: game.Challenge.Name, Target: game.Challenge.Target, Type: string(game.Challenge.Type)}
		case game.Speed != nil:
			out.GameData = speedJSON{
				StartTime:   game.Speed.StartTime.UnixMilli(),
				StartClicks: game.Speed.StartClicks,
				Duration:    game.Speed.Duration.Milliseconds(),
			}
		case game.Precision != nil:
			out.GameData = precisionJSON{Target: game.Precision.Target, StartValue: game.Precision.StartValue, Attempts: game.Precision.Attempts}
		}
	}
	return out
}

// decodeState merges the document in data over base. Each field is decoded on its
// own; a field with the wrong type keeps the base value and its name is returned
// in rejected. Only a document that is not a JSON object is an error.
func decodeState(data []byte, base model.State) (st model.State, rejected []string, err error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return base, nil, fmt.Errorf("saved data is not a JSON object: %w", err)
	}
	st = base.Clone()
	reject := func(name string) { rejected = append(rejected, name) }

	decodeInt := func(name string, target *int, valid func(int) bool) {
		raw, ok := fields[name]
		if !ok || isNull(raw) {
			return
		}
		var v int
		if err := json.Unmarshal(raw, &v); err != nil || (valid != nil && !valid(v)) {
			reject(name)
			return
		}
		*target = v
	}
	nonNegative := func(v int) bool { return v >= 0 }
	decodeInt("count", &st.Count, nil)
	decodeInt("totalClicks", &st.TotalClicks, nonNegative)
	decodeInt("highestValue", &st.HighestValue, nil)
	decodeInt("lowestValue", &st.LowestValue, nil)

	if raw, ok := fields["achievements"]; ok && !isNull(raw) {
		var ids []string
		if err := json.Unmarshal(raw, &ids); err != nil {
			reject("achievements")
		} else {
			st.Achievements = ids
		}
	}

	if raw, ok := fields["history"]; ok && !isNull(raw) {
		history, ok := decodeHistory(raw)
		if !ok {
			reject("history")
		} else {
			st.History = history
		}
	}

	if raw, ok := fields["currentGoal"]; ok {
		if isNull(raw) {
			st.CurrentGoal = nil
		} else {
			var g goalJSON
			if err := json.Unmarshal(raw, &g); err != nil {
				reject("currentGoal")
			} else {
				st.CurrentGoal = &model.Goal{
					Target:     g.Target,
					StartValue: g.StartValue,
					StartTime:  time.UnixMilli(g.StartTime),
					Completed:  g.Completed,
				}
			}
		}
	}

	if raw, ok := fields["gameMode"]; ok {
		game, ok := decodeGame(raw, fields["gameData"])
		if !ok {
			reject("gameMode")
		} else {
			st.Game = game
		}
	}

	return st, rejected, nil
}

func decodeHistory(raw json.RawMessage) ([]model.HistoryEntry, bool) {
	var entries []historyJSON
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false
	}
	out := make([]model.HistoryEntry, 0, len(entries))
	for _, h := range entries {
		action := model.Action(h.Action)
		if !action.Valid() {
			return nil, false
		}
		ts, err := time.Parse(time.RFC3339Nano, h.Timestamp)
		if err != nil {
			ts = time.Time{}
		}
		out = append(out, model.HistoryEntry{Action: action, Value: h.Value, NewCount: h.NewCount, Timestamp: ts})
	}
	if len(out) > model.HistoryLimit {
		out = out[:model.HistoryLimit]
	}
	return out, true
}

func decodeGame(modeRaw, dataRaw json.RawMessage) (*model.MiniGame, bool) {
	if isNull(modeRaw) {
		return nil, true
	}
	var mode string
	if err := json.Unmarshal(modeRaw, &mode); err != nil {
		return nil, false
	}
	if mode == "" {
		return nil, true
	}
	if len(dataRaw) == 0 || isNull(dataRaw) {
		return nil, false
	}
	switch model.GameMode(mode) {
	case model.ModeChallenge:
		var c challengeJSON
		if err := json.Unmarshal(dataRaw, &c); err != nil {
			return nil, false
		}
		ct := model.ChallengeType(c.Type)
		if ct != model.ChallengeExact && ct != model.ChallengeAbove && ct != model.ChallengeBelow {
			return nil, false
		}
		return &model.MiniGame{Mode: model.ModeChallenge, Challenge: &model.Challenge{Name: c.Name, Target: c.Target, Type: ct}}, true
	case model.ModeSpeed:
		var s speedJSON
		if err := json.Unmarshal(dataRaw, &s); err != nil || s.Duration <= 0 {
			return nil, false
		}
		return &model.MiniGame{Mode: model.ModeSpeed, Speed: &model.SpeedTest{
			StartTime:   time.UnixMilli(s.StartTime),
			StartClicks: s.StartClicks,
			Duration:    time.Duration(s.Duration) * time.Millisecond,
		}}, true
	case model.ModePrecision:
		var p precisionJSON
		if err := json.Unmarshal(dataRaw, &p); err != nil || p.Attempts < 0 {
			return nil, false
		}
		return &model.MiniGame{Mode: model.ModePrecision, Precision: &model.PrecisionTest{Target: p.Target, StartValue: p.StartValue, Attempts: p.Attempts}}, true
	default:
		return nil, false
	}
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
