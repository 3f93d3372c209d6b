// Package relative turns the per-car telemetry arrays into a ranked,
// gap-annotated driver list and the windowed view around the player.
package relative

import (
	"sort"

	"simrelative/pkg/irating"
	"simrelative/pkg/model"
	"simrelative/pkg/sessioninfo"
)

// PlaceholderBase is added to the car index of cars the simulator has not
// given an official position yet, so they sort behind every ranked car.
const PlaceholderBase = 1000

// track surface values reported in CarIdxTrackSurface
const (
	surfaceNotInWorld      = -1
	surfaceOffTrack        = 0
	surfaceInPitStall      = 1
	surfaceApproachingPits = 2
	surfaceOnTrack         = 3
	surfaceUnknown         = -2
)

// Telemetry is the part of irsdk.Client the engine reads from.
type Telemetry interface {
	IsSessionActive() bool
	SessionInfoUpdate() int
	SessionInfo() string
	Tick() int
	Int(name string, def int) int
	Float(name string, def float64) float64
	Ints(name string, def []int) []int
	Floats(name string, def []float64) []float64
	Bools(name string, def []bool) []bool
}

// Engine rebuilds the driver list on every Update. It is driven by a single
// loop and is not safe for concurrent use.
type Engine struct {
	telemetry Telemetry
	parse     func(string) sessioninfo.Descriptor

	parsed     bool
	lastUpdate int
	descriptor sessioninfo.Descriptor

	tick          int
	drivers       []model.Driver
	fieldStrength int
	lapInfo       model.LapInfo
	sessionNum    int
	incidents     int
	lastLap       float64
	bestLap       float64
}

func NewEngine(t Telemetry) *Engine {
	return &Engine{
		telemetry:  t,
		parse:      sessioninfo.Parse,
		sessionNum: -1,
	}
}

// Update takes one snapshot of the telemetry. An inactive session clears the
// list; a tick where the lap distance array cannot be read keeps the
// previous list.
func (e *Engine) Update() {
	t := e.telemetry
	if !t.IsSessionActive() {
		e.drivers = nil
		e.fieldStrength = 0
		return
	}

	if u := t.SessionInfoUpdate(); !e.parsed || u != e.lastUpdate {
		e.descriptor = e.parse(t.SessionInfo())
		e.lastUpdate = u
		e.parsed = true
	}

	e.tick = t.Tick()
	e.incidents = t.Int("PlayerCarMyIncidentCount", 0)
	e.lastLap = t.Float("LapLastLapTime", 0)
	e.bestLap = t.Float("LapBestLapTime", 0)
	e.sessionNum = t.Int("SessionNum", -1)
	e.lapInfo = model.LapInfo{
		CurrentLap:    t.Int("Lap", 0),
		TotalLaps:     e.totalLaps(),
		TimeRemaining: t.Float("SessionTimeRemain", 0),
	}

	pct := t.Floats("CarIdxLapDistPct", nil)
	if pct == nil {
		return
	}
	positions := t.Ints("CarIdxPosition", nil)
	lastLaps := t.Floats("CarIdxLastLapTime", nil)
	onPit := t.Bools("CarIdxOnPitRoad", nil)
	surfaces := t.Ints("CarIdxTrackSurface", nil)
	f2 := t.Floats("CarIdxF2Time", nil)
	laps := t.Ints("CarIdxLap", nil)
	player := t.Int("PlayerCarIdx", e.descriptor.PlayerCarIdx)

	drivers := make([]model.Driver, 0, len(pct))
	for idx, p := range pct {
		surface := at(surfaces, idx, surfaceUnknown)
		pos := at(positions, idx, 0)
		if !present(p, pos, surface) {
			continue
		}
		info, known := e.descriptor.Drivers[idx]
		if known && (info.IsSpectator || info.IsPaceCar) {
			continue
		}

		d := model.Driver{
			CarIdx:           idx,
			Position:         pos,
			OfficialPosition: pos,
			LapDistPct:       p,
			Lap:              at(laps, idx, 0),
			LastLapTime:      at(lastLaps, idx, 0),
			OnPitRoad:        at(onPit, idx, false),
			IsPlayer:         idx == player,
			Name:             info.UserName,
			CarNumber:        info.CarNumber,
			IRating:          info.IRating,
			License:          info.LicString,
			SafetyRating:     info.SafetyRating,
			CarClass:         info.CarClassShortName,
			CarBrand:         info.CarBrand,
		}
		if pos <= 0 {
			d.Position = PlaceholderBase + idx
		}
		drivers = append(drivers, d)
	}

	rank(drivers)

	ratings := make([]int, len(drivers))
	for i, d := range drivers {
		ratings[i] = d.IRating
	}
	e.fieldStrength = irating.FieldStrength(ratings)
	for i := range drivers {
		drivers[i].ProjectedDelta = irating.Project(drivers[i].IRating, e.fieldStrength, drivers[i].Position, len(drivers))
	}

	annotateGaps(drivers, f2, player)
	e.drivers = drivers
}

// present drops cars outside the world, cars with a negative lap fraction,
// and empty slots whose zero fraction and position are not backed by a
// surface reading.
func present(pct float64, pos, surface int) bool {
	if surface == surfaceNotInWorld || pct < 0 {
		return false
	}
	if pct == 0 && pos == 0 {
		switch surface {
		case surfaceInPitStall, surfaceApproachingPits, surfaceOnTrack:
			return true
		}
		return false
	}
	return true
}

// rank sorts by position, placeholders by descending lap progress, and
// renumbers the result densely from 1.
func rank(drivers []model.Driver) {
	sort.SliceStable(drivers, func(i, j int) bool {
		a, b := drivers[i], drivers[j]
		pa, pb := a.Position >= PlaceholderBase, b.Position >= PlaceholderBase
		switch {
		case pa && pb:
			if a.LapDistPct != b.LapDistPct {
				return a.LapDistPct > b.LapDistPct
			}
			return a.CarIdx < b.CarIdx
		case pa != pb:
			return pb
		case a.Position != b.Position:
			return a.Position < b.Position
		}
		return a.CarIdx < b.CarIdx
	})
	for i := range drivers {
		drivers[i].Position = i + 1
	}
}

func annotateGaps(drivers []model.Driver, f2 []float64, player int) {
	if len(drivers) == 0 || f2 == nil {
		return
	}
	leader := at(f2, drivers[0].CarIdx, 0)
	playerF2, hasPlayer := 0.0, false
	for _, d := range drivers {
		if d.CarIdx == player {
			playerF2, hasPlayer = at(f2, d.CarIdx, 0), true
			break
		}
	}
	for i := range drivers {
		own := at(f2, drivers[i].CarIdx, 0)
		drivers[i].GapToLeader = own - leader
		if hasPlayer {
			drivers[i].GapToPlayer = own - playerF2
		}
	}
}

func at[T any](s []T, i int, def T) T {
	if i < 0 || i >= len(s) {
		return def
	}
	return s[i]
}

func (e *Engine) totalLaps() int {
	if s, ok := e.descriptor.Session(e.sessionNum); ok {
		return s.Laps
	}
	return e.descriptor.TotalLaps
}

// Reset forgets the cached descriptor and the last list, for a new connection.
func (e *Engine) Reset() {
	*e = Engine{
		telemetry:  e.telemetry,
		parse:      e.parse,
		sessionNum: -1,
	}
}

// AllDrivers returns a copy of the ranked list.
func (e *Engine) AllDrivers() []model.Driver {
	return append([]model.Driver(nil), e.drivers...)
}

// Relative returns up to ahead+behind+1 drivers around the player. Near the
// ends of the list the window slides instead of shrinking. Without a player
// the first ahead+behind drivers are returned.
func (e *Engine) Relative(ahead, behind int) []model.Driver {
	n := len(e.drivers)
	if n == 0 {
		return nil
	}
	ahead, behind = max(ahead, 0), max(behind, 0)

	p := -1
	for i, d := range e.drivers {
		if d.IsPlayer {
			p = i
			break
		}
	}
	if p < 0 {
		return append([]model.Driver(nil), e.drivers[:min(n, ahead+behind)]...)
	}

	size := min(n, ahead+behind+1)
	start := max(p-behind, 0)
	if start+size > n {
		start = n - size
	}
	return append([]model.Driver(nil), e.drivers[start:start+size]...)
}

func (e *Engine) SeriesName() string {
	return e.descriptor.SeriesName
}

// TrackName prefers the display name.
func (e *Engine) TrackName() string {
	if e.descriptor.TrackDisplayName != "" {
		return e.descriptor.TrackDisplayName
	}
	return e.descriptor.TrackName
}

// SessionType is the type of the running session, e.g. "Race".
func (e *Engine) SessionType() string {
	s, _ := e.descriptor.Session(e.sessionNum)
	return s.Type
}

func (e *Engine) LapInfo() model.LapInfo {
	return e.lapInfo
}

func (e *Engine) FieldStrength() int {
	return e.fieldStrength
}

func (e *Engine) PlayerIncidents() int {
	return e.incidents
}

func (e *Engine) PlayerLastLap() float64 {
	return e.lastLap
}

func (e *Engine) PlayerBestLap() float64 {
	return e.bestLap
}

func (e *Engine) Snapshot(ahead, behind int) model.Snapshot {
	return model.Snapshot{
		Tick:            e.tick,
		SeriesName:      e.SeriesName(),
		TrackName:       e.TrackName(),
		FieldStrength:   e.fieldStrength,
		LapInfo:         e.lapInfo,
		PlayerIncidents: e.incidents,
		PlayerLastLap:   e.lastLap,
		PlayerBestLap:   e.bestLap,
		Drivers:         e.AllDrivers(),
		Relative:        e.Relative(ahead, behind),
	}
}
