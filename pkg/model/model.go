package model

import "fmt"

// Driver is one ranked car as seen on a single tick.
type Driver struct {
	CarIdx           int     `json:"carIdx"`
	Position         int     `json:"position"`
	OfficialPosition int     `json:"officialPosition"`
	LapDistPct       float64 `json:"lapDistPct"`
	Lap              int     `json:"lap"`
	LastLapTime      float64 `json:"lastLapTime"`
	OnPitRoad        bool    `json:"onPitRoad"`
	IsPlayer         bool    `json:"isPlayer"`
	Name             string  `json:"name"`
	CarNumber        string  `json:"carNumber"`
	IRating          int     `json:"iRating"`
	License          string  `json:"license"`
	SafetyRating     float64 `json:"safetyRating"`
	CarClass         string  `json:"carClass"`
	CarBrand         string  `json:"carBrand"`
	GapToLeader      float64 `json:"gapToLeader"`
	GapToPlayer      float64 `json:"gapToPlayer"`
	ProjectedDelta   int     `json:"projectedDelta"`
}

type LapInfo struct {
	CurrentLap    int     `json:"currentLap"`
	TotalLaps     int     `json:"totalLaps"` // -1 when unlimited
	TimeRemaining float64 `json:"timeRemaining"`
}

// Snapshot bundles everything a consumer renders for one tick.
type Snapshot struct {
	Tick            int      `json:"tick"`
	SeriesName      string   `json:"seriesName"`
	TrackName       string   `json:"trackName"`
	FieldStrength   int      `json:"fieldStrength"`
	LapInfo         LapInfo  `json:"lapInfo"`
	PlayerIncidents int      `json:"playerIncidents"`
	PlayerLastLap   float64  `json:"playerLastLap"`
	PlayerBestLap   float64  `json:"playerBestLap"`
	Drivers         []Driver `json:"drivers"`
	Relative        []Driver `json:"relative"`
}

type SessionStarted struct {
	SeriesName    string `json:"seriesName"`
	TrackName     string `json:"trackName"`
	SessionType   string `json:"sessionType"`
	FieldStrength int    `json:"fieldStrength"`
	FieldSize     int    `json:"fieldSize"`
}

func (ss SessionStarted) String() string {
	return fmt.Sprintf("  ▸ Series: %s\n  ▸ Session: %s\n  ▸ Track: %s\n  ▸ SoF: %d (%d cars)",
		ss.SeriesName, ss.SessionType, ss.TrackName, ss.FieldStrength, ss.FieldSize)
}
