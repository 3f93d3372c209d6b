// Package sessioninfo decodes the session descriptor text the simulator
// embeds in its telemetry region.
package sessioninfo

import (
	"strconv"
	"strings"
)

// Unlimited marks a lap or time limit the descriptor reports as "unlimited".
const Unlimited = -1

type DriverInfo struct {
	CarIdx            int
	UserName          string
	CarNumber         string
	IRating           int
	LicLevel          int // license band 0 (R) .. 4 (A)
	LicSubLevel       int
	LicString         string
	SafetyRating      float64
	CarPath           string
	CarBrand          string
	CarClassShortName string
	ClubName          string
	IsSpectator       bool
	IsPaceCar         bool
}

type Session struct {
	Num  int
	Type string
	Name string
	Laps int     // Unlimited or a lap count
	Time float64 // seconds, or Unlimited
}

type Descriptor struct {
	SeriesName       string
	TrackName        string
	TrackDisplayName string
	TrackLength      float64 // km
	TotalLaps        int
	TotalTime        float64
	PlayerCarIdx     int
	Sessions         []Session
	Drivers          map[int]DriverInfo
}

// Session returns the session numbered num.
func (d Descriptor) Session(num int) (Session, bool) {
	for _, s := range d.Sessions {
		if s.Num == num {
			return s, true
		}
	}
	return Session{}, false
}

// LicenseBand folds the simulator's raw license level (1..20, four sublevels
// per class) into a class band from 0 (rookie) to 4 (A). Pro levels clamp to A.
func LicenseBand(level int) int {
	band := (level - 1) / 4
	if band < 0 {
		return 0
	}
	if band > 4 {
		return 4
	}
	return band
}

// SafetyRating extracts the numeric part of a license string like "A 3.41".
func SafetyRating(lic string) float64 {
	fields := strings.Fields(lic)
	if len(fields) < 2 {
		return 0
	}
	sr, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0
	}
	return sr
}

var brands = []struct{ prefix, name string }{
	{"astonmartin", "Aston Martin"},
	{"mercedes", "Mercedes"},
	{"lamborghini", "Lamborghini"},
	{"chevrolet", "Chevrolet"},
	{"mclaren", "McLaren"},
	{"ferrari", "Ferrari"},
	{"porsche", "Porsche"},
	{"cadillac", "Cadillac"},
	{"dallara", "Dallara"},
	{"hyundai", "Hyundai"},
	{"radical", "Radical"},
	{"toyota", "Toyota"},
	{"nissan", "Nissan"},
	{"lotus", "Lotus"},
	{"mazda", "Mazda"},
	{"acura", "Acura"},
	{"honda", "Honda"},
	{"audi", "Audi"},
	{"ford", "Ford"},
	{"bmw", "BMW"},
	{"mx5", "Mazda"},
	{"vw", "Volkswagen"},
}

// CarBrand guesses the manufacturer from a car model path such as
// "ferrari296gt3" or "mx5 mx52016". Unknown paths yield their first token.
func CarBrand(path string) string {
	token := strings.ToLower(strings.TrimSpace(path))
	if i := strings.IndexAny(token, " _\\/"); i >= 0 {
		token = token[:i]
	}
	if token == "" {
		return ""
	}
	for _, b := range brands {
		if strings.HasPrefix(token, b.prefix) {
			return b.name
		}
	}
	return token
}
