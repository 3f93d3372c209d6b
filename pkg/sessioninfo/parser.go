package sessioninfo

import (
	"strconv"
	"strings"
)

type section int

const (
	sectionNone section = iota
	sectionWeekend
	sectionDriverInfo
	sectionSessionInfo
)

type listState int

const (
	notInList listState = iota
	inList
	buildingRecord
)

type parser struct {
	d Descriptor

	section       section
	sectionIndent int
	seriesID      string

	state        listState
	listIndent   int
	fieldIndent  int
	ordinal      int
	driver       DriverInfo
	driverHasIdx bool
	session      Session
}

// Parse decodes a descriptor in one top-to-bottom scan. Fields that are
// missing or fail to parse are left at their zero value.
func Parse(text string) Descriptor {
	p := &parser{
		d: Descriptor{
			PlayerCarIdx: -1,
			Drivers:      map[int]DriverInfo{},
		},
		sectionIndent: -1,
	}
	for _, line := range strings.Split(text, "\n") {
		p.line(strings.TrimRight(line, "\r"))
	}
	p.flush()
	p.state = notInList

	if p.d.SeriesName == "" && p.seriesID != "" {
		p.d.SeriesName = p.seriesID
	}
	if n := len(p.d.Sessions); n > 0 {
		last := p.d.Sessions[n-1]
		p.d.TotalLaps = last.Laps
		p.d.TotalTime = last.Time
	}
	return p.d
}

func (p *parser) line(line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || trimmed == "---" || trimmed == "..." {
		return
	}
	indent := len(line) - len(strings.TrimLeft(line, " "))

	if indent == 0 {
		p.flush()
		p.state = notInList
		p.sectionIndent = -1
		key, _ := splitKV(trimmed)
		switch key {
		case "WeekendInfo":
			p.section = sectionWeekend
		case "DriverInfo":
			p.section = sectionDriverInfo
		case "SessionInfo":
			p.section = sectionSessionInfo
		default:
			p.section = sectionNone
		}
		return
	}
	if p.section == sectionNone {
		return
	}

	if trimmed == "-" || strings.HasPrefix(trimmed, "- ") {
		p.item(indent, strings.TrimSpace(strings.TrimPrefix(trimmed, "-")))
		return
	}

	key, value := splitKV(trimmed)
	switch p.state {
	case buildingRecord:
		if indent > p.listIndent {
			if indent == p.fieldIndent {
				p.field(key, value)
			}
			return
		}
		p.flush()
		p.state = notInList
	case inList:
		if indent > p.listIndent {
			return
		}
		p.state = notInList
	}

	if p.sectionIndent < 0 {
		p.sectionIndent = indent
	}
	if indent != p.sectionIndent {
		return
	}
	if value == "" && p.isListKey(key) {
		p.state = inList
		p.listIndent = indent
		return
	}
	p.sectionField(key, value)
}

// item handles a "- " line: a new record at the list's item indent, a nested
// list entry deeper than that, or the end of the list when shallower.
func (p *parser) item(indent int, rest string) {
	switch p.state {
	case notInList:
		return
	case buildingRecord:
		if indent > p.itemIndent() {
			return
		}
		p.flush()
		if indent < p.itemIndent() {
			p.state = notInList
			return
		}
	case inList:
		if indent < p.listIndent {
			p.state = notInList
			return
		}
		p.listIndent = indent
	}
	p.start(indent)
	if rest != "" {
		p.field(splitKV(rest))
	}
}

func (p *parser) itemIndent() int {
	return p.fieldIndent - 2
}

func (p *parser) isListKey(key string) bool {
	switch p.section {
	case sectionDriverInfo:
		return key == "Drivers"
	case sectionSessionInfo:
		return key == "Sessions"
	}
	return false
}

func (p *parser) start(indent int) {
	p.state = buildingRecord
	p.fieldIndent = indent + 2
	p.driver = DriverInfo{}
	p.driverHasIdx = false
	p.session = Session{}
}

// flush stores the in-progress record, if any.
func (p *parser) flush() {
	if p.state != buildingRecord {
		return
	}
	p.state = inList
	switch p.section {
	case sectionDriverInfo:
		d := p.driver
		if !p.driverHasIdx {
			d.CarIdx = p.ordinal
		}
		d.SafetyRating = SafetyRating(d.LicString)
		d.CarBrand = CarBrand(d.CarPath)
		p.d.Drivers[d.CarIdx] = d
		p.ordinal++
	case sectionSessionInfo:
		p.d.Sessions = append(p.d.Sessions, p.session)
	}
}

func (p *parser) sectionField(key, value string) {
	switch p.section {
	case sectionWeekend:
		switch key {
		case "TrackName":
			p.d.TrackName = value
		case "TrackDisplayName":
			p.d.TrackDisplayName = value
		case "TrackLength":
			p.d.TrackLength = leadingFloat(value)
		case "SeriesName":
			p.d.SeriesName = value
		case "SeriesID":
			p.seriesID = value
		}
	case sectionDriverInfo:
		if key == "DriverCarIdx" {
			p.d.PlayerCarIdx = atoi(value)
		}
	}
}

func (p *parser) field(key, value string) {
	switch p.section {
	case sectionDriverInfo:
		p.driverField(key, value)
	case sectionSessionInfo:
		p.sessionField(key, value)
	}
}

func (p *parser) driverField(key, value string) {
	d := &p.driver
	switch key {
	case "CarIdx":
		d.CarIdx = atoi(value)
		p.driverHasIdx = true
	case "UserName":
		d.UserName = value
	case "CarNumber":
		d.CarNumber = value
	case "IRating":
		d.IRating = atoi(value)
	case "LicLevel":
		d.LicLevel = LicenseBand(atoi(value))
	case "LicSubLevel":
		d.LicSubLevel = atoi(value)
	case "LicString":
		d.LicString = value
	case "CarPath":
		d.CarPath = value
	case "CarClassShortName":
		d.CarClassShortName = value
	case "ClubName":
		d.ClubName = value
	case "IsSpectator":
		d.IsSpectator = atoi(value) != 0
	case "CarIsPaceCar":
		d.IsPaceCar = atoi(value) != 0
	}
}

func (p *parser) sessionField(key, value string) {
	s := &p.session
	switch key {
	case "SessionNum":
		s.Num = atoi(value)
	case "SessionType":
		s.Type = value
	case "SessionName":
		s.Name = value
	case "SessionLaps":
		if strings.EqualFold(value, "unlimited") {
			s.Laps = Unlimited
		} else {
			s.Laps = atoi(value)
		}
	case "SessionTime":
		if strings.EqualFold(value, "unlimited") {
			s.Time = Unlimited
		} else {
			s.Time = leadingFloat(value)
		}
	}
}

// splitKV splits on the first colon and strips one pair of quotes from the
// value.
func splitKV(s string) (string, string) {
	i := strings.IndexByte(s, ':')
	if i < 0 {
		return strings.TrimSpace(s), ""
	}
	key := strings.TrimSpace(s[:i])
	value := strings.TrimSpace(s[i+1:])
	if n := len(value); n >= 2 {
		if (value[0] == '"' && value[n-1] == '"') || (value[0] == '\'' && value[n-1] == '\'') {
			value = value[1 : n-1]
		}
	}
	return key, value
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// leadingFloat parses values like "600.0000 sec" or "3.70 km".
func leadingFloat(s string) float64 {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0
	}
	f, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0
	}
	return f
}
