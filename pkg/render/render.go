// Package render draws driver lists as terminal tables.
package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"simrelative/pkg/helper"
	"simrelative/pkg/model"
)

const playerMark = "▸"

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

func marker(d model.Driver) string {
	if d.IsPlayer {
		return playerMark
	}
	return ""
}

func pit(d model.Driver) string {
	if d.OnPitRoad {
		return "PIT"
	}
	return ""
}

// Relative draws the window around the player with gaps to the player.
func Relative(w io.Writer, drivers []model.Driver) {
	t := newTable(w)
	t.AppendHeader(table.Row{"", "P", "#", "Driver", "Lic", "iR", "Δ", "Gap", ""})
	for _, d := range drivers {
		t.AppendRow(table.Row{
			marker(d),
			d.Position,
			d.CarNumber,
			d.Name,
			d.License,
			d.IRating,
			helper.DeltaToString(d.ProjectedDelta),
			helper.SecondsToGap(d.GapToPlayer),
			pit(d),
		})
	}
	t.Render()
}

// Standings draws the whole field with gaps to the leader.
func Standings(w io.Writer, drivers []model.Driver) {
	t := newTable(w)
	t.AppendHeader(table.Row{"", "P", "Driver", "Car", "Class", "Lap", "Last", "Leader", "iR", "Δ"})
	for _, d := range drivers {
		t.AppendRow(table.Row{
			marker(d),
			d.Position,
			helper.GetDriverCodeName(d.Name),
			d.CarBrand,
			d.CarClass,
			d.Lap,
			helper.SecondsToMinutes(d.LastLapTime),
			helper.SecondsToGap(d.GapToLeader),
			d.IRating,
			helper.DeltaToString(d.ProjectedDelta),
		})
	}
	t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d cars", len(drivers))})
	t.Render()
}

// Header prints the session line shown above the tables.
func Header(w io.Writer, s model.Snapshot) {
	fmt.Fprintf(w, "%s @ %s  SoF %d  Lap %s  %s left  Inc %dx  Last %s  Best %s\n",
		s.SeriesName, s.TrackName, s.FieldStrength,
		helper.LapsToString(s.LapInfo.CurrentLap, s.LapInfo.TotalLaps),
		helper.SecondsToHoursAndMinutes(s.LapInfo.TimeRemaining),
		s.PlayerIncidents,
		helper.SecondsToMinutes(s.PlayerLastLap), helper.SecondsToMinutes(s.PlayerBestLap))
}

// Snapshot prints the header followed by the relative table.
func Snapshot(w io.Writer, s model.Snapshot) {
	Header(w, s)
	Relative(w, s.Relative)
}
