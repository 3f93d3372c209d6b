package render

import (
	"bytes"
	"strings"
	"testing"

	"simrelative/pkg/model"
	"simrelative/pkg/sessioninfo"
)

var drivers = []model.Driver{
	{CarIdx: 4, Position: 1, Name: "Alice Smith", CarNumber: "11", IRating: 2400, License: "A 4.10", SafetyRating: 4.1, GapToPlayer: -2.5, ProjectedDelta: 40},
	{CarIdx: 2, Position: 2, Name: "Me Myself", CarNumber: "7", IRating: 1800, License: "B 2.50", SafetyRating: 2.5, IsPlayer: true},
	{CarIdx: 9, Position: 3, Name: "Bob Jones", CarNumber: "3", IRating: 1200, GapToPlayer: 1.25, OnPitRoad: true, ProjectedDelta: -12},
}

func TestRelative(t *testing.T) {
	var b bytes.Buffer
	Relative(&b, drivers)
	out := b.String()

	for _, want := range []string{"Alice Smith", "Me Myself", "+40", "-12", "-2.500s", "+1.250s", "PIT", playerMark, "B 2.50"} {
		if !strings.Contains(out, want) {
			t.Errorf("relative table missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "B 2.50 2.50") {
		t.Errorf("safety rating printed twice:\n%s", out)
	}
	if strings.Index(out, "Alice Smith") > strings.Index(out, "Bob Jones") {
		t.Error("rows should keep the given order")
	}
}

func TestRelativeLicenseFromDescriptor(t *testing.T) {
	d := sessioninfo.Parse("DriverInfo:\n Drivers:\n - CarIdx: 3\n   UserName: Jane Doe\n   LicString: A 3.41\n")
	info := d.Drivers[3]

	var b bytes.Buffer
	Relative(&b, []model.Driver{{CarIdx: 3, Position: 1, Name: info.UserName, License: info.LicString, SafetyRating: info.SafetyRating, IsPlayer: true}})
	out := b.String()
	if !strings.Contains(out, "A 3.41") || strings.Contains(out, "3.41 3.41") {
		t.Errorf("license column:\n%s", out)
	}
}

func TestStandings(t *testing.T) {
	var b bytes.Buffer
	Standings(&b, drivers)
	out := b.String()
	for _, want := range []string{"ASM", "MMY", "BJO", "3 CARS"} {
		if !strings.Contains(strings.ToUpper(out), want) {
			t.Errorf("standings table missing %q:\n%s", want, out)
		}
	}
}

func TestSnapshotHeader(t *testing.T) {
	var b bytes.Buffer
	Snapshot(&b, model.Snapshot{
		SeriesName:    "GT Sprint",
		TrackName:     "Spa",
		FieldStrength: 1800,
		LapInfo:       model.LapInfo{CurrentLap: 4, TotalLaps: -1, TimeRemaining: 1800},
		Relative:      drivers,
	})
	out := b.String()
	for _, want := range []string{"GT Sprint @ Spa", "SoF 1800", "Lap 4 ", "00h 30m left"} {
		if !strings.Contains(out, want) {
			t.Errorf("snapshot output missing %q:\n%s", want, out)
		}
	}
}
