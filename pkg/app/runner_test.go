package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"simrelative/pkg/caster"
	"simrelative/pkg/config"
	"simrelative/pkg/irsdk"
	"simrelative/pkg/irsdk/irsdktest"
	"simrelative/pkg/model"
	"simrelative/pkg/pubsub"
)

const descriptor = `WeekendInfo:
 TrackDisplayName: Okayama Full Course
 SeriesName: Rookie Cup
SessionInfo:
 Sessions:
 - SessionNum: 0
   SessionType: Race
   SessionLaps: 10
DriverInfo:
 DriverCarIdx: 1
 Drivers:
 - CarIdx: 0
   UserName: Front Runner
   IRating: 1600
 - CarIdx: 1
   UserName: Me
   IRating: 1400
 - CarIdx: 2
   UserName: Backmarker
   IRating: 1500
`

func buildRegion() *irsdktest.Region {
	r := irsdktest.NewBuilder().
		Var("PlayerCarIdx", irsdk.TypeInt, 1).
		Var("SessionNum", irsdk.TypeInt, 1).
		Var("CarIdxPosition", irsdk.TypeInt, 4).
		Var("CarIdxTrackSurface", irsdk.TypeInt, 4).
		Var("CarIdxLapDistPct", irsdk.TypeFloat, 4).
		Var("CarIdxF2Time", irsdk.TypeFloat, 4).
		Build()
	for buf := 0; buf < irsdk.MaxBufs; buf++ {
		r.SetInt(buf, "PlayerCarIdx", 0, 1)
		for car, pct := range []float32{0.9, 0.8, 0.7, -1} {
			r.SetInt(buf, "CarIdxPosition", car, int32(car+1))
			r.SetInt(buf, "CarIdxTrackSurface", car, 3)
			r.SetFloat(buf, "CarIdxLapDistPct", car, pct)
			r.SetFloat(buf, "CarIdxF2Time", car, float32(car)*2)
		}
	}
	r.SetSessionInfo(descriptor, 1)
	return r
}

type recorder struct {
	mu    sync.Mutex
	snaps []model.Snapshot
}

func (rec *recorder) add(s model.Snapshot) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.snaps = append(rec.snaps, s)
}

func (rec *recorder) last() (model.Snapshot, int) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.snaps) == 0 {
		return model.Snapshot{}, 0
	}
	return rec.snaps[len(rec.snaps)-1], len(rec.snaps)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func newRunner(opener irsdk.Opener) (*Runner, *pubsub.PubSub[string], *pubsub.PubSub[model.SessionStarted]) {
	client := irsdk.NewClient(irsdk.WithOpener(opener), irsdk.WithSignalName(""), irsdk.WithPollInterval(time.Millisecond))
	snapshots := pubsub.NewPubSub[string]()
	events := pubsub.NewPubSub[model.SessionStarted]()
	cfg := config.TelemetryConfig{PollTimeout: 5 * time.Millisecond, Reconnect: 20 * time.Millisecond}
	return NewRunner(client, cfg, snapshots, events), snapshots, events
}

func TestRunnerPublishesSnapshotsAndSessionStart(t *testing.T) {
	region := buildRegion()
	region.SetActive(true)
	region.SetTick(0, 1)

	r, snapshots, events := newRunner(&irsdktest.Opener{Region: region})
	r.SetWindow(0, 1)
	feed := snapshots.Subscribe(pubsub.TopicRelative)
	started := events.Subscribe(pubsub.TopicSessionStarted)
	rec := &recorder{}
	r.OnSnapshot(rec.add)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	select {
	case ss := <-started:
		want := model.SessionStarted{SeriesName: "Rookie Cup", TrackName: "Okayama Full Course", SessionType: "Race", FieldStrength: 1500, FieldSize: 3}
		if ss != want {
			t.Errorf("session started = %+v, want %+v", ss, want)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no session start event")
	}

	select {
	case payload := <-feed:
		snap, err := caster.JSON[model.Snapshot]{}.Decode(payload)
		if err != nil {
			t.Fatalf("payload: %v", err)
		}
		if len(snap.Drivers) != 3 {
			t.Errorf("drivers = %d, want 3", len(snap.Drivers))
		}
		if len(snap.Relative) != 2 || snap.Relative[0].Name != "Front Runner" || !snap.Relative[1].IsPlayer {
			t.Errorf("relative = %+v", snap.Relative)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no snapshot published")
	}

	// a new tick is processed
	_, before := rec.last()
	region.SetTick(1, 2)
	waitFor(t, "next tick", func() bool { _, n := rec.last(); return n > before })

	// the session ends: the list is cleared
	region.SetActive(false)
	region.SetTick(2, 3)
	waitFor(t, "cleared list", func() bool { s, _ := rec.last(); return len(s.Drivers) == 0 })

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestRunnerReconnects(t *testing.T) {
	opener := &irsdktest.Opener{}
	r, _, events := newRunner(opener)
	started := events.Subscribe(pubsub.TopicSessionStarted)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	// nothing to open yet; the runner keeps retrying
	time.Sleep(50 * time.Millisecond)
	select {
	case <-started:
		t.Fatal("session started without a region")
	default:
	}

	cancel()
	<-done

	region := buildRegion()
	region.SetActive(true)
	opener = &irsdktest.Opener{Region: region}
	r, _, events = newRunner(opener)
	started = events.Subscribe(pubsub.TopicSessionStarted)
	ctx, cancel = context.WithCancel(context.Background())
	defer cancel()
	go func() { done <- r.Run(ctx) }()

	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("no session start after the region appeared")
	}
	cancel()
	<-done
}

func TestRunnerReleasesIdleRegion(t *testing.T) {
	region := buildRegion()
	opener := &irsdktest.Opener{Region: region}
	r, _, _ := newRunner(opener)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	// an inactive region is released and reopened every reconnect interval
	time.Sleep(200 * time.Millisecond)
	cancel()
	<-done
	if opener.Opens < 2 {
		t.Errorf("region opened %d times, want the idle region to be reopened", opener.Opens)
	}
}
