// Package app drives the telemetry client and the ranking engine from a
// single control loop and hands the results to the outer consumers.
package app

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"simrelative/pkg/caster"
	"simrelative/pkg/config"
	"simrelative/pkg/irsdk"
	"simrelative/pkg/model"
	"simrelative/pkg/pubsub"
	"simrelative/pkg/relative"
)

// Client is the telemetry connection the runner drives; *irsdk.Client
// implements it.
type Client interface {
	relative.Telemetry
	Open() error
	IsConnected() bool
	TickRate() int
	Vars() []irsdk.VarHeader
	PollForUpdate(timeout time.Duration) bool
	Shutdown()
}

type Runner struct {
	client Client
	engine *relative.Engine
	cfg    config.TelemetryConfig

	snapshots *pubsub.PubSub[string]
	events    *pubsub.PubSub[model.SessionStarted]
	caster    caster.Caster[model.Snapshot]

	ahead, behind atomic.Int32
	onSnapshot    func(model.Snapshot)

	active        bool
	inactiveSince time.Time
	lastErr       string
}

func NewRunner(client Client, cfg config.TelemetryConfig, snapshots *pubsub.PubSub[string], events *pubsub.PubSub[model.SessionStarted]) *Runner {
	r := &Runner{
		client:    client,
		engine:    relative.NewEngine(client),
		cfg:       cfg,
		snapshots: snapshots,
		events:    events,
		caster:    caster.JSON[model.Snapshot]{},
	}
	r.SetWindow(4, 4)
	return r
}

// SetWindow resizes the relative view; safe to call from other goroutines.
func (r *Runner) SetWindow(ahead, behind int) {
	r.ahead.Store(int32(max(ahead, 0)))
	r.behind.Store(int32(max(behind, 0)))
}

// OnSnapshot registers f to run on the loop goroutine after every processed
// tick.
func (r *Runner) OnSnapshot(f func(model.Snapshot)) {
	r.onSnapshot = f
}

// Run loops until ctx is cancelled, reconnecting whenever the region is gone
// and releasing it once the session has been inactive for a reconnect
// interval.
func (r *Runner) Run(ctx context.Context) error {
	defer r.client.Shutdown()
	for ctx.Err() == nil {
		if !r.client.IsConnected() {
			if !r.connect(ctx) {
				continue
			}
		}

		if r.client.PollForUpdate(r.cfg.PollTimeout) {
			r.process()
			continue
		}
		if r.client.IsSessionActive() {
			continue
		}
		if r.active {
			r.process()
		}
		if r.inactiveSince.IsZero() {
			r.inactiveSince = time.Now()
		} else if time.Since(r.inactiveSince) >= r.cfg.Reconnect {
			log.Println("telemetry idle, releasing region")
			r.client.Shutdown()
			r.inactiveSince = time.Time{}
		}
	}
	return nil
}

func (r *Runner) connect(ctx context.Context) bool {
	if err := r.client.Open(); err != nil {
		if msg := err.Error(); msg != r.lastErr {
			log.Printf("telemetry unavailable: %s", msg)
			r.lastErr = msg
		}
		select {
		case <-ctx.Done():
		case <-time.After(r.cfg.Reconnect):
		}
		return false
	}
	log.Printf("telemetry connected: %d Hz, %d variables\n", r.client.TickRate(), len(r.client.Vars()))
	r.lastErr = ""
	r.engine.Reset()
	r.active = false
	r.inactiveSince = time.Time{}
	// data already present at connect time does not advance the tick
	r.process()
	return true
}

func (r *Runner) process() {
	r.engine.Update()

	active := r.client.IsSessionActive()
	if active {
		r.inactiveSince = time.Time{}
	}
	if active && !r.active {
		started := model.SessionStarted{
			SeriesName:    r.engine.SeriesName(),
			TrackName:     r.engine.TrackName(),
			SessionType:   r.engine.SessionType(),
			FieldStrength: r.engine.FieldStrength(),
			FieldSize:     len(r.engine.AllDrivers()),
		}
		log.Printf("session started: %s at %s\n", started.SeriesName, started.TrackName)
		r.events.Publish(pubsub.TopicSessionStarted, started)
	}
	r.active = active

	snap := r.engine.Snapshot(int(r.ahead.Load()), int(r.behind.Load()))
	payload, err := r.caster.Encode(snap)
	if err != nil {
		log.Printf("Error casting snapshot to json: %s", err.Error())
	} else {
		r.snapshots.Publish(pubsub.TopicRelative, payload)
	}
	if r.onSnapshot != nil {
		r.onSnapshot(snap)
	}
}
