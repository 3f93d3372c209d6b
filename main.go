package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"simrelative/pkg/app"
	"simrelative/pkg/config"
	"simrelative/pkg/irsdk"
	"simrelative/pkg/logging"
	"simrelative/pkg/model"
	"simrelative/pkg/notification"
	"simrelative/pkg/pubsub"
	"simrelative/pkg/render"
	"simrelative/pkg/settings"
	"simrelative/pkg/webserver"
)

const tableRefresh = time.Second

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	once := flag.Bool("once", false, "print the standings of the first active tick and exit")
	showTable := flag.Bool("table", false, "print the relative table to stdout once per second")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		// Abort if something is wrong
		log.Fatalf("configuration: %s", err)
	}
	closer := logging.Setup(cfg.Log)
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := irsdk.NewClient(
		irsdk.WithRegionName(cfg.Telemetry.RegionName),
		irsdk.WithSignalName(cfg.Telemetry.SignalName),
	)
	snapshots := pubsub.NewPubSub[string]()
	events := pubsub.NewPubSub[model.SessionStarted]()
	runner := app.NewRunner(client, cfg.Telemetry, snapshots, events)

	window := settings.Overlay{Key: settings.DefaultKey, Ahead: cfg.Relative.Ahead, Behind: cfg.Relative.Behind}
	var store webserver.OverlayStore
	if sm, err := settings.NewManager(cfg.Settings.Path); err != nil {
		log.Printf("settings disabled: %s", err)
	} else {
		defer sm.Close()
		store = sm
		if window, err = sm.Load(settings.DefaultKey, window); err != nil {
			log.Printf("Error loading settings: %s", err.Error())
		}
	}
	runner.SetWindow(window.Ahead, window.Behind)

	var wg sync.WaitGroup
	if cfg.Web.Enabled && !*once {
		ws := webserver.NewManager(cfg.Web.Address, cfg.Web.PushInterval, snapshots, store, window, func(o settings.Overlay) {
			runner.SetWindow(o.Ahead, o.Behind)
		})
		wg.Add(2)
		go func() {
			defer wg.Done()
			ws.Track(ctx)
		}()
		go func() {
			defer wg.Done()
			if err := ws.Serve(ctx); err != nil {
				log.Printf("webserver: %s", err)
			}
		}()
	}

	if cfg.Notify.Enabled && !*once {
		tg, err := notification.NewTelegram(cfg.Notify.Token)
		if err != nil {
			log.Printf("notifications disabled: %s", err)
		} else {
			tg.AddReceivers(cfg.Notify.ChatIDs...)
			nm := notification.NewManager(ctx, events, tg)
			wg.Add(1)
			go func() {
				defer wg.Done()
				nm.Start()
			}()
		}
	}

	switch {
	case *once:
		runner.OnSnapshot(func(s model.Snapshot) {
			if len(s.Drivers) == 0 {
				return
			}
			render.Header(os.Stdout, s)
			render.Standings(os.Stdout, s.Drivers)
			stop()
		})
	case *showTable:
		var last time.Time
		runner.OnSnapshot(func(s model.Snapshot) {
			if time.Since(last) < tableRefresh {
				return
			}
			last = time.Now()
			render.Snapshot(os.Stdout, s)
		})
	}

	log.Println("Waiting for telemetry. Press Ctrl-C to stop it")
	if err := runner.Run(ctx); err != nil {
		log.Printf("runner: %s", err)
	}
	stop()
	wg.Wait()
	snapshots.Close()
	events.Close()
}
