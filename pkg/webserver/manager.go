package webserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"simrelative/pkg/caster"
	"simrelative/pkg/pubsub"
	"simrelative/pkg/settings"
)

const writeWait = 5 * time.Second

// overlay clients are local pages, often served from file:// with a null
// origin
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// OverlayStore persists the relative window preferences.
type OverlayStore interface {
	Load(key string, def settings.Overlay) (settings.Overlay, error)
	Save(o settings.Overlay) error
}

type Manager struct {
	r            *mux.Router
	addr         string
	pushInterval time.Duration

	feed    *pubsub.PubSub[string]
	updates <-chan string

	mu      sync.RWMutex
	latest  string
	version uint64

	store     OverlayStore
	overlay   settings.Overlay
	onOverlay func(settings.Overlay)
}

// NewManager serves the JSON snapshots published on the relative topic of
// feed. store may be nil, which disables the settings routes.
func NewManager(addr string, pushInterval time.Duration, feed *pubsub.PubSub[string], store OverlayStore, overlay settings.Overlay, onOverlay func(settings.Overlay)) *Manager {
	m := &Manager{
		r:            mux.NewRouter(),
		addr:         addr,
		pushInterval: pushInterval,
		feed:         feed,
		updates:      feed.Subscribe(pubsub.TopicRelative),
		store:        store,
		overlay:      overlay,
		onOverlay:    onOverlay,
	}
	m.rootHandlers()
	return m
}

func (m *Manager) router() *mux.Router {
	return m.r
}

// Handler exposes the routes, mainly for tests.
func (m *Manager) Handler() http.Handler {
	return m.r
}

func (m *Manager) rootHandlers() {
	m.r.HandleFunc("/drivers", m.handleDrivers).Methods(http.MethodGet)
	m.r.HandleFunc("/relative", m.handleRelative).Methods(http.MethodGet)
	if m.store != nil {
		m.r.HandleFunc("/settings", m.handleGetSettings).Methods(http.MethodGet)
		m.r.HandleFunc("/settings", m.handlePutSettings).Methods(http.MethodPut)
	}
}

// Track keeps the latest published snapshot until ctx ends.
func (m *Manager) Track(ctx context.Context) {
	defer m.feed.Unsubscribe(pubsub.TopicRelative, m.updates)
	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-m.updates:
			if !ok {
				return
			}
			m.setLatest(payload)
		}
	}
}

func (m *Manager) setLatest(payload string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest = payload
	m.version++
}

func (m *Manager) snapshot() (string, uint64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest, m.version
}

func (m *Manager) handleDrivers(w http.ResponseWriter, r *http.Request) {
	payload, _ := m.snapshot()
	if payload == "" {
		http.Error(w, "no telemetry yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, payload)
}

// handleRelative streams every new snapshot, checked once per push interval.
func (m *Manager) handleRelative(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade: %s", err)
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(m.pushInterval)
	defer ticker.Stop()
	var sent uint64
	for {
		if payload, version := m.snapshot(); payload != "" && version != sent {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
				return
			}
			sent = version
		}
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

func (m *Manager) currentOverlay() settings.Overlay {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.overlay
}

func (m *Manager) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	current := m.currentOverlay()
	o, err := m.store.Load(current.Key, current)
	if err != nil {
		log.Printf("Error loading settings: %s", err.Error())
		http.Error(w, "settings unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, o)
}

func (m *Manager) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	o, err := caster.JSON[settings.Overlay]{Strict: true}.DecodeReader(r.Body)
	if err != nil {
		http.Error(w, "invalid settings body", http.StatusBadRequest)
		return
	}
	if o.Key == "" {
		o.Key = m.currentOverlay().Key
	}
	if err := o.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := m.store.Save(o); err != nil {
		log.Printf("Error saving settings: %s", err.Error())
		http.Error(w, "settings unavailable", http.StatusInternalServerError)
		return
	}
	m.mu.Lock()
	m.overlay = o
	m.mu.Unlock()
	if m.onOverlay != nil {
		m.onOverlay(o)
	}
	writeJSON(w, o)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %s", err.Error())
	}
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down
// gracefully.
func (m *Manager) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:         m.addr,
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      m.router(),
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("webserver listening on %s\n", m.addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	log.Println("webserver shutting down")
	return err
}
