package webserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"simrelative/pkg/pubsub"
	"simrelative/pkg/settings"
)

type memStore struct {
	mu    sync.Mutex
	saved map[string]settings.Overlay
	err   error
}

func (s *memStore) Load(key string, def settings.Overlay) (settings.Overlay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return def, s.err
	}
	if o, ok := s.saved[key]; ok {
		return o, nil
	}
	def.Key = key
	return def, nil
}

func (s *memStore) get(key string) settings.Overlay {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved[key]
}

func (s *memStore) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *memStore) Save(o settings.Overlay) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.saved[o.Key] = o
	return nil
}

func newTestServer(t *testing.T, store OverlayStore, onOverlay func(settings.Overlay)) (*Manager, *pubsub.PubSub[string], *httptest.Server) {
	t.Helper()
	feed := pubsub.NewPubSub[string]()
	m := NewManager("127.0.0.1:0", 10*time.Millisecond, feed, store,
		settings.Overlay{Key: settings.DefaultKey, Ahead: 4, Behind: 4}, onOverlay)
	ctx, cancel := context.WithCancel(context.Background())
	go m.Track(ctx)
	srv := httptest.NewServer(m.Handler())
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return m, feed, srv
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestDrivers(t *testing.T) {
	m, feed, srv := newTestServer(t, nil, nil)

	res, err := http.Get(srv.URL + "/drivers")
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status before data = %d", res.StatusCode)
	}

	feed.Publish(pubsub.TopicRelative, `{"tick":5}`)
	waitFor(t, func() bool { p, _ := m.snapshot(); return p != "" })

	res, err = http.Get(srv.URL + "/drivers")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	if res.StatusCode != http.StatusOK || string(body) != `{"tick":5}` {
		t.Errorf("GET /drivers = %d %q", res.StatusCode, body)
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	// settings routes are absent without a store
	res, err = http.Get(srv.URL + "/settings")
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Errorf("GET /settings without store = %d", res.StatusCode)
	}
}

func TestRelativeWebsocket(t *testing.T) {
	_, feed, srv := newTestServer(t, nil, nil)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/relative"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	feed.Publish(pubsub.TopicRelative, `{"tick":1}`)
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(msg) != `{"tick":1}` {
		t.Errorf("first frame = %q", msg)
	}

	feed.Publish(pubsub.TopicRelative, `{"tick":2}`)
	_, msg, err = conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(msg) != `{"tick":2}` {
		t.Errorf("second frame = %q", msg)
	}
}

func TestSettings(t *testing.T) {
	store := &memStore{saved: map[string]settings.Overlay{}}
	var mu sync.Mutex
	var applied settings.Overlay
	_, _, srv := newTestServer(t, store, func(o settings.Overlay) {
		mu.Lock()
		applied = o
		mu.Unlock()
	})

	res, err := http.Get(srv.URL + "/settings")
	if err != nil {
		t.Fatal(err)
	}
	var got settings.Overlay
	json.NewDecoder(res.Body).Decode(&got)
	res.Body.Close()
	if got != (settings.Overlay{Key: settings.DefaultKey, Ahead: 4, Behind: 4}) {
		t.Errorf("GET /settings = %+v", got)
	}

	put := func(body string) *http.Response {
		req, _ := http.NewRequest(http.MethodPut, srv.URL+"/settings", strings.NewReader(body))
		res, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		res.Body.Close()
		return res
	}

	if res := put(`{"ahead":2,"behind":6}`); res.StatusCode != http.StatusOK {
		t.Fatalf("PUT /settings = %d", res.StatusCode)
	}
	want := settings.Overlay{Key: settings.DefaultKey, Ahead: 2, Behind: 6}
	mu.Lock()
	gotApplied := applied
	mu.Unlock()
	if saved := store.get(settings.DefaultKey); saved != want || gotApplied != want {
		t.Errorf("saved %+v applied %+v, want %+v", saved, gotApplied, want)
	}

	if res := put(`{"ahead":-1,"behind":6}`); res.StatusCode != http.StatusBadRequest {
		t.Errorf("negative window status = %d", res.StatusCode)
	}
	if res := put(`{"ahead":2,"behind":6,"zoom":3}`); res.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown field status = %d", res.StatusCode)
	}
	if res := put(`not json`); res.StatusCode != http.StatusBadRequest {
		t.Errorf("bad body status = %d", res.StatusCode)
	}
	store.fail(errors.New("disk full"))
	if res := put(`{"ahead":1,"behind":1}`); res.StatusCode != http.StatusInternalServerError {
		t.Errorf("store failure status = %d", res.StatusCode)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	m := NewManager("127.0.0.1:0", time.Second, pubsub.NewPubSub[string](), nil, settings.Overlay{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- m.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Serve = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not stop")
	}
}
