package settings

import (
	"database/sql"
	"log"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// DefaultKey names the overlay preferences used when none is requested.
const DefaultKey = "relative"

// Overlay holds the relative window preferences stored under Key.
type Overlay struct {
	Key    string `json:"key"`
	Ahead  int    `json:"ahead"`
	Behind int    `json:"behind"`
}

func (o Overlay) Validate() error {
	if o.Key == "" {
		return errors.New("overlay key is empty")
	}
	if o.Ahead < 0 || o.Behind < 0 {
		return errors.Errorf("overlay %s: negative window %d/%d", o.Key, o.Ahead, o.Behind)
	}
	return nil
}

type Manager struct {
	db *sql.DB
	mu sync.Mutex
}

func NewManager(path string) (*Manager, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		log.Printf("error opening database: %s\n", err)
		return nil, errors.Wrapf(err, "open %s", path)
	}

	_, err = db.Exec(buildCreateOverlayTable())
	if err != nil {
		log.Printf("error init database: %s\n", err)
		db.Close()
		return nil, errors.Wrap(err, "create overlay table")
	}

	return &Manager{db: db}, nil
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.db.Close()
}

// Load returns the preferences stored under key, or def (re-keyed) when
// nothing has been saved yet.
func (m *Manager) Load(key string, def Overlay) (Overlay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	def.Key = key
	query, read := buildSelectOverlayCommand()
	rows, err := m.db.Query(query, key)
	if err != nil {
		return def, errors.Wrapf(err, "load overlay %s", key)
	}
	o, found, err := read(rows)
	if err != nil {
		return def, errors.Wrapf(err, "load overlay %s", key)
	}
	if !found {
		return def, nil
	}
	return o, nil
}

func (m *Manager) Save(o Overlay) error {
	if err := o.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	_, err := m.db.Exec(buildUpsertOverlayCommand(), o.Key, o.Ahead, o.Behind)
	if err != nil {
		log.Printf("error updating database: %s\n", err)
		return errors.Wrapf(err, "save overlay %s", o.Key)
	}
	return nil
}
