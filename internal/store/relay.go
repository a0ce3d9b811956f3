package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// Relay forwards one interaction event type to a plugin action.
type Relay struct {
	ID         string          `json:"id"`
	EventType  string          `json:"event_type"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    bool            `json:"enabled"`
	CreatedAt  time.Time       `json:"created_at"`
}

// RelayRepository provides CRUD operations for relays.
type RelayRepository struct {
	db *sql.DB
}

// Relays returns the relay repository for this store.
func (s *Store) Relays() *RelayRepository {
	return &RelayRepository{db: s.db}
}

const relayColumns = `id, event_type, plugin_name, action_name, config, enabled, created_at`

func scanRelay(row scanner) (*Relay, error) {
	a := &Relay{}
	var config string
	var enabled int

	if err := row.Scan(&a.ID, &a.EventType, &a.PluginName, &a.ActionName, &config, &enabled, &a.CreatedAt); err != nil {
		return nil, err
	}

	a.Config = json.RawMessage(config)
	a.Enabled = enabled != 0
	return a, nil
}

// Create inserts a new relay into the database.
func (r *RelayRepository) Create(a *Relay) error {
	a.CreatedAt = time.Now()

	config := a.Config
	if config == nil {
		config = json.RawMessage("{}")
	}

	_, err := r.db.Exec(
		`INSERT INTO relays (id, event_type, plugin_name, action_name, config, enabled, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.EventType, a.PluginName, a.ActionName, string(config), a.Enabled, a.CreatedAt,
	)
	return err
}

// GetByID retrieves a relay by its ID.
func (r *RelayRepository) GetByID(id string) (*Relay, error) {
	a, err := scanRelay(r.db.QueryRow(`SELECT `+relayColumns+` FROM relays WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// List retrieves all relays, oldest first.
func (r *RelayRepository) List() ([]*Relay, error) {
	return r.query(`SELECT ` + relayColumns + ` FROM relays ORDER BY created_at`)
}

// ListEnabled retrieves the enabled relays, oldest first.
func (r *RelayRepository) ListEnabled() ([]*Relay, error) {
	return r.query(`SELECT ` + relayColumns + ` FROM relays WHERE enabled = 1 ORDER BY created_at`)
}

func (r *RelayRepository) query(q string, args ...any) ([]*Relay, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var relays []*Relay
	for rows.Next() {
		a, err := scanRelay(rows)
		if err != nil {
			return nil, err
		}
		relays = append(relays, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return relays, nil
}

// Update updates an existing relay in the database.
func (r *RelayRepository) Update(a *Relay) error {
	config := a.Config
	if config == nil {
		config = json.RawMessage("{}")
	}

	enabled := 0
	if a.Enabled {
		enabled = 1
	}

	result, err := r.db.Exec(
		`UPDATE relays SET event_type = ?, plugin_name = ?, action_name = ?, config = ?, enabled = ?
		 WHERE id = ?`,
		a.EventType, a.PluginName, a.ActionName, string(config), enabled, a.ID,
	)
	if err != nil {
		return err
	}
	return expectRows(result)
}

// Delete removes a relay from the database by its ID.
func (r *RelayRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM relays WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectRows(result)
}
