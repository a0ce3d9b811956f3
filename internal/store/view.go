package store

import (
	"database/sql"
	"errors"
	"time"
)

// View is the saved pan/zoom of a named surface.
type View struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	K         float64   `json:"scale"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ViewRepository provides access to saved views.
type ViewRepository struct {
	db *sql.DB
}

// Views returns the view repository for this store.
func (s *Store) Views() *ViewRepository {
	return &ViewRepository{db: s.db}
}

// Save inserts a view or replaces the transform of the view with the same
// name. The stored ID of an existing view is kept.
func (r *ViewRepository) Save(v *View) error {
	v.UpdatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO views (id, name, k, x, y, updated_at) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET k = excluded.k, x = excluded.x, y = excluded.y,
		 updated_at = excluded.updated_at`,
		v.ID, v.Name, v.K, v.X, v.Y, v.UpdatedAt,
	)
	return err
}

// GetByName retrieves the view of a surface.
func (r *ViewRepository) GetByName(name string) (*View, error) {
	v := &View{}
	err := r.db.QueryRow(
		`SELECT id, name, k, x, y, updated_at FROM views WHERE name = ?`, name,
	).Scan(&v.ID, &v.Name, &v.K, &v.X, &v.Y, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

// List retrieves all views ordered by name.
func (r *ViewRepository) List() ([]*View, error) {
	rows, err := r.db.Query(`SELECT id, name, k, x, y, updated_at FROM views ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []*View
	for rows.Next() {
		v := &View{}
		if err := rows.Scan(&v.ID, &v.Name, &v.K, &v.X, &v.Y, &v.UpdatedAt); err != nil {
			return nil, err
		}
		views = append(views, v)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return views, nil
}

// Delete removes the view of a surface.
func (r *ViewRepository) Delete(name string) error {
	result, err := r.db.Exec(`DELETE FROM views WHERE name = ?`, name)
	if err != nil {
		return err
	}
	return expectRows(result)
}
