package store

import (
	"database/sql"
	"errors"
)

// BindingRepository stores which classifier category triggers each
// interaction role. Roles without a row use the built-in default.
type BindingRepository struct {
	db *sql.DB
}

// Bindings returns the binding repository for this store.
func (s *Store) Bindings() *BindingRepository {
	return &BindingRepository{db: s.db}
}

// All returns every stored binding keyed by role.
func (r *BindingRepository) All() (map[string]string, error) {
	rows, err := r.db.Query(`SELECT role, category FROM bindings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bindings := make(map[string]string)
	for rows.Next() {
		var role, category string
		if err := rows.Scan(&role, &category); err != nil {
			return nil, err
		}
		bindings[role] = category
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bindings, nil
}

// Get returns the category bound to a role.
func (r *BindingRepository) Get(role string) (string, error) {
	var category string
	err := r.db.QueryRow(`SELECT category FROM bindings WHERE role = ?`, role).Scan(&category)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return category, nil
}

// SetAll stores every binding in one transaction.
func (r *BindingRepository) SetAll(bindings map[string]string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO bindings (role, category) VALUES (?, ?)
		 ON CONFLICT(role) DO UPDATE SET category = excluded.category`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for role, category := range bindings {
		if _, err := stmt.Exec(role, category); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Delete removes the binding of a role so the default applies again.
func (r *BindingRepository) Delete(role string) error {
	result, err := r.db.Exec(`DELETE FROM bindings WHERE role = ?`, role)
	if err != nil {
		return err
	}
	return expectRows(result)
}
