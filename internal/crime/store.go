package crime

import (
	"database/sql"
	"errors"
	"time"

	"github.com/crimewatch-io/crimewatch/internal/database"
	"github.com/crimewatch-io/crimewatch/internal/models"
)

// ErrNotFound is returned when no crime matches a lookup.
var ErrNotFound = errors.New("crime not found")

// Store defines crime storage operations
type Store interface {
	Create(crime *models.Crime) error
	GetByID(id string) (*models.Crime, error)
	List(status string, limit, offset int) ([]models.Crime, error)
	Count(status string) (int, error)
	UpdateStatus(id string, status models.VerificationStatus) error
	Delete(id string) error
}

// SQLStore implements Store on database/sql
type SQLStore struct {
	db *sql.DB
}

// NewStore creates a new SQLStore
func NewStore() *SQLStore {
	return &SQLStore{db: database.GetConnection()}
}

// Create stores a new crime
func (s *SQLStore) Create(crime *models.Crime) error {
	query := database.Rebind(`
		INSERT INTO crimes (id, person_id, location, crime_images, sources, profile_url, tags, verification_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := s.db.Exec(query,
		crime.ID,
		crime.PersonID,
		crime.Location,
		crime.CrimeImages,
		crime.Sources,
		crime.ProfileURL,
		crime.Tags,
		crime.VerificationStatus,
		crime.CreatedAt,
		crime.UpdatedAt,
	)
	return err
}

// GetByID retrieves a crime by ID
func (s *SQLStore) GetByID(id string) (*models.Crime, error) {
	query := database.Rebind(`
		SELECT id, person_id, location, crime_images, sources, profile_url, tags, verification_status, created_at, updated_at
		FROM crimes
		WHERE id = ?
	`)
	rows, err := s.db.Query(query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	return scanCrime(rows)
}

// List returns one page of crimes, newest first, optionally filtered by
// verification status.
func (s *SQLStore) List(status string, limit, offset int) ([]models.Crime, error) {
	query := `
		SELECT id, person_id, location, crime_images, sources, profile_url, tags, verification_status, created_at, updated_at
		FROM crimes
	`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE verification_status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.Query(database.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var crimes []models.Crime
	for rows.Next() {
		c, err := scanCrime(rows)
		if err != nil {
			return nil, err
		}
		crimes = append(crimes, *c)
	}
	return crimes, rows.Err()
}

// Count returns the number of crimes, optionally filtered by status
func (s *SQLStore) Count(status string) (int, error) {
	query := `SELECT COUNT(1) FROM crimes`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE verification_status = ?`
		args = append(args, status)
	}
	var n int
	err := s.db.QueryRow(database.Rebind(query), args...).Scan(&n)
	return n, err
}

// UpdateStatus sets the verification status and bumps updated_at
func (s *SQLStore) UpdateStatus(id string, status models.VerificationStatus) error {
	query := database.Rebind(`UPDATE crimes SET verification_status = ?, updated_at = ? WHERE id = ?`)
	result, err := s.db.Exec(query, status, time.Now(), id)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a crime
func (s *SQLStore) Delete(id string) error {
	query := database.Rebind(`DELETE FROM crimes WHERE id = ?`)
	result, err := s.db.Exec(query, id)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCrime(rows *sql.Rows) (*models.Crime, error) {
	c := &models.Crime{}
	var location, profileURL sql.NullString
	err := rows.Scan(
		&c.ID,
		&c.PersonID,
		&location,
		&c.CrimeImages,
		&c.Sources,
		&profileURL,
		&c.Tags,
		&c.VerificationStatus,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Location = location.String
	c.ProfileURL = profileURL.String
	return c, nil
}
