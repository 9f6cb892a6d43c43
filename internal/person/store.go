package person

import (
	"database/sql"
	"errors"

	"github.com/crimewatch-io/crimewatch/internal/database"
	"github.com/crimewatch-io/crimewatch/internal/models"
)

// ErrNotFound is returned when no person matches a lookup.
var ErrNotFound = errors.New("person not found")

// Store defines person storage operations. The feed queries read the crimes
// table too; a person row is meaningless to the feed without its reports.
type Store interface {
	Create(person *models.Person) error
	GetByID(id string) (*models.Person, error)
	GetBySlug(slug string) (*models.Person, error)
	GetByName(name string) (*models.Person, error)
	SlugExists(slug string) (bool, error)
	List(limit, offset int) ([]models.Person, error)
	Count() (int, error)
	CrimesForPerson(personID string) ([]models.Crime, error)
	LatestCrime(personID string) (*models.Crime, error)
	CrimeCount(personID string) (int, error)
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

// Create stores a new person
func (s *SQLStore) Create(person *models.Person) error {
	query := database.Rebind(`
		INSERT INTO persons (id, name, image_url, slug, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	_, err := s.db.Exec(query, person.ID, person.Name, person.ImageURL, person.Slug, person.CreatedAt)
	return err
}

// GetByID retrieves a person by ID
func (s *SQLStore) GetByID(id string) (*models.Person, error) {
	query := database.Rebind(`SELECT id, name, image_url, slug, created_at FROM persons WHERE id = ?`)
	return s.scanPerson(s.db.QueryRow(query, id))
}

// GetBySlug retrieves a person by slug
func (s *SQLStore) GetBySlug(slug string) (*models.Person, error) {
	query := database.Rebind(`SELECT id, name, image_url, slug, created_at FROM persons WHERE slug = ?`)
	return s.scanPerson(s.db.QueryRow(query, slug))
}

// GetByName retrieves a person by exact name
func (s *SQLStore) GetByName(name string) (*models.Person, error) {
	query := database.Rebind(`SELECT id, name, image_url, slug, created_at FROM persons WHERE name = ?`)
	return s.scanPerson(s.db.QueryRow(query, name))
}

// SlugExists reports whether a slug is already taken
func (s *SQLStore) SlugExists(slug string) (bool, error) {
	query := database.Rebind(`SELECT COUNT(1) FROM persons WHERE slug = ?`)
	var n int
	if err := s.db.QueryRow(query, slug).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// List returns one page of persons, newest first
func (s *SQLStore) List(limit, offset int) ([]models.Person, error) {
	query := database.Rebind(`
		SELECT id, name, image_url, slug, created_at
		FROM persons
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`)
	rows, err := s.db.Query(query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var persons []models.Person
	for rows.Next() {
		var p models.Person
		var imageURL sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &imageURL, &p.Slug, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.ImageURL = imageURL.String
		persons = append(persons, p)
	}
	return persons, rows.Err()
}

// Count returns the total number of persons
func (s *SQLStore) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(1) FROM persons`).Scan(&n)
	return n, err
}

// CrimesForPerson returns every crime reported against the person, newest first
func (s *SQLStore) CrimesForPerson(personID string) ([]models.Crime, error) {
	query := database.Rebind(`
		SELECT id, person_id, location, crime_images, sources, profile_url, tags, verification_status, created_at, updated_at
		FROM crimes
		WHERE person_id = ?
		ORDER BY created_at DESC
	`)
	rows, err := s.db.Query(query, personID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var crimes []models.Crime
	for rows.Next() {
		crime, err := scanCrimeRow(rows)
		if err != nil {
			return nil, err
		}
		crimes = append(crimes, *crime)
	}
	return crimes, rows.Err()
}

// LatestCrime returns the most recent crime for the person, or ErrNotFound
func (s *SQLStore) LatestCrime(personID string) (*models.Crime, error) {
	query := database.Rebind(`
		SELECT id, person_id, location, crime_images, sources, profile_url, tags, verification_status, created_at, updated_at
		FROM crimes
		WHERE person_id = ?
		ORDER BY created_at DESC
		LIMIT 1
	`)
	rows, err := s.db.Query(query, personID)
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
	return scanCrimeRow(rows)
}

// CrimeCount returns how many crimes are recorded against the person
func (s *SQLStore) CrimeCount(personID string) (int, error) {
	query := database.Rebind(`SELECT COUNT(1) FROM crimes WHERE person_id = ?`)
	var n int
	err := s.db.QueryRow(query, personID).Scan(&n)
	return n, err
}

// Delete removes a person; crimes cascade
func (s *SQLStore) Delete(id string) error {
	query := database.Rebind(`DELETE FROM persons WHERE id = ?`)
	result, err := s.db.Exec(query, id)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) scanPerson(row *sql.Row) (*models.Person, error) {
	p := &models.Person{}
	var imageURL sql.NullString
	err := row.Scan(&p.ID, &p.Name, &imageURL, &p.Slug, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.ImageURL = imageURL.String
	return p, nil
}

func scanCrimeRow(rows *sql.Rows) (*models.Crime, error) {
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
