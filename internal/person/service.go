package person

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/crimewatch-io/crimewatch/internal/models"
)

const (
	defaultFeedLimit = 10
	maxFeedLimit     = 50
)

// Service implements person profiles and the public feed.
type Service struct {
	store Store
}

// NewService creates a person Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Slugify turns a display name into a URL-safe slug: lowercase, runs of
// non-alphanumerics collapsed to single hyphens.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// FindOrCreate returns the person with the given name, creating one with a
// unique slug if none exists. Names match exactly; the caller is expected to
// have trimmed whitespace.
func (s *Service) FindOrCreate(name, imageURL string) (*models.Person, error) {
	existing, err := s.store.GetByName(name)
	if err == nil {
		return existing, nil
	}
	if err != ErrNotFound {
		return nil, fmt.Errorf("failed to look up person: %w", err)
	}

	slug, err := s.uniqueSlug(name)
	if err != nil {
		return nil, err
	}

	p := &models.Person{
		ID:        uuid.New().String(),
		Name:      name,
		ImageURL:  imageURL,
		Slug:      slug,
		CreatedAt: time.Now(),
	}
	if err := s.store.Create(p); err != nil {
		return nil, fmt.Errorf("failed to create person: %w", err)
	}
	return p, nil
}

// uniqueSlug appends -2, -3, ... until the slug is free.
func (s *Service) uniqueSlug(name string) (string, error) {
	base := Slugify(name)
	if base == "" {
		base = "person"
	}
	slug := base
	for i := 2; ; i++ {
		taken, err := s.store.SlugExists(slug)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// GetByID returns a person by ID.
func (s *Service) GetByID(id string) (*models.Person, error) {
	return s.store.GetByID(id)
}

// Profile returns a person by slug and all crimes reported against them.
func (s *Service) Profile(slug string) (*models.Person, []models.Crime, error) {
	p, err := s.store.GetBySlug(slug)
	if err != nil {
		return nil, nil, err
	}
	return s.withCrimes(p)
}

// ProfileByID is Profile keyed by person ID instead of slug.
func (s *Service) ProfileByID(id string) (*models.Person, []models.Crime, error) {
	p, err := s.store.GetByID(id)
	if err != nil {
		return nil, nil, err
	}
	return s.withCrimes(p)
}

func (s *Service) withCrimes(p *models.Person) (*models.Person, []models.Crime, error) {
	crimes, err := s.store.CrimesForPerson(p.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load crimes: %w", err)
	}
	return p, crimes, nil
}

// Feed returns one page of the public landing feed: each person with their
// most recent crime and total report count.
func (s *Service) Feed(page, limit int) ([]models.PersonFeedItem, models.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}

	total, err := s.store.Count()
	if err != nil {
		return nil, models.Pagination{}, fmt.Errorf("failed to count persons: %w", err)
	}

	persons, err := s.store.List(limit, (page-1)*limit)
	if err != nil {
		return nil, models.Pagination{}, fmt.Errorf("failed to list persons: %w", err)
	}

	items := make([]models.PersonFeedItem, 0, len(persons))
	for _, p := range persons {
		item := models.PersonFeedItem{Person: p}

		latest, err := s.store.LatestCrime(p.ID)
		if err != nil && err != ErrNotFound {
			return nil, models.Pagination{}, fmt.Errorf("failed to load latest crime: %w", err)
		}
		item.LatestCrime = latest // nil when the person has no reports

		count, err := s.store.CrimeCount(p.ID)
		if err != nil {
			return nil, models.Pagination{}, fmt.Errorf("failed to count crimes: %w", err)
		}
		item.CrimeCount = count

		items = append(items, item)
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}
	pagination := models.Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    page < totalPages,
	}
	return items, pagination, nil
}

// Delete removes a person and, by cascade, their crimes.
func (s *Service) Delete(id string) error {
	return s.store.Delete(id)
}
