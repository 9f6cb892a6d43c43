package crime

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/crimewatch-io/crimewatch/internal/models"
	"github.com/crimewatch-io/crimewatch/internal/person"
)

const (
	defaultListLimit = 10
	maxListLimit     = 50
)

// ValidationError is a request-level failure; the message is safe for the
// client.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

// CreateInput is everything needed to file a report. The person is referenced
// either by ID or by name; a named person is created on first mention.
type CreateInput struct {
	PersonID       string            `json:"personId"`
	PersonName     string            `json:"personName"`
	PersonImageURL string            `json:"personImageUrl"`
	Location       string            `json:"location"`
	CrimeImages    models.StringList `json:"crimeImages"`
	Sources        models.StringList `json:"sources"`
	ProfileURL     string            `json:"profileUrl"`
	Tags           models.StringList `json:"tags"`
}

// Service implements crime report filing and moderation.
type Service struct {
	store   Store
	persons *person.Service
}

// NewService creates a crime Service.
func NewService(store Store, persons *person.Service) *Service {
	return &Service{store: store, persons: persons}
}

// CreateWithPerson files a report, creating the person profile if this is the
// first mention of the name. New reports always start UNVERIFIED.
func (s *Service) CreateWithPerson(input CreateInput) (*models.Crime, *models.Person, error) {
	input.PersonName = strings.TrimSpace(input.PersonName)
	if input.PersonID == "" && input.PersonName == "" {
		return nil, nil, ValidationError("personId or personName is required")
	}

	input.Sources = trimList(input.Sources)
	input.CrimeImages = trimList(input.CrimeImages)
	input.Tags = trimList(input.Tags)

	if len(input.Sources) == 0 {
		return nil, nil, ValidationError("at least one source is required")
	}
	for _, src := range input.Sources {
		if !validURL(src) {
			return nil, nil, ValidationError(fmt.Sprintf("invalid source URL: %s", src))
		}
	}
	for _, img := range input.CrimeImages {
		if !validURL(img) {
			return nil, nil, ValidationError(fmt.Sprintf("invalid image URL: %s", img))
		}
	}
	if input.ProfileURL != "" && !validURL(input.ProfileURL) {
		return nil, nil, ValidationError("invalid profile URL")
	}

	var p *models.Person
	var err error
	if input.PersonID != "" {
		p, err = s.persons.GetByID(input.PersonID)
	} else {
		p, err = s.persons.FindOrCreate(input.PersonName, input.PersonImageURL)
	}
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	c := &models.Crime{
		ID:                 uuid.New().String(),
		PersonID:           p.ID,
		Location:           input.Location,
		CrimeImages:        input.CrimeImages,
		Sources:            input.Sources,
		ProfileURL:         input.ProfileURL,
		Tags:               input.Tags,
		VerificationStatus: models.StatusUnverified,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.store.Create(c); err != nil {
		return nil, nil, fmt.Errorf("failed to create crime: %w", err)
	}
	return c, p, nil
}

// Get returns a single crime.
func (s *Service) Get(id string) (*models.Crime, error) {
	return s.store.GetByID(id)
}

// List returns one page of crimes, optionally filtered by verification
// status.
func (s *Service) List(status string, page, limit int) ([]models.Crime, models.Pagination, error) {
	if status != "" && !models.ValidVerificationStatus(status) {
		return nil, models.Pagination{}, ValidationError("invalid verification status")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	total, err := s.store.Count(status)
	if err != nil {
		return nil, models.Pagination{}, fmt.Errorf("failed to count crimes: %w", err)
	}
	crimes, err := s.store.List(status, limit, (page-1)*limit)
	if err != nil {
		return nil, models.Pagination{}, fmt.Errorf("failed to list crimes: %w", err)
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return crimes, models.Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    page < totalPages,
	}, nil
}

// UpdateStatus moves a report through moderation.
func (s *Service) UpdateStatus(id, status string) (*models.Crime, error) {
	if !models.ValidVerificationStatus(status) {
		return nil, ValidationError("invalid verification status")
	}
	if err := s.store.UpdateStatus(id, models.VerificationStatus(status)); err != nil {
		return nil, err
	}
	return s.store.GetByID(id)
}

// Delete removes a report.
func (s *Service) Delete(id string) error {
	return s.store.Delete(id)
}

// trimList drops empty entries and trims whitespace.
func trimList(in models.StringList) models.StringList {
	var out models.StringList
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
