package person

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimewatch-io/crimewatch/internal/models"
)

type fakeStore struct {
	persons []models.Person
	crimes  []models.Crime
}

func (s *fakeStore) Create(p *models.Person) error {
	s.persons = append(s.persons, *p)
	return nil
}

func (s *fakeStore) GetByID(id string) (*models.Person, error) {
	for i := range s.persons {
		if s.persons[i].ID == id {
			cp := s.persons[i]
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakeStore) GetBySlug(slug string) (*models.Person, error) {
	for i := range s.persons {
		if s.persons[i].Slug == slug {
			cp := s.persons[i]
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakeStore) GetByName(name string) (*models.Person, error) {
	for i := range s.persons {
		if s.persons[i].Name == name {
			cp := s.persons[i]
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakeStore) SlugExists(slug string) (bool, error) {
	_, err := s.GetBySlug(slug)
	if err == ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (s *fakeStore) List(limit, offset int) ([]models.Person, error) {
	if offset >= len(s.persons) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.persons) {
		end = len(s.persons)
	}
	return append([]models.Person(nil), s.persons[offset:end]...), nil
}

func (s *fakeStore) Count() (int, error) {
	return len(s.persons), nil
}

func (s *fakeStore) CrimesForPerson(personID string) ([]models.Crime, error) {
	var out []models.Crime
	for _, c := range s.crimes {
		if c.PersonID == personID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeStore) LatestCrime(personID string) (*models.Crime, error) {
	var latest *models.Crime
	for i := range s.crimes {
		c := &s.crimes[i]
		if c.PersonID != personID {
			continue
		}
		if latest == nil || c.CreatedAt.After(latest.CreatedAt) {
			latest = c
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (s *fakeStore) CrimeCount(personID string) (int, error) {
	crimes, _ := s.CrimesForPerson(personID)
	return len(crimes), nil
}

func (s *fakeStore) Delete(id string) error {
	for i := range s.persons {
		if s.persons[i].ID == id {
			s.persons = append(s.persons[:i], s.persons[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"John Doe":           "john-doe",
		"  John   Doe  ":     "john-doe",
		"O'Brien, Pat":       "o-brien-pat",
		"Jean-Luc Picard":    "jean-luc-picard",
		"ALL CAPS NAME":      "all-caps-name",
		"number 42 suspect":  "number-42-suspect",
		"---":                "",
		"trailing punct!!!":  "trailing-punct",
	}
	for input, want := range cases {
		assert.Equal(t, want, Slugify(input), "input=%q", input)
	}
}

func TestFindOrCreate(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	p1, err := svc.FindOrCreate("John Doe", "https://cdn.example.com/john.jpg")
	require.NoError(t, err)
	assert.Equal(t, "john-doe", p1.Slug)
	assert.NotEmpty(t, p1.ID)

	// Same name resolves to the same profile.
	p2, err := svc.FindOrCreate("John Doe", "")
	require.NoError(t, err)
	assert.Equal(t, p1.ID, p2.ID)
	assert.Len(t, store.persons, 1)
}

func TestFindOrCreateSuffixesTakenSlugs(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	_, err := svc.FindOrCreate("John Doe", "")
	require.NoError(t, err)

	// A different spelling of the same slug gets a numeric suffix.
	p2, err := svc.FindOrCreate("John  Doe ", "")
	require.NoError(t, err)
	assert.Equal(t, "john-doe-2", p2.Slug)

	p3, err := svc.FindOrCreate("John. Doe", "")
	require.NoError(t, err)
	assert.Equal(t, "john-doe-3", p3.Slug)
}

func TestProfile(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	p, err := svc.FindOrCreate("John Doe", "")
	require.NoError(t, err)
	store.crimes = append(store.crimes,
		models.Crime{ID: "c1", PersonID: p.ID, CreatedAt: time.Now().Add(-time.Hour)},
		models.Crime{ID: "c2", PersonID: p.ID, CreatedAt: time.Now()},
	)

	got, crimes, err := svc.Profile("john-doe")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Len(t, crimes, 2)

	_, _, err = svc.Profile("nobody")
	assert.Equal(t, ErrNotFound, err)
}

func TestFeed(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	for _, name := range []string{"Alpha One", "Beta Two", "Gamma Three"} {
		_, err := svc.FindOrCreate(name, "")
		require.NoError(t, err)
	}
	store.crimes = append(store.crimes,
		models.Crime{ID: "c1", PersonID: store.persons[0].ID, CreatedAt: time.Now().Add(-time.Hour)},
		models.Crime{ID: "c2", PersonID: store.persons[0].ID, CreatedAt: time.Now()},
	)

	items, pagination, err := svc.Feed(1, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 3, pagination.Total)
	assert.Equal(t, 2, pagination.TotalPages)
	assert.True(t, pagination.HasMore)

	// First person has reports, with the newest surfaced.
	assert.Equal(t, 2, items[0].CrimeCount)
	require.NotNil(t, items[0].LatestCrime)
	assert.Equal(t, "c2", items[0].LatestCrime.ID)

	// Second has none; the feed still lists them.
	assert.Equal(t, 0, items[1].CrimeCount)
	assert.Nil(t, items[1].LatestCrime)

	// Last page.
	items, pagination, err = svc.Feed(2, 2)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.False(t, pagination.HasMore)
}

func TestFeedClampsPaging(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	_, pagination, err := svc.Feed(-3, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, defaultFeedLimit, pagination.Limit)

	_, pagination, err = svc.Feed(1, 500)
	require.NoError(t, err)
	assert.Equal(t, maxFeedLimit, pagination.Limit)
}
