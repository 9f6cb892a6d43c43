package models

import "time"

// Person is a profile that crime reports attach to. The slug is the public,
// URL-safe identifier; it is unique and never changes after creation.
type Person struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	ImageURL  string    `json:"imageUrl,omitempty" db:"image_url"`
	Slug      string    `json:"slug" db:"slug"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Crime is a single report against a person. Deleting the person cascades to
// its crimes.
type Crime struct {
	ID                 string             `json:"id" db:"id"`
	PersonID           string             `json:"personId" db:"person_id"`
	Location           string             `json:"location,omitempty" db:"location"`
	CrimeImages        StringList         `json:"crimeImages" db:"crime_images"`
	Sources            StringList         `json:"sources" db:"sources"`
	ProfileURL         string             `json:"profileUrl,omitempty" db:"profile_url"`
	Tags               StringList         `json:"tags" db:"tags"`
	VerificationStatus VerificationStatus `json:"verificationStatus" db:"verification_status"`
	CreatedAt          time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time          `json:"updatedAt" db:"updated_at"`
}

// PersonFeedItem is one entry of the public landing feed.
type PersonFeedItem struct {
	Person      Person `json:"person"`
	LatestCrime *Crime `json:"latestCrime"`
	CrimeCount  int    `json:"crimeCount"`
}

// Pagination describes one page of a feed response.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasMore    bool `json:"hasMore"`
}
