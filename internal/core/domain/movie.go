package domain

import (
	"errors"
	"strings"
	"time"
)

// MaxImages is the hard cap on image slots per movie.
const MaxImages = 3

var (
	ErrMovieNotFound       = errors.New("movie not found")
	ErrUploadLimitExceeded = errors.New("upload limit exceeded")
	ErrImagesRequired      = errors.New("at least one image is required")
)

// Classification is the age rating of a movie.
type Classification string

const (
	ClassificationSeven    Classification = "siete"
	ClassificationThirteen Classification = "trece"
	ClassificationSixteen  Classification = "dieciseis"
	ClassificationEighteen Classification = "dieciocho"
)

// Valid reports whether c is one of the known ratings.
func (c Classification) Valid() bool {
	switch c {
	case ClassificationSeven, ClassificationThirteen, ClassificationSixteen, ClassificationEighteen:
		return true
	}
	return false
}

// ImageSlot pairs the public URL of one stored image with its storage path.
type ImageSlot struct {
	URL       string `json:"url" bson:"url"`
	LocalPath string `json:"local_path" bson:"local_path"`
}

// Movie is the catalog record.
type Movie struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	Duration       int            `json:"duration"`
	Classification Classification `json:"classification"`
	CategoryID     string         `json:"category_id"`
	Images         []ImageSlot    `json:"images"`
	CreatedAt      time.Time      `json:"created_at"`
}

// NameKey is the value movie names are compared by for uniqueness.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// MovieFields holds the client-supplied attributes of a movie.
type MovieFields struct {
	Name           string
	Description    string
	Duration       int
	Classification Classification
	CategoryID     string
}

// Validate returns the field failures of f, or nil.
func (f MovieFields) Validate() *ValidationError {
	verr := &ValidationError{}
	if strings.TrimSpace(f.Name) == "" {
		verr.Add("name", "name is required")
	}
	if f.Duration < 0 {
		verr.Add("duration", "duration must not be negative")
	}
	if !f.Classification.Valid() {
		verr.Add("classification", "classification must be one of: siete trece dieciseis dieciocho")
	}
	if strings.TrimSpace(f.CategoryID) == "" {
		verr.Add("category_id", "category_id is required")
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}
