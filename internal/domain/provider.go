package domain

import "context"

// Catalog is the remote manga catalog the downloader talks to.
type Catalog interface {
	String() string
	Search(ctx context.Context, query string) ([]Manga, error)
	GetManga(ctx context.Context, mangaID string) (Manga, error)
	Aggregate(ctx context.Context, mangaID string) (Aggregate, error)
	ListPages(ctx context.Context, chapterID string) (PageList, error)
	FetchPage(ctx context.Context, pages PageList, filename string) ([]byte, error)
}

type Status string

const (
	StatusCompleted Status = "completed"
	StatusOngoing   Status = "ongoing"
	StatusCancelled Status = "cancelled"
	StatusHiatus    Status = "hiatus"
)

func (s Status) Valid() bool {
	switch s {
	case StatusCompleted, StatusOngoing, StatusCancelled, StatusHiatus:
		return true
	}
	return false
}

type ContentRating string

const (
	RatingSafe         ContentRating = "safe"
	RatingSuggestive   ContentRating = "suggestive"
	RatingErotica      ContentRating = "erotica"
	RatingPornographic ContentRating = "pornographic"
)

func (r ContentRating) Valid() bool {
	switch r {
	case RatingSafe, RatingSuggestive, RatingErotica, RatingPornographic:
		return true
	}
	return false
}

type Manga struct {
	ID                 string
	Title              string
	Description        string
	Year               *int
	Status             Status
	ContentRating      ContentRating
	AvailableLanguages []string
}

// HasLanguage reports whether a translation exists for lang.
func (m Manga) HasLanguage(lang string) bool {
	for _, l := range m.AvailableLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

type Volume struct {
	Label    string
	Chapters []Chapter
}

type Chapter struct {
	Label string
	ID    string
}

// PageList is what the at-home endpoint hands out for one chapter.
// Files are opaque and only meaningful together with Hash.
type PageList struct {
	BaseURL string
	Hash    string
	Files   []string
}

type Page struct {
	Index     int
	Volume    string
	Data      []byte
	Extension string
}
