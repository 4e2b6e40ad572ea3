package store

import (
	"time"

	"github.com/Digital-Shane/show-manager/internal/provider"
)

// Bookmark is a show the user saved locally
type Bookmark struct {
	ID        string             `gorm:"primaryKey" json:"id"`
	Title     string             `gorm:"not null" json:"title"`
	Year      string             `json:"year"`
	Poster    string             `json:"poster"`
	Type      provider.MediaType `json:"type"`
	Catalog   string             `json:"catalog"`
	CreatedAt time.Time          `gorm:"not null" json:"created_at"`
}

// TableName pins the table name used by migrations
func (Bookmark) TableName() string { return "bookmarks" }

// FromSummary builds a bookmark from a search result row
func FromSummary(show provider.ShowSummary, catalog string) Bookmark {
	return Bookmark{
		ID:      show.ID,
		Title:   show.Title,
		Year:    show.Year,
		Poster:  show.Poster,
		Type:    show.Type,
		Catalog: catalog,
	}
}

// Summary converts the bookmark back into a result row
func (b Bookmark) Summary() provider.ShowSummary {
	return provider.ShowSummary{
		ID:     b.ID,
		Title:  b.Title,
		Year:   b.Year,
		Poster: b.Poster,
		Type:   b.Type,
	}
}

type schemaMigration struct {
	Version   string    `gorm:"primaryKey"`
	AppliedAt time.Time `gorm:"not null"`
}

func (schemaMigration) TableName() string { return "schema_migrations" }
