// Package search provides bookmark search using Bleve. Queries are
// case-insensitive substring matches over url, name, and description,
// always scoped to a single user.
package search

import (
	"github.com/linkvaultapp/linkvault-server/internal/domain"
)

// SearchDocument is the document structure for the Bleve index.
//
// Text fields use the lowercase keyword analyzer: the whole field value
// becomes a single lowercased term, so wildcard queries give substring
// semantics instead of token matching. user_id is an exact keyword for
// scoping every query to its owner.
type SearchDocument struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	URL         string `json:"url"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// Unix millis, for sorting by recency.
	CreatedAt int64 `json:"created_at"`
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *SearchDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"user_id":    d.UserID,
		"url":        d.URL,
		"name":       d.Name,
		"created_at": d.CreatedAt,
	}

	if d.Description != "" {
		m["description"] = d.Description
	}

	return m
}

// BookmarkToSearchDocument converts a domain Bookmark to a SearchDocument.
func BookmarkToSearchDocument(bm *domain.Bookmark) *SearchDocument {
	return &SearchDocument{
		ID:          bm.ID,
		UserID:      bm.UserID,
		URL:         bm.URL,
		Name:        bm.Name,
		Description: bm.Description,
		CreatedAt:   bm.CreatedAt.UnixMilli(),
	}
}
