package domain

import (
	"fmt"
	"strings"
	"time"
)

type ResourceFormat string

const (
	FormatBook    ResourceFormat = "book"
	FormatArticle ResourceFormat = "article"
	FormatVideo   ResourceFormat = "video"
	FormatGuide   ResourceFormat = "guide"
)

func IsResourceFormat(v string) bool {
	switch ResourceFormat(v) {
	case FormatBook, FormatArticle, FormatVideo, FormatGuide:
		return true
	}
	return false
}

// Resource is an entry in the virtual library.
type Resource struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Author    string         `json:"author,omitempty"`
	Category  string         `json:"category,omitempty"`
	Format    ResourceFormat `json:"format"`
	URL       string         `json:"url"`
	Tags      []string       `json:"tags,omitempty"`
	Year      int            `json:"year,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (r *Resource) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return WrapError(ErrInvalidInput, "resource", fmt.Errorf("title is required"))
	}
	if !IsResourceFormat(string(r.Format)) {
		return WrapError(ErrInvalidInput, "resource", fmt.Errorf("unknown format: %s", r.Format))
	}
	if strings.TrimSpace(r.URL) == "" {
		return WrapError(ErrInvalidInput, "resource", fmt.Errorf("url is required"))
	}
	return nil
}
