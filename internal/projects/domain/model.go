package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Project is a single portfolio item. It is storage-agnostic and used across
// repository and HTTP layers; only Title is validated.
type Project struct {
	ID            int64       `json:"id"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	Category      string      `json:"category,omitempty"`
	Technologies  StringSlice `json:"technologies,omitempty"`
	Image         string      `json:"image,omitempty"`
	GithubURL     string      `json:"githubUrl,omitempty"`
	LiveURL       string      `json:"liveUrl,omitempty"`
	CompletedDate string      `json:"completedDate,omitempty"`
	Featured      bool        `json:"featured"`
}

// HasTitle reports whether the project carries a non-blank title.
func (p Project) HasTitle() bool {
	return strings.TrimSpace(p.Title) != ""
}

// ProjectPatch carries the fields supplied in a partial update.
// A nil field was not supplied and keeps its stored value.
type ProjectPatch struct {
	Title         *string      `json:"title,omitempty"`
	Description   *string      `json:"description,omitempty"`
	Category      *string      `json:"category,omitempty"`
	Technologies  *StringSlice `json:"technologies,omitempty"`
	Image         *string      `json:"image,omitempty"`
	GithubURL     *string      `json:"githubUrl,omitempty"`
	LiveURL       *string      `json:"liveUrl,omitempty"`
	CompletedDate *string      `json:"completedDate,omitempty"`
	Featured      *bool        `json:"featured,omitempty"`
}

// Apply merges the patch over p. The id is never touched.
func (pp ProjectPatch) Apply(p *Project) {
	if pp.Title != nil {
		p.Title = *pp.Title
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.Category != nil {
		p.Category = *pp.Category
	}
	if pp.Technologies != nil {
		p.Technologies = append(StringSlice(nil), (*pp.Technologies)...)
	}
	if pp.Image != nil {
		p.Image = *pp.Image
	}
	if pp.GithubURL != nil {
		p.GithubURL = *pp.GithubURL
	}
	if pp.LiveURL != nil {
		p.LiveURL = *pp.LiveURL
	}
	if pp.CompletedDate != nil {
		p.CompletedDate = *pp.CompletedDate
	}
	if pp.Featured != nil {
		p.Featured = *pp.Featured
	}
}

// Validate rejects a patch that would blank the title. A stored project
// always keeps a title, so every collection can be written back as-is.
func (pp ProjectPatch) Validate() error {
	if pp.Title != nil && strings.TrimSpace(*pp.Title) == "" {
		return ErrTitleRequired
	}
	return nil
}

// IsEmpty reports whether no field was supplied.
func (pp ProjectPatch) IsEmpty() bool {
	return pp == ProjectPatch{}
}

// StringSlice is stored as a JSON array in SQL columns.
type StringSlice []string

func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to unmarshal JSON value: %v", value)
	}

	return json.Unmarshal(bytes, s)
}

func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
