package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Product represents a portfolio entry. Title is globally unique; the
// technologies list keeps its insertion order.
type Product struct {
	ID           uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string                      `gorm:"uniqueIndex;not null" json:"title"`
	Category     string                      `json:"category"`
	Description  string                      `gorm:"type:text" json:"description"`
	Image        string                      `gorm:"type:text" json:"image,omitempty"`
	Technologies datatypes.JSONSlice[string] `json:"technologies"`
	GithubLink   string                      `json:"githubLink,omitempty"`
	LiveLink     string                      `json:"liveLink,omitempty"`
	ComingSoon   bool                        `gorm:"not null;default:false" json:"comingSoon"`
	CreatedAt    time.Time                   `json:"createdAt"`
}

// BeforeCreate assigns a server-side identifier before insert.
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ProductUpdate is a partial update: only non-nil fields are applied.
type ProductUpdate struct {
	Title        *string   `json:"title"`
	Category     *string   `json:"category"`
	Description  *string   `json:"description"`
	Image        *string   `json:"image"`
	Technologies *[]string `json:"technologies"`
	GithubLink   *string   `json:"githubLink"`
	LiveLink     *string   `json:"liveLink"`
	ComingSoon   *bool     `json:"comingSoon"`
}

// Changes builds the column/value map for the supplied fields. Omitted
// fields are left untouched, never nulled out.
func (u ProductUpdate) Changes() map[string]any {
	changes := map[string]any{}
	if u.Title != nil {
		changes["title"] = *u.Title
	}
	if u.Category != nil {
		changes["category"] = *u.Category
	}
	if u.Description != nil {
		changes["description"] = *u.Description
	}
	if u.Image != nil {
		changes["image"] = *u.Image
	}
	if u.Technologies != nil {
		changes["technologies"] = datatypes.NewJSONSlice(*u.Technologies)
	}
	if u.GithubLink != nil {
		changes["github_link"] = *u.GithubLink
	}
	if u.LiveLink != nil {
		changes["live_link"] = *u.LiveLink
	}
	if u.ComingSoon != nil {
		changes["coming_soon"] = *u.ComingSoon
	}
	return changes
}
