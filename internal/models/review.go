package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review represents a customer testimonial. Role here is the reviewer's
// job title, unrelated to account roles.
type Review struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Company   string    `json:"company"`
	Role      string    `json:"role"`
	Rating    int       `gorm:"not null" json:"rating"`
	Text      string    `gorm:"type:text" json:"text"`
	Avatar    string    `gorm:"type:text" json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// BeforeCreate assigns a server-side identifier before insert.
func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ReviewUpdate is a partial update: only non-nil fields are applied.
type ReviewUpdate struct {
	Name    *string `json:"name"`
	Company *string `json:"company"`
	Role    *string `json:"role"`
	Rating  *int    `json:"rating"`
	Text    *string `json:"text"`
	Avatar  *string `json:"avatar"`
}

// Changes builds the column/value map for the supplied fields. Omitted
// fields are left untouched, never nulled out.
func (u ReviewUpdate) Changes() map[string]any {
	changes := map[string]any{}
	if u.Name != nil {
		changes["name"] = *u.Name
	}
	if u.Company != nil {
		changes["company"] = *u.Company
	}
	if u.Role != nil {
		changes["role"] = *u.Role
	}
	if u.Rating != nil {
		changes["rating"] = *u.Rating
	}
	if u.Text != nil {
		changes["text"] = *u.Text
	}
	if u.Avatar != nil {
		changes["avatar"] = *u.Avatar
	}
	return changes
}
