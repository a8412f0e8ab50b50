package models

import "time"

// Timestamps is embedded by every persisted entity.
type Timestamps struct {
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BaseEntity holds the fields shared by named catalog entities.
type BaseEntity struct {
	Name        string `gorm:"size:200;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	IsActive    bool   `gorm:"not null" json:"is_active"`
}
