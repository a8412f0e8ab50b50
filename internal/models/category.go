package models

import "strings"

type Category struct {
	ID uint `gorm:"primaryKey" json:"id"`
	BaseEntity
	ParentID *uint      `gorm:"index" json:"parent_id"`
	Parent   *Category  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Children []Category `gorm:"foreignKey:ParentID" json:"-"`
	Timestamps
}

func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return invalid("name", "must not be empty")
	}
	if c.ParentID != nil && c.ID != 0 && *c.ParentID == c.ID {
		return invalid("parent_id", "a category cannot be its own parent")
	}
	return nil
}
