package models

import (
	"time"
)

// Tag represents a label that can be applied to accounts
type Tag struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	Color     string    `json:"color"` // Presentation hint, e.g. "bg-red-100 text-red-800"
}
