package models

import "time"

// ShareLink grants unauthenticated, read-only access to one account's live code.
// Both the token and the owning account are unique, so an account has at most one link.
type ShareLink struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ShortLink string    `gorm:"size:32;uniqueIndex;not null" json:"short_link"`
	AccountID uint      `gorm:"uniqueIndex;not null" json:"account_id"`
}
