package models

import (
	"time"
)

// DefaultPeriod is the TOTP refresh period used when an account does not set one
const DefaultPeriod = 30

// Account represents a stored TOTP secret
type Account struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Issuer    string    `gorm:"not null;index:idx_issuer_account" json:"issuer"`
	Name      string    `gorm:"column:account;not null;index:idx_issuer_account" json:"account"`
	Secret    string    `gorm:"not null" json:"secret"`
	Remark    string    `json:"remark"`
	Period    int       `gorm:"not null;default:30" json:"period"`

	// Relationships, populated on read
	Tags      []Tag      `gorm:"many2many:account_tags;constraint:OnDelete:CASCADE" json:"tags"`
	ShareLink *ShareLink `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" json:"-"`
}

// EffectivePeriod returns the account period, falling back to DefaultPeriod
func (a *Account) EffectivePeriod() int {
	if a.Period <= 0 {
		return DefaultPeriod
	}
	return a.Period
}

// ShortLink returns the account's share token, or "" when it has none
func (a *Account) ShortLink() string {
	if a.ShareLink == nil {
		return ""
	}
	return a.ShareLink.ShortLink
}

// AccountTag is a row of the account_tags join table
type AccountTag struct {
	AccountID uint `gorm:"primaryKey"`
	TagID     uint `gorm:"primaryKey"`
}

// TableName pins the join table name shared with Account.Tags
func (AccountTag) TableName() string {
	return "account_tags"
}
