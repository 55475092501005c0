package models

import (
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	// each new connection would get its own empty in-memory database
	sqlDB.SetMaxOpenConns(1)
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}
	return db
}

func TestAutoMigrate(t *testing.T) {
	db := setupTestDB(t)

	tables := []string{"accounts", "tags", "account_tags", "share_links"}
	for _, table := range tables {
		if !db.Migrator().HasTable(table) {
			t.Errorf("Expected table %s to exist", table)
		}
	}

	if !db.Migrator().HasColumn(&Account{}, "account") {
		t.Error("Expected accounts.account column")
	}
}

func TestEffectivePeriod(t *testing.T) {
	tests := []struct {
		period int
		want   int
	}{
		{0, DefaultPeriod},
		{-5, DefaultPeriod},
		{60, 60},
	}
	for _, tt := range tests {
		acc := Account{Period: tt.period}
		if got := acc.EffectivePeriod(); got != tt.want {
			t.Errorf("EffectivePeriod(%d) = %d, want %d", tt.period, got, tt.want)
		}
	}
}

func TestAccountShortLink(t *testing.T) {
	acc := Account{}
	if acc.ShortLink() != "" {
		t.Errorf("Expected empty short link, got %q", acc.ShortLink())
	}
	acc.ShareLink = &ShareLink{ShortLink: "abcdefghijklmnop"}
	if acc.ShortLink() != "abcdefghijklmnop" {
		t.Errorf("Expected short link, got %q", acc.ShortLink())
	}
}

func TestAccountTagsAssociation(t *testing.T) {
	db := setupTestDB(t)

	tag := Tag{Name: "work", Color: "bg-blue-100 text-blue-800"}
	if err := db.Create(&tag).Error; err != nil {
		t.Fatalf("Failed to create tag: %v", err)
	}
	acc := Account{Issuer: "GitHub", Name: "alice", Secret: "JBSWY3DPEHPK3PXP", Period: 30, Tags: []Tag{tag}}
	if err := db.Create(&acc).Error; err != nil {
		t.Fatalf("Failed to create account: %v", err)
	}

	var links []AccountTag
	if err := db.Find(&links).Error; err != nil {
		t.Fatalf("Failed to read join table: %v", err)
	}
	if len(links) != 1 || links[0].AccountID != acc.ID || links[0].TagID != tag.ID {
		t.Errorf("Unexpected join rows: %+v", links)
	}

	var loaded Account
	if err := db.Preload("Tags").First(&loaded, acc.ID).Error; err != nil {
		t.Fatalf("Failed to load account: %v", err)
	}
	if len(loaded.Tags) != 1 || loaded.Tags[0].Name != "work" {
		t.Errorf("Expected tag work, got %+v", loaded.Tags)
	}
}

func TestUniqueConstraints(t *testing.T) {
	db := setupTestDB(t)

	if err := db.Create(&Tag{Name: "work"}).Error; err != nil {
		t.Fatalf("Failed to create tag: %v", err)
	}
	if err := db.Create(&Tag{Name: "work"}).Error; !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("Expected duplicate tag name to fail with ErrDuplicatedKey, got %v", err)
	}

	acc := Account{Issuer: "GitHub", Secret: "JBSWY3DPEHPK3PXP", Period: 30}
	if err := db.Create(&acc).Error; err != nil {
		t.Fatalf("Failed to create account: %v", err)
	}
	if err := db.Create(&ShareLink{ShortLink: "aaaaaaaaaaaaaaaa", AccountID: acc.ID}).Error; err != nil {
		t.Fatalf("Failed to create share link: %v", err)
	}
	if err := db.Create(&ShareLink{ShortLink: "bbbbbbbbbbbbbbbb", AccountID: acc.ID}).Error; !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("Expected second link for the same account to fail, got %v", err)
	}

	other := Account{Issuer: "GitLab", Secret: "JBSWY3DPEHPK3PXP", Period: 30}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("Failed to create account: %v", err)
	}
	if err := db.Create(&ShareLink{ShortLink: "aaaaaaaaaaaaaaaa", AccountID: other.ID}).Error; !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("Expected duplicate token to fail, got %v", err)
	}
}

func TestShareLinkCascade(t *testing.T) {
	db := setupTestDB(t)

	acc := Account{Issuer: "GitHub", Secret: "JBSWY3DPEHPK3PXP", Period: 30}
	if err := db.Create(&acc).Error; err != nil {
		t.Fatalf("Failed to create account: %v", err)
	}
	if err := db.Create(&ShareLink{ShortLink: "cccccccccccccccc", AccountID: acc.ID}).Error; err != nil {
		t.Fatalf("Failed to create share link: %v", err)
	}

	if err := db.Exec("DELETE FROM accounts WHERE id = ?", acc.ID).Error; err != nil {
		t.Fatalf("Failed to delete account: %v", err)
	}

	var count int64
	db.Model(&ShareLink{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected share link to be removed with its account, found %d", count)
	}
}
