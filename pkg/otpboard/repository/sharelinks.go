package repository

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/mikepea/otpboard/pkg/otpboard/models"
)

const (
	// ShortLinkLength is the number of characters in a share token
	ShortLinkLength = 16
	// MaxShortLinkAttempts bounds the search for an unused token
	MaxShortLinkAttempts = 10

	shortLinkAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// ShareLinkRepository stores the public share tokens of accounts
type ShareLinkRepository struct {
	base
	generate func() (string, error)
}

func newShareLinkRepository(b base) *ShareLinkRepository {
	return &ShareLinkRepository{base: b, generate: randomShortLink}
}

// randomShortLink draws ShortLinkLength characters uniformly from the alphabet
func randomShortLink() (string, error) {
	max := big.NewInt(int64(len(shortLinkAlphabet)))
	b := make([]byte, ShortLinkLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = shortLinkAlphabet[n.Int64()]
	}
	return string(b), nil
}

// ValidShortLink reports whether s has the shape of an issued token
func ValidShortLink(s string) bool {
	if len(s) != ShortLinkLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

// CreateForAccount returns the account's share link, issuing one if it has none.
// Calling it again, or concurrently, yields the same token.
func (r *ShareLinkRepository) CreateForAccount(ctx context.Context, accountID uint) (*models.ShareLink, error) {
	existing, err := r.FindByAccountID(ctx, accountID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	db, cancel := r.session(ctx)
	defer cancel()

	if err := db.Select("id").First(&models.Account{}, accountID).Error; err != nil {
		return nil, storageError("create share link", err)
	}

	for attempt := 0; attempt < MaxShortLinkAttempts; attempt++ {
		token, err := r.generate()
		if err != nil {
			return nil, storageError("create share link", err)
		}

		var taken int64
		if err := db.Model(&models.ShareLink{}).Where("short_link = ?", token).Count(&taken).Error; err != nil {
			return nil, storageError("create share link", err)
		}
		if taken > 0 {
			continue
		}

		link := models.ShareLink{ShortLink: token, AccountID: accountID}
		err = db.Create(&link).Error
		if err == nil {
			return &link, nil
		}
		if !isDuplicate(err) {
			return nil, storageError("create share link", err)
		}

		// Either another request linked this account first, or the token was
		// taken between the check and the insert.
		if winner, ferr := r.FindByAccountID(ctx, accountID); ferr == nil {
			return winner, nil
		}
	}

	r.logger.WarnContext(ctx, "share link generation exhausted",
		"account_id", accountID, "attempts", MaxShortLinkAttempts)
	return nil, ErrShortLinkExhausted
}

// FindByShortLink resolves a share token. Tokens that could never have been
// issued are rejected without a query.
func (r *ShareLinkRepository) FindByShortLink(ctx context.Context, token string) (*models.ShareLink, error) {
	if !ValidShortLink(token) {
		return nil, ErrNotFound
	}

	db, cancel := r.session(ctx)
	defer cancel()

	var link models.ShareLink
	if err := db.Where("short_link = ?", token).First(&link).Error; err != nil {
		return nil, storageError("find share link", err)
	}
	return &link, nil
}

// FindByAccountID returns the share link of an account
func (r *ShareLinkRepository) FindByAccountID(ctx context.Context, accountID uint) (*models.ShareLink, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	var link models.ShareLink
	if err := db.Where("account_id = ?", accountID).First(&link).Error; err != nil {
		return nil, storageError("find share link", err)
	}
	return &link, nil
}

// DeleteByAccountID revokes an account's share link and reports whether one existed
func (r *ShareLinkRepository) DeleteByAccountID(ctx context.Context, accountID uint) (bool, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	result := db.Where("account_id = ?", accountID).Delete(&models.ShareLink{})
	if result.Error != nil {
		return false, storageError("delete share link", result.Error)
	}
	return result.RowsAffected > 0, nil
}
