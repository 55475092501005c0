package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/mikepea/otpboard/pkg/otpboard/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sort orders for account listings
const (
	SortByTime = "time"
	SortByName = "name"
)

// AccountRepository stores accounts and their tag associations
type AccountRepository struct {
	base
}

// NewAccount holds the fields of an account to create
type NewAccount struct {
	Issuer string
	Name   string
	Secret string
	Remark string
	Period int
	TagIDs []uint
}

// AccountUpdate holds the fields to change. Nil fields are left alone.
// A non-nil TagIDs replaces the whole tag set, so &[]uint{} clears it.
type AccountUpdate struct {
	Issuer *string
	Name   *string
	Secret *string
	Remark *string
	Period *int
	TagIDs *[]uint
}

// AccountFilter narrows and orders FindAll-style listings
type AccountFilter struct {
	Issuer string // exact issuer match
	TagIDs []uint // account must carry every tag
	Query  string // case-insensitive substring of issuer or account
	Sort   string // SortByTime (default) or SortByName
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// enrich gives read results a stable shape: tags is never nil
func enrich(acc *models.Account) {
	if acc.Tags == nil {
		acc.Tags = []models.Tag{}
	}
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Tags", func(db *gorm.DB) *gorm.DB {
		return db.Order("tags.name ASC")
	}).Preload("ShareLink")
}

// Create inserts the account, then associates its tags.
// The account insert is the success boundary: a failed tag write is logged
// and the account is returned without those tags.
func (r *AccountRepository) Create(ctx context.Context, in NewAccount) (*models.Account, error) {
	if strings.TrimSpace(in.Issuer) == "" {
		return nil, invalid("issuer is required")
	}
	if strings.TrimSpace(in.Secret) == "" {
		return nil, invalid("secret is required")
	}
	if in.Period < 0 {
		return nil, invalid("period must be positive")
	}
	period := in.Period
	if period == 0 {
		period = r.defaultPeriod
	}

	db, cancel := r.session(ctx)
	defer cancel()

	acc := models.Account{
		Issuer: in.Issuer,
		Name:   in.Name,
		Secret: in.Secret,
		Remark: in.Remark,
		Period: period,
	}
	if err := db.Create(&acc).Error; err != nil {
		return nil, storageError("create account", err)
	}

	acc.Tags = []models.Tag{}
	tagIDs := dedupe(in.TagIDs)
	if len(tagIDs) == 0 {
		return &acc, nil
	}

	rows := make([]models.AccountTag, len(tagIDs))
	for i, tagID := range tagIDs {
		rows[i] = models.AccountTag{AccountID: acc.ID, TagID: tagID}
	}
	if err := db.Create(&rows).Error; err != nil {
		r.logger.WarnContext(ctx, "account created without tags: tag association write failed",
			"account_id", acc.ID, "tag_ids", tagIDs, "error", err)
		return &acc, nil
	}

	if err := db.Where("id IN ?", tagIDs).Order("name ASC").Find(&acc.Tags).Error; err != nil {
		r.logger.WarnContext(ctx, "account created but tags could not be reloaded",
			"account_id", acc.ID, "error", err)
		acc.Tags = []models.Tag{}
	}
	return &acc, nil
}

// FindByID returns an account with its tags and share link
func (r *AccountRepository) FindByID(ctx context.Context, id uint) (*models.Account, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	var acc models.Account
	if err := withRelations(db).First(&acc, id).Error; err != nil {
		return nil, storageError("find account", err)
	}
	enrich(&acc)
	return &acc, nil
}

// FindAll returns every account, newest first
func (r *AccountRepository) FindAll(ctx context.Context) ([]models.Account, error) {
	return r.Search(ctx, AccountFilter{})
}

// Search returns accounts matching filter
func (r *AccountRepository) Search(ctx context.Context, filter AccountFilter) ([]models.Account, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	query := withRelations(db).Model(&models.Account{})

	if filter.Issuer != "" {
		query = query.Where("issuer = ?", filter.Issuer)
	}
	if tagIDs := dedupe(filter.TagIDs); len(tagIDs) > 0 {
		sub := db.Model(&models.AccountTag{}).
			Select("account_id").
			Where("tag_id IN ?", tagIDs).
			Group("account_id").
			Having("COUNT(DISTINCT tag_id) = ?", len(tagIDs))
		query = query.Where("id IN (?)", sub)
	}
	if q := strings.ToLower(strings.TrimSpace(filter.Query)); q != "" {
		term := "%" + q + "%"
		query = query.Where("LOWER(issuer) LIKE ? OR LOWER(account) LIKE ?", term, term)
	}

	switch filter.Sort {
	case SortByName:
		query = query.Order("issuer ASC").Order("account ASC").Order("id ASC")
	default:
		query = query.Order("created_at DESC").Order("id DESC")
	}

	var accounts []models.Account
	if err := query.Find(&accounts).Error; err != nil {
		return nil, storageError("list accounts", err)
	}
	for i := range accounts {
		enrich(&accounts[i])
	}
	return accounts, nil
}

// FindByIssuerAndAccount returns the account with an exact issuer (and account, when given).
// With only an issuer, several accounts can match; the oldest one wins.
func (r *AccountRepository) FindByIssuerAndAccount(ctx context.Context, issuer, account string) (*models.Account, error) {
	if issuer == "" {
		return nil, invalid("issuer is required")
	}

	db, cancel := r.session(ctx)
	defer cancel()

	query := withRelations(db).Where("issuer = ?", issuer)
	if account != "" {
		query = query.Where("account = ?", account)
	}

	var acc models.Account
	if err := query.Order("id ASC").First(&acc).Error; err != nil {
		return nil, storageError("find account by issuer", err)
	}
	enrich(&acc)
	return &acc, nil
}

// Update applies the present fields and, when TagIDs is set, replaces the tag set.
// Both happen in one transaction so readers never see a half-replaced set.
func (r *AccountRepository) Update(ctx context.Context, id uint, upd AccountUpdate) (*models.Account, error) {
	changes := map[string]interface{}{}
	if upd.Issuer != nil {
		if strings.TrimSpace(*upd.Issuer) == "" {
			return nil, invalid("issuer cannot be empty")
		}
		changes["issuer"] = *upd.Issuer
	}
	if upd.Name != nil {
		changes["account"] = *upd.Name
	}
	if upd.Secret != nil {
		if strings.TrimSpace(*upd.Secret) == "" {
			return nil, invalid("secret cannot be empty")
		}
		changes["secret"] = *upd.Secret
	}
	if upd.Remark != nil {
		changes["remark"] = *upd.Remark
	}
	if upd.Period != nil {
		if *upd.Period <= 0 {
			return nil, invalid("period must be positive")
		}
		changes["period"] = *upd.Period
	}

	db, cancel := r.session(ctx)
	defer cancel()

	err := db.Transaction(func(tx *gorm.DB) error {
		var acc models.Account
		if err := tx.Select("id").First(&acc, id).Error; err != nil {
			return err
		}

		if len(changes) > 0 {
			if err := tx.Model(&acc).Updates(changes).Error; err != nil {
				return err
			}
		}

		if upd.TagIDs == nil {
			return nil
		}
		return replaceTags(tx, id, dedupe(*upd.TagIDs))
	})
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			return nil, err
		}
		return nil, storageError("update account", err)
	}

	return r.FindByID(ctx, id)
}

// replaceTags swaps the full tag set of an account; tx must be a transaction
func replaceTags(tx *gorm.DB, accountID uint, tagIDs []uint) error {
	if len(tagIDs) > 0 {
		var found int64
		if err := tx.Model(&models.Tag{}).Where("id IN ?", tagIDs).Count(&found).Error; err != nil {
			return err
		}
		if found != int64(len(tagIDs)) {
			return invalid("unknown tag")
		}
	}

	if err := tx.Where("account_id = ?", accountID).Delete(&models.AccountTag{}).Error; err != nil {
		return err
	}
	if len(tagIDs) == 0 {
		return nil
	}

	rows := make([]models.AccountTag, len(tagIDs))
	for i, tagID := range tagIDs {
		rows[i] = models.AccountTag{AccountID: accountID, TagID: tagID}
	}
	return tx.Create(&rows).Error
}

// AddTag associates one tag with an account; adding it twice is a no-op
func (r *AccountRepository) AddTag(ctx context.Context, accountID, tagID uint) error {
	db, cancel := r.session(ctx)
	defer cancel()

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.Account{}, accountID).Error; err != nil {
			return err
		}
		if err := tx.Select("id").First(&models.Tag{}, tagID).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.AccountTag{AccountID: accountID, TagID: tagID}).Error
	})
	if err != nil {
		return storageError("add tag", err)
	}
	return nil
}

// RemoveTag drops one tag from an account
func (r *AccountRepository) RemoveTag(ctx context.Context, accountID, tagID uint) error {
	db, cancel := r.session(ctx)
	defer cancel()

	result := db.Where("account_id = ? AND tag_id = ?", accountID, tagID).Delete(&models.AccountTag{})
	if result.Error != nil {
		return storageError("remove tag", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an account along with its tag associations and share link
func (r *AccountRepository) Delete(ctx context.Context, id uint) error {
	db, cancel := r.session(ctx)
	defer cancel()

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("account_id = ?", id).Delete(&models.AccountTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("account_id = ?", id).Delete(&models.ShareLink{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Account{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return storageError("delete account", err)
	}
	return nil
}

// DeleteByIssuer removes every account with issuer and returns how many went
func (r *AccountRepository) DeleteByIssuer(ctx context.Context, issuer string) (int64, error) {
	if issuer == "" {
		return 0, invalid("issuer is required")
	}

	db, cancel := r.session(ctx)
	defer cancel()

	var deleted int64
	err := db.Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&models.Account{}).Where("issuer = ?", issuer).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("account_id IN ?", ids).Delete(&models.AccountTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("account_id IN ?", ids).Delete(&models.ShareLink{}).Error; err != nil {
			return err
		}
		result := tx.Where("id IN ?", ids).Delete(&models.Account{})
		deleted = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return 0, storageError("delete accounts by issuer", err)
	}
	return deleted, nil
}

// Count returns the number of stored accounts
func (r *AccountRepository) Count(ctx context.Context) (int64, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	var n int64
	if err := db.Model(&models.Account{}).Count(&n).Error; err != nil {
		return 0, storageError("count accounts", err)
	}
	return n, nil
}
