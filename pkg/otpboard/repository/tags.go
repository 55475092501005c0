package repository

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"

	"github.com/mikepea/otpboard/pkg/otpboard/models"
	"gorm.io/gorm"
)

// Palette holds the presentation colours assigned to tags created by name
var Palette = []string{
	"bg-red-100 text-red-800",
	"bg-blue-100 text-blue-800",
	"bg-green-100 text-green-800",
	"bg-yellow-100 text-yellow-800",
	"bg-purple-100 text-purple-800",
	"bg-pink-100 text-pink-800",
}

// PaletteColor picks a palette entry from the name, so a tag keeps its colour
// when it is recreated
func PaletteColor(name string) string {
	h := fnv.New32a()
	h.Write([]byte(name))
	return Palette[h.Sum32()%uint32(len(Palette))]
}

// TagRepository stores tags
type TagRepository struct {
	base
}

// TagUsage is a tag with the number of accounts carrying it
type TagUsage struct {
	models.Tag
	AccountCount int64 `json:"account_count"`
}

// Create inserts a new tag. Names are unique; a duplicate returns ErrConflict.
func (r *TagRepository) Create(ctx context.Context, name, color string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("tag name is required")
	}
	if color == "" {
		color = PaletteColor(name)
	}

	db, cancel := r.session(ctx)
	defer cancel()

	tag := models.Tag{Name: name, Color: color}
	if err := db.Create(&tag).Error; err != nil {
		if isDuplicate(err) {
			return nil, ErrConflict
		}
		return nil, storageError("create tag", err)
	}
	return &tag, nil
}

// FindAll returns all tags ordered by name
func (r *TagRepository) FindAll(ctx context.Context) ([]models.Tag, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	tags := []models.Tag{}
	if err := db.Order("name ASC").Find(&tags).Error; err != nil {
		return nil, storageError("list tags", err)
	}
	return tags, nil
}

// Usage returns all tags with their account counts, ordered by name
func (r *TagRepository) Usage(ctx context.Context) ([]TagUsage, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	results := []TagUsage{}
	err := db.Table("tags").
		Select("tags.*, COUNT(account_tags.account_id) AS account_count").
		Joins("LEFT JOIN account_tags ON account_tags.tag_id = tags.id").
		Group("tags.id").
		Order("tags.name ASC").
		Scan(&results).Error
	if err != nil {
		return nil, storageError("list tag usage", err)
	}
	return results, nil
}

// FindByID returns one tag
func (r *TagRepository) FindByID(ctx context.Context, id uint) (*models.Tag, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	var tag models.Tag
	if err := db.First(&tag, id).Error; err != nil {
		return nil, storageError("find tag", err)
	}
	return &tag, nil
}

// FindByName returns the tag with exactly this name
func (r *TagRepository) FindByName(ctx context.Context, name string) (*models.Tag, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	var tag models.Tag
	if err := db.Where("name = ?", strings.TrimSpace(name)).First(&tag).Error; err != nil {
		return nil, storageError("find tag by name", err)
	}
	return &tag, nil
}

// FindOrCreateByName returns the named tag, creating it with a palette colour if needed.
// Two callers racing on the same new name both end up with the same row.
func (r *TagRepository) FindOrCreateByName(ctx context.Context, name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("tag name is required")
	}

	tag, err := r.FindByName(ctx, name)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	tag, err = r.Create(ctx, name, PaletteColor(name))
	if errors.Is(err, ErrConflict) {
		return r.FindByName(ctx, name)
	}
	return tag, err
}

// Update renames or recolours a tag. Empty arguments leave the field alone.
func (r *TagRepository) Update(ctx context.Context, id uint, name, color string) (*models.Tag, error) {
	changes := map[string]interface{}{}
	if name = strings.TrimSpace(name); name != "" {
		changes["name"] = name
	}
	if color != "" {
		changes["color"] = color
	}

	db, cancel := r.session(ctx)
	defer cancel()

	var tag models.Tag
	if err := db.First(&tag, id).Error; err != nil {
		return nil, storageError("update tag", err)
	}
	if len(changes) == 0 {
		return &tag, nil
	}
	if err := db.Model(&tag).Updates(changes).Error; err != nil {
		if isDuplicate(err) {
			return nil, ErrConflict
		}
		return nil, storageError("update tag", err)
	}
	if err := db.First(&tag, id).Error; err != nil {
		return nil, storageError("update tag", err)
	}
	return &tag, nil
}

// Delete removes a tag and every association to it
func (r *TagRepository) Delete(ctx context.Context, id uint) error {
	db, cancel := r.session(ctx)
	defer cancel()

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", id).Delete(&models.AccountTag{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Tag{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return storageError("delete tag", err)
	}
	return nil
}
