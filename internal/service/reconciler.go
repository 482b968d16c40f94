package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"agencydesk/creator-api/internal/model"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrFolderNotFound   = errors.New("folder not found")
	ErrCategoryNotFound = errors.New("category not found")
)

// Reconciler owns folder/category bookkeeping. Membership lives in the
// media_folders join table and every multi-row change runs inside one
// transaction, so a failure mid-way leaves nothing half-applied.
type Reconciler struct {
	DB *gorm.DB
}

func NewReconciler(db *gorm.DB) *Reconciler {
	return &Reconciler{DB: db}
}

var slugCleaner = regexp.MustCompile(`[^a-z0-9]+`)

// FolderSlug builds a folder id from its name plus a random suffix, so two
// folders may share a display name without clashing.
func FolderSlug(name string) string {
	slug := slugCleaner.ReplaceAllString(strings.ToLower(name), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "folder"
	}

	suffix, _ := gonanoid.Generate("abcdefghijklmnopqrstuvwxyz0123456789", 6)
	return slug + "-" + suffix
}

// CreateFolder registers a folder and attaches the given media files to it
// in the same transaction.
func (r *Reconciler) CreateFolder(ctx context.Context, name string, fileIDs []string, categoryID *string) (*model.Folder, error) {
	folder := &model.Folder{
		ID:         FolderSlug(name),
		Name:       name,
		CategoryID: categoryID,
		CreatedAt:  time.Now(),
	}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if categoryID != nil {
			var count int64
			if err := tx.Model(&model.Category{}).Where("id = ?", *categoryID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrCategoryNotFound
			}
		}

		if err := tx.Create(folder).Error; err != nil {
			return err
		}

		return attachFiles(tx, folder.ID, fileIDs)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create folder, %w", err)
	}

	return folder, nil
}

// AddFilesToFolder attaches the given media files to a folder. Re-adding an
// existing member is a no-op rather than an error.
func (r *Reconciler) AddFilesToFolder(ctx context.Context, fileIDs []string, folderID string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Folder{}).Where("id = ?", folderID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrFolderNotFound
		}

		return attachFiles(tx, folderID, fileIDs)
	})
}

// RemoveFilesFromFolder detaches the given media files from a folder. Files
// themselves are untouched.
func (r *Reconciler) RemoveFilesFromFolder(ctx context.Context, fileIDs []string, folderID string) error {
	if len(fileIDs) == 0 {
		return nil
	}

	return r.DB.WithContext(ctx).
		Table("media_folders").
		Where("folder_id = ? AND media_file_id IN ?", folderID, fileIDs).
		Delete(nil).
		Error
}

// DeleteFolder removes the folder row and every membership pointing at it.
// Member files survive, they just lose the reference.
func (r *Reconciler) DeleteFolder(ctx context.Context, folderID string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table("media_folders").Where("folder_id = ?", folderID).Delete(nil).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", folderID).Delete(&model.Folder{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrFolderNotFound
		}

		return nil
	})
}

// DeleteCategory removes a category together with its child folders and all
// memberships into those folders, atomically.
func (r *Reconciler) DeleteCategory(ctx context.Context, categoryID string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var folderIDs []string
		err := tx.Model(&model.Folder{}).
			Where("category_id = ?", categoryID).
			Pluck("id", &folderIDs).
			Error
		if err != nil {
			return err
		}

		if len(folderIDs) > 0 {
			if err := tx.Table("media_folders").Where("folder_id IN ?", folderIDs).Delete(nil).Error; err != nil {
				return err
			}

			if err := tx.Where("id IN ?", folderIDs).Delete(&model.Folder{}).Error; err != nil {
				return err
			}
		}

		res := tx.Where("id = ?", categoryID).Delete(&model.Category{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCategoryNotFound
		}

		return nil
	})
}

func (r *Reconciler) RenameFolder(ctx context.Context, folderID, name string) error {
	res := r.DB.WithContext(ctx).
		Model(&model.Folder{}).
		Where("id = ?", folderID).
		Update("name", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrFolderNotFound
	}

	return nil
}

func (r *Reconciler) CreateCategory(ctx context.Context, name string) (*model.Category, error) {
	cat := &model.Category{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now(),
	}

	if err := r.DB.WithContext(ctx).Create(cat).Error; err != nil {
		return nil, fmt.Errorf("failed to create category, %w", err)
	}

	return cat, nil
}

func (r *Reconciler) RenameCategory(ctx context.Context, categoryID, name string) error {
	res := r.DB.WithContext(ctx).
		Model(&model.Category{}).
		Where("id = ?", categoryID).
		Update("name", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

// FolderIDs returns the folder ids a media file currently belongs to.
func (r *Reconciler) FolderIDs(ctx context.Context, mediaID string) ([]string, error) {
	var ids []string
	err := r.DB.WithContext(ctx).
		Table("media_folders").
		Where("media_file_id = ?", mediaID).
		Pluck("folder_id", &ids).
		Error

	return ids, err
}

func attachFiles(tx *gorm.DB, folderID string, fileIDs []string) error {
	if len(fileIDs) == 0 {
		return nil
	}

	var count int64
	if err := tx.Model(&model.MediaFile{}).Where("id IN ?", fileIDs).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(fileIDs)) {
		return errors.New("one or more files do not exist")
	}

	rows := make([]map[string]any, 0, len(fileIDs))
	for _, id := range fileIDs {
		rows = append(rows, map[string]any{
			"media_file_id": id,
			"folder_id":     folderID,
		})
	}

	return tx.Table("media_folders").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(rows).
		Error
}
