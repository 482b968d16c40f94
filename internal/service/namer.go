package service

import (
	"context"
	"fmt"
	"path"
	"strings"

	"agencydesk/creator-api/internal/model"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"
)

const nameSuffixLen = 4

// ResolveName returns a filename that doesn't collide with any media record
// in the same (creator, folder, bucket) scope. When the desired name is
// free it comes back unchanged; otherwise a short random suffix is inserted
// before the extension until a free name is found.
//
// This is probe-then-insert with no lock: two sessions uploading the same
// name at the same time can still both pass the probe. Accepted limitation,
// the bucket key keeps the objects themselves apart.
func ResolveName(ctx context.Context, db *gorm.DB, desired, folderID, creatorID, bucket string) (string, error) {
	q := db.WithContext(ctx).
		Model(&model.MediaFile{}).
		Where("creator_id = ? AND bucket = ?", creatorID, bucket)

	members := db.Table("media_folders").Select("media_file_id")
	if folderID == "" {
		q = q.Where("id NOT IN (?)", members)
	} else {
		q = q.Where("id IN (?)", members.Where("folder_id = ?", folderID))
	}

	var names []string
	if err := q.Pluck("filename", &names).Error; err != nil {
		return "", fmt.Errorf("failed to query existing filenames, %w", err)
	}

	taken := make(map[string]struct{}, len(names))
	for _, n := range names {
		taken[strings.ToLower(n)] = struct{}{}
	}

	if _, ok := taken[strings.ToLower(desired)]; !ok {
		return desired, nil
	}

	ext := path.Ext(desired)
	stem := strings.TrimSuffix(desired, ext)

	for {
		suffix, err := gonanoid.Generate("abcdefghijklmnopqrstuvwxyz0123456789", nameSuffixLen)
		if err != nil {
			return "", fmt.Errorf("failed to generate name suffix, %w", err)
		}

		candidate := fmt.Sprintf("%s-%s%s", stem, suffix, ext)
		if _, ok := taken[strings.ToLower(candidate)]; !ok {
			return candidate, nil
		}
	}
}
