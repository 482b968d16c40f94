package service

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/spf13/viper"
)

var (
	ErrArchiveEmpty    = errors.New("archive contains no usable files")
	ErrArchiveTooLarge = errors.New("archive contents exceed the upload size limit")
)

// ArchiveEntry is a single extractable file inside an uploaded ZIP. Open
// hands back the decompressed stream; callers must close it.
type ArchiveEntry struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// ExtractArchive lists the files inside a ZIP in archive order, skipping
// directories, OS metadata and hidden entries. Entry paths are flattened to
// their base name since extracted files all land in one folder.
// Declared uncompressed sizes are checked against the upload limit before
// anything is read, so a zip bomb is rejected without touching its payload.
func ExtractArchive(r io.ReaderAt, size int64) ([]ArchiveEntry, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive, %w", err)
	}

	maxSize := viper.GetInt64("upload.max_size")

	var entries []ArchiveEntry
	var total int64

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}

		name := path.Base(f.Name)
		if strings.HasPrefix(f.Name, "__MACOSX/") || strings.HasPrefix(name, ".") {
			continue
		}

		declared := int64(f.UncompressedSize64)
		if declared > maxSize {
			return nil, ErrArchiveTooLarge
		}

		total += declared
		if total > maxSize {
			return nil, ErrArchiveTooLarge
		}

		entries = append(entries, ArchiveEntry{
			Name: name,
			Size: declared,
			Open: f.Open,
		})
	}

	if len(entries) == 0 {
		return nil, ErrArchiveEmpty
	}

	return entries, nil
}
