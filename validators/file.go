// Package validators checks incoming uploads before any network call is made
package validators

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/viper"
)

var (
	ErrFileTooLarge        = errors.New("file too large")
	ErrFileNameTooLong     = errors.New("file name is too long")
	ErrFileTypeUnsupported = errors.New("unsupported file type")
	ErrNoFile              = errors.New("no file provided")
	ErrZipNeedsCategory    = errors.New("a category is required when uploading an archive")
)

const maxFileNameSize = 245 // Leaves room for the thumb_ prefix on object keys

// FileValidator rejects a file before it consumes a batch slot. Returns the
// HTTP status to report, the detected content type and an error describing
// the problem.
func FileValidator(fh *multipart.FileHeader) (int, string, error) {
	if fh == nil {
		return http.StatusBadRequest, "", ErrNoFile
	}

	if len(fh.Filename) > maxFileNameSize {
		return http.StatusBadRequest, "", ErrFileNameTooLong
	}

	maxFileSize := viper.GetInt64("upload.max_size")
	if fh.Size > maxFileSize {
		return http.StatusRequestEntityTooLarge, "", ErrFileTooLarge
	}

	allowed := viper.GetStringSlice("upload.allowed_types")

	// Check headers first which is easy to spoof, but faster for legit clients
	ct := fh.Header.Get("Content-Type")
	if len(allowed) > 0 && !slices.Contains(allowed, ct) {
		return http.StatusBadRequest, "", ErrFileTypeUnsupported
	}

	// And now sniff the actual content to catch malicious clients
	f, err := fh.Open()
	if err != nil {
		return http.StatusInternalServerError, "", err
	}
	defer f.Close()

	mime, err := mimetype.DetectReader(f)
	if err != nil {
		return http.StatusInternalServerError, "", err
	}

	detected := mime.String()
	if len(allowed) > 0 && !typeAllowed(detected, allowed) {
		return http.StatusBadRequest, "", ErrFileTypeUnsupported
	}

	if seeker, ok := f.(io.Seeker); ok {
		seeker.Seek(0, io.SeekStart)
	}

	return http.StatusOK, detected, nil
}

func typeAllowed(detected string, allowed []string) bool {
	for _, a := range allowed {
		if detected == a || strings.HasPrefix(detected, strings.TrimSuffix(a, "*")) {
			return true
		}
	}

	return false
}
