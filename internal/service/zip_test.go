package service

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildZip(t *testing.T, files map[string]string) *bytes.Reader {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return bytes.NewReader(buf.Bytes())
}

func TestExtractArchive(t *testing.T) {
	viper.Set("upload.max_size", int64(1<<20))

	r := buildZip(t, map[string]string{
		"nested/dir/clip.mp4": "video bytes",
		"cover.png":           "png bytes",
		"__MACOSX/cover.png":  "resource fork",
		".DS_Store":           "junk",
	})

	entries, err := ExtractArchive(r, r.Size())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byName := map[string]ArchiveEntry{}
	for _, e := range entries {
		byName[e.Name] = e
	}

	// Paths flatten to the base name
	clip, ok := byName["clip.mp4"]
	require.True(t, ok, "expected clip.mp4, got %v", entries)
	assert.EqualValues(t, len("video bytes"), clip.Size)

	rc, err := clip.Open()
	require.NoError(t, err)
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, "video bytes", string(content))

	_, ok = byName["cover.png"]
	assert.True(t, ok)
}

func TestExtractArchiveEmpty(t *testing.T) {
	viper.Set("upload.max_size", int64(1<<20))

	r := buildZip(t, map[string]string{
		"__MACOSX/cover.png": "resource fork",
		".hidden":            "junk",
	})

	_, err := ExtractArchive(r, r.Size())
	assert.ErrorIs(t, err, ErrArchiveEmpty)
}

func TestExtractArchiveTooLarge(t *testing.T) {
	viper.Set("upload.max_size", int64(10))

	r := buildZip(t, map[string]string{
		"big.png": "way more than ten bytes of payload",
	})

	_, err := ExtractArchive(r, r.Size())
	assert.ErrorIs(t, err, ErrArchiveTooLarge)
}

// Several entries under the limit individually must still trip it together.
func TestExtractArchiveTooLargeInAggregate(t *testing.T) {
	viper.Set("upload.max_size", int64(15))

	r := buildZip(t, map[string]string{
		"a.png": "ten bytes!",
		"b.png": "ten bytes!",
	})

	_, err := ExtractArchive(r, r.Size())
	assert.ErrorIs(t, err, ErrArchiveTooLarge)
}

func TestExtractArchiveGarbage(t *testing.T) {
	viper.Set("upload.max_size", int64(1<<20))

	r := bytes.NewReader([]byte("not a zip at all"))
	_, err := ExtractArchive(r, r.Size())
	assert.Error(t, err)
}
