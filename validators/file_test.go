package validators

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func fileHeader(t *testing.T, name, contentType string, data []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, name))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)

	return form.File["files"][0]
}

func setupValidatorConfig() {
	viper.Set("upload.max_size", int64(1<<20))
	viper.Set("upload.allowed_types", []string{"image/png", "application/zip"})
}

func TestFileValidatorAccepts(t *testing.T) {
	setupValidatorConfig()

	fh := fileHeader(t, "cover.png", "image/png", pngMagic)

	code, detected, err := FileValidator(fh)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "image/png", detected)
}

func TestFileValidatorNoFile(t *testing.T) {
	setupValidatorConfig()

	code, _, err := FileValidator(nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.ErrorIs(t, err, ErrNoFile)
}

func TestFileValidatorRejectsDeclaredType(t *testing.T) {
	setupValidatorConfig()

	fh := fileHeader(t, "notes.txt", "text/plain", []byte("hello"))

	code, _, err := FileValidator(fh)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.ErrorIs(t, err, ErrFileTypeUnsupported)
}

// A legit-looking header with mismatched content must still be caught by the
// sniff pass.
func TestFileValidatorRejectsSpoofedType(t *testing.T) {
	setupValidatorConfig()

	fh := fileHeader(t, "cover.png", "image/png", []byte("just some text pretending"))

	code, _, err := FileValidator(fh)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.ErrorIs(t, err, ErrFileTypeUnsupported)
}

func TestFileValidatorRejectsOversized(t *testing.T) {
	setupValidatorConfig()
	viper.Set("upload.max_size", int64(4))

	fh := fileHeader(t, "cover.png", "image/png", pngMagic)

	code, _, err := FileValidator(fh)
	assert.Equal(t, http.StatusRequestEntityTooLarge, code)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestFileValidatorRejectsLongName(t *testing.T) {
	setupValidatorConfig()

	fh := fileHeader(t, strings.Repeat("a", 250)+".png", "image/png", pngMagic)

	code, _, err := FileValidator(fh)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.ErrorIs(t, err, ErrFileNameTooLong)
}
