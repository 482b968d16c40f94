package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"agencydesk/creator-api/internal/model"
	"agencydesk/creator-api/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrZipNeedsCategory rejects archive uploads that can't create their
// destination folder. Checked before anything touches storage.
var ErrZipNeedsCategory = errors.New("a category is required when uploading an archive")

// ObjectStore is the slice of the storage client the orchestrator needs.
type ObjectStore interface {
	Put(ctx context.Context, in storage.PutInput) error
	Remove(ctx context.Context, keys ...string) error
}

// FileInput is one file handed to the orchestrator. Path points at a local
// temp copy of the payload; the orchestrator removes it when done.
type FileInput struct {
	Name     string
	MimeType string
	Size     int64
	Path     string
}

// BatchInput describes one upload batch for a creator.
type BatchInput struct {
	CreatorID  string
	FolderID   string  // optional target folder for regular files
	CategoryID *string // required when the batch contains an archive
	Bucket     string
	Files      []FileInput
}

// Uploader drives media uploads end to end: unique-name resolution, the
// metadata record lifecycle, best-effort thumbnails and the binary
// transfer. Files in a batch succeed or fail independently.
type Uploader struct {
	DB         *gorm.DB
	Store      ObjectStore
	Queue      *JobQueue // nil disables thumbnails
	Reconciler *Reconciler
}

func NewUploader(db *gorm.DB, store ObjectStore, q *JobQueue, rec *Reconciler) *Uploader {
	return &Uploader{DB: db, Store: store, Queue: q, Reconciler: rec}
}

// FileProgress is a point-in-time view of one file in a batch.
type FileProgress struct {
	ID       string  `json:"id"` // tracking id, stable across the whole transfer
	MediaID  string  `json:"media_id,omitempty"`
	Name     string  `json:"name"`
	Status   string  `json:"status"`
	Progress float64 `json:"progress"`
	Error    string  `json:"error,omitempty"`
}

type item struct {
	trackID   string
	mediaID   string
	name      string
	status    string
	progress  float64
	err       error
	cancelled bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// Batch tracks a set of in-flight uploads. All mutation goes through one
// mutex; concurrent per-file goroutines never touch the fields directly.
type Batch struct {
	mu        sync.Mutex
	items     []*item
	completed []string
	done      chan struct{}
}

// Progress returns the aggregate percentage: the arithmetic mean over every
// non-cancelled file in the batch.
func (b *Batch) Progress() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	var sum float64
	var n int
	for _, it := range b.items {
		if it.cancelled {
			continue
		}
		sum += it.progress
		n++
	}

	if n == 0 {
		return 0
	}

	return sum / float64(n)
}

// Snapshot lists per-file state, excluding cancelled files.
func (b *Batch) Snapshot() []FileProgress {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]FileProgress, 0, len(b.items))
	for _, it := range b.items {
		if it.cancelled {
			continue
		}

		p := FileProgress{
			ID:       it.trackID,
			MediaID:  it.mediaID,
			Name:     it.name,
			Status:   it.status,
			Progress: it.progress,
		}
		if it.err != nil {
			p.Error = it.err.Error()
		}
		out = append(out, p)
	}

	return out
}

// Cancel aborts one file's transfer and drops it from the progress list.
// Objects or records already written for it are left behind on purpose; the
// stale-upload sweeper deals with the record eventually.
func (b *Batch) Cancel(trackID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, it := range b.items {
		if it.trackID == trackID && !it.cancelled {
			it.cancelled = true
			if it.cancel != nil {
				it.cancel()
			}
			return true
		}
	}

	return false
}

// Wait blocks until every file in the batch reached a terminal state.
func (b *Batch) Wait() {
	<-b.done
}

// CompletedIDs returns the media ids that reached complete status. Only
// meaningful after Wait.
func (b *Batch) CompletedIDs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]string, len(b.completed))
	copy(out, b.completed)
	return out
}

func (b *Batch) set(it *item, fn func(*item)) {
	b.mu.Lock()
	fn(it)
	b.mu.Unlock()
}

func isArchive(f FileInput) bool {
	return f.MimeType == "application/zip" || strings.EqualFold(path.Ext(f.Name), ".zip")
}

func isVideo(mime string) bool {
	return strings.HasPrefix(mime, "video/")
}

// Run starts a batch and returns its tracker immediately. onDone, if set,
// fires once with the ids of every file that completed; failed and
// cancelled files are not in the list.
//
// Archives are validated up front: an archive without a category fails the
// whole call before any record or object is written. Archives are then
// processed before regular files; regular files upload concurrently.
func (u *Uploader) Run(ctx context.Context, in BatchInput, onDone func(completed []string)) (*Batch, error) {
	var zips, regular []FileInput
	for _, f := range in.Files {
		if isArchive(f) {
			if in.CategoryID == nil {
				return nil, ErrZipNeedsCategory
			}
			zips = append(zips, f)
		} else {
			regular = append(regular, f)
		}
	}

	b := &Batch{done: make(chan struct{})}

	go func() {
		defer close(b.done)

		// Archive fan-out happens first so extracted entries show up in
		// the progress list before plain files start moving
		for _, z := range zips {
			u.runArchive(ctx, b, in, z)
		}

		var wg sync.WaitGroup
		for _, f := range regular {
			it := b.newItem(ctx, f.Name)

			wg.Add(1)
			go func() {
				defer wg.Done()
				u.runOne(b, it, in, f, in.FolderID)
			}()
		}
		wg.Wait()

		if onDone != nil {
			onDone(b.CompletedIDs())
		}
	}()

	return b, nil
}

func (b *Batch) newItem(ctx context.Context, name string) *item {
	cctx, cancel := context.WithCancel(ctx)

	it := &item{
		trackID: uuid.NewString(),
		name:    name,
		status:  model.StatusUploading,
		cancel:  cancel,
	}
	it.ctx = cctx

	b.mu.Lock()
	b.items = append(b.items, it)
	b.mu.Unlock()

	return it
}

// runArchive extracts a ZIP into a fresh folder named after the archive and
// pushes every entry through the regular per-file sequence. Entry failures
// are independent, the archive itself failing to open marks one error item.
func (u *Uploader) runArchive(ctx context.Context, b *Batch, in BatchInput, f FileInput) {
	defer os.Remove(f.Path)

	src, err := os.Open(f.Path)
	if err != nil {
		b.failStandalone(ctx, f.Name, fmt.Errorf("failed to open archive, %w", err))
		return
	}
	defer src.Close()

	entries, err := ExtractArchive(src, f.Size)
	if err != nil {
		b.failStandalone(ctx, f.Name, err)
		return
	}

	folderName := strings.TrimSuffix(f.Name, path.Ext(f.Name))
	folder, err := u.Reconciler.CreateFolder(ctx, folderName, nil, in.CategoryID)
	if err != nil {
		b.failStandalone(ctx, f.Name, err)
		return
	}

	for _, e := range entries {
		it := b.newItem(ctx, e.Name)

		tmp, err := os.CreateTemp("", "extract-*")
		if err != nil {
			b.set(it, func(it *item) { it.status = model.StatusError; it.err = err })
			continue
		}

		rc, err := e.Open()
		if err == nil {
			_, err = io.Copy(tmp, rc)
			rc.Close()
		}
		tmp.Close()
		if err != nil {
			os.Remove(tmp.Name())
			b.set(it, func(it *item) { it.status = model.StatusError; it.err = err })
			continue
		}

		u.runOne(b, it, in, FileInput{
			Name:     e.Name,
			MimeType: sniffByExt(e.Name),
			Size:     e.Size,
			Path:     tmp.Name(),
		}, folder.ID)
	}
}

// failStandalone records a terminal error item for a file that never got a
// media record (archive-level failures).
func (b *Batch) failStandalone(ctx context.Context, name string, err error) {
	it := b.newItem(ctx, name)
	b.set(it, func(it *item) {
		it.status = model.StatusError
		it.err = err
	})

	zap.L().Error("Upload failed before transfer", zap.String("name", name), zap.Error(err))
}

// runOne drives one file through the full sequence: resolve name, create
// record, optional thumbnail, binary transfer, final status update. The
// record is created before any bytes move and is never left in uploading
// state on failure.
func (u *Uploader) runOne(b *Batch, it *item, in BatchInput, f FileInput, folderID string) {
	defer os.Remove(f.Path)

	ctx := it.ctx

	name, err := ResolveName(ctx, u.DB, f.Name, folderID, in.CreatorID, in.Bucket)
	if err != nil {
		b.set(it, func(it *item) { it.status = model.StatusError; it.err = err })
		zap.L().Error("Failed to resolve unique name", zap.Error(err))
		return
	}

	mediaID := uuid.NewString()
	key := in.CreatorID + "/" + mediaID + path.Ext(name)

	rec := &model.MediaFile{
		ID:        mediaID,
		CreatorID: in.CreatorID,
		Bucket:    in.Bucket,
		BucketKey: key,
		Filename:  name,
		MimeType:  f.MimeType,
		SizeBytes: f.Size,
		Status:    model.StatusUploading,
		CreatedAt: time.Now(),
	}

	var fid *string
	if folderID != "" {
		fid = &folderID
	}

	err = u.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			return err
		}

		return tx.Create(&model.PendingUpload{
			ID:        uuid.NewString(),
			MediaID:   mediaID,
			CreatorID: in.CreatorID,
			Filename:  name,
			MimeType:  f.MimeType,
			SizeBytes: f.Size,
			Bucket:    in.Bucket,
			FolderID:  fid,
			CreatedAt: time.Now(),
		}).Error
	})
	if err != nil {
		b.set(it, func(it *item) { it.status = model.StatusError; it.err = err })
		zap.L().Error("Failed to create media record", zap.Error(err))
		return
	}

	b.set(it, func(it *item) { it.mediaID = mediaID })

	if folderID != "" {
		if err := u.Reconciler.AddFilesToFolder(ctx, []string{mediaID}, folderID); err != nil {
			u.finishError(it, b, mediaID, err)
			return
		}
	}

	// Thumbnails are best-effort: a failure here never fails the upload
	var thumbKey string
	if isVideo(f.MimeType) && u.Queue != nil {
		b.set(it, func(it *item) { it.status = model.StatusProcessing })

		thumbKey = u.makeAndUploadThumb(ctx, f.Path, mediaID)

		b.set(it, func(it *item) { it.status = model.StatusUploading })
	}

	src, err := os.Open(f.Path)
	if err != nil {
		u.finishError(it, b, mediaID, err)
		return
	}
	defer src.Close()

	body := &progressReader{
		r:     src,
		total: f.Size,
		fn: func(pct float64) {
			b.set(it, func(it *item) { it.progress = pct })
		},
	}

	err = u.Store.Put(ctx, storage.PutInput{
		Key:         key,
		Body:        body,
		Size:        f.Size,
		ContentType: f.MimeType,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			// Cancelled mid-transfer: the item already left the list and
			// the record is deliberately not compensated
			return
		}

		u.finishError(it, b, mediaID, err)
		return
	}

	err = u.DB.WithContext(context.WithoutCancel(ctx)).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{"status": model.StatusComplete}
		if thumbKey != "" {
			updates["thumb_key"] = thumbKey
		}

		if err := tx.Model(&model.MediaFile{}).Where("id = ?", mediaID).Updates(updates).Error; err != nil {
			return err
		}

		return tx.Where("media_id = ?", mediaID).Delete(&model.PendingUpload{}).Error
	})
	if err != nil {
		u.finishError(it, b, mediaID, err)
		return
	}

	b.mu.Lock()
	it.status = model.StatusComplete
	it.progress = 100
	b.completed = append(b.completed, mediaID)
	b.mu.Unlock()
}

// finishError flips the record to its terminal error state. Mandatory: a
// record must never sit in uploading after its transfer died.
func (u *Uploader) finishError(it *item, b *Batch, mediaID string, cause error) {
	b.set(it, func(it *item) {
		it.status = model.StatusError
		it.err = cause
	})

	zap.L().Error("Upload failed", zap.String("media_id", mediaID), zap.Error(cause))

	err := u.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.MediaFile{}).Where("id = ?", mediaID).Update("status", model.StatusError).Error; err != nil {
			return err
		}

		return tx.Where("media_id = ?", mediaID).Delete(&model.PendingUpload{}).Error
	})
	if err != nil {
		zap.L().Error("Failed to mark media record as errored", zap.String("media_id", mediaID), zap.Error(err))
	}
}

func (u *Uploader) makeAndUploadThumb(ctx context.Context, src, mediaID string) string {
	thumbPath, err := MakeThumbnail(src, mediaID, u.Queue)
	if err != nil {
		zap.L().Warn("Thumbnail generation failed, continuing without one",
			zap.String("media_id", mediaID), zap.Error(err))
		return ""
	}
	defer os.Remove(thumbPath)

	tf, err := os.Open(thumbPath)
	if err != nil {
		zap.L().Warn("Failed to open thumbnail", zap.Error(err))
		return ""
	}
	defer tf.Close()

	stat, err := tf.Stat()
	if err != nil {
		return ""
	}

	key := "thumb_" + mediaID + ".webp"
	err = u.Store.Put(ctx, storage.PutInput{
		Key:          key,
		Body:         tf,
		Size:         stat.Size(),
		ContentType:  "image/webp",
		CacheControl: "public, max-age=31536000, immutable",
	})
	if err != nil {
		zap.L().Warn("Thumbnail upload failed, continuing without one",
			zap.String("media_id", mediaID), zap.Error(err))
		return ""
	}

	return key
}

type progressReader struct {
	r     io.Reader
	total int64
	read  int64
	fn    func(pct float64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)

	// Unknown totals report nothing rather than a made-up percentage
	if p.total > 0 && p.fn != nil {
		pct := float64(p.read) / float64(p.total) * 100
		if pct > 100 {
			pct = 100
		}
		p.fn(pct)
	}

	return n, err
}

var extTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
}

// sniffByExt guesses the content type of extracted archive entries, which
// arrive without headers.
func sniffByExt(name string) string {
	if t, ok := extTypes[strings.ToLower(path.Ext(name))]; ok {
		return t
	}

	return "application/octet-stream"
}
