package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type ThumbJob struct {
	ID      string
	MediaID string
	Input   string
	Output  string
	Ctx     context.Context
	Done    chan error
}

// JobQueue runs ffmpeg thumbnail jobs on a small worker pool so a burst of
// video uploads can't fork-bomb the host with encoder processes.
type JobQueue struct {
	jobs    chan *ThumbJob
	workers int
}

func NewJobQueue() *JobQueue {
	workers := viper.GetInt("thumbnail.workers")
	if workers <= 0 {
		workers = 1
	}

	zap.L().Debug("Initializing thumbnail job queue", zap.Int("workers", workers))

	return &JobQueue{
		jobs:    make(chan *ThumbJob, workers*4),
		workers: workers,
	}
}

func (q *JobQueue) StartWorkerPool() {
	for range q.workers {
		go q.worker()
	}
}

func (q *JobQueue) worker() {
	for job := range q.jobs {
		err := runThumbJob(job)

		job.Done <- err
		close(job.Done)

		if err != nil {
			zap.L().Error("Thumbnail job finished with an error",
				zap.String("media_id", job.MediaID),
				zap.String("job_id", job.ID),
				zap.Error(err))
		} else {
			zap.L().Debug("Thumbnail job finished successfully", zap.String("media_id", job.MediaID))
		}
	}
}

func (q *JobQueue) Enqueue(job *ThumbJob) error {
	select {
	case q.jobs <- job:
		zap.L().Debug("New thumbnail job enqueued", zap.String("media_id", job.MediaID))
		return nil
	default:
		return errors.New("job queue full")
	}
}

func runThumbJob(job *ThumbJob) error {
	cmd := exec.CommandContext(job.Ctx, "ffmpeg",
		"-loglevel", "error",
		"-ss", "0",
		"-i", job.Input,
		"-frames:v", "1",
		"-q:v", "2",
		"-vf", "scale=-640:360",
		job.Output,
	)

	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg failed: %w, %s", err, stderr.String())
	}

	return nil
}

// MakeThumbnail extracts the first frame of a video file into a temporary
// webp and returns its path. Callers treat failure as non-fatal: a media
// file without a thumbnail is still a valid upload.
func MakeThumbnail(input, mediaID string, q *JobQueue) (string, error) {
	if !viper.GetBool("thumbnail.enabled") {
		return "", errors.New("thumbnail generation disabled")
	}

	done := make(chan error, 1)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	id, _ := gonanoid.New(5)
	out := path.Join(os.TempDir(), "thumb_"+mediaID+".webp")

	err := q.Enqueue(&ThumbJob{
		ID:      id,
		MediaID: mediaID,
		Input:   input,
		Output:  out,
		Ctx:     ctx,
		Done:    done,
	})
	if err != nil {
		return "", err
	}

	if err := <-done; err != nil {
		return "", err
	}

	return out, nil
}
