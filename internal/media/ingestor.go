package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"
	"sync"
	"time"
)

// BlobStorage persists binary content and returns its public location.
type BlobStorage interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// AssetUpdater records the outcome of an ingestion attempt on the video.
type AssetUpdater interface {
	MarkAssetReady(ctx context.Context, videoID, location string) error
	MarkAssetFailed(ctx context.Context, videoID string) error
}

var errIngestorClosed = errors.New("asset ingestor closed")

// IngestorConfig controls the concurrency characteristics of the ingestor.
type IngestorConfig struct {
	QueueSize int
	Workers   int
}

// Ingestor moves staged upload files into blob storage off the request
// path. Requests return as soon as the job is queued; the video's asset
// status records the eventual outcome.
type Ingestor struct {
	storage BlobStorage
	updater AssetUpdater
	logger  *slog.Logger

	jobs   chan ingestJob
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

type ingestJob struct {
	videoID    string
	filename   string
	stagedPath string
}

// NewIngestor constructs a background worker pool that persists assets.
func NewIngestor(storage BlobStorage, updater AssetUpdater, cfg IngestorConfig, logger *slog.Logger) *Ingestor {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	ing := &Ingestor{
		storage: storage,
		updater: updater,
		logger:  logger,
		jobs:    make(chan ingestJob, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	ing.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go ing.worker()
	}

	return ing
}

// Stage copies uploaded content to a local temp file so the request body
// can be released before the upload to blob storage runs.
func Stage(r io.Reader) (string, error) {
	tmp, err := os.CreateTemp("", "streamhub-upload-*")
	if err != nil {
		return "", fmt.Errorf("stage upload: %w", err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("stage upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("stage upload: %w", err)
	}
	return tmp.Name(), nil
}

// Enqueue schedules asset persistence for a staged upload. The ingestor
// owns the staged file from this point and removes it when done.
func (i *Ingestor) Enqueue(ctx context.Context, videoID, filename, stagedPath string) error {
	if videoID == "" || strings.TrimSpace(stagedPath) == "" {
		return errors.New("ingestor: video id and staged path are required")
	}

	job := ingestJob{videoID: videoID, filename: path.Base(filename), stagedPath: stagedPath}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-i.ctx.Done():
		return errIngestorClosed
	case i.jobs <- job:
		return nil
	}
}

// Shutdown waits for the worker pool to drain outstanding jobs.
func (i *Ingestor) Shutdown(ctx context.Context) error {
	i.once.Do(func() {
		i.cancel()
		close(i.jobs)
	})

	done := make(chan struct{})
	go func() {
		i.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (i *Ingestor) worker() {
	defer i.wg.Done()

	for job := range i.jobs {
		i.handleJob(job)
	}
}

func (i *Ingestor) handleJob(job ingestJob) {
	defer os.Remove(job.stagedPath)

	if i.storage == nil || i.updater == nil {
		i.logger.Error("asset ingestor missing dependencies",
			"hasStorage", i.storage != nil, "hasUpdater", i.updater != nil)
		return
	}

	file, err := os.Open(job.stagedPath)
	if err != nil {
		i.logger.Error("open staged upload", "videoId", job.videoID, "error", err)
		i.recordFailure(job.videoID)
		return
	}
	defer file.Close()

	uploadCtx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	key := path.Join("videos", job.videoID, job.filename)
	location, err := i.storage.Save(uploadCtx, key, file)
	if err != nil {
		i.logger.Error("asset ingestion failed", "videoId", job.videoID, "key", key, "error", err)
		i.recordFailure(job.videoID)
		return
	}

	if err := i.recordSuccess(job.videoID, location); err != nil {
		i.logger.Error("mark asset ready", "videoId", job.videoID, "error", err)
		i.recordFailure(job.videoID)
	}
}

func (i *Ingestor) recordFailure(videoID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := i.updater.MarkAssetFailed(ctx, videoID); err != nil {
		i.logger.Error("record asset failure", "videoId", videoID, "error", err)
	}
}

func (i *Ingestor) recordSuccess(videoID, location string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return i.updater.MarkAssetReady(ctx, videoID, location)
}
