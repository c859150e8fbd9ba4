package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"sync"
	"testing"
	"time"
)

type blobStorageStub struct {
	mu    sync.Mutex
	saved map[string][]byte
	err   error
}

func (s *blobStorageStub) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	_ = ctx
	if s.err != nil {
		return "", s.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	if s.saved == nil {
		s.saved = make(map[string][]byte)
	}
	s.saved[name] = data
	s.mu.Unlock()
	return fmt.Sprintf("https://cdn.example.com/%s", name), nil
}

func (s *blobStorageStub) get(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.saved[name]
	return data, ok
}

type assetUpdaterStub struct {
	mu          sync.Mutex
	readyCalls  []string
	readyLoc    string
	failedCalls []string
	readyErr    error
}

func (s *assetUpdaterStub) MarkAssetReady(ctx context.Context, videoID, location string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readyCalls = append(s.readyCalls, videoID)
	s.readyLoc = location
	return s.readyErr
}

func (s *assetUpdaterStub) MarkAssetFailed(ctx context.Context, videoID string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failedCalls = append(s.failedCalls, videoID)
	return nil
}

func (s *assetUpdaterStub) readyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.readyCalls)
}

func (s *assetUpdaterStub) failedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.failedCalls)
}

func TestIngestorUploadsStagedFile(t *testing.T) {
	staged, err := Stage(bytes.NewReader([]byte("video-bytes")))
	if err != nil {
		t.Fatalf("stage: %v", err)
	}

	storage := &blobStorageStub{}
	updater := &assetUpdaterStub{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ingestor := NewIngestor(storage, updater, IngestorConfig{QueueSize: 1, Workers: 1}, logger)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = ingestor.Shutdown(ctx)
	}()

	if err := ingestor.Enqueue(context.Background(), "video-1", "clip.mp4", staged); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	waitForCondition(t, func() bool { return updater.readyCount() > 0 }, time.Second)

	key := path.Join("videos", "video-1", "clip.mp4")
	data, ok := storage.get(key)
	if !ok {
		t.Fatalf("expected asset saved under video prefix")
	}
	if string(data) != "video-bytes" {
		t.Fatalf("unexpected asset content: %q", data)
	}
	if updater.readyLoc == "" {
		t.Fatal("expected ready location to be populated")
	}
	waitForCondition(t, func() bool {
		_, err := os.Stat(staged)
		return os.IsNotExist(err)
	}, time.Second)
}

func TestIngestorRecordsFailure(t *testing.T) {
	staged, err := Stage(bytes.NewReader([]byte("video-bytes")))
	if err != nil {
		t.Fatalf("stage: %v", err)
	}

	storage := &blobStorageStub{err: fmt.Errorf("upload error")}
	updater := &assetUpdaterStub{}
	ingestor := NewIngestor(storage, updater, IngestorConfig{QueueSize: 1, Workers: 1}, nil)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = ingestor.Shutdown(ctx)
	}()

	if err := ingestor.Enqueue(context.Background(), "video-2", "clip.mp4", staged); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	waitForCondition(t, func() bool { return updater.failedCount() > 0 }, time.Second)
	if updater.readyCount() != 0 {
		t.Fatal("expected no ready calls on failure")
	}
}

func TestIngestorEnqueueValidation(t *testing.T) {
	ingestor := NewIngestor(&blobStorageStub{}, &assetUpdaterStub{}, IngestorConfig{}, nil)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = ingestor.Shutdown(ctx)
	}()

	if err := ingestor.Enqueue(context.Background(), "", "clip.mp4", "/tmp/staged"); err == nil {
		t.Fatal("expected error for empty video id")
	}
	if err := ingestor.Enqueue(context.Background(), "video-3", "clip.mp4", " "); err == nil {
		t.Fatal("expected error for empty staged path")
	}
}

func waitForCondition(t *testing.T, predicate func() bool, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if predicate() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}
