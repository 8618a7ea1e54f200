package match

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// FileName is the JSON lines file a FileStore appends to inside its directory.
const FileName = "matches.jsonl"

// ErrStoreClosed is returned by a FileStore after Close.
var ErrStoreClosed = errors.New("store closed")

// FileStore appends every record as one protojson line and keeps an index
// in memory. Opening a directory that already holds a file replays it; for
// a repeated ID the last line wins.
type FileStore struct {
	logger zerolog.Logger
	path   string

	mu      sync.RWMutex
	file    *os.File
	index   *MemoryStore
	written int64
}

// NewFileStore opens (or creates) dir/matches.jsonl.
func NewFileStore(dir string, logger zerolog.Logger) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("file store needs a directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	fs := &FileStore{
		logger: logger.With().Str("component", "file_store").Logger(),
		path:   filepath.Join(dir, FileName),
		index:  NewMemoryStore(),
	}
	if err := fs.replay(); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(fs.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open store file: %w", err)
	}
	fs.file = file
	return fs, nil
}

func (fs *FileStore) replay() error {
	file, err := os.Open(fs.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open store file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	loaded := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var s structpb.Struct
		if err := protojson.Unmarshal(line, &s); err != nil {
			return fmt.Errorf("failed to unmarshal record: %w", err)
		}
		rec, err := RecordFromStruct(&s)
		if err != nil {
			return err
		}
		_ = fs.index.Save(context.Background(), rec)
		loaded++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading store file: %w", err)
	}

	fs.logger.Info().Str("path", fs.path).Int("records", loaded).Msg("Replayed match records")
	return nil
}

func (fs *FileStore) Save(ctx context.Context, rec Record) error {
	s, err := rec.Struct()
	if err != nil {
		return fmt.Errorf("failed to convert record: %w", err)
	}
	data, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.file == nil {
		return ErrStoreClosed
	}
	n, err := fs.file.Write(append(data, '\n'))
	if err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	fs.written += int64(n)
	if err := fs.file.Sync(); err != nil {
		fs.logger.Warn().Err(err).Msg("Failed to sync file")
	}
	return fs.index.Save(ctx, rec)
}

func (fs *FileStore) Get(ctx context.Context, id string) (Record, error) {
	return fs.index.Get(ctx, id)
}

func (fs *FileStore) List(ctx context.Context, limit int) ([]Record, error) {
	return fs.index.List(ctx, limit)
}

// BytesWritten counts the bytes appended since the store was opened.
func (fs *FileStore) BytesWritten() int64 {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.written
}

func (fs *FileStore) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.file == nil {
		return nil
	}
	err := fs.file.Close()
	fs.file = nil
	return err
}
