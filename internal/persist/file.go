package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/iishyfishyy/trigramdb/internal/entrystore"
	"github.com/iishyfishyy/trigramdb/internal/logger"
)

// Codec encodes snapshots for a FileBackend.
type Codec interface {
	Name() string
	Marshal(snap *Snapshot) ([]byte, error)
	Unmarshal(data []byte, snap *Snapshot) error
}

// JSONCodec writes indented JSON.
type JSONCodec struct{}

func (JSONCodec) Name() string { return KindJSON }

func (JSONCodec) Marshal(snap *Snapshot) ([]byte, error) {
	return json.MarshalIndent(snap, "", "  ")
}

func (JSONCodec) Unmarshal(data []byte, snap *Snapshot) error {
	return json.Unmarshal(data, snap)
}

// MsgpackCodec writes MessagePack.
type MsgpackCodec struct{}

func (MsgpackCodec) Name() string { return KindMsgpack }

func (MsgpackCodec) Marshal(snap *Snapshot) ([]byte, error) {
	return msgpack.Marshal(snap)
}

func (MsgpackCodec) Unmarshal(data []byte, snap *Snapshot) error {
	return msgpack.Unmarshal(data, snap)
}

// FileBackend stores a snapshot in a single file
type FileBackend struct {
	path   string
	codec  Codec
	logger *log.Logger
}

// NewFileBackend creates a file backend writing to path with codec
func NewFileBackend(path string, codec Codec) *FileBackend {
	return &FileBackend{
		path:   path,
		codec:  codec,
		logger: logger.New("persist"),
	}
}

// Save writes snap to a temporary file next to the target and renames it
// into place.
func (f *FileBackend) Save(ctx context.Context, snap *Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	data, err := f.codec.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}

	f.logger.Debug("saved snapshot", "path", f.path, "codec", f.codec.Name(), "entries", len(snap.Entries))
	return nil
}

// Load reads the snapshot file. A missing file yields an empty snapshot.
func (f *FileBackend) Load(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		f.logger.Debug("store file missing, starting empty", "path", f.path)
		return NewSnapshot(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}

	snap := &Snapshot{}
	if err := f.codec.Unmarshal(data, snap); err != nil {
		return nil, fmt.Errorf("failed to parse store file %s: %w", f.path, err)
	}
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("invalid store file %s: %w", f.path, err)
	}
	if snap.Entries == nil {
		snap.Entries = make(map[string]entrystore.Entry)
	}

	f.logger.Debug("loaded snapshot", "path", f.path, "codec", f.codec.Name(), "entries", len(snap.Entries))
	return snap, nil
}

// Close is a no-op
func (f *FileBackend) Close() error {
	return nil
}
