package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/shandysiswandi/gosales/internal/pkg/pkgerror"
)

type Local struct {
	dir string
}

func NewLocal(dir string) (*Local, error) {
	if dir == "" {
		dir = "results"
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	return &Local{dir: dir}, nil
}

// Save writes through a temp file and renames, so a crash mid-write never
// leaves a half artifact under the final name.
func (l *Local) Save(ctx context.Context, name string, content []byte) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(l.dir, name+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp artifact: %w", err)
	}

	_, werr := tmp.Write(content)
	if cerr := tmp.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("write artifact: %w", werr)
	}

	path := filepath.Join(l.dir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("publish artifact: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	return "file://" + abs, nil
}

func (l *Local) Open(ctx context.Context, name string) (io.ReadCloser, int64, error) {
	if err := checkName(name); err != nil {
		return nil, 0, err
	}

	f, err := os.Open(filepath.Join(l.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, 0, pkgerror.ErrNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("open artifact: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, fmt.Errorf("stat artifact: %w", err)
	}

	return f, info.Size(), nil
}

// Remove is idempotent; removing an absent artifact is not an error.
func (l *Local) Remove(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}

	err := os.Remove(filepath.Join(l.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove artifact: %w", err)
	}

	return nil
}

func checkName(name string) error {
	if name == "" || name != filepath.Base(name) {
		return fmt.Errorf("invalid artifact name %q", name)
	}
	return nil
}
