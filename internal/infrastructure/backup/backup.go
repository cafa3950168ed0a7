// Package backup stores copies of the workbook before it is overwritten.
package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Sink receives one backup object per call.
type Sink interface {
	Put(ctx context.Context, key string, body io.Reader) error
}

// Key names a backup of file taken at t, e.g. "bouquets/20261017T101500.000Z.xlsx".
func Key(file string, t time.Time) string {
	base := filepath.Base(file)
	ext := filepath.Ext(base)
	return path.Join(strings.TrimSuffix(base, ext), t.UTC().Format("20060102T150405.000Z")+ext)
}

// FSSink writes backups below a local directory.
type FSSink struct {
	dir string
}

func NewFSSink(dir string) (*FSSink, error) {
	if dir == "" {
		return nil, fmt.Errorf("backup: directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("backup: create %s: %w", dir, err)
	}
	return &FSSink{dir: dir}, nil
}

func (s *FSSink) Put(ctx context.Context, key string, body io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst := filepath.Join(s.dir, filepath.FromSlash(path.Clean("/" + key)))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".backup-*")
	if err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return fmt.Errorf("backup: write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("backup: close %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("backup: rename %s: %w", key, err)
	}
	return nil
}
