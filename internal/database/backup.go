package database

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// BackupOptions controls the periodic database snapshot job.
type BackupOptions struct {
	Path          string
	Interval      time.Duration
	RetentionDays int
}

// Backupper copies the sqlite file to a timestamped snapshot on a schedule
// and prunes snapshots past retention.
type Backupper struct {
	dbPath string
	opts   BackupOptions
	logger zerolog.Logger
}

func NewBackupper(dbPath string, opts BackupOptions, logger zerolog.Logger) *Backupper {
	if opts.Interval <= 0 {
		opts.Interval = 24 * time.Hour
	}
	return &Backupper{
		dbPath: dbPath,
		opts:   opts,
		logger: logger.With().Str("component", "backup").Logger(),
	}
}

// Start runs the backup loop until the context is cancelled. The first
// snapshot is taken immediately.
func (b *Backupper) Start(ctx context.Context) {
	b.logger.Info().Dur("interval", b.opts.Interval).Str("path", b.opts.Path).Msg("backup job started")

	if err := b.Snapshot(); err != nil {
		b.logger.Error().Err(err).Msg("initial backup failed")
	}

	ticker := time.NewTicker(b.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := b.Snapshot(); err != nil {
				b.logger.Error().Err(err).Msg("scheduled backup failed")
			}
			b.prune()
		}
	}
}

// Snapshot copies the database file to a timestamped backup.
func (b *Backupper) Snapshot() error {
	if err := os.MkdirAll(b.opts.Path, 0o755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}

	name := fmt.Sprintf("restaurant_%s.db", time.Now().Format("20060102_150405"))
	dest := filepath.Join(b.opts.Path, name)

	src, err := os.Open(b.dbPath)
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return err
	}

	b.logger.Info().Str("snapshot", dest).Msg("backup written")
	return nil
}

func (b *Backupper) prune() {
	if b.opts.RetentionDays <= 0 {
		return
	}

	files, err := os.ReadDir(b.opts.Path)
	if err != nil {
		b.logger.Error().Err(err).Msg("read backup directory")
		return
	}

	cutoff := time.Now().AddDate(0, 0, -b.opts.RetentionDays)
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			b.logger.Info().Str("file", f.Name()).Msg("pruning old backup")
			_ = os.Remove(filepath.Join(b.opts.Path, f.Name()))
		}
	}
}
