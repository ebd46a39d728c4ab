package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/genemede/gnmd/pkg/entity"
)

// backupLayout is entity.DatetimeLayout with the colons replaced.
const backupLayout = "2006-01-02T15_04_05.000000"

// BackupPath returns <stem>_bak_<timestamp><suffix> in the directory of path.
func BackupPath(path string, t time.Time) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(filepath.Dir(path), stem+"_bak_"+t.Format(backupLayout)+ext)
}

// Backup copies the file at path to a fresh backup and returns the backup path.
func Backup(p Provider, path string) (string, error) {
	if !p.Exists(path) {
		return "", fmt.Errorf("%w: %s", entity.ErrFileNotFound, path)
	}
	dst := BackupPath(path, p.Now())
	if err := p.CopyFile(path, dst); err != nil {
		return "", fmt.Errorf("failed to back up %s: %w", path, err)
	}
	return dst, nil
}
