package application

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

type FileStore interface {
	Save(ctx context.Context, module, empID string, up Upload) (string, error)
	Remove(ctx context.Context, module, empID, storedName string) error
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._\-]`)

// DiskStore writes attachments under root/{module}/{empId}/ with a
// millisecond-timestamp prefix so retained and replaced files never collide.
type DiskStore struct {
	root   string
	now    func() time.Time
	logger *zap.Logger
}

func NewDiskStore(root string, logger *zap.Logger) *DiskStore {
	return &DiskStore{root: root, now: time.Now, logger: logger.Named("disk_store")}
}

func (s *DiskStore) Save(ctx context.Context, module, empID string, up Upload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir := filepath.Join(s.root, module, empID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create attachment dir: %w", err)
	}

	stored := fmt.Sprintf("%d_%s", s.now().UnixMilli(), sanitizeFileName(up.FileName))
	dst, err := os.Create(filepath.Join(dir, stored))
	if err != nil {
		return "", fmt.Errorf("create attachment file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, up.Content); err != nil {
		return "", fmt.Errorf("write attachment: %w", err)
	}

	s.logger.Debug("attachment stored",
		zap.String("module", module),
		zap.String("emp_id", empID),
		zap.String("stored_name", stored))
	return stored, nil
}

func (s *DiskStore) Remove(ctx context.Context, module, empID, storedName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// storedName came back from the manifest; re-sanitize so a crafted
	// value cannot escape the employee's directory.
	path := filepath.Join(s.root, module, empID, sanitizeFileName(storedName))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove attachment: %w", err)
	}
	return nil
}

func sanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeNameChars.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == ".." {
		name = "attachment"
	}
	return name
}
