package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/h2non/filetype"

	"github.com/maheshrc27/autopost/internal/models"
)

// ImageAcquirer returns local image paths for a product. An empty result
// is a valid, expected outcome, the cycle then skips posting.
type ImageAcquirer interface {
	Acquire(ctx context.Context, product *models.Product) ([]string, error)
}

// LocalImageAcquirer serves images that an out-of-band downloader already
// placed under <baseDir>/<productID>/. Non-image files are ignored.
type LocalImageAcquirer struct {
	baseDir string
}

func NewLocalImageAcquirer(baseDir string) *LocalImageAcquirer {
	return &LocalImageAcquirer{baseDir: baseDir}
}

func (a *LocalImageAcquirer) Acquire(ctx context.Context, product *models.Product) ([]string, error) {
	dir := filepath.Join(a.baseDir, product.ID)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if isImage(path) {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func isImage(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	head := make([]byte, 261)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return false
	}
	return filetype.IsImage(head[:n])
}
