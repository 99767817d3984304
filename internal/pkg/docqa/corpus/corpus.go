// Package corpus handles acquisition of the documentation corpus: archive
// download, extraction, and page discovery.
package corpus

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kart-io/docqa/internal/model"
)

// DownloadFile downloads a URL to the destination path.
func DownloadFile(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status code %d", resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	_, err = io.Copy(out, resp.Body)
	return err
}

// ExtractZip extracts a ZIP archive into the destination directory.
// Entries escaping the destination are skipped (ZipSlip guard).
func ExtractZip(src, dest string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}

	for _, f := range r.File {
		path := filepath.Join(dest, f.Name)

		if !strings.HasPrefix(path, filepath.Clean(dest)+string(os.PathSeparator)) {
			continue
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(path, f.Mode()); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}

		outFile, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
		if err != nil {
			return err
		}

		rc, err := f.Open()
		if err != nil {
			_ = outFile.Close()
			return err
		}

		_, err = io.Copy(outFile, rc)
		_ = outFile.Close()
		_ = rc.Close()
		if err != nil {
			return err
		}
	}

	return nil
}

// FindFiles walks dir and returns files matching the given extensions.
func FindFiles(dir string, extensions []string) ([]string, error) {
	var files []string
	extMap := make(map[string]bool)
	for _, ext := range extensions {
		extMap[strings.ToLower(ext)] = true
	}

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			ext := strings.ToLower(filepath.Ext(path))
			if extMap[ext] {
				files = append(files, path)
			}
		}
		return nil
	})

	return files, err
}

// EnsureDir creates the directory if it does not exist.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// DirExists reports whether path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

var entropy = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)

// NewDocumentID mints a ULID for a discovered page.
func NewDocumentID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// RewriteSource maps a local corpus path back to its remote URL form. When
// baseURL is empty the local path is kept as the source.
func RewriteSource(path, dataDir, baseURL string) string {
	if baseURL == "" {
		return path
	}
	rel, err := filepath.Rel(dataDir, path)
	if err != nil {
		return path
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + filepath.ToSlash(rel)
}

// Scan enumerates corpus pages under dir and returns one Document per page
// matching the given extensions.
func Scan(dir string, extensions []string, dataDir, baseURL string) ([]model.Document, error) {
	files, err := FindFiles(dir, extensions)
	if err != nil {
		return nil, fmt.Errorf("failed to find files: %w", err)
	}

	docs := make([]model.Document, 0, len(files))
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			return nil, err
		}
		docs = append(docs, model.Document{
			ID:           NewDocumentID(),
			Name:         filepath.Base(file),
			Path:         file,
			Source:       RewriteSource(file, dataDir, baseURL),
			Size:         info.Size(),
			DiscoveredAt: time.Now(),
		})
	}

	return docs, nil
}
