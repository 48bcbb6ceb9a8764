package onboarding

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"clinicore/models"

	"github.com/google/uuid"
)

// maxInlineSize caps how large a file may be inlined as base64 into a
// descriptor. Larger files keep a metadata-only descriptor.
const maxInlineSize = 5 << 20

// DescribeFile captures a serializable descriptor from an uploaded part
// without reading its bytes. lastModified comes from the client when it sent
// one; zero falls back to receipt time.
func DescribeFile(header *multipart.FileHeader, lastModified int64) *models.FileDescriptor {
	if lastModified == 0 {
		lastModified = time.Now().UnixMilli()
	}
	return &models.FileDescriptor{
		Name:         header.Filename,
		Size:         header.Size,
		Type:         header.Header.Get("Content-Type"),
		LastModified: lastModified,
	}
}

// DescribeFileWithPayload additionally reads the full content and inlines it
// base64-encoded, for descriptors that back a preview. A read failure leaves
// the caller's descriptor nil.
func DescribeFileWithPayload(header *multipart.FileHeader, lastModified int64) (*models.FileDescriptor, error) {
	if header.Size > maxInlineSize {
		return nil, fmt.Errorf("file %q exceeds the %d byte inline limit", header.Filename, int64(maxInlineSize))
	}
	desc := DescribeFile(header, lastModified)

	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file %q: %w", header.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file %q: %w", header.Filename, err)
	}
	desc.Base64 = base64.StdEncoding.EncodeToString(data)
	return desc, nil
}

// FileStager is the side-table for live file content. Bytes are staged on
// disk keyed by session and field name while only the descriptor enters the
// session, so the final submission can still attach real content.
type FileStager struct {
	root string
}

// NewFileStager creates a stager rooted at dir; an empty dir falls back to a
// directory under the system temp dir.
func NewFileStager(dir string) (*FileStager, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "clinicore-staging")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging dir: %w", err)
	}
	return &FileStager{root: dir}, nil
}

// sessionDir resolves the staging directory for a session. Session IDs are
// always UUIDs; anything else (a traversal attempt, a malformed URL param)
// never reaches the filesystem.
func (fs *FileStager) sessionDir(sessionID string) (string, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return "", fmt.Errorf("invalid session ID %q: %w", sessionID, err)
	}
	return filepath.Join(fs.root, sessionID), nil
}

// Stage copies the uploaded part's bytes into the side-table under the given
// field key and returns the staged path.
func (fs *FileStager) Stage(sessionID, field string, header *multipart.FileHeader) (string, error) {
	dir, err := fs.sessionDir(sessionID)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create session staging dir: %w", err)
	}

	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file %q: %w", header.Filename, err)
	}
	defer src.Close()

	destPath := filepath.Join(dir, field)
	dest, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("failed to create staged file: %w", err)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, src); err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("failed to stage file: %w", err)
	}
	return destPath, nil
}

// Path returns the staged path for a field, or an error if nothing is staged.
func (fs *FileStager) Path(sessionID, field string) (string, error) {
	dir, err := fs.sessionDir(sessionID)
	if err != nil {
		return "", err
	}
	p := filepath.Join(dir, field)
	if _, err := os.Stat(p); err != nil {
		return "", fmt.Errorf("no staged file for field %q: %w", field, err)
	}
	return p, nil
}

// List returns every staged field for the session mapped to its path.
func (fs *FileStager) List(sessionID string) (map[string]string, error) {
	dir, err := fs.sessionDir(sessionID)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to list staged files: %w", err)
	}
	files := make(map[string]string, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			files[e.Name()] = filepath.Join(dir, e.Name())
		}
	}
	return files, nil
}

// Clear removes all staged content for the session.
func (fs *FileStager) Clear(sessionID string) error {
	dir, err := fs.sessionDir(sessionID)
	if err != nil {
		return err
	}
	return os.RemoveAll(dir)
}
