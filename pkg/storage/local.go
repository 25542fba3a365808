// Package storage keeps uploaded PDFs on local disk and serves them under a
// public URL prefix.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

var (
	ErrObjectExists = errors.New("object already exists")
	ErrInvalidPath  = errors.New("invalid object path")
)

// Object describes a stored file.
type Object struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// BlobStore is the file storage used by the upload pipeline.
type BlobStore interface {
	Upload(ctx context.Context, objectPath string, r io.Reader, contentType string) (string, error)
	List(ctx context.Context, prefix string) ([]Object, error)
	Exists(ctx context.Context, objectPath string) (bool, error)
	Delete(ctx context.Context, objectPath string) error
	PublicURL(objectPath string) string
	LocalPath(objectPath string) (string, error)
}

// LocalStore writes objects below Root. Files are served by the HTTP
// server at BaseURL + MountPath.
type LocalStore struct {
	Root      string
	BaseURL   string
	MountPath string
}

func NewLocalStore(root, baseURL, mountPath string) *LocalStore {
	if mountPath == "" {
		mountPath = "/uploads"
	}
	return &LocalStore{
		Root:      root,
		BaseURL:   strings.TrimRight(baseURL, "/"),
		MountPath: "/" + strings.Trim(mountPath, "/"),
	}
}

// LocalPath resolves an object path to a file below Root.
func (s *LocalStore) LocalPath(objectPath string) (string, error) {
	clean := path.Clean("/" + objectPath)
	if clean == "/" || strings.Contains(objectPath, "..") {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.Root, filepath.FromSlash(clean)), nil
}

// Upload stores r at objectPath and returns its public URL. An existing
// object is never overwritten.
func (s *LocalStore) Upload(ctx context.Context, objectPath string, r io.Reader, contentType string) (string, error) {
	dst, err := s.LocalPath(objectPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", ErrObjectExists
		}
		return "", fmt.Errorf("create object: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close object: %w", err)
	}
	return s.PublicURL(objectPath), nil
}

// List returns the objects directly below prefix, sorted by name.
func (s *LocalStore) List(ctx context.Context, prefix string) ([]Object, error) {
	dir, err := s.LocalPath(prefix)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var out []Object
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Object{Name: e.Name(), Size: info.Size()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *LocalStore) Exists(ctx context.Context, objectPath string) (bool, error) {
	p, err := s.LocalPath(objectPath)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(p)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (s *LocalStore) Delete(ctx context.Context, objectPath string) error {
	p, err := s.LocalPath(objectPath)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// PublicURL escapes each path segment of objectPath.
func (s *LocalStore) PublicURL(objectPath string) string {
	segments := strings.Split(strings.Trim(objectPath, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.BaseURL + s.MountPath + "/" + strings.Join(segments, "/")
}
