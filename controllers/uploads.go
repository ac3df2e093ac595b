package controllers

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// UploadStore writes uploaded media to a local directory under generated
// names. Only the names reach the property record.
type UploadStore struct {
	Dir string
}

func NewUploadStore(dir string) (*UploadStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &UploadStore{Dir: dir}, nil
}

func (u *UploadStore) Save(files []*multipart.FileHeader) ([]string, error) {
	names := make([]string, 0, len(files))
	for _, fh := range files {
		name, err := u.save(fh)
		if err != nil {
			u.Remove(names)
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

func (u *UploadStore) save(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
	dst, err := os.Create(filepath.Join(u.Dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return name, nil
}

func (u *UploadStore) Remove(names []string) {
	for _, name := range names {
		if err := os.Remove(filepath.Join(u.Dir, name)); err != nil && !os.IsNotExist(err) {
			log.Printf("Failed to remove upload %s: %v", name, err)
		}
	}
}
