package handler

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FileStore keeps uploaded attachments on local disk under a single
// directory served at /uploads.
type FileStore struct {
	dir    string
	logger *zap.Logger
}

func NewFileStore(dir string, logger *zap.Logger) *FileStore {
	return &FileStore{dir: dir, logger: logger}
}

// Save stores an uploaded file under a collision-free name and returns the
// stored name.
func (f *FileStore) Save(c *gin.Context, file *multipart.FileHeader) (string, error) {
	name := uuid.New().String() + filepath.Ext(file.Filename)
	if err := c.SaveUploadedFile(file, filepath.Join(f.dir, name)); err != nil {
		return "", err
	}
	return name, nil
}

// Remove deletes a stored file. Best effort: a failure is logged and never
// fails the mutation that replaced the file.
func (f *FileStore) Remove(name string) {
	if name == "" {
		return
	}
	if err := os.Remove(filepath.Join(f.dir, name)); err != nil && !os.IsNotExist(err) {
		f.logger.Warn("failed to remove stored file",
			zap.String("file", name),
			zap.Error(err),
		)
	}
}

// fileURL turns a stored attachment name into a fully-qualified retrieval
// location for the client.
func fileURL(c *gin.Context, name *string) *string {
	if name == nil || *name == "" {
		return nil
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	url := fmt.Sprintf("%s://%s/uploads/%s", scheme, c.Request.Host, *name)
	return &url
}
