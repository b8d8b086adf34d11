package dependencies

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
)

const defaultLocalRoot = "uploads"

type localStore struct {
	root string
}

// NewLocalStore 本地磁盘存储，root 为空时使用 ./uploads
func NewLocalStore(root string) (FileStore, error) {
	if root == "" {
		root = defaultLocalRoot
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("创建上传目录 %s 失败: %w", root, err)
	}
	return &localStore{root: root}, nil
}

func (s *localStore) pathFor(key string) (string, error) {
	if err := ValidateObjectKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}

func (s *localStore) Save(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	p, err := s.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}
	f, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("创建文件 %s 失败: %w", key, err)
	}
	if _, err := io.Copy(f, reader); err != nil {
		f.Close()
		os.Remove(p)
		return fmt.Errorf("写入文件 %s 失败: %w", key, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(p)
		return fmt.Errorf("关闭文件 %s 失败: %w", key, err)
	}
	return nil
}

func (s *localStore) Open(ctx context.Context, key string) (*StoredObject, error) {
	p, err := s.pathFor(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, ErrObjectNotFound
	}
	contentType := mime.TypeByExtension(filepath.Ext(p))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &StoredObject{Body: f, ContentType: contentType, Size: info.Size()}, nil
}

func (s *localStore) Delete(ctx context.Context, key string) error {
	p, err := s.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
