package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	s3c "github.com/yeisme/reportvault/pkg/internal/storage/s3"
)

// s3RefPrefix file_data 中对象存储引用的前缀.
const s3RefPrefix = "s3:"

// BlobStore 决定报告内容如何写入 reports.file_data.
type BlobStore interface {
	// Put 保存内容并返回写入 file_data 的值.
	Put(ctx context.Context, id, contentType string, data []byte) (string, error)
	// Get 根据 file_data 还原内容.
	Get(ctx context.Context, ref string) ([]byte, error)
	// Delete 删除外部内容，内联内容无需处理.
	Delete(ctx context.Context, ref string) error
	// External 内容是否保存在数据库之外.
	External() bool
}

// InlineBlobStore 把内容 base64 编码后直接写入 file_data.
type InlineBlobStore struct{}

func (InlineBlobStore) Put(_ context.Context, _, _ string, data []byte) (string, error) {
	return base64.StdEncoding.EncodeToString(data), nil
}

func (InlineBlobStore) Get(_ context.Context, ref string) ([]byte, error) {
	if IsExternalRef(ref) {
		return nil, fmt.Errorf("report content is stored in object storage, which is not configured")
	}

	return decodeInline(ref)
}

func (InlineBlobStore) Delete(context.Context, string) error { return nil }

func (InlineBlobStore) External() bool { return false }

// ObjectStore S3BlobStore 需要的对象存储能力，*s3.Client 实现了它.
type ObjectStore interface {
	PutBytes(ctx context.Context, key string, data []byte, contentType string) error
	GetBytes(ctx context.Context, key string) ([]byte, error)
	Remove(ctx context.Context, key string) error
}

var _ ObjectStore = (*s3c.Client)(nil)

// S3BlobStore 内容写入对象存储，file_data 只保存 "s3:<key>".
// 切换存储方式前写入的内联内容仍然可以读取.
type S3BlobStore struct {
	objects ObjectStore
	prefix  string
}

// NewS3BlobStore 创建对象存储实现.
func NewS3BlobStore(objects ObjectStore, prefix string) *S3BlobStore {
	return &S3BlobStore{objects: objects, prefix: prefix}
}

func (s *S3BlobStore) Put(ctx context.Context, id, contentType string, data []byte) (string, error) {
	key := s.prefix + id
	if err := s.objects.PutBytes(ctx, key, data, contentType); err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	return s3RefPrefix + key, nil
}

func (s *S3BlobStore) Get(ctx context.Context, ref string) ([]byte, error) {
	if !IsExternalRef(ref) {
		return decodeInline(ref)
	}

	return s.objects.GetBytes(ctx, strings.TrimPrefix(ref, s3RefPrefix))
}

func (s *S3BlobStore) Delete(ctx context.Context, ref string) error {
	if !IsExternalRef(ref) {
		return nil
	}

	return s.objects.Remove(ctx, strings.TrimPrefix(ref, s3RefPrefix))
}

func (s *S3BlobStore) External() bool { return true }

// IsExternalRef file_data 是否为对象存储引用.
func IsExternalRef(ref string) bool {
	return strings.HasPrefix(ref, s3RefPrefix)
}

func decodeInline(ref string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(ref)
	if err != nil {
		return nil, fmt.Errorf("decode report content: %w", err)
	}

	return b, nil
}
