package minio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"golang.org/x/sync/errgroup"

	"github.com/jmgilman/go/vfs/core"
	vfserrors "github.com/jmgilman/go/vfs/errors"
)

// FS implements core.FS on top of a MinIO/S3 bucket.
type FS struct {
	client             *minio.Client
	bucket             string
	prefix             string
	multipartThreshold int64
	renameConcurrency  int
}

// New creates bucket-backed storage. It does not contact the server.
func New(cfg Config) (*FS, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client := cfg.Client
	if client == nil {
		var err error
		client, err = minio.New(cfg.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.UseSSL,
		})
		if err != nil {
			return nil, vfserrors.Wrap(err, vfserrors.CodeInvalidConfig, "failed to create minio client")
		}
	}

	threshold := cfg.MultipartThreshold
	if threshold == 0 {
		threshold = defaultMultipartThreshold
	}
	concurrency := cfg.MaxRenameConcurrency
	if concurrency == 0 {
		concurrency = defaultRenameConcurrency
	}

	return &FS{
		client:             client,
		bucket:             cfg.Bucket,
		prefix:             cleanKey(cfg.Prefix),
		multipartThreshold: threshold,
		renameConcurrency:  concurrency,
	}, nil
}

// Bucket returns the bucket name.
func (m *FS) Bucket() string {
	return m.bucket
}

func (m *FS) key(name string) string {
	return joinKey(m.prefix, name)
}

// Open opens an object for streaming reads.
func (m *FS) Open(name string) (fs.File, error) {
	return newReader(context.Background(), m, m.key(name), name)
}

// Stat returns object metadata. Names with no object but with objects
// below them are reported as directories.
func (m *FS) Stat(name string) (fs.FileInfo, error) {
	key := m.key(name)
	if key == "" {
		return &fileInfo{name: ".", dir: true}, nil
	}

	ctx := context.Background()
	info, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return &fileInfo{name: baseName(name), size: info.Size, modTime: info.LastModified}, nil
	}
	if err = translate(err); !errors.Is(err, fs.ErrNotExist) {
		return nil, pathError("stat", name, err)
	}

	found, err := m.hasChildren(ctx, key)
	if err != nil {
		return nil, pathError("stat", name, err)
	}
	if !found {
		return nil, pathError("stat", name, fs.ErrNotExist)
	}
	return &fileInfo{name: baseName(name), dir: true}, nil
}

// hasChildren reports whether any object, including a directory marker,
// lives below key.
func (m *FS) hasChildren(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:  dirKey(key),
		MaxKeys: 1,
	}) {
		if obj.Err != nil {
			return false, translate(obj.Err)
		}
		return true, nil
	}
	return false, nil
}

// ReadDir lists the immediate children of a directory sorted by name.
func (m *FS) ReadDir(name string) ([]fs.DirEntry, error) {
	prefix := dirKey(m.key(name))

	var entries []fs.DirEntry
	var marker bool
	for obj := range m.client.ListObjects(context.Background(), m.bucket, minio.ListObjectsOptions{
		Prefix: prefix,
	}) {
		if obj.Err != nil {
			return nil, pathError("readdir", name, translate(obj.Err))
		}
		entry, ok := entryFromObject(prefix, obj)
		if !ok {
			marker = true
			continue
		}
		entries = append(entries, entry)
	}

	if len(entries) == 0 && !marker && prefix != "" {
		if info, err := m.Stat(name); err != nil {
			return nil, pathError("readdir", name, fs.ErrNotExist)
		} else if !info.IsDir() {
			return nil, pathError("readdir", name, core.ErrNotDir)
		}
	}

	slices.SortFunc(entries, func(a, b fs.DirEntry) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return entries, nil
}

// ReadFile downloads a whole object.
func (m *FS) ReadFile(name string) ([]byte, error) {
	key := m.key(name)
	ctx := context.Background()

	info, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, pathError("readfile", name, translate(err))
	}
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, pathError("readfile", name, translate(err))
	}
	defer func() { _ = obj.Close() }()

	buf := make([]byte, info.Size)
	if _, err := io.ReadFull(obj, buf); err != nil {
		return nil, pathError("readfile", name, err)
	}
	return buf, nil
}

// Exists reports whether an object or virtual directory exists.
func (m *FS) Exists(name string) (bool, error) {
	_, err := m.Stat(name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Create opens an object for writing, replacing it on Close.
func (m *FS) Create(name string) (core.File, error) {
	return newWriter(m, m.key(name), name), nil
}

// OpenFile supports O_RDONLY and O_WRONLY with O_CREATE and O_TRUNC.
// O_RDWR, O_APPEND, O_EXCL and O_SYNC return core.ErrUnsupported.
func (m *FS) OpenFile(name string, flag int, _ fs.FileMode) (core.File, error) {
	for _, f := range []struct {
		bit  int
		name string
	}{
		{os.O_RDWR, "O_RDWR"},
		{os.O_APPEND, "O_APPEND"},
		{os.O_EXCL, "O_EXCL"},
		{os.O_SYNC, "O_SYNC"},
	} {
		if flag&f.bit != 0 {
			return nil, pathErrorf("open", name, "%w: %s not supported by object storage", core.ErrUnsupported, f.name)
		}
	}

	if flag&(os.O_WRONLY|os.O_CREATE) != 0 {
		return newWriter(m, m.key(name), name), nil
	}
	return newReader(context.Background(), m, m.key(name), name)
}

// WriteFile uploads data as a single object.
func (m *FS) WriteFile(name string, data []byte, _ fs.FileMode) error {
	f, err := m.Create(name)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return pathError("writefile", name, err)
	}
	return pathError("writefile", name, f.Close())
}

// Mkdir writes a directory marker. The parent must exist.
func (m *FS) Mkdir(name string, _ fs.FileMode) error {
	if ok, err := m.Exists(name); err != nil {
		return err
	} else if ok {
		return pathError("mkdir", name, fs.ErrExist)
	}
	if parent := path.Dir(cleanKey(name)); parent != "." {
		info, err := m.Stat(parent)
		if err != nil {
			return pathError("mkdir", name, fs.ErrNotExist)
		}
		if !info.IsDir() {
			return pathError("mkdir", name, core.ErrNotDir)
		}
	}
	return m.putMarker(name)
}

// MkdirAll writes a directory marker unless the directory already exists.
func (m *FS) MkdirAll(name string, _ fs.FileMode) error {
	if ok, err := m.Exists(name); err != nil || ok {
		return err
	}
	return m.putMarker(name)
}

func (m *FS) putMarker(name string) error {
	key := m.key(name)
	if key == "" {
		return nil
	}
	_, err := m.client.PutObject(context.Background(), m.bucket, dirKey(key), strings.NewReader(""), 0,
		minio.PutObjectOptions{ContentType: "application/x-directory"})
	return pathError("mkdir", name, translate(err))
}

// Remove removes an object or an empty virtual directory.
func (m *FS) Remove(name string) error {
	info, err := m.Stat(name)
	if err != nil {
		return err
	}

	key := m.key(name)
	if info.IsDir() {
		entries, err := m.ReadDir(name)
		if err != nil {
			return err
		}
		if len(entries) > 0 {
			return pathError("remove", name, core.ErrDirNotEmpty)
		}
		key = dirKey(key)
	}

	err = m.client.RemoveObject(context.Background(), m.bucket, key, minio.RemoveObjectOptions{})
	return pathError("remove", name, translate(err))
}

// RemoveAll removes an object and every object below it.
func (m *FS) RemoveAll(name string) error {
	key := m.key(name)
	ctx := context.Background()

	if key != "" {
		if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
			if err = translate(err); !errors.Is(err, fs.ErrNotExist) {
				return pathError("removeall", name, err)
			}
		}
	}

	objects := make(chan minio.ObjectInfo, 100)
	var listErr error
	go func() {
		defer close(objects)
		for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
			Prefix:    dirKey(key),
			Recursive: true,
		}) {
			if obj.Err != nil {
				listErr = obj.Err
				return
			}
			objects <- obj
		}
	}()

	var first error
	for res := range m.client.RemoveObjects(ctx, m.bucket, objects, minio.RemoveObjectsOptions{}) {
		if res.Err != nil && first == nil {
			first = res.Err
		}
	}
	if listErr != nil {
		return pathError("removeall", name, translate(listErr))
	}
	return pathError("removeall", name, translate(first))
}

// Rename copies then deletes. Directories are renamed object by object
// with bounded parallelism. The operation is not atomic: a failure during
// the delete phase leaves objects under both names.
func (m *FS) Rename(oldpath, newpath string) error {
	oldKey, newKey := m.key(oldpath), m.key(newpath)
	ctx := context.Background()

	info, err := m.Stat(oldpath)
	if err != nil {
		return pathError("rename", oldpath, fs.ErrNotExist)
	}
	if !info.IsDir() {
		if err := m.copyObject(ctx, oldKey, newKey); err != nil {
			return pathError("rename", oldpath, translate(err))
		}
		err := m.client.RemoveObject(ctx, m.bucket, oldKey, minio.RemoveObjectOptions{})
		return pathError("rename", oldpath, translate(err))
	}

	copied, err := m.copyPrefix(ctx, dirKey(oldKey), dirKey(newKey))
	if err != nil {
		return pathError("rename", oldpath, translate(err))
	}

	toDelete := make(chan minio.ObjectInfo, len(copied))
	for _, key := range copied {
		toDelete <- minio.ObjectInfo{Key: key}
	}
	close(toDelete)
	for res := range m.client.RemoveObjects(ctx, m.bucket, toDelete, minio.RemoveObjectsOptions{}) {
		if res.Err != nil {
			return pathError("rename", oldpath, translate(res.Err))
		}
	}
	return nil
}

// CopyObject copies a single object server-side.
func (m *FS) CopyObject(src, dst string) error {
	err := m.copyObject(context.Background(), m.key(src), m.key(dst))
	return pathError("copy", src, translate(err))
}

// CopyPrefix copies every object below src to the same relative key below
// dst, server-side and in parallel.
func (m *FS) CopyPrefix(src, dst string) error {
	_, err := m.copyPrefix(context.Background(), dirKey(m.key(src)), dirKey(m.key(dst)))
	return pathError("copy", src, translate(err))
}

func (m *FS) copyObject(ctx context.Context, srcKey, dstKey string) error {
	_, err := m.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: m.bucket, Object: dstKey},
		minio.CopySrcOptions{Bucket: m.bucket, Object: srcKey},
	)
	return err
}

// copyPrefix copies objects below oldPrefix using a bounded worker pool and
// returns the source keys that were copied.
func (m *FS) copyPrefix(ctx context.Context, oldPrefix, newPrefix string) ([]string, error) {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(m.renameConcurrency)

	var mu sync.Mutex
	var copied []string

	for obj := range m.client.ListObjects(egCtx, m.bucket, minio.ListObjectsOptions{
		Prefix:    oldPrefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			_ = eg.Wait()
			return copied, obj.Err
		}
		srcKey := obj.Key
		eg.Go(func() error {
			dstKey := newPrefix + strings.TrimPrefix(srcKey, oldPrefix)
			if err := m.copyObject(egCtx, srcKey, dstKey); err != nil {
				return fmt.Errorf("copy object %s to %s: %w", srcKey, dstKey, err)
			}
			mu.Lock()
			copied = append(copied, srcKey)
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return copied, err
	}
	if len(copied) == 0 {
		return nil, fs.ErrNotExist
	}
	return copied, nil
}

// Walk walks the tree rooted at root in lexical order.
func (m *FS) Walk(root string, walkFn fs.WalkDirFunc) error {
	root = cleanKey(root)
	if root == "" {
		root = "."
	}
	info, err := m.Stat(root)
	if err != nil {
		err = walkFn(root, nil, err)
	} else {
		err = m.walk(root, dirEntry{info: info.(*fileInfo)}, walkFn)
	}
	if errors.Is(err, fs.SkipDir) || errors.Is(err, fs.SkipAll) {
		return nil
	}
	return err
}

func (m *FS) walk(name string, d fs.DirEntry, walkFn fs.WalkDirFunc) error {
	if err := walkFn(name, d, nil); err != nil || !d.IsDir() {
		if errors.Is(err, fs.SkipDir) && d.IsDir() {
			err = nil
		}
		return err
	}

	entries, err := m.ReadDir(name)
	if err != nil {
		if err = walkFn(name, d, err); err != nil {
			return err
		}
	}
	for _, entry := range entries {
		if err := m.walk(path.Join(name, entry.Name()), entry, walkFn); err != nil {
			if errors.Is(err, fs.SkipDir) {
				continue
			}
			return err
		}
	}
	return nil
}

// Chroot returns storage whose keys live below dir.
func (m *FS) Chroot(dir string) (core.FS, error) {
	return &FS{
		client:             m.client,
		bucket:             m.bucket,
		prefix:             m.key(dir),
		multipartThreshold: m.multipartThreshold,
		renameConcurrency:  m.renameConcurrency,
	}, nil
}

// Type returns FSTypeRemote.
func (m *FS) Type() core.FSType {
	return core.FSTypeRemote
}

var _ core.FS = (*FS)(nil)
