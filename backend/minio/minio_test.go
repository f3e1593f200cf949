package minio

import (
	"errors"
	"io/fs"
	"os"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/vfs/core"
	vfserrors "github.com/jmgilman/go/vfs/errors"
)

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		errMsg string
	}{
		{
			name: "credentials",
			config: Config{
				Endpoint:  "localhost:9000",
				Bucket:    "b",
				AccessKey: "minioadmin",
				SecretKey: "minioadmin",
			},
		},
		{
			name:   "client",
			config: Config{Client: &minio.Client{}, Bucket: "b"},
		},
		{
			name:   "missing bucket",
			config: Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s"},
			errMsg: "bucket is required",
		},
		{
			name:   "missing endpoint",
			config: Config{Bucket: "b", AccessKey: "a", SecretKey: "s"},
			errMsg: "endpoint is required",
		},
		{
			name:   "missing access key",
			config: Config{Bucket: "b", Endpoint: "localhost:9000", SecretKey: "s"},
			errMsg: "access key is required",
		},
		{
			name:   "missing secret key",
			config: Config{Bucket: "b", Endpoint: "localhost:9000", AccessKey: "a"},
			errMsg: "secret key is required",
		},
		{
			name: "negative threshold",
			config: Config{
				Bucket: "b", Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s",
				MultipartThreshold: -1,
			},
			errMsg: "multipart threshold",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.Equal(t, vfserrors.CodeInvalidConfig, vfserrors.GetCode(err))
		})
	}
}

func TestNew(t *testing.T) {
	m, err := New(Config{Client: &minio.Client{}, Bucket: "b", Prefix: "/ns/data/"})
	require.NoError(t, err)
	assert.Equal(t, "ns/data", m.prefix)
	assert.Equal(t, int64(defaultMultipartThreshold), m.multipartThreshold)
	assert.Equal(t, defaultRenameConcurrency, m.renameConcurrency)
	assert.Equal(t, core.FSTypeRemote, m.Type())
	assert.Equal(t, "b", m.Bucket())

	m, err = New(Config{
		Endpoint:             "localhost:9000",
		Bucket:               "b",
		AccessKey:            "a",
		SecretKey:            "s",
		MultipartThreshold:   1024,
		MaxRenameConcurrency: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1024), m.multipartThreshold)
	assert.Equal(t, 3, m.renameConcurrency)

	_, err = New(Config{})
	assert.Error(t, err)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "", cleanKey("/"))
	assert.Equal(t, "", cleanKey("."))
	assert.Equal(t, "a/b", cleanKey("/a/./b/"))
	assert.Equal(t, "a/b", cleanKey(`a\b`))

	assert.Equal(t, "x", joinKey("", "x"))
	assert.Equal(t, "p", joinKey("p", "."))
	assert.Equal(t, "p/x/y", joinKey("p", "/x/y"))

	assert.Equal(t, "", dirKey(""))
	assert.Equal(t, "a/", dirKey("a"))
	assert.Equal(t, "a/", dirKey("a/"))

	assert.Equal(t, ".", baseName(""))
	assert.Equal(t, "y", baseName("x/y"))
}

func TestEntryFromObject(t *testing.T) {
	_, ok := entryFromObject("d/", minio.ObjectInfo{Key: "d/"})
	assert.False(t, ok)

	e, ok := entryFromObject("d/", minio.ObjectInfo{Key: "d/sub/"})
	require.True(t, ok)
	assert.Equal(t, "sub", e.Name())
	assert.True(t, e.IsDir())
	assert.Equal(t, fs.ModeDir, e.Type())

	e, ok = entryFromObject("d/", minio.ObjectInfo{Key: "d/f.txt", Size: 3})
	require.True(t, ok)
	assert.False(t, e.IsDir())
	info, err := e.Info()
	require.NoError(t, err)
	assert.Equal(t, int64(3), info.Size())
	assert.Equal(t, fs.FileMode(0o644), info.Mode())
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(minio.ErrorResponse{Code: "NoSuchKey"}), fs.ErrNotExist)
	assert.ErrorIs(t, translate(minio.ErrorResponse{Code: "NoSuchBucket"}), fs.ErrNotExist)
	assert.ErrorIs(t, translate(minio.ErrorResponse{Code: "AccessDenied"}), fs.ErrPermission)

	other := errors.New("boom")
	assert.ErrorIs(t, translate(other), other)
}

func TestOpenFileFlags(t *testing.T) {
	m, err := New(Config{Client: &minio.Client{}, Bucket: "b"})
	require.NoError(t, err)

	for _, flag := range []int{os.O_RDWR, os.O_WRONLY | os.O_APPEND, os.O_WRONLY | os.O_EXCL, os.O_WRONLY | os.O_SYNC} {
		_, err := m.OpenFile("x", flag, 0o644)
		assert.ErrorIs(t, err, core.ErrUnsupported)
	}

	f, err := m.OpenFile("x", os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	require.NoError(t, err)
	n, err := f.Write([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	info, err := f.Stat()
	require.NoError(t, err)
	assert.Equal(t, int64(3), info.Size())
	assert.Equal(t, "x", f.Name())

	_, err = f.Read(make([]byte, 1))
	assert.ErrorIs(t, err, fs.ErrInvalid)
}
