// Package minio provides MinIO/S3 backed storage for VFS providers.
//
// Directories are virtual: a directory exists when an object lives below
// it or when Mkdir left a zero-byte "name/" marker object. Rename and
// RemoveAll operate on whole prefixes and are not atomic.
package minio

import (
	"github.com/minio/minio-go/v7"

	"github.com/jmgilman/go/vfs/errors"
)

const (
	defaultMultipartThreshold = 5 * 1024 * 1024
	defaultRenameConcurrency  = 10
)

// Config holds MinIO storage configuration.
type Config struct {
	// Endpoint is the server address, e.g. "localhost:9000".
	Endpoint string

	// Bucket is the bucket holding the objects.
	Bucket string

	// AccessKey and SecretKey authenticate against the server.
	AccessKey string
	SecretKey string

	// UseSSL enables HTTPS.
	UseSSL bool

	// Prefix namespaces every key under the given directory.
	Prefix string

	// Client is an optional pre-configured client. When set, Endpoint and
	// the credentials are ignored.
	Client *minio.Client

	// MultipartThreshold is the write size after which uploads switch from
	// buffering to streaming. Zero selects 5MB.
	MultipartThreshold int64

	// MaxRenameConcurrency bounds parallel copies during prefix renames.
	// Zero selects 10.
	MaxRenameConcurrency int
}

// validate checks that either Client or the connection fields are set.
func (c *Config) validate() error {
	if c.Bucket == "" {
		return errors.New(errors.CodeInvalidConfig, "bucket is required")
	}
	if c.Client != nil {
		return nil
	}
	if c.Endpoint == "" {
		return errors.New(errors.CodeInvalidConfig, "endpoint is required when client is not provided")
	}
	if c.AccessKey == "" {
		return errors.New(errors.CodeInvalidConfig, "access key is required when client is not provided")
	}
	if c.SecretKey == "" {
		return errors.New(errors.CodeInvalidConfig, "secret key is required when client is not provided")
	}
	if c.MultipartThreshold < 0 {
		return errors.New(errors.CodeInvalidConfig, "multipart threshold must not be negative")
	}
	if c.MaxRenameConcurrency < 0 {
		return errors.New(errors.CodeInvalidConfig, "rename concurrency must not be negative")
	}
	return nil
}
