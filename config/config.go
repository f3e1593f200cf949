// Package config loads a declarative mount table from YAML and registers the
// providers it describes.
//
// A table looks like:
//
//	mounts:
//	  - type: local
//	    path: /data
//	    source: /srv/data
//	  - type: zip
//	    volume: "assets:/"
//	    source: /srv/assets.zip
//	  - type: git
//	    path: /src
//	    source: /srv/repo
//	    revision: v1.2.0
//	  - type: minio
//	    volume: "s3:/"
//	    minio:
//	      endpoint: localhost:9000
//	      bucket: artifacts
//	      access_key: ${MINIO_ACCESS_KEY}
//	      secret_key: ${MINIO_SECRET_KEY}
//
// Mounts are registered in table order, so a later mount takes priority over
// an earlier one that claims the same paths.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jmgilman/go/vfs"
	"github.com/jmgilman/go/vfs/backend/afero"
	"github.com/jmgilman/go/vfs/backend/billy"
	"github.com/jmgilman/go/vfs/backend/minio"
	"github.com/jmgilman/go/vfs/core"
	"github.com/jmgilman/go/vfs/errors"
	"github.com/jmgilman/go/vfs/provider/mount"
)

// MountType selects the backend of a mount.
type MountType string

const (
	// MountMemory is an empty in-memory filesystem.
	MountMemory MountType = "memory"
	// MountLocal is a host directory.
	MountLocal MountType = "local"
	// MountZip is a read-only zip archive read from the host.
	MountZip MountType = "zip"
	// MountMinIO is an S3-compatible bucket.
	MountMinIO MountType = "minio"
	// MountGit is an in-memory copy of a git repository's tree at one
	// revision.
	MountGit MountType = "git"
)

// MountTable is the top-level document.
type MountTable struct {
	Mounts []Mount `yaml:"mounts"`
}

// Mount describes one provider. Exactly one of Path and Volume is set.
type Mount struct {
	Type MountType `yaml:"type"`

	// Path is the absolute mount point, e.g. "/data".
	Path string `yaml:"path,omitempty"`

	// Volume is a volume prefix ending in "/", e.g. "s3:/".
	Volume string `yaml:"volume,omitempty"`

	// Name overrides the provider name used in errors and logs.
	Name string `yaml:"name,omitempty"`

	CaseInsensitive bool `yaml:"case_insensitive,omitempty"`

	// Source is the host directory of a local mount, the archive of a zip
	// mount or the repository of a git mount.
	Source string `yaml:"source,omitempty"`

	// Revision selects the commit of a git mount. Defaults to HEAD.
	Revision string `yaml:"revision,omitempty"`

	MinIO *MinIOConfig `yaml:"minio,omitempty"`
}

// MinIOConfig configures a minio mount. Credentials may reference
// environment variables as $NAME or ${NAME}.
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix,omitempty"`
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty"`
	UseSSL    bool   `yaml:"use_ssl,omitempty"`
}

// Load decodes a mount table. Unknown fields are rejected. An empty document
// is an empty table.
func Load(r io.Reader) (*MountTable, error) {
	var table MountTable
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&table); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, "failed to parse mount table")
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return &table, nil
}

// LoadFile reads and decodes the mount table at path.
func LoadFile(path string) (*MountTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeInvalidConfig, "failed to read mount table",
			map[string]interface{}{"path": path})
	}
	table, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, errors.WithContext(err, "path", path)
	}
	return table, nil
}

// Validate checks every mount without touching any storage.
func (t *MountTable) Validate() error {
	for i := range t.Mounts {
		if err := t.Mounts[i].validate(); err != nil {
			return errors.WithContext(err, "mount", i)
		}
	}
	return nil
}

func (m *Mount) validate() error {
	switch {
	case m.Path == "" && m.Volume == "":
		return errors.New(errors.CodeInvalidConfig, "mount needs a path or a volume")
	case m.Path != "" && m.Volume != "":
		return errors.New(errors.CodeInvalidConfig, "mount cannot have both a path and a volume")
	case m.Path != "" && !strings.HasPrefix(m.Path, "/"):
		return errors.Newf(errors.CodeInvalidConfig, "mount path %q is not absolute", m.Path)
	case m.Volume != "" && !strings.HasSuffix(m.Volume, "/"):
		return errors.Newf(errors.CodeInvalidConfig, "volume %q must end with a separator", m.Volume)
	}

	switch m.Type {
	case MountMemory:
		if m.Source != "" {
			return errors.New(errors.CodeInvalidConfig, "memory mounts take no source")
		}
	case MountLocal, MountZip, MountGit:
		if m.Source == "" {
			return errors.Newf(errors.CodeInvalidConfig, "%s mounts require a source", m.Type)
		}
	case MountMinIO:
		if m.MinIO == nil {
			return errors.New(errors.CodeInvalidConfig, "minio mounts require a minio section")
		}
		if m.MinIO.Endpoint == "" {
			return errors.New(errors.CodeInvalidConfig, "minio endpoint is required")
		}
		if m.MinIO.Bucket == "" {
			return errors.New(errors.CodeInvalidConfig, "minio bucket is required")
		}
	case "":
		return errors.New(errors.CodeInvalidConfig, "mount type is required")
	default:
		return errors.Newf(errors.CodeInvalidConfig, "unknown mount type %q", m.Type)
	}

	if m.Type != MountGit && m.Revision != "" {
		return errors.Newf(errors.CodeInvalidConfig, "%s mounts take no revision", m.Type)
	}
	if m.Type != MountMinIO && m.MinIO != nil {
		return errors.Newf(errors.CodeInvalidConfig, "%s mounts take no minio section", m.Type)
	}
	return nil
}

// Build creates the provider described by m. Nothing is registered.
func (m *Mount) Build() (*mount.Provider, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}

	backend, err := m.backend()
	if err != nil {
		return nil, err
	}

	var opts []mount.Option
	if m.Path != "" {
		opts = append(opts, mount.WithMountPoint(m.Path))
	} else {
		opts = append(opts, mount.WithVolume(m.Volume))
	}
	if m.Name != "" {
		opts = append(opts, mount.WithName(m.Name))
	}
	if m.CaseInsensitive {
		opts = append(opts, mount.WithCaseInsensitive())
	}
	return mount.New(backend, opts...)
}

func (m *Mount) backend() (core.FS, error) {
	switch m.Type {
	case MountMemory:
		return billy.NewMemory(), nil
	case MountLocal:
		info, err := os.Stat(m.Source)
		if err != nil {
			return nil, errors.WrapWithContext(err, errors.CodeInvalidConfig, "local mount source is unavailable",
				map[string]interface{}{"source": m.Source})
		}
		if !info.IsDir() {
			return nil, errors.WithContext(
				errors.Newf(errors.CodeInvalidConfig, "local mount source %q is not a directory", m.Source),
				"source", m.Source)
		}
		return billy.NewLocal(m.Source), nil
	case MountZip:
		zfs, err := afero.NewZipFrom(billy.NewLocal(filepath.Dir(m.Source)), filepath.Base(m.Source))
		if err != nil {
			return nil, errors.WrapWithContext(err, errors.CodeInvalidConfig, "failed to open zip mount",
				map[string]interface{}{"source": m.Source})
		}
		return zfs, nil
	case MountGit:
		snapshot, err := billy.NewGitSnapshot(m.Source, m.Revision)
		if err != nil {
			return nil, errors.WrapWithContext(err, errors.CodeInvalidConfig, "failed to read git mount",
				map[string]interface{}{"source": m.Source, "revision": m.Revision})
		}
		return snapshot, nil
	case MountMinIO:
		bucket, err := minio.New(minio.Config{
			Endpoint:  m.MinIO.Endpoint,
			Bucket:    m.MinIO.Bucket,
			Prefix:    m.MinIO.Prefix,
			AccessKey: os.ExpandEnv(m.MinIO.AccessKey),
			SecretKey: os.ExpandEnv(m.MinIO.SecretKey),
			UseSSL:    m.MinIO.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		return bucket, nil
	default:
		return nil, errors.Newf(errors.CodeInvalidConfig, "unknown mount type %q", m.Type)
	}
}

// Apply builds every mount and registers it with fsys in table order. The
// providers are returned in the same order. If any mount fails, the ones
// already registered are unregistered again before the error is returned.
func (t *MountTable) Apply(fsys *vfs.FS) ([]core.Provider, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	providers := make([]core.Provider, 0, len(t.Mounts))
	rollback := func() {
		for i := len(providers) - 1; i >= 0; i-- {
			_ = fsys.Unregister(providers[i])
		}
	}

	for i := range t.Mounts {
		p, err := t.Mounts[i].Build()
		if err != nil {
			rollback()
			return nil, errors.WithContext(err, "mount", i)
		}
		if _, err := fsys.Register(p); err != nil {
			rollback()
			return nil, errors.WithContext(err, "mount", i)
		}
		providers = append(providers, p)
	}
	return providers, nil
}
