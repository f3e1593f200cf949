// Package providertest provides a conformance suite for VFS providers.
//
// The suite drives a provider through a vfs.FS and a vfs.Worker, exactly as
// callers would, so it checks the dispatch contract end to end: resolution,
// normalization inside the provider's namespace, file and directory
// operations, tree errors and glob matching. Capabilities the provider does
// not implement are skipped rather than failed.
//
// Example usage:
//
//	func TestConformance(t *testing.T) {
//	    providertest.TestSuite(t, func(t *testing.T) providertest.Target {
//	        fsys, p := newFSWithMount(t)
//	        return providertest.Target{FS: fsys, Provider: p, Root: "/mnt"}
//	    })
//	}
package providertest

import (
	"testing"

	"github.com/jmgilman/go/vfs"
	"github.com/jmgilman/go/vfs/core"
)

// Target is a filesystem with the provider under test registered in it.
type Target struct {
	// FS holds the provider, either registered or as its native provider.
	FS *vfs.FS
	// Provider is the provider under test.
	Provider core.Provider
	// Root is an existing, empty directory owned by Provider, such as "/mnt"
	// or "mem:/". Tests create everything below it.
	Root string
}

// Factory returns a fresh Target. It is called once per test group, so each
// group starts from an empty root.
type Factory func(t *testing.T) Target

// Config describes behavior that legitimately differs between providers.
type Config struct {
	// VirtualDirectories indicates directories exist only while they hold
	// entries, as with object storage prefixes.
	VirtualDirectories bool

	// ReadOnly indicates the provider refuses every write. Only the read
	// groups run, against content the factory created.
	ReadOnly bool

	// SkipTests lists test names to skip, e.g. "Directories/RemoveNonEmpty".
	SkipTests []string
}

// DefaultConfig returns the configuration for POSIX-like providers.
func DefaultConfig() Config {
	return Config{}
}

// ObjectStoreConfig returns the configuration for S3-like providers.
func ObjectStoreConfig() Config {
	return Config{VirtualDirectories: true}
}

// TestSuite runs every group with DefaultConfig.
func TestSuite(t *testing.T, newTarget Factory) {
	TestSuiteWithConfig(t, newTarget, DefaultConfig())
}

// TestSuiteWithConfig runs every group that applies to config.
func TestSuiteWithConfig(t *testing.T, newTarget Factory, config Config) {
	groups := []struct {
		name  string
		write bool
		run   func(t *testing.T, target Target, config Config)
	}{
		{name: "Resolution", run: TestResolutionWithConfig},
		{name: "Files", write: true, run: TestFilesWithConfig},
		{name: "Directories", write: true, run: TestDirectoriesWithConfig},
		{name: "Manage", write: true, run: TestManageWithConfig},
		{name: "Match", write: true, run: TestMatchWithConfig},
	}

	for _, g := range groups {
		t.Run(g.name, func(t *testing.T) {
			if config.skip(g.name) {
				t.Skip("Skipped by provider configuration")
				return
			}
			if g.write && config.ReadOnly {
				t.Skip("Provider is read-only")
				return
			}
			g.run(t, newTarget(t), config)
		})
	}
}

func (c Config) skip(name string) bool {
	for _, s := range c.SkipTests {
		if s == name {
			return true
		}
	}
	return false
}

// run executes one subtest of group unless it is configured away.
func run(t *testing.T, config Config, group, name string, fn func(t *testing.T)) {
	t.Run(name, func(t *testing.T) {
		if config.skip(group + "/" + name) {
			t.Skip("Skipped by provider configuration")
			return
		}
		fn(t)
	})
}

// requireVerb skips t when the provider lacks verb.
func requireVerb(t *testing.T, p core.Provider, verb core.Verb) {
	t.Helper()
	if !core.Supports(p, verb) {
		t.Skipf("%s does not support %s", p.Name(), verb)
	}
}
