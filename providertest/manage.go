package providertest

import (
	"testing"

	"github.com/jmgilman/go/vfs"
	"github.com/jmgilman/go/vfs/core"
)

// TestManage tests the binary operations: Rename, CopyFile and
// CopyDirectory within the provider, and their refusal across providers.
func TestManage(t *testing.T, target Target) {
	TestManageWithConfig(t, target, DefaultConfig())
}

// TestManageWithConfig is TestManage with behavior configuration.
func TestManageWithConfig(t *testing.T, target Target, config Config) {
	run(t, config, "Manage", "Rename", func(t *testing.T) {
		testManageRename(t, target)
	})
	run(t, config, "Manage", "CopyFile", func(t *testing.T) {
		testManageCopyFile(t, target)
	})
	run(t, config, "Manage", "CopyDirectory", func(t *testing.T) {
		testManageCopyDirectory(t, target)
	})
	run(t, config, "Manage", "CrossProvider", func(t *testing.T) {
		testManageCrossProvider(t, target)
	})
}

func testManageRename(t *testing.T, target Target) {
	requireVerb(t, target.Provider, core.VerbRename)
	w := worker(t, target)
	src := newPath(t, target.Root, "before.txt")
	dst := newPath(t, target.Root, "after.txt")
	writeFile(t, w, src, "moved")

	if err := w.Rename(src, dst); err != nil {
		t.Fatalf("Rename(%s, %s): got error %v, want nil", src, dst, err)
	}
	if w.Exists(src) {
		t.Errorf("Exists(%s) after Rename: got true, want false", src)
	}
	if got, err := readFile(t, w, dst); err != nil || got != "moved" {
		t.Errorf("read(%s) after Rename: got %q, %v, want %q", dst, got, err, "moved")
	}
}

func testManageCopyFile(t *testing.T, target Target) {
	requireVerb(t, target.Provider, core.VerbCopyFile)
	w := worker(t, target)
	src := newPath(t, target.Root, "original.txt")
	dst := newPath(t, target.Root, "copy.txt")
	writeFile(t, w, src, "duplicated")

	if err := w.CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile(%s, %s): got error %v, want nil", src, dst, err)
	}
	for _, p := range []*vfs.Path{src, dst} {
		if got, err := readFile(t, w, p); err != nil || got != "duplicated" {
			t.Errorf("read(%s) after CopyFile: got %q, %v, want %q", p, got, err, "duplicated")
		}
	}
}

func testManageCopyDirectory(t *testing.T, target Target) {
	requireVerb(t, target.Provider, core.VerbCopyDir)
	w := worker(t, target)
	mkdir(t, w, newPath(t, target.Root, "src"))
	mkdir(t, w, newPath(t, target.Root, "src/nested"))
	writeFile(t, w, newPath(t, target.Root, "src/top.txt"), "top")
	writeFile(t, w, newPath(t, target.Root, "src/nested/deep.txt"), "deep")

	if err := w.CopyDirectory(newPath(t, target.Root, "src"), newPath(t, target.Root, "dst")); err != nil {
		t.Fatalf("CopyDirectory(src, dst): got error %v, want nil", err)
	}
	want := map[string]string{"dst/top.txt": "top", "dst/nested/deep.txt": "deep", "src/top.txt": "top"}
	for name, content := range want {
		if got, err := readFile(t, w, newPath(t, target.Root, name)); err != nil || got != content {
			t.Errorf("read(%s) after CopyDirectory: got %q, %v, want %q", name, got, err, content)
		}
	}
}

// testManageCrossProvider renames onto a path owned by a scratch provider
// registered for the test. Nothing may change on either side.
func testManageCrossProvider(t *testing.T, target Target) {
	requireVerb(t, target.Provider, core.VerbRename)
	w := worker(t, target)
	src := newPath(t, target.Root, "stays.txt")
	writeFile(t, w, src, "here")

	other := &scratchProvider{}
	if _, err := target.FS.Register(other); err != nil {
		t.Fatalf("Register(scratch): setup failed: %v", err)
	}
	t.Cleanup(func() { _ = target.FS.Unregister(other) })

	dst := newPath(t, scratchVolume+"stays.txt")
	for name, op := range map[string]func(src, dst *vfs.Path) error{
		"Rename":        w.Rename,
		"CopyFile":      w.CopyFile,
		"CopyDirectory": w.CopyDirectory,
	} {
		err := op(src, dst)
		if !vfs.IsCrossDevice(err) {
			t.Errorf("%s(%s, %s): got error %v, want cross-device", name, src, dst, err)
		}
	}
	if got, err := readFile(t, w, src); err != nil || got != "here" {
		t.Errorf("read(%s) after refused operations: got %q, %v, want %q", src, got, err, "here")
	}
	if other.touched {
		t.Errorf("scratch provider was asked to act on a cross-provider operation")
	}
}

const scratchVolume = "providertest-scratch:/"

// scratchProvider owns a private volume and records any mutation request.
type scratchProvider struct {
	touched bool
}

func (s *scratchProvider) Name() string { return "providertest-scratch" }

func (s *scratchProvider) Volumes() []string { return []string{scratchVolume} }

func (s *scratchProvider) ClaimPath(p string) (any, bool) {
	return nil, len(p) >= len(scratchVolume) && p[:len(scratchVolume)] == scratchVolume
}

func (s *scratchProvider) Rename(string, string) error {
	s.touched = true
	return nil
}

func (s *scratchProvider) CopyFile(string, string) error {
	s.touched = true
	return nil
}
