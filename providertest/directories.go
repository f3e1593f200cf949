package providertest

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/jmgilman/go/vfs"
	"github.com/jmgilman/go/vfs/core"
)

// TestDirectories tests CreateDirectory and RemoveDirectory, including the
// offending path reported when a removal fails.
func TestDirectories(t *testing.T, target Target) {
	TestDirectoriesWithConfig(t, target, DefaultConfig())
}

// TestDirectoriesWithConfig is TestDirectories with behavior configuration.
func TestDirectoriesWithConfig(t *testing.T, target Target, config Config) {
	run(t, config, "Directories", "Create", func(t *testing.T) {
		testDirectoriesCreate(t, target, config)
	})
	run(t, config, "Directories", "RemoveEmpty", func(t *testing.T) {
		testDirectoriesRemoveEmpty(t, target)
	})
	run(t, config, "Directories", "RemoveNonEmpty", func(t *testing.T) {
		testDirectoriesRemoveNonEmpty(t, target, config)
	})
	run(t, config, "Directories", "RemoveRecursive", func(t *testing.T) {
		testDirectoriesRemoveRecursive(t, target)
	})
}

func testDirectoriesCreate(t *testing.T, target Target, config Config) {
	requireVerb(t, target.Provider, core.VerbMkdir)
	w := worker(t, target)
	p := newPath(t, target.Root, "made")

	if err := w.CreateDirectory(p); err != nil {
		t.Fatalf("CreateDirectory(%s): got error %v, want nil", p, err)
	}
	if config.VirtualDirectories {
		// An empty prefix has nothing to stat.
		return
	}

	info, err := w.Stat(p)
	if err != nil {
		t.Fatalf("Stat(%s): got error %v, want nil", p, err)
	}
	if !info.IsDir() {
		t.Errorf("Stat(%s).IsDir(): got false, want true", p)
	}
}

func testDirectoriesRemoveEmpty(t *testing.T, target Target) {
	requireVerb(t, target.Provider, core.VerbRemoveDir)
	w := worker(t, target)
	p := newPath(t, target.Root, "empty")
	mkdir(t, w, p)

	if err := w.RemoveDirectory(p, false); err != nil {
		t.Fatalf("RemoveDirectory(%s): got error %v, want nil", p, err)
	}
	if w.Exists(p) {
		t.Errorf("Exists(%s) after RemoveDirectory: got true, want false", p)
	}

	err := w.RemoveDirectory(newPath(t, target.Root, "never"), false)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("RemoveDirectory(never): got error %v, want fs.ErrNotExist", err)
	}
}

func testDirectoriesRemoveNonEmpty(t *testing.T, target Target, config Config) {
	requireVerb(t, target.Provider, core.VerbRemoveDir)
	w := worker(t, target)
	dir := newPath(t, target.Root, "full")
	mkdir(t, w, dir)
	writeFile(t, w, newPath(t, target.Root, "full/child.txt"), "x")

	err := w.RemoveDirectory(dir, false)
	if err == nil {
		t.Fatalf("RemoveDirectory(%s, non-recursive): got nil, want error", dir)
	}
	if _, ok := vfs.OffendingPath(err); !ok {
		t.Errorf("RemoveDirectory(%s): error %v carries no offending path", dir, err)
	}
	if !w.Exists(newPath(t, target.Root, "full/child.txt")) {
		t.Errorf("RemoveDirectory(%s): a failed removal deleted the child", dir)
	}
}

func testDirectoriesRemoveRecursive(t *testing.T, target Target) {
	requireVerb(t, target.Provider, core.VerbRemoveDir)
	w := worker(t, target)
	mkdir(t, w, newPath(t, target.Root, "tree"))
	mkdir(t, w, newPath(t, target.Root, "tree/inner"))
	writeFile(t, w, newPath(t, target.Root, "tree/a.txt"), "a")
	writeFile(t, w, newPath(t, target.Root, "tree/inner/b.txt"), "b")

	if err := w.RemoveDirectory(newPath(t, target.Root, "tree"), true); err != nil {
		t.Fatalf("RemoveDirectory(tree, recursive): got error %v, want nil", err)
	}
	for _, name := range []string{"tree", "tree/a.txt", "tree/inner/b.txt"} {
		if w.Exists(newPath(t, target.Root, name)) {
			t.Errorf("Exists(%s) after recursive removal: got true, want false", name)
		}
	}
}
