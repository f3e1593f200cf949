package providertest

import (
	"errors"
	"io"
	"io/fs"
	"testing"
	"time"

	"github.com/jmgilman/go/vfs/core"
)

// TestFiles tests file operations: open for reading, writing and
// appending, Stat, Exists, Access, Utime and DeleteFile.
func TestFiles(t *testing.T, target Target) {
	TestFilesWithConfig(t, target, DefaultConfig())
}

// TestFilesWithConfig is TestFiles with behavior configuration.
func TestFilesWithConfig(t *testing.T, target Target, config Config) {
	run(t, config, "Files", "WriteAndRead", func(t *testing.T) {
		testFilesWriteRead(t, target)
	})
	run(t, config, "Files", "Append", func(t *testing.T) {
		testFilesAppend(t, target)
	})
	run(t, config, "Files", "Truncate", func(t *testing.T) {
		testFilesTruncate(t, target)
	})
	run(t, config, "Files", "Stat", func(t *testing.T) {
		testFilesStat(t, target)
	})
	run(t, config, "Files", "Access", func(t *testing.T) {
		testFilesAccess(t, target)
	})
	run(t, config, "Files", "Utime", func(t *testing.T) {
		testFilesUtime(t, target)
	})
	run(t, config, "Files", "Delete", func(t *testing.T) {
		testFilesDelete(t, target)
	})
}

func testFilesWriteRead(t *testing.T, target Target) {
	requireVerb(t, target.Provider, core.VerbOpen)
	w := worker(t, target)
	p := newPath(t, target.Root, "hello.txt")

	writeFile(t, w, p, "hello, world")
	got, err := readFile(t, w, p)
	if err != nil {
		t.Fatalf("read(%s): got error %v, want nil", p, err)
	}
	if got != "hello, world" {
		t.Errorf("read(%s): got %q, want %q", p, got, "hello, world")
	}

	_, err = w.OpenForReading(newPath(t, target.Root, "missing.txt"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("OpenForReading(missing.txt): got error %v, want fs.ErrNotExist", err)
	}
}

func testFilesAppend(t *testing.T, target Target) {
	requireVerb(t, target.Provider, core.VerbOpen)
	w := worker(t, target)
	p := newPath(t, target.Root, "log.txt")

	writeFile(t, w, p, "one")
	f, err := w.OpenForAppending(p, 0o644)
	if err != nil {
		if errors.Is(err, core.ErrUnsupported) {
			t.Skip("append not supported")
		}
		t.Fatalf("OpenForAppending(%s): got error %v, want nil", p, err)
	}
	if _, err := io.WriteString(f, " two"); err != nil {
		t.Fatalf("Write: got error %v, want nil", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close: got error %v, want nil", err)
	}

	got, err := readFile(t, w, p)
	if err != nil || got != "one two" {
		t.Errorf("read(%s) after append: got %q, %v, want %q", p, got, err, "one two")
	}
}

func testFilesTruncate(t *testing.T, target Target) {
	requireVerb(t, target.Provider, core.VerbOpen)
	w := worker(t, target)
	p := newPath(t, target.Root, "short.txt")

	writeFile(t, w, p, "a much longer first version")
	writeFile(t, w, p, "short")

	got, err := readFile(t, w, p)
	if err != nil || got != "short" {
		t.Errorf("read(%s) after rewrite: got %q, %v, want %q", p, got, err, "short")
	}
}

func testFilesStat(t *testing.T, target Target) {
	requireVerb(t, target.Provider, core.VerbStat)
	w := worker(t, target)
	p := newPath(t, target.Root, "sized.txt")
	writeFile(t, w, p, "12345")

	info, err := w.Stat(p)
	if err != nil {
		t.Fatalf("Stat(%s): got error %v, want nil", p, err)
	}
	if info.Size() != 5 {
		t.Errorf("Stat(%s).Size(): got %d, want 5", p, info.Size())
	}
	if info.IsDir() {
		t.Errorf("Stat(%s).IsDir(): got true, want false", p)
	}

	if _, err := w.Lstat(p); err != nil {
		t.Errorf("Lstat(%s): got error %v, want nil", p, err)
	}

	_, err = w.Stat(newPath(t, target.Root, "missing.txt"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Stat(missing.txt): got error %v, want fs.ErrNotExist", err)
	}

	if !w.Exists(p) {
		t.Errorf("Exists(%s): got false, want true", p)
	}
	if w.Exists(newPath(t, target.Root, "missing.txt")) {
		t.Errorf("Exists(missing.txt): got true, want false")
	}
}

func testFilesAccess(t *testing.T, target Target) {
	requireVerb(t, target.Provider, core.VerbAccess)
	w := worker(t, target)
	p := newPath(t, target.Root, "access.txt")
	writeFile(t, w, p, "x")

	if err := w.Access(p, core.AccessExists); err != nil {
		t.Errorf("Access(%s, exists): got error %v, want nil", p, err)
	}
	if err := w.Access(p, core.AccessRead); err != nil {
		t.Errorf("Access(%s, read): got error %v, want nil", p, err)
	}
	err := w.Access(newPath(t, target.Root, "missing.txt"), core.AccessExists)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Access(missing.txt): got error %v, want fs.ErrNotExist", err)
	}
}

func testFilesUtime(t *testing.T, target Target) {
	requireVerb(t, target.Provider, core.VerbUtime)
	w := worker(t, target)
	p := newPath(t, target.Root, "timed.txt")
	writeFile(t, w, p, "x")

	mtime := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := w.Utime(p, mtime, mtime); err != nil {
		if errors.Is(err, core.ErrUnsupported) {
			t.Skip("backend has no settable times")
		}
		t.Fatalf("Utime(%s): got error %v, want nil", p, err)
	}
	info, err := w.Stat(p)
	if err != nil {
		t.Fatalf("Stat(%s): got error %v, want nil", p, err)
	}
	if !info.ModTime().Equal(mtime) {
		t.Errorf("Stat(%s).ModTime(): got %v, want %v", p, info.ModTime(), mtime)
	}
}

func testFilesDelete(t *testing.T, target Target) {
	requireVerb(t, target.Provider, core.VerbDeleteFile)
	w := worker(t, target)
	p := newPath(t, target.Root, "doomed.txt")
	writeFile(t, w, p, "x")

	if err := w.DeleteFile(p); err != nil {
		t.Fatalf("DeleteFile(%s): got error %v, want nil", p, err)
	}
	if w.Exists(p) {
		t.Errorf("Exists(%s) after DeleteFile: got true, want false", p)
	}

	err := w.DeleteFile(newPath(t, target.Root, "missing.txt"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("DeleteFile(missing.txt): got error %v, want fs.ErrNotExist", err)
	}
}
