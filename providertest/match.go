package providertest

import (
	"sort"
	"testing"

	"github.com/jmgilman/go/vfs/core"
)

// TestMatch tests MatchInDirectory patterns and type filters.
func TestMatch(t *testing.T, target Target) {
	TestMatchWithConfig(t, target, DefaultConfig())
}

// TestMatchWithConfig is TestMatch with behavior configuration.
func TestMatchWithConfig(t *testing.T, target Target, config Config) {
	run(t, config, "Match", "Pattern", func(t *testing.T) {
		testMatch(t, target, "glob-pattern", "*.txt", 0, "a.txt", "b.txt")
	})
	run(t, config, "Match", "All", func(t *testing.T) {
		testMatch(t, target, "glob-all", "*", 0, "a.txt", "b.txt", "c.log", "sub")
	})
	run(t, config, "Match", "FilesOnly", func(t *testing.T) {
		testMatch(t, target, "glob-files", "*", core.TypeFile, "a.txt", "b.txt", "c.log")
	})
	run(t, config, "Match", "DirectoriesOnly", func(t *testing.T) {
		testMatch(t, target, "glob-dirs", "*", core.TypeDir, "sub")
	})
	run(t, config, "Match", "NoMatch", func(t *testing.T) {
		testMatch(t, target, "glob-none", "*.none", 0)
	})
}

// testMatch builds a fixture tree in its own directory, since every subtest
// of a group shares one target.
func testMatch(t *testing.T, target Target, dirName, pattern string, filter core.TypeFilter, names ...string) {
	requireVerb(t, target.Provider, core.VerbMatch)
	w := worker(t, target)

	dir := newPath(t, target.Root, dirName)
	mkdir(t, w, dir)
	mkdir(t, w, newPath(t, target.Root, dirName+"/sub"))
	for _, name := range []string{"a.txt", "b.txt", "c.log", "sub/hidden.txt"} {
		writeFile(t, w, newPath(t, target.Root, dirName+"/"+name), name)
	}

	got, err := w.MatchInDirectory(dir, pattern, filter)
	if err != nil {
		t.Fatalf("MatchInDirectory(%s, %q): got error %v, want nil", dir, pattern, err)
	}

	want := make([]string, len(names))
	for i, n := range names {
		want[i] = join(target.Root, dirName+"/"+n)
	}
	sort.Strings(got)
	sort.Strings(want)
	if len(got) != len(want) {
		t.Fatalf("MatchInDirectory(%s, %q): got %v, want %v", dir, pattern, got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("MatchInDirectory(%s, %q): got %v, want %v", dir, pattern, got, want)
			break
		}
	}
}
