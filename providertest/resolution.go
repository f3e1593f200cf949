package providertest

import (
	"testing"

	"github.com/jmgilman/go/vfs"
)

// TestResolution checks that the provider owns its root and everything
// below it, and that normalization stays inside its namespace.
func TestResolution(t *testing.T, target Target) {
	TestResolutionWithConfig(t, target, DefaultConfig())
}

// TestResolutionWithConfig is TestResolution with behavior configuration.
func TestResolutionWithConfig(t *testing.T, target Target, config Config) {
	run(t, config, "Resolution", "OwnsRoot", func(t *testing.T) {
		testResolutionOwns(t, target, newPath(t, target.Root))
	})
	run(t, config, "Resolution", "OwnsDescendants", func(t *testing.T) {
		testResolutionOwns(t, target, newPath(t, target.Root, "a/b/c.txt"))
	})
	run(t, config, "Resolution", "Normalize", func(t *testing.T) {
		testResolutionNormalize(t, target)
	})
	run(t, config, "Resolution", "EqualPaths", func(t *testing.T) {
		testResolutionEqual(t, target)
	})
}

func testResolutionOwns(t *testing.T, target Target, p *vfs.Path) {
	w := worker(t, target)
	owner, err := w.Resolve(p)
	if err != nil {
		t.Fatalf("Resolve(%s): got error %v, want nil", p, err)
	}
	if owner != target.Provider {
		t.Errorf("Resolve(%s): got provider %q, want %q", p, owner.Name(), target.Provider.Name())
	}

	// A second resolution must give the same answer.
	again, err := w.Resolve(p)
	if err != nil || again != owner {
		t.Errorf("Resolve(%s) twice: got %v, %v", p, again, err)
	}
}

func testResolutionNormalize(t *testing.T, target Target) {
	w := worker(t, target)

	tests := []struct {
		in   string
		want string
	}{
		{in: "a/./b/../c", want: "a/c"},
		{in: "a//b/", want: "a/b"},
		{in: "a/b/../../c", want: "c"},
	}
	for _, tt := range tests {
		got, err := w.Normalize(newPath(t, target.Root, tt.in))
		if err != nil {
			t.Errorf("Normalize(%s): got error %v, want nil", tt.in, err)
			continue
		}
		if want := join(target.Root, tt.want); got != want {
			t.Errorf("Normalize(%s): got %q, want %q", tt.in, got, want)
		}

		again, err := w.Normalize(newPath(t, got))
		if err != nil || again != got {
			t.Errorf("Normalize(%q): not idempotent, got %q, %v", got, again, err)
		}
	}
}

func testResolutionEqual(t *testing.T, target Target) {
	w := worker(t, target)

	if !w.EqualPaths(newPath(t, target.Root, "x/y"), newPath(t, target.Root, "x/z/../y")) {
		t.Errorf("EqualPaths: paths differing only in dot segments should be equal")
	}
	if w.EqualPaths(newPath(t, target.Root, "x"), newPath(t, target.Root, "y")) {
		t.Errorf("EqualPaths: distinct paths should differ")
	}
}
