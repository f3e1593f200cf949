package vfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/vfs/core"
)

func TestMatchInDirectory_MergesMounts(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T, w *Worker)
		pattern  string
		filter   core.TypeFilter
		expected []string
	}{
		{
			name:     "mount added",
			pattern:  "*",
			expected: []string{"/d/f", "/d/v"},
		},
		{
			name: "physical directory under the mount is not duplicated",
			setup: func(t *testing.T, w *Worker) {
				require.NoError(t, w.CreateDirectory(newPath(t, "/d/v")))
			},
			pattern:  "*",
			expected: []string{"/d/f", "/d/v"},
		},
		{
			name:     "pattern excludes mount",
			pattern:  "f*",
			expected: []string{"/d/f"},
		},
		{
			name:     "directories only",
			pattern:  "*",
			filter:   core.TypeDir,
			expected: []string{"/d/v"},
		},
		{
			name: "files only hides a shadowed file",
			setup: func(t *testing.T, w *Worker) {
				writeFile(t, w, "/d/v", "shadowed")
			},
			pattern:  "*",
			filter:   core.TypeFile,
			expected: []string{"/d/f"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys, _ := newTestFS(t, nil)
			w := newWorker(t, fsys)
			require.NoError(t, w.CreateDirectory(newPath(t, "/d")))
			writeFile(t, w, "/d/f", "x")
			if tt.setup != nil {
				tt.setup(t, w)
			}
			_, err := fsys.Register(memMount(t, "/d/v"))
			require.NoError(t, err)

			got, err := w.MatchInDirectory(newPath(t, "/d"), tt.pattern, tt.filter)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.expected, got)
		})
	}
}

func TestMatchInDirectory_InsideMount(t *testing.T) {
	fsys, _ := newTestFS(t, nil)
	w := newWorker(t, fsys)
	_, err := fsys.Register(memMount(t, "/d/v"))
	require.NoError(t, err)
	_, err = fsys.Register(memMount(t, "/d/v/inner"))
	require.NoError(t, err)

	writeFile(t, w, "/d/v/a.txt", "a")
	writeFile(t, w, "/d/v/b.log", "b")

	got, err := w.MatchInDirectory(newPath(t, "/d/v"), "*.txt", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"/d/v/a.txt"}, got)

	got, err = w.MatchInDirectory(newPath(t, "/d/v"), "*", 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/d/v/a.txt", "/d/v/b.log", "/d/v/inner"}, got)
}

func TestMatchInDirectory_BadPattern(t *testing.T) {
	fsys, _ := newTestFS(t, nil)
	w := newWorker(t, fsys)

	_, err := w.MatchInDirectory(newPath(t, "/"), "[", 0)
	assert.Error(t, err)
}
