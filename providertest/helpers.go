package providertest

import (
	"io"
	"testing"

	"github.com/jmgilman/go/vfs"
)

// newPath creates a path below root that is closed when t ends.
func newPath(t *testing.T, root string, elems ...string) *vfs.Path {
	t.Helper()
	p := vfs.NewPath(join(root, elems...))
	t.Cleanup(p.Close)
	return p
}

// join appends elems to root with "/" without doubling separators.
func join(root string, elems ...string) string {
	out := root
	for _, e := range elems {
		if out == "" || out[len(out)-1] != '/' {
			out += "/"
		}
		out += e
	}
	return out
}

func worker(t *testing.T, target Target) *vfs.Worker {
	t.Helper()
	w := target.FS.NewWorker()
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func writeFile(t *testing.T, w *vfs.Worker, p *vfs.Path, content string) {
	t.Helper()
	f, err := w.OpenForWriting(p, 0o644)
	if err != nil {
		t.Fatalf("OpenForWriting(%s): setup failed: %v", p, err)
	}
	if _, err := io.WriteString(f, content); err != nil {
		_ = f.Close()
		t.Fatalf("Write(%s): setup failed: %v", p, err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close(%s): setup failed: %v", p, err)
	}
}

func readFile(t *testing.T, w *vfs.Worker, p *vfs.Path) (string, error) {
	t.Helper()
	f, err := w.OpenForReading(p)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	data, err := io.ReadAll(f)
	return string(data), err
}

func mkdir(t *testing.T, w *vfs.Worker, p *vfs.Path) {
	t.Helper()
	if err := w.CreateDirectory(p); err != nil {
		t.Fatalf("CreateDirectory(%s): setup failed: %v", p, err)
	}
}
