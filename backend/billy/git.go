package billy

import (
	"fmt"
	"io"
	"os"
	"path"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/jmgilman/go/vfs/core"
)

// NewGitSnapshot returns in-memory storage holding the tree of the git
// repository at repoDir as of revision. An empty revision means HEAD.
//
// The snapshot is detached from the repository: writes stay in memory and
// later commits are not seen. Git does not track empty directories, so
// none appear.
func NewGitSnapshot(repoDir, revision string) (*FS, error) {
	if revision == "" {
		revision = "HEAD"
	}

	repo, err := gogit.PlainOpen(repoDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository %s: %w", repoDir, err)
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(revision))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve revision %q: %w", revision, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("failed to read commit %s: %w", hash, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to read tree of %s: %w", hash, err)
	}

	bfs := memfs.New()
	err = tree.Files().ForEach(func(f *object.File) error {
		return writeGitFile(bfs, f)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to copy tree of %s: %w", hash, err)
	}
	return &FS{bfs: bfs, typ: core.FSTypeMemory}, nil
}

func writeGitFile(bfs billy.Filesystem, f *object.File) error {
	if dir := path.Dir(f.Name); dir != "." {
		if err := bfs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	if f.Mode == filemode.Symlink {
		target, err := f.Contents()
		if err != nil {
			return err
		}
		return bfs.Symlink(target, f.Name)
	}

	perm := os.FileMode(0o644)
	if f.Mode == filemode.Executable {
		perm = 0o755
	}

	r, err := f.Reader()
	if err != nil {
		return err
	}
	defer r.Close()

	w, err := bfs.OpenFile(f.Name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
