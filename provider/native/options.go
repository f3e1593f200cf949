package native

import (
	"github.com/jmgilman/go/vfs/internal/pathutil"
)

// Syntax selects the path rules the provider classifies paths with.
type Syntax = pathutil.Syntax

// Supported path syntaxes.
const (
	SyntaxUnix    = pathutil.SyntaxUnix
	SyntaxWindows = pathutil.SyntaxWindows
)

// LoadFunc loads code from a host file and resolves symbols in it.
type LoadFunc func(hostPath string, symbols []string) (handles []any, unload func() error, err error)

// Option configures the native provider.
type Option func(*Provider)

// WithRoot serves the host directory dir as the VFS root. The current
// directory then starts at "/" and is tracked without touching the
// process working directory.
func WithRoot(dir string) Option {
	return func(p *Provider) {
		p.root = dir
		p.processChdir = false
		p.chdirSet = true
	}
}

// WithProcessChdir controls whether Chdir also changes the process working
// directory. It defaults to true unless WithRoot is used.
func WithProcessChdir(enabled bool) Option {
	return func(p *Provider) {
		p.processChdir = enabled
		p.chdirSet = true
	}
}

// WithLoader replaces the plugin.Open based loader.
func WithLoader(fn LoadFunc) Option {
	return func(p *Provider) {
		p.loader = fn
	}
}

// WithSyntax selects Unix or Windows path classification.
func WithSyntax(s Syntax) Option {
	return func(p *Provider) {
		p.syntax = s
	}
}

// WithTempDir sets the VFS directory that temporary files are created in.
func WithTempDir(dir string) Option {
	return func(p *Provider) {
		p.tempDir = dir
	}
}
