// Package clone opens a repository by URL or local path, hiding the
// distinction between an already-local working tree and a remote that needs
// staging first. Adapted from internal/git/repository.go's Client.Clone, but
// trimmed to what CommitWalker and DiffDriver need: a *git.Repository handle,
// not a Repository abstraction with commit-info lookups.
package clone

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"github.com/google/uuid"
	"github.com/kevinburke/ssh_config"
	"github.com/spf13/afero"
)

// DefaultTimeout bounds a single clone attempt.
const DefaultTimeout = 5 * time.Minute

// ErrUnauthorizedHost is returned when a remote's host isn't in the
// configured allow-list.
var ErrUnauthorizedHost = errors.New("clone: host not in allow-list")

// Config controls how remote sources are staged.
type Config struct {
	// DataDir is the root under which remote clones are staged, each in a
	// fresh DataDir/git/<uuid> directory that stays on disk after Open
	// returns; it is removed only when the clone fails. This package does
	// not reuse clones across runs; internal/cache caches walk progress, not
	// checkouts.
	DataDir string
	// AllowedHosts restricts which remote hosts may be cloned from. A nil
	// or empty slice allows any host.
	AllowedHosts []string
	Timeout      time.Duration
	fs           afero.Fs
}

// DefaultConfig returns a Config rooted at dataDir with no host restriction.
func DefaultConfig(dataDir string) Config {
	return Config{DataDir: dataDir, Timeout: DefaultTimeout, fs: afero.NewOsFs()}
}

// Opener stages and opens repositories for the engine to walk.
type Opener struct {
	cfg Config
}

// New builds an Opener. cfg.fs defaults to the OS filesystem when unset.
func New(cfg Config) *Opener {
	if cfg.fs == nil {
		cfg.fs = afero.NewOsFs()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Opener{cfg: cfg}
}

// Open resolves source to a *git.Repository. A source that already names a
// local path (absolute, relative, or "file://") is opened in place via
// PlainOpen. Anything else is treated as a remote clone URL: validated
// against the host allow-list, then cloned into a freshly named staging
// directory under cfg.DataDir/git/.
func (o *Opener) Open(ctx context.Context, source string) (*git.Repository, error) {
	if isLocalPath(source) {
		path := strings.TrimPrefix(source, "file://")
		repo, err := git.PlainOpen(path)
		if err != nil {
			return nil, fmt.Errorf("clone: open local repository %s: %w", path, err)
		}
		return repo, nil
	}

	if err := o.ValidateHost(source); err != nil {
		return nil, err
	}

	staging := filepath.Join(o.cfg.DataDir, "git", uuid.NewString())
	if err := o.cfg.fs.MkdirAll(filepath.Dir(staging), 0o755); err != nil {
		return nil, fmt.Errorf("clone: create staging parent for %s: %w", source, err)
	}

	cloneCtx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	repo, err := git.PlainCloneContext(cloneCtx, staging, false, &git.CloneOptions{
		URL:  source,
		Auth: resolveAuth(source),
	})
	if err != nil {
		_ = o.cfg.fs.RemoveAll(staging)
		return nil, fmt.Errorf("clone: clone %s: %w", source, err)
	}
	return repo, nil
}

// isLocalPath reports whether source names something on the local
// filesystem rather than a remote clone URL.
func isLocalPath(source string) bool {
	if strings.HasPrefix(source, "file://") {
		return true
	}
	if strings.Contains(source, "://") {
		return false
	}
	if strings.Contains(source, "@") && strings.Contains(source, ":") {
		return false // scp-like ssh form, e.g. git@github.com:user/repo.git
	}
	_, err := os.Stat(source)
	return err == nil
}

// resolveAuth returns an auth method for ssh:// and git@ remotes using
// whatever key the local ssh-agent already holds. HTTPS remotes and
// everything else are left to anonymous access: per Non-goals, this package
// does not implement a credential chain beyond host allow-listing and
// ssh_config alias resolution.
func resolveAuth(source string) transport.AuthMethod {
	if sshHost(source) == "" && !strings.HasPrefix(source, "ssh://") {
		return nil
	}
	auth, err := ssh.NewSSHAgentAuth("git")
	if err != nil {
		return nil
	}
	return auth
}

// ValidateHost enforces cfg.AllowedHosts, resolving ssh_config host aliases
// to their real Hostname first so an allow-list entry matches the alias's
// target rather than the alias itself.
func (o *Opener) ValidateHost(source string) error {
	if len(o.cfg.AllowedHosts) == 0 {
		return nil
	}

	host := hostOf(source)
	if host == "" {
		return fmt.Errorf("clone: could not determine host for %s", source)
	}
	if resolved := ssh_config.Get(host, "Hostname"); resolved != "" {
		host = resolved
	}

	for _, allowed := range o.cfg.AllowedHosts {
		if strings.EqualFold(allowed, host) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnauthorizedHost, host)
}

// hostOf extracts the host from either a URL-form or scp-like ssh remote.
func hostOf(source string) string {
	if host := sshHost(source); host != "" {
		return host
	}
	parsed, err := url.Parse(source)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}

// sshHost extracts the hostname from an scp-like "git@host:path" remote, or
// returns "" if source isn't in that form.
func sshHost(source string) string {
	if !strings.HasPrefix(source, "git@") {
		return ""
	}
	rest := strings.TrimPrefix(source, "git@")
	if i := strings.Index(rest, ":"); i != -1 {
		return rest[:i]
	}
	return ""
}
