// Package browser opens story links with the platform's URL handler.
package browser

import (
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"

	"github.com/pders01/hnsearch/internal/config"
	"github.com/pders01/hnsearch/internal/debuglog"
)

var (
	ErrNoURL             = errors.New("story has no link")
	ErrUnsupportedScheme = errors.New("only http and https links can be opened")
)

type Launcher struct {
	opener   string
	goos     string
	registry *Registry
}

func NewLauncher(cfg *config.Config) *Launcher {
	registry, err := NewRegistry()
	if err != nil {
		// Continue with bare "<opener> <url>" invocations
		debuglog.Warnf("loading opener definitions: %v", err)
		registry = &Registry{openers: make(map[string]OpenerDefinition)}
	}

	opener := ""
	if cfg != nil {
		opener = cfg.Browser.Opener
	}
	if opener == "" {
		opener = defaultOpener(runtime.GOOS)
	}

	return &Launcher{opener: opener, goos: runtime.GOOS, registry: registry}
}

// Opener returns the configured opener name.
func (l *Launcher) Opener() string { return l.opener }

// Command returns the process that would open rawURL, without starting it.
func (l *Launcher) Command(rawURL string) (*exec.Cmd, error) {
	if rawURL == "" {
		return nil, ErrNoURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing link: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	cmd, err := l.registry.Command(l.opener, l.goos, rawURL)
	if err != nil {
		debuglog.Debugf("opener fallback: %v", err)
		cmd = exec.Command(l.opener, rawURL)
	}
	return cmd, nil
}

// Open starts the opener detached and returns once it has launched.
func (l *Launcher) Open(rawURL string) error {
	cmd, err := l.Command(rawURL)
	if err != nil {
		return err
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", l.opener, err)
	}
	go func() {
		_ = cmd.Wait()
	}()

	debuglog.Infof("opened %s with %s", rawURL, l.opener)
	return nil
}

func defaultOpener(goos string) string {
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open"
	case "windows":
		return "start"
	default:
		return "open"
	}
}
