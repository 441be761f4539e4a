package browser

import (
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

//go:embed openers.toml
var openersTOML []byte

// OpenerDefinition describes how to hand a URL to an external program.
type OpenerDefinition struct {
	Description string   `toml:"description"`
	Platforms   []string `toml:"platforms"`
	// Command replaces the opener name as the executable, for shell
	// builtins such as Windows "start".
	Command     string   `toml:"command,omitempty"`
	Args        []string `toml:"args,omitempty"`
	ArgsDarwin  []string `toml:"args_darwin,omitempty"`
	ArgsLinux   []string `toml:"args_linux,omitempty"`
	ArgsWindows []string `toml:"args_windows,omitempty"`
}

type openersConfig struct {
	Openers map[string]OpenerDefinition `toml:"openers"`
}

// Registry holds the known opener definitions.
type Registry struct {
	openers map[string]OpenerDefinition
}

// NewRegistry parses the embedded definitions and merges user overrides.
func NewRegistry() (*Registry, error) {
	r, err := parseRegistry(openersTOML)
	if err != nil {
		return nil, fmt.Errorf("parsing openers.toml: %w", err)
	}
	r.loadUserConfig()
	return r, nil
}

func parseRegistry(data []byte) (*Registry, error) {
	var cfg openersConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.Openers == nil {
		cfg.Openers = make(map[string]OpenerDefinition)
	}
	return &Registry{openers: cfg.Openers}, nil
}

func (r *Registry) loadUserConfig() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	data, err := os.ReadFile(filepath.Join(home, ".config", "hnsearch", "openers.toml"))
	if err != nil {
		return
	}
	user, err := parseRegistry(data)
	if err != nil {
		return
	}
	for name, def := range user.openers {
		r.openers[name] = def
	}
}

// Lookup returns the definition for name.
func (r *Registry) Lookup(name string) (OpenerDefinition, bool) {
	def, ok := r.openers[name]
	return def, ok
}

// Command builds the invocation of opener name for url on goos. Openers
// without a definition are run as "<name> <url>".
func (r *Registry) Command(name, goos, url string) (*exec.Cmd, error) {
	def, ok := r.openers[name]
	if !ok {
		return exec.Command(name, url), nil
	}

	supported := false
	for _, p := range def.Platforms {
		if p == goos {
			supported = true
			break
		}
	}
	if !supported {
		return nil, fmt.Errorf("%s not supported on %s", name, goos)
	}

	bin := name
	if def.Command != "" {
		bin = def.Command
	}
	args := append(append([]string{}, def.argsFor(goos)...), url)
	return exec.Command(bin, args...), nil
}

func (d OpenerDefinition) argsFor(goos string) []string {
	switch goos {
	case "darwin":
		if len(d.ArgsDarwin) > 0 {
			return d.ArgsDarwin
		}
	case "linux":
		if len(d.ArgsLinux) > 0 {
			return d.ArgsLinux
		}
	case "windows":
		if len(d.ArgsWindows) > 0 {
			return d.ArgsWindows
		}
	}
	return d.Args
}
