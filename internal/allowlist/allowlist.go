// Package allowlist provides the federated-identity allowlist policy
// from a JSON file, hot-reloaded on change. The file is either
// {"all": true} or {"ids": [...], "logins": [...]}.
package allowlist

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"git.sr.ht/~jakintosh/onlook/pkg/directory"
)

// Static is a fixed policy provider for configurations without a file.
type Static directory.Allowlist

func (s Static) Policy() directory.Allowlist {
	return directory.Allowlist(s)
}

// Provider serves the current policy from a watched file. A failed
// reload keeps the last good policy.
type Provider struct {
	path string

	mu     sync.RWMutex
	policy directory.Allowlist
}

// NewProvider loads path and starts watching its directory for changes.
// The initial load must succeed; later reload failures only log.
func NewProvider(path string) (*Provider, error) {
	p := &Provider{path: path}
	if err := p.load(); err != nil {
		return nil, err
	}

	err := watchFile(path, func() {
		if err := p.load(); err != nil {
			log.Printf("allowlist: reload failed, keeping previous policy: %v\n", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start allowlist watcher: %v", err)
	}

	return p, nil
}

// Policy returns the current allowlist.
func (p *Provider) Policy() directory.Allowlist {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.policy
}

type policyFile struct {
	All    bool     `json:"all"`
	IDs    []int64  `json:"ids"`
	Logins []string `json:"logins"`
}

func (p *Provider) load() error {
	file, err := os.ReadFile(p.path)
	if err != nil {
		return fmt.Errorf("failed to read allowlist '%s': %v", p.path, err)
	}

	parsed := policyFile{}
	if err := json.Unmarshal(file, &parsed); err != nil {
		return fmt.Errorf("failed to parse allowlist '%s': %v", p.path, err)
	}

	policy := directory.Allowlist{
		All:    parsed.All,
		IDs:    make(map[int64]struct{}, len(parsed.IDs)),
		Logins: make(map[string]struct{}, len(parsed.Logins)),
	}
	for _, stableID := range parsed.IDs {
		policy.IDs[stableID] = struct{}{}
	}
	for _, login := range parsed.Logins {
		policy.Logins[login] = struct{}{}
	}

	p.mu.Lock()
	p.policy = policy
	p.mu.Unlock()

	log.Printf("allowlist: loaded policy from %s\n", filepath.Base(p.path))
	return nil
}
