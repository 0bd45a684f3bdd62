// Package snapshot is a reference implementation of the sync layer's
// record-assembly contract (§6): it stands in for the out-of-scope
// firehose/repository-fetch layer by reading each party's records from a
// local directory tree and assembling the
// (tasks, ops, owner_trusts, approved_uris) cut the Materializer needs.
package snapshot

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PartySource describes where one party's repository lives on disk, the
// local analogue of a real AT Protocol repository fetch target.
type PartySource struct {
	Directory string `yaml:"directory"`
}

// Registry maps party identifiers to their local snapshot directory,
// loaded from a repos.yaml file.
type Registry struct {
	Parties map[string]PartySource `yaml:"parties"`
}

// LoadRegistry reads repos.yaml from path. A missing file yields an empty,
// non-nil Registry rather than an error, matching the teacher's
// LoadSourcesConfig tolerance for a not-yet-initialized project.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path supplied by the caller's own config
	if err != nil {
		if os.IsNotExist(err) {
			return &Registry{Parties: make(map[string]PartySource)}, nil
		}
		return nil, fmt.Errorf("snapshot: reading %s: %w", path, err)
	}

	reg := &Registry{Parties: make(map[string]PartySource)}
	if err := yaml.Unmarshal(data, reg); err != nil {
		return nil, fmt.Errorf("snapshot: parsing %s: %w", path, err)
	}
	return reg, nil
}

// SaveRegistry writes reg to path as YAML.
func SaveRegistry(path string, reg *Registry) error {
	data, err := yaml.Marshal(reg)
	if err != nil {
		return fmt.Errorf("snapshot: marshaling registry: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // snapshot registries are not secrets
		return fmt.Errorf("snapshot: writing %s: %w", path, err)
	}
	return nil
}

// Directories returns the configured party directories as a party-to-
// directory map; like any Go map, it has no defined iteration order.
func (r *Registry) Directories() map[string]string {
	out := make(map[string]string, len(r.Parties))
	for party, src := range r.Parties {
		out[party] = src.Directory
	}
	return out
}
