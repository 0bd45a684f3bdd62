package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/disnet/skyboard/internal/types"
)

// appendRecord appends one JSON-encoded record as a line to the named
// collection file in party's registered directory, creating the directory
// and file on first write. This is the write-side counterpart to
// internal/snapshot's JSONL readers: skyboard's own repository is just
// another party directory in the same registry.
func appendRecord(a *app, party types.Party, filename string, record any) error {
	dir, ok := a.loader.PartyDirectory(string(party))
	if !ok {
		return fmt.Errorf("skyboard: %s is not a registered party in repos.yaml", party)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("skyboard: creating %s: %w", dir, err)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("skyboard: encoding record: %w", err)
	}
	data = append(data, '\n')

	path := filepath.Join(dir, filename)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) // #nosec G304 - path from the local repos.yaml registry
	if err != nil {
		return fmt.Errorf("skyboard: opening %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("skyboard: writing %s: %w", path, err)
	}
	return nil
}

func appendOp(a *app, op types.Op) error {
	return appendRecord(a, a.viewer, "ops.jsonl", op)
}

func appendTrust(a *app, trust types.Trust) error {
	return appendRecord(a, a.viewer, "trusts.jsonl", trust)
}

func appendApproval(a *app, approval types.Approval) error {
	return appendRecord(a, a.viewer, "approvals.jsonl", approval)
}
