package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/homier/chainmap"
	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"
)

// snapshotEntry is one element of a snapshot file. Snapshots are JSON arrays
// in insertion order; comments and trailing commas are accepted on load.
type snapshotEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SaveSnapshot atomically writes m to path in insertion order and returns the
// number of entries written.
func SaveSnapshot(path string, m *chainmap.Map[string, string]) (int, error) {
	entries := make([]snapshotEntry, 0, m.Len())
	for k, v := range m.All() {
		entries = append(entries, snapshotEntry{Key: k, Value: v})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("%w %s: %w", errSnapshotWrite, path, err)
	}

	data = append(data, '\n')

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return 0, fmt.Errorf("%w %s: %w", errSnapshotWrite, path, err)
	}

	return len(entries), nil
}

// LoadSnapshot reads path and sets every entry on m in file order. Keys
// already in m keep their position and take the snapshot's value.
func LoadSnapshot(path string, m *chainmap.Map[string, string]) (int, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is intentionally user-controlled
	if err != nil {
		return 0, fmt.Errorf("%w %s: %w", errSnapshotRead, path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return 0, fmt.Errorf("%w %s: %w", errSnapshotInvalid, path, err)
	}

	var entries []snapshotEntry
	if err := json.Unmarshal(standardized, &entries); err != nil {
		return 0, fmt.Errorf("%w %s: %w", errSnapshotInvalid, path, err)
	}

	for _, e := range entries {
		if err := m.Set(e.Key, e.Value); err != nil {
			return 0, err
		}
	}

	return len(entries), nil
}
