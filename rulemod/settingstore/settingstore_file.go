package settingstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// Re-reads the file on every fetch, so moderators can edit settings on disk
// without restarting the daemon.
type FileSettingsStore struct {
	Path string
}

var _ SettingsStore = (*FileSettingsStore)(nil)

func NewFileSettingsStore(p string) FileSettingsStore {
	return FileSettingsStore{Path: p}
}

func (s FileSettingsStore) GetAll(ctx context.Context) (map[string]string, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("reading settings file: %w", err)
	}
	var vals map[string]string
	if err := json.Unmarshal(raw, &vals); err != nil {
		return nil, fmt.Errorf("parsing settings file: %w", err)
	}
	return vals, nil
}
