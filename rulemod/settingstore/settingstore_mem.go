package settingstore

import (
	"context"
	"encoding/json"
	"io"
	"os"
)

// TODO: this implementation isn't race-safe (yet)!
type MemSettingsStore struct {
	Values map[string]string
}

func NewMemSettingsStore() MemSettingsStore {
	return MemSettingsStore{
		Values: make(map[string]string),
	}
}

func (s MemSettingsStore) GetAll(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string, len(s.Values))
	for k, v := range s.Values {
		out[k] = v
	}
	return out, nil
}

func (s MemSettingsStore) LoadFromFileJSON(p string) error {

	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	raw, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	var vals map[string]string
	if err := json.Unmarshal(raw, &vals); err != nil {
		return err
	}

	for k, v := range vals {
		s.Values[k] = v
	}
	return nil
}
