// Component for fetching the feature settings moderators control.
//
// Settings are a flat bag of string values, fetched fresh for every event:
// moderators may change them between invocations, so the engine never caches
// them. Parsing into a typed struct (with defaults) happens in the engine.
//
// Includes an interface and implementations backed by redis (a hash the mod
// tooling writes to), a JSON file re-read per fetch, and in-process memory.
package settingstore

import (
	"context"
)

type SettingsStore interface {
	GetAll(ctx context.Context) (map[string]string, error)
}
