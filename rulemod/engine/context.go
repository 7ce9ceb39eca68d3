package engine

import (
	"context"
	"log/slog"

	"github.com/remora-mod/remora/reddit"
)

// Per-event working state, built up as the pipeline progresses. Constructed
// fresh for each inbound comment and discarded when processing ends.
type EventContext struct {
	Ctx context.Context
	// slog handle with event-specific fields pre-populated. Expected to never be nil.
	Logger *slog.Logger
	// settings snapshot for this event
	Settings Settings
	// canonical subreddit display name
	Subreddit string

	// live fetches, not the (possibly stale) event payload
	Comment *reddit.Comment
	Post    *reddit.Post

	// triggering user
	Username string
}

// Extra per-step log lines, gated on the moderator-controlled verbose-logging
// setting rather than the process log level: mods toggle this without a
// redeploy when debugging why a trigger didn't fire.
func (c *EventContext) Verbose(msg string, args ...any) {
	if c.Settings.VerboseLogging {
		c.Logger.Info(msg, args...)
	}
}
