package engine

import (
	"context"
	"strconv"
	"strings"

	"github.com/remora-mod/remora/rulemod/settingstore"
)

// Setting keys, as stored in the settings store.
const (
	SettingEnabled         = "superuser-removal-enabled"
	SettingPointsThreshold = "superuser-points-threshold"
	SettingAllowList       = "superuser-allow-list"
	SettingCommentPrefix   = "superuser-comment-prefix"
	SettingRulePrefix      = "superuser-rule-prefix"
	SettingSkipApproved    = "superuser-skip-approved"
	SettingVerboseLogging  = "superuser-verbose-logging"
)

const (
	DefaultCommentPrefix   = "!rule"
	DefaultRulePrefix      = "R"
	DefaultPointsThreshold = 100
)

// Typed snapshot of the moderator-controlled feature settings. Loaded fresh
// for every event (never cached): moderators change these between invocations
// and expect the next trigger to honor the change.
type Settings struct {
	Enabled bool
	// minimum flair score to self-qualify; 0 disables the score path entirely
	PointsThreshold int64
	// lowercased usernames exempt from the score check
	AllowList map[string]bool
	// trigger prefix for removal comments, eg "!rule"
	CommentPrefix string
	// prefix of rule titles in the catalog, eg "R" for "R2 - Off topic"
	RulePrefix string
	// leave posts already approved by a moderator alone
	SkipApprovedPosts bool
	VerboseLogging    bool
}

func LoadSettings(ctx context.Context, store settingstore.SettingsStore) (Settings, error) {
	vals, err := store.GetAll(ctx)
	if err != nil {
		return Settings{}, err
	}
	return parseSettings(vals), nil
}

func parseSettings(vals map[string]string) Settings {
	return Settings{
		Enabled:           parseBoolSetting(vals[SettingEnabled], true),
		PointsThreshold:   parseThreshold(vals[SettingPointsThreshold]),
		AllowList:         parseAllowList(vals[SettingAllowList]),
		CommentPrefix:     stringSetting(vals[SettingCommentPrefix], DefaultCommentPrefix),
		RulePrefix:        stringSetting(vals[SettingRulePrefix], DefaultRulePrefix),
		SkipApprovedPosts: parseBoolSetting(vals[SettingSkipApproved], false),
		VerboseLogging:    parseBoolSetting(vals[SettingVerboseLogging], true),
	}
}

func stringSetting(raw, dflt string) string {
	if raw == "" {
		return dflt
	}
	return raw
}

func parseBoolSetting(raw string, dflt bool) bool {
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return dflt
	}
	return b
}

// The threshold is stored as free text. Absent means the stock default; text
// that doesn't parse as a number behaves like 0 (score path disabled), same as
// the moderator typing "0".
func parseThreshold(raw string) int64 {
	if raw == "" {
		return DefaultPointsThreshold
	}
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Comma-separated usernames, trimmed and lowercased. Empty entries dropped.
func parseAllowList(raw string) map[string]bool {
	out := make(map[string]bool)
	for _, name := range strings.Split(raw, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			out[name] = true
		}
	}
	return out
}
