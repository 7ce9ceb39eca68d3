package engine

import (
	"strings"
)

// Why a removal trigger was (or wasn't) allowed.
type AuthzReason string

const (
	AuthzModerator   AuthzReason = "moderator"
	AuthzAllowListed AuthzReason = "allow-listed"
	AuthzScoreMet    AuthzReason = "score"
	AuthzDenied      AuthzReason = "denied"
)

func (r AuthzReason) Authorized() bool {
	return r != AuthzDenied
}

// Decides whether a user may trigger rule-based removal. Checks short-circuit
// in a fixed precedence order: moderator status, then the explicit allow-list,
// then the flair score threshold. The moderator and score lookups are platform
// API calls, passed as callbacks so they only happen when an earlier path
// hasn't already decided.
//
// A threshold of 0 disables the score path outright: a non-moderator off the
// allow-list is denied no matter their score. That is the configured way to
// restrict the feature to the explicit lists, not an "always pass".
func evaluateAuthorization(
	username string,
	moderatorCheck func(username string) (bool, error),
	allowList map[string]bool,
	pointsThreshold int64,
	score func(username string) (int64, error),
) (AuthzReason, error) {
	isMod, err := moderatorCheck(username)
	if err != nil {
		return AuthzDenied, err
	}
	if isMod {
		return AuthzModerator, nil
	}
	if allowList[strings.ToLower(username)] {
		return AuthzAllowListed, nil
	}
	if pointsThreshold > 0 {
		points, err := score(username)
		if err != nil {
			return AuthzDenied, err
		}
		if points >= pointsThreshold {
			return AuthzScoreMet, nil
		}
	}
	return AuthzDenied, nil
}
