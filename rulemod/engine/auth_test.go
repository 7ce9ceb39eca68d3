package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func modCheck(mods ...string) func(string) (bool, error) {
	return func(username string) (bool, error) {
		for _, m := range mods {
			if m == username {
				return true, nil
			}
		}
		return false, nil
	}
}

func fixedScore(n int64) func(string) (int64, error) {
	return func(string) (int64, error) { return n, nil }
}

// the score callback is an API call; earlier paths must not trigger it
func forbiddenScore(t *testing.T) func(string) (int64, error) {
	return func(string) (int64, error) {
		t.Fatal("score lookup should have been short-circuited")
		return 0, nil
	}
}

func TestAuthorizationPrecedence(t *testing.T) {
	assert := assert.New(t)

	// a moderator with no points and no allow-list entry is authorized, and
	// the score path is never consulted
	reason, err := evaluateAuthorization("somemod", modCheck("somemod"), nil, 100, forbiddenScore(t))
	require.NoError(t, err)
	assert.Equal(AuthzModerator, reason)
	assert.True(reason.Authorized())

	// allow-list beats the score path too, case-insensitively
	allow := parseAllowList("TrustedUser, other")
	reason, err = evaluateAuthorization("trustedUser", modCheck(), allow, 100, forbiddenScore(t))
	require.NoError(t, err)
	assert.Equal(AuthzAllowListed, reason)

	// plain user qualifies on score alone
	reason, err = evaluateAuthorization("someuser", modCheck(), allow, 100, fixedScore(250))
	require.NoError(t, err)
	assert.Equal(AuthzScoreMet, reason)

	reason, err = evaluateAuthorization("someuser", modCheck(), allow, 100, fixedScore(99))
	require.NoError(t, err)
	assert.Equal(AuthzDenied, reason)
	assert.False(reason.Authorized())
}

func TestAuthorizationZeroThreshold(t *testing.T) {
	assert := assert.New(t)

	// threshold 0 disables the score path entirely: arbitrarily high score
	// does not help a user who is neither mod nor allow-listed
	reason, err := evaluateAuthorization("someuser", modCheck("somemod"), parseAllowList("trusted"), 0, forbiddenScore(t))
	require.NoError(t, err)
	assert.Equal(AuthzDenied, reason)

	// mods and allow-listed users are unaffected
	reason, err = evaluateAuthorization("somemod", modCheck("somemod"), nil, 0, forbiddenScore(t))
	require.NoError(t, err)
	assert.Equal(AuthzModerator, reason)

	reason, err = evaluateAuthorization("trusted", modCheck(), parseAllowList("trusted"), 0, forbiddenScore(t))
	require.NoError(t, err)
	assert.Equal(AuthzAllowListed, reason)
}
