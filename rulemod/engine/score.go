package engine

import (
	"strconv"
	"strings"
)

// Derives a user's reputation score from their flair text. Flair is free text
// set by humans and other bots, so anything that isn't a plain number counts
// as zero; this must never fail the authorization path. The "-" sentinel is
// what the point-tracking bot writes for users with no points yet.
func ScoreFromFlair(flairText string) int64 {
	flairText = strings.TrimSpace(flairText)
	if flairText == "" || flairText == "-" {
		return 0
	}
	score, err := strconv.ParseInt(flairText, 10, 64)
	if err != nil || score < 0 {
		return 0
	}
	return score
}
