package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreFromFlair(t *testing.T) {
	assert := assert.New(t)

	// absent / empty / sentinel flairs
	assert.Equal(int64(0), ScoreFromFlair(""))
	assert.Equal(int64(0), ScoreFromFlair("-"))
	assert.Equal(int64(0), ScoreFromFlair("  "))

	// free text never produces a score (and never panics)
	assert.Equal(int64(0), ScoreFromFlair("Power Pivot Enthusiast"))
	assert.Equal(int64(0), ScoreFromFlair("100 points"))
	assert.Equal(int64(0), ScoreFromFlair("1,500"))
	assert.Equal(int64(0), ScoreFromFlair("-5"))

	// numeric flairs
	assert.Equal(int64(0), ScoreFromFlair("0"))
	assert.Equal(int64(1), ScoreFromFlair("1"))
	assert.Equal(int64(100), ScoreFromFlair("100"))
	assert.Equal(int64(2485), ScoreFromFlair(" 2485 "))
}
