package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/remora-mod/remora/rulemod/catalog"
)

func TestDispositionFlairPrecedence(t *testing.T) {
	assert := assert.New(t)

	// template id suppresses any CSS class value
	d := DispositionFromReason(&catalog.RemovalReason{
		Title:           "R2 - Off topic",
		FlairText:       "Off-topic",
		FlairCSSClass:   "offtopic",
		FlairTemplateID: "abc-123",
	})
	assert.Equal("Off-topic", d.FlairText)
	assert.Equal("", d.FlairCSSClass)
	assert.Equal("abc-123", d.FlairTemplateID)
	assert.True(d.HasFlair())

	// without a template id the CSS class survives
	d = DispositionFromReason(&catalog.RemovalReason{
		Title:         "R2 - Off topic",
		FlairCSSClass: "offtopic",
	})
	assert.Equal("offtopic", d.FlairCSSClass)
	assert.True(d.HasFlair())

	d = DispositionFromReason(&catalog.RemovalReason{Title: "R3 - No effort"})
	assert.False(d.HasFlair())
	assert.Equal("", d.ExplainText)
}

func TestDispositionExplainText(t *testing.T) {
	assert := assert.New(t)

	d := DispositionFromReason(&catalog.RemovalReason{
		Title: "R2 - Off topic",
		Text:  "Removed%2C%20off-topic.",
	})
	assert.Equal("Removed, off-topic.", d.ExplainText)

	// plain text passes through
	d = DispositionFromReason(&catalog.RemovalReason{Title: "R2", Text: "Removed, off-topic."})
	assert.Equal("Removed, off-topic.", d.ExplainText)

	// a stray percent sign is not valid encoding; post as-is
	d = DispositionFromReason(&catalog.RemovalReason{Title: "R2", Text: "100% off topic"})
	assert.Equal("100% off topic", d.ExplainText)
}
