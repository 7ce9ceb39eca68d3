package engine

import (
	"net/url"

	"github.com/remora-mod/remora/rulemod/catalog"
)

// The side effects a resolved removal reason prescribes, beyond removing the
// post itself. Only non-empty fields get applied.
type Disposition struct {
	FlairText       string
	FlairCSSClass   string
	FlairTemplateID string
	// explanatory comment to sticky and lock on the removed post
	ExplainText string
}

// Computes the disposition for a removal reason. A template-based flair and a
// CSS-class flair can't both be set; when the reason carries a template id,
// any CSS class value is discarded.
func DispositionFromReason(reason *catalog.RemovalReason) Disposition {
	d := Disposition{
		FlairText:       reason.FlairText,
		FlairCSSClass:   reason.FlairCSSClass,
		FlairTemplateID: reason.FlairTemplateID,
		ExplainText:     decodeExplainText(reason.Text),
	}
	if d.FlairTemplateID != "" {
		d.FlairCSSClass = ""
	}
	return d
}

func (d Disposition) HasFlair() bool {
	return d.FlairText != "" || d.FlairCSSClass != "" || d.FlairTemplateID != ""
}

// Toolbox stores reason text percent-encoded; decode before posting. Text that
// isn't valid percent-encoding is posted as-is.
func decodeExplainText(raw string) string {
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}
