// Typed view of the removal reason catalog moderators maintain in the
// subreddit's "toolbox" wiki page.
//
// The wiki text is owned externally and can change between events, so callers
// fetch and parse it per event rather than caching parsed catalogs.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformedCatalog = errors.New("catalog document missing removalReasons.reasons")
	ErrRuleNotFound     = errors.New("no removal reason matched")
)

// One removal reason as stored in toolbox. Only Title is required; the rest
// control which disposition side effects get applied.
type RemovalReason struct {
	Title           string `json:"title"`
	Text            string `json:"text,omitempty"`
	FlairText       string `json:"flairText,omitempty"`
	FlairCSSClass   string `json:"flairCSS,omitempty"`
	FlairTemplateID string `json:"flairTemplateID,omitempty"`
}

// Ordered: resolution is first-match by catalog position.
type Catalog struct {
	Reasons []RemovalReason
}

type toolboxDoc struct {
	RemovalReasons *struct {
		Reasons []RemovalReason `json:"reasons"`
	} `json:"removalReasons"`
}

// Parses the raw toolbox wiki text. The document is moderator-edited JSON and
// can't be trusted to have the expected shape; anything without an ordered
// removalReasons.reasons list is rejected as malformed.
func Parse(raw string) (*Catalog, error) {
	var doc toolboxDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCatalog, err)
	}
	if doc.RemovalReasons == nil || doc.RemovalReasons.Reasons == nil {
		return nil, ErrMalformedCatalog
	}
	return &Catalog{Reasons: doc.RemovalReasons.Reasons}, nil
}

// Finds the removal reason for a short code, eg code "2" with title prefix "R"
// matches the first entry whose title starts with "R2". First match in catalog
// order wins, so "R10 - x" listed before "R1 - y" shadows it for code "1";
// moderators control shadowing by ordering the wiki list.
func (c *Catalog) Resolve(code, titlePrefix string) (*RemovalReason, error) {
	key := titlePrefix + code
	for i := range c.Reasons {
		if strings.HasPrefix(c.Reasons[i].Title, key) {
			return &c.Reasons[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrRuleNotFound, key)
}
