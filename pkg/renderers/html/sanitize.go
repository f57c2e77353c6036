package html

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	markupPolicyOnce sync.Once
	markupPolicy     *bluemonday.Policy
)

// sanitizeMarkup strips scripts, event handlers and unsafe URLs from
// author-supplied markup and help text while keeping basic formatting.
func sanitizeMarkup(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(markupSanitizer().Sanitize(trimmed))
}

func markupSanitizer() *bluemonday.Policy {
	markupPolicyOnce.Do(func() {
		policy := bluemonday.NewPolicy()
		policy.AllowStandardURLs()
		policy.AllowElements(
			"p", "br", "span", "div",
			"strong", "b", "em", "i", "small",
			"ul", "ol", "li",
			"h2", "h3", "h4",
			"code", "pre", "blockquote",
		)
		policy.AllowAttrs("href", "title").OnElements("a")
		policy.AllowAttrs("class").Globally()
		policy.RequireNoFollowOnLinks(true)
		markupPolicy = policy
	})
	return markupPolicy
}
