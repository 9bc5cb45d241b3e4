package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// textOnly drops every tag; it only decides whether content is blank.
var textOnly = bluemonday.StrictPolicy()

// HasVisibleText reports whether input still carries text once all markup is removed.
// Content itself is stored as sent; the API never renders it as HTML.
func HasVisibleText(input string) bool {
	return strings.TrimSpace(textOnly.Sanitize(input)) != ""
}
