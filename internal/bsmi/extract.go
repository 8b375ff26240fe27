package bsmi

import (
	"regexp"
	"strings"
	"sync"

	"golang.org/x/net/html"
)

// tagPatterns caches compiled per-tag patterns. The bulk importer extracts
// the same nine tags from hundreds of thousands of rows, so recompiling per
// call would dominate the run.
var tagPatterns sync.Map // map[string]*regexp.Regexp

// ExtractTag returns the trimmed content of the first <tag>...</tag> pair
// in blob, or an empty string when the tag is absent. Absence is a valid
// outcome, not an error.
//
// The pattern anchors on the full enclosing tag markup, so a tag name that
// is a substring of another tag name (e.g. 主型式 inside 被授權主型式) never
// matches the wrong element.
func ExtractTag(blob, tag string) string {
	re := tagPattern(tag)
	m := re.FindStringSubmatch(blob)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// tagPattern returns the compiled pattern for a tag, caching it.
func tagPattern(tag string) *regexp.Regexp {
	if re, ok := tagPatterns.Load(tag); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`(?s)<` + regexp.QuoteMeta(tag) + `>(.*?)</` + regexp.QuoteMeta(tag) + `>`)
	tagPatterns.Store(tag, re)
	return re
}

// lineBreakPattern matches <br>, <br/> and <br /> in any case.
var lineBreakPattern = regexp.MustCompile(`(?i)<br\s*/?>`)

// splitLineBreaks splits an HTML fragment on <br> markers.
// The parts are not trimmed; callers decide how to normalize them.
func splitLineBreaks(fragment string) []string {
	return lineBreakPattern.Split(fragment, -1)
}

// stripTags removes all markup from an HTML fragment and returns the
// trimmed text content with entities decoded.
//
// We tokenize with golang.org/x/net/html rather than a tag-matching
// pattern so nested and malformed markup inside table cells cannot leak
// angle brackets into field values.
func stripTags(fragment string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(fragment))

	var sb strings.Builder
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(sb.String())
		case html.TextToken:
			sb.Write(tokenizer.Text())
		default:
			// Skip tags, comments, and doctypes.
		}
	}
}
