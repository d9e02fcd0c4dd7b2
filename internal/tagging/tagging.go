// Package tagging finds @handle mentions in a message body and resolves them
// to members of the conversation the message was sent to.
package tagging

import (
	"slices"
	"strings"
	"unicode"

	"github.com/lalith-99/beans/internal/directory"
	"github.com/lalith-99/beans/internal/models"
)

// ExcerptLength is how many characters of the body a tag notification shows.
const ExcerptLength = 20

// Candidates returns the raw token after every '@' in body, in order of
// appearance. A token runs from just after the '@' to the first whitespace
// (or the end of the body), so "hi @b@c" yields "b@c" and then "c".
func Candidates(body string) []string {
	var out []string
	for i, r := range body {
		if r != '@' {
			continue
		}
		rest := body[i+1:]
		if end := strings.IndexFunc(rest, unicode.IsSpace); end >= 0 {
			rest = rest[:end]
		}
		out = append(out, rest)
	}
	return out
}

// Tag resolves the mentions in body against the members of ref.
//
// Unknown handles and users who are not members are skipped silently. Each
// user appears at most once, at the position of their first valid mention.
func Tag(dir *directory.Directory, ref models.ContainerRef, body string) []int64 {
	c, err := dir.Container(ref)
	if err != nil {
		return nil
	}

	var tagged []int64
	for _, handle := range Candidates(body) {
		u := dir.UserByHandle(handle)
		if u == nil {
			continue
		}
		if !slices.Contains(c.MemberIDs, u.ID) || slices.Contains(tagged, u.ID) {
			continue
		}
		tagged = append(tagged, u.ID)
	}
	return tagged
}

// Excerpt truncates body to ExcerptLength characters with no ellipsis.
func Excerpt(body string) string {
	runes := []rune(body)
	if len(runes) <= ExcerptLength {
		return body
	}
	return string(runes[:ExcerptLength])
}
