package collect

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	// markupPattern matches the inline tags Scopus puts in abstracts. Any other
	// "<" is text, as in "0<x<1".
	markupPattern    = regexp.MustCompile(`(?i)</?(inf|sup|sub|i|b)>`)
	copyrightPattern = regexp.MustCompile(`© [0-9]\w* The Author(s)*\.( )*`)
	publisherPattern = regexp.MustCompile(`Published by Elsevier Ltd\.`)
	wrapPatterns     = []*regexp.Regexp{
		regexp.MustCompile(`\n {24}`),
		regexp.MustCompile(`\n {21}`),
		regexp.MustCompile(`\n {15}`),
	}
)

// CleanText removes Scopus formatting from abstract text: inline markup such
// as <inf> and <sup> (keeping their text), the open access copyright line,
// the publisher notice, hard wraps and the leading "Abstract " label.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	cleaned := stripMarkup(text)
	cleaned = copyrightPattern.ReplaceAllString(cleaned, "")
	cleaned = publisherPattern.ReplaceAllString(cleaned, "")
	for _, re := range wrapPatterns {
		cleaned = re.ReplaceAllString(cleaned, "")
	}
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	return strings.Replace(cleaned, "Abstract ", "", 1)
}

func stripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	return html.UnescapeString(markupPattern.ReplaceAllString(s, ""))
}
