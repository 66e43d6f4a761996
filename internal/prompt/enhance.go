// Package prompt turns raw voice transcripts into image-generation prompts,
// deterministically via Enhance and through AI backends via Rewriter.
package prompt

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// photographyKeywords mark a prompt as already styled for product shots.
var photographyKeywords = []string{
	"professional",
	"high quality",
	"studio lighting",
	"clean background",
	"product photography",
	"commercial",
	"advertising",
}

const qualifierSuffix = ", professional product photography, studio lighting, clean background"

// Enhance rewrites a transcript into an image-generation prompt. It appends
// the product-photography qualifier unless a styling keyword is already
// present, uppercases the first rune (later casing is left alone), and
// guarantees terminal punctuation. Empty input stays empty. Running Enhance
// on its own output changes nothing.
func Enhance(text string) string {
	if text == "" {
		return ""
	}

	enhanced := text

	lower := strings.ToLower(enhanced)
	hasKeyword := false
	for _, kw := range photographyKeywords {
		if strings.Contains(lower, kw) {
			hasKeyword = true
			break
		}
	}
	if !hasKeyword {
		enhanced += qualifierSuffix
	}

	r, size := utf8.DecodeRuneInString(enhanced)
	if r != utf8.RuneError {
		enhanced = string(unicode.ToUpper(r)) + enhanced[size:]
	}

	if !strings.HasSuffix(enhanced, ".") && !strings.HasSuffix(enhanced, "!") && !strings.HasSuffix(enhanced, "?") {
		enhanced += "."
	}

	return enhanced
}
