// Package pinyin compares typed pinyin answers against expected readings,
// treating tone-number input ("ni3") and tone-mark input ("nǐ") as equivalent.
package pinyin

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Combining diacritics for the four tones, as they appear after NFD
// decomposition of tone-marked vowels.
var toneMarks = map[rune]rune{
	'̄': '1', // macron, first tone
	'́': '2', // acute, second tone
	'̌': '3', // caron, third tone
	'̆': '3', // breve, commonly typed in place of the caron
	'̀': '4', // grave, fourth tone
}

// Comparator implements the answer-comparison collaborator contract.
type Comparator struct{}

// New returns a pinyin comparator.
func New() *Comparator {
	return &Comparator{}
}

// Compare reports whether the user's answer matches the expected reading
// once both are normalized. It never errors; unrecognized input simply
// fails to match.
func (c *Comparator) Compare(userAnswer, correctAnswer string) bool {
	u := Normalize(userAnswer)
	return u != "" && u == Normalize(correctAnswer)
}

// Normalize converts pinyin to a canonical lowercase tone-number form:
// tone marks become digits placed after the letters of their token, ü and
// the u: digraph become v, neutral-tone digits (0, 5) are dropped, and
// punctuation besides token-separating whitespace and apostrophes is
// ignored. Within a token, tone digits are compared by order rather than
// by exact position, so "nǐhǎo" and "ni3hao3" normalize identically.
func Normalize(s string) string {
	decomposed := norm.NFD.String(strings.ToLower(strings.TrimSpace(s)))

	var tokens []string
	var letters, tones []rune

	flush := func() {
		if len(letters) > 0 || len(tones) > 0 {
			tokens = append(tokens, string(letters)+string(tones))
			letters, tones = letters[:0], tones[:0]
		}
	}

	runes := []rune(decomposed)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case unicode.IsSpace(r) || r == '\'' || r == '-':
			flush()
		case r == ':':
			// "u:" is the ASCII spelling of ü.
			if n := len(letters); n > 0 && letters[n-1] == 'u' {
				letters[n-1] = 'v'
			}
		case r == '̈': // diaeresis: ü decomposes to u + this mark
			if n := len(letters); n > 0 && letters[n-1] == 'u' {
				letters[n-1] = 'v'
			}
		case r >= '1' && r <= '4':
			tones = append(tones, r)
		case r == '0' || r == '5':
			// Neutral tone carries no mark; both spellings drop it.
		case unicode.Is(unicode.Mn, r):
			if tone, ok := toneMarks[r]; ok {
				tones = append(tones, tone)
			}
		case unicode.IsLetter(r):
			letters = append(letters, r)
		}
	}
	flush()

	return strings.Join(tokens, " ")
}
