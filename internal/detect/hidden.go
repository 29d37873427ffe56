package detect

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// hiddenChar is one smuggling indicator found in a command string.
type hiddenChar struct {
	Category  string
	Codepoint string
	// Blocking indicators hide or reorder what the user sees; homoglyph
	// lookalikes are advisory only.
	Blocking bool
}

// scanHiddenChars inspects a command for Unicode smuggling: zero-width
// and bidi characters that make displayed text differ from executed
// text, tag characters, raw control bytes, and Cyrillic/Greek
// lookalikes of Latin letters.
func scanHiddenChars(input string) []hiddenChar {
	var found []hiddenChar

	i := 0
	for i < len(input) {
		r, size := utf8.DecodeRuneInString(input[i:])
		if r == utf8.RuneError && size == 1 {
			found = append(found, hiddenChar{
				Category:  "invalid-utf8",
				Codepoint: fmt.Sprintf("0x%02X", input[i]),
				Blocking:  true,
			})
			i++
			continue
		}
		if hc, ok := classifyHidden(r); ok {
			found = append(found, hc)
		}
		i += size
	}
	return found
}

func classifyHidden(r rune) (hiddenChar, bool) {
	cp := fmt.Sprintf("U+%04X", r)
	switch {
	case isZeroWidth(r):
		return hiddenChar{Category: "zero-width", Codepoint: cp, Blocking: true}, true
	case isBidiControl(r):
		return hiddenChar{Category: "bidi-override", Codepoint: cp, Blocking: true}, true
	case r >= 0xE0001 && r <= 0xE007F:
		return hiddenChar{Category: "tag-char", Codepoint: cp, Blocking: true}, true
	case isUnsafeControl(r):
		return hiddenChar{Category: "control-char", Codepoint: cp, Blocking: true}, true
	case isLatinLookalike(r):
		return hiddenChar{Category: "homoglyph", Codepoint: cp, Blocking: false}, true
	}
	return hiddenChar{}, false
}

func isZeroWidth(r rune) bool {
	switch r {
	case '\u200B', // ZERO WIDTH SPACE
		'\u200C', // ZERO WIDTH NON-JOINER
		'\u200D', // ZERO WIDTH JOINER
		'\uFEFF', // ZERO WIDTH NO-BREAK SPACE (BOM)
		'\u2060', // WORD JOINER
		'\u180E', // MONGOLIAN VOWEL SEPARATOR
		'\u200E', // LEFT-TO-RIGHT MARK
		'\u200F': // RIGHT-TO-LEFT MARK
		return true
	}
	return false
}

func isBidiControl(r rune) bool {
	switch r {
	case '\u202A', // LEFT-TO-RIGHT EMBEDDING
		'\u202B', // RIGHT-TO-LEFT EMBEDDING
		'\u202C', // POP DIRECTIONAL FORMATTING
		'\u202D', // LEFT-TO-RIGHT OVERRIDE
		'\u202E', // RIGHT-TO-LEFT OVERRIDE
		'\u2066', // LEFT-TO-RIGHT ISOLATE
		'\u2067', // RIGHT-TO-LEFT ISOLATE
		'\u2068', // FIRST STRONG ISOLATE
		'\u2069': // POP DIRECTIONAL ISOLATE
		return true
	}
	return false
}

func isUnsafeControl(r rune) bool {
	if r == '\t' || r == '\n' || r == '\r' {
		return false
	}
	if r <= 0x1F || r == 0x7F {
		return true
	}
	return r >= 0x80 && r <= 0x9F
}

// isLatinLookalike reports Cyrillic or Greek letters visually
// confusable with Latin, the shapes IDN homograph attacks use.
func isLatinLookalike(r rune) bool {
	if unicode.Is(unicode.Cyrillic, r) {
		_, ok := cyrillicLookalikes[r]
		return ok
	}
	if unicode.Is(unicode.Greek, r) {
		_, ok := greekLookalikes[r]
		return ok
	}
	return false
}

var cyrillicLookalikes = map[rune]rune{
	'а': 'a', 'А': 'A', 'В': 'B', 'с': 'c', 'С': 'C',
	'е': 'e', 'Е': 'E', 'Н': 'H', 'і': 'i', 'І': 'I',
	'К': 'K', 'М': 'M', 'о': 'o', 'О': 'O', 'р': 'p',
	'Р': 'P', 'Т': 'T', 'х': 'x', 'Х': 'X', 'у': 'y',
	'У': 'Y',
}

var greekLookalikes = map[rune]rune{
	'Α': 'A', 'Β': 'B', 'Ε': 'E', 'Η': 'H', 'Ι': 'I',
	'Κ': 'K', 'Μ': 'M', 'Ν': 'N', 'Ο': 'O', 'ο': 'o',
	'Ρ': 'P', 'Τ': 'T', 'Χ': 'X', 'Υ': 'Y', 'Ζ': 'Z',
}
