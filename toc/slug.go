package toc

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// letterFolds covers lowercase letters that NFD does not split into a base
// letter and a combining mark.
var letterFolds = strings.NewReplacer(
	"ß", "ss",
	"æ", "ae",
	"œ", "oe",
	"ø", "o",
	"ł", "l",
	"đ", "d",
	"ð", "d",
	"þ", "th",
	"ħ", "h",
	"ı", "i",
	"ŀ", "l",
)

// Slugify turns heading text into an anchor id:
//
//   - lowercase
//   - spell out letters that carry no combining mark ("ß" is "ss", "ø" is "o")
//   - decompose (NFD) and drop combining marks, so "Café" becomes "Cafe"
//   - collapse every run of characters outside [a-z0-9] into one "-"
//   - trim leading and trailing "-"
//
// Text with no ASCII letters or digits yields "".
func Slugify(s string) string {
	s = letterFolds.Replace(strings.ToLower(s))
	// Transformers carry state, so each call builds its own chain.
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	dash := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
			continue
		}
		dash = true
	}
	return b.String()
}

// uniqueID returns base, or base-1, base-2, ... whichever is first unused, and
// marks the result as used.
func uniqueID(base string, used map[string]struct{}) string {
	id := base
	for n := 1; ; n++ {
		if _, taken := used[id]; !taken {
			break
		}
		id = base + "-" + strconv.Itoa(n)
	}
	used[id] = struct{}{}
	return id
}
