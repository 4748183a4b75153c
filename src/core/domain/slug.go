package domain

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Characters at index i of specialChars are transliterated to index i of normalChars.
const (
	specialChars = "àáäâãåèéëêìíïîòóöôùúüûñçßÿœæŕśńṕẃǵǹḿǘẍźḧ·/_,:;"
	normalChars  = "aaaaaaeeeeiiiioooouuuuncsyoarsnpwgnmuxzh------"
)

var transliteration = func() map[rune]rune {
	special := []rune(specialChars)
	normal := []rune(normalChars)
	if len(special) != len(normal) {
		panic("slug: transliteration tables differ in length")
	}
	m := make(map[rune]rune, len(special))
	for i, r := range special {
		m[r] = normal[i]
	}
	return m
}()

// reservedSlugWord matches names that would otherwise collide with the /jokes/new route.
var reservedSlugWord = regexp.MustCompile(`(?i)new`)

// Slugify maps an arbitrary title to a lower-case, hyphen separated, URL-safe identifier.
// It never fails: input made only of stripped characters yields "".
func Slugify(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	for _, r := range strings.ToLower(title) {
		if isSpace(r) {
			b.WriteByte('-')
			continue
		}
		if n, ok := transliteration[r]; ok {
			r = n
		}
		switch {
		case r == '&':
			b.WriteString("-and-")
		case r == '-' || isWordRune(r):
			b.WriteRune(r)
		}
	}

	return collapseHyphens(b.String())
}

// JokeSlug derives the base slug for a new joke name.
// Names that slugify to nothing (all punctuation, emoji) fall back to "joke".
func JokeSlug(name string) string {
	if reservedSlugWord.MatchString(name) {
		name += "-slug"
	}
	if slug := Slugify(name); slug != "" {
		return slug
	}
	return fallbackSlug
}

const fallbackSlug = "joke"

// SuffixSlug appends "-n" to slug.
func SuffixSlug(slug string, n int64) string {
	return fmt.Sprintf("%s-%d", slug, n)
}

// isSpace is Unicode White_Space minus NEL, plus the byte order mark.
func isSpace(r rune) bool {
	switch r {
	case '\ufeff':
		return true
	case '\u0085':
		return false
	}
	return unicode.IsSpace(r)
}

func isWordRune(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}

// collapseHyphens squeezes hyphen runs and trims them from both ends.
func collapseHyphens(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevHyphen := true
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '-' {
			if prevHyphen {
				continue
			}
			prevHyphen = true
		} else {
			prevHyphen = false
		}
		b.WriteByte(c)
	}
	return strings.TrimRight(b.String(), "-")
}
