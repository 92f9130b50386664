package modifier

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Built-in modifier names.
const (
	Whitespace  = "whitespace"
	Punctuation = "punctuation"
	Article     = "article"
	Ordinal     = "ordinal"
	Possessive  = "possessive"
	Capitalize  = "capitalize"
	Title       = "title"
)

var (
	spaceRun       = regexp.MustCompile(`[ \t]{2,}`)
	spaceBeforeP   = regexp.MustCompile(`[ \t]+([,.;:!?])`)
	commaRun       = regexp.MustCompile(`,{2,}`)
	dotRun         = regexp.MustCompile(`\.{2,}`)
	articleWord    = regexp.MustCompile(`\b(an|a|An|A|AN)([ \t]+)([A-Za-z0-9][\w-]*)`)
	ordinalNumber  = regexp.MustCompile(`\b(\d+)(st|nd|rd|th)\b`)
	doublePossess  = regexp.MustCompile(`\b(\w*[sS])'s\b`)
	sentenceBreaks = regexp.MustCompile(`[.!?]`)
)

// NewWhitespace collapses runs of spaces and tabs and trims the ends.
func NewWhitespace() Modifier {
	return New(Whitespace, 100,
		func(s string) bool { return spaceRun.MatchString(s) || strings.TrimSpace(s) != s },
		func(s string) string { return strings.TrimSpace(spaceRun.ReplaceAllString(s, " ")) },
	)
}

// NewPunctuation removes spaces before punctuation and collapses repeated
// commas and periods. Exactly three periods are kept as an ellipsis.
func NewPunctuation() Modifier {
	return New(Punctuation, 90,
		func(s string) bool {
			return spaceBeforeP.MatchString(s) || commaRun.MatchString(s) || dotRun.MatchString(s)
		},
		func(s string) string {
			s = spaceBeforeP.ReplaceAllString(s, "$1")
			s = commaRun.ReplaceAllString(s, ",")
			return dotRun.ReplaceAllStringFunc(s, func(run string) string {
				if len(run) == 2 {
					return "."
				}
				return "..."
			})
		},
	)
}

// NewArticle picks "a" or "an" from the sound of the following word, keeping
// the article's case.
func NewArticle() Modifier {
	return New(Article, 80,
		articleWord.MatchString,
		func(s string) string {
			return articleWord.ReplaceAllStringFunc(s, func(m string) string {
				parts := articleWord.FindStringSubmatch(m)
				return fixArticle(parts[1], startsWithVowelSound(parts[3])) + parts[2] + parts[3]
			})
		},
	)
}

// consonant-sounding words that start with a vowel letter, and the reverse.
var (
	consonantVowelPrefixes = []string{"uni", "use", "usa", "usu", "uti", "ure", "euro", "eu", "one", "once", "ewe"}
	silentHPrefixes        = []string{"hour", "honest", "honor", "honour", "heir"}
)

func startsWithVowelSound(word string) bool {
	w := strings.ToLower(word)
	for _, p := range silentHPrefixes {
		if strings.HasPrefix(w, p) {
			return true
		}
	}
	for _, p := range consonantVowelPrefixes {
		if strings.HasPrefix(w, p) {
			return false
		}
	}
	switch {
	case strings.ContainsRune("aeiou8", rune(w[0])):
		return true
	case w == "11", w == "18":
		return true
	}
	return false
}

func fixArticle(article string, vowel bool) string {
	switch {
	case article == "AN" && !vowel:
		return "A"
	case article == "AN":
		return "AN"
	case article[0] == 'A' && vowel:
		return "An"
	case article[0] == 'A':
		return "A"
	case vowel:
		return "an"
	default:
		return "a"
	}
}

// NewOrdinal corrects ordinal suffixes: 1st, 2nd, 3rd, 4th, 11th, 12th, 13th, 21st.
func NewOrdinal() Modifier {
	return New(Ordinal, 70,
		ordinalNumber.MatchString,
		func(s string) string {
			return ordinalNumber.ReplaceAllStringFunc(s, func(m string) string {
				digits := ordinalNumber.FindStringSubmatch(m)[1]
				return digits + ordinalSuffix(digits)
			})
		},
	)
}

func ordinalSuffix(digits string) string {
	tail := digits
	if len(tail) > 2 {
		tail = tail[len(tail)-2:]
	}
	n, err := strconv.Atoi(tail)
	if err != nil {
		return "th"
	}
	if n%100 >= 11 && n%100 <= 13 {
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}

// NewPossessive rewrites s's to s'.
func NewPossessive() Modifier {
	return New(Possessive, 60,
		doublePossess.MatchString,
		func(s string) string { return doublePossess.ReplaceAllString(s, "$1'") },
	)
}

// NewCapitalize upper-cases the first letter of the text and of every sentence.
func NewCapitalize() Modifier {
	return New(Capitalize, 50,
		func(s string) bool { return s != "" },
		capitalizeSentences,
	)
}

func capitalizeSentences(s string) string {
	upper := cases.Upper(language.Und)
	var b strings.Builder
	b.Grow(len(s))

	start := true
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		chunk := s[:size]
		s = s[size:]

		switch {
		case start && unicode.IsLetter(r):
			b.WriteString(upper.String(chunk))
			start = false
			continue
		case start && unicode.IsDigit(r):
			start = false
		case sentenceBreaks.MatchString(chunk):
			start = true
		}
		b.WriteString(chunk)
	}
	return b.String()
}

// NewTitle title-cases every word, leaving the rest of each word alone so
// acronyms survive.
func NewTitle() Modifier {
	return New(Title, 40,
		func(s string) bool { return s != "" },
		func(s string) string { return cases.Title(language.English, cases.NoLower).String(s) },
	)
}
