package export

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]+`)

// Slugify reduces a client name to an ASCII file-name token: decompose,
// drop combining marks and anything else outside ASCII, collapse runs of
// non-alphanumerics to a single underscore and trim the ends.
func Slugify(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	ascii, _, err := transform.String(t, s)
	if err != nil {
		ascii = s
	}
	ascii = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, ascii)
	return strings.Trim(nonAlnum.ReplaceAllString(ascii, "_"), "_")
}

// ymd strips the dashes from an ISO date for file naming.
func ymd(date string) string {
	return strings.ReplaceAll(date, "-", "")
}
