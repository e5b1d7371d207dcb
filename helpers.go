package greensite

import (
	"math"
	"net/url"
	"path"
	"strconv"
	"strings"
	"unicode"

	"github.com/labstack/echo/v4"
	"golang.org/x/net/html"
)

// WordsPerMinute is the reading speed behind reading-time estimates.
const WordsPerMinute = 200

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// FilterEmpty removes empty/whitespace-only strings from a slice.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// PathEscape escapes a string for use in a URL path.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

// PostPath is the site path of the post with slug.
func PostPath(slug string) string {
	return "/post/" + PathEscape(slug) + "/"
}

// CategoryPath is the site path of the listing for tag.
func CategoryPath(tag string) string {
	return "/category/" + PathEscape(tag) + "/"
}

// WordCount counts the whitespace-separated words in the text of an HTML
// fragment. Tags separate words.
func WordCount(fragment string) int {
	z := html.NewTokenizer(strings.NewReader(fragment))
	n := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return n
		case html.TextToken:
			n += len(strings.Fields(string(z.Text())))
		}
	}
}

// ReadingTime is the estimated minutes needed to read an HTML post body,
// never less than one.
func ReadingTime(fragment string) int {
	return minutesFor(WordCount(fragment))
}

// EstimateReadTime is ReadingTime for plain text such as a post description.
func EstimateReadTime(text string) int {
	return minutesFor(len(strings.Fields(text)))
}

func minutesFor(words int) int {
	return max(1, int(math.Ceil(float64(words)/WordsPerMinute)))
}

// Initials returns up to two uppercase initials of name, for comment avatars.
func Initials(name string) string {
	var out []rune
	for _, w := range strings.Fields(name) {
		out = append(out, unicode.ToUpper([]rune(w)[0]))
		if len(out) == 2 {
			break
		}
	}
	return string(out)
}

// parsePage reads the page query parameter, defaulting to 1.
func parsePage(c echo.Context) int {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// isHTMX reports whether the request was issued by htmx.
func isHTMX(c echo.Context) bool {
	return c.Request().Header.Get("HX-Request") == "true"
}
