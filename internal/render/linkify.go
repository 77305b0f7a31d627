package render

import (
	"html"
	"html/template"
	"regexp"
	"strings"
	"time"
)

const cardTimeLayout = "2006/01/02 15:04"

// linkPattern matches, in one pass, a URL, a #hashtag or an @mention. Tags and
// mentions must start the text or follow whitespace.
var linkPattern = regexp.MustCompile(`(https?://[^\s<]+)|(^|\s)#([\p{L}\p{N}_]+)|(^|\s)@([A-Za-z0-9_]+)`)

// Linkify escapes text and turns URLs, hashtags and mentions into links.
func Linkify(text string) template.HTML {
	escaped := html.EscapeString(text)
	var b strings.Builder
	last := 0
	for _, m := range linkPattern.FindAllStringSubmatchIndex(escaped, -1) {
		b.WriteString(escaped[last:m[0]])
		switch {
		case m[2] >= 0:
			u := escaped[m[2]:m[3]]
			b.WriteString(anchor(u, u))
		case m[6] >= 0:
			b.WriteString(escaped[m[4]:m[5]])
			tag := escaped[m[6]:m[7]]
			b.WriteString(anchor("https://x.com/hashtag/"+tag, "#"+tag))
		case m[10] >= 0:
			b.WriteString(escaped[m[8]:m[9]])
			user := escaped[m[10]:m[11]]
			b.WriteString(anchor("https://x.com/"+user, "@"+user))
		}
		last = m[1]
	}
	b.WriteString(escaped[last:])
	return template.HTML(b.String())
}

func anchor(href, label string) string {
	return `<a class="tweet-link" href="` + href + `" target="_blank" rel="noreferrer">` + label + `</a>`
}

// FormatTime renders an RFC 3339 timestamp as local wall-clock time. Values
// that do not parse are returned unchanged.
func FormatTime(createdAt string, loc *time.Location) string {
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return createdAt
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(cardTimeLayout)
}
