// Package markdown renders the small Markdown dialect used for post bodies
// into escaped, template-safe HTML.
package markdown

import (
	"html"
	"html/template"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	reHeading     = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	reOrderedItem = regexp.MustCompile(`^\d+[.)]\s+`)
	reRule        = regexp.MustCompile(`^(-{3,}|\*{3,}|_{3,})\s*$`)

	reImage       = regexp.MustCompile(`!\[([^\]]*)\]\(([^)\s]+)\)`)
	reLink        = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)\)`)
	reCode        = regexp.MustCompile("`([^`]+)`")
	reStrong      = regexp.MustCompile(`\*\*(.+?)\*\*|__(.+?)__`)
	reEmphasis    = regexp.MustCompile(`\*([^*]+)\*|\b_([^_]+)_\b`)
	rePlaceholder = regexp.MustCompile("\x00(\\d+)\x00")
)

type block int

const (
	blockNone block = iota
	blockPara
	blockList
	blockOrdered
	blockQuote
	blockCode
)

var closers = map[block]string{
	blockPara:    "</p>",
	blockList:    "</ul>",
	blockOrdered: "</ol>",
	blockQuote:   "</blockquote>",
	blockCode:    "</code></pre>",
}

type renderer struct {
	out  strings.Builder
	open block
}

func (r *renderer) enter(b block, tag string) bool {
	if r.open == b {
		return false
	}
	r.close()
	r.out.WriteString(tag)
	r.open = b
	return true
}

func (r *renderer) close() {
	r.out.WriteString(closers[r.open])
	r.open = blockNone
}

// HTML renders md and marks the result safe for html/template. All text
// and attribute values in the output are escaped.
func HTML(md string) template.HTML {
	return template.HTML(Render(md))
}

// Render converts md to an HTML string.
func Render(md string) string {
	var r renderer
	for _, line := range strings.Split(md, "\n") {
		line = strings.TrimRight(line, "\r")

		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if r.open == blockCode {
				r.close()
				continue
			}
			lang := strings.TrimSpace(strings.TrimSpace(line)[3:])
			tag := "<pre><code>"
			if lang != "" {
				tag = `<pre><code class="language-` + html.EscapeString(lang) + `">`
			}
			r.close()
			r.out.WriteString(tag)
			r.open = blockCode
			continue
		}
		if r.open == blockCode {
			r.out.WriteString(html.EscapeString(line))
			r.out.WriteByte('\n')
			continue
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			r.close()
		case reRule.MatchString(trimmed):
			r.close()
			r.out.WriteString("<hr/>")
		case reHeading.MatchString(trimmed):
			m := reHeading.FindStringSubmatch(trimmed)
			level := strconv.Itoa(len(m[1]))
			r.close()
			r.out.WriteString("<h" + level + ">" + Inline(m[2]) + "</h" + level + ">")
		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
			r.enter(blockList, "<ul>")
			r.out.WriteString("<li>" + Inline(trimmed[2:]) + "</li>")
		case reOrderedItem.MatchString(trimmed):
			r.enter(blockOrdered, "<ol>")
			r.out.WriteString("<li>" + Inline(reOrderedItem.ReplaceAllString(trimmed, "")) + "</li>")
		case strings.HasPrefix(trimmed, ">"):
			if !r.enter(blockQuote, "<blockquote>") {
				r.out.WriteByte(' ')
			}
			r.out.WriteString(Inline(strings.TrimSpace(trimmed[1:])))
		default:
			if !r.enter(blockPara, "<p>") {
				r.out.WriteString("<br/>")
			}
			r.out.WriteString(Inline(trimmed))
		}
	}
	r.close()
	return r.out.String()
}

// Inline escapes s and applies images, links, code spans, strong and
// emphasis. Markup produced by earlier passes is parked behind
// placeholders so later passes cannot rewrite it.
func Inline(s string) string {
	var parked []string
	park := func(frag string) string {
		parked = append(parked, frag)
		return "\x00" + strconv.Itoa(len(parked)-1) + "\x00"
	}

	s = reCode.ReplaceAllStringFunc(s, func(m string) string {
		return park("<code>" + html.EscapeString(reCode.FindStringSubmatch(m)[1]) + "</code>")
	})
	s = reImage.ReplaceAllStringFunc(s, func(m string) string {
		sm := reImage.FindStringSubmatch(m)
		src := SafeURL(sm[2])
		if src == "" {
			return park(html.EscapeString(sm[1]))
		}
		return park(`<img src="` + src + `" alt="` + html.EscapeString(sm[1]) + `" loading="lazy"/>`)
	})
	s = reLink.ReplaceAllStringFunc(s, func(m string) string {
		sm := reLink.FindStringSubmatch(m)
		href := SafeURL(sm[2])
		if href == "" {
			return sm[1]
		}
		return park(`<a href="` + href + `">`) + sm[1] + park("</a>")
	})

	s = html.EscapeString(s)
	s = reStrong.ReplaceAllStringFunc(s, func(m string) string {
		sm := reStrong.FindStringSubmatch(m)
		return "<strong>" + sm[1] + sm[2] + "</strong>"
	})
	s = reEmphasis.ReplaceAllStringFunc(s, func(m string) string {
		sm := reEmphasis.FindStringSubmatch(m)
		return "<em>" + sm[1] + sm[2] + "</em>"
	})

	return rePlaceholder.ReplaceAllStringFunc(s, func(m string) string {
		i, _ := strconv.Atoi(rePlaceholder.FindStringSubmatch(m)[1])
		return parked[i]
	})
}

// SafeURL returns raw escaped for an attribute, or "" when its scheme is
// not one a post may link to.
func SafeURL(raw string) string {
	val := strings.TrimSpace(raw)
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	u, err := url.Parse(val)
	if err != nil {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "mailto":
		return html.EscapeString(val)
	}
	return ""
}
