package views

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"html/template"
	"net/url"
	"strings"
)

// Gravatar returns the avatar URL for email: 100px, "retro" fallback, G rated.
func Gravatar(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	q := url.Values{}
	q.Set("s", "100")
	q.Set("d", "retro")
	q.Set("r", "g")
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?" + q.Encode()
}

// HumanSize formats a byte count for the image library.
func HumanSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.0f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}

var funcs = template.FuncMap{
	"gravatar":  Gravatar,
	"humanSize": HumanSize,
	"fieldError": func(errs FormErrors, field string) string {
		return errs[field]
	},
}
