// Package sanitize strips active content from email HTML before it is
// handed to a browser.
package sanitize

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var blockedElements = "script, iframe, object, embed, applet, frame, frameset, base, meta[http-equiv]"

var urlAttributes = map[string]bool{
	"href":       true,
	"src":        true,
	"action":     true,
	"formaction": true,
	"xlink:href": true,
	"background": true,
}

// HTML removes scripts, embedded frames, inline event handlers and
// javascript: URLs. Fragments stay fragments. Input that cannot be parsed
// is returned escaped as plain text.
func HTML(body string) string {
	if strings.TrimSpace(body) == "" {
		return body
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return escape(body)
	}

	doc.Find(blockedElements).Remove()

	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		node := s.Get(0)
		var drop []string
		for _, attr := range node.Attr {
			key := strings.ToLower(attr.Key)
			switch {
			case strings.HasPrefix(key, "on"):
				drop = append(drop, attr.Key)
			case urlAttributes[key] && isScriptURL(attr.Val):
				drop = append(drop, attr.Key)
			case key == "style" && strings.Contains(strings.ToLower(attr.Val), "expression("):
				drop = append(drop, attr.Key)
			}
		}
		for _, key := range drop {
			s.RemoveAttr(key)
		}
	})

	if containsDocumentTag(body) {
		out, err := doc.Html()
		if err != nil {
			return escape(body)
		}
		return out
	}

	head, _ := doc.Find("head").Html()
	inner, err := doc.Find("body").Html()
	if err != nil {
		return escape(body)
	}
	return head + inner
}

func isScriptURL(v string) bool {
	v = strings.ToLower(strings.Join(strings.Fields(v), ""))
	return strings.HasPrefix(v, "javascript:") || strings.HasPrefix(v, "vbscript:") ||
		(strings.HasPrefix(v, "data:") && !strings.HasPrefix(v, "data:image/"))
}

func containsDocumentTag(s string) bool {
	lower := strings.ToLower(s)
	return strings.Contains(lower, "<html") || strings.Contains(lower, "<body")
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&#34;", "'", "&#39;")
	return r.Replace(s)
}
