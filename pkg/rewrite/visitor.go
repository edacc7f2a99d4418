// Package rewrite rewrites hyperlinks in HTML responses so that navigation
// stays inside the proxy domain.
//
// Only three attributes are touched: a[href], img[src] and script[src].
// Absolute links to known project hosts are converted to proxy form (when
// in-page rewriting is enabled) and root-relative links get the region
// prefix of the current page. Everything else is forwarded byte for byte.
package rewrite

import (
	"net/url"
	"strings"

	"github.com/andesco/wikiproxy/pkg/translate"
)

// Target is a monitored (tag, attribute) pair.
type Target struct {
	Tag  string
	Attr string
}

// Targets lists the monitored pairs.
var Targets = []Target{
	{Tag: "a", Attr: "href"},
	{Tag: "img", Attr: "src"},
	{Tag: "script", Attr: "src"},
}

// targetAttr maps a lowercase tag name to its monitored attribute.
var targetAttr = func() map[string]string {
	m := make(map[string]string, len(Targets))
	for _, t := range Targets {
		m[t.Tag] = t.Attr
	}
	return m
}()

func (t Target) monitored() bool {
	attr, ok := targetAttr[t.Tag]
	return ok && attr == t.Attr
}

// Rule identifies which rewrite, if any, was applied to an attribute.
type Rule int

const (
	Untouched Rule = iota
	// Absolute: a link to a project host converted to proxy form.
	Absolute
	// Relative: a root-relative link given the page's region prefix.
	Relative
)

func (r Rule) String() string {
	switch r {
	case Absolute:
		return "absolute"
	case Relative:
		return "relative"
	default:
		return "untouched"
	}
}

// Context is the read-only configuration the visitor needs for one
// response. Build it with NewContext; it is safe to share between
// goroutines.
type Context struct {
	translator    *translate.Translator
	scheme        string
	prefix        string
	rewriteInPage bool
}

// NewContext derives the visitor context from the upstream URL of the page
// being rewritten.
func NewContext(t *translate.Translator, page translate.ExtendedURL, rewriteInPage bool) *Context {
	scheme := "https"
	if page.URL != nil && page.URL.Scheme != "" {
		scheme = page.URL.Scheme
	}
	return &Context{
		translator:    t,
		scheme:        scheme,
		prefix:        page.Prefix(),
		rewriteInPage: rewriteInPage,
	}
}

// Prefix returns the region prefix applied to root-relative links.
func (c *Context) Prefix() string {
	return c.prefix
}

// Visit returns the rewritten value of one attribute. Values that do not
// parse, point elsewhere, or are relative without a leading slash come back
// unchanged with Untouched.
func Visit(c *Context, t Target, value string) (string, Rule) {
	if !t.monitored() {
		return value, Untouched
	}

	candidate := value
	if strings.HasPrefix(value, "//") {
		candidate = c.scheme + ":" + value
	}
	u, err := url.Parse(candidate)
	if err != nil {
		return value, Untouched
	}

	if u.IsAbs() && u.Host != "" && translate.IsProjectHost(u.Host) {
		if !c.rewriteInPage {
			return value, Untouched
		}
		return c.translator.ToProxied(u).URL.String(), Absolute
	}

	if c.prefix != "" && isRootRelative(value) {
		return c.prefix + value, Relative
	}
	return value, Untouched
}

// isRootRelative reports whether v starts with exactly one slash.
func isRootRelative(v string) bool {
	return strings.HasPrefix(v, "/") && !strings.HasPrefix(v, "//")
}
