// Package translate maps URLs between the proxy form, where region and
// mobile variants live in the path, and the upstream form, where they live
// in the host:
//
//	https://wikipedia.example.com/zh/m/wiki/Cat <-> https://zh.m.wikipedia.org/wiki/Cat
//	https://wikipedia.example.com/www/          <-> https://www.wikipedia.org/
//	https://upload.wikimedia.example.com/x.png  <-> https://upload.wikimedia.org/x.png
//
// All functions are pure and never fail: a URL that matches no known pattern
// comes back as an identity passthrough.
package translate

import (
	"net/url"
	"strings"

	"github.com/andesco/wikiproxy/pkg/region"
)

// ExtendedURL is a translated URL together with the region and mobile
// variant that was moved between path and host. Mobile is only meaningful
// when Region is set.
type ExtendedURL struct {
	URL    *url.URL
	Region string
	Mobile bool
}

// HasRegion reports whether a region was matched.
func (e ExtendedURL) HasRegion() bool {
	return e.Region != ""
}

// Match returns the region marker as a tagged value.
func (e ExtendedURL) Match() Match {
	switch {
	case !e.HasRegion():
		return Match{}
	case e.Mobile:
		return Match{Kind: RegionMobile, Region: e.Region}
	default:
		return Match{Kind: RegionOnly, Region: e.Region}
	}
}

// Prefix returns "/<region>", "/<region>/m" or "".
func (e ExtendedURL) Prefix() string {
	return e.Match().Prefix()
}

// Translator translates URLs for one proxy domain.
type Translator struct {
	domain string
	suffix string
}

// New returns a Translator for proxyDomain, e.g. "example.com" or
// "localhost:8080".
func New(proxyDomain string) *Translator {
	domain := strings.ToLower(strings.TrimPrefix(proxyDomain, "."))
	return &Translator{
		domain: domain,
		suffix: "." + domain,
	}
}

// Domain returns the proxy domain.
func (t *Translator) Domain() string {
	return t.domain
}

// ProxyProject matches host against <project>.<proxyDomain> and returns the
// project part as written along with its category.
func (t *Translator) ProxyProject(host string) (string, region.Category) {
	name, ok := cutSuffixFold(host, t.suffix)
	if !ok || name == "" {
		return "", region.Unknown
	}
	return name, region.ProjectCategory(name)
}

// ToUpstream converts a proxy-form URL to its upstream form. The input is
// not modified.
func (t *Translator) ToUpstream(u *url.URL) ExtendedURL {
	out := cloneURL(u)
	project, cat := t.ProxyProject(u.Host)
	if cat == region.Unknown {
		return ExtendedURL{URL: out}
	}

	host := project + upstreamTLD
	out.Host = host
	if cat != region.SiteMatrix {
		return ExtendedURL{URL: out}
	}

	path := out.EscapedPath()
	if rest, ok := cutWWWPath(path); ok {
		out.Host = wwwLabel + "." + host
		setEscapedPath(out, rest)
		return ExtendedURL{URL: out}
	}

	m, rest := ParseRegionPath(path)
	switch m.Kind {
	case RegionMobile:
		out.Host = m.Region + "." + mobileLabel + "." + host
	case RegionOnly:
		out.Host = m.Region + "." + host
	default:
		return ExtendedURL{URL: out}
	}
	setEscapedPath(out, rest)
	return ExtendedURL{URL: out, Region: m.Region, Mobile: m.Mobile()}
}

// ToProxied converts an upstream-form URL to its proxy form. URLs on hosts
// that are not known projects are returned unchanged. The input is not
// modified.
func (t *Translator) ToProxied(u *url.URL) ExtendedURL {
	out := cloneURL(u)
	h, ok := ParseUpstreamHost(u.Host)
	if !ok {
		return ExtendedURL{URL: out}
	}

	out.Host = h.Project + "." + t.domain
	path := out.EscapedPath()
	if path == "" {
		path = "/"
	}

	if h.WWW {
		setEscapedPath(out, "/"+wwwLabel+path)
		return ExtendedURL{URL: out}
	}

	prefix := strings.TrimRight(h.Prefix(), "/")
	setEscapedPath(out, prefix+path)
	return ExtendedURL{URL: out, Region: h.Region, Mobile: h.Mobile()}
}

func cloneURL(u *url.URL) *url.URL {
	out := *u
	if u.User != nil {
		user := *u.User
		out.User = &user
	}
	return &out
}

// setEscapedPath sets both Path and RawPath from an escaped path so that
// encodings such as %2F survive translation.
func setEscapedPath(u *url.URL, escaped string) {
	unescaped, err := url.PathUnescape(escaped)
	if err != nil {
		u.Path = escaped
		u.RawPath = ""
		return
	}
	u.Path = unescaped
	u.RawPath = escaped
}
