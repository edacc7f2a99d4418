package translate

import (
	"strings"

	"github.com/andesco/wikiproxy/pkg/region"
)

const (
	mobileLabel = "m"
	wwwLabel    = "www"
	upstreamTLD = ".org"
)

// MatchKind tags the outcome of matching a region (and mobile) marker.
type MatchKind int

const (
	NoMatch MatchKind = iota
	RegionOnly
	RegionMobile
)

func (k MatchKind) String() string {
	switch k {
	case RegionOnly:
		return "region"
	case RegionMobile:
		return "region+mobile"
	default:
		return "none"
	}
}

// Match is a region marker found in a path or host. Region is the canonical
// lowercase code and is empty for NoMatch.
type Match struct {
	Kind   MatchKind
	Region string
}

// Mobile reports whether the match carried the mobile marker.
func (m Match) Mobile() bool {
	return m.Kind == RegionMobile
}

// Prefix returns the proxy-form path prefix for the match: "/zh", "/zh/m"
// or "" for NoMatch.
func (m Match) Prefix() string {
	switch m.Kind {
	case RegionOnly:
		return "/" + m.Region
	case RegionMobile:
		return "/" + m.Region + "/" + mobileLabel
	default:
		return ""
	}
}

// ParseRegionPath matches a leading "/<region>/" segment, optionally followed
// by "m/", and returns the match and the remaining path. The remainder always
// keeps its leading slash. Without a match the path is returned unchanged.
//
//	/zh/m/wiki/Cat   -> RegionMobile(zh), /wiki/Cat
//	/en/wiki/Cat     -> RegionOnly(en),   /wiki/Cat
//	/static/x.png    -> NoMatch,          /static/x.png
func ParseRegionPath(path string) (Match, string) {
	if !strings.HasPrefix(path, "/") {
		return Match{}, path
	}

	seg, after, ok := strings.Cut(path[1:], "/")
	if !ok {
		return Match{}, path
	}
	code, ok := region.Lookup(seg)
	if !ok {
		return Match{}, path
	}

	if next, rest, ok := strings.Cut(after, "/"); ok && strings.EqualFold(next, mobileLabel) {
		return Match{Kind: RegionMobile, Region: code}, "/" + rest
	}
	return Match{Kind: RegionOnly, Region: code}, "/" + after
}

// UpstreamHost is the result of matching an upstream (*.org) host name.
type UpstreamHost struct {
	Match
	// Project is the project part of the host as written, e.g. "wikipedia"
	// or "upload.wikimedia".
	Project  string
	Category region.Category
	// WWW is set for the root portal host www.<project>.org.
	WWW bool
}

// ParseUpstreamHost matches host against the known upstream project hosts:
//
//	www.<project>.org
//	<project>.org
//	<region>.<project>.org
//	<region>.m.<project>.org
//
// Region prefixes are only accepted in front of site-matrix projects; shared
// projects match by exact name. Any port is ignored.
func ParseUpstreamHost(host string) (UpstreamHost, bool) {
	name, ok := cutSuffixFold(stripPort(host), upstreamTLD)
	if !ok || name == "" {
		return UpstreamHost{}, false
	}

	if cat := region.ProjectCategory(name); cat != region.Unknown {
		return UpstreamHost{Project: name, Category: cat}, true
	}

	labels := strings.Split(name, ".")
	if len(labels) < 2 {
		return UpstreamHost{}, false
	}

	rest := strings.Join(labels[1:], ".")
	if strings.EqualFold(labels[0], wwwLabel) && region.ProjectCategory(rest) == region.SiteMatrix {
		return UpstreamHost{Project: rest, Category: region.SiteMatrix, WWW: true}, true
	}

	code, ok := region.Lookup(labels[0])
	if !ok {
		return UpstreamHost{}, false
	}
	if region.ProjectCategory(rest) == region.SiteMatrix {
		return UpstreamHost{
			Match:    Match{Kind: RegionOnly, Region: code},
			Project:  rest,
			Category: region.SiteMatrix,
		}, true
	}

	if len(labels) < 3 || !strings.EqualFold(labels[1], mobileLabel) {
		return UpstreamHost{}, false
	}
	rest = strings.Join(labels[2:], ".")
	if region.ProjectCategory(rest) == region.SiteMatrix {
		return UpstreamHost{
			Match:    Match{Kind: RegionMobile, Region: code},
			Project:  rest,
			Category: region.SiteMatrix,
		}, true
	}
	return UpstreamHost{}, false
}

// IsProjectHost reports whether host is any known upstream project host.
func IsProjectHost(host string) bool {
	_, ok := ParseUpstreamHost(host)
	return ok
}

// cutWWWPath strips a leading "/www" segment. "/www" alone yields "/".
func cutWWWPath(path string) (string, bool) {
	if len(path) < 4 || !strings.EqualFold(path[:4], "/"+wwwLabel) {
		return path, false
	}
	rest := path[4:]
	switch {
	case rest == "":
		return "/", true
	case rest[0] == '/':
		return rest, true
	default:
		return path, false
	}
}

func cutSuffixFold(s, suffix string) (string, bool) {
	if len(s) < len(suffix) || !strings.EqualFold(s[len(s)-len(suffix):], suffix) {
		return s, false
	}
	return s[:len(s)-len(suffix)], true
}

func stripPort(host string) string {
	if i := strings.LastIndexByte(host, ':'); i >= 0 && !strings.Contains(host[i:], "]") {
		return host[:i]
	}
	return host
}
