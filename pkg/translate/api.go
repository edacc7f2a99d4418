package translate

import (
	"net/url"
	"strings"

	"github.com/andesco/wikiproxy/pkg/region"
)

const apiPrefix = "/api/"

// IsAPIPath reports whether path is API-shaped, i.e. starts with "/api/".
func IsAPIPath(path string) bool {
	return len(path) >= len(apiPrefix) && strings.EqualFold(path[:len(apiPrefix)], apiPrefix)
}

// AdjustAPIPath recovers the region of an API request from its Referer.
// Same-origin API calls such as /api/rest_v1/page/summary/X carry no region
// of their own; when the referer page does, its "/<region>[/m]" prefix is
// prepended to the request path. Only site-matrix hosts take a prefix;
// without a usable referer the request URL is returned as is. The input is
// not modified.
func (t *Translator) AdjustAPIPath(reqURL *url.URL, referer string) *url.URL {
	out := cloneURL(reqURL)
	if !IsAPIPath(reqURL.Path) || referer == "" {
		return out
	}
	if _, cat := t.ProxyProject(reqURL.Host); cat != region.SiteMatrix {
		return out
	}

	ref, err := url.Parse(referer)
	if err != nil || ref.Host == "" {
		return out
	}

	up := t.ToUpstream(ref)
	if !up.HasRegion() {
		return out
	}
	setEscapedPath(out, up.Prefix()+out.EscapedPath())
	return out
}
