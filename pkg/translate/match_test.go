package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andesco/wikiproxy/pkg/region"
)

func TestParseRegionPath(t *testing.T) {
	tests := []struct {
		path string
		kind MatchKind
		code string
		rest string
	}{
		{"/zh/m/wiki/Cat", RegionMobile, "zh", "/wiki/Cat"},
		{"/en/wiki/Cat", RegionOnly, "en", "/wiki/Cat"},
		{"/en/", RegionOnly, "en", "/"},
		{"/en/m/", RegionMobile, "en", "/"},
		{"/en/mm/x", RegionOnly, "en", "/mm/x"},
		{"/en", NoMatch, "", "/en"},
		{"/static/images/x.png", NoMatch, "", "/static/images/x.png"},
		{"/www/", NoMatch, "", "/www/"},
		{"wiki/Cat", NoMatch, "", "wiki/Cat"},
		{"", NoMatch, "", ""},
	}

	for _, tt := range tests {
		m, rest := ParseRegionPath(tt.path)
		assert.Equal(t, tt.kind, m.Kind, tt.path)
		assert.Equal(t, tt.code, m.Region, tt.path)
		assert.Equal(t, tt.rest, rest, tt.path)
	}
}

func TestParseUpstreamHost(t *testing.T) {
	tests := []struct {
		host    string
		ok      bool
		kind    MatchKind
		code    string
		project string
		cat     region.Category
		www     bool
	}{
		{"en.wikipedia.org", true, RegionOnly, "en", "wikipedia", region.SiteMatrix, false},
		{"zh.m.wikipedia.org", true, RegionMobile, "zh", "wikipedia", region.SiteMatrix, false},
		{"ZH.M.Wikipedia.ORG", true, RegionMobile, "zh", "Wikipedia", region.SiteMatrix, false},
		{"www.wikipedia.org", true, NoMatch, "", "wikipedia", region.SiteMatrix, true},
		{"wikipedia.org", true, NoMatch, "", "wikipedia", region.SiteMatrix, false},
		{"upload.wikimedia.org", true, NoMatch, "", "upload.wikimedia", region.Shared, false},
		{"wikimedia.org", true, NoMatch, "", "wikimedia", region.Shared, false},
		{"en.wikipedia.org:443", true, RegionOnly, "en", "wikipedia", region.SiteMatrix, false},
		{"en.wikimedia.org", false, NoMatch, "", "", region.Unknown, false},
		{"www.wikimedia.org", false, NoMatch, "", "", region.Unknown, false},
		{"xx.wikipedia.org", false, NoMatch, "", "", region.Unknown, false},
		{"en.x.wikipedia.org", false, NoMatch, "", "", region.Unknown, false},
		{"unrelated.org", false, NoMatch, "", "", region.Unknown, false},
		{"other-cdn.com", false, NoMatch, "", "", region.Unknown, false},
		{".org", false, NoMatch, "", "", region.Unknown, false},
	}

	for _, tt := range tests {
		h, ok := ParseUpstreamHost(tt.host)
		assert.Equal(t, tt.ok, ok, tt.host)
		assert.Equal(t, tt.kind, h.Kind, tt.host)
		assert.Equal(t, tt.code, h.Region, tt.host)
		assert.Equal(t, tt.project, h.Project, tt.host)
		assert.Equal(t, tt.cat, h.Category, tt.host)
		assert.Equal(t, tt.www, h.WWW, tt.host)
	}
}

func TestMatchPrefix(t *testing.T) {
	assert.Equal(t, "", Match{}.Prefix())
	assert.Equal(t, "/en", Match{Kind: RegionOnly, Region: "en"}.Prefix())
	assert.Equal(t, "/en/m", Match{Kind: RegionMobile, Region: "en"}.Prefix())
	assert.Equal(t, "region+mobile", RegionMobile.String())
}
