package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAPIPath(t *testing.T) {
	assert.True(t, IsAPIPath("/api/rest_v1/page/summary/Y"))
	assert.True(t, IsAPIPath("/API/x"))
	assert.False(t, IsAPIPath("/api"))
	assert.False(t, IsAPIPath("/apis/x"))
	assert.False(t, IsAPIPath("/zh/api/x"))
}

func TestAdjustAPIPath(t *testing.T) {
	tr := New("example.com")
	req := "https://wikipedia.example.com/api/rest_v1/page/summary/Y"

	tests := []struct {
		name    string
		req     string
		referer string
		want    string
	}{
		{"desktop referer", req, "https://wikipedia.example.com/zh/wiki/X", "https://wikipedia.example.com/zh/api/rest_v1/page/summary/Y"},
		{"mobile referer", req, "https://wikipedia.example.com/zh/m/wiki/X", "https://wikipedia.example.com/zh/m/api/rest_v1/page/summary/Y"},
		{"no referer", req, "", req},
		{"referer without region", req, "https://wikipedia.example.com/www/", req},
		{"foreign referer", req, "https://search.example.net/zh/wiki/X", req},
		{"malformed referer", req, "://bad url", req},
		{"relative referer", req, "/zh/wiki/X", req},
		{"shared host", "https://commons.wikimedia.example.com/api/rest_v1/page/summary/Y", "https://wikipedia.example.com/zh/wiki/X", "https://commons.wikimedia.example.com/api/rest_v1/page/summary/Y"},
		{"unknown host", "https://foo.example.com/api/x", "https://wikipedia.example.com/zh/wiki/X", "https://foo.example.com/api/x"},
		{"not an api path", "https://wikipedia.example.com/wiki/Y", "https://wikipedia.example.com/zh/wiki/X", "https://wikipedia.example.com/wiki/Y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tr.AdjustAPIPath(mustParse(t, tt.req), tt.referer)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestAdjustedAPIPathReachesRegionalHost(t *testing.T) {
	tr := New("example.com")

	adjusted := tr.AdjustAPIPath(
		mustParse(t, "https://wikipedia.example.com/api/rest_v1/page/summary/Y"),
		"https://wikipedia.example.com/zh/wiki/X",
	)
	assert.Equal(t, "/zh/api/rest_v1/page/summary/Y", adjusted.Path)

	up := tr.ToUpstream(adjusted)
	assert.Equal(t, "zh.wikipedia.org", up.URL.Host)
	assert.Equal(t, "/api/rest_v1/page/summary/Y", up.URL.Path)
	assert.Equal(t, "zh", up.Region)
}
