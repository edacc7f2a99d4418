package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"en", "en", true},
		{"ZH", "zh", true},
		{"Zh-Min-Nan", "zh-min-nan", true},
		{"simple", "simple", true},
		{"m", "", false},
		{"www", "", false},
		{"static", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := Lookup(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestProjectCategory(t *testing.T) {
	assert.Equal(t, SiteMatrix, ProjectCategory("wikipedia"))
	assert.Equal(t, SiteMatrix, ProjectCategory("WikiVoyage"))
	assert.Equal(t, Shared, ProjectCategory("upload.wikimedia"))
	assert.Equal(t, Shared, ProjectCategory("wikimedia"))
	assert.Equal(t, Unknown, ProjectCategory("upload"))
	assert.Equal(t, Unknown, ProjectCategory("en.wikipedia"))
	assert.Equal(t, "shared", Shared.String())
}

func TestTablesAreCopies(t *testing.T) {
	codes := Regions()
	assert.Greater(t, len(codes), 300)
	assert.Contains(t, codes, "simple")

	codes[0] = "mutated"
	assert.NotEqual(t, "mutated", Regions()[0])

	assert.Len(t, Projects(SiteMatrix), 8)
	assert.Len(t, Projects(Shared), 6)
	assert.Empty(t, Projects(Unknown))
}

func TestNoRegionIsAProject(t *testing.T) {
	for _, code := range Regions() {
		assert.Equal(t, Unknown, ProjectCategory(code), code)
	}
}
