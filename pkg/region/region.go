// Package region holds the static tables the proxy matches URLs against:
// the known region codes and the two project categories.
package region

import (
	"sort"
	"strings"
)

// Category classifies a project name.
type Category int

const (
	// Unknown is returned for names that are not a known project.
	Unknown Category = iota
	// SiteMatrix projects support per-region subdomains, e.g. en.wikipedia.org.
	SiteMatrix
	// Shared projects never carry a region, e.g. upload.wikimedia.org.
	Shared
)

func (c Category) String() string {
	switch c {
	case SiteMatrix:
		return "sitematrix"
	case Shared:
		return "shared"
	default:
		return "unknown"
	}
}

// ref: https://meta.wikimedia.org/wiki/Special:SiteMatrix
var regionCodes = []string{
	"aa", "ab", "ace", "ady", "af", "ak", "als", "alt", "am", "ami", "an", "ang", "ar", "arc", "ary", "arz",
	"as", "ast", "atj", "av", "avk", "awa", "ay", "az", "azb", "ba", "ban", "bar", "bat-smg", "bcl", "be",
	"be-tarask", "be-x-old", "bg", "bh", "bi", "bjn", "blk", "bm", "bn", "bo", "bpy", "br", "bs", "bug",
	"bxr", "ca", "cbk-zam", "cdo", "ce", "ceb", "ch", "cho", "chr", "chy", "ckb", "co", "cr", "crh", "cs",
	"csb", "cu", "cv", "cy", "da", "dag", "de", "din", "diq", "dsb", "dty", "dv", "dz", "ee", "el", "eml",
	"en", "eo", "es", "et", "eu", "ext", "fa", "ff", "fi", "fiu-vro", "fj", "fo", "fr", "frp", "frr", "fur",
	"fy", "ga", "gag", "gan", "gcr", "gd", "gl", "glk", "gn", "gom", "gor", "got", "gu", "guw", "gv", "ha",
	"hak", "haw", "he", "hi", "hif", "ho", "hr", "hsb", "ht", "hu", "hy", "hyw", "hz", "ia", "id", "ie",
	"ig", "ii", "ik", "ilo", "inh", "io", "is", "it", "iu", "ja", "jam", "jbo", "jv", "ka", "kaa", "kab",
	"kbd", "kbp", "kcg", "kg", "ki", "kj", "kk", "kl", "km", "kn", "ko", "koi", "kr", "krc", "ks", "ksh",
	"ku", "kv", "kw", "ky", "la", "lad", "lb", "lbe", "lez", "lfn", "lg", "li", "lij", "lld", "lmo", "ln",
	"lo", "lrc", "lt", "ltg", "lv", "mad", "mai", "map-bms", "mdf", "mg", "mh", "mhr", "mi", "min", "mk",
	"ml", "mn", "mni", "mnw", "mo", "mr", "mrj", "ms", "mt", "mus", "mwl", "my", "myv", "mzn", "na", "nah",
	"nap", "nds", "nds-nl", "ne", "new", "ng", "nia", "nl", "nn", "no", "nov", "nqo", "nrm", "nso", "nv",
	"ny", "oc", "olo", "om", "or", "os", "pa", "pag", "pam", "pap", "pcd", "pcm", "pdc", "pfl", "pi", "pih",
	"pl", "pms", "pnb", "pnt", "ps", "pt", "pwn", "qu", "rm", "rmy", "rn", "ro", "roa-rup", "roa-tara",
	"ru", "rue", "rw", "sa", "sah", "sat", "sc", "scn", "sco", "sd", "se", "sg", "sh", "shi", "shn", "shy",
	"si", "simple", "sk", "skr", "sl", "sm", "smn", "sn", "so", "sq", "sr", "srn", "ss", "st", "stq", "su",
	"sv", "sw", "szl", "szy", "ta", "tay", "tcy", "te", "tet", "tg", "th", "ti", "tk", "tl", "tn", "to",
	"tpi", "tr", "trv", "ts", "tt", "tum", "tw", "ty", "tyv", "udm", "ug", "uk", "ur", "uz", "ve", "vec",
	"vep", "vi", "vls", "vo", "wa", "war", "wo", "wuu", "xal", "xh", "xmf", "yi", "yo", "yue", "za", "zea",
	"zh", "zh-classical", "zh-min-nan", "zh-yue", "zu",
}

// mediawiki projects with region subdomains
var siteMatrixProjects = []string{
	"wikipedia", "wiktionary", "wikibooks", "wikinews",
	"wikiquote", "wikisource", "wikiversity", "wikivoyage",
}

// mediawiki projects without region subdomains
var sharedProjects = []string{
	"wikimedia",
	"commons.wikimedia",
	"meta.wikimedia",
	"species.wikimedia",
	"upload.wikimedia",
	"login.wikimedia",
}

var (
	regions  = make(map[string]struct{}, len(regionCodes))
	projects = make(map[string]Category, len(siteMatrixProjects)+len(sharedProjects))
)

func init() {
	for _, code := range regionCodes {
		regions[code] = struct{}{}
	}
	for _, name := range siteMatrixProjects {
		projects[name] = SiteMatrix
	}
	for _, name := range sharedProjects {
		projects[name] = Shared
	}
}

// Lookup reports whether s is a known region code, matched case-insensitively,
// and returns its canonical lowercase form.
func Lookup(s string) (string, bool) {
	code := strings.ToLower(s)
	_, ok := regions[code]
	if !ok {
		return "", false
	}
	return code, true
}

// IsRegion reports whether s is a known region code.
func IsRegion(s string) bool {
	_, ok := Lookup(s)
	return ok
}

// ProjectCategory returns the category of a project name such as "wikipedia"
// or "upload.wikimedia". Matching is case-insensitive.
func ProjectCategory(name string) Category {
	return projects[strings.ToLower(name)]
}

// Regions returns a sorted copy of all known region codes.
func Regions() []string {
	out := make([]string, 0, len(regions))
	for code := range regions {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Projects returns a sorted copy of the project names in category c.
func Projects(c Category) []string {
	var out []string
	for name, cat := range projects {
		if cat == c {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
