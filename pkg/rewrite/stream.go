package rewrite

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html"
)

// Stats counts the attributes rewritten in one document.
type Stats struct {
	Absolute int
	Relative int
}

// Total returns the number of rewritten attributes.
func (s Stats) Total() int {
	return s.Absolute + s.Relative
}

// Stream copies an HTML document from src to dst, rewriting monitored
// attributes as it goes. Tokens are written out as soon as they are read;
// anything the visitor leaves alone is forwarded as its original bytes.
func Stream(dst io.Writer, src io.Reader, c *Context) (Stats, error) {
	var stats Stats
	z := html.NewTokenizer(src)

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			err := z.Err()
			if errors.Is(err, io.EOF) {
				return stats, nil
			}
			return stats, fmt.Errorf("reading html: %w", err)

		case html.StartTagToken, html.SelfClosingTagToken:
			// Token lowercases the tag name in place, so keep the raw
			// bytes first.
			raw := append([]byte(nil), z.Raw()...)
			tok := z.Token()

			if rule := visitToken(c, &tok); rule != Untouched {
				switch rule {
				case Absolute:
					stats.Absolute++
				case Relative:
					stats.Relative++
				}
				raw = []byte(tok.String())
			}
			if _, err := dst.Write(raw); err != nil {
				return stats, err
			}

		default:
			if _, err := dst.Write(z.Raw()); err != nil {
				return stats, err
			}
		}
	}
}

// visitToken applies Visit to the first monitored attribute of tok.
func visitToken(c *Context, tok *html.Token) Rule {
	attr, ok := targetAttr[tok.Data]
	if !ok {
		return Untouched
	}

	for i := range tok.Attr {
		a := &tok.Attr[i]
		if a.Namespace != "" || a.Key != attr {
			continue
		}
		val, rule := Visit(c, Target{Tag: tok.Data, Attr: attr}, a.Val)
		if rule != Untouched {
			a.Val = val
		}
		return rule
	}
	return Untouched
}
