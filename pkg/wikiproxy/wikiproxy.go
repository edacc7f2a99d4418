// Package wikiproxy is the environment-agnostic core of the proxy: it
// decides between the portal redirect and a proxied fetch, performs the
// upstream request and streams HTML bodies through the link rewriter.
package wikiproxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/andesco/wikiproxy/pkg/config"
	"github.com/andesco/wikiproxy/pkg/region"
	"github.com/andesco/wikiproxy/pkg/rewrite"
	"github.com/andesco/wikiproxy/pkg/translate"
)

// RedirectStatus is used for the portal redirect.
const RedirectStatus = http.StatusMovedPermanently

var (
	// ErrUnknownHost is returned when the request does not map to a known
	// project host.
	ErrUnknownHost = errors.New("host is not a proxied project")
	// ErrUpstream wraps failures of the upstream fetch.
	ErrUpstream = errors.New("upstream fetch failed")
)

// forwardedHeaders are copied from the client request to the upstream one.
var forwardedHeaders = []string{
	"Accept",
	"Accept-Language",
	"Content-Type",
	"If-Modified-Since",
	"If-None-Match",
}

var hopHeaders = []string{
	"Connection",
	"Content-Length",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Doer performs upstream HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Proxy handles requests for one proxy domain. It is safe for concurrent
// use.
type Proxy struct {
	cfg        config.Config
	translator *translate.Translator
	client     Doer
	metrics    *Metrics
	log        zerolog.Logger
}

type Option func(*Proxy)

// WithClient replaces the default upstream HTTP client.
func WithClient(c Doer) Option {
	return func(p *Proxy) { p.client = c }
}

func WithMetrics(m *Metrics) Option {
	return func(p *Proxy) { p.metrics = m }
}

func WithLogger(l zerolog.Logger) Option {
	return func(p *Proxy) { p.log = l }
}

// New creates a Proxy from cfg.
func New(cfg config.Config, opts ...Option) *Proxy {
	p := &Proxy{
		cfg:        cfg,
		translator: translate.New(cfg.Domain),
		client:     &http.Client{Timeout: cfg.HTTPTimeout()},
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Translator returns the proxy's URL translator.
func (p *Proxy) Translator() *translate.Translator {
	return p.translator
}

// Request is an inbound client request.
type Request struct {
	Method string
	// URL is the absolute proxy-form URL the client asked for.
	URL    *url.URL
	Header http.Header
	Body   io.Reader
}

// Response is ready to be sent to the client. The caller must close Body;
// closing it early cancels the upstream fetch.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
	// ContentLength is -1 when unknown, e.g. for rewritten HTML.
	ContentLength int64
	// Upstream is the URL that was fetched; nil for redirects.
	Upstream  *url.URL
	Rewritten bool
}

// Decision is the outcome of routing a request.
type Decision struct {
	// Redirect is set when the client should be sent to the portal.
	Redirect *url.URL
	Upstream translate.ExtendedURL
}

// Resolve decides what to do with a request for reqURL.
func (p *Proxy) Resolve(reqURL *url.URL, referer string) (Decision, error) {
	if target, ok := p.portalRedirect(reqURL); ok {
		return Decision{Redirect: target}, nil
	}

	if _, cat := p.translator.ProxyProject(reqURL.Host); cat == region.Unknown {
		return Decision{}, fmt.Errorf("%w: %s", ErrUnknownHost, reqURL.Host)
	}

	u := reqURL
	if translate.IsAPIPath(u.Path) {
		u = p.translator.AdjustAPIPath(u, referer)
	}

	up := p.translator.ToUpstream(u)
	up.URL.Scheme = p.cfg.UpstreamScheme

	if p.cfg.Log.URLs {
		p.log.Debug().
			Str("request", reqURL.String()).
			Str("upstream", up.URL.String()).
			Str("region", up.Region).
			Bool("mobile", up.Mobile).
			Msg("translated url")
	}
	return Decision{Upstream: up}, nil
}

// portalRedirect matches "/", "/m" and "/m/" on a site-matrix proxy host.
func (p *Proxy) portalRedirect(u *url.URL) (*url.URL, bool) {
	if _, cat := p.translator.ProxyProject(u.Host); cat != region.SiteMatrix {
		return nil, false
	}
	switch strings.ToLower(u.Path) {
	case "", "/", "/m", "/m/":
	default:
		return nil, false
	}
	target := *u
	target.Path = "/www/"
	target.RawPath = ""
	return &target, true
}

// Do serves one request. ctx bounds the upstream fetch and the body stream.
func (p *Proxy) Do(ctx context.Context, req Request) (*Response, error) {
	d, err := p.Resolve(req.URL, req.Header.Get("Referer"))
	if err != nil {
		p.metrics.request(outcomeUnknownHost)
		return nil, err
	}
	if d.Redirect != nil {
		p.metrics.request(outcomeRedirect)
		return &Response{
			StatusCode: RedirectStatus,
			Header:     http.Header{"Location": {d.Redirect.String()}},
			Body:       http.NoBody,
		}, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	resp, err := p.fetch(ctx, req, d.Upstream.URL)
	if err != nil {
		cancel()
		p.metrics.request(outcomeUpstreamError)
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	out := &Response{
		StatusCode:    resp.StatusCode,
		Header:        copyHeader(resp.Header),
		ContentLength: resp.ContentLength,
		Upstream:      d.Upstream.URL,
	}

	if !isHTML(resp.Header) {
		p.metrics.request(outcomeProxied)
		out.Body = &cancelBody{ReadCloser: resp.Body, cancel: cancel}
		return out, nil
	}

	p.metrics.request(outcomeRewritten)
	out.ContentLength = -1
	out.Rewritten = true
	out.Body = &cancelBody{ReadCloser: p.rewriteBody(resp.Body, d.Upstream), cancel: cancel}
	return out, nil
}

func (p *Proxy) fetch(ctx context.Context, req Request, target *url.URL) (*http.Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if method != http.MethodGet && method != http.MethodHead {
		body = req.Body
	}

	upReq, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("error building request for %s: %w", target, err)
	}
	for _, key := range forwardedHeaders {
		if v := req.Header.Get(key); v != "" {
			upReq.Header.Set(key, v)
		}
	}
	upReq.Header.Set("User-Agent", p.cfg.UserAgent)

	resp, err := p.client.Do(upReq)
	if err != nil {
		return nil, fmt.Errorf("error fetching %s: %w", target, err)
	}
	return resp, nil
}

// rewriteBody streams src through the link rewriter. The returned reader
// yields rewritten bytes as soon as they are produced.
func (p *Proxy) rewriteBody(src io.ReadCloser, page translate.ExtendedURL) io.ReadCloser {
	rc := rewrite.NewContext(p.translator, page, p.cfg.RewriteInPageURL)
	pr, pw := io.Pipe()

	go func() {
		defer src.Close()
		stats, err := rewrite.Stream(pw, src, rc)
		p.metrics.rewritten(stats)

		switch {
		case err == nil:
			p.log.Debug().
				Str("upstream", page.URL.String()).
				Int("absolute", stats.Absolute).
				Int("relative", stats.Relative).
				Msg("rewrote html")
		case errors.Is(err, io.ErrClosedPipe), errors.Is(err, context.Canceled):
			p.log.Debug().Str("upstream", page.URL.String()).Msg("client went away during rewrite")
		default:
			p.log.Warn().Err(err).Str("upstream", page.URL.String()).Msg("html rewrite aborted")
		}
		pw.CloseWithError(err)
	}()
	return pr
}

// cancelBody cancels the upstream request context once the body is closed.
type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

func isHTML(h http.Header) bool {
	if h.Get("Content-Encoding") != "" {
		return false
	}
	ct := strings.ToLower(strings.TrimSpace(h.Get("Content-Type")))
	return strings.HasPrefix(ct, "text/html")
}

// copyHeader drops hop-by-hop headers, including any listed in Connection.
func copyHeader(src http.Header) http.Header {
	dst := src.Clone()
	if dst == nil {
		dst = make(http.Header)
	}
	for _, field := range src.Values("Connection") {
		for _, key := range strings.Split(field, ",") {
			if key = strings.TrimSpace(key); key != "" {
				dst.Del(key)
			}
		}
	}
	for _, key := range hopHeaders {
		dst.Del(key)
	}
	return dst
}
