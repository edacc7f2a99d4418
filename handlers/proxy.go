package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/andesco/wikiproxy/pkg/wikiproxy"
)

// ProxySite is a Fiber handler that serves every request through p.
func ProxySite(p *wikiproxy.Proxy, logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		reqURL, err := requestURL(c)
		if err != nil {
			logger.Warn().Err(err).Msg("could not parse request url")
			return c.Status(fiber.StatusBadRequest).SendString("Could not parse URL")
		}

		// Convert Fiber headers to http.Header
		headers := make(http.Header)
		c.Request().Header.VisitAll(func(key, value []byte) {
			headers.Add(string(key), string(value))
		})

		var body io.Reader
		if b := c.Body(); len(b) > 0 {
			body = bytes.NewReader(b)
		}

		resp, err := p.Do(c.UserContext(), wikiproxy.Request{
			Method: c.Method(),
			URL:    reqURL,
			Header: headers,
			Body:   body,
		})
		switch {
		case errors.Is(err, wikiproxy.ErrUnknownHost):
			logger.Info().Str("host", reqURL.Host).Msg("rejected request for unknown host")
			return c.Status(fiber.StatusNotFound).SendString("Unknown host")
		case err != nil:
			logger.Error().Err(err).Str("url", reqURL.String()).Msg("upstream fetch failed")
			return c.Status(fiber.StatusBadGateway).SendString("Upstream fetch failed")
		}

		// Set response headers from the proxied response
		for key, values := range resp.Header {
			for _, value := range values {
				c.Response().Header.Add(key, value)
			}
		}
		c.Status(resp.StatusCode)

		event := logger.Info().
			Str("method", c.Method()).
			Str("url", reqURL.String()).
			Int("status", resp.StatusCode).
			Bool("rewritten", resp.Rewritten).
			Dur("elapsed", time.Since(start))
		if resp.Upstream != nil {
			event = event.Str("upstream", resp.Upstream.String())
		}
		event.Msg("proxied")

		size := -1
		if resp.ContentLength >= 0 {
			size = int(resp.ContentLength)
		}
		// fasthttp closes the stream when the response is done or the
		// client goes away, which cancels the upstream request.
		return c.SendStream(resp.Body, size)
	}
}

// requestURL rebuilds the absolute URL the client asked for. Protocol
// follows X-Forwarded-Proto from trusted proxies; anything but http or
// https falls back to http.
func requestURL(c *fiber.Ctx) (*url.URL, error) {
	proto := strings.ToLower(strings.TrimSpace(c.Protocol()))
	if proto != "http" && proto != "https" {
		proto = "http"
	}

	raw := proto + "://" + c.Hostname() + c.OriginalURL()
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("error parsing request URL '%s': %w", raw, err)
	}
	return u, nil
}
