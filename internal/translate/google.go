package translate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// DefaultEndpoint is the keyless Google Translate endpoint used by browser
// extensions.
const DefaultEndpoint = "https://translate.googleapis.com/translate_a/single"

const maxResponseSize = 4 * 1024 * 1024

// GoogleConfig configures the Google translator.
type GoogleConfig struct {
	// Endpoint defaults to DefaultEndpoint.
	Endpoint string

	// Timeout bounds a single request, defaults to 10s.
	Timeout time.Duration

	// RequestsPerMinute defaults to 60.
	RequestsPerMinute int

	// Client defaults to a new http.Client with Timeout.
	Client *http.Client
}

// Google translates with the Google Translate web API. No API key is needed.
type Google struct {
	endpoint    string
	client      *http.Client
	rateLimiter *rate.Limiter
}

// NewGoogle creates a Google translator.
func NewGoogle(config GoogleConfig) *Google {
	if config.Endpoint == "" {
		config.Endpoint = DefaultEndpoint
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = 60
	}
	if config.Client == nil {
		config.Client = &http.Client{Timeout: config.Timeout}
	}

	return &Google{
		endpoint:    config.Endpoint,
		client:      config.Client,
		rateLimiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RequestsPerMinute)), 1),
	}
}

// Translate sends text to Google and joins the translated segments.
func (g *Google) Translate(ctx context.Context, text, from, to string) (string, error) {
	if strings.TrimSpace(text) == "" || sameLanguage(from, to) {
		return text, nil
	}
	if from == "" {
		from = "auto"
	}

	if err := g.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	u, err := url.Parse(g.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", g.endpoint, err)
	}
	q := u.Query()
	q.Set("client", "gtx")
	q.Set("sl", from)
	q.Set("tl", to)
	q.Set("dt", "t")
	u.RawQuery = q.Encode()

	// Long texts don't fit in a query string.
	body := url.Values{"q": {text}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), strings.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=utf-8")

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("translation request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("failed to read translation response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &Error{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	out, detected, err := parseGoogle(data)
	if err != nil {
		return "", err
	}

	log.Debug("translation finished",
		"from", from,
		"detected", detected,
		"to", to,
		"chars", len(text),
		"took", time.Since(start))

	return out, nil
}

// parseGoogle extracts the translation and the detected source language
// from a response shaped like
//
//	[[["Hola","Hello",null,null,10],[" mundo"," world",...]],null,"en",...]
func parseGoogle(data []byte) (text, detected string, err error) {
	if !gjson.ValidBytes(data) {
		return "", "", fmt.Errorf("malformed translation response")
	}

	var b strings.Builder
	for _, seg := range gjson.GetBytes(data, "0.#.0").Array() {
		b.WriteString(seg.String())
	}
	if b.Len() == 0 {
		return "", "", ErrEmptyResponse
	}

	return b.String(), gjson.GetBytes(data, "2").String(), nil
}

var _ Translator = (*Google)(nil)
