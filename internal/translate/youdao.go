package translate

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/light4/christina/internal/trace"
)

// Youdao posts the text to the mobile translation page and scrapes the result.
type Youdao struct {
	URL     string
	Timeout time.Duration
	Client  *http.Client
}

// NewYoudao creates a backend for endpoint (YoudaoURL when empty).
func NewYoudao(endpoint string, timeout time.Duration) *Youdao {
	if endpoint == "" {
		endpoint = YoudaoURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Youdao{URL: endpoint, Timeout: timeout, Client: http.DefaultClient}
}

// Translate never retries; a timeout counts as no translation.
func (y *Youdao) Translate(ctx context.Context, text string) (string, bool) {
	log := trace.Logger(ctx)
	ctx, cancel := context.WithTimeout(ctx, y.Timeout)
	defer cancel()

	form := url.Values{"inputtext": {text}, "type": {"AUTO"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, y.URL, strings.NewReader(form.Encode()))
	if err != nil {
		log.Warn("build translate request", "error", err)
		return "", false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Origin", youdaoOrigin)
	req.Header.Set("Referer", youdaoReferer)
	req.Header.Set("Accept-Language", acceptLanguage)

	resp, err := y.Client.Do(req)
	if err != nil {
		log.Warn("translate request failed", "error", err)
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("translate request rejected", "status", resp.StatusCode)
		return "", false
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, maxBodyBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		log.Warn("decode translate response", "error", err)
		return "", false
	}
	page, err := io.ReadAll(body)
	if err != nil {
		log.Warn("read translate response", "error", err)
		return "", false
	}

	out, ok := ExtractResult(string(page))
	if !ok {
		log.Warn("translate result not found in page", "bytes", len(page))
	}
	return out, ok
}
