package sitemap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const pingUserAgent = "FilmyFly-Sitemap-Bot/1.0"

// Pinger notifies a search engine that the sitemap changed.
type Pinger struct {
	endpoint string
	client   *http.Client
}

func NewPinger(endpoint string, timeout time.Duration) *Pinger {
	return &Pinger{endpoint: endpoint, client: &http.Client{Timeout: timeout}}
}

// Ping sends GET endpoint?sitemap=<sitemapURL>. Non-2xx responses are errors.
func (p *Pinger) Ping(ctx context.Context, sitemapURL string) error {
	u, err := url.Parse(p.endpoint)
	if err != nil {
		return err
	}
	q := u.Query()
	q.Set("sitemap", sitemapURL)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", pingUserAgent)
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("ping %s: status %d", u.Host, resp.StatusCode)
	}
	return nil
}
