// Package queue carries sitemap regeneration requests over RabbitMQ.
package queue

// SitemapRequested asks a consumer to rebuild sitemap.xml.
type SitemapRequested struct {
	ID          string `json:"id"`
	Reason      string `json:"reason"`
	RequestedAt string `json:"requested_at"`
}
