package sitemap

import "strings"

// FallbackRobots is served when the site URL cannot be read.
const FallbackRobots = "User-agent: *\nAllow: /\nDisallow: /admin/\n"

const robotsTemplate = `# robots.txt for FilmyFly
# Allow all search engines to crawl the site

User-agent: *
Allow: /
Disallow: /admin/
Disallow: /admin/*
Disallow: /api/
Disallow: /*?page=
Disallow: /search?to-search=

# Allow specific important pages
Allow: /about
Allow: /page-how-to-download-movie
Allow: /site-privacy-policy
Allow: /site-contact-us
Allow: /site-about-us
Allow: /site-dmca

# Crawl-delay (optional, adjust as needed)
Crawl-delay: 1

# Sitemap location
Sitemap: {siteUrl}/sitemap.xml
`

// Robots renders robots.txt for siteURL.
func Robots(siteURL string) string {
	return strings.Replace(robotsTemplate, "{siteUrl}", strings.TrimRight(siteURL, "/"), 1)
}
