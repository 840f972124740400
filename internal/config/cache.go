package config

import (
	"strings"
	"time"
)

// CacheConfig controls the Redis-backed page cache in front of the public
// catalog.  Paths matching SkipPrefixes are never cached so the admin API
// and health probes always hit the handlers.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	KeyStrategy  string
	Prefix       string
	MaxBodyBytes int
	SkipPrefixes []string
}

// LoadCacheConfig reads CACHE_* variables.  Methods are upper-cased.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		Methods:      parseMethods(envStr("CACHE_METHODS", "GET")),
		TTL:          envDur("CACHE_TTL", 60*time.Second),
		KeyStrategy:  envStr("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       envStr("CACHE_PREFIX", "filmyfly:page"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
		SkipPrefixes: envList("CACHE_SKIP_PREFIXES", "/admin,/healthz,/sitemap.xml"),
	}
}

func parseMethods(s string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			m[p] = true
		}
	}
	return m
}
