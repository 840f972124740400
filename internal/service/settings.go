// Package service holds business rules that sit between handlers and
// repositories.
package service

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/spf13/cast"
)

const (
	KeyDownloadRedirectURL  = "downloadRedirectUrl"
	KeyGoogleTagManagerHead = "googleTagManagerHead"
	KeyGoogleTagManagerBody = "googleTagManagerBody"
	KeyGoogleAnalytics      = "googleAnalytics"
	KeyGoogleSearchConsole  = "googleSearchConsole"
	KeyAdsenseCode          = "adsenseCode"
	KeyAdsteraCode          = "adsteraCode"
	KeySiteURL              = "siteUrl"

	DefaultDownloadRedirectURL = "https://kailashsur.in/top-investment-strategies-beginners/?redirect="
	DefaultSiteURL             = "https://filmyfly.work"
)

// SettingDef describes one known setting.
type SettingDef struct {
	Key         string
	Description string
	Default     string
}

// SettingDefs lists every key the back office can edit, in display order.
var SettingDefs = []SettingDef{
	{KeyDownloadRedirectURL, "Redirect URL for download links", DefaultDownloadRedirectURL},
	{KeyGoogleTagManagerHead, "Google Tag Manager code for <head> section", ""},
	{KeyGoogleTagManagerBody, "Google Tag Manager noscript code for <body> section", ""},
	{KeyGoogleAnalytics, "Google Analytics (gtag.js) code", ""},
	{KeyGoogleSearchConsole, "Google Search Console verification meta tag", ""},
	{KeyAdsenseCode, "Google AdSense code", ""},
	{KeyAdsteraCode, "Adstera ad code", ""},
	{KeySiteURL, "Site URL (used in meta tags, Open Graph, Twitter Card, etc.)", DefaultSiteURL},
}

// SettingStore is implemented by repository.SettingRepo.
type SettingStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	All(ctx context.Context) (map[string]string, error)
	Upsert(ctx context.Context, key, value, description string) error
}

// ValidationError carries a message meant for the admin.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// SettingEntry is a known setting with its effective value.
type SettingEntry struct {
	Key         string `json:"key"`
	Description string `json:"description"`
	Value       string `json:"value"`
}

type Settings struct {
	store SettingStore
}

func NewSettings(store SettingStore) *Settings {
	if store == nil {
		panic("nil setting store")
	}
	return &Settings{store: store}
}

// Values returns stored values laid over the defaults. Unknown stored keys
// are passed through.
func (s *Settings) Values(ctx context.Context) (map[string]string, error) {
	stored, err := s.store.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(SettingDefs)+len(stored))
	for _, d := range SettingDefs {
		out[d.Key] = d.Default
	}
	for k, v := range stored {
		if v == "" && out[k] != "" {
			continue
		}
		out[k] = v
	}
	return out, nil
}

// Entries returns every known setting with its description.
func (s *Settings) Entries(ctx context.Context) ([]SettingEntry, error) {
	vals, err := s.Values(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]SettingEntry, 0, len(SettingDefs))
	for _, d := range SettingDefs {
		out = append(out, SettingEntry{Key: d.Key, Description: d.Description, Value: vals[d.Key]})
	}
	return out, nil
}

// Get returns the effective value of key.
func (s *Settings) Get(ctx context.Context, key string) (string, error) {
	v, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if ok && v != "" {
		return v, nil
	}
	for _, d := range SettingDefs {
		if d.Key == key {
			return d.Default, nil
		}
	}
	return v, nil
}

// SiteURL is the configured public origin without a trailing slash.
func (s *Settings) SiteURL(ctx context.Context) (string, error) {
	v, err := s.Get(ctx, KeySiteURL)
	return strings.TrimRight(v, "/"), err
}

// Save validates and writes every known key from in. Missing keys are stored
// empty, except siteUrl which falls back to its default. It reports whether
// siteUrl changed.
func (s *Settings) Save(ctx context.Context, in map[string]any) (bool, error) {
	vals := make(map[string]string, len(SettingDefs))
	for _, d := range SettingDefs {
		v, err := cast.ToStringE(in[d.Key])
		if err != nil {
			return false, &ValidationError{Msg: "Invalid value for " + d.Key}
		}
		vals[d.Key] = strings.TrimSpace(v)
	}
	if err := validate(vals); err != nil {
		return false, err
	}
	if vals[KeySiteURL] == "" {
		vals[KeySiteURL] = DefaultSiteURL
	}

	before, err := s.SiteURL(ctx)
	if err != nil {
		return false, err
	}
	for _, d := range SettingDefs {
		if err := s.store.Upsert(ctx, d.Key, vals[d.Key], d.Description); err != nil {
			return false, err
		}
	}
	return strings.TrimRight(vals[KeySiteURL], "/") != before, nil
}

func validate(vals map[string]string) error {
	if v := vals[KeyDownloadRedirectURL]; v != "" && !isAbsoluteURL(v) {
		return &ValidationError{Msg: "Invalid URL format. Please enter a valid URL."}
	}
	if v := vals[KeySiteURL]; v != "" {
		if !isAbsoluteURL(v) {
			return &ValidationError{Msg: "Invalid URL format. Please enter a valid URL (e.g., https://filmyfly.work)."}
		}
		u, _ := url.Parse(v)
		if u.Scheme != "http" && u.Scheme != "https" {
			return &ValidationError{Msg: "Site URL must start with http:// or https://"}
		}
	}
	return nil
}

func isAbsoluteURL(v string) bool {
	u, err := url.Parse(v)
	if err != nil || u.Scheme == "" {
		return false
	}
	return u.Host != "" || u.Opaque != ""
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
