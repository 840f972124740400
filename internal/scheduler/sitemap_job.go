package scheduler

import (
	"context"

	"github.com/kailashsur/filmyfly/internal/sitemap"
)

// SitemapJob asks the sitemap worker for a regeneration. It does not wait
// for the result; the worker logs it.
type SitemapJob struct {
	submit sitemap.Submitter
}

func NewSitemapJob(submit sitemap.Submitter) *SitemapJob {
	return &SitemapJob{submit: submit}
}

func (j *SitemapJob) Name() string { return "sitemap_regenerate" }

func (j *SitemapJob) Run(context.Context) error {
	j.submit.Submit("scheduled")
	return nil
}
