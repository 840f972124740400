package importer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailashsur/filmyfly/internal/model"
	"github.com/kailashsur/filmyfly/internal/repository"
)

// MovieStore is the part of the movie repository the importer writes to.
type MovieStore interface {
	SlugExists(ctx context.Context, slug string, excludeID uint64) (bool, error)
	Create(ctx context.Context, m *model.Movie) error
}

// RowError describes one rejected record. Index is 1-based.
type RowError struct {
	Index int    `json:"index"`
	Title string `json:"title"`
	Error string `json:"error"`
}

// Result summarises an import pass.
type Result struct {
	Total   int        `json:"total"`
	Success int        `json:"success"`
	Failed  int        `json:"failed"`
	Errors  []RowError `json:"errors"`
}

// Messages returns the user facing summary lines, failures first.
func (r Result) Messages() []string {
	var out []string
	if r.Failed > 0 {
		out = append(out, fmt.Sprintf("%d movie(s) failed to import", r.Failed))
	}
	if r.Success > 0 {
		out = append(out, fmt.Sprintf("%d movie(s) added successfully", r.Success))
	}
	return out
}

const maxShownErrors = 20

// ErrorLines renders at most 20 row errors followed by a remainder line.
func (r Result) ErrorLines() []string {
	out := make([]string, 0, min(len(r.Errors), maxShownErrors)+1)
	for i, e := range r.Errors {
		if i == maxShownErrors {
			out = append(out, fmt.Sprintf("... and %d more errors", len(r.Errors)-maxShownErrors))
			break
		}
		out = append(out, fmt.Sprintf("Row %d (%s): %s", e.Index, e.Title, e.Error))
	}
	return out
}

func (r *Result) merge(o Result, offset int) {
	r.Total += o.Total
	r.Success += o.Success
	r.Failed += o.Failed
	for _, e := range o.Errors {
		e.Index += offset
		r.Errors = append(r.Errors, e)
	}
}

// placeholderDescription is scraped filler that batch imports store as NULL.
const placeholderDescription = "Movies Description Not Available"

// Importer inserts decoded records one by one. A failing row never stops
// the rows after it.
type Importer struct {
	movies MovieStore

	// DropPlaceholder stores the scraped "not available" description as NULL.
	DropPlaceholder bool
}

func New(movies MovieStore) *Importer {
	if movies == nil {
		panic("nil movie store")
	}
	return &Importer{movies: movies}
}

// ImportText decodes text and imports every record it contains.
func (im *Importer) ImportText(ctx context.Context, text string) (Result, error) {
	recs, _, err := Decode(text)
	if err != nil {
		return Result{}, err
	}
	return im.Import(ctx, recs), nil
}

// Import processes recs in order.
func (im *Importer) Import(ctx context.Context, recs []Record) Result {
	res := Result{Total: len(recs), Errors: []RowError{}}
	for i, rec := range recs {
		if err := im.importOne(ctx, rec); err != nil {
			title := rec.Title
			if title == "" {
				title = "Unknown"
			}
			res.Failed++
			res.Errors = append(res.Errors, RowError{Index: i + 1, Title: title, Error: err.Error()})
			continue
		}
		res.Success++
	}
	return res
}

func (im *Importer) importOne(ctx context.Context, rec Record) error {
	title := strings.TrimSpace(rec.Title)
	slug := strings.TrimSpace(rec.Slug)
	if title == "" || slug == "" {
		return errors.New("Title and slug are required")
	}
	taken, err := im.movies.SlugExists(ctx, slug, 0)
	if err != nil {
		return err
	}
	if taken {
		return slugTaken(slug)
	}

	m, err := im.toMovie(rec)
	if err != nil {
		return err
	}
	m.Title, m.Slug = title, slug
	if err := im.movies.Create(ctx, &m); err != nil {
		if errors.Is(err, repository.ErrSlugExists) {
			return slugTaken(slug)
		}
		return err
	}
	return nil
}

func slugTaken(slug string) error {
	return fmt.Errorf("Slug \"%s\" already exists", slug)
}

func (im *Importer) toMovie(rec Record) (model.Movie, error) {
	m := model.Movie{
		Description: optional(rec.Description),
		Thumbnail:   optional(rec.Thumbnail),
		Genre:       optional(rec.Genre),
		Languages:   optional(rec.Languages),
		Duration:    optional(rec.Duration),
		Cast:        optional(rec.Cast),
		Sizes:       optional(rec.Sizes),
		DownloadURL: optional(rec.DownloadURL),
		Screenshot:  optional(rec.Screenshot),
		Keywords:    optional(rec.Keywords),
	}
	if im.DropPlaceholder && m.Description != nil && *m.Description == placeholderDescription {
		m.Description = nil
	}
	if y := strings.TrimSpace(rec.ReleaseYear); y != "" {
		n, err := strconv.Atoi(y)
		if err != nil {
			return m, fmt.Errorf("invalid releaseYear %q", y)
		}
		m.ReleaseYear = &n
	}
	if c := strings.TrimSpace(rec.CategoryID); c != "" {
		n, err := strconv.ParseUint(c, 10, 64)
		if err != nil {
			return m, fmt.Errorf("invalid categoryId %q", c)
		}
		m.CategoryID = &n
	}
	return m, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// BatchOptions controls ImportBatches.
type BatchOptions struct {
	Size  int
	Pause time.Duration
	// Progress is called after every batch with the running totals.
	Progress func(batch int, sofar Result)
}

// ImportBatches imports recs in fixed size chunks with a pause in between.
// Row indexes in the result stay relative to the whole input.
func (im *Importer) ImportBatches(ctx context.Context, recs []Record, opt BatchOptions) (Result, error) {
	if opt.Size <= 0 {
		opt.Size = 50
	}
	total := Result{Errors: []RowError{}}
	for start, batch := 0, 1; start < len(recs); start, batch = start+opt.Size, batch+1 {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		end := min(start+opt.Size, len(recs))
		total.merge(im.Import(ctx, recs[start:end]), start)
		if opt.Progress != nil {
			opt.Progress(batch, total)
		}
		if end < len(recs) && opt.Pause > 0 {
			select {
			case <-ctx.Done():
				return total, ctx.Err()
			case <-time.After(opt.Pause):
			}
		}
	}
	return total, nil
}
