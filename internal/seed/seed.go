// Package seed loads the default categories and settings shipped with the
// binary.
package seed

import (
	"context"
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

type CategoryDef struct {
	Name string `yaml:"name"`
	Slug string `yaml:"slug"`
}

type SettingDef struct {
	Key         string `yaml:"key"`
	Value       string `yaml:"value"`
	Description string `yaml:"description"`
}

type CategoryUpserter interface {
	Upsert(ctx context.Context, name, slug string) (bool, error)
}

type SettingUpserter interface {
	Upsert(ctx context.Context, key, value, description string) error
}

func load[T any](name string) ([]T, error) {
	data, err := dataFS.ReadFile("data/" + name)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return out, nil
}

// Categories returns the embedded default categories.
func Categories() ([]CategoryDef, error) { return load[CategoryDef]("categories.yaml") }

// Settings returns the embedded default settings.
func Settings() ([]SettingDef, error) { return load[SettingDef]("settings.yaml") }

// Report counts what a seed run touched.
type Report struct {
	CategoriesCreated int
	CategoriesUpdated int
	Settings          int
}

// Run upserts every default category and setting. Existing categories are
// renamed to the default name; existing settings are overwritten.
func Run(ctx context.Context, cats CategoryUpserter, settings SettingUpserter) (Report, error) {
	var r Report
	defs, err := Categories()
	if err != nil {
		return r, err
	}
	for _, c := range defs {
		created, err := cats.Upsert(ctx, c.Name, c.Slug)
		if err != nil {
			return r, fmt.Errorf("category %s: %w", c.Slug, err)
		}
		if created {
			r.CategoriesCreated++
		} else {
			r.CategoriesUpdated++
		}
	}

	sdefs, err := Settings()
	if err != nil {
		return r, err
	}
	for _, s := range sdefs {
		if err := settings.Upsert(ctx, s.Key, s.Value, s.Description); err != nil {
			return r, fmt.Errorf("setting %s: %w", s.Key, err)
		}
		r.Settings++
	}
	return r, nil
}
