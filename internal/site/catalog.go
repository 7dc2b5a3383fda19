package site

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Service struct {
	Slug  string `yaml:"slug" json:"slug"`
	Title string `yaml:"title" json:"title"`
}

// Catalog is the content the marketing pages and quote form are built from.
type Catalog struct {
	Company      string    `yaml:"company" json:"company"`
	Phone        string    `yaml:"phone" json:"phone,omitempty"`
	Email        string    `yaml:"email" json:"email,omitempty"`
	Services     []Service `yaml:"services" json:"services"`
	ServiceAreas []string  `yaml:"service_areas" json:"service_areas"`
	Budgets      []string  `yaml:"budgets" json:"budgets"`
	Timelines    []string  `yaml:"timelines" json:"timelines"`
}

// Default is used when no content file is deployed.
func Default() *Catalog {
	return &Catalog{
		Company: "Compleet Kozijnen",
		Services: []Service{
			{Slug: "kunststof-kozijnen", Title: "Kunststof kozijnen"},
			{Slug: "aluminium-kozijnen", Title: "Aluminium kozijnen"},
			{Slug: "houten-kozijnen", Title: "Houten kozijnen"},
			{Slug: "voordeuren", Title: "Voordeuren"},
			{Slug: "schuifpuien", Title: "Schuifpuien"},
			{Slug: "anders", Title: "Anders"},
		},
		ServiceAreas: []string{},
		Budgets:      []string{},
		Timelines:    []string{},
	}
}

// Load reads the catalog at path. A missing file yields Default.
func Load(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read site content: %w", err)
	}
	return Parse(b)
}

func Parse(b []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse site content: %w", err)
	}
	if len(c.Services) == 0 {
		return nil, errors.New("site content lists no services")
	}
	seen := make(map[string]bool, len(c.Services))
	for i, s := range c.Services {
		slug := strings.TrimSpace(s.Slug)
		if slug == "" {
			return nil, fmt.Errorf("service %d has no slug", i)
		}
		if seen[slug] {
			return nil, fmt.Errorf("duplicate service slug %q", slug)
		}
		seen[slug] = true
		c.Services[i].Slug = slug
		if c.Services[i].Title == "" {
			c.Services[i].Title = slug
		}
	}
	if c.ServiceAreas == nil {
		c.ServiceAreas = []string{}
	}
	if c.Budgets == nil {
		c.Budgets = []string{}
	}
	if c.Timelines == nil {
		c.Timelines = []string{}
	}
	return &c, nil
}

func (c *Catalog) HasService(slug string) bool {
	slug = strings.TrimSpace(slug)
	for _, s := range c.Services {
		if s.Slug == slug {
			return true
		}
	}
	return false
}

func (c *Catalog) ServiceTitle(slug string) string {
	for _, s := range c.Services {
		if s.Slug == slug {
			return s.Title
		}
	}
	return slug
}
