package language

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Catalog holds the messages and labels of one locale. Messages are keyed by
// failure kind and use {label}, {1}, {2}... placeholders for the field label
// and the failure arguments.
type Catalog struct {
	Locale         string            `yaml:"locale"`
	DateFormat     string            `yaml:"dateFormat"`
	DateTimeFormat string            `yaml:"dateTimeFormat"`
	Messages       map[string]string `yaml:"messages"`
	Labels         map[string]string `yaml:"labels"`

	tag language.Tag
}

// Tag returns the parsed BCP 47 tag of the catalog.
func (c *Catalog) Tag() language.Tag { return c.tag }

// ParseCatalog decodes a YAML catalog. source is only used in error messages.
func ParseCatalog(data []byte, source string) (*Catalog, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("language: catalog %s is empty", source)
	}
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("language: parse %s: %w", source, err)
	}
	if strings.TrimSpace(c.Locale) == "" {
		return nil, fmt.Errorf("language: catalog %s does not declare a locale", source)
	}
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return nil, fmt.Errorf("language: catalog %s: locale %q: %w", source, c.Locale, err)
	}
	c.tag = tag
	if c.Messages == nil {
		c.Messages = make(map[string]string)
	}
	if c.Labels == nil {
		c.Labels = make(map[string]string)
	}
	return &c, nil
}

// LoadFS walks fsys and parses every .yaml/.yml file as a catalog.
func LoadFS(fsys fs.FS) ([]*Catalog, error) {
	if fsys == nil {
		return nil, nil
	}
	var catalogs []*Catalog
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isCatalogFile(path) {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("language: read %s: %w", path, err)
		}
		c, err := ParseCatalog(data, path)
		if err != nil {
			return err
		}
		catalogs = append(catalogs, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return catalogs, nil
}

func isCatalogFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
