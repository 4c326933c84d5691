// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

package paz

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// CatalogFormat selects scheme catalog file syntax.
type CatalogFormat string

// Supported catalog syntaxes.
const (
	CatalogYAML CatalogFormat = "yaml"
	// CatalogJSON accepts JSON extended with comments and trailing commas.
	CatalogJSON CatalogFormat = "json"
)

// ErrInvalidCatalog means a scheme catalog file is malformed.
var ErrInvalidCatalog = errors.New("invalid scheme catalog")

// Catalog is an immutable set of known schemes, addressable by archive signature
// or by title. It implements SchemeSource.
type Catalog struct {
	signatures map[uint32]*Scheme
	titles     map[string]*Scheme
}

// catalogFile is on-disk catalog layout.
type catalogFile struct {
	// Titles maps title to its scheme.
	Titles map[string]*Scheme `json:"titles" yaml:"titles"`
	// Signatures maps archive signature ("0x858F8493") to a title.
	Signatures map[string]string `json:"signatures,omitempty" yaml:"signatures,omitempty"`
}

// NewCatalog builds a catalog from title schemes and signature bindings.
func NewCatalog(titles map[string]*Scheme, signatures map[uint32]string) (*Catalog, error) {
	c := &Catalog{
		signatures: make(map[uint32]*Scheme, len(signatures)),
		titles:     make(map[string]*Scheme, len(titles)),
	}

	for title, scheme := range titles {
		if scheme == nil {
			return nil, fmt.Errorf("%w: title %q has no scheme", ErrInvalidCatalog, title)
		}

		c.titles[title] = scheme
	}

	for sig, title := range signatures {
		scheme, ok := c.titles[title]
		if !ok {
			return nil, fmt.Errorf("%w: signature %#08x refers to unknown title %q", ErrInvalidCatalog, sig, title)
		}

		c.signatures[sig] = scheme
	}

	return c, nil
}

// LoadCatalog reads a catalog file. Syntax is chosen by extension:
// .json and .jsonc are JSON, anything else is YAML.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	format := CatalogYAML
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		format = CatalogJSON
	}

	c, err := ParseCatalog(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return c, nil
}

// ParseCatalog decodes catalog data in the given syntax.
func ParseCatalog(data []byte, format CatalogFormat) (*Catalog, error) {
	var file catalogFile
	switch format {
	case CatalogJSON:
		if err := json.Unmarshal(jsonc.ToJSON(data), &file); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
		}
	case CatalogYAML, "":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown syntax %q", ErrInvalidCatalog, format)
	}

	signatures := make(map[uint32]string, len(file.Signatures))
	for raw, title := range file.Signatures {
		sig, err := strconv.ParseUint(strings.TrimSpace(raw), 0, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: signature %q: %w", ErrInvalidCatalog, raw, err)
		}

		signatures[uint32(sig)] = title
	}

	return NewCatalog(file.Titles, signatures)
}

// SchemeBySignature implements SchemeSource.
func (c *Catalog) SchemeBySignature(signature uint32) (*Scheme, bool) {
	if c == nil {
		return nil, false
	}

	s, ok := c.signatures[signature]
	return s, ok
}

// SchemeByTitle implements SchemeSource.
func (c *Catalog) SchemeByTitle(title string) (*Scheme, bool) {
	if c == nil || title == "" {
		return nil, false
	}

	s, ok := c.titles[title]
	return s, ok
}

// Titles returns known titles in lexical order.
func (c *Catalog) Titles() []string {
	if c == nil {
		return nil
	}

	out := make([]string, 0, len(c.titles))
	for title := range c.titles {
		out = append(out, title)
	}

	slices.Sort(out)
	return out
}
