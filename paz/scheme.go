// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

package paz

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Type password categories.
const (
	TypeKeyImage  = "png"
	TypeKeyAudio  = "ogg"
	TypeKeyScript = "sc"
	TypeKeyVideo  = "avi"
)

// hexKeyPrefix marks hex-encoded key strings in scheme files.
const hexKeyPrefix = "hex:"

// KeyBytes is raw key material. In scheme files it is written either as plain
// text or as "hex:" followed by hex digits.
type KeyBytes []byte

// UnmarshalText decodes plain or "hex:" prefixed key text.
func (k *KeyBytes) UnmarshalText(text []byte) error {
	s := string(text)
	if rest, ok := strings.CutPrefix(s, hexKeyPrefix); ok {
		raw, err := hex.DecodeString(rest)
		if err != nil {
			return fmt.Errorf("decode hex key: %w", err)
		}

		*k = raw
		return nil
	}

	*k = KeyBytes(s)
	return nil
}

// MarshalText encodes the key as "hex:" text.
func (k KeyBytes) MarshalText() ([]byte, error) {
	return []byte(hexKeyPrefix + hex.EncodeToString(k)), nil
}

// UnmarshalJSON decodes a JSON string key.
func (k *KeyBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("key must be a string: %w", err)
	}

	return k.UnmarshalText([]byte(s))
}

// UnmarshalYAML decodes a YAML scalar key.
func (k *KeyBytes) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("key must be a string: %w", err)
	}

	return k.UnmarshalText([]byte(s))
}

// ArcKey is the key pair of one archive category.
type ArcKey struct {
	// IndexKey decrypts the archive index.
	IndexKey KeyBytes `json:"index_key" yaml:"index_key"`
	// DataKey decrypts entry payloads.
	DataKey KeyBytes `json:"data_key" yaml:"data_key"`
}

// Scheme is the encryption setup of one title.
type Scheme struct {
	// ArcKeys maps lower-case archive category ("bgm", "scr", "mov", ...) to keys.
	ArcKeys map[string]ArcKey `json:"arc_keys" yaml:"arc_keys"`
	// TypeKeys maps content category (png, ogg, sc, avi) to password fragments.
	TypeKeys map[string]string `json:"type_keys,omitempty" yaml:"type_keys,omitempty"`
	// Version selects index layout and entry cipher layers.
	Version int `json:"version" yaml:"version"`
}

// ArcKey returns keys of archive category.
func (s *Scheme) ArcKey(category string) (ArcKey, bool) {
	if s == nil {
		return ArcKey{}, false
	}

	key, ok := s.ArcKeys[category]
	return key, ok
}

// TypePassword returns the password fragment configured for the content type of name.
// Names in audio archives default to the audio fragment.
func (s *Scheme) TypePassword(name string, isAudio bool) string {
	if s == nil || s.TypeKeys == nil {
		return ""
	}

	var category string
	switch {
	case !strings.Contains(name, "."):
		if isAudio {
			category = TypeKeyAudio
		}
	case strings.HasSuffix(name, ".png"):
		category = TypeKeyImage
	case strings.HasSuffix(name, ".ogg") || isAudio:
		category = TypeKeyAudio
	case strings.HasSuffix(name, ".sc"):
		category = TypeKeyScript
	case strings.HasSuffix(name, ".avi"), strings.HasSuffix(name, ".mpg"), strings.HasSuffix(name, ".mpeg"):
		category = TypeKeyVideo
	}
	if category == "" {
		return ""
	}

	return s.TypeKeys[category]
}

// SchemeSource resolves schemes by archive signature or by title.
type SchemeSource interface {
	// SchemeBySignature returns the scheme bound to the first four archive bytes.
	SchemeBySignature(signature uint32) (*Scheme, bool)
	// SchemeByTitle returns the scheme of a human-assigned title.
	SchemeByTitle(title string) (*Scheme, bool)
}

// SchemeQuerier is asked for a scheme when no source lookup succeeds.
// Returning nil scheme and nil error means no scheme is available.
type SchemeQuerier interface {
	QueryScheme(path string) (*Scheme, error)
}

// SchemeQuerierFunc adapts a function to SchemeQuerier.
type SchemeQuerierFunc func(path string) (*Scheme, error)

// QueryScheme implements SchemeQuerier.
func (f SchemeQuerierFunc) QueryScheme(path string) (*Scheme, error) {
	return f(path)
}
