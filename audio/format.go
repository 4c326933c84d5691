// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

package audio

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/woozymasta/gameres"
)

// Format is a registered sound decoder. TryOpen takes ownership of the view on success.
type Format = gameres.Format[*Sound]

// Registry dispatches sources to sound decoders.
type Registry = gameres.Registry[*Sound]

// NewRegistry returns an empty sound registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return gameres.NewRegistry[*Sound](logger)
}

// Probe finds the sound format of v. A nil sound with nil error means unrecognized.
func Probe(reg *Registry, v *gameres.View) (*Sound, error) {
	snd, _, err := reg.Probe(v)
	return snd, err
}

// OpenSound opens path on fsys and probes it. The sound owns the file;
// on any failure the file is released.
func OpenSound(reg *Registry, fsys afero.Fs, path string) (*Sound, error) {
	v, err := gameres.OpenView(fsys, path)
	if err != nil {
		return nil, err
	}

	snd, err := Probe(reg, v)
	if err != nil {
		_ = v.Close()
		return nil, err
	}
	if snd == nil {
		_ = v.Close()
		return nil, fmt.Errorf("%w: %s", gameres.ErrUnknownFormat, path)
	}

	return snd, nil
}

// ReadSound buffers r in memory and probes the copy.
func ReadSound(reg *Registry, name string, r io.Reader) (*Sound, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	snd, err := Probe(reg, gameres.NewView(name, bytes.NewReader(data), int64(len(data))))
	if err != nil {
		return nil, err
	}
	if snd == nil {
		return nil, fmt.Errorf("%w: %s", gameres.ErrUnknownFormat, name)
	}

	return snd, nil
}

// OpenEntrySound reads an archive entry and probes it as a sound.
func OpenEntrySound(reg *Registry, arc gameres.Archive, e gameres.Entry) (*Sound, error) {
	rc, err := arc.OpenEntry(e)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	return ReadSound(reg, e.Name, rc)
}
