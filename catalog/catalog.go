// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

// Package catalog assembles registries holding every built-in format.
package catalog

import (
	"io"
	"log/slog"

	"github.com/woozymasta/gameres"
	"github.com/woozymasta/gameres/audio"
	"github.com/woozymasta/gameres/paz"
	"github.com/woozymasta/gameres/pbo"
)

// Options configures the built-in formats.
type Options struct {
	// Logger is shared by registries and decoders; nil discards output.
	Logger *slog.Logger `json:"-" yaml:"-"`
	// PAZ configures the PAZ decoder. Its Logger defaults to Logger.
	PAZ paz.Options `json:"paz,omitzero" yaml:"paz,omitempty"`
	// PBO configures the PBO decoder. Its Logger defaults to Logger.
	PBO pbo.Options `json:"pbo,omitzero" yaml:"pbo,omitempty"`
}

// applyDefaults fills zero-valued options with defaults.
func (opts *Options) applyDefaults() {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.PAZ.Logger == nil {
		opts.PAZ.Logger = opts.Logger
	}
	if opts.PBO.Logger == nil {
		opts.PBO.Logger = opts.Logger
	}
}

// Archives returns a container registry with PBO and PAZ in declaration order.
func Archives(opts Options) *gameres.ArchiveRegistry {
	opts.applyDefaults()

	reg := gameres.NewArchiveRegistry(opts.Logger)
	reg.Register(
		pbo.New(opts.PBO),
		paz.New(opts.PAZ),
	)

	return reg
}

// Sounds returns a sound registry with WAV, OGG and VAW in declaration order.
func Sounds(logger *slog.Logger) *audio.Registry {
	reg := audio.NewRegistry(logger)
	wav := audio.NewWAV()
	ogg := audio.NewOGG()
	reg.Register(wav, ogg, audio.NewVAW(wav, ogg))

	return reg
}
