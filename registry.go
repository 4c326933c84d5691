// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

package gameres

import (
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"sync"
)

// WildcardSignature is the bucket for formats without a fixed magic number.
const WildcardSignature uint32 = 0

// Format is the contract shared by every registered decoder.
// TryOpen returns a zero result with nil error when the source is not in this format.
type Format[T any] interface {
	// Tag is a stable short identifier, e.g. "PAZ".
	Tag() string
	// Description is a human-readable format name.
	Description() string
	// Signatures lists little-endian first-four-byte values this format is tried for.
	// WildcardSignature places the format in the fallback bucket.
	Signatures() []uint32
	// TryOpen decodes v or reports not-mine with a zero result and nil error.
	TryOpen(v *View) (T, error)
}

// Registry maps signatures to ordered decoder candidates.
// Registration order is preserved inside every bucket.
type Registry[T any] struct {
	// logger receives swallowed candidate errors.
	logger *slog.Logger
	// bySignature holds candidates per signature value.
	bySignature map[uint32][]Format[T]
	// formats keeps every registered format in declaration order.
	formats []Format[T]
	// mu guards registration against concurrent probes.
	mu sync.RWMutex
}

// NewRegistry returns an empty registry. A nil logger discards output.
func NewRegistry[T any](logger *slog.Logger) *Registry[T] {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Registry[T]{
		logger:      logger,
		bySignature: make(map[uint32][]Format[T]),
	}
}

// Register appends formats under every signature they declare.
func (r *Registry[T]) Register(formats ...Format[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range formats {
		r.formats = append(r.formats, f)
		sigs := f.Signatures()
		if len(sigs) == 0 {
			sigs = []uint32{WildcardSignature}
		}

		seen := make(map[uint32]struct{}, len(sigs))
		for _, sig := range sigs {
			if _, dup := seen[sig]; dup {
				continue
			}

			seen[sig] = struct{}{}
			r.bySignature[sig] = append(r.bySignature[sig], f)
		}
	}
}

// Formats returns registered formats in declaration order.
func (r *Registry[T]) Formats() []Format[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Format[T], len(r.formats))
	copy(out, r.formats)
	return out
}

// Lookup returns candidates registered for signature, in registration order.
func (r *Registry[T]) Lookup(signature uint32) []Format[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bucket := r.bySignature[signature]
	out := make([]Format[T], len(bucket))
	copy(out, bucket)
	return out
}

// ByTag returns the format registered with tag.
func (r *Registry[T]) ByTag(tag string) (Format[T], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, f := range r.formats {
		if f.Tag() == tag {
			return f, true
		}
	}

	return nil, false
}

// Probe returns the first successful decode of v and the format that produced it.
// Candidates under the exact signature are tried first; when none matches and the
// signature is non-zero, the wildcard bucket is tried once. A nil format with nil
// error means the source was not recognized. Candidate errors and panics are
// treated as not-mine for that candidate only. The first hard error (see IsHard)
// is returned unchanged, with its format, when no later candidate opens v.
func (r *Registry[T]) Probe(v *View) (T, Format[T], error) {
	var zero T
	if v == nil {
		return zero, nil, ErrNilReader
	}

	signature, err := v.Signature()
	if err != nil {
		return zero, nil, fmt.Errorf("read signature of %s: %w", v.Name(), err)
	}

	var (
		hardErr    error
		hardFormat Format[T]
	)
	for {
		for _, f := range r.Lookup(signature) {
			res, ok, err := r.try(f, v)
			if err != nil {
				if hardErr == nil {
					hardErr, hardFormat = err, f
				}
				continue
			}
			if ok {
				return res, f, nil
			}
		}

		if signature == WildcardSignature {
			break
		}

		signature = WildcardSignature
	}

	if hardErr != nil {
		return zero, hardFormat, hardErr
	}

	return zero, nil, nil
}

// try runs one candidate and converts soft errors and panics into not-mine.
func (r *Registry[T]) try(f Format[T], v *View) (res T, ok bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Debug("format candidate panicked", "format", f.Tag(), "source", v.Name(), "panic", p)
			var zero T
			res, ok, err = zero, false, nil
		}
	}()

	res, err = f.TryOpen(v)
	if err != nil {
		if IsHard(err) {
			r.logger.Debug("format candidate rejected source", "format", f.Tag(), "source", v.Name(), "err", err)
			return res, false, err
		}

		r.logger.Debug("format candidate failed", "format", f.Tag(), "source", v.Name(), "err", err)
		return res, false, nil
	}

	return res, !isZero(res), nil
}

// isZero reports whether a decoded result is the "not mine" value.
func isZero[T any](v T) bool {
	rv := reflect.ValueOf(any(v))
	if !rv.IsValid() {
		return true
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return rv.IsZero()
	}
}
