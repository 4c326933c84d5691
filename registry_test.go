// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

package gameres

import (
	"errors"
	"fmt"
	"testing"
)

// stubFormat decodes to its own tag when accept reports true.
type stubFormat struct {
	tag    string
	sigs   []uint32
	accept func(v *View) (bool, error)
	calls  int
}

func (f *stubFormat) Tag() string          { return f.tag }
func (f *stubFormat) Description() string  { return "stub " + f.tag }
func (f *stubFormat) Signatures() []uint32 { return f.sigs }

func (f *stubFormat) TryOpen(v *View) (string, error) {
	f.calls++
	ok, err := f.accept(v)
	if err != nil || !ok {
		return "", err
	}

	return f.tag, nil
}

func always(*View) (bool, error) { return true, nil }

func never(*View) (bool, error) { return false, nil }

func TestRegistryDeclarationOrder(t *testing.T) {
	t.Parallel()

	reg := NewRegistry[string](nil)
	first := &stubFormat{tag: "A", sigs: []uint32{0x41414141}, accept: always}
	second := &stubFormat{tag: "B", sigs: []uint32{0x41414141}, accept: always}
	reg.Register(first, second)

	v := NewBytesView("src", []byte("AAAAbody"))
	for range 3 {
		got, f, err := reg.Probe(v)
		if err != nil {
			t.Fatalf("Probe: %v", err)
		}
		if got != "A" || f.Tag() != "A" {
			t.Fatalf("Probe=%q via %v, want A", got, f)
		}
	}
	if second.calls != 0 {
		t.Fatalf("later candidate was tried %d times", second.calls)
	}

	if tf, ok := reg.ByTag("B"); !ok || tf != Format[string](second) {
		t.Fatal("ByTag did not return registered format")
	}
	if len(reg.Formats()) != 2 {
		t.Fatalf("len(Formats)=%d, want 2", len(reg.Formats()))
	}
}

func TestRegistryWildcardFallback(t *testing.T) {
	t.Parallel()

	exact := &stubFormat{tag: "EXACT", sigs: []uint32{0x41414141}, accept: never}
	wild := &stubFormat{tag: "WILD", accept: always}

	reg := NewRegistry[string](nil)
	reg.Register(exact, wild)
	if got := reg.Lookup(WildcardSignature); len(got) != 1 || got[0].Tag() != "WILD" {
		t.Fatalf("format without signatures must land in wildcard bucket: %v", got)
	}

	got, _, err := reg.Probe(NewBytesView("src", []byte("AAAA")))
	if err != nil || got != "WILD" {
		t.Fatalf("Probe=(%q, %v), want WILD", got, err)
	}
	if exact.calls != 1 {
		t.Fatalf("exact candidate calls=%d, want 1", exact.calls)
	}

	// A zero signature probes the wildcard bucket exactly once.
	wild.accept = never
	wild.calls = 0
	got, f, err := reg.Probe(NewBytesView("zero", []byte{0, 0, 0, 0, 1}))
	if err != nil || got != "" || f != nil {
		t.Fatalf("Probe zero=(%q, %v, %v), want not recognized", got, f, err)
	}
	if wild.calls != 1 {
		t.Fatalf("wildcard calls=%d, want 1", wild.calls)
	}
}

func TestRegistrySwallowsSoftFailures(t *testing.T) {
	t.Parallel()

	panicking := &stubFormat{tag: "PANIC", sigs: []uint32{0x41414141}, accept: func(*View) (bool, error) {
		panic("index out of range")
	}}
	failing := &stubFormat{tag: "FAIL", sigs: []uint32{0x41414141}, accept: func(*View) (bool, error) {
		return false, errors.New("truncated header")
	}}
	ok := &stubFormat{tag: "OK", sigs: []uint32{0x41414141}, accept: always}

	reg := NewRegistry[string](nil)
	reg.Register(panicking, failing, ok)

	got, f, err := reg.Probe(NewBytesView("src", []byte("AAAA")))
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if got != "OK" || f.Tag() != "OK" {
		t.Fatalf("Probe=%q, want OK", got)
	}
}

func TestRegistryReportsHardErrorsWhenNothingOpens(t *testing.T) {
	t.Parallel()

	for _, hard := range []error{ErrMalformedIndex, ErrUnknownEncryptionScheme, ErrVolume} {
		t.Run(hard.Error(), func(t *testing.T) {
			t.Parallel()

			broken := &stubFormat{tag: "HARD", sigs: []uint32{0x41414141}, accept: func(*View) (bool, error) {
				return false, fmt.Errorf("%w: entry 3", hard)
			}}
			second := &stubFormat{tag: "SECOND", sigs: []uint32{0x41414141}, accept: func(*View) (bool, error) {
				return false, fmt.Errorf("%w: other", ErrVolume)
			}}
			next := &stubFormat{tag: "NEXT", sigs: []uint32{0x41414141}, accept: never}
			wild := &stubFormat{tag: "WILD", accept: never}

			reg := NewRegistry[string](nil)
			reg.Register(broken, second, next, wild)

			_, f, err := reg.Probe(NewBytesView("src", []byte("AAAA")))
			if !errors.Is(err, hard) {
				t.Fatalf("expected %v, got %v", hard, err)
			}
			if f == nil || f.Tag() != "HARD" {
				t.Fatalf("first failing format not reported: %v", f)
			}
			if next.calls != 1 || wild.calls != 1 {
				t.Fatalf("later candidates calls=(%d, %d), want (1, 1)", next.calls, wild.calls)
			}
		})
	}
}

func TestRegistryHardErrorIsNotMineForThatCandidate(t *testing.T) {
	t.Parallel()

	scheme := &stubFormat{tag: "A", accept: func(*View) (bool, error) {
		return false, ErrUnknownEncryptionScheme
	}}
	structural := &stubFormat{tag: "B", accept: always}

	reg := NewRegistry[string](nil)
	reg.Register(scheme, structural)

	got, f, err := reg.Probe(NewBytesView("bgm.paz", []byte("BBBBbody")))
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if got != "B" || f.Tag() != "B" {
		t.Fatalf("Probe=%q via %v, want B", got, f)
	}
	if scheme.calls != 1 {
		t.Fatalf("failing candidate calls=%d, want 1", scheme.calls)
	}

	exact := &stubFormat{tag: "EXACT", sigs: []uint32{0x42424242}, accept: func(*View) (bool, error) {
		return false, ErrMalformedIndex
	}}
	reg = NewRegistry[string](nil)
	reg.Register(exact, structural)

	got, _, err = reg.Probe(NewBytesView("src", []byte("BBBBbody")))
	if err != nil || got != "B" {
		t.Fatalf("wildcard after hard exact: (%q, %v), want B", got, err)
	}
}

func TestIsHard(t *testing.T) {
	t.Parallel()

	if IsHard(nil) || IsHard(ErrUnknownFormat) || IsHard(ErrOutOfRange) {
		t.Fatal("soft error classified as hard")
	}
	if !IsHard(fmt.Errorf("wrap: %w", ErrMalformedIndex)) {
		t.Fatal("wrapped ErrMalformedIndex not classified as hard")
	}
}

func TestRegistryNilView(t *testing.T) {
	t.Parallel()

	if _, _, err := NewRegistry[string](nil).Probe(nil); !errors.Is(err, ErrNilReader) {
		t.Fatalf("expected ErrNilReader, got %v", err)
	}
}
