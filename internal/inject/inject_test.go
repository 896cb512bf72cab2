// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package inject

import (
	"fmt"
	"reflect"
	"testing"
)

// fakeBackend records every call it receives, in order, so tests can assert
// on the exact interleaving of text and key events.
type fakeBackend struct {
	calls       []string
	clipboard   string
	failKeys    map[string]bool
	failKeyOnce map[string]bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{failKeys: map[string]bool{}, failKeyOnce: map[string]bool{}}
}

func (b *fakeBackend) InjectText(text string) error {
	b.calls = append(b.calls, "type:"+text)
	return nil
}

func (b *fakeBackend) SendKey(name string) error {
	if b.failKeys[name] {
		return fmt.Errorf("synthetic failure for key %s", name)
	}
	if b.failKeyOnce[name] {
		b.failKeyOnce[name] = false
		return fmt.Errorf("synthetic transient failure for key %s", name)
	}
	b.calls = append(b.calls, "key:"+name)
	return nil
}

func (b *fakeBackend) SetClipboard(text string) error {
	b.clipboard = text
	b.calls = append(b.calls, "clip:"+text)
	return nil
}

func (b *fakeBackend) GetClipboard() (string, error) {
	return b.clipboard, nil
}

func TestInjectorInject_KeystrokeNoMarkers(t *testing.T) {
	backend := newFakeBackend()
	inj := New(backend, MethodKeystroke, 0)

	if err := inj.Inject("hello world"); err != nil {
		t.Fatalf("Inject returned error: %v", err)
	}
	want := []string{"type:hello world"}
	if !reflect.DeepEqual(backend.calls, want) {
		t.Errorf("calls = %v, want %v", backend.calls, want)
	}
}

func TestInjectorInject_KeystrokeWithMarkers(t *testing.T) {
	backend := newFakeBackend()
	inj := New(backend, MethodKeystroke, 0)

	if err := inj.Inject("hello<KEY:Return>world"); err != nil {
		t.Fatalf("Inject returned error: %v", err)
	}
	want := []string{"type:hello", "key:Return", "type:world"}
	if !reflect.DeepEqual(backend.calls, want) {
		t.Errorf("calls = %v, want %v", backend.calls, want)
	}
}

func TestInjectorInject_ClipboardMethodInterleavesKeyEvents(t *testing.T) {
	backend := newFakeBackend()
	backend.clipboard = "previous clipboard contents"
	inj := New(backend, MethodClipboard, 0)

	if err := inj.Inject("first<KEY:Tab>second<KEY:Return>"); err != nil {
		t.Fatalf("Inject returned error: %v", err)
	}

	// Every marker must produce a SendKey call between clipboard pastes --
	// it must never be silently dropped by the clipboard path.
	want := []string{
		"clip:first", "key:paste",
		"key:Tab",
		"clip:second", "key:paste",
		"key:Return",
		"clip:previous clipboard contents",
	}
	if !reflect.DeepEqual(backend.calls, want) {
		t.Errorf("calls = %v, want %v", backend.calls, want)
	}
}

func TestInjectorInject_ClipboardRestoresPriorContents(t *testing.T) {
	backend := newFakeBackend()
	backend.clipboard = "what the user had copied"
	inj := New(backend, MethodClipboard, 0)

	if err := inj.Inject("just text"); err != nil {
		t.Fatalf("Inject returned error: %v", err)
	}
	if backend.clipboard != "what the user had copied" {
		t.Errorf("clipboard after Inject = %q, want restored prior contents %q",
			backend.clipboard, "what the user had copied")
	}
}

func TestInjectorInject_LongTextFallsBackToClipboard(t *testing.T) {
	backend := newFakeBackend()
	inj := New(backend, MethodKeystroke, 0)

	long := make([]byte, clipboardFallbackThreshold+1)
	for i := range long {
		long[i] = 'a'
	}
	if err := inj.Inject(string(long)); err != nil {
		t.Fatalf("Inject returned error: %v", err)
	}
	if len(backend.calls) == 0 || backend.calls[0][:5] != "clip:" {
		t.Errorf("expected the over-threshold text to go via clipboard, calls = %v", backend.calls)
	}
}

func TestInjectorInject_KeystrokeFailureFallsBackToClipboard(t *testing.T) {
	backend := newFakeBackend()
	backend.failKeyOnce["Return"] = true
	inj := New(backend, MethodKeystroke, 0)

	if err := inj.Inject("hi<KEY:Return>"); err != nil {
		t.Fatalf("Inject returned error: %v", err)
	}
	// The keystroke attempt fails on the key event; the fallback clipboard
	// pass should still deliver both the literal text and the key event.
	found := false
	for _, c := range backend.calls {
		if c == "clip:hi" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a clipboard fallback call, calls = %v", backend.calls)
	}
}

func TestInjectorInject_UnsupportedKeyMarkerErrors(t *testing.T) {
	backend := newFakeBackend()
	inj := New(backend, MethodKeystroke, 0)

	err := inj.injectViaKeystroke("go<KEY:Nonsense>")
	if err == nil {
		t.Fatal("expected an error for an unsupported key marker")
	}
}

func TestSplitMarkers(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  []segment
	}{
		{
			name:  "no markers",
			input: "plain text",
			want:  []segment{{text: "plain text"}},
		},
		{
			name:  "leading marker",
			input: "<KEY:Tab>after",
			want:  []segment{{text: "Tab", isKey: true}, {text: "after"}},
		},
		{
			name:  "trailing marker",
			input: "before<KEY:Tab>",
			want:  []segment{{text: "before"}, {text: "Tab", isKey: true}},
		},
		{
			name:  "adjacent markers with no text between",
			input: "<KEY:Tab><KEY:Return>",
			want:  []segment{{text: "Tab", isKey: true}, {text: "Return", isKey: true}},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := splitMarkers(tc.input)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("splitMarkers(%q) = %#v, want %#v", tc.input, got, tc.want)
			}
		})
	}
}
