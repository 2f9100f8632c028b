package security

import (
	"errors"
	"strings"
	"testing"
)

func TestRandomString(t *testing.T) {
	cases := []struct {
		name     string
		length   int
		alphabet string
		wantErr  error
	}{
		{name: "zero length is empty", length: 0, alphabet: "abc"},
		{name: "single character alphabet", length: 5, alphabet: "x"},
		{name: "typical code", length: 8, alphabet: "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"},
		{name: "negative length", length: -1, alphabet: "abc", wantErr: errNegativeLength},
		{name: "empty alphabet", length: 3, alphabet: "", wantErr: errEmptyAlphabet},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := RandomString(tc.length, tc.alphabet)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("error = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("RandomString(%d, %q): %v", tc.length, tc.alphabet, err)
			}
			if len(got) != tc.length {
				t.Fatalf("got %d characters, want %d", len(got), tc.length)
			}
			for _, r := range got {
				if !strings.ContainsRune(tc.alphabet, r) {
					t.Fatalf("character %q is outside the alphabet %q", r, tc.alphabet)
				}
			}
		})
	}
}

func TestRandomStringVaries(t *testing.T) {
	const alphabet = "abcdefghijklmnopqrstuvwxyz"
	seen := make(map[string]struct{})
	for i := 0; i < 10; i++ {
		value, err := RandomString(16, alphabet)
		if err != nil {
			t.Fatalf("RandomString: %v", err)
		}
		seen[value] = struct{}{}
	}
	if len(seen) < 2 {
		t.Fatalf("expected distinct values across draws, got %d unique", len(seen))
	}
}

func TestInviteCodeShape(t *testing.T) {
	code, err := InviteCode()
	if err != nil {
		t.Fatalf("InviteCode: %v", err)
	}
	if len(code) != 8 {
		t.Fatalf("code %q has length %d, want 8", code, len(code))
	}
	for _, r := range code {
		if !strings.ContainsRune(inviteCodeAlphabet, r) {
			t.Fatalf("code %q contains %q outside the invite alphabet", code, r)
		}
	}
}
