package cli

import (
	"strings"
	"testing"
)

func TestGenerateTemporaryPasswordLength(t *testing.T) {
	cases := []struct {
		name      string
		requested int
		want      int
	}{
		{name: "requested length kept", requested: 12, want: 12},
		{name: "short request raised to floor", requested: 4, want: 8},
		{name: "zero request raised to floor", requested: 0, want: 8},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			password, err := generateTemporaryPassword(tc.requested)
			if err != nil {
				t.Fatalf("generateTemporaryPassword(%d): %v", tc.requested, err)
			}
			if len(password) != tc.want {
				t.Fatalf("got %d characters, want %d", len(password), tc.want)
			}
		})
	}
}

func TestGenerateTemporaryPasswordAvoidsAmbiguousCharacters(t *testing.T) {
	for i := 0; i < 20; i++ {
		password, err := generateTemporaryPassword(16)
		if err != nil {
			t.Fatalf("generateTemporaryPassword: %v", err)
		}
		if strings.ContainsAny(password, "Il1O0") {
			t.Fatalf("password %q contains an ambiguous character", password)
		}
	}
}
