package abbrev

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShort(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: "---"},
		{name: "whitespace only", in: "   ", want: "---"},
		{name: "diacritics folded", in: "Žlutí Ďáblové", want: "ZLU"},
		{name: "two letters padded", in: "AB", want: "AB-"},
		{name: "single letter", in: "x", want: "X--"},
		{name: "digits and symbols skipped", in: "1. FC Brno", want: "FCB"},
		{name: "stops after three", in: "Sparta Praha", want: "SPA"},
		{name: "all non letters", in: "42 / 7", want: "---"},
		{name: "lowercase diacritics", in: "řeporyje", want: "REP"},
		{name: "multibyte does not split runes", in: "Čáslav", want: "CAS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Short(tt.in))
		})
	}
}

func TestShortShape(t *testing.T) {
	// Whatever goes in, out comes exactly three of [A-Z-].
	inputs := []string{"", "a", "žžž", "FK Ústí nad Labem", "∆∆∆", "B 52s", "---"}
	for _, in := range inputs {
		got := Short(in)
		require.Len(t, got, 3, "input %q", in)
		for _, r := range got {
			require.True(t, (r >= 'A' && r <= 'Z') || r == '-', "input %q produced %q", in, got)
		}
	}
}
