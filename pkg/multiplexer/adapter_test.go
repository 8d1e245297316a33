package multiplexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKeyName(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"ctrl+c", "ctrl+c", "C-c"},
		{"ctrl+c uppercase", "Ctrl+C", "C-c"},
		{"ctrl+d", "ctrl+d", "C-d"},
		{"esc alias", "esc", "Escape"},
		{"escape alias", "escape", "Escape"},
		{"shift+tab", "shift+tab", "BTab"},
		{"backtab", "backtab", "BTab"},
		{"enter", "enter", "Enter"},
		{"return", "return", "Enter"},
		{"tab", "tab", "Tab"},
		{"arrow up", "up", "Up"},
		{"arrow down", "down", "Down"},
		{"unknown passthrough", "F5", "F5"},
		{"native passthrough", "C-c", "C-c"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeKeyName(tc.in))
		})
	}
}
