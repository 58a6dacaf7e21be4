package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	require.NotNil(t, km)
	assert.Contains(t, km.Quit.Keys(), "ctrl+c")
	assert.Contains(t, km.Quit.Keys(), "esc")
	assert.Equal(t, []string{"enter"}, km.Send.Keys())
	assert.Equal(t, []string{"ctrl+l"}, km.Clear.Keys())
}

func TestKeyMap_Help(t *testing.T) {
	km := DefaultKeyMap()

	assert.Len(t, km.ShortHelp(), 3)

	full := km.FullHelp()
	require.Len(t, full, 2)
	total := 0
	for _, group := range full {
		total += len(group)
	}
	assert.Equal(t, 6, total)
}

func TestMatches(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		key  string
		want bool
	}{
		{"enter", true},
		{"esc", false},
		{"a", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.key, km.Send))
		})
	}

	assert.True(t, Matches("esc", km.Quit))
	assert.True(t, Matches("ctrl+c", km.Quit))
}
