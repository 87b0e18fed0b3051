package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_RecorderVocabulary(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Key.ctrl", KeyCtrl},
		{"Key.ctrl_l", KeyCtrl},
		{"Key.ctrl_r", KeyCtrl},
		{"Key.shift_r", KeyShift},
		{"Key.alt_gr", KeyAlt},
		{"Key.cmd", KeyMeta},
		{"Key.cmd_r", KeyMeta},
		{"Key.enter", KeyEnter},
		{"Key.esc", KeyEsc},
		{"Key.space", KeySpace},
		{"Key.page_down", KeyPageDown},
		{"Key.print_screen", KeyPrintScreen},
		{"Key.f1", "f1"},
		{"Key.f12", "f12"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			k := Normalize(tt.raw)
			require.True(t, k.Known)
			assert.Equal(t, tt.want, k.Name)
		})
	}
}

func TestNormalize_BrowserVocabulary(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Control", KeyCtrl},
		{"Shift", KeyShift},
		{"AltGraph", KeyAlt},
		{"Meta", KeyMeta},
		{"OS", KeyMeta},
		{"Enter", KeyEnter},
		{"Escape", KeyEsc},
		{" ", KeySpace},
		{"Spacebar", KeySpace},
		{"ArrowLeft", KeyLeft},
		{"PageUp", KeyPageUp},
		{"ContextMenu", KeyMenu},
		{"F5", "f5"},
		{"F11", "f11"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			k := Normalize(tt.raw)
			require.True(t, k.Known)
			assert.Equal(t, tt.want, k.Name)
		})
	}
}

func TestNormalize_Characters(t *testing.T) {
	// Letters lower-case regardless of the vocabulary's casing.
	assert.Equal(t, Key{Name: "a", Known: true}, Normalize("a"))
	assert.Equal(t, Key{Name: "a", Known: true}, Normalize("A"))
	assert.Equal(t, Key{Name: "7", Known: true}, Normalize("7"))
	assert.Equal(t, Key{Name: "/", Known: true}, Normalize("/"))
	assert.Equal(t, Key{Name: ";", Known: true}, Normalize(";"))
}

func TestNormalize_UnknownPassesThrough(t *testing.T) {
	k := Normalize("XF86AudioMute")
	assert.False(t, k.Known)
	assert.Equal(t, "XF86AudioMute", k.Name)

	k = Normalize("Key.media_play_pause")
	assert.False(t, k.Known)
	assert.Equal(t, "Key.media_play_pause", k.Name)
}

func TestKeyClassification(t *testing.T) {
	ctrl := Normalize("Key.ctrl_l")
	assert.True(t, ctrl.IsModifier())
	assert.True(t, ctrl.IsComboOnly())
	assert.False(t, ctrl.IsSpecial())

	shift := Normalize("Shift")
	assert.True(t, shift.IsModifier())
	assert.False(t, shift.IsComboOnly(), "shift alone is a casing key, not a combo")

	enter := Normalize("Enter")
	assert.False(t, enter.IsModifier())
	assert.True(t, enter.IsSpecial())

	f3 := Normalize("F3")
	assert.True(t, f3.IsSpecial())

	letter := Normalize("q")
	assert.False(t, letter.IsModifier())
	assert.False(t, letter.IsSpecial())

	unknown := Normalize("Bogus")
	assert.False(t, unknown.IsModifier())
	assert.False(t, unknown.IsSpecial())
}

func TestSymbol(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		shift bool
		want  string
		ok    bool
	}{
		{"letter unshifted", "a", false, "a", true},
		{"letter shifted", "a", true, "A", true},
		{"uppercase raw unshifted", "A", false, "a", true},
		{"digit unshifted", "2", false, "2", true},
		{"digit shifted", "2", true, "@", true},
		{"punct shifted", "/", true, "?", true},
		{"punct unshifted", "/", false, "/", true},
		{"backtick shifted", "`", true, "~", true},
		{"space", "Key.space", false, " ", true},
		{"modifier has no symbol", "Key.ctrl", false, "", false},
		{"special has no symbol", "Enter", false, "", false},
		{"function key has no symbol", "F2", true, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Symbol(Normalize(tt.raw), tt.shift)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSymbol_UnknownKeyYieldsLiteral(t *testing.T) {
	got, ok := Symbol(Normalize("XF86AudioMute"), false)
	require.True(t, ok)
	assert.Equal(t, "XF86AudioMute", got)
}
