// Package keymap normalizes raw key identifiers from recorded telemetry
// into a canonical key representation.
//
// Session logs arrive with one of two raw key vocabularies depending on
// which recorder produced them:
//
//   - recorder vocabulary: "Key."-prefixed named keys plus bare literal
//     characters (e.g. "Key.ctrl_l", "Key.enter", "a", "/")
//   - browser vocabulary: DOM KeyboardEvent.key names plus literal
//     characters (e.g. "Control", "ArrowLeft", "Enter", "A")
//
// Both vocabularies resolve to the same closed canonical key set. An
// identifier present in neither vocabulary passes through as opaque
// literal text rather than failing, so downstream consumers see the raw
// id instead of losing the event.
package keymap

import "unicode"

// Canonical names for keys that are not plain printable characters.
const (
	KeyCtrl        = "ctrl"
	KeyShift       = "shift"
	KeyAlt         = "alt"
	KeyMeta        = "meta"
	KeyEnter       = "enter"
	KeyEsc         = "esc"
	KeyTab         = "tab"
	KeySpace       = "space"
	KeyBackspace   = "backspace"
	KeyDelete      = "delete"
	KeyUp          = "up"
	KeyDown        = "down"
	KeyLeft        = "left"
	KeyRight       = "right"
	KeyHome        = "home"
	KeyEnd         = "end"
	KeyPageUp      = "pageup"
	KeyPageDown    = "pagedown"
	KeyInsert      = "insert"
	KeyCapsLock    = "capslock"
	KeyNumLock     = "numlock"
	KeyPrintScreen = "printscreen"
	KeyPause       = "pause"
	KeyMenu        = "menu"
)

// Key is the canonical, vocabulary-independent representation of a key.
// Known is false when the raw identifier matched neither vocabulary; in
// that case Name holds the raw id verbatim.
type Key struct {
	Name  string
	Known bool
}

// recorderKeys maps "Key."-prefixed identifiers to canonical names.
// Left/right modifier variants collapse onto the base modifier.
var recorderKeys = map[string]string{
	"Key.ctrl":         KeyCtrl,
	"Key.ctrl_l":       KeyCtrl,
	"Key.ctrl_r":       KeyCtrl,
	"Key.shift":        KeyShift,
	"Key.shift_l":      KeyShift,
	"Key.shift_r":      KeyShift,
	"Key.alt":          KeyAlt,
	"Key.alt_l":        KeyAlt,
	"Key.alt_r":        KeyAlt,
	"Key.alt_gr":       KeyAlt,
	"Key.cmd":          KeyMeta,
	"Key.cmd_l":        KeyMeta,
	"Key.cmd_r":        KeyMeta,
	"Key.enter":        KeyEnter,
	"Key.esc":          KeyEsc,
	"Key.tab":          KeyTab,
	"Key.space":        KeySpace,
	"Key.backspace":    KeyBackspace,
	"Key.delete":       KeyDelete,
	"Key.up":           KeyUp,
	"Key.down":         KeyDown,
	"Key.left":         KeyLeft,
	"Key.right":        KeyRight,
	"Key.home":         KeyHome,
	"Key.end":          KeyEnd,
	"Key.page_up":      KeyPageUp,
	"Key.page_down":    KeyPageDown,
	"Key.insert":       KeyInsert,
	"Key.caps_lock":    KeyCapsLock,
	"Key.num_lock":     KeyNumLock,
	"Key.print_screen": KeyPrintScreen,
	"Key.pause":        KeyPause,
	"Key.menu":         KeyMenu,
}

// browserKeys maps DOM KeyboardEvent.key names to canonical names.
var browserKeys = map[string]string{
	"Control":     KeyCtrl,
	"Shift":       KeyShift,
	"Alt":         KeyAlt,
	"AltGraph":    KeyAlt,
	"Meta":        KeyMeta,
	"OS":          KeyMeta,
	"Enter":       KeyEnter,
	"Escape":      KeyEsc,
	"Tab":         KeyTab,
	" ":           KeySpace,
	"Spacebar":    KeySpace,
	"Backspace":   KeyBackspace,
	"Delete":      KeyDelete,
	"ArrowUp":     KeyUp,
	"ArrowDown":   KeyDown,
	"ArrowLeft":   KeyLeft,
	"ArrowRight":  KeyRight,
	"Home":        KeyHome,
	"End":         KeyEnd,
	"PageUp":      KeyPageUp,
	"PageDown":    KeyPageDown,
	"Insert":      KeyInsert,
	"CapsLock":    KeyCapsLock,
	"NumLock":     KeyNumLock,
	"PrintScreen": KeyPrintScreen,
	"Pause":       KeyPause,
	"ContextMenu": KeyMenu,
}

// shiftedSymbols maps unshifted printable keys to their shifted
// character on a US layout.
var shiftedSymbols = map[string]string{
	"1": "!", "2": "@", "3": "#", "4": "$", "5": "%",
	"6": "^", "7": "&", "8": "*", "9": "(", "0": ")",
	"-": "_", "=": "+", "[": "{", "]": "}", "\\": "|",
	";": ":", "'": "\"", ",": "<", ".": ">", "/": "?",
	"`": "~",
}

func init() {
	for i := 1; i <= 12; i++ {
		name := "f" + itoa(i)
		recorderKeys["Key."+name] = name
		browserKeys["F"+itoa(i)] = name
	}
}

// itoa avoids pulling strconv into the hot lookup tables for 1..12.
func itoa(n int) string {
	if n < 10 {
		return string(rune('0' + n))
	}
	return "1" + string(rune('0'+n-10))
}

// Normalize resolves a raw key identifier through both vocabulary tables.
// Literal characters normalize letters to lower case regardless of the
// casing convention the source vocabulary used. Unrecognized identifiers
// pass through with Known set to false.
func Normalize(raw string) Key {
	if name, ok := recorderKeys[raw]; ok {
		return Key{Name: name, Known: true}
	}
	if name, ok := browserKeys[raw]; ok {
		return Key{Name: name, Known: true}
	}

	runes := []rune(raw)
	if len(runes) == 1 && unicode.IsPrint(runes[0]) {
		r := runes[0]
		if unicode.IsLetter(r) {
			r = unicode.ToLower(r)
		}
		return Key{Name: string(r), Known: true}
	}

	return Key{Name: raw, Known: false}
}

// IsModifier reports whether the key is a modifier (ctrl, shift, alt,
// meta).
func (k Key) IsModifier() bool {
	if !k.Known {
		return false
	}
	switch k.Name {
	case KeyCtrl, KeyShift, KeyAlt, KeyMeta:
		return true
	}
	return false
}

// IsComboOnly reports whether the key can only contribute to a hotkey
// chord. Shift is excluded: shift alone changes the case of typed text
// rather than forming a combo.
func (k Key) IsComboOnly() bool {
	return k.IsModifier() && k.Name != KeyShift
}

// specialKeys are the named non-printable keys that emit a standalone
// hotkey action when pressed without modifiers.
var specialKeys = map[string]bool{
	KeyEnter: true, KeyEsc: true, KeyTab: true,
	KeyBackspace: true, KeyDelete: true,
	KeyUp: true, KeyDown: true, KeyLeft: true, KeyRight: true,
	KeyHome: true, KeyEnd: true, KeyPageUp: true, KeyPageDown: true,
	KeyInsert: true, KeyCapsLock: true, KeyNumLock: true,
	KeyPrintScreen: true, KeyPause: true, KeyMenu: true,
}

func init() {
	for i := 1; i <= 12; i++ {
		specialKeys["f"+itoa(i)] = true
	}
}

// IsSpecial reports whether the key is a named non-printable key such as
// enter, an arrow key, or a function key. Modifiers are not special.
func (k Key) IsSpecial() bool {
	return k.Known && specialKeys[k.Name]
}

// Symbol returns the printable string the key produces with the given
// shift state, and whether the key produces one at all. Letters are
// cased by shift; digits and punctuation go through the shifted-symbol
// table. Unknown keys yield their raw identifier so recorded text is
// never silently dropped.
func Symbol(k Key, shift bool) (string, bool) {
	if !k.Known {
		return k.Name, true
	}
	if k.IsModifier() || k.IsSpecial() {
		return "", false
	}
	if k.Name == KeySpace {
		return " ", true
	}

	runes := []rune(k.Name)
	if len(runes) != 1 {
		return "", false
	}
	r := runes[0]
	if unicode.IsLetter(r) {
		if shift {
			return string(unicode.ToUpper(r)), true
		}
		return string(unicode.ToLower(r)), true
	}
	if shift {
		if s, ok := shiftedSymbols[k.Name]; ok {
			return s, true
		}
	}
	return k.Name, true
}
