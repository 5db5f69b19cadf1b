package hotkey

import "testing"

func TestParseHotkey(t *testing.T) {
	keys := parseHotkey("Ctrl+Alt+S")
	if len(keys) != 3 || keys[0] != "ctrl" || keys[1] != "alt" || keys[2] != "s" {
		t.Fatalf("unexpected parse result: %v", keys)
	}

	keys = parseHotkey("PrintScreen")
	if len(keys) != 1 || keys[0] != "printscreen" {
		t.Fatalf("unexpected parse result: %v", keys)
	}

	keys = parseHotkey("Win+Shift+X")
	if len(keys) != 3 || keys[0] != "cmd" {
		t.Fatalf("win should normalize to cmd: %v", keys)
	}
}

func TestKeyNameToRawcodes(t *testing.T) {
	if got := keyNameToRawcodes("printscreen"); len(got) != 1 || got[0] != 44 {
		t.Fatalf("printscreen should map to VK_SNAPSHOT (44), got %v", got)
	}
	if got := keyNameToRawcodes("ctrl"); len(got) != 2 {
		t.Fatalf("ctrl should map to both control variants, got %v", got)
	}
	if got := keyNameToRawcodes("a"); len(got) != 1 || got[0] != 65 {
		t.Fatalf("a should map to 65, got %v", got)
	}
	if got := keyNameToRawcodes("9"); len(got) != 1 || got[0] != 57 {
		t.Fatalf("9 should map to 57, got %v", got)
	}
	if got := keyNameToRawcodes("f12"); len(got) != 1 || got[0] != 123 {
		t.Fatalf("f12 should map to 123, got %v", got)
	}
	if got := keyNameToRawcodes("nosuchkey"); got != nil {
		t.Fatalf("unknown key should map to nil, got %v", got)
	}
}
