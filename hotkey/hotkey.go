package hotkey

import (
	"log"
	"strconv"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
)

// Listen registers a global hotkey and invokes callback every time the full
// combination is pressed. The callback should only post into a channel; the
// capture workflow itself runs on the event loop.
func Listen(hotkeyConfig string, callback func()) {
	keys := parseHotkey(hotkeyConfig)
	log.Printf("Parsed hotkey configuration %q: %v", hotkeyConfig, keys)

	type keyState struct {
		name     string
		rawcodes []uint16
		pressed  bool
	}

	var keyStates []keyState
	for _, keyName := range keys {
		rawcodes := keyNameToRawcodes(keyName)
		if len(rawcodes) == 0 {
			log.Printf("ERROR: cannot map key %q to rawcodes, hotkey may not work", keyName)
			continue
		}
		keyStates = append(keyStates, keyState{name: keyName, rawcodes: rawcodes})
	}
	if len(keyStates) == 0 {
		log.Printf("ERROR: no valid keys in hotkey configuration %q", hotkeyConfig)
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in hotkey goroutine: %v", r)
			}
		}()

		evChan := gohook.Start()
		if evChan == nil {
			log.Printf("ERROR: gohook.Start() returned nil channel")
			return
		}

		var mu sync.Mutex
		matches := func(rawcode uint16, ks *keyState) bool {
			for _, rc := range ks.rawcodes {
				if rc == rawcode {
					return true
				}
			}
			return false
		}

		for ev := range evChan {
			switch ev.Kind {
			case gohook.KeyDown, gohook.KeyHold:
				mu.Lock()
				for i := range keyStates {
					if matches(ev.Rawcode, &keyStates[i]) {
						keyStates[i].pressed = true
					}
				}
				allPressed := true
				for i := range keyStates {
					if !keyStates[i].pressed {
						allPressed = false
						break
					}
				}
				if allPressed {
					log.Printf("Hotkey %q activated", hotkeyConfig)
					for i := range keyStates {
						keyStates[i].pressed = false
					}
					mu.Unlock()
					if callback != nil {
						callback()
					}
					continue
				}
				mu.Unlock()
			case gohook.KeyUp:
				mu.Lock()
				for i := range keyStates {
					if matches(ev.Rawcode, &keyStates[i]) {
						keyStates[i].pressed = false
					}
				}
				mu.Unlock()
			}
		}
		log.Printf("Hotkey event channel closed")
	}()
}

// parseHotkey converts a string like "Ctrl+Alt+S" or "PrintScreen" into
// normalized key names.
func parseHotkey(hotkeyConfig string) []string {
	var keys []string
	for _, part := range strings.Split(strings.ToLower(hotkeyConfig), "+") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		switch part {
		case "win", "cmd", "super":
			keys = append(keys, "cmd")
		default:
			keys = append(keys, part)
		}
	}
	return keys
}

// keyNameToRawcodes maps a key name to Windows virtual-key rawcodes;
// modifiers return both left and right variants.
func keyNameToRawcodes(keyName string) []uint16 {
	keyName = strings.ToLower(strings.TrimSpace(keyName))

	switch keyName {
	case "ctrl":
		return []uint16{162, 163} // VK_LCONTROL, VK_RCONTROL
	case "alt":
		return []uint16{164, 165} // VK_LMENU, VK_RMENU
	case "shift":
		return []uint16{160, 161} // VK_LSHIFT, VK_RSHIFT
	case "cmd":
		return []uint16{91, 92} // VK_LWIN, VK_RWIN
	case "printscreen", "prtsc", "snapshot":
		return []uint16{44} // VK_SNAPSHOT
	case "esc", "escape":
		return []uint16{27}
	case "space":
		return []uint16{32}
	case "tab":
		return []uint16{9}
	case "enter", "return":
		return []uint16{13}
	case "insert":
		return []uint16{45}
	case "delete":
		return []uint16{46}
	case "home":
		return []uint16{36}
	case "end":
		return []uint16{35}
	case "pageup":
		return []uint16{33}
	case "pagedown":
		return []uint16{34}
	}

	// Letters a-z map onto VK_A..VK_Z, digits onto VK_0..VK_9.
	if len(keyName) == 1 {
		c := keyName[0]
		if c >= 'a' && c <= 'z' {
			return []uint16{uint16(c - 'a' + 65)}
		}
		if c >= '0' && c <= '9' {
			return []uint16{uint16(c - '0' + 48)}
		}
	}

	// Function keys f1..f24 map onto VK_F1..VK_F24.
	if strings.HasPrefix(keyName, "f") {
		if n, err := strconv.Atoi(keyName[1:]); err == nil && n >= 1 && n <= 24 {
			return []uint16{uint16(111 + n)}
		}
	}

	return nil
}
