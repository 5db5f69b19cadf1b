package notification

import "log"

// Show displays a transient notification with the outcome of a capture.
// It never blocks the caller; platform popups run on their own goroutine.
func Show(title, text string) {
	displayText := text
	if len(text) > 200 {
		displayText = text[:200] + "..."
	}

	log.Printf("%s: %s", title, displayText)
	showPlatformPopup(title, displayText)
}
