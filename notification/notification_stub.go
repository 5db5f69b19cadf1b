//go:build !windows

package notification

// Popups are Windows-only; other platforms rely on the log line from Show.
func showPlatformPopup(title, text string) {}
