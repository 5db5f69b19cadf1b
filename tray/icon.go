package tray

// getIcon returns the tray icon image. systray falls back to a default
// placeholder when nil, which is what ships for now.
func getIcon() []byte {
	return nil
}
