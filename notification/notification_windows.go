//go:build windows

package notification

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	mbOK              = 0x00000000
	mbIconInformation = 0x00000040
	mbSetForeground   = 0x00010000
)

var (
	user32          = windows.NewLazySystemDLL("user32.dll")
	procMessageBoxW = user32.NewProc("MessageBoxW")
)

func showPlatformPopup(title, text string) {
	go func() {
		titlePtr, err := syscall.UTF16PtrFromString(title)
		if err != nil {
			return
		}
		textPtr, err := syscall.UTF16PtrFromString(text)
		if err != nil {
			return
		}
		procMessageBoxW.Call(
			0,
			uintptr(unsafe.Pointer(textPtr)),
			uintptr(unsafe.Pointer(titlePtr)),
			uintptr(mbOK|mbIconInformation|mbSetForeground),
		)
	}()
}
