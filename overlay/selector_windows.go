//go:build windows

package overlay

import (
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"syscall"
	"time"
	"unsafe"

	"github.com/lxn/win"

	"github.com/Nebual/ncscreenier/frame"
)

// Overlay state shared with the window procedure. The overlay window runs a
// classic Win32 message loop on the calling goroutine, so only one selection
// can be live at a time; the event loop guarantees that.
var (
	overlayHwnd   win.HWND
	overlayFrame  *frame.Frame
	overlayOrigin image.Point // virtual-screen top-left, added to client coords
	tracker       Tracker
	crossCursor   win.HCURSOR
)

const selectionPenWidth = 3

// selectionColor is the classic blue border, as COLORREF (0x00BBGGRR).
const selectionColor = 0xFF0000

var (
	user32DLL                    = syscall.NewLazyDLL("user32.dll")
	procAllowSetForegroundWindow = user32DLL.NewProc("AllowSetForegroundWindow")
	gdi32DLL                     = syscall.NewLazyDLL("gdi32.dll")
	procCreatePen                = gdi32DLL.NewProc("CreatePen")
	procRectangle                = gdi32DLL.NewProc("Rectangle")
)

type windowsSelector struct{}

func newPlatformSelector() Selector { return &windowsSelector{} }

func (s *windowsSelector) Select(ctx context.Context, f *frame.Frame) (frame.Region, bool, error) {
	tr, err := runOverlay(f)
	if err != nil {
		return frame.Region{}, false, err
	}
	select {
	case <-ctx.Done():
		return frame.Region{}, false, ctx.Err()
	default:
	}
	if tr.Phase != Finished {
		return frame.Region{}, true, nil
	}
	region := frame.Map(tr.Origin, tr.Current, f.Bounds)
	if region.Empty() {
		return frame.Region{}, true, nil
	}
	return region, false, nil
}

// runOverlay shows the frozen frame full-screen, pumps messages until the
// tracker reaches a terminal phase, and returns the final tracker state.
func runOverlay(f *frame.Frame) (Tracker, error) {
	vx := int32(f.Bounds.Min.X)
	vy := int32(f.Bounds.Min.Y)
	vw := int32(f.Bounds.Dx())
	vh := int32(f.Bounds.Dy())
	log.Printf("Overlay over virtual screen: x=%d y=%d w=%d h=%d", vx, vy, vw, vh)

	overlayFrame = f
	overlayOrigin = f.Bounds.Min
	tracker.Reset()

	crossCursor = win.LoadCursor(0, win.MAKEINTRESOURCE(win.IDC_CROSS))

	// Unique class name per invocation so re-arming never collides with a
	// class the previous session failed to unregister.
	classNameStr := fmt.Sprintf("NCScreenierOverlay_%d", time.Now().UnixNano())
	className := syscall.StringToUTF16Ptr(classNameStr)
	wndClass := win.WNDCLASSEX{
		CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
		Style:         win.CS_HREDRAW | win.CS_VREDRAW,
		LpfnWndProc:   syscall.NewCallback(overlayWndProc),
		HInstance:     win.GetModuleHandle(nil),
		HCursor:       crossCursor,
		HbrBackground: 0, // we paint the whole client area ourselves
		LpszClassName: className,
	}
	if atom := win.RegisterClassEx(&wndClass); atom == 0 {
		return Tracker{}, fmt.Errorf("failed to register overlay window class")
	}
	defer win.UnregisterClass(className)

	overlayHwnd = win.CreateWindowEx(
		win.WS_EX_TOPMOST,
		className,
		syscall.StringToUTF16Ptr("NCScreenier - drag to select, ESC cancels"),
		win.WS_POPUP|win.WS_VISIBLE,
		vx, vy, vw, vh,
		0, 0, win.GetModuleHandle(nil), nil,
	)
	if overlayHwnd == 0 {
		return Tracker{}, fmt.Errorf("failed to create overlay window")
	}

	win.ShowWindow(overlayHwnd, win.SW_SHOW)
	procAllowSetForegroundWindow.Call(uintptr(os.Getpid()))
	win.SetForegroundWindow(overlayHwnd)
	win.BringWindowToTop(overlayHwnd)
	win.SetFocus(overlayHwnd)
	win.UpdateWindow(overlayHwnd)

	var msg win.MSG
	for {
		ret := win.GetMessage(&msg, 0, 0, 0)
		if ret == 0 || ret == -1 {
			break
		}
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)
		if tracker.Done() {
			break
		}
	}
	win.DestroyWindow(overlayHwnd)
	overlayHwnd = 0
	overlayFrame = nil

	log.Printf("Overlay finished: %s (%v -> %v)", tracker.Phase, tracker.Origin, tracker.Current)
	return tracker, nil
}

func overlayWndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	switch msg {
	case win.WM_LBUTTONDOWN:
		win.SetCapture(hwnd)
		feedPointer(hwnd, PointerDown, lParam)
		return 0

	case win.WM_MOUSEMOVE:
		if tracker.Phase == Dragging {
			feedPointer(hwnd, PointerMove, lParam)
		}
		return 0

	case win.WM_LBUTTONUP:
		win.ReleaseCapture()
		feedPointer(hwnd, PointerUp, lParam)
		return 0

	case win.WM_RBUTTONDOWN:
		feedCancel(hwnd)
		return 0

	case win.WM_KEYDOWN:
		if wParam == win.VK_ESCAPE {
			feedCancel(hwnd)
		}
		return 0

	case win.WM_PAINT:
		var ps win.PAINTSTRUCT
		hdc := win.BeginPaint(hwnd, &ps)
		if overlayFrame != nil {
			drawFrameBackground(hdc, overlayFrame.Img)
		}
		drawSelectionHints(hdc)
		if tracker.Phase == Dragging {
			drawSelectionRectangle(hdc, tracker.Origin, tracker.Current)
		}
		win.EndPaint(hwnd, &ps)
		return 0

	case win.WM_SETCURSOR:
		if crossCursor != 0 {
			win.SetCursor(crossCursor)
		}
		return 1

	case win.WM_NCHITTEST:
		// Force all points to be client area so the window receives mouse events
		return uintptr(win.HTCLIENT)

	case win.WM_DESTROY:
		return 0
	}

	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}

func feedPointer(hwnd win.HWND, kind EventKind, lParam uintptr) {
	// Client coordinates, shifted to absolute virtual-screen space.
	x := int(int16(win.LOWORD(uint32(lParam)))) + overlayOrigin.X
	y := int(int16(win.HIWORD(uint32(lParam)))) + overlayOrigin.Y
	tracker.Apply(Event{Kind: kind, At: image.Pt(x, y)})

	if tracker.Done() {
		win.PostQuitMessage(0)
		return
	}
	// Redraw the rubber band only; the frame is never recaptured.
	win.InvalidateRect(hwnd, nil, false)
	win.UpdateWindow(hwnd)
}

func feedCancel(hwnd win.HWND) {
	tracker.Apply(Event{Kind: CancelInput})
	win.PostQuitMessage(0)
}

// drawFrameBackground blits the frozen frame over the whole client area.
func drawFrameBackground(hdc win.HDC, img *image.RGBA) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	memDC := win.CreateCompatibleDC(hdc)
	defer win.DeleteDC(memDC)

	bitmapInfo := win.BITMAPINFO{
		BmiHeader: win.BITMAPINFOHEADER{
			BiSize:        uint32(unsafe.Sizeof(win.BITMAPINFOHEADER{})),
			BiWidth:       int32(width),
			BiHeight:      -int32(height), // top-down
			BiPlanes:      1,
			BiBitCount:    32,
			BiCompression: win.BI_RGB,
		},
	}

	var pBits unsafe.Pointer
	hBitmap := win.CreateDIBSection(memDC, &bitmapInfo.BmiHeader, win.DIB_RGB_COLORS, &pBits, 0, 0)
	if hBitmap == 0 {
		return
	}
	defer win.DeleteObject(win.HGDIOBJ(hBitmap))

	oldBitmap := win.SelectObject(memDC, win.HGDIOBJ(hBitmap))
	defer win.SelectObject(memDC, oldBitmap)

	// RGBA -> BGRA, rows DWORD-aligned.
	stride := (((int32(width)*32 + 31) &^ 31) / 8)
	for y := 0; y < height; y++ {
		rowPtr := (*[1 << 29]byte)(unsafe.Pointer(uintptr(pBits) + uintptr(y)*uintptr(stride)))
		srcRow := img.Pix[y*img.Stride:]
		for x := 0; x < width; x++ {
			s := x * 4
			rowPtr[s] = srcRow[s+2]   // B
			rowPtr[s+1] = srcRow[s+1] // G
			rowPtr[s+2] = srcRow[s]   // R
			rowPtr[s+3] = srcRow[s+3] // A
		}
	}

	win.BitBlt(hdc, 0, 0, int32(width), int32(height), memDC, 0, 0, win.SRCCOPY)
}

func drawSelectionRectangle(hdc win.HDC, origin, current image.Point) {
	pen, _, _ := procCreatePen.Call(0, selectionPenWidth, selectionColor)
	oldPen := win.SelectObject(hdc, win.HGDIOBJ(pen))
	oldBrush := win.SelectObject(hdc, win.GetStockObject(win.NULL_BRUSH))

	// Back to client coordinates for drawing.
	left := int32(min(origin.X, current.X) - overlayOrigin.X)
	top := int32(min(origin.Y, current.Y) - overlayOrigin.Y)
	right := int32(max(origin.X, current.X) - overlayOrigin.X)
	bottom := int32(max(origin.Y, current.Y) - overlayOrigin.Y)
	procRectangle.Call(uintptr(hdc), uintptr(left), uintptr(top), uintptr(right), uintptr(bottom))

	win.SelectObject(hdc, oldPen)
	win.SelectObject(hdc, oldBrush)
	win.DeleteObject(win.HGDIOBJ(pen))
}

func drawSelectionHints(hdc win.HDC) {
	hint := "Drag to select a region   ESC or right-click cancels"
	win.SetBkMode(hdc, win.TRANSPARENT)
	win.SetTextColor(hdc, win.COLORREF(0x00FFFF))
	win.TextOut(hdc, 16, 16, syscall.StringToUTF16Ptr(hint), int32(len(hint)))
}
