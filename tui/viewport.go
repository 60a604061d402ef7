// ABOUTME: Viewport manager for cursor-to-middle scrolling of the track table
// ABOUTME: Implements vim/less style viewport scrolling behavior

package tui

// ViewportManager handles cursor visibility and viewport scrolling
// Implements vim/less style scrolling: cursor moves to middle, then content scrolls
type ViewportManager struct {
	height     int // Viewport height in lines
	cursorPos  int // Current cursor position
	totalItems int // Total number of items
}

// NewViewportManager creates a new viewport manager
func NewViewportManager(height, cursorPos, totalItems int) *ViewportManager {
	return &ViewportManager{
		height:     height,
		cursorPos:  cursorPos,
		totalItems: totalItems,
	}
}

// CalculateOffset computes the viewport Y offset that keeps the cursor visible
//
// Scrolling behavior:
// - Top: cursor moves freely, viewport stays at 0
// - Middle: cursor stays at the middle row, content scrolls
// - Bottom: viewport shows the end, cursor moves down
func (vm *ViewportManager) CalculateOffset() int {
	switch vm.GetPhase() {
	case TopPhase:
		return 0
	case MiddlePhase:
		return vm.cursorPos - vm.height/2
	default:
		return max(vm.totalItems-vm.height, 0)
	}
}

// ScrollPhase is the scrolling regime the cursor is in
type ScrollPhase int

// Scroll phases
const (
	TopPhase    ScrollPhase = iota // Cursor moves, viewport at top
	MiddlePhase                    // Cursor at middle, content scrolls
	BottomPhase                    // Viewport at bottom, cursor moves
)

// GetPhase returns the current scrolling phase
func (vm *ViewportManager) GetPhase() ScrollPhase {
	if vm.totalItems == 0 || vm.height < 1 {
		return TopPhase
	}
	middle := vm.height / 2
	if vm.cursorPos < middle {
		return TopPhase
	}
	bottomThreshold := vm.totalItems - vm.height + middle
	if vm.cursorPos < bottomThreshold {
		return MiddlePhase
	}
	return BottomPhase
}
