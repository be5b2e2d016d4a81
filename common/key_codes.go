package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyC     = 67  // C key (ASCII)
	KeyP     = 80  // P key (ASCII)
	KeyR     = 82  // R key (ASCII)
	KeySpace = 32  // Spacebar (ASCII)
	KeyEsc   = 256 // Escape key (GLFW)
)

// Mouse button bits as reported in a pointer's pressed bitmask.
// Bit positions follow the host convention of primary = 0, secondary = 1, middle = 2.
const (
	MouseButtonPrimary   uint32 = 1 << 0
	MouseButtonSecondary uint32 = 1 << 1
	MouseButtonMiddle    uint32 = 1 << 2
)
