package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyH         = 72  // H key (ASCII)
	KeyQ         = 81  // Q key (ASCII)
	KeyR         = 82  // R key (ASCII)
	KeyU         = 85  // U key (ASCII)
	KeySpace     = 32  // Spacebar (ASCII)
	KeyBackspace = 259 // Backspace key (GLFW)
	KeyEsc       = 256 // Escape key (GLFW)
	KeyTab       = 258 // Tab key (GLFW)
	KeyRight     = 262 // Right arrow (GLFW)
	KeyLeft      = 263 // Left arrow (GLFW)
)

// Mouse buttons, matching GLFW button indices.
const (
	MouseLeft   = 0
	MouseRight  = 1
	MouseMiddle = 2
)
