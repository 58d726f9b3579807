// Package viz renders a globe in the terminal using the Bubble Tea framework.
//
//   - [Model]: live view that steps a globe every frame under a keyboard cursor
//   - [Canvas]: Braille-based pixel canvas, 2x4 sub-pixels per cell
//   - [Camera]: orbit camera with yaw, pitch and zoom
//
// The cursor sits still in view space. While auto-rotate is on, the globe
// turns beneath it and scatters whatever passes under the cursor.
//
// # Key Bindings
//
//	Space  - Pause/Resume
//	Arrows - Move the cursor; Enter lifts it
//	C      - Clear scatter
//	S      - Toggle scatter
//	R      - Random colour
//	T      - Cycle themes
//	?      - Show help overlay
package viz
