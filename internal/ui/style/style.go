// Package style provides shared styling primitives including colors and
// icons for consistent log output across the CLI.
package style

// Color is a hex RGB color.
type Color string

// Colors.
var (
	Slate  Color = "#667085"
	Red    Color = "#D93025"
	Yellow Color = "#F59E0B"
)

// Icons.
const (
	Cross   = "✗"
	Warning = "!"
	Arrow   = "→"
)
