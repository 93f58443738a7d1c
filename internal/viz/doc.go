// Package viz renders simulation output in the terminal.
//
//   - [Live]: Bubble Tea view that steps a run and draws the cart, the
//     spinning rotor, a speed chart and the force breakdown
//   - [Canvas]: Braille pixel canvas used by the live view
//   - [SpeedChart], [StripChart]: asciigraph charts for the plot command
//   - [Table]: lipgloss tables for command summaries
//
// # Key Bindings
//
//	Space - Pause/Resume
//	+/-   - More or fewer steps per frame
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz
