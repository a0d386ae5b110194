// Command bikeview is an interactive 3D bicycle parts viewer.
//
// Usage:
//
//	bikeview view [--headless]     open the viewer (window or headless with the overlay)
//	bikeview parts                 list the part catalog
//	bikeview inspect <model>       print the node tree with part matches
//	bikeview project <model>       print label positions at the resting camera pose
//
// Controls in the window:
//
//	Mouse drag  - Orbit the bike
//	Scroll      - Zoom
//	Click       - Select the label under the pointer
//	Esc         - Close the info panel
//	R / U       - Repair / Upgrade mode
//	Q           - Quit
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
