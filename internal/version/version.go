// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Ebiten window viewer, JPL Horizons trajectories, frame export
// 0.2.0 - Catalog tile cache, label placement, momentum drag and stepped zoom
// 0.1.0 - Initial release: stereographic chart in the terminal, offline catalog
