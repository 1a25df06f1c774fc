package session

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/litescript/ls-skychart/internal/render"
)

// WriteSummary writes a text report of the session's current scene.
func WriteSummary(w io.Writer, snap Snapshot, data *render.Data, stats render.Stats) {
	st := snap.State
	fmt.Fprintf(w, "Sky chart @ %s\n", snap.LastLoad.Format(time.RFC3339))
	fmt.Fprintln(w, strings.Repeat("─", 72))
	fmt.Fprintf(w, "%-14s %s\n", "Frame", st.CoordSystem)
	fmt.Fprintf(w, "%-14s %s\n", "Center", render.CenterText(st))
	fmt.Fprintf(w, "%-14s %.2f°\n", "Field", st.FovDeg)
	if st.Site != nil {
		fmt.Fprintf(w, "%-14s %.4f, %.4f\n", "Site", st.Site.LatDeg, st.Site.LonDeg)
	}
	if snap.LastError != nil {
		fmt.Fprintf(w, "%-14s %v\n", "Error", snap.LastError)
	}
	if data == nil || data.Scene == nil {
		fmt.Fprintln(w, "No scene loaded")
		return
	}

	sc := data.Scene
	fmt.Fprintln(w, strings.Repeat("─", 72))
	fmt.Fprintf(w, "%-14s %d (%s, mag ≤ %.1f)\n", "Stars", len(data.Stars), sc.CatalogID, sc.MagLimit)
	fmt.Fprintf(w, "%-14s %d\n", "Deep sky", len(sc.DSO))
	fmt.Fprintf(w, "%-14s %d\n", "Planets", len(sc.Planets))
	fmt.Fprintf(w, "%-14s %d\n", "Trajectories", len(sc.Trajectories))
	fmt.Fprintf(w, "%-14s %d cached\n", "Tiles", snap.TilesCached)
	if data.MilkyWay != nil {
		fmt.Fprintf(w, "%-14s %d rings\n", "Milky Way", len(data.MilkyWay.Polygons))
	}
	if data.Constellations != nil {
		fmt.Fprintf(w, "%-14s %d figures\n", "Constellations", len(data.Constellations.Lines))
	}

	if len(stats.Layers) > 0 {
		fmt.Fprintln(w, strings.Repeat("─", 72))
		fmt.Fprintf(w, "%-14s %8s %8s %8s\n", "Layer", "Drawn", "Labeled", "Skipped")
		for _, name := range layerNames(stats) {
			o := stats.Layers[name]
			fmt.Fprintf(w, "%-14s %8d %8d %8d\n", truncateStr(name, 14), o.Drawn, o.Labeled, o.Skipped)
		}
		fmt.Fprintf(w, "\nFrame drawn in %v\n", stats.Duration.Round(time.Microsecond))
	}
}

// WriteEvents writes the last n events, oldest first.
func WriteEvents(w io.Writer, events []Event, n int) {
	if n > 0 && len(events) > n {
		events = events[len(events)-n:]
	}
	fmt.Fprintln(w, "Recent events")
	fmt.Fprintln(w, strings.Repeat("─", 72))
	if len(events) == 0 {
		fmt.Fprintln(w, "No events")
		return
	}
	for _, e := range events {
		fmt.Fprintf(w, "%s  %-20s #%-4d %s\n", e.Timestamp.Format("15:04:05"), e.Type, e.RequestID, e.Detail)
	}
}

// layerNames returns the layers in draw order when the pipeline is known,
// falling back to the map's keys sorted.
func layerNames(stats render.Stats) []string {
	var names []string
	seen := make(map[string]bool)
	for _, r := range render.DefaultPipeline(nil).Renderers() {
		if _, ok := stats.Layers[r.Name()]; ok {
			names = append(names, r.Name())
			seen[r.Name()] = true
		}
	}
	var rest []string
	for name := range stats.Layers {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	slices.Sort(rest)
	return append(names, rest...)
}

func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-2] + ".."
}
