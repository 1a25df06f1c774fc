package ephem

import (
	"strings"

	"github.com/litescript/ls-skychart/internal/catalog"
)

// Target is a body the trajectory layer can follow.
type Target struct {
	Key     string             // short key used in config (e.g. "mars")
	Name    string             // display name
	Command string             // Horizons COMMAND value
	Type    catalog.ObjectType // drawn as
	Aliases []string
}

// Targets is the list of known bodies. Commands are NAIF ids, from
// https://naif.jpl.nasa.gov/pub/naif/toolkit_docs/C/req/naif_ids.html
var Targets = []Target{
	{Key: "sun", Name: "Sun", Command: "10", Type: catalog.TypeSun},
	{Key: "moon", Name: "Moon", Command: "301", Type: catalog.TypeMoon, Aliases: []string{"luna"}},
	{Key: "mercury", Name: "Mercury", Command: "199", Type: catalog.TypePlanet},
	{Key: "venus", Name: "Venus", Command: "299", Type: catalog.TypePlanet},
	{Key: "mars", Name: "Mars", Command: "499", Type: catalog.TypePlanet},
	{Key: "jupiter", Name: "Jupiter", Command: "599", Type: catalog.TypePlanet},
	{Key: "saturn", Name: "Saturn", Command: "699", Type: catalog.TypePlanet},
	{Key: "uranus", Name: "Uranus", Command: "799", Type: catalog.TypePlanet},
	{Key: "neptune", Name: "Neptune", Command: "899", Type: catalog.TypePlanet},
	{Key: "pluto", Name: "Pluto", Command: "999", Type: catalog.TypePlanet},
	{Key: "ceres", Name: "Ceres", Command: "1;", Type: catalog.TypePlanet},
	{Key: "vgr1", Name: "Voyager 1", Command: "-31", Type: catalog.TypeSpacecraft, Aliases: []string{"voyager1"}},
	{Key: "vgr2", Name: "Voyager 2", Command: "-32", Type: catalog.TypeSpacecraft, Aliases: []string{"voyager2"}},
	{Key: "nh", Name: "New Horizons", Command: "-98", Type: catalog.TypeSpacecraft, Aliases: []string{"newhorizons"}},
	{Key: "jwst", Name: "James Webb", Command: "-170", Type: catalog.TypeSpacecraft, Aliases: []string{"webb"}},
	{Key: "juno", Name: "Juno", Command: "-61", Type: catalog.TypeSpacecraft},
	{Key: "psp", Name: "Parker Solar Probe", Command: "-96", Type: catalog.TypeSpacecraft, Aliases: []string{"parker"}},
}

// targetsByName maps keys, names and aliases (normalized) to targets.
var targetsByName = func() map[string]Target {
	m := make(map[string]Target, len(Targets)*3)
	for _, t := range Targets {
		m[normalizeName(t.Key)] = t
		m[normalizeName(t.Name)] = t
		for _, a := range t.Aliases {
			m[normalizeName(a)] = t
		}
	}
	return m
}()

// normalizeName lowercases and drops spaces, dashes and underscores.
func normalizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(name))
}

// Lookup finds a target by key, name or alias, case-insensitively.
func Lookup(name string) (Target, bool) {
	t, ok := targetsByName[normalizeName(name)]
	return t, ok
}
