package config

import (
	"flag"
	"strings"
	"time"
)

// Flags holds the command-line overrides. Zero values leave the loaded
// config untouched.
type Flags struct {
	ConfigPath string
	LogLevel   string
	LogFile    string
	Provider   string
	URL        string
	Frame      string
	RA         float64
	Dec        float64
	Fov        float64
	Lat        float64
	Lon        float64
	Site       bool
	Date       string
	Width      int
	Height     int
	Mobile     bool
	Targets    string
	EphemMode  string
	Timeout    time.Duration

	set map[string]bool
}

// RegisterFlags defines the flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.ConfigPath, "config", "", "Path to config file")
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFile, "log-file", "", "Write logs to a rotating file")
	fs.StringVar(&f.Provider, "provider", "", "Chart data provider (offline, http)")
	fs.StringVar(&f.URL, "url", "", "Catalog backend URL for the http provider")
	fs.StringVar(&f.Frame, "frame", "", "Coordinate frame (equatorial, horizontal)")
	fs.Float64Var(&f.RA, "ra", 0, "Initial center RA (azimuth in the horizontal frame), degrees")
	fs.Float64Var(&f.Dec, "dec", 0, "Initial center Dec (altitude in the horizontal frame), degrees")
	fs.Float64Var(&f.Fov, "fov", 0, "Initial field of view, degrees")
	fs.Float64Var(&f.Lat, "lat", 0, "Observer latitude, degrees north")
	fs.Float64Var(&f.Lon, "lon", 0, "Observer longitude, degrees east")
	fs.BoolVar(&f.Site, "site", false, "Use the observer given by -lat/-lon")
	fs.StringVar(&f.Date, "date", "", "Chart date, RFC 3339 (default now)")
	fs.IntVar(&f.Width, "width", 0, "Frame width for headless output, pixels")
	fs.IntVar(&f.Height, "height", 0, "Frame height for headless output, pixels")
	fs.BoolVar(&f.Mobile, "mobile", false, "Use the coarse flattening preset")
	fs.StringVar(&f.Targets, "targets", "", "Comma-separated trajectory targets (empty list: none)")
	fs.StringVar(&f.EphemMode, "ephem", "", "Trajectory source (auto, horizons, offline)")
	fs.DurationVar(&f.Timeout, "timeout", 0, "Provider request timeout")
	return f
}

// Apply overlays the flags that were given on the command line. Call it
// after fs.Parse.
func (f *Flags) Apply(fs *flag.FlagSet, cfg *Config) {
	set := make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	if set["log-level"] {
		cfg.Logging.Level = f.LogLevel
	}
	if set["log-file"] {
		cfg.Logging.File = f.LogFile
	}
	if set["provider"] {
		cfg.Provider.Kind = f.Provider
	}
	if set["url"] {
		cfg.Provider.URL = f.URL
		if !set["provider"] {
			cfg.Provider.Kind = "http"
		}
	}
	if set["timeout"] {
		cfg.Provider.Timeout = f.Timeout
	}
	if set["frame"] {
		cfg.View.CoordSystem = f.Frame
	}
	if set["ra"] {
		cfg.View.RA = f.RA
	}
	if set["dec"] {
		cfg.View.Dec = f.Dec
	}
	if set["fov"] {
		cfg.View.FovDeg = f.Fov
	}
	if set["lat"] || set["lon"] || set["site"] {
		cfg.View.HasSite = true
	}
	if set["lat"] {
		cfg.View.Lat = f.Lat
	}
	if set["lon"] {
		cfg.View.Lon = f.Lon
	}
	if set["date"] {
		cfg.View.Date = f.Date
	}
	if set["width"] {
		cfg.View.Width = f.Width
	}
	if set["height"] {
		cfg.View.Height = f.Height
	}
	if set["mobile"] {
		cfg.Curve.MobileLike = f.Mobile
	}
	if set["targets"] {
		cfg.Trajectories.Targets = splitList(f.Targets)
	}
	if set["ephem"] {
		cfg.Trajectories.Mode = f.EphemMode
	}
	f.set = set
}

// IsSet reports whether the named flag was given. Valid after Apply.
func (f *Flags) IsSet(name string) bool {
	return f.set[name]
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
