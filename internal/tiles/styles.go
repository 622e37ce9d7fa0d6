package tiles

import "sort"

// Style describes one raster tile source.
type Style struct {
	Name        string
	URLTemplate string // with {z}, {x} and {y} placeholders
	Attribution string
	Headers     map[string]string
	MaxZoom     float64
}

var styles = map[string]Style{
	"osm": {
		Name:        "osm",
		URLTemplate: "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: "© OpenStreetMap contributors",
		MaxZoom:     19,
	},
	"opentopomap": {
		Name:        "opentopomap",
		URLTemplate: "https://a.tile.opentopomap.org/{z}/{x}/{y}.png",
		Attribution: "© OpenStreetMap contributors, SRTM | © OpenTopoMap (CC-BY-SA)",
		MaxZoom:     17,
	},
	"carto-light": {
		Name:        "carto-light",
		URLTemplate: "https://a.basemaps.cartocdn.com/light_all/{z}/{x}/{y}.png",
		Attribution: "© OpenStreetMap contributors © CARTO",
		MaxZoom:     20,
	},
	"carto-dark": {
		Name:        "carto-dark",
		URLTemplate: "https://a.basemaps.cartocdn.com/dark_all/{z}/{x}/{y}.png",
		Attribution: "© OpenStreetMap contributors © CARTO",
		MaxZoom:     20,
	},
}

// StyleByName returns a built-in style by its name.
func StyleByName(name string) (Style, bool) {
	s, ok := styles[name]
	return s, ok
}

// Names lists the built-in style names, sorted.
func Names() []string {
	names := make([]string, 0, len(styles))
	for name := range styles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
