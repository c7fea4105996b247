package gazetteer

import "github.com/celtiberi/wind-service-2/internal/domain"

// marineRegions is the built-in table of named waters, keyed by
// lowercase name. Bounds are approximate covering boxes, not precise
// coastlines.
var marineRegions = map[string]domain.BoundingBox{
	"gulf of maine":        {MinLat: 42.0, MaxLat: 45.2, MinLon: -71.0, MaxLon: -65.5},
	"georges bank":         {MinLat: 40.5, MaxLat: 42.2, MinLon: -69.5, MaxLon: -66.0},
	"cape cod bay":         {MinLat: 41.7, MaxLat: 42.1, MinLon: -70.6, MaxLon: -70.0},
	"massachusetts bay":    {MinLat: 42.0, MaxLat: 42.7, MinLon: -71.0, MaxLon: -70.2},
	"buzzards bay":         {MinLat: 41.4, MaxLat: 41.8, MinLon: -71.1, MaxLon: -70.6},
	"nantucket sound":      {MinLat: 41.2, MaxLat: 41.7, MinLon: -70.6, MaxLon: -69.8},
	"block island sound":   {MinLat: 41.0, MaxLat: 41.4, MinLon: -72.1, MaxLon: -71.4},
	"long island sound":    {MinLat: 40.8, MaxLat: 41.4, MinLon: -73.9, MaxLon: -72.0},
	"narragansett bay":     {MinLat: 41.4, MaxLat: 41.8, MinLon: -71.5, MaxLon: -71.1},
	"delaware bay":         {MinLat: 38.7, MaxLat: 39.6, MinLon: -75.6, MaxLon: -74.8},
	"chesapeake bay":       {MinLat: 36.8, MaxLat: 39.6, MinLon: -77.4, MaxLon: -75.6},
	"pamlico sound":        {MinLat: 35.0, MaxLat: 35.9, MinLon: -76.8, MaxLon: -75.5},
	"florida keys":         {MinLat: 24.4, MaxLat: 25.4, MinLon: -82.2, MaxLon: -80.0},
	"gulf of mexico":       {MinLat: 18.0, MaxLat: 30.5, MinLon: -98.0, MaxLon: -80.5},
	"caribbean sea":        {MinLat: 9.0, MaxLat: 22.5, MinLon: -89.5, MaxLon: -60.0},
	"gulf stream":          {MinLat: 25.0, MaxLat: 42.0, MinLon: -80.0, MaxLon: -55.0},
	"sargasso sea":         {MinLat: 20.0, MaxLat: 35.0, MinLon: -70.0, MaxLon: -40.0},
	"north atlantic":       {MinLat: 0.0, MaxLat: 65.0, MinLon: -80.0, MaxLon: 0.0},
	"bay of fundy":         {MinLat: 44.5, MaxLat: 45.8, MinLon: -67.2, MaxLon: -63.3},
	"bermuda":              {MinLat: 32.2, MaxLat: 32.4, MinLon: -64.9, MaxLon: -64.6},
	"bahamas":              {MinLat: 20.9, MaxLat: 27.3, MinLon: -79.5, MaxLon: -72.7},
	"puget sound":          {MinLat: 47.0, MaxLat: 48.2, MinLon: -123.2, MaxLon: -122.2},
	"san francisco bay":    {MinLat: 37.4, MaxLat: 38.2, MinLon: -122.5, MaxLon: -121.7},
	"gulf of alaska":       {MinLat: 54.0, MaxLat: 60.5, MinLon: -160.0, MaxLon: -136.0},
	"lake michigan":        {MinLat: 41.6, MaxLat: 46.1, MinLon: -88.0, MaxLon: -84.8},
	"lake superior":        {MinLat: 46.4, MaxLat: 49.0, MinLon: -92.2, MaxLon: -84.3},
	"gulf of st. lawrence": {MinLat: 45.5, MaxLat: 50.5, MinLon: -66.5, MaxLon: -59.0},
}
