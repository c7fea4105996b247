package marinetext

import "github.com/celtiberi/wind-service-2/internal/domain"

// coastalZones is a coarse table of coastal marine forecast zones.
// Boxes approximate the published zone outlines; narrow coastal zones
// come before the broader offshore ones so the lookup picks the most
// specific match.
var coastalZones = []Zone{
	{ID: "ANZ230", Name: "Boston Harbor", Box: domain.BoundingBox{MinLat: 42.25, MaxLat: 42.45, MinLon: -71.1, MaxLon: -70.8}},
	{ID: "ANZ235", Name: "Coastal waters east of Ipswich Bay and the Stellwagen Bank NMS", Box: domain.BoundingBox{MinLat: 42.3, MaxLat: 42.9, MinLon: -70.8, MaxLon: -70.0}},
	{ID: "ANZ250", Name: "Coastal waters from the Merrimack River to Plymouth out 40 nm", Box: domain.BoundingBox{MinLat: 41.9, MaxLat: 43.0, MinLon: -71.0, MaxLon: -69.5}},
	{ID: "ANZ251", Name: "Massachusetts Bay and Ipswich Bay", Box: domain.BoundingBox{MinLat: 42.0, MaxLat: 42.9, MinLon: -71.1, MaxLon: -70.2}},
	{ID: "ANZ335", Name: "New York Harbor", Box: domain.BoundingBox{MinLat: 40.4, MaxLat: 40.75, MinLon: -74.3, MaxLon: -73.9}},
	{ID: "ANZ338", Name: "New York Bight within 40 nm of Sandy Hook", Box: domain.BoundingBox{MinLat: 39.9, MaxLat: 40.6, MinLon: -74.1, MaxLon: -72.9}},
	{ID: "ANZ450", Name: "Coastal waters from Sandy Hook to Manasquan Inlet out 20 nm", Box: domain.BoundingBox{MinLat: 39.9, MaxLat: 40.5, MinLon: -74.2, MaxLon: -73.6}},
	{ID: "ANZ454", Name: "Coastal waters from Manasquan Inlet to Little Egg Inlet out 20 nm", Box: domain.BoundingBox{MinLat: 39.4, MaxLat: 40.1, MinLon: -74.3, MaxLon: -73.6}},
	{ID: "ANZ530", Name: "Chesapeake Bay north of Pooles Island", Box: domain.BoundingBox{MinLat: 39.25, MaxLat: 39.65, MinLon: -76.3, MaxLon: -75.9}},
	{ID: "ANZ630", Name: "Chesapeake Bay from Smith Point to Windmill Point", Box: domain.BoundingBox{MinLat: 37.6, MaxLat: 38.0, MinLon: -76.5, MaxLon: -76.0}},
	{ID: "ANZ650", Name: "Coastal waters from Fenwick Island to Chincoteague out 20 nm", Box: domain.BoundingBox{MinLat: 37.9, MaxLat: 38.5, MinLon: -75.3, MaxLon: -74.6}},
	{ID: "AMZ250", Name: "Coastal waters from Surf City to Cape Fear out 20 nm", Box: domain.BoundingBox{MinLat: 33.6, MaxLat: 34.5, MinLon: -78.2, MaxLon: -77.2}},
	{ID: "AMZ350", Name: "Coastal waters from South Santee River to Edisto Beach out 20 nm", Box: domain.BoundingBox{MinLat: 32.2, MaxLat: 33.3, MinLon: -80.3, MaxLon: -78.9}},
	{ID: "AMZ550", Name: "Coastal waters from Jupiter Inlet to Deerfield Beach out 20 nm", Box: domain.BoundingBox{MinLat: 26.2, MaxLat: 27.0, MinLon: -80.2, MaxLon: -79.6}},
	{ID: "AMZ650", Name: "Coastal waters of the Florida Keys from Craig Key to Key West out 20 nm", Box: domain.BoundingBox{MinLat: 24.2, MaxLat: 25.0, MinLon: -82.0, MaxLon: -80.5}},
	{ID: "GMZ530", Name: "Tampa Bay waters", Box: domain.BoundingBox{MinLat: 27.5, MaxLat: 28.05, MinLon: -82.9, MaxLon: -82.35}},
	{ID: "GMZ335", Name: "Galveston Bay", Box: domain.BoundingBox{MinLat: 29.2, MaxLat: 29.8, MinLon: -95.1, MaxLon: -94.5}},
	{ID: "GMZ555", Name: "Coastal waters from Boca Grande to Bonita Beach out 20 nm", Box: domain.BoundingBox{MinLat: 26.2, MaxLat: 26.9, MinLon: -82.6, MaxLon: -81.8}},
	{ID: "PZZ530", Name: "Puget Sound and Hood Canal", Box: domain.BoundingBox{MinLat: 47.1, MaxLat: 48.2, MinLon: -123.1, MaxLon: -122.2}},
	{ID: "PZZ535", Name: "Puget Sound north of Edmonds and Admiralty Inlet", Box: domain.BoundingBox{MinLat: 47.8, MaxLat: 48.3, MinLon: -122.8, MaxLon: -122.2}},
	{ID: "PZZ545", Name: "San Francisco Bay north of the Bay Bridge", Box: domain.BoundingBox{MinLat: 37.8, MaxLat: 38.2, MinLon: -122.55, MaxLon: -122.1}},
	{ID: "PZZ560", Name: "Coastal waters from Point Reyes to Pigeon Point out 10 nm", Box: domain.BoundingBox{MinLat: 37.1, MaxLat: 38.1, MinLon: -123.2, MaxLon: -122.3}},
	{ID: "PZZ655", Name: "Coastal waters from Point Sal to Santa Cruz Island out 10 nm", Box: domain.BoundingBox{MinLat: 33.9, MaxLat: 35.0, MinLon: -121.1, MaxLon: -119.5}},
	{ID: "PZZ750", Name: "East Santa Barbara Channel from Point Conception to Point Mugu", Box: domain.BoundingBox{MinLat: 33.9, MaxLat: 34.5, MinLon: -120.5, MaxLon: -118.9}},
	{ID: "LMZ846", Name: "Lake Michigan from Wind Point WI to Winthrop Harbor IL", Box: domain.BoundingBox{MinLat: 42.4, MaxLat: 42.8, MinLon: -87.9, MaxLon: -87.0}},
	{ID: "LSZ144", Name: "Lake Superior from Saxon Harbor WI to Upper Entrance to Portage Canal MI", Box: domain.BoundingBox{MinLat: 46.5, MaxLat: 47.3, MinLon: -90.5, MaxLon: -88.4}},
	{ID: "PKZ011", Name: "Valdez Arm", Box: domain.BoundingBox{MinLat: 60.8, MaxLat: 61.15, MinLon: -147.2, MaxLon: -146.2}},
	{ID: "PHZ110", Name: "Big Island windward waters", Box: domain.BoundingBox{MinLat: 19.0, MaxLat: 20.3, MinLon: -155.3, MaxLon: -154.5}},
	{ID: "ANZ805", Name: "Gulf of Maine and Georges Bank", Box: domain.BoundingBox{MinLat: 40.0, MaxLat: 45.0, MinLon: -71.0, MaxLon: -65.0}},
	{ID: "ANZ900", Name: "Atlantic waters from the Gulf of Maine to Cape Hatteras beyond 40 nm", Box: domain.BoundingBox{MinLat: 35.0, MaxLat: 44.0, MinLon: -75.0, MaxLon: -65.0}},
	{ID: "GMZ021", Name: "Gulf waters from the Mississippi Delta to Apalachicola beyond 60 nm", Box: domain.BoundingBox{MinLat: 25.0, MaxLat: 30.0, MinLon: -92.0, MaxLon: -84.0}},
	{ID: "PZZ900", Name: "Pacific waters from Cape Flattery to Point St. George beyond 60 nm", Box: domain.BoundingBox{MinLat: 41.0, MaxLat: 48.5, MinLon: -130.0, MaxLon: -124.0}},
}
