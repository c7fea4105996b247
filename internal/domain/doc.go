// Package domain models the forecast products this service tracks and serves.
//
// # Data Source
//
// Gridded forecast files come from the NOAA Global Forecast System (GFS)
// production tree, published as one directory per issue date
// (gfs.YYYYMMDD), one subdirectory per model cycle (00, 06, 12, 18), and
// one subdirectory per product family. The upstream directory pages are
// plain HTML link listings; a cycle directory that answers 403/404 has
// simply not been published yet.
//
// # Cycles
//
// A forecast cycle is one model run, identified by its issue date and an
// hour-of-day label (00Z/06Z/12Z/18Z). Cycles are totally ordered by
// (date, hour); 18Z is the last cycle of a calendar day. Within a file
// name the cycle appears as "tHHz", e.g. "t12z".
//
// # Families
//
// A data family is a category of gridded product with its own naming
// convention and directory:
//
//	atmospheric: <cycle dir>/atmos/gfs.tHHz.0p25.f000.nc
//	wave:        <cycle dir>/wave/gfswave.tHHz.global.0p25.f000.nc
//
// Only forecast hour 0 (the analysis, "f000") is tracked; its file is
// immutable at its URL once published.
package domain
