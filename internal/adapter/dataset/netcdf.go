// Package dataset opens downloaded product files and keeps a per-family
// handle pointed at the registry's current file.
package dataset

import (
	"fmt"
	"math"

	"github.com/fhs/go-netcdf/netcdf"

	"github.com/celtiberi/wind-service-2/internal/domain"
)

// FieldReader reads named 2-D variables from one open dataset file.
// Implementations must tolerate concurrent reads.
type FieldReader interface {
	// ReadField returns the variable's values on the [lat][lon] grid.
	// Cells carrying the file's fill value come back as NaN.
	ReadField(name string) ([][]float64, error)
	// Coordinates returns the 2-D latitude and longitude arrays
	// matching every field's shape.
	Coordinates() (lats, lons [][]float64, err error)
	Close() error
}

// Opener opens the file at path for a family. Injectable so tests can
// substitute in-memory readers.
type Opener func(path string) (FieldReader, error)

// File is a FieldReader over a NetCDF product file.
type File struct {
	family domain.Family
	nc     netcdf.Dataset

	lats [][]float64
	lons [][]float64
}

// NetCDFOpener returns an Opener for the family's NetCDF files.
func NetCDFOpener(family domain.Family) Opener {
	return func(path string) (FieldReader, error) {
		return OpenNetCDF(path, family)
	}
}

// OpenNetCDF opens a NetCDF product file and reads its coordinate axes.
func OpenNetCDF(path string, family domain.Family) (*File, error) {
	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	f := &File{family: family, nc: nc}
	if err := f.loadCoordinates(); err != nil {
		nc.Close()
		return nil, fmt.Errorf("coordinates of %s: %w", path, err)
	}
	return f, nil
}

func (f *File) loadCoordinates() error {
	latAxis, err := f.read1D([]string{"latitude", "lat", "y"})
	if err != nil {
		return err
	}
	lonAxis, err := f.read1D([]string{"longitude", "lon", "x"})
	if err != nil {
		return err
	}
	// Fields are sliced on rows ascending in latitude.
	if len(latAxis) > 1 && latAxis[0] > latAxis[len(latAxis)-1] {
		return fmt.Errorf("latitude axis is descending")
	}

	f.lats = make([][]float64, len(latAxis))
	f.lons = make([][]float64, len(latAxis))
	for i, lat := range latAxis {
		latRow := make([]float64, len(lonAxis))
		for j := range lonAxis {
			latRow[j] = lat
		}
		f.lats[i] = latRow
		f.lons[i] = append([]float64(nil), lonAxis...)
	}
	return nil
}

// Coordinates implements FieldReader.
func (f *File) Coordinates() ([][]float64, [][]float64, error) {
	return f.lats, f.lons, nil
}

// ReadField implements FieldReader. A missing variable is reported as a
// FieldNotFoundError so request handling can distinguish a schema
// mismatch from an I/O failure.
func (f *File) ReadField(name string) ([][]float64, error) {
	v, err := f.nc.Var(name)
	if err != nil {
		return nil, &domain.FieldNotFoundError{Family: f.family, Field: name}
	}

	nLat, nLon := len(f.lats), 0
	if nLat > 0 {
		nLon = len(f.lons[0])
	}

	dims, err := v.Dims()
	if err != nil {
		return nil, fmt.Errorf("dims of %s: %w", name, err)
	}
	// Single-time-step files may carry a leading length-1 time axis.
	if len(dims) == 3 {
		n, err := dims[0].Len()
		if err != nil || n != 1 {
			return nil, fmt.Errorf("variable %s has unexpected leading dimension", name)
		}
		dims = dims[1:]
	}
	if len(dims) != 2 {
		return nil, fmt.Errorf("variable %s is not a 2-D grid", name)
	}
	d0, err := dims[0].Len()
	if err != nil {
		return nil, err
	}
	d1, err := dims[1].Len()
	if err != nil {
		return nil, err
	}

	flat, err := readFlat(v, int(d0)*int(d1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if fv, ok := fillValue(v); ok {
		for i, val := range flat {
			if val == fv {
				flat[i] = math.NaN()
			}
		}
	}

	switch {
	case int(d0) == nLat && int(d1) == nLon:
		return reshape(flat, nLat, nLon), nil
	case int(d0) == nLon && int(d1) == nLat:
		return transpose(reshape(flat, nLon, nLat)), nil
	default:
		return nil, fmt.Errorf("variable %s is [%d, %d], expected [%d, %d]", name, d0, d1, nLat, nLon)
	}
}

// Close implements FieldReader.
func (f *File) Close() error {
	return f.nc.Close()
}

func (f *File) read1D(names []string) ([]float64, error) {
	for _, name := range names {
		v, err := f.nc.Var(name)
		if err != nil {
			continue
		}
		dims, err := v.Dims()
		if err != nil || len(dims) != 1 {
			continue
		}
		n, err := dims[0].Len()
		if err != nil {
			continue
		}
		data, err := readFlat(v, int(n))
		if err != nil {
			return nil, err
		}
		return data, nil
	}
	return nil, fmt.Errorf("no variable named any of %v", names)
}

func readFlat(v netcdf.Var, n int) ([]float64, error) {
	t, err := v.Type()
	if err != nil {
		return nil, err
	}
	switch t {
	case netcdf.DOUBLE:
		out := make([]float64, n)
		if err := v.ReadFloat64s(out); err != nil {
			return nil, err
		}
		return out, nil
	case netcdf.FLOAT:
		tmp := make([]float32, n)
		if err := v.ReadFloat32s(tmp); err != nil {
			return nil, err
		}
		out := make([]float64, n)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, nil
	case netcdf.INT:
		tmp := make([]int32, n)
		if err := v.ReadInt32s(tmp); err != nil {
			return nil, err
		}
		out := make([]float64, n)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, nil
	case netcdf.SHORT:
		tmp := make([]int16, n)
		if err := v.ReadInt16s(tmp); err != nil {
			return nil, err
		}
		out := make([]float64, n)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported variable type: %v", t)
	}
}

// fillValue returns the _FillValue or missing_value attribute if
// present.
func fillValue(v netcdf.Var) (float64, bool) {
	for _, name := range []string{"_FillValue", "missing_value"} {
		a := v.Attr(name)
		if a == (netcdf.Attr{}) {
			continue
		}
		n, err := a.Len()
		if err != nil || n == 0 {
			continue
		}
		buf64 := make([]float64, 1)
		if err := a.ReadFloat64s(buf64); err == nil {
			return buf64[0], true
		}
		buf32 := make([]float32, 1)
		if err := a.ReadFloat32s(buf32); err == nil {
			return float64(buf32[0]), true
		}
	}
	return 0, false
}

func reshape(flat []float64, rows, cols int) [][]float64 {
	out := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		out[i] = flat[i*cols : (i+1)*cols]
	}
	return out
}

func transpose(data [][]float64) [][]float64 {
	if len(data) == 0 {
		return data
	}
	out := make([][]float64, len(data[0]))
	for i := range out {
		row := make([]float64, len(data))
		for j := range data {
			row[j] = data[j][i]
		}
		out[i] = row
	}
	return out
}
