package source

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/routegap/core/model"
	coresource "github.com/kilianp07/routegap/core/source"
)

// File reads a dataset from a YAML, JSON or CSV file. The file is read on
// every Load.
type File struct {
	path string
}

// NewFile returns a File source for path.
func NewFile(path string) (*File, error) {
	switch ext(path) {
	case ".yaml", ".yml", ".json", ".csv":
		return &File{path: path}, nil
	default:
		return nil, fmt.Errorf("unsupported route file format: %q", filepath.Ext(path))
	}
}

// Load parses the file. Duplicate route names are rejected here; value
// checks are left to the analyzer.
func (f *File) Load(ctx context.Context) (model.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return model.Dataset{}, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return model.Dataset{}, err
	}
	ds, err := decode(ext(f.path), data)
	if err != nil {
		return model.Dataset{}, fmt.Errorf("%s: %w", f.path, err)
	}
	if ds.Name == "" {
		ds.Name = filepath.Base(f.path)
	}
	return ds, nil
}

// decode parses a dataset in the given format (a file extension) and rejects
// duplicate route names.
func decode(format string, data []byte) (model.Dataset, error) {
	var ds model.Dataset
	var err error
	switch format {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &ds)
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&ds)
	case ".csv":
		ds.Records, err = ReadCSV(bytes.NewReader(data))
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return model.Dataset{}, fmt.Errorf("%w: %v", coresource.ErrMalformed, err)
	}
	if err := checkNames(ds.Names()); err != nil {
		return model.Dataset{}, err
	}
	return ds, nil
}

var csvColumns = map[string][]string{
	"route_name":        {"route_name", "route"},
	"passenger_demand":  {"passenger_demand", "demand"},
	"vehicles_assigned": {"vehicles_assigned", "vehicles"},
}

// ReadCSV parses route records from CSV with a header row. Columns are
// matched by name, extra columns are ignored, so an exported analysis can be
// read back.
func ReadCSV(r io.Reader) ([]model.RouteRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("missing header")
		}
		return nil, err
	}
	idx := map[string]int{}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		for col, aliases := range csvColumns {
			for _, a := range aliases {
				if h == a {
					if _, seen := idx[col]; !seen {
						idx[col] = i
					}
				}
			}
		}
	}
	for col := range csvColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing column %s", col)
		}
	}
	var records []model.RouteRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		demand, err := strconv.Atoi(strings.TrimSpace(row[idx["passenger_demand"]]))
		if err != nil {
			return nil, fmt.Errorf("line %d: passenger_demand: %w", line, err)
		}
		vehicles, err := strconv.Atoi(strings.TrimSpace(row[idx["vehicles_assigned"]]))
		if err != nil {
			return nil, fmt.Errorf("line %d: vehicles_assigned: %w", line, err)
		}
		records = append(records, model.RouteRecord{
			RouteName:        strings.TrimSpace(row[idx["route_name"]]),
			PassengerDemand:  demand,
			VehiclesAssigned: vehicles,
		})
	}
	return records, nil
}

func checkNames(names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			return fmt.Errorf("%w: duplicate route name %q", coresource.ErrMalformed, n)
		}
		seen[n] = struct{}{}
	}
	return nil
}

func ext(path string) string { return strings.ToLower(filepath.Ext(path)) }
