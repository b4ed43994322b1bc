package dataset

import "fmt"

// StationIndex maps station name to registry position.
type StationIndex struct {
	positions map[string]int
	names     []string
}

// BuildIndex derives the station index from the first row of each table.
func BuildIndex(reg *Registry) (*StationIndex, error) {
	idx := &StationIndex{
		positions: make(map[string]int, reg.Len()),
		names:     make([]string, 0, reg.Len()),
	}
	for i, t := range reg.tables {
		name, ok := t.Station()
		if !ok {
			return nil, &EmptyTableError{Index: i, File: t.File()}
		}
		if prev, exists := idx.positions[name]; exists {
			return nil, &DuplicateStationError{Station: name, First: prev, Second: i}
		}
		idx.positions[name] = i
		idx.names = append(idx.names, name)
	}
	return idx, nil
}

// Lookup returns the registry position of station.
func (x *StationIndex) Lookup(station string) (int, bool) {
	pos, ok := x.positions[station]
	return pos, ok
}

// Len returns the number of indexed stations.
func (x *StationIndex) Len() int {
	return len(x.names)
}

// Stations returns the indexed names in registry order.
func (x *StationIndex) Stations() []string {
	out := make([]string, len(x.names))
	copy(out, x.names)
	return out
}

// Positions returns a copy of the name to position mapping.
func (x *StationIndex) Positions() map[string]int {
	out := make(map[string]int, len(x.positions))
	for k, v := range x.positions {
		out[k] = v
	}
	return out
}

// Resolve returns the table owning station. The same *Table is returned on
// every call.
func Resolve(station string, idx *StationIndex, reg *Registry) (*Table, error) {
	pos, ok := idx.Lookup(station)
	if !ok {
		return nil, &UnknownStationError{Station: station}
	}
	t, ok := reg.Table(pos)
	if !ok {
		return nil, fmt.Errorf("station %q: position %d outside registry of %d tables", station, pos, reg.Len())
	}
	return t, nil
}
