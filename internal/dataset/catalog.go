package dataset

import "time"

// Catalog pairs a registry with its station index. Both are immutable after
// Open returns and may be shared across goroutines without locking.
type Catalog struct {
	registry *Registry
	index    *StationIndex
	loadedAt time.Time
}

// Open loads dir and indexes it.
func Open(dir string) (*Catalog, error) {
	reg, err := Load(dir)
	if err != nil {
		return nil, err
	}
	idx, err := BuildIndex(reg)
	if err != nil {
		return nil, err
	}
	return &Catalog{registry: reg, index: idx, loadedAt: time.Now().UTC()}, nil
}

func (c *Catalog) Registry() *Registry {
	return c.registry
}

func (c *Catalog) Index() *StationIndex {
	return c.index
}

func (c *Catalog) LoadedAt() time.Time {
	return c.loadedAt
}

// Stations returns the selectable station names in registry order.
func (c *Catalog) Stations() []string {
	return c.index.Stations()
}

func (c *Catalog) Resolve(station string) (*Table, error) {
	return Resolve(station, c.index, c.registry)
}
