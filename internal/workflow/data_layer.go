package workflow

// DataLayer holds the raw payloads collected by a trigger, keyed by data-type
// id. Iteration follows insertion order.
type DataLayer struct {
	order []string
	items map[string]any
}

// NewDataLayer returns an empty data layer.
func NewDataLayer() *DataLayer {
	return &DataLayer{items: make(map[string]any)}
}

// Set stores payload under typeID. Replacing an existing entry keeps its
// original position.
func (d *DataLayer) Set(typeID string, payload any) *DataLayer {
	if _, ok := d.items[typeID]; !ok {
		d.order = append(d.order, typeID)
	}
	d.items[typeID] = payload
	return d
}

// Get returns the payload stored under typeID.
func (d *DataLayer) Get(typeID string) (any, bool) {
	if d == nil {
		return nil, false
	}
	v, ok := d.items[typeID]
	return v, ok
}

// Len returns the number of entries.
func (d *DataLayer) Len() int {
	if d == nil {
		return 0
	}
	return len(d.order)
}

// Each calls fn for every entry in insertion order.
func (d *DataLayer) Each(fn func(typeID string, payload any)) {
	if d == nil {
		return
	}
	for _, id := range d.order {
		fn(id, d.items[id])
	}
}
