package cache

// Document is the on-disk shape of the JSON backend.
type Document struct {
	Discover map[string][]int64 `json:"discover"`
	Items    map[string]Item    `json:"items"`
}

// NewDocument returns an empty document with both namespaces allocated.
func NewDocument() *Document {
	return &Document{
		Discover: map[string][]int64{},
		Items:    map[string]Item{},
	}
}

func (d *Document) ensure() {
	if d.Discover == nil {
		d.Discover = map[string][]int64{}
	}
	if d.Items == nil {
		d.Items = map[string]Item{}
	}
}

func (d *Document) stats() (keys, items, links int) {
	for _, item := range d.Items {
		links += len(item.StreamingLinks)
	}
	return len(d.Discover), len(d.Items), links
}
