package native

// Document is a native record: a document unique identifier (UNID) and its
// items. Item names are unique within a document.
type Document struct {
	UNID  string
	Items []Item
}

// NewDocument returns a document holding items, without a UNID.
func NewDocument(items ...Item) Document {
	return Document{Items: items}
}

// Item returns the item named name.
func (d Document) Item(name string) (Item, bool) {
	for _, it := range d.Items {
		if it.Name == name {
			return it, true
		}
	}
	return Item{}, false
}

// ItemNames returns the names of the document's items in order.
func (d Document) ItemNames() []string {
	names := make([]string, len(d.Items))
	for i, it := range d.Items {
		names[i] = it.Name
	}
	return names
}

// Project returns a copy of d restricted to the named items. A nil names
// slice keeps every item.
func (d Document) Project(names []string) Document {
	if names == nil {
		return d
	}
	keep := make(map[string]bool, len(names))
	for _, n := range names {
		keep[n] = true
	}
	out := Document{UNID: d.UNID}
	for _, it := range d.Items {
		if keep[it.Name] {
			out.Items = append(out.Items, it)
		}
	}
	return out
}

// Merge returns d with the items of other replacing or extending its own.
func (d Document) Merge(other Document) Document {
	out := Document{UNID: d.UNID, Items: make([]Item, 0, len(d.Items)+len(other.Items))}
	replaced := make(map[string]Item, len(other.Items))
	for _, it := range other.Items {
		replaced[it.Name] = it
	}
	for _, it := range d.Items {
		if r, ok := replaced[it.Name]; ok {
			out.Items = append(out.Items, r)
			delete(replaced, it.Name)
			continue
		}
		out.Items = append(out.Items, it)
	}
	for _, it := range other.Items {
		if _, ok := replaced[it.Name]; ok {
			out.Items = append(out.Items, it)
		}
	}
	return out
}
