package cursor

// Columns maps column names to their position in a query shape. A name that is
// not part of the shape has no entry rather than a sentinel position.
type Columns struct {
	index map[string]int
}

func NewColumns(names []string) Columns {
	index := make(map[string]int, len(names))
	for i, name := range names {
		if _, ok := index[name]; !ok {
			index[name] = i
		}
	}
	return Columns{index: index}
}

func (c Columns) Lookup(name string) (int, bool) {
	i, ok := c.index[name]
	return i, ok
}

func (c Columns) Has(name string) bool {
	_, ok := c.index[name]
	return ok
}

func (c Columns) Len() int {
	return len(c.index)
}
