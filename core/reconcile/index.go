package reconcile

// KeyIndex maps key values to the data-row positions that hold them.
type KeyIndex struct {
	positions map[string]int

	// Orphans lists positions whose key cell is empty. They are never matched.
	Orphans []int

	// Duplicates lists positions whose key was already indexed at an earlier row.
	Duplicates []int
}

// BuildKeyIndex scans rows once and indexes them by the cell at keyColumn.
// A negative keyColumn yields an empty index, so every record becomes an insert.
// When the store already holds a key twice the first row wins.
func BuildKeyIndex(rows []Row, keyColumn int) *KeyIndex {
	idx := &KeyIndex{positions: make(map[string]int, len(rows))}
	if keyColumn < 0 {
		return idx
	}

	for _, row := range rows {
		key := row.Value(keyColumn)
		if key == "" {
			idx.Orphans = append(idx.Orphans, row.Position)
			continue
		}
		if _, exists := idx.positions[key]; exists {
			idx.Duplicates = append(idx.Duplicates, row.Position)
			continue
		}
		idx.positions[key] = row.Position
	}

	return idx
}

// Lookup returns the position of key.
func (k *KeyIndex) Lookup(key string) (int, bool) {
	pos, ok := k.positions[key]
	return pos, ok
}

// Len returns the number of indexed keys.
func (k *KeyIndex) Len() int {
	return len(k.positions)
}
