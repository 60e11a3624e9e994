package listing

// Direction of a column sort.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection returns d for "asc" or "desc", and fallback otherwise.
func ParseDirection(s string, fallback Direction) Direction {
	switch Direction(s) {
	case Asc, Desc:
		return Direction(s)
	}
	return fallback
}

// SortState is the current column sort of a table view.
type SortState struct {
	Key SortKey
	Dir Direction
}

// DefaultTableSort is the database table's initial sort.
var DefaultTableSort = SortState{Key: SortDate, Dir: Desc}

// Toggle applies a click on column key: the same column flips direction,
// a different column becomes the sort column, descending.
func (s SortState) Toggle(key SortKey) SortState {
	if s.Key == key {
		if s.Dir == Asc {
			return SortState{Key: key, Dir: Desc}
		}
		return SortState{Key: key, Dir: Asc}
	}
	return SortState{Key: key, Dir: Desc}
}
