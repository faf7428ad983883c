// Package sequencer keeps a client-visible ordered task list consistent with the
// sequence persisted by the server while the user drags rows around.
package sequencer

// Row is one task in an ordered collection.
type Row struct {
	ID       int64
	Sequence int
	Title    string
}

// DragOperation describes a completed drag gesture.
type DragOperation struct {
	TaskID    int64
	FromIndex int
	ToIndex   int
}

// move removes the element at from and inserts it at to. Indexes must be valid.
func move(rows []Row, from, to int) {
	if from == to {
		return
	}
	row := rows[from]
	if from < to {
		copy(rows[from:to], rows[from+1:to+1])
	} else {
		copy(rows[to+1:from+1], rows[to:from])
	}
	rows[to] = row
}

func indexOf(rows []Row, id int64) int {
	for i, r := range rows {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func cloneRows(rows []Row) []Row {
	if rows == nil {
		return nil
	}
	out := make([]Row, len(rows))
	copy(out, rows)
	return out
}

// renumber assigns each row its index as sequence.
func renumber(rows []Row) {
	for i := range rows {
		rows[i].Sequence = i
	}
}
