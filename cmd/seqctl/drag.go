package main

import (
	"context"
	"fmt"

	"taskboard/internal/sequencer"
)

// drag replays a pointer drag of taskID to index to: one hover crossing per row the
// pointer passes, then the drop.
func drag(ctx context.Context, rec *sequencer.Reconciler, taskID int64, to int) sequencer.Outcome {
	if !rec.OnDragStart(taskID) {
		return sequencer.Outcome{
			Kind: sequencer.OutcomeRejected,
			Err:  fmt.Errorf("%w: task %d", sequencer.ErrRejectedDragStart, taskID),
		}
	}

	from := indexOf(rec.Rows(), taskID)
	if to < 0 || to >= len(rec.Rows()) {
		return rec.OnDrop(ctx, taskID, to)
	}

	step := 1
	if to < from {
		step = -1
	}
	for i := from; i != to; i += step {
		rec.OnHoverCross(taskID, i+step)
	}
	return rec.OnDrop(ctx, taskID, to)
}

func indexOf(rows []sequencer.Row, id int64) int {
	for i, r := range rows {
		if r.ID == id {
			return i
		}
	}
	return -1
}
