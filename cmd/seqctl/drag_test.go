package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/sequencer"
)

func rowsABCD() []sequencer.Row {
	return []sequencer.Row{
		{ID: 1, Sequence: 0, Title: "A"},
		{ID: 2, Sequence: 1, Title: "B"},
		{ID: 3, Sequence: 2, Title: "C"},
		{ID: 4, Sequence: 3, Title: "D"},
	}
}

func ids(rows []sequencer.Row) []int64 {
	out := make([]int64, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}

func TestDrag_CrossesEveryRow(t *testing.T) {
	var crossings []int64
	store := sequencer.StoreFunc(func(ctx context.Context, taskID, collectionID int64, newSequence int) (sequencer.Result, error) {
		assert.Equal(t, int64(1), taskID)
		assert.Equal(t, 2, newSequence)
		return sequencer.Result{Success: true}, nil
	})
	rec := sequencer.New(9, rowsABCD(), store, sequencer.WithObserver(func(tr sequencer.Transition) {
		if tr.To == sequencer.HoverTarget {
			crossings = append(crossings, tr.TaskID)
		}
	}))

	out := drag(context.Background(), rec, 1, 2)

	assert.Equal(t, sequencer.OutcomeCommitted, out.Kind)
	assert.Equal(t, []int64{2, 3, 1, 4}, ids(rec.Rows()))
	assert.Equal(t, []int64{2, 3}, crossings)
}

func TestDrag_Upwards(t *testing.T) {
	store := sequencer.StoreFunc(func(ctx context.Context, taskID, collectionID int64, newSequence int) (sequencer.Result, error) {
		return sequencer.Result{Success: true}, nil
	})
	rec := sequencer.New(9, rowsABCD(), store)

	out := drag(context.Background(), rec, 4, 0)

	assert.Equal(t, sequencer.OutcomeCommitted, out.Kind)
	assert.Equal(t, []int64{4, 1, 2, 3}, ids(rec.Rows()))
}

func TestDrag_SamePositionIsNoOp(t *testing.T) {
	called := false
	store := sequencer.StoreFunc(func(ctx context.Context, taskID, collectionID int64, newSequence int) (sequencer.Result, error) {
		called = true
		return sequencer.Result{Success: true}, nil
	})
	rec := sequencer.New(9, rowsABCD(), store)

	out := drag(context.Background(), rec, 2, 1)

	assert.Equal(t, sequencer.OutcomeNoOp, out.Kind)
	assert.False(t, called)
}

func TestDrag_UnknownTaskRejected(t *testing.T) {
	rec := sequencer.New(9, rowsABCD(), sequencer.StoreFunc(nil))

	out := drag(context.Background(), rec, 99, 0)

	assert.Equal(t, sequencer.OutcomeRejected, out.Kind)
	assert.ErrorIs(t, out.Err, sequencer.ErrRejectedDragStart)
}

func TestDrag_OutOfRangeCancels(t *testing.T) {
	rec := sequencer.New(9, rowsABCD(), sequencer.StoreFunc(nil))

	out := drag(context.Background(), rec, 1, 7)

	assert.Equal(t, sequencer.OutcomeCancelled, out.Kind)
	assert.ErrorIs(t, out.Err, sequencer.ErrInvalidIndex)
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(rec.Rows()))
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	err := report(&buf, sequencer.Outcome{
		Kind:      sequencer.OutcomeCommitted,
		Operation: sequencer.DragOperation{TaskID: 2, FromIndex: 1, ToIndex: 0},
		Rows:      []sequencer.Row{{ID: 2, Title: "B"}, {ID: 1, Title: "A"}},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "moved task 2 from 1 to 0")
	assert.Contains(t, buf.String(), "*   0  #2")

	buf.Reset()
	err = report(&buf, sequencer.Outcome{
		Kind: sequencer.OutcomeRolledBack,
		Err:  errors.New("sequence commit failed: boom"),
		Rows: rowsABCD(),
	})
	assert.ErrorContains(t, err, "rolled back")
}
