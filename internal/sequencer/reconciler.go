package sequencer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// State is the per-row reconciler state, exposed to the presentation layer for styling.
type State int

const (
	Idle State = iota
	Dragging
	HoverTarget
	PendingCommit
	Committed
	RolledBack
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Dragging:
		return "DRAGGING"
	case HoverTarget:
		return "HOVER_TARGET"
	case PendingCommit:
		return "PENDING_COMMIT"
	case Committed:
		return "COMMITTED"
	case RolledBack:
		return "ROLLED_BACK"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Transition is published to the observer every time a row changes state. Err is set
// on the transition into RolledBack.
type Transition struct {
	TaskID int64
	From   State
	To     State
	Err    error
}

// Observer receives transitions outside the reconciler lock.
type Observer func(Transition)

// OutcomeKind classifies how a drop was resolved.
type OutcomeKind int

const (
	OutcomeRejected OutcomeKind = iota
	OutcomeCancelled
	OutcomeNoOp
	OutcomeCommitted
	OutcomeRolledBack
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeRejected:
		return "rejected"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeNoOp:
		return "noop"
	case OutcomeCommitted:
		return "committed"
	case OutcomeRolledBack:
		return "rolled_back"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome is what OnDrop resolves to. Err is the notification payload for the user and
// is only set for rejected, cancelled and rolled back drops.
type Outcome struct {
	Kind      OutcomeKind
	Operation DragOperation
	Rows      []Row
	Err       error
}

// ErrNotDragging is returned by OnDrop for a task that is not being dragged.
var ErrNotDragging = errors.New("task is not being dragged")

type dragSession struct {
	taskID    int64
	fromIndex int
	snapshot  []Row
	hoverID   int64
}

// Reconciler owns one ordered collection. All methods are safe for concurrent use;
// the store call in OnDrop runs without holding the internal mutex so drag starts
// issued meanwhile are answered (and refused) immediately.
type Reconciler struct {
	mu           sync.Mutex
	collectionID int64
	store        Store
	rows         []Row
	states       map[int64]State
	disabled     map[int64]bool
	drag         *dragSession
	locked       bool
	holdID       int64
	generation   uint64

	confirm   time.Duration
	cooldown  time.Duration
	afterFunc func(time.Duration, func())
	observer  Observer
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithObserver registers the transition observer.
func WithObserver(o Observer) Option {
	return func(r *Reconciler) { r.observer = o }
}

// WithConfirmation keeps a committed row in Committed, and the collection locked, for d.
func WithConfirmation(d time.Duration) Option {
	return func(r *Reconciler) { r.confirm = d }
}

// WithCooldown keeps the collection locked for d after a rollback.
func WithCooldown(d time.Duration) Option {
	return func(r *Reconciler) { r.cooldown = d }
}

// New builds a reconciler for collectionID. Rows must already be ordered by sequence.
func New(collectionID int64, rows []Row, store Store, opts ...Option) *Reconciler {
	r := &Reconciler{
		collectionID: collectionID,
		store:        store,
		rows:         cloneRows(rows),
		states:       make(map[int64]State),
		disabled:     make(map[int64]bool),
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CollectionID returns the id of the parent collection.
func (r *Reconciler) CollectionID() int64 {
	return r.collectionID
}

// Rows returns a copy of the current local order.
func (r *Reconciler) Rows() []Row {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneRows(r.rows)
}

// State returns the state of a row. Unknown rows are Idle.
func (r *Reconciler) State(taskID int64) State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.states[taskID]
}

// Locked reports whether the collection-wide drag lock is held.
func (r *Reconciler) Locked() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.locked
}

// CanDrag is the capability handed to each row: whether a drag may start on it now.
func (r *Reconciler) CanDrag(taskID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.canDragLocked(taskID)
}

func (r *Reconciler) canDragLocked(taskID int64) bool {
	return !r.locked && r.drag == nil && !r.disabled[taskID] && indexOf(r.rows, taskID) >= 0
}

// SetDragDisabled toggles dragging for a single row.
func (r *Reconciler) SetDragDisabled(taskID int64, disabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if disabled {
		r.disabled[taskID] = true
		return
	}
	delete(r.disabled, taskID)
}

// OnDragStart begins a drag and reports whether it was accepted.
func (r *Reconciler) OnDragStart(taskID int64) bool {
	r.mu.Lock()
	if !r.canDragLocked(taskID) {
		r.mu.Unlock()
		return false
	}
	r.drag = &dragSession{
		taskID:    taskID,
		fromIndex: indexOf(r.rows, taskID),
		snapshot:  cloneRows(r.rows),
	}
	ts := []Transition{r.setState(taskID, Dragging, nil)}
	r.mu.Unlock()
	r.emit(ts)
	return true
}

// OnHover handles a pointer move of the dragged row over the row at hoverIndex and
// reorders locally once the pointer crosses that row's midpoint in the drag direction.
// It reports whether a reorder happened.
func (r *Reconciler) OnHover(draggedID int64, hoverIndex int, g Geometry) bool {
	r.mu.Lock()
	if r.drag == nil || r.drag.taskID != draggedID || hoverIndex < 0 || hoverIndex >= len(r.rows) {
		r.mu.Unlock()
		return false
	}
	var ts []Transition
	ts = append(ts, r.markHover(r.rows[hoverIndex].ID)...)
	dragIndex := indexOf(r.rows, draggedID)
	moved := crossed(dragIndex, hoverIndex, g)
	if moved {
		move(r.rows, dragIndex, hoverIndex)
	}
	r.mu.Unlock()
	r.emit(ts)
	return moved
}

// OnHoverCross splices the dragged row into targetIndex. The caller has already decided
// that the pointer crossed the target.
func (r *Reconciler) OnHoverCross(draggedID int64, targetIndex int) bool {
	r.mu.Lock()
	if r.drag == nil || r.drag.taskID != draggedID || targetIndex < 0 || targetIndex >= len(r.rows) {
		r.mu.Unlock()
		return false
	}
	dragIndex := indexOf(r.rows, draggedID)
	if dragIndex == targetIndex {
		r.mu.Unlock()
		return false
	}
	ts := r.markHover(r.rows[targetIndex].ID)
	move(r.rows, dragIndex, targetIndex)
	r.mu.Unlock()
	r.emit(ts)
	return true
}

// OnDragCancel abandons the current drag without side effects.
func (r *Reconciler) OnDragCancel(taskID int64) {
	r.mu.Lock()
	if r.drag == nil || r.drag.taskID != taskID {
		r.mu.Unlock()
		return
	}
	ts := r.endDragLocked()
	r.rows = r.drag.snapshot
	r.drag = nil
	r.mu.Unlock()
	r.emit(ts)
}

// OnDrop finishes the drag of taskID at finalIndex. A move sends exactly one store
// request; the call blocks until the store answers and never returns a failure other
// than through the Outcome.
func (r *Reconciler) OnDrop(ctx context.Context, taskID int64, finalIndex int) Outcome {
	r.mu.Lock()
	if r.drag == nil || r.drag.taskID != taskID {
		r.mu.Unlock()
		return Outcome{Kind: OutcomeRejected, Err: ErrNotDragging}
	}
	op := DragOperation{TaskID: taskID, FromIndex: r.drag.fromIndex, ToIndex: finalIndex}

	if finalIndex < 0 || finalIndex >= len(r.rows) {
		ts := r.endDragLocked()
		r.rows = r.drag.snapshot
		r.drag = nil
		rows := cloneRows(r.rows)
		r.mu.Unlock()
		r.emit(ts)
		return Outcome{Kind: OutcomeCancelled, Operation: op, Rows: rows, Err: ErrInvalidIndex}
	}

	if current := indexOf(r.rows, taskID); current != finalIndex {
		move(r.rows, current, finalIndex)
	}

	if finalIndex == op.FromIndex {
		ts := r.endDragLocked()
		r.rows = r.drag.snapshot
		r.drag = nil
		rows := cloneRows(r.rows)
		r.mu.Unlock()
		r.emit(ts)
		return Outcome{Kind: OutcomeNoOp, Operation: op, Rows: rows}
	}

	ts := r.clearHover()
	ts = append(ts, r.setState(taskID, PendingCommit, nil))
	snapshot := r.drag.snapshot
	r.drag = nil
	r.locked = true
	r.holdID = taskID
	r.generation++
	gen := r.generation
	r.mu.Unlock()
	r.emit(ts)

	res, err := r.store.UpdateSequence(ctx, taskID, r.collectionID, finalIndex)

	r.mu.Lock()
	commitErr := r.evaluate(res, err, taskID)
	var kind OutcomeKind
	var hold time.Duration
	if commitErr == nil {
		kind = OutcomeCommitted
		hold = r.confirm
		ts = []Transition{r.setState(taskID, Committed, nil)}
	} else {
		kind = OutcomeRolledBack
		hold = r.cooldown
		r.rows = snapshot
		ts = []Transition{r.setState(taskID, RolledBack, commitErr)}
	}
	if hold <= 0 {
		ts = append(ts, r.settleLocked(gen)...)
	}
	rows := cloneRows(r.rows)
	r.mu.Unlock()
	r.emit(ts)

	if hold > 0 {
		r.afterFunc(hold, func() { r.settle(gen) })
	}
	return Outcome{Kind: kind, Operation: op, Rows: rows, Err: commitErr}
}

// evaluate applies a store reply to the local rows and returns the commit error, if any.
func (r *Reconciler) evaluate(res Result, err error, taskID int64) error {
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCommitFailure, err)
	}
	if !res.Success {
		if res.Message != "" {
			return fmt.Errorf("%w: %s", ErrCommitFailure, res.Message)
		}
		return ErrCommitFailure
	}
	if res.UpdatedCollection == nil {
		renumber(r.rows)
		return nil
	}
	if verr := validateCollection(res.UpdatedCollection, taskID); verr != nil {
		return fmt.Errorf("%w: %w", ErrCommitFailure, verr)
	}
	r.rows = r.merge(res.UpdatedCollection)
	return nil
}

// merge keeps local titles for served rows that come back without one.
func (r *Reconciler) merge(served []Row) []Row {
	titles := make(map[int64]string, len(r.rows))
	for _, row := range r.rows {
		titles[row.ID] = row.Title
	}
	out := cloneRows(served)
	for i := range out {
		if out[i].Title == "" {
			out[i].Title = titles[out[i].ID]
		}
	}
	return out
}

// Settle ends the confirmation or cool-down hold immediately.
func (r *Reconciler) Settle(taskID int64) {
	r.mu.Lock()
	if r.holdID != taskID {
		r.mu.Unlock()
		return
	}
	ts := r.settleLocked(r.generation)
	r.mu.Unlock()
	r.emit(ts)
}

func (r *Reconciler) settle(gen uint64) {
	r.mu.Lock()
	ts := r.settleLocked(gen)
	r.mu.Unlock()
	r.emit(ts)
}

func (r *Reconciler) settleLocked(gen uint64) []Transition {
	if gen != r.generation || !r.locked {
		return nil
	}
	state := r.states[r.holdID]
	if state != Committed && state != RolledBack {
		return nil
	}
	t := r.setState(r.holdID, Idle, nil)
	r.locked = false
	r.holdID = 0
	return []Transition{t}
}

// Reload replaces the collection with a fresh server fetch.
func (r *Reconciler) Reload(rows []Row) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.drag != nil || r.locked {
		return ErrBusy
	}
	r.rows = cloneRows(rows)
	r.states = make(map[int64]State)
	return nil
}

func (r *Reconciler) setState(taskID int64, to State, err error) Transition {
	from := r.states[taskID]
	if to == Idle {
		delete(r.states, taskID)
	} else {
		r.states[taskID] = to
	}
	return Transition{TaskID: taskID, From: from, To: to, Err: err}
}

func (r *Reconciler) markHover(targetID int64) []Transition {
	if r.drag.hoverID == targetID || targetID == r.drag.taskID {
		return nil
	}
	ts := r.clearHover()
	r.drag.hoverID = targetID
	return append(ts, r.setState(targetID, HoverTarget, nil))
}

func (r *Reconciler) clearHover() []Transition {
	if r.drag.hoverID == 0 {
		return nil
	}
	id := r.drag.hoverID
	r.drag.hoverID = 0
	return []Transition{r.setState(id, Idle, nil)}
}

func (r *Reconciler) endDragLocked() []Transition {
	ts := r.clearHover()
	return append(ts, r.setState(r.drag.taskID, Idle, nil))
}

func (r *Reconciler) emit(ts []Transition) {
	if r.observer == nil {
		return
	}
	for _, t := range ts {
		r.observer(t)
	}
}
