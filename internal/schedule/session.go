// Package schedule ties the week projection, the selection machine and the
// slot store together into the editing session behind the calendar view.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/javiermolinar/hourly/internal/calendar"
	"github.com/javiermolinar/hourly/internal/constraint"
	"github.com/javiermolinar/hourly/internal/reconcile"
	"github.com/javiermolinar/hourly/internal/selection"
	"github.com/javiermolinar/hourly/internal/slot"
	"github.com/javiermolinar/hourly/internal/store"
)

// Session errors.
var (
	ErrCommitInFlight  = errors.New("a commit is already in progress")
	ErrNothingToCommit = errors.New("nothing to commit")
	ErrHourNotVisible  = errors.New("hour is outside the visible range")
)

// Store is the part of *store.Store the session uses.
type Store interface {
	Consultant() string
	SetConsultant(id string)
	Snapshot() slot.Snapshot
	LoadAll(ctx context.Context) error
	BatchCreate(ctx context.Context, drafts []slot.Draft) (int, error)
	DeleteAll(ctx context.Context, ids []slot.ID) (int, error)
}

// Config holds the session settings.
type Config struct {
	Hours          []slot.Hour
	MinWeeklySlots int
	Now            func() time.Time
}

// Session is the editing state of one consultant's calendar.
// Everything except Apply, Reload and Busy must be called from a single goroutine.
type Session struct {
	store     Store
	hours     []slot.Hour
	validator constraint.Validator
	now       func() time.Time
	logger    *zap.Logger

	sel    *selection.Engine
	offset int
	busy   atomic.Bool
}

// New creates a session on the current week.
func New(st Store, cfg Config, logger *zap.Logger) *Session {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		store:     st,
		hours:     cfg.Hours,
		validator: constraint.New(cfg.MinWeeklySlots),
		now:       cfg.Now,
		logger:    logger.Named("session"),
	}
	s.sel = selection.NewEngine(len(cfg.Hours), selection.WithLock(s.locked))
	return s
}

// Hours returns the visible hours, one per grid row.
func (s *Session) Hours() []slot.Hour {
	return s.hours
}

// HourIndex returns the row of h.
func (s *Session) HourIndex(h slot.Hour) (int, bool) {
	for i, v := range s.hours {
		if v == h {
			return i, true
		}
	}
	return 0, false
}

// MinWeeklySlots returns the weekly floor enforced on commit.
func (s *Session) MinWeeklySlots() int {
	return s.validator.MinWeeklySlots
}

// Now returns the session clock.
func (s *Session) Now() time.Time {
	return s.now()
}

// WeekOffset returns the displayed week relative to the current one.
func (s *Session) WeekOffset() int {
	return s.offset
}

// SetWeekOffset moves to another week and drops the selection.
func (s *Session) SetWeekOffset(offset int) {
	if offset == s.offset {
		return
	}
	s.offset = offset
	s.sel.Clear()
}

// NextWeek moves one week forward.
func (s *Session) NextWeek() {
	s.SetWeekOffset(s.offset + 1)
}

// PrevWeek moves one week back.
func (s *Session) PrevWeek() {
	s.SetWeekOffset(s.offset - 1)
}

// Week returns the projection of the displayed week.
func (s *Session) Week() calendar.Week {
	return calendar.Project(s.now(), s.offset)
}

// Busy returns true while a commit is running.
func (s *Session) Busy() bool {
	return s.busy.Load()
}

// Snapshot returns the store contents.
func (s *Session) Snapshot() slot.Snapshot {
	return s.store.Snapshot()
}

// Consultant returns the consultant being edited.
func (s *Session) Consultant() string {
	return s.store.Consultant()
}

// SetConsultant switches to another consultant's calendar. The selection and
// the loaded lists are dropped; a reload still in flight for the previous
// consultant is discarded by the store. Refused while a commit runs.
func (s *Session) SetConsultant(id string) error {
	if s.Busy() {
		return ErrCommitInFlight
	}
	s.sel.Clear()
	s.store.SetConsultant(id)
	s.logger.Info("consultant switched", zap.String("consultant_id", id))
	return nil
}

// Reload refreshes the store.
func (s *Session) Reload(ctx context.Context) error {
	return s.store.LoadAll(ctx)
}

// CellView is everything the grid needs to draw one cell.
type CellView struct {
	Day         calendar.Day
	Hour        slot.Hour
	Start       time.Time
	Slot        *slot.Slot
	Appointment *slot.Appointment
	Marked      bool
	Booked      bool
	Past        bool
}

// Locked returns true if the cell cannot be selected.
func (c CellView) Locked() bool {
	return c.Booked || c.Past
}

// Cell describes one cell of the displayed week.
func (s *Session) Cell(day, row int) CellView {
	return s.cellView(s.Week(), s.store.Snapshot(), day, row)
}

// Grid describes every cell of the displayed week, indexed [day][row].
func (s *Session) Grid() [calendar.DaysPerWeek][]CellView {
	week := s.Week()
	snap := s.store.Snapshot()

	var grid [calendar.DaysPerWeek][]CellView
	for d := 0; d < calendar.DaysPerWeek; d++ {
		grid[d] = make([]CellView, len(s.hours))
		for r := range s.hours {
			grid[d][r] = s.cellView(week, snap, d, r)
		}
	}
	return grid
}

func (s *Session) cellView(week calendar.Week, snap slot.Snapshot, day, row int) CellView {
	d := week[day]
	h := s.hours[row]
	v := CellView{
		Day:    d,
		Hour:   h,
		Start:  d.At(int(h)),
		Marked: s.sel.IsMarked(selection.Cell{Week: s.offset, Day: day, Hour: row}),
		Booked: calendar.IsBooked(d, h, snap),
	}
	v.Past = v.Start.Before(s.now())
	if sl, ok := calendar.FindSlot(d, h, snap.Slots); ok {
		v.Slot = &sl
	}
	if a, ok := calendar.FindAppointment(d, h, snap.Appointments); ok {
		v.Appointment = &a
	}
	return v
}

// locked is the selection lock predicate: booked cells, past cells and cells
// of another week cannot be marked.
func (s *Session) locked(c selection.Cell) bool {
	if c.Week != s.offset || c.Hour < 0 || c.Hour >= len(s.hours) || c.Day < 0 || c.Day >= calendar.DaysPerWeek {
		return true
	}
	week := s.Week()
	d := week[c.Day]
	h := s.hours[c.Hour]
	if d.At(int(h)).Before(s.now()) {
		return true
	}
	return calendar.IsBooked(d, h, s.store.Snapshot())
}

func (s *Session) cell(day, row int) selection.Cell {
	return selection.Cell{Week: s.offset, Day: day, Hour: row}
}

// PointerDown starts a click or drag on a cell.
func (s *Session) PointerDown(day, row int) error {
	return s.sel.PointerDown(s.cell(day, row))
}

// PointerEnter extends a drag into a cell.
func (s *Session) PointerEnter(day, row int) {
	s.sel.PointerEnter(s.cell(day, row))
}

// PointerUp ends a drag.
func (s *Session) PointerUp() {
	s.sel.PointerUp()
}

// Dragging returns true while a drag is in progress.
func (s *Session) Dragging() bool {
	return s.sel.Dragging()
}

// ToggleDay toggles every free hour of a day.
func (s *Session) ToggleDay(day int) error {
	return s.sel.ToggleFullDay(s.offset, day)
}

// SelectRange runs a drag over rows from..to of one day, as a pointer would.
func (s *Session) SelectRange(day, from, to int) error {
	if from > to {
		from, to = to, from
	}
	if err := s.PointerDown(day, from); err != nil {
		return err
	}
	for r := from + 1; r <= to; r++ {
		s.PointerEnter(day, r)
	}
	s.PointerUp()
	return nil
}

// ClearSelection drops every mark.
func (s *Session) ClearSelection() {
	s.sel.Clear()
}

// Marked returns the marked cells of the displayed week.
func (s *Session) Marked() []selection.Cell {
	return s.sel.MarkedIn(s.offset)
}

// RowOf returns the grid row showing hour h.
func (s *Session) RowOf(h slot.Hour) (int, error) {
	if i, ok := s.HourIndex(h); ok {
		return i, nil
	}
	return 0, fmt.Errorf("%s: %w", h, ErrHourNotVisible)
}

// WeeklyCount returns how many slots the displayed week holds now and how
// many it would hold once the selection is committed.
func (s *Session) WeeklyCount() (current, projected int) {
	week := s.Week()
	snap := s.store.Snapshot()
	current = len(calendar.SlotsInWeek(week, snap.Slots))
	plan := reconcile.Diff(s.Marked(), snap, week, s.hours)
	return current, current - len(plan.ToDelete) + len(plan.ToCreate)
}

// Prepare diffs the selection against the store and validates the result.
// The plan is returned even when validation fails.
func (s *Session) Prepare() (reconcile.Plan, error) {
	week := s.Week()
	snap := s.store.Snapshot()

	plan := reconcile.Diff(s.Marked(), snap, week, s.hours)
	if plan.Empty() {
		return plan, ErrNothingToCommit
	}
	if err := s.validator.Validate(week, snap, plan); err != nil {
		return plan, err
	}
	return plan, nil
}

// Result reports what a commit changed.
type Result struct {
	Plan    reconcile.Plan
	Created int
	Deleted int
	// ReloadErr is set when the mutations went through but the refresh failed.
	ReloadErr error
}

// Applied returns true if any mutation reached the backend.
func (r Result) Applied() bool {
	return r.Created > 0 || r.Deleted > 0
}

// Commit prepares and applies the selection, then clears it.
// The selection is kept when nothing was applied. Once any mutation went
// through it is cleared, since the marks no longer describe the reloaded state.
func (s *Session) Commit(ctx context.Context) (Result, error) {
	if s.Busy() {
		return Result{}, ErrCommitInFlight
	}
	plan, err := s.Prepare()
	if err != nil {
		return Result{Plan: plan}, err
	}
	res, err := s.Apply(ctx, plan)
	if res.Applied() || err == nil {
		s.sel.Clear()
	}
	return res, err
}

// Apply sends a prepared plan to the store: creates first, then deletes.
// It only touches the store, so the view can run it off its update loop and
// clear the selection when the result comes back.
func (s *Session) Apply(ctx context.Context, plan reconcile.Plan) (Result, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return Result{Plan: plan}, ErrCommitInFlight
	}
	defer s.busy.Store(false)

	res := Result{Plan: plan}
	if plan.Empty() {
		return res, ErrNothingToCommit
	}

	if len(plan.ToCreate) > 0 {
		n, err := s.store.BatchCreate(ctx, plan.ToCreate)
		res.Created = n
		if err != nil && !isFetch(err) {
			s.logger.Warn("commit aborted on create", zap.Int("drafts", len(plan.ToCreate)), zap.Error(err))
			return res, err
		}
		res.ReloadErr = err
	}

	if len(plan.ToDelete) > 0 {
		n, err := s.store.DeleteAll(ctx, plan.ToDelete)
		res.Deleted = n
		if err != nil && !isFetch(err) {
			s.logger.Warn("commit stopped on delete", zap.Int("deleted", n), zap.Error(err))
			return res, fmt.Errorf("deleting slots: %w", err)
		}
		if err != nil {
			res.ReloadErr = err
		}
	}

	s.logger.Info("commit applied", zap.Int("created", res.Created), zap.Int("deleted", res.Deleted))
	return res, nil
}

func isFetch(err error) bool {
	var ferr *store.FetchError
	return errors.As(err, &ferr)
}
