package tui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/javiermolinar/hourly/internal/db"
	"github.com/javiermolinar/hourly/internal/schedule"
	"github.com/javiermolinar/hourly/internal/slot"
	"github.com/javiermolinar/hourly/internal/store"
	"github.com/javiermolinar/hourly/internal/tui/commands"
	"github.com/javiermolinar/hourly/internal/tui/view"
)

// 2024-06-10 is a Monday; the clock sits before the first visible hour.
var monday = time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

func at(day, hour int) time.Time {
	return monday.AddDate(0, 0, day).Add(time.Duration(hour) * time.Hour)
}

type fixture struct {
	repo    *db.SQLite
	store   *store.Store
	session *schedule.Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo, err := db.New(filepath.Join(t.TempDir(), "hourly.db"))
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	hours, err := slot.Range("08:00", "18:00")
	if err != nil {
		t.Fatal(err)
	}
	st := store.New(repo, "c1", nil)
	session := schedule.New(st, schedule.Config{
		Hours: hours,
		Now:   func() time.Time { return at(0, 7) },
	}, nil)
	return &fixture{repo: repo, store: st, session: session}
}

// seedWeek creates 20 slots, Monday..Friday 08:00-11:00.
func (f *fixture) seedWeek(t *testing.T) {
	t.Helper()
	var drafts []slot.Draft
	for d := 0; d < 5; d++ {
		for h := 8; h < 12; h++ {
			drafts = append(drafts, slot.NewDraft(at(d, h)))
		}
	}
	if _, err := f.repo.CreateSlots(context.Background(), "c1", drafts); err != nil {
		t.Fatalf("CreateSlots: %v", err)
	}
}

func (f *fixture) model(t *testing.T) Model {
	t.Helper()
	if err := f.session.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	m := *New(f.session, "frappe", WithConsultant("c1"))
	m = update(t, m, commands.LoadedMsg{})
	return update(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return model
}

// press sends keys and returns the command of the last one.
func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

func asciiProfile(t *testing.T) {
	t.Helper()
	prev := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.Ascii)
	t.Cleanup(func() {
		lipgloss.SetColorProfile(prev)
	})
}

func TestModel_ToggleAndCommit(t *testing.T) {
	f := newFixture(t)
	f.seedWeek(t)
	m := f.model(t)

	// Saturday 08:00
	m, _ = press(t, m, "l", "l", "l", "l", "l", " ")
	if got := len(f.session.Marked()); got != 1 {
		t.Fatalf("marked = %d, want 1", got)
	}

	m, _ = press(t, m, "enter")
	if m.mode != ModeConfirm || m.pending == nil {
		t.Fatalf("mode = %v, want confirm dialog", m.mode)
	}
	if len(m.pending.ToCreate) != 1 || len(m.pending.ToDelete) != 0 {
		t.Fatalf("plan = %+v", m.pending)
	}

	m, cmd := press(t, m, "y")
	if cmd == nil || !m.committing {
		t.Fatal("confirming should dispatch the commit")
	}
	m = update(t, m, cmd())

	if m.committing {
		t.Error("committing should be reset")
	}
	if m.statusMsg != "Created 1, deleted 0" {
		t.Errorf("status = %q", m.statusMsg)
	}
	if got := len(f.session.Marked()); got != 0 {
		t.Errorf("selection should be cleared, %d marked", got)
	}
	if got := len(f.store.Slots()); got != 21 {
		t.Errorf("store has %d slots, want 21", got)
	}
}

func TestModel_CommitInFlight(t *testing.T) {
	f := newFixture(t)
	f.seedWeek(t)
	m := f.model(t)

	m, _ = press(t, m, "l", "l", "l", "l", "l", " ", "enter")
	m, first := press(t, m, "y")
	if first == nil || !m.committing {
		t.Fatal("confirming should dispatch the commit")
	}

	// The first Apply has not run yet: a second commit must be refused.
	m, cmd := press(t, m, "s")
	if m.mode != ModeNormal || m.pending != nil {
		t.Fatalf("second commit opened the dialog, mode = %v", m.mode)
	}
	if !m.statusErr || m.statusMsg != "A commit is already in progress" {
		t.Errorf("status = %q (err %v)", m.statusMsg, m.statusErr)
	}
	if cmd == nil {
		t.Error("refusal should schedule the status reset")
	}

	m = update(t, m, first())
	if m.committing {
		t.Error("committing should be reset")
	}
	if got := len(f.store.Slots()); got != 21 {
		t.Errorf("store has %d slots, want 21", got)
	}
}

func TestModel_ConfirmIgnoredWhileCommitting(t *testing.T) {
	f := newFixture(t)
	f.seedWeek(t)
	m := f.model(t)

	m, _ = press(t, m, "l", "l", "l", "l", "l", " ", "enter")
	if m.mode != ModeConfirm {
		t.Fatalf("mode = %v, want confirm dialog", m.mode)
	}
	m.committing = true

	m, cmd := press(t, m, "y")
	if cmd != nil {
		t.Error("confirm should not dispatch while a commit is running")
	}
	if m.pending == nil {
		t.Error("pending plan should be kept")
	}
}

func TestModel_ConfirmCancel(t *testing.T) {
	f := newFixture(t)
	f.seedWeek(t)
	m := f.model(t)

	m, _ = press(t, m, "l", "l", "l", "l", "l", " ", "enter")
	if m.mode != ModeConfirm {
		t.Fatalf("mode = %v, want confirm dialog", m.mode)
	}
	m, _ = press(t, m, "n")
	if m.mode != ModeNormal || m.pending != nil {
		t.Fatalf("dialog should be closed, mode = %v", m.mode)
	}
	if got := len(f.session.Marked()); got != 1 {
		t.Errorf("selection should survive a cancel, %d marked", got)
	}
}

func TestModel_CommitRejected(t *testing.T) {
	tests := []struct {
		name string
		seed bool
		keys []string
		want string
	}{
		{"nothing marked", true, []string{"enter"}, "Nothing to commit"},
		{"below weekly minimum", false, []string{" ", "enter"}, "Cannot commit"},
		{"removal below weekly minimum", true, []string{" ", "enter"}, "Cannot commit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.seed {
				f.seedWeek(t)
			}
			m := f.model(t)

			m, _ = press(t, m, tt.keys...)
			if m.mode != ModeNormal {
				t.Errorf("mode = %v, dialog should not open", m.mode)
			}
			if !m.statusErr || !strings.Contains(m.statusMsg, tt.want) {
				t.Errorf("status = %q (err %v), want %q", m.statusMsg, m.statusErr, tt.want)
			}
		})
	}
}

func TestModel_BookedCellIsLocked(t *testing.T) {
	f := newFixture(t)
	f.seedWeek(t)
	ctx := context.Background()
	slots, err := f.repo.ListSlots(ctx, "c1")
	if err != nil {
		t.Fatal(err)
	}
	var first slot.ID
	for _, s := range slots {
		if s.Start.Equal(at(0, 8)) {
			first = s.ID
		}
	}
	if _, err := f.repo.BookSlot(ctx, first, "ana", "svc"); err != nil {
		t.Fatalf("BookSlot: %v", err)
	}
	m := f.model(t)

	m, _ = press(t, m, " ")
	if !m.statusErr || !strings.Contains(m.statusMsg, "booked") {
		t.Errorf("status = %q", m.statusMsg)
	}
	if got := len(f.session.Marked()); got != 0 {
		t.Errorf("booked cell should not be marked, %d marked", got)
	}
	if !strings.Contains(m.describeCursor(), "by ana") {
		t.Errorf("cursor description = %q", m.describeCursor())
	}
}

func TestModel_MouseDrag(t *testing.T) {
	f := newFixture(t)
	m := f.model(t)

	x := view.TimeColWidth + 5*(m.layout.ColW+1) + 1 // Saturday
	y := m.layout.FirstRowY()

	m = update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if !f.session.Dragging() {
		t.Fatal("press should start a drag")
	}
	m = update(t, m, tea.MouseMsg{X: x, Y: y + 1, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m = update(t, m, tea.MouseMsg{X: x, Y: y + 2, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m = update(t, m, tea.MouseMsg{X: x, Y: y + 2, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	if f.session.Dragging() {
		t.Error("release should end the drag")
	}
	if got := len(f.session.Marked()); got != 3 {
		t.Errorf("marked = %d, want 3", got)
	}
	if m.cursor != (Position{Day: 5, Row: 2}) {
		t.Errorf("cursor = %+v", m.cursor)
	}

	// A press on the header toggles the whole day.
	m = update(t, m, tea.MouseMsg{X: x, Y: m.layout.Top, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if got := len(f.session.Marked()); got != len(f.session.Hours()) {
		t.Errorf("marked = %d after header click, want %d", got, len(f.session.Hours()))
	}
	_ = m
}

func TestModel_SwitchConsultant(t *testing.T) {
	f := newFixture(t)
	f.seedWeek(t)
	m := f.model(t)

	m, _ = press(t, m, "l", "l", "l", "l", "l", " ")
	m, _ = press(t, m, "C")
	if m.mode != ModePrompt || m.asking != promptConsultant {
		t.Fatalf("mode = %v, want consultant prompt", m.mode)
	}
	m, cmd := press(t, m, "c2", "enter")
	if cmd == nil || !m.loading {
		t.Fatal("switching should start a reload")
	}
	if m.consultant != "c2" || f.store.Consultant() != "c2" {
		t.Errorf("consultant = %q / %q, want c2", m.consultant, f.store.Consultant())
	}
	if got := len(f.session.Marked()); got != 0 {
		t.Errorf("selection should be dropped, %d marked", got)
	}

	m = update(t, m, commands.LoadedMsg{Err: f.session.Reload(context.Background())})
	if m.loading {
		t.Error("loading should be reset")
	}
	if got := len(f.store.Slots()); got != 0 {
		t.Errorf("c2 has %d slots, want 0", got)
	}
}

func TestModel_SwitchConsultantWhileCommitting(t *testing.T) {
	f := newFixture(t)
	m := f.model(t)
	m.committing = true

	m, _ = press(t, m, "C", "c2", "enter")
	if f.store.Consultant() != "c1" {
		t.Errorf("consultant switched during a commit: %q", f.store.Consultant())
	}
	if !m.statusErr {
		t.Errorf("status = %q, want an error", m.statusMsg)
	}
}

func TestModel_WeekNavigation(t *testing.T) {
	f := newFixture(t)
	m := f.model(t)

	m, _ = press(t, m, "L", "L")
	if got := f.session.WeekOffset(); got != 2 {
		t.Errorf("offset = %d, want 2", got)
	}
	m, _ = press(t, m, "t")
	if got := f.session.WeekOffset(); got != 0 {
		t.Errorf("offset after today = %d, want 0", got)
	}

	m, _ = press(t, m, "g")
	if m.mode != ModePrompt {
		t.Fatalf("mode = %v, want prompt", m.mode)
	}
	m, _ = press(t, m, "2024-07-03", "enter")
	if m.mode != ModeNormal {
		t.Errorf("prompt should close, mode = %v", m.mode)
	}
	if got := f.session.WeekOffset(); got != 3 {
		t.Errorf("offset after go to = %d, want 3", got)
	}
	if m.cursor.Day != 2 {
		t.Errorf("cursor day = %d, want 2 (Wednesday)", m.cursor.Day)
	}

	m, _ = press(t, m, "g", "someday", "enter")
	if !m.statusErr {
		t.Errorf("bad date should report an error, status %q", m.statusMsg)
	}
}

func TestModel_Applied(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name       string
		msg        commands.AppliedMsg
		wantMarked int
		wantStatus string
		wantErr    bool
	}{
		{
			name:       "nothing applied keeps the selection",
			msg:        commands.AppliedMsg{Err: boom},
			wantMarked: 1,
			wantStatus: "boom",
			wantErr:    true,
		},
		{
			name:       "partial commit clears the selection",
			msg:        commands.AppliedMsg{Result: schedule.Result{Created: 2}, Err: boom},
			wantStatus: "partially applied",
			wantErr:    true,
		},
		{
			name:       "reload failure is reported",
			msg:        commands.AppliedMsg{Result: schedule.Result{Deleted: 1, ReloadErr: boom}},
			wantStatus: "reload failed",
			wantErr:    true,
		},
		{
			name:       "success",
			msg:        commands.AppliedMsg{Result: schedule.Result{Created: 3, Deleted: 1}},
			wantStatus: "Created 3, deleted 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			m := f.model(t)
			m, _ = press(t, m, " ")

			m = update(t, m, tt.msg)
			if got := len(f.session.Marked()); got != tt.wantMarked {
				t.Errorf("marked = %d, want %d", got, tt.wantMarked)
			}
			if !strings.Contains(m.statusMsg, tt.wantStatus) || m.statusErr != tt.wantErr {
				t.Errorf("status = %q (err %v), want %q (err %v)", m.statusMsg, m.statusErr, tt.wantStatus, tt.wantErr)
			}
		})
	}
}

func TestModel_LoadError(t *testing.T) {
	f := newFixture(t)
	m := f.model(t)

	m, cmd := press(t, m, "r")
	if !m.loading || cmd == nil {
		t.Fatal("reload should start loading")
	}
	m = update(t, m, commands.LoadedMsg{Err: errors.New("offline")})
	if m.loading {
		t.Error("loading should be reset")
	}
	if !m.statusErr || !strings.Contains(m.statusMsg, "offline") {
		t.Errorf("status = %q", m.statusMsg)
	}
}

func TestModel_View(t *testing.T) {
	asciiProfile(t)

	f := newFixture(t)
	f.seedWeek(t)
	m := f.model(t)
	m, _ = press(t, m, "l", "l", "l", "l", "l", " ")

	out := m.View()
	for _, want := range []string{
		"hourly · c1",
		"Jun 10 - Jun 16, 2024",
		"20 slots (21 after commit) / min 20",
		labelOpen,
		labelAdd,
		"1 marked",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("view is missing %q", want)
		}
	}
	if lines := strings.Split(out, "\n"); len(lines) != 30 {
		t.Errorf("view has %d lines, want 30", len(lines))
	}

	m, _ = press(t, m, "enter")
	if out := m.View(); !strings.Contains(out, "Commit changes?") || !strings.Contains(out, "+ Sat 15 Jun 08:00") {
		t.Errorf("confirm dialog missing from view:\n%s", out)
	}
}

func TestModel_Placeholder(t *testing.T) {
	f := newFixture(t)
	m := *New(f.session, "missing-theme")
	if got := m.View(); got != "Loading..." {
		t.Errorf("View = %q", got)
	}
}
