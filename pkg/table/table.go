// Package table implements the generic list: records rendered through a
// column list, with an optional per-row action menu of which at most one is
// open at a time.
package table

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-farmdesk/pkg/overlay"
)

const (
	defaultID     = "fd-list"
	actionsHeader = "Ações"
)

var (
	// ErrIndex reports a row or action index outside the list.
	ErrIndex = errors.New("table: index out of range")
	// ErrNoPending is returned by Accept when nothing awaits confirmation.
	ErrNoPending = errors.New("table: no action awaiting confirmation")
)

// Column maps a header to a record accessor. Format overrides the default
// cell text.
type Column struct {
	Header   string
	Accessor string
	Format   func(any) string
}

// ActionFunc runs a row action against the row's record.
type ActionFunc func(ctx context.Context, record Record) error

// Action is one entry of the row menu. An action with a Confirm message
// runs only after Accept when started through Trigger.
type Action struct {
	Label   string
	Confirm string
	Handler ActionFunc
}

// Option configures a List.
type Option func(*List)

// WithActions sets the row menu entries.
func WithActions(actions ...Action) Option {
	return func(l *List) {
		l.actions = append([]Action(nil), actions...)
	}
}

// WithID sets the element identifier prefix used for menus and triggers.
func WithID(id string) Option {
	return func(l *List) {
		if id != "" {
			l.id = id
		}
	}
}

// WithOverlay wires outside-interaction detection for open menus.
func WithOverlay(bus *overlay.Bus) Option {
	return func(l *List) {
		l.bus = bus
	}
}

// List holds records, columns and the active row. It is not safe for
// concurrent use.
type List struct {
	id       string
	columns  []Column
	actions  []Action
	records  []Record
	active   int
	activeID string
	bus      *overlay.Bus
	detector *overlay.Detector
	pending  *pending
}

// pending is an action parked until the user accepts its confirmation.
type pending struct {
	row      int
	action   int
	recordID string
	detector *overlay.Detector
}

// New constructs a list with no records and no open menu.
func New(columns []Column, options ...Option) *List {
	l := &List{
		id:      defaultID,
		columns: append([]Column(nil), columns...),
		active:  -1,
	}
	for _, opt := range options {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// ID returns the element identifier prefix.
func (l *List) ID() string { return l.id }

// MenuID returns the element identifier of a row's action menu.
func (l *List) MenuID(row int) string { return fmt.Sprintf("%s-menu-%d", l.id, row) }

// TriggerID returns the element identifier of a row's menu trigger.
func (l *List) TriggerID(row int) string { return fmt.Sprintf("%s-trigger-%d", l.id, row) }

// ActionID returns the element identifier of one entry in a row's menu.
func (l *List) ActionID(row, action int) string {
	return fmt.Sprintf("%s/action-%d", l.MenuID(row), action)
}

// Records returns the current records.
func (l *List) Records() []Record {
	return append([]Record(nil), l.records...)
}

// Len returns the number of rows.
func (l *List) Len() int { return len(l.records) }

// ConfirmID returns the element identifier of the confirmation dialog.
// AcceptID and RejectID are its buttons.
func (l *List) ConfirmID() string { return l.id + "-confirm" }
func (l *List) AcceptID() string  { return l.ConfirmID() + "/accept" }
func (l *List) RejectID() string  { return l.ConfirmID() + "/reject" }

// SetRecords replaces the rows. An open menu or a pending confirmation
// survives only if the same record still sits at its row.
func (l *List) SetRecords(records []Record) {
	l.records = append([]Record(nil), records...)
	if l.active >= 0 && !l.holds(l.active, l.activeID) {
		l.CloseMenu()
	}
	if l.pending != nil && !l.holds(l.pending.row, l.pending.recordID) {
		l.Reject()
	}
}

func (l *List) holds(row int, id string) bool {
	return row < len(l.records) && l.records[row].ID() == id
}

// Active returns the row whose menu is open.
func (l *List) Active() (int, bool) {
	return l.active, l.active >= 0
}

// Toggle opens the menu of row, closing any other. Toggling the open row
// closes it.
func (l *List) Toggle(row int) error {
	if row < 0 || row >= len(l.records) {
		return fmt.Errorf("%w: row %d", ErrIndex, row)
	}
	if len(l.actions) == 0 {
		return nil
	}
	if l.active == row {
		l.CloseMenu()
		return nil
	}
	l.CloseMenu()
	l.active = row
	l.activeID = l.records[row].ID()
	if l.bus != nil {
		l.detector = l.bus.Acquire(overlay.Within(l.MenuID(row), l.TriggerID(row)), func(overlay.Event) {
			l.CloseMenu()
		})
	}
	return nil
}

// CloseMenu closes the open menu, if any.
func (l *List) CloseMenu() {
	l.active = -1
	l.activeID = ""
	l.detector.Release()
	l.detector = nil
}

// Invoke runs an action against a row's record and then closes the menu,
// whatever the handler returned.
func (l *List) Invoke(ctx context.Context, row, action int) error {
	if row < 0 || row >= len(l.records) {
		return fmt.Errorf("%w: row %d", ErrIndex, row)
	}
	if action < 0 || action >= len(l.actions) {
		return fmt.Errorf("%w: action %d", ErrIndex, action)
	}
	record := l.records[row]
	handler := l.actions[action].Handler

	var err error
	if handler != nil {
		err = handler(ctx, record)
	}
	l.CloseMenu()
	if err != nil {
		return fmt.Errorf("table: action %q: %w", l.actions[action].Label, err)
	}
	return nil
}

// Trigger is the user-facing entry point for a menu entry. Actions without a
// Confirm message run through Invoke. Others close the menu and wait for
// Accept or Reject; triggering again replaces the pending action.
func (l *List) Trigger(ctx context.Context, row, action int) error {
	if row < 0 || row >= len(l.records) {
		return fmt.Errorf("%w: row %d", ErrIndex, row)
	}
	if action < 0 || action >= len(l.actions) {
		return fmt.Errorf("%w: action %d", ErrIndex, action)
	}
	if l.actions[action].Confirm == "" {
		return l.Invoke(ctx, row, action)
	}
	l.CloseMenu()
	l.Reject()
	p := &pending{row: row, action: action, recordID: l.records[row].ID()}
	if l.bus != nil {
		p.detector = l.bus.Acquire(overlay.Within(l.ConfirmID()), func(overlay.Event) {
			l.Reject()
		})
	}
	l.pending = p
	return nil
}

// Pending reports the row and action awaiting confirmation.
func (l *List) Pending() (row, action int, ok bool) {
	if l.pending == nil {
		return -1, -1, false
	}
	return l.pending.row, l.pending.action, true
}

// Accept runs the pending action.
func (l *List) Accept(ctx context.Context) error {
	p := l.pending
	if p == nil {
		return ErrNoPending
	}
	l.Reject()
	return l.Invoke(ctx, p.row, p.action)
}

// Reject drops the pending action without running it.
func (l *List) Reject() {
	if l.pending == nil {
		return
	}
	l.pending.detector.Release()
	l.pending = nil
}

// Cell resolves the text of one cell.
func (l *List) Cell(row, col int) string {
	if row < 0 || row >= len(l.records) || col < 0 || col >= len(l.columns) {
		return ""
	}
	column := l.columns[col]
	value, _ := l.records[row].Lookup(column.Accessor)
	if column.Format != nil {
		return column.Format(value)
	}
	return Text(value)
}

// View returns a snapshot for renderers.
func (l *List) View() View {
	view := View{
		ID:         l.id,
		Headers:    make([]string, 0, len(l.columns)+1),
		HasActions: len(l.actions) > 0,
		Active:     l.active,
		Rows:       make([]RowView, len(l.records)),
	}
	for _, column := range l.columns {
		view.Headers = append(view.Headers, column.Header)
	}
	if view.HasActions {
		view.Headers = append(view.Headers, actionsHeader)
	}
	for i, record := range l.records {
		row := RowView{
			Index:     i,
			ID:        record.ID(),
			Cells:     make([]string, len(l.columns)),
			MenuOpen:  i == l.active,
			MenuID:    l.MenuID(i),
			TriggerID: l.TriggerID(i),
		}
		for c := range l.columns {
			row.Cells[c] = l.Cell(i, c)
		}
		if row.MenuOpen {
			for a, action := range l.actions {
				row.Actions = append(row.Actions, ActionView{Label: action.Label, ID: l.ActionID(i, a)})
			}
		}
		view.Rows[i] = row
	}
	if p := l.pending; p != nil {
		view.Confirm = &ConfirmView{
			ID:       l.ConfirmID(),
			Message:  l.actions[p.action].Confirm,
			Label:    l.actions[p.action].Label,
			AcceptID: l.AcceptID(),
			RejectID: l.RejectID(),
		}
	}
	return view
}
