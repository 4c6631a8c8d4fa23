package table

// View is a read-only snapshot of a list for renderers.
type View struct {
	ID         string
	Headers    []string
	Rows       []RowView
	HasActions bool
	Active     int
	// Confirm is set while an action waits for confirmation.
	Confirm *ConfirmView
}

// ConfirmView is the confirmation dialog of a pending action.
type ConfirmView struct {
	ID       string
	Message  string
	Label    string
	AcceptID string
	RejectID string
}

// RowView is one rendered row. Actions is populated only for the open menu.
type RowView struct {
	Index     int
	ID        string
	Cells     []string
	MenuOpen  bool
	MenuID    string
	TriggerID string
	Actions   []ActionView
}

// ActionView is one menu entry with its element identifier.
type ActionView struct {
	Label string
	ID    string
}
