package web

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-farmdesk/pkg/form"
	"github.com/goliatone/go-farmdesk/pkg/overlay"
	"github.com/goliatone/go-farmdesk/pkg/pages"
	"github.com/goliatone/go-farmdesk/pkg/render"
	"github.com/goliatone/go-farmdesk/pkg/table"
)

// workspace is the state of one browser session. Handlers hold mu for the
// whole request since forms and lists are not safe for concurrent use.
type workspace struct {
	mu    sync.Mutex
	seen  time.Time
	pages map[string]*pageState
	// token is echoed by every form post of the workspace.
	token string
}

// pageState is what one page shows in one workspace.
type pageState struct {
	generation uint64
	page       pages.Page
	bus        *overlay.Bus
	list       *table.List
	form       *form.Form
	errors     render.ErrorMapping
	token      string
	// navigate is set by row actions that leave the page.
	navigate string
}

func (st *pageState) formOpen() bool {
	return st.form != nil && st.form.IsOpen()
}

// release closes every overlay so no detector outlives the state.
func (st *pageState) release() {
	if st.formOpen() {
		st.form.Dismiss()
	}
	if st.list != nil {
		st.list.CloseMenu()
	}
}

type workspaces struct {
	mu   sync.Mutex
	byID map[string]*workspace
	ttl  time.Duration
	now  func() time.Time
}

func newWorkspaces(ttl time.Duration) *workspaces {
	return &workspaces{byID: make(map[string]*workspace), ttl: ttl, now: time.Now}
}

func (w *workspaces) get(id string) (*workspace, bool) {
	if id == "" {
		return nil, false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	ws, ok := w.byID[id]
	if ok {
		ws.seen = w.now()
	}
	return ws, ok
}

// create registers a new workspace and drops the ones idle past the ttl.
func (w *workspaces) create() (string, *workspace) {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.now()
	for id, ws := range w.byID {
		if now.Sub(ws.seen) > w.ttl {
			delete(w.byID, id)
		}
	}
	id := uuid.NewString()
	ws := &workspace{seen: now, pages: make(map[string]*pageState), token: uuid.NewString()}
	w.byID[id] = ws
	return id, ws
}

func (w *workspaces) len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.byID)
}
