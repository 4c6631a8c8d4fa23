package web

import (
	"context"
	"crypto/subtle"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"github.com/starfederation/datastar-go/datastar"
	"go.uber.org/zap"

	"github.com/goliatone/go-farmdesk/pkg/form"
	"github.com/goliatone/go-farmdesk/pkg/model"
	"github.com/goliatone/go-farmdesk/pkg/orchestrator"
	"github.com/goliatone/go-farmdesk/pkg/overlay"
	"github.com/goliatone/go-farmdesk/pkg/pages"
	"github.com/goliatone/go-farmdesk/pkg/render"
	"github.com/goliatone/go-farmdesk/pkg/renderers/vanilla"
	"github.com/goliatone/go-farmdesk/pkg/table"
)

const (
	csrfField = "_csrf"

	opField  = "_op"
	opAdd    = "add:"
	opRemove = "remove:"
	opSubmit = "submit"
	opCancel = "cancel"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	names := s.orch.Pages().Names()
	if len(names) == 0 {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, pagePath(names[0]), http.StatusFound)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	st, unlock, ok := s.state(w, r)
	if !ok {
		return
	}
	defer unlock()

	ctx := r.Context()
	s.refresh(ctx, st)
	if prefill := s.backend.Prefill(st.page, r.URL.Query()); prefill != nil && !st.formOpen() {
		if err := s.openForm(ctx, st, form.ModeCreate, prefill); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	s.writePage(w, r, st)
}

func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	st, unlock, ok := s.state(w, r)
	if !ok {
		return
	}
	defer unlock()

	if err := s.openForm(r.Context(), st, form.ModeCreate, nil); err != nil {
		s.fail(w, r, err)
		return
	}
	s.writePage(w, r, st)
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	st, unlock, ok := s.state(w, r)
	if !ok {
		return
	}
	defer unlock()

	ctx := r.Context()
	id := chi.URLParam(r, "id")
	record, found := findRecord(st.list, id)
	if !found {
		s.refresh(ctx, st)
		record, found = findRecord(st.list, id)
	}
	if !found {
		http.NotFound(w, r)
		return
	}
	if err := s.openForm(ctx, st, form.ModeEdit, record); err != nil {
		s.fail(w, r, err)
		return
	}
	s.writePage(w, r, st)
}

// handleForm applies the posted values to the open form, then runs the
// requested operation and redirects back to the page.
func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	st, unlock, ok := s.state(w, r)
	if !ok {
		return
	}
	defer unlock()

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}
	if subtle.ConstantTimeCompare([]byte(r.PostForm.Get(csrfField)), []byte(st.token)) != 1 {
		s.logger.Warn("form token mismatch", zap.String("page", st.page.Name), zap.String("request_id", middleware.GetReqID(r.Context())))
		http.Error(w, "invalid form token", http.StatusForbidden)
		return
	}
	back := pagePath(st.page.Name)
	if !st.formOpen() {
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	f := st.form
	for key, values := range r.PostForm {
		if strings.HasPrefix(key, "_") || len(values) == 0 {
			continue
		}
		if err := f.EditPath(key, values[len(values)-1]); err != nil {
			s.logger.Debug("form value ignored", zap.String("page", st.page.Name), zap.String("path", key), zap.Error(err))
		}
	}

	ctx := r.Context()
	op := r.PostForm.Get(opField)
	switch {
	case op == opCancel:
		f.Cancel()
		st.errors = render.ErrorMapping{}
	case strings.HasPrefix(op, opAdd):
		if err := f.AddRow(strings.TrimPrefix(op, opAdd)); err != nil {
			s.logger.Warn("add row", zap.String("page", st.page.Name), zap.Error(err))
		}
	case strings.HasPrefix(op, opRemove):
		path, index, err := parseRemove(strings.TrimPrefix(op, opRemove))
		if err == nil {
			err = f.RemoveRow(path, index)
		}
		if err != nil {
			s.logger.Warn("remove row", zap.String("page", st.page.Name), zap.Error(err))
		}
	case op == opSubmit, op == "":
		s.submit(ctx, st)
	default:
		s.logger.Warn("unknown form operation", zap.String("page", st.page.Name), zap.String("op", op))
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func (s *Server) submit(ctx context.Context, st *pageState) {
	err := st.form.Submit(ctx)
	var verr *form.ValidationError
	if errors.As(err, &verr) {
		st.errors = render.ErrorsFrom(st.form.Fields(), err)
		return
	}
	st.errors = render.ErrorMapping{}
	if err != nil {
		s.logger.Error("save failed", zap.String("page", st.page.Name), zap.Error(err))
	}
	s.refresh(ctx, st)
}

// handleEvents receives window clicks. The bus closes overlays the click
// landed outside of; menu triggers and menu entries are then routed to the
// list. The reply patches #fd-main, or navigates when an action asked to.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	st, unlock, ok := s.state(w, r)
	if !ok {
		return
	}
	defer unlock()

	ctx := r.Context()
	target := r.URL.Query().Get("target")
	st.bus.Dispatch(overlay.Event{Target: target})
	if !st.formOpen() {
		st.errors = render.ErrorMapping{}
	}
	if err := routeControl(ctx, st.list, target); errors.Is(err, table.ErrNoPending) {
		s.logger.Debug("stale confirmation", zap.String("page", st.page.Name))
	} else if err != nil {
		s.logger.Error("row action failed", zap.String("page", st.page.Name), zap.String("target", target), zap.Error(err))
	}

	if next := st.navigate; next != "" {
		st.navigate = ""
		quoted, err := json.Marshal(next)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		sse := datastar.NewSSE(w, r)
		if err := sse.ExecuteScript("window.location.assign(" + string(quoted) + ")"); err != nil {
			s.logger.Debug("navigate", zap.Error(err))
		}
		return
	}

	view, err := s.view(ctx, st)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	main, err := s.renderer.RenderMain(ctx, view)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sse := datastar.NewSSE(w, r)
	patch := templ.ComponentFunc(func(_ context.Context, out io.Writer) error {
		_, err := out.Write(main)
		return err
	})
	if err := sse.PatchElementTempl(patch); err != nil {
		s.logger.Debug("patch main", zap.Error(err))
	}
}

// routeControl handles clicks on a row menu trigger ("<list>-trigger-<row>"),
// a menu entry ("<list>-menu-<row>/action-<k>") or the buttons of the
// confirmation dialog. Other targets are ignored.
func routeControl(ctx context.Context, list *table.List, target string) error {
	switch target {
	case list.AcceptID():
		return list.Accept(ctx)
	case list.RejectID():
		list.Reject()
		return nil
	}
	if rest, ok := strings.CutPrefix(target, list.ID()+"-trigger-"); ok {
		row, err := strconv.Atoi(rest)
		if err != nil {
			return nil
		}
		return list.Toggle(row)
	}
	if rest, ok := strings.CutPrefix(target, list.ID()+"-menu-"); ok {
		rowPart, actionPart, found := strings.Cut(rest, "/action-")
		if !found {
			return nil
		}
		row, err := strconv.Atoi(rowPart)
		if err != nil {
			return nil
		}
		action, err := strconv.Atoi(actionPart)
		if err != nil {
			return nil
		}
		return list.Trigger(ctx, row, action)
	}
	return nil
}

// state resolves the workspace and page of a request and locks the
// workspace. On failure it has already written the response.
func (s *Server) state(w http.ResponseWriter, r *http.Request) (*pageState, func(), bool) {
	page, err := s.orch.Page(chi.URLParam(r, "page"))
	if err != nil {
		if errors.Is(err, pages.ErrUnknownPage) {
			http.NotFound(w, r)
		} else {
			s.fail(w, r, err)
		}
		return nil, nil, false
	}

	ws, err := s.workspace(w, r)
	if err != nil {
		s.fail(w, r, err)
		return nil, nil, false
	}

	ws.mu.Lock()
	generation := s.generation.Load()
	st, ok := ws.pages[page.Name]
	if !ok || st.generation != generation {
		if ok {
			st.release()
		}
		st = &pageState{generation: generation, page: page, bus: overlay.NewBus(), token: ws.token}
		st.list = s.orch.EmptyList(page, s.bindAction(st), table.WithOverlay(st.bus))
		ws.pages[page.Name] = st
	}
	return st, ws.mu.Unlock, true
}

func (s *Server) workspace(w http.ResponseWriter, r *http.Request) (*workspace, error) {
	// A cookie that fails to decode yields a fresh session.
	sess, _ := s.sessions.Get(r, sessionName)
	id, _ := sess.Values[workspaceKey].(string)
	if ws, ok := s.workspaces.get(id); ok {
		return ws, nil
	}
	id, ws := s.workspaces.create()
	sess.Values[workspaceKey] = id
	if err := sess.Save(r, w); err != nil {
		return nil, err
	}
	return ws, nil
}

func (s *Server) bindAction(st *pageState) orchestrator.ActionBinder {
	return func(page pages.Page, action pages.ActionConfig) table.ActionFunc {
		switch action.Kind {
		case pages.ActionEdit:
			return func(ctx context.Context, record table.Record) error {
				return s.openForm(ctx, st, form.ModeEdit, record)
			}
		case pages.ActionDelete:
			return func(ctx context.Context, record table.Record) error {
				err := s.backend.Delete(ctx, page, record)
				s.refresh(ctx, st)
				return err
			}
		case pages.ActionNavigate:
			return func(_ context.Context, record table.Record) error {
				st.navigate = action.URL(record)
				return nil
			}
		}
		return nil
	}
}

// openForm replaces any open form of the page with a fresh one.
func (s *Server) openForm(ctx context.Context, st *pageState, mode form.Mode, record map[string]any) error {
	if st.formOpen() {
		st.form.Dismiss()
	}
	id := ""
	if mode == form.ModeEdit {
		id = table.Record(record).ID()
	}
	page := st.page
	f, err := s.orch.NewForm(ctx, page, orchestrator.FormConfig{
		Record: record,
		Mode:   mode,
		Bus:    st.bus,
		OnSubmit: func(ctx context.Context, values model.Values) error {
			_, err := s.backend.Save(ctx, page, id, values)
			return err
		},
	})
	if err != nil {
		return err
	}
	f.Open()
	st.form = f
	st.errors = render.ErrorMapping{}
	return nil
}

// refresh reloads the list, keeping the previous records on failure.
func (s *Server) refresh(ctx context.Context, st *pageState) {
	if err := s.orch.Refresh(ctx, st.page, st.list); err != nil {
		s.logger.Warn("fetch failed", zap.String("page", st.page.Name), zap.Error(err))
	}
}

func (s *Server) view(ctx context.Context, st *pageState) (vanilla.Page, error) {
	options, err := s.orch.Options(st.page, "", "", render.RenderOptions{})
	if err != nil {
		return vanilla.Page{}, err
	}

	listOptions := options
	listOptions.Title = ""
	list, err := s.renderer.RenderList(ctx, st.list.View(), listOptions)
	if err != nil {
		return vanilla.Page{}, err
	}

	var formHTML []byte
	if st.formOpen() {
		formOptions := options.WithHidden(render.Hidden(csrfField, st.token))
		formOptions.Errors = st.errors.Fields
		formOptions.FormErrors = st.errors.Form
		formHTML, err = s.renderer.RenderForm(ctx, st.form.View(), formOptions)
		if err != nil {
			return vanilla.Page{}, err
		}
	}

	return vanilla.Page{
		Name:      st.page.Name,
		Title:     st.page.Title,
		Heading:   st.page.Title,
		NewURL:    pagePath(st.page.Name) + "/new",
		NewLabel:  st.page.NewLabel(),
		EventsURL: pagePath(st.page.Name) + "/events",
		Nav:       s.nav(),
		List:      list,
		Form:      formHTML,
		Options:   options,
	}, nil
}

func (s *Server) writePage(w http.ResponseWriter, r *http.Request, st *pageState) {
	ctx := r.Context()
	view, err := s.view(ctx, st)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out, err := s.renderer.RenderPage(ctx, view)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", s.renderer.ContentType())
	_, _ = w.Write(out)
}

func (s *Server) nav() []vanilla.NavItem {
	all := s.orch.Pages().Pages()
	items := make([]vanilla.NavItem, 0, len(all))
	for _, page := range all {
		items = append(items, vanilla.NavItem{
			Name:  page.Name,
			Label: page.Nav.Label,
			URL:   pagePath(page.Name),
			Icon:  page.Nav.Icon,
		})
	}
	return items
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func findRecord(list *table.List, id string) (table.Record, bool) {
	if id == "" {
		return nil, false
	}
	for _, record := range list.Records() {
		if record.ID() == id {
			return record, true
		}
	}
	return nil, false
}

// parseRemove splits "<path>:<index>".
func parseRemove(raw string) (string, int, error) {
	cut := strings.LastIndexByte(raw, ':')
	if cut <= 0 {
		return "", 0, errors.New("web: malformed remove operation")
	}
	index, err := strconv.Atoi(raw[cut+1:])
	if err != nil {
		return "", 0, err
	}
	return raw[:cut], index, nil
}

func pagePath(name string) string {
	return "/" + name
}
