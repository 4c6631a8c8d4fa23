package web

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/goliatone/go-farmdesk/pkg/form"
	"github.com/goliatone/go-farmdesk/pkg/model"
	"github.com/goliatone/go-farmdesk/pkg/orchestrator"
	"github.com/goliatone/go-farmdesk/pkg/pages"
	"github.com/goliatone/go-farmdesk/pkg/renderers/vanilla"
	"github.com/goliatone/go-farmdesk/pkg/table"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubSource struct {
	mu      sync.Mutex
	records map[string][]table.Record
	items   map[string][]any
	fetches int
}

func (s *stubSource) Fields(_ context.Context, page pages.Page) ([]model.Field, error) {
	return pages.ResolveOptions(page.Fields, s.items), nil
}

func (s *stubSource) Records(_ context.Context, page pages.Page) ([]table.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches++
	return s.records[page.Name], nil
}

type saved struct {
	page   string
	id     string
	values model.Values
}

type stubBackend struct {
	saves     []saved
	deletes   []string
	saveErr   error
	deleteErr error
}

func (b *stubBackend) Save(_ context.Context, page pages.Page, id string, values model.Values) (map[string]any, error) {
	b.saves = append(b.saves, saved{page: page.Name, id: id, values: values})
	return nil, b.saveErr
}

func (b *stubBackend) Delete(_ context.Context, page pages.Page, record table.Record) error {
	b.deletes = append(b.deletes, page.Name+"/"+record.ID())
	return b.deleteErr
}

func (b *stubBackend) Prefill(page pages.Page, query url.Values) map[string]any {
	if page.Name != "producao-leite" || query.Get("animalId") == "" {
		return nil
	}
	return map[string]any{"animalId": query.Get("animalId")}
}

type harness struct {
	t       *testing.T
	server  *Server
	handler http.Handler
	source  *stubSource
	backend *stubBackend
	cookies []*http.Cookie
}

func newHarness(t *testing.T, options ...orchestrator.Option) *harness {
	t.Helper()
	source := &stubSource{
		records: map[string][]table.Record{
			"lotes":   {{"_id": "l1", "nome": "Lote A", "dieta": map[string]any{"_id": "d1", "nome": "Engorda"}, "animais": []any{"a1"}}},
			"animais": {{"_id": "a1", "nome": "Mimosa", "estagioProducao": "Lactação"}},
		},
		items: map[string][]any{
			"dietas":  {map[string]any{"_id": "d1", "nome": "Engorda"}},
			"animais": {map[string]any{"_id": "a1", "nome": "Mimosa"}},
		},
	}
	backend := &stubBackend{}
	renderer, err := vanilla.New()
	require.NoError(t, err)

	orch := orchestrator.New(append([]orchestrator.Option{orchestrator.WithSource(source)}, options...)...)
	srv, err := New(orch, backend, renderer, Config{SessionSecret: "test-secret"})
	require.NoError(t, err)
	return &harness{t: t, server: srv, handler: srv.Handler(), source: source, backend: backend}
}

func (h *harness) do(method, target string, values url.Values) *httptest.ResponseRecorder {
	h.t.Helper()
	var body io.Reader
	if values != nil {
		body = strings.NewReader(values.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if values != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, cookie := range h.cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	if cookies := rec.Result().Cookies(); len(cookies) > 0 {
		h.cookies = cookies
	}
	return rec
}

func (h *harness) page(target string) string {
	h.t.Helper()
	rec := h.do(http.MethodGet, target, nil)
	require.Equal(h.t, http.StatusOK, rec.Code, rec.Body.String())
	return rec.Body.String()
}

// post sends a request; form bodies carry the workspace token.
func (h *harness) post(target string, values url.Values) *httptest.ResponseRecorder {
	h.t.Helper()
	if values != nil && !values.Has(csrfField) {
		values.Set(csrfField, h.token())
	}
	return h.do(http.MethodPost, target, values)
}

func (h *harness) token() string {
	h.server.workspaces.mu.Lock()
	defer h.server.workspaces.mu.Unlock()
	for _, ws := range h.server.workspaces.byID {
		return ws.token
	}
	return ""
}

func TestIndexRedirectsToFirstPage(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/animais", rec.Header().Get("Location"))
}

func TestPageRendersListAndNavigation(t *testing.T) {
	h := newHarness(t)
	body := h.page("/lotes")

	assert.Contains(t, body, `id="fd-main"`)
	assert.Contains(t, body, "Lista de Lotes")
	assert.Contains(t, body, "Lote A")
	assert.Contains(t, body, "Engorda")
	assert.Contains(t, body, `href="/animais"`)
	assert.Contains(t, body, `href="/lotes/new"`)
	assert.NotContains(t, body, `class="fd-modal"`)
	assert.Equal(t, 1, h.server.workspaces.len())

	h.page("/animais")
	assert.Equal(t, 1, h.server.workspaces.len(), "session cookie keeps the workspace")
}

func TestFormPostNeedsWorkspaceToken(t *testing.T) {
	h := newHarness(t)
	body := h.page("/lotes/new")
	assert.Contains(t, body, `name="_csrf" value="`+h.token()+`"`)

	rec := h.post("/lotes/form", url.Values{"nome": {"Lote B"}, csrfField: {"forged"}, opField: {opSubmit}})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, h.backend.saves)
	assert.Contains(t, h.page("/lotes"), `class="fd-modal"`, "form stays open")
}

func TestUnknownPageIsNotFound(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/vacas", nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/lotes/zz/edit", nil).Code)
}

func TestCreateSubmitSavesAndCloses(t *testing.T) {
	h := newHarness(t)
	body := h.page("/lotes/new")
	assert.Contains(t, body, `class="fd-modal"`)
	assert.Contains(t, body, "Cadastrar Novo Lote")

	rec := h.post("/lotes/form", url.Values{"nome": {"Lote B"}, "dieta": {"d1"}, "_op": {"submit"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/lotes", rec.Header().Get("Location"))

	require.Len(t, h.backend.saves, 1)
	got := h.backend.saves[0]
	assert.Equal(t, "lotes", got.page)
	assert.Empty(t, got.id)
	assert.Equal(t, "Lote B", got.values["nome"].Text())
	assert.Equal(t, "d1", got.values["dieta"].Text())

	assert.NotContains(t, h.page("/lotes"), `class="fd-modal"`)
}

func TestEditSubmitUsesRecordID(t *testing.T) {
	h := newHarness(t)
	body := h.page("/lotes/l1/edit")
	assert.Contains(t, body, "Editar Lote")
	assert.Contains(t, body, `value="Lote A"`)

	h.post("/lotes/form", url.Values{"nome": {"Lote A2"}, "_op": {"submit"}})
	require.Len(t, h.backend.saves, 1)
	assert.Equal(t, "l1", h.backend.saves[0].id)
	assert.Equal(t, "d1", h.backend.saves[0].values["dieta"].Text())
}

func TestSubmitWithMissingFieldsKeepsFormOpen(t *testing.T) {
	h := newHarness(t)
	h.page("/lotes/new")

	h.post("/lotes/form", url.Values{"nome": {"Lote B"}, "_op": {"submit"}})
	assert.Empty(t, h.backend.saves)

	body := h.page("/lotes")
	assert.Contains(t, body, `class="fd-modal"`)
	assert.Contains(t, body, form.RequiredMessage)
	assert.Contains(t, body, `value="Lote B"`, "typed values survive the round trip")
}

func TestFailedSaveStillClosesAndRefreshes(t *testing.T) {
	h := newHarness(t)
	h.backend.saveErr = errors.New("api down")
	h.page("/lotes/new")
	before := h.source.fetches

	h.post("/lotes/form", url.Values{"nome": {"Lote B"}, "dieta": {"d1"}, "_op": {"submit"}})
	assert.Len(t, h.backend.saves, 1)
	assert.Greater(t, h.source.fetches, before)
	assert.NotContains(t, h.page("/lotes"), `class="fd-modal"`)
}

func TestCancelDiscardsForm(t *testing.T) {
	h := newHarness(t)
	h.page("/lotes/new")
	h.post("/lotes/form", url.Values{"nome": {"Lote B"}, "_op": {"cancel"}})
	assert.Empty(t, h.backend.saves)
	assert.NotContains(t, h.page("/lotes"), `class="fd-modal"`)
}

func TestRepeatableGroupRows(t *testing.T) {
	h := newHarness(t)
	h.page("/dietas/new")

	h.post("/dietas/form", url.Values{"nome": {"Dieta 1"}, "_op": {"add:modulos"}})
	body := h.page("/dietas")
	assert.Contains(t, body, `id="fd-form/modulos.0"`)
	assert.Contains(t, body, `value="Dieta 1"`)

	h.post("/dietas/form", url.Values{"_op": {"add:modulos.0.componentes"}})
	h.post("/dietas/form", url.Values{"modulos.0.componentes.0.nome": {"Milho"}, "_op": {"add:modulos.0.componentes"}})
	body = h.page("/dietas")
	assert.Contains(t, body, `id="fd-form/modulos.0.componentes.1"`)
	assert.Contains(t, body, `value="Milho"`)

	h.post("/dietas/form", url.Values{"_op": {"remove:modulos:0"}})
	body = h.page("/dietas")
	assert.NotContains(t, body, `id="fd-form/modulos.0"`)
	assert.Empty(t, h.backend.saves)
}

func TestEventsDismissFormOnOutsideClick(t *testing.T) {
	h := newHarness(t)
	h.page("/lotes/new")

	rec := h.post("/lotes/events?target="+url.QueryEscape("fd-form/nome"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fd-main")
	assert.Contains(t, rec.Body.String(), "fd-modal", "inside clicks keep the form")

	rec = h.post("/lotes/events?target=fd-backdrop", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fd-main")
	assert.NotContains(t, rec.Body.String(), "fd-modal")
	assert.Empty(t, h.backend.saves)
}

func TestEventsRowMenu(t *testing.T) {
	h := newHarness(t)
	h.page("/lotes")

	rec := h.post("/lotes/events?target=fd-list-trigger-0", nil)
	assert.Contains(t, rec.Body.String(), `id="fd-list-menu-0"`)

	rec = h.post("/lotes/events?target=fd-main", nil)
	assert.NotContains(t, rec.Body.String(), `id="fd-list-menu-0"`, "outside click closes the menu")

	h.post("/lotes/events?target=fd-list-trigger-0", nil)
	rec = h.post("/lotes/events?target="+url.QueryEscape("fd-list-menu-0/action-0"), nil)
	assert.Contains(t, rec.Body.String(), "Editar Lote")
	assert.NotContains(t, rec.Body.String(), `id="fd-list-menu-0"`)
}

func TestEventsDeleteAction(t *testing.T) {
	h := newHarness(t)
	h.page("/lotes")
	before := h.source.fetches

	h.post("/lotes/events?target=fd-list-trigger-0", nil)
	rec := h.post("/lotes/events?target="+url.QueryEscape("fd-list-menu-0/action-1"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, h.backend.deletes, "delete waits for confirmation")
	assert.Contains(t, rec.Body.String(), "Tem certeza que deseja excluir este lote?")
	assert.NotContains(t, rec.Body.String(), `id="fd-list-menu-0"`)

	rec = h.post("/lotes/events?target="+url.QueryEscape("fd-list-confirm/accept"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"lotes/l1"}, h.backend.deletes)
	assert.Greater(t, h.source.fetches, before)
	assert.NotContains(t, rec.Body.String(), "alertdialog")
}

func TestEventsDeleteCanBeRejected(t *testing.T) {
	h := newHarness(t)
	h.page("/lotes")

	h.post("/lotes/events?target=fd-list-trigger-0", nil)
	h.post("/lotes/events?target="+url.QueryEscape("fd-list-menu-0/action-1"), nil)
	rec := h.post("/lotes/events?target="+url.QueryEscape("fd-list-confirm/reject"), nil)
	assert.NotContains(t, rec.Body.String(), "alertdialog")

	h.post("/lotes/events?target=fd-list-trigger-0", nil)
	h.post("/lotes/events?target="+url.QueryEscape("fd-list-menu-0/action-1"), nil)
	rec = h.post("/lotes/events?target=fd-main", nil)
	assert.NotContains(t, rec.Body.String(), "alertdialog", "outside click dismisses the confirmation")

	rec = h.post("/lotes/events?target="+url.QueryEscape("fd-list-confirm/accept"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, h.backend.deletes)
}

func TestEventsNavigateAction(t *testing.T) {
	h := newHarness(t)
	h.page("/animais")

	h.post("/animais/events?target=fd-list-trigger-0", nil)
	rec := h.post("/animais/events?target="+url.QueryEscape("fd-list-menu-0/action-2"), nil)
	assert.Contains(t, rec.Body.String(), "window.location.assign")
	assert.Contains(t, rec.Body.String(), "/producao-leite?animalId=a1")
}

func TestPrefillOpensCreateForm(t *testing.T) {
	h := newHarness(t)
	body := h.page("/producao-leite?animalId=a1")
	assert.Contains(t, body, `class="fd-modal"`)
	assert.Contains(t, body, `<option value="a1" selected>`)
}

func TestReloadRebuildsPageState(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "Primeiro")
	store, err := pages.LoadDir(dir)
	require.NoError(t, err)

	h := newHarness(t, orchestrator.WithPages(store))
	h.server.cfg.PagesDir = dir
	assert.Contains(t, h.page("/galpoes"), "Primeiro")

	writePage(t, dir, "Segundo")
	require.NoError(t, h.server.Reload())
	assert.Contains(t, h.page("/galpoes"), "Segundo")
}

func TestWatcherReloadsChangedDefinitions(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "Primeiro")
	store, err := pages.LoadDir(dir)
	require.NoError(t, err)

	h := newHarness(t, orchestrator.WithPages(store))
	h.server.cfg.PagesDir = dir

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.server.watchPages(ctx) }()

	require.Eventually(t, func() bool {
		writePage(t, dir, "Segundo")
		page, err := store.Page("galpoes")
		return err == nil && page.Title == "Segundo"
	}, 3*time.Second, 50*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	time.Sleep(2 * reloadDebounce)
}

func TestServeStopsOnCancel(t *testing.T) {
	h := newHarness(t)
	h.server.cfg.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.server.Serve(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * shutdownTimeout):
		t.Fatal("server did not stop")
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	renderer, err := vanilla.New()
	require.NoError(t, err)
	orch := orchestrator.New()

	_, err = New(nil, &stubBackend{}, renderer, Config{})
	require.Error(t, err)
	_, err = New(orch, nil, renderer, Config{})
	require.Error(t, err)
	_, err = New(orch, &stubBackend{}, nil, Config{})
	require.Error(t, err)
	_, err = New(orch, &stubBackend{}, renderer, Config{Watch: true})
	require.Error(t, err)
}

func TestParseRemove(t *testing.T) {
	path, index, err := parseRemove("modulos.0.componentes:2")
	require.NoError(t, err)
	assert.Equal(t, "modulos.0.componentes", path)
	assert.Equal(t, 2, index)

	_, _, err = parseRemove("modulos")
	require.Error(t, err)
	_, _, err = parseRemove("modulos:x")
	require.Error(t, err)
}

func writePage(t *testing.T, dir, title string) {
	t.Helper()
	body := "name: galpoes\ntitle: " + title + "\nfields:\n  - name: nome\n    type: text\ncolumns:\n  - header: Nome\n    accessor: nome\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "galpoes.yaml"), []byte(body), 0o600))
}
