package pages

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-farmdesk/pkg/model"
	"github.com/goliatone/go-farmdesk/pkg/table"
)

func TestLoadEmbeddedDefinitions(t *testing.T) {
	store, err := Load(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := []string{"animais", "dietas", "alimentos", "lotes", "producao-leite"}
	if diff := cmp.Diff(want, store.Names()); diff != "" {
		t.Fatalf("page order mismatch (-want +got):\n%s", diff)
	}

	for _, page := range store.Pages() {
		if page.Nav.Icon == "" || !strings.HasPrefix(page.Nav.Icon, "<svg") {
			t.Fatalf("%s: expected sanitized svg icon, got %q", page.Name, page.Nav.Icon)
		}
		if page.FormTitle(false) == "" {
			t.Fatalf("%s: missing create title", page.Name)
		}
	}
}

func TestDietasDeclaresNestedGroups(t *testing.T) {
	store, err := Load(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	page, err := store.Page("dietas")
	if err != nil {
		t.Fatalf("page: %v", err)
	}

	modulos, ok := model.Lookup(page.Fields, "modulos")
	if !ok || modulos.Type != model.FieldTypeGroup {
		t.Fatalf("expected modulos group, got %#v", modulos)
	}
	componentes, ok := model.Lookup(modulos.Nested, "componentes")
	if !ok || componentes.AddLabel != "Adicionar Componente" {
		t.Fatalf("expected componentes group, got %#v", componentes)
	}

	if diff := cmp.Diff([]string{"alimentos", "categorias"}, page.OptionResources()); diff != "" {
		t.Fatalf("option resources mismatch (-want +got):\n%s", diff)
	}
}

func TestStorePageReturnsCopies(t *testing.T) {
	store, err := Load(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	page, _ := store.Page("lotes")
	page.Fields[0].Label = "changed"

	again, _ := store.Page("lotes")
	if again.Fields[0].Label != "Nome" {
		t.Fatalf("expected store page untouched, got %q", again.Fields[0].Label)
	}
}

func TestUnknownPage(t *testing.T) {
	store := NewStore()
	if _, err := store.Page("vacas"); !errors.Is(err, ErrUnknownPage) {
		t.Fatalf("expected ErrUnknownPage, got %v", err)
	}
}

func TestLoadRejectsInvalidDefinitions(t *testing.T) {
	cases := map[string]string{
		"no fields": "name: x\ncolumns:\n  - header: A\n    accessor: a\n",
		"bad type":  "name: x\nfields:\n  - name: a\n    type: checkbox\ncolumns:\n  - header: A\n    accessor: a\n",
		"select without options": "name: x\nfields:\n  - name: a\n    type: select\n" +
			"columns:\n  - header: A\n    accessor: a\n",
		"navigate without href": "name: x\nfields:\n  - name: a\n    type: text\n" +
			"columns:\n  - header: A\n    accessor: a\nactions:\n  - kind: navigate\n    label: Ir\n",
		"unknown format": "name: x\nfields:\n  - name: a\n    type: text\n" +
			"columns:\n  - header: A\n    accessor: a\n    format: roman\n",
		"unknown key": "name: x\nlayout: grid\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(fstest.MapFS{"x.yaml": {Data: []byte(doc)}})
			if err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}

func TestLoadRejectsDuplicateNames(t *testing.T) {
	doc := []byte("name: x\nfields:\n  - name: a\n    type: text\ncolumns:\n  - header: A\n    accessor: a\n")
	_, err := Load(fstest.MapFS{"a.yaml": {Data: doc}, "b.yml": {Data: doc}})
	if !errors.Is(err, ErrInvalidPage) {
		t.Fatalf("expected ErrInvalidPage, got %v", err)
	}
}

func TestParseDefaultsFromFileName(t *testing.T) {
	doc := []byte("title: Vacas\nfields:\n  - name: a\n    type: text\ncolumns:\n  - header: A\n    accessor: a\n" +
		"nav:\n  icon: <svg onload=\"x()\"><script>x()</script><path d=\"M0 0\"/></svg>\n")
	page, err := Parse(doc, "dir/vacas.yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if page.Name != "vacas" || page.Resource != "vacas" || page.Nav.Label != "Vacas" {
		t.Fatalf("unexpected defaults: %#v", page)
	}
	if strings.Contains(page.Nav.Icon, "script") || strings.Contains(page.Nav.Icon, "onload") {
		t.Fatalf("expected icon sanitized, got %q", page.Nav.Icon)
	}
	if !strings.Contains(page.Nav.Icon, "<path") {
		t.Fatalf("expected path kept, got %q", page.Nav.Icon)
	}
}

func TestStoreReplace(t *testing.T) {
	store := NewStore(Page{Name: "a", Nav: NavConfig{Order: 2}}, Page{Name: "b", Nav: NavConfig{Order: 1}})
	if diff := cmp.Diff([]string{"b", "a"}, store.Names()); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}

	store.Replace(NewStore(Page{Name: "c"}))
	if diff := cmp.Diff([]string{"c"}, store.Names()); diff != "" {
		t.Fatalf("replace mismatch (-want +got):\n%s", diff)
	}
	if _, err := store.Page("a"); !errors.Is(err, ErrUnknownPage) {
		t.Fatalf("expected replaced page gone, got %v", err)
	}
}

func TestListColumnsApplyFormats(t *testing.T) {
	page := Page{Columns: []ColumnConfig{
		{Header: "Preço", Accessor: "preco", Format: FormatCurrency},
		{Header: "Data", Accessor: "data", Format: FormatDate},
		{Header: "Nome", Accessor: "nome"},
	}}
	list := table.New(page.ListColumns())
	list.SetRecords([]table.Record{{"preco": 12.5, "data": "2024-03-05T10:00:00Z", "nome": "Milho"}})

	got := list.View().Rows[0].Cells
	want := []string{"R$ 12,50", "05/03/2024", "Milho"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("cells mismatch (-want +got):\n%s", diff)
	}
}

func TestActionURLEscapesID(t *testing.T) {
	action := ActionConfig{Kind: ActionNavigate, Href: "/producao-leite?animalId={id}"}
	got := action.URL(table.Record{"_id": "a 1"})
	if got != "/producao-leite?animalId=a+1" {
		t.Fatalf("unexpected url %q", got)
	}
}
