package farm

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-farmdesk/pkg/api"
	"github.com/goliatone/go-farmdesk/pkg/model"
	"github.com/goliatone/go-farmdesk/pkg/table"
	"github.com/goliatone/go-farmdesk/pkg/testsupport"
)

type call struct {
	op     string
	id     string
	record map[string]any
}

type stubClient struct {
	mu         sync.Mutex
	lists      map[string][]map[string]any
	items      map[string][]any
	production []map[string]any
	failItems  map[string]error
	failDelete error
	calls      []call
	days       int
}

func (c *stubClient) Resource(name string) api.Resource { return &stubResource{client: c, name: name} }

func (c *stubClient) Items(_ context.Context, name string) ([]any, error) {
	if err := c.failItems[name]; err != nil {
		return nil, err
	}
	return c.items[name], nil
}

func (c *stubClient) AnimalsWithProduction(_ context.Context, dias int) ([]map[string]any, error) {
	c.mu.Lock()
	c.days = dias
	c.mu.Unlock()
	return c.production, nil
}

func (c *stubClient) record(op, id string, record map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call{op: op, id: id, record: record})
}

type stubResource struct {
	client *stubClient
	name   string
}

func (r *stubResource) Name() string { return r.name }
func (r *stubResource) List(context.Context) ([]map[string]any, error) {
	r.client.record("list", r.name, nil)
	return r.client.lists[r.name], nil
}
func (r *stubResource) Get(context.Context, string) (map[string]any, error) { return nil, nil }
func (r *stubResource) Create(_ context.Context, record map[string]any) (map[string]any, error) {
	r.client.record("create", "", record)
	return record, nil
}
func (r *stubResource) Update(_ context.Context, id string, record map[string]any) (map[string]any, error) {
	r.client.record("update", id, record)
	return record, nil
}
func (r *stubResource) Delete(_ context.Context, id string) error {
	r.client.record("delete", id, nil)
	return r.client.failDelete
}

func TestRecords_AnimalsUseProductionAndStageNames(t *testing.T) {
	client := &stubClient{
		production: []map[string]any{
			{"_id": "a1", "nome": "Mimosa", "estagioProducao": float64(1), "producaoDiariaLeite": 21.5},
			{"_id": "a2", "nome": "Estrela", "estagioProducao": "Seca"},
		},
		items: map[string][]any{api.EstagiosProducao: {"Lactação", "Seca"}},
	}
	records, err := New(client).Records(context.Background(), testsupport.MustLoadPage(t, "animais"))
	require.NoError(t, err)

	assert.Equal(t, ProductionWindow, client.days)
	require.Len(t, records, 2)
	assert.Equal(t, "Seca", records[0]["estagioProducao"])
	assert.Equal(t, "Seca", records[1]["estagioProducao"])
	assert.Equal(t, float64(1), client.production[0]["estagioProducao"], "api records are not mutated")
}

func TestRecords_ProducaoJoinsAnimalAndSplitsTimestamp(t *testing.T) {
	client := &stubClient{
		lists: map[string][]map[string]any{api.ProducaoLeite: {
			{"_id": "p1", "animal": "a1", "quantidade": 12.0, "dataHora": "2024-03-05T06:30:00.000Z"},
			{"_id": "p2", "animal": map[string]any{"_id": "zz"}, "quantidade": 3.0},
		}},
		items: map[string][]any{api.Animais: {map[string]any{"_id": "a1", "nome": "Mimosa"}}},
	}
	records, err := New(client).Records(context.Background(), testsupport.MustLoadPage(t, "producao-leite"))
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "Mimosa", records[0]["animalNome"])
	assert.Equal(t, "a1", records[0]["animalId"])
	assert.Equal(t, "2024-03-05", records[0]["data"])
	assert.Equal(t, "06:30", records[0]["hora"])
	assert.Equal(t, "Desconhecido", records[1]["animalNome"])
	assert.Equal(t, "zz", records[1]["animalId"])
}

func TestRecords_LookupFailureFailsTheFetch(t *testing.T) {
	boom := errors.New("boom")
	client := &stubClient{failItems: map[string]error{api.Animais: boom}}
	_, err := New(client).Records(context.Background(), testsupport.MustLoadPage(t, "producao-leite"))
	require.ErrorIs(t, err, boom)
}

func TestFields_ResolvesSelectOptions(t *testing.T) {
	client := &stubClient{items: map[string][]any{
		api.Categorias: {"Volumoso", "Concentrado"},
		api.Alimentos:  {map[string]any{"_id": "m1", "nome": "Milho"}},
	}}
	fields, err := New(client).Fields(context.Background(), testsupport.MustLoadPage(t, "dietas"))
	require.NoError(t, err)

	modulos, ok := model.Lookup(fields, "modulos")
	require.True(t, ok)
	categoria, _ := model.Lookup(modulos.Nested, "categoria")
	assert.Equal(t, []model.Option{{Value: "Volumoso", Label: "Volumoso"}, {Value: "Concentrado", Label: "Concentrado"}}, categoria.Options)
	componentes, _ := model.Lookup(modulos.Nested, "componentes")
	alimento, _ := model.Lookup(componentes.Nested, "alimento")
	assert.Equal(t, []model.Option{{Value: "m1", Label: "Milho"}}, alimento.Options)
}

func TestSave_AlimentoAvailabilityBecomesBool(t *testing.T) {
	client := &stubClient{}
	page := testsupport.MustLoadPage(t, "alimentos")
	values := model.Values{
		"nome":            model.String("Milho"),
		"preco":           model.Number(1.5),
		"disponibilidade": model.String("Disponível"),
	}

	_, err := New(client).Save(context.Background(), page, "", values)
	require.NoError(t, err)

	require.Len(t, client.calls, 1)
	assert.Equal(t, "create", client.calls[0].op)
	assert.Equal(t, true, client.calls[0].record["disponibilidade"])
	assert.Equal(t, 1.5, client.calls[0].record["preco"])
}

func TestSave_ProducaoCombinesDateAndTime(t *testing.T) {
	client := &stubClient{}
	page := testsupport.MustLoadPage(t, "producao-leite")
	values := model.Values{
		"animalId":   model.String("a1"),
		"quantidade": model.Number(12),
		"data":       model.String("2024-03-05"),
		"hora":       model.String("06:30"),
	}

	_, err := New(client).Save(context.Background(), page, "p1", values)
	require.NoError(t, err)

	require.Len(t, client.calls, 1)
	got := client.calls[0]
	assert.Equal(t, "update", got.op)
	assert.Equal(t, "p1", got.id)
	assert.Equal(t, map[string]any{
		"animalId":   "a1",
		"quantidade": float64(12),
		"dataHora":   "2024-03-05T06:30:00.000Z",
	}, got.record)
}

func TestSave_ProducaoRejectsBadTimestamp(t *testing.T) {
	client := &stubClient{}
	values := model.Values{"data": model.String("ontem"), "hora": model.String("06:30")}
	_, err := New(client).Save(context.Background(), testsupport.MustLoadPage(t, "producao-leite"), "", values)
	require.Error(t, err)
	assert.Empty(t, client.calls)
}

func TestAlimentoRecordMapsAvailability(t *testing.T) {
	client := &stubClient{lists: map[string][]map[string]any{api.Alimentos: {
		{"_id": "f1", "disponibilidade": true},
		{"_id": "f2", "disponibilidade": false},
	}}}
	records, err := New(client).Records(context.Background(), testsupport.MustLoadPage(t, "alimentos"))
	require.NoError(t, err)
	assert.Equal(t, "Disponível", records[0]["disponibilidade"])
	assert.Equal(t, "Indisponível", records[1]["disponibilidade"])
}

func TestDeleteAndPrefill(t *testing.T) {
	client := &stubClient{}
	svc := New(client)

	require.NoError(t, svc.Delete(context.Background(), testsupport.MustLoadPage(t, "lotes"), table.Record{"_id": "l1"}))
	assert.Equal(t, []call{{op: "delete", id: "l1"}}, client.calls)

	page := testsupport.MustLoadPage(t, "producao-leite")
	assert.Equal(t, map[string]any{"animalId": "a1"}, svc.Prefill(page, url.Values{"animalId": {"a1"}}))
	assert.Nil(t, svc.Prefill(page, url.Values{}))
	assert.Nil(t, svc.Prefill(testsupport.MustLoadPage(t, "lotes"), url.Values{"animalId": {"a1"}}))
}

func TestDeleteTreatsMissingRecordAsDeleted(t *testing.T) {
	page := testsupport.MustLoadPage(t, "lotes")

	client := &stubClient{failDelete: &api.Error{Method: "DELETE", Path: "/lotes/l1", Status: 404}}
	require.NoError(t, New(client).Delete(context.Background(), page, table.Record{"_id": "l1"}))

	client.failDelete = &api.Error{Method: "DELETE", Path: "/lotes/l1", Status: 500}
	err := New(client).Delete(context.Background(), page, table.Record{"_id": "l1"})
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 500, apiErr.Status)
}
