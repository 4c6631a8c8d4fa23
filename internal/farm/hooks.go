package farm

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-farmdesk/pkg/api"
	"github.com/goliatone/go-farmdesk/pkg/table"
)

// ProductionWindow is the number of days of milk production summed in the
// animal list.
const ProductionWindow = 7

const (
	available   = "Disponível"
	unavailable = "Indisponível"
	unknownName = "Desconhecido"

	dateLayout = "2006-01-02"
	timeLayout = "15:04"
	isoLayout  = "2006-01-02T15:04:05.000Z"
)

// DefaultHooks returns the hooks of the bundled pages.
func DefaultHooks() map[string]Hooks {
	return map[string]Hooks{
		api.Animais: {
			Fetch: func(ctx context.Context, client Client) ([]map[string]any, error) {
				return client.AnimalsWithProduction(ctx, ProductionWindow)
			},
			Lookups:  []string{api.EstagiosProducao},
			ToRecord: animalRecord,
		},
		api.Alimentos: {
			ToRecord:  alimentoRecord,
			ToPayload: alimentoPayload,
		},
		api.ProducaoLeite: {
			Lookups:   []string{api.Animais},
			ToRecord:  producaoRecord,
			ToPayload: producaoPayload,
			Prefill:   producaoPrefill,
		},
	}
}

// animalRecord replaces a numeric production stage with its name.
func animalRecord(record map[string]any, lookups map[string][]any) map[string]any {
	stages := lookups[api.EstagiosProducao]
	index, ok := stageIndex(record["estagioProducao"])
	if ok && index >= 0 && index < len(stages) {
		record["estagioProducao"] = table.Text(stages[index])
	}
	return record
}

func stageIndex(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	}
	return 0, false
}

// alimentoRecord shows availability as the label the form selects.
func alimentoRecord(record map[string]any, _ map[string][]any) map[string]any {
	if flag, ok := record["disponibilidade"].(bool); ok {
		record["disponibilidade"] = availabilityLabel(flag)
	}
	return record
}

func alimentoPayload(values map[string]any) (map[string]any, error) {
	values["disponibilidade"] = values["disponibilidade"] == available
	return values, nil
}

func availabilityLabel(flag bool) string {
	if flag {
		return available
	}
	return unavailable
}

// producaoRecord joins the animal name and splits dataHora into the date and
// time the list and the form show.
func producaoRecord(record map[string]any, lookups map[string][]any) map[string]any {
	animalID := referenceID(record["animal"])
	if animalID == "" {
		animalID = referenceID(record["animalId"])
	}
	record["animalId"] = animalID

	record["animalNome"] = unknownName
	for _, item := range lookups[api.Animais] {
		animal, ok := item.(map[string]any)
		if ok && table.Record(animal).ID() == animalID {
			record["animalNome"] = table.Text(animal["nome"])
			break
		}
	}

	if raw, ok := record["dataHora"].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(raw)); err == nil {
			t = t.UTC()
			record["data"] = t.Format(dateLayout)
			record["hora"] = t.Format(timeLayout)
		}
	}
	return record
}

// producaoPayload combines the date and time inputs into an ISO timestamp.
func producaoPayload(values map[string]any) (map[string]any, error) {
	date := strings.TrimSpace(table.Text(values["data"]))
	clock := strings.TrimSpace(table.Text(values["hora"]))
	t, err := time.ParseInLocation(dateLayout+"T"+timeLayout, date+"T"+clock, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid date and time %q %q: %w", date, clock, err)
	}
	delete(values, "data")
	delete(values, "hora")
	values["dataHora"] = t.Format(isoLayout)
	return values, nil
}

func producaoPrefill(query url.Values) map[string]any {
	id := strings.TrimSpace(query.Get("animalId"))
	if id == "" {
		return nil
	}
	return map[string]any{"animalId": id}
}

func referenceID(v any) string {
	if record, ok := v.(map[string]any); ok {
		return table.Record(record).ID()
	}
	return table.Text(v)
}
