package input

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/MikeSquared-Agency/Ftopsis/internal/fuzzy"
)

// document is the union of the three accepted layouts. Parts whose key order matters are kept
// raw and decoded with objectKeys.
type document struct {
	Parameters json.RawMessage `json:"parameters"`

	LinguisticTerms        json.RawMessage `json:"linguistic_terms"`
	LinguisticAlternatives json.RawMessage `json:"linguistic_variables_alternatives"`
	LinguisticWeights      json.RawMessage `json:"linguistic_variables_weights"`

	Weights        json.RawMessage `json:"weights"`
	CriteriaType   json.RawMessage `json:"criteria_type"`
	Elements       []string        `json:"elements"`
	Suppliers      []string        `json:"suppliers"`
	Criteria       []string        `json:"criteria"`
	ProfileMapping json.RawMessage `json:"profile_mapping"`

	FuzzyDecisionMatrix json.RawMessage `json:"fuzzy_decision_matrix"`
	ReferenceMatrix     json.RawMessage `json:"reference_matrix"`

	DecisionMatrix json.RawMessage `json:"decision_matrix"`
	ProfileMatrix  json.RawMessage `json:"profile_matrix"`
}

type rankingParameters struct {
	Alternatives      []string        `json:"alternatives"`
	Criteria          []string        `json:"criteria"`
	PerformanceMatrix json.RawMessage `json:"performance_matrix"`
	CriteriaTypes     json.RawMessage `json:"criteria_types"`
	Weights           json.RawMessage `json:"weights"`
}

func present(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

// object decodes a JSON object and returns its keys in document order.
func object(raw json.RawMessage, what string) ([]string, map[string]json.RawMessage, error) {
	if !present(raw) {
		return nil, nil, fmt.Errorf("%w: %s is missing", fuzzy.ErrMalformedInput, what)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", fuzzy.ErrMalformedInput, what, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("%w: %s must be an object", fuzzy.ErrMalformedInput, what)
	}

	var keys []string
	values := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s: %w", fuzzy.ErrMalformedInput, what, err)
		}
		key := tok.(string)
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, nil, fmt.Errorf("%w: %s.%s: %w", fuzzy.ErrMalformedInput, what, key, err)
		}
		if _, dup := values[key]; dup {
			return nil, nil, fmt.Errorf("%w: %s has duplicate key %q", fuzzy.ErrMalformedInput, what, key)
		}
		keys = append(keys, key)
		values[key] = v
	}
	return keys, values, nil
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

// termTable maps linguistic labels to fuzzy parameters.
type termTable struct {
	names  []string
	values map[string][]float64
}

func parseTerms(raw json.RawMessage, what string) (termTable, error) {
	keys, values, err := object(raw, what)
	if err != nil {
		return termTable{}, err
	}
	t := termTable{names: keys, values: make(map[string][]float64, len(keys))}
	for _, k := range keys {
		var params []float64
		if err := json.Unmarshal(values[k], &params); err != nil {
			return termTable{}, fmt.Errorf("%w: %s.%s must be a list of numbers", fuzzy.ErrMalformedInput, what, k)
		}
		t.values[k] = params
	}
	return t, nil
}

// size is the parameter count of the first term. Every term must share it.
func (t termTable) size() (int, bool) {
	if len(t.names) == 0 {
		return 0, false
	}
	n := len(t.values[t.names[0]])
	for _, name := range t.names[1:] {
		if len(t.values[name]) != n {
			return 0, false
		}
	}
	return n, true
}

func (t termTable) lookup(label string) (fuzzy.Number, error) {
	params, ok := t.values[label]
	if !ok {
		return fuzzy.Number{}, fmt.Errorf("%w: unknown linguistic term %q", fuzzy.ErrMalformedInput, label)
	}
	n, err := fuzzy.New(params...)
	if err != nil {
		return fuzzy.Number{}, fmt.Errorf("term %q: %w", label, err)
	}
	return n, nil
}

// cell resolves a linguistic label, a one-label list or a parameter list. terms may be empty
// when only numeric cells are expected.
func cell(raw json.RawMessage, terms termTable) (fuzzy.Number, error) {
	var label string
	if err := json.Unmarshal(raw, &label); err == nil {
		return terms.lookup(label)
	}
	var labels []string
	if err := json.Unmarshal(raw, &labels); err == nil && len(labels) == 1 {
		return terms.lookup(labels[0])
	}
	var params []float64
	if err := json.Unmarshal(raw, &params); err != nil {
		return fuzzy.Number{}, fmt.Errorf("%w: cell %s is neither a term nor a parameter list", fuzzy.ErrMalformedInput, string(raw))
	}
	return fuzzy.New(params...)
}

// row decodes a row given either as a list in criteria order or as an object keyed by
// criterion.
func row(raw json.RawMessage, criteria []string, terms termTable, what string) ([]fuzzy.Number, error) {
	out := make([]fuzzy.Number, len(criteria))
	if isArray(raw) {
		var cells []json.RawMessage
		if err := json.Unmarshal(raw, &cells); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", fuzzy.ErrMalformedInput, what, err)
		}
		if len(cells) != len(criteria) {
			return nil, fmt.Errorf("%w: %s has %d cells for %d criteria", fuzzy.ErrMalformedInput, what, len(cells), len(criteria))
		}
		for j, c := range cells {
			n, err := cell(c, terms)
			if err != nil {
				return nil, fmt.Errorf("%s/%s: %w", what, criteria[j], err)
			}
			out[j] = n
		}
		return out, nil
	}

	_, cells, err := object(raw, what)
	if err != nil {
		return nil, err
	}
	if len(cells) != len(criteria) {
		return nil, fmt.Errorf("%w: %s has %d cells for %d criteria", fuzzy.ErrMalformedInput, what, len(cells), len(criteria))
	}
	for j, name := range criteria {
		c, ok := cells[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s has no value for criterion %q", fuzzy.ErrMalformedInput, what, name)
		}
		n, err := cell(c, terms)
		if err != nil {
			return nil, fmt.Errorf("%s/%s: %w", what, name, err)
		}
		out[j] = n
	}
	return out, nil
}

// profileOrder returns profile_mapping keys in ordinal order and their labels. Integer keys
// sort numerically; anything else keeps document order.
func profileOrder(raw json.RawMessage) (keys, labels []string, err error) {
	keys, values, err := object(raw, "profile_mapping")
	if err != nil {
		return nil, nil, err
	}
	numeric := true
	for _, k := range keys {
		if _, err := strconv.Atoi(k); err != nil {
			numeric = false
			break
		}
	}
	if numeric {
		sort.SliceStable(keys, func(i, j int) bool {
			a, _ := strconv.Atoi(keys[i])
			b, _ := strconv.Atoi(keys[j])
			return a < b
		})
	}
	labels = make([]string, len(keys))
	for i, k := range keys {
		if err := json.Unmarshal(values[k], &labels[i]); err != nil {
			return nil, nil, fmt.Errorf("%w: profile_mapping.%s must be a string", fuzzy.ErrMalformedInput, k)
		}
	}
	return keys, labels, nil
}
