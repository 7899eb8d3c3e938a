package input

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/MikeSquared-Agency/Ftopsis/internal/ftopsis"
	"github.com/MikeSquared-Agency/Ftopsis/internal/fuzzy"
)

func buildRanking(doc *document) (*Problem, error) {
	var params rankingParameters
	if err := json.Unmarshal(doc.Parameters, &params); err != nil {
		return nil, fmt.Errorf("%w: parameters: %w", fuzzy.ErrMalformedInput, err)
	}

	rowKeys, rows, err := object(params.PerformanceMatrix, "performance_matrix")
	if err != nil {
		return nil, err
	}
	alternatives := params.Alternatives
	if len(alternatives) == 0 {
		alternatives = rowKeys
	}
	criteria := params.Criteria
	if len(criteria) == 0 {
		if criteria, _, err = object(params.CriteriaTypes, "criteria_types"); err != nil {
			return nil, err
		}
	}

	cells := make([][]fuzzy.Number, len(alternatives))
	for i, alt := range alternatives {
		raw, ok := rows[alt]
		if !ok {
			return nil, fmt.Errorf("%w: performance_matrix has no row for %q", fuzzy.ErrMalformedInput, alt)
		}
		if cells[i], err = row(raw, criteria, termTable{}, "performance_matrix."+alt); err != nil {
			return nil, err
		}
	}
	decision, err := ftopsis.NewMatrix(alternatives, criteria, cells)
	if err != nil {
		return nil, err
	}

	types, err := criterionTypes(params.CriteriaTypes, "criteria_types")
	if err != nil {
		return nil, err
	}
	weights, err := weightTable(params.Weights, termTable{})
	if err != nil {
		return nil, err
	}
	return &Problem{
		Mode:     ModeRank,
		Kind:     decision.Kind(),
		Decision: decision,
		Criteria: types,
		Weights:  weights,
	}, nil
}

func buildTrapezoidal(doc *document) (*Problem, error) {
	terms, err := parseTerms(doc.LinguisticTerms, "linguistic_terms")
	if err != nil {
		return nil, err
	}
	criteria := doc.Criteria
	if len(criteria) == 0 {
		if criteria, _, err = object(doc.CriteriaType, "criteria_type"); err != nil {
			return nil, err
		}
	}

	elements := doc.Elements
	var decisionCells [][]fuzzy.Number
	if isArray(doc.FuzzyDecisionMatrix) {
		var raws []json.RawMessage
		if err := json.Unmarshal(doc.FuzzyDecisionMatrix, &raws); err != nil {
			return nil, fmt.Errorf("%w: fuzzy_decision_matrix: %w", fuzzy.ErrMalformedInput, err)
		}
		if len(raws) != len(elements) {
			return nil, fmt.Errorf("%w: fuzzy_decision_matrix has %d rows for %d elements", fuzzy.ErrMalformedInput, len(raws), len(elements))
		}
		for i, raw := range raws {
			r, err := row(raw, criteria, terms, "fuzzy_decision_matrix."+elements[i])
			if err != nil {
				return nil, err
			}
			decisionCells = append(decisionCells, r)
		}
	} else {
		keys, rows, err := object(doc.FuzzyDecisionMatrix, "fuzzy_decision_matrix")
		if err != nil {
			return nil, err
		}
		if len(elements) == 0 {
			elements = keys
		}
		for _, el := range elements {
			raw, ok := rows[el]
			if !ok {
				return nil, fmt.Errorf("%w: fuzzy_decision_matrix has no row for %q", fuzzy.ErrMalformedInput, el)
			}
			r, err := row(raw, criteria, terms, "fuzzy_decision_matrix."+el)
			if err != nil {
				return nil, err
			}
			decisionCells = append(decisionCells, r)
		}
	}
	decision, err := ftopsis.NewMatrix(elements, criteria, decisionCells)
	if err != nil {
		return nil, err
	}

	profiles, labels, err := referenceProfiles(doc, criteria, terms)
	if err != nil {
		return nil, err
	}
	types, err := criterionTypes(doc.CriteriaType, "criteria_type")
	if err != nil {
		return nil, err
	}
	weights, err := weightTable(doc.Weights, terms)
	if err != nil {
		return nil, err
	}
	return &Problem{
		Mode:     ModeClassify,
		Kind:     fuzzy.KindTrapezoidal,
		Decision: decision,
		Profiles: profiles,
		Labels:   labels,
		Criteria: types,
		Weights:  weights,
	}, nil
}

// referenceProfiles reads reference_matrix rows in profile order. Rows may be keyed by profile key
// or by label, or listed in order.
func referenceProfiles(doc *document, criteria []string, terms termTable) (*ftopsis.Matrix, []string, error) {
	var keys, labels []string
	var err error
	if present(doc.ProfileMapping) {
		if keys, labels, err = profileOrder(doc.ProfileMapping); err != nil {
			return nil, nil, err
		}
	}

	var raws []json.RawMessage
	if isArray(doc.ReferenceMatrix) {
		if err := json.Unmarshal(doc.ReferenceMatrix, &raws); err != nil {
			return nil, nil, fmt.Errorf("%w: reference_matrix: %w", fuzzy.ErrMalformedInput, err)
		}
		if labels == nil {
			for i := range raws {
				labels = append(labels, strconv.Itoa(i+1))
			}
		}
		if len(raws) != len(labels) {
			return nil, nil, fmt.Errorf("%w: reference_matrix has %d rows for %d profiles", fuzzy.ErrMalformedInput, len(raws), len(labels))
		}
	} else {
		refKeys, rows, err := object(doc.ReferenceMatrix, "reference_matrix")
		if err != nil {
			return nil, nil, err
		}
		if labels == nil {
			keys, labels = refKeys, refKeys
		}
		if len(rows) != len(labels) {
			return nil, nil, fmt.Errorf("%w: reference_matrix has %d rows for %d profiles", fuzzy.ErrMalformedInput, len(rows), len(labels))
		}
		for i, k := range keys {
			raw, ok := rows[k]
			if !ok {
				raw, ok = rows[labels[i]]
			}
			if !ok {
				return nil, nil, fmt.Errorf("%w: reference_matrix has no row for profile %q", fuzzy.ErrMalformedInput, k)
			}
			raws = append(raws, raw)
		}
	}

	cells := make([][]fuzzy.Number, len(raws))
	for i, raw := range raws {
		if cells[i], err = row(raw, criteria, terms, "reference_matrix."+labels[i]); err != nil {
			return nil, nil, err
		}
	}
	m, err := ftopsis.NewMatrix(labels, criteria, cells)
	if err != nil {
		return nil, nil, err
	}
	return m, labels, nil
}

func buildTriangular(doc *document) (*Problem, error) {
	alternatives, err := parseTerms(doc.LinguisticAlternatives, "linguistic_variables_alternatives")
	if err != nil {
		return nil, err
	}
	weightTerms := alternatives
	if present(doc.LinguisticWeights) {
		if weightTerms, err = parseTerms(doc.LinguisticWeights, "linguistic_variables_weights"); err != nil {
			return nil, err
		}
	}

	criteria := doc.Criteria
	if len(criteria) == 0 {
		if criteria, _, err = object(doc.DecisionMatrix, "decision_matrix"); err != nil {
			return nil, err
		}
	}
	suppliers := doc.Suppliers
	if len(suppliers) == 0 {
		suppliers = doc.Elements
	}
	if len(suppliers) == 0 {
		return nil, fmt.Errorf("%w: suppliers is missing", fuzzy.ErrMalformedInput)
	}

	decisionCells, _, err := columns(doc.DecisionMatrix, criteria, alternatives, len(suppliers), "decision_matrix")
	if err != nil {
		return nil, err
	}
	decision, err := ftopsis.NewMatrix(suppliers, criteria, decisionCells)
	if err != nil {
		return nil, err
	}

	profileCells, n, err := columns(doc.ProfileMatrix, criteria, alternatives, -1, "profile_matrix")
	if err != nil {
		return nil, err
	}
	var labels []string
	if present(doc.ProfileMapping) {
		if _, labels, err = profileOrder(doc.ProfileMapping); err != nil {
			return nil, err
		}
		if len(labels) != n {
			return nil, fmt.Errorf("%w: profile_matrix has %d profiles, profile_mapping has %d", fuzzy.ErrMalformedInput, n, len(labels))
		}
	} else {
		for i := 0; i < n; i++ {
			labels = append(labels, strconv.Itoa(i+1))
		}
	}
	profiles, err := ftopsis.NewMatrix(labels, criteria, profileCells)
	if err != nil {
		return nil, err
	}

	types, err := criterionTypes(doc.CriteriaType, "criteria_type")
	if err != nil {
		return nil, err
	}
	weights, err := weightTable(doc.Weights, weightTerms)
	if err != nil {
		return nil, err
	}
	return &Problem{
		Mode:     ModeClassify,
		Kind:     fuzzy.KindTriangular,
		Decision: decision,
		Profiles: profiles,
		Labels:   labels,
		Criteria: types,
		Weights:  weights,
	}, nil
}

// columns reads a criterion-oriented matrix into row-major cells. want < 0 takes the length of
// the first column.
func columns(raw json.RawMessage, criteria []string, terms termTable, want int, what string) ([][]fuzzy.Number, int, error) {
	_, cols, err := object(raw, what)
	if err != nil {
		return nil, 0, err
	}
	if len(cols) != len(criteria) {
		return nil, 0, fmt.Errorf("%w: %s has %d columns for %d criteria", fuzzy.ErrMalformedInput, what, len(cols), len(criteria))
	}

	var cells [][]fuzzy.Number
	for j, c := range criteria {
		colRaw, ok := cols[c]
		if !ok {
			return nil, 0, fmt.Errorf("%w: %s has no column for criterion %q", fuzzy.ErrMalformedInput, what, c)
		}
		var col []json.RawMessage
		if err := json.Unmarshal(colRaw, &col); err != nil {
			return nil, 0, fmt.Errorf("%w: %s.%s must be a list", fuzzy.ErrMalformedInput, what, c)
		}
		if want < 0 {
			want = len(col)
		}
		if len(col) != want || want == 0 {
			return nil, 0, fmt.Errorf("%w: %s.%s has %d entries, want %d", fuzzy.ErrMalformedInput, what, c, len(col), want)
		}
		if cells == nil {
			cells = make([][]fuzzy.Number, want)
			for i := range cells {
				cells[i] = make([]fuzzy.Number, len(criteria))
			}
		}
		for i, v := range col {
			if cells[i][j], err = cell(v, terms); err != nil {
				return nil, 0, fmt.Errorf("%s.%s[%d]: %w", what, c, i, err)
			}
		}
	}
	return cells, want, nil
}

func criterionTypes(raw json.RawMessage, what string) (ftopsis.Criteria, error) {
	keys, values, err := object(raw, what)
	if err != nil {
		return nil, err
	}
	out := make(ftopsis.Criteria, len(keys))
	for _, k := range keys {
		var s string
		if err := json.Unmarshal(values[k], &s); err != nil {
			return nil, fmt.Errorf("%w: %s.%s must be a string", fuzzy.ErrMalformedInput, what, k)
		}
		if out[k], err = ftopsis.ParseCriterionType(s); err != nil {
			return nil, fmt.Errorf("%s.%s: %w", what, k, err)
		}
	}
	return out, nil
}

func weightTable(raw json.RawMessage, terms termTable) (ftopsis.Weights, error) {
	keys, values, err := object(raw, "weights")
	if err != nil {
		return nil, err
	}
	out := make(ftopsis.Weights, len(keys))
	for _, k := range keys {
		if out[k], err = cell(values[k], terms); err != nil {
			return nil, fmt.Errorf("weights.%s: %w", k, err)
		}
	}
	return out, nil
}
