// Package input reads evaluation documents and turns them into ready-to-run problems.
package input

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/MikeSquared-Agency/Ftopsis/internal/ftopsis"
	"github.com/MikeSquared-Agency/Ftopsis/internal/fuzzy"
)

// ErrVariantDetection is returned when a document does not reveal which fuzzy number variant it
// uses.
var ErrVariantDetection = errors.New("cannot detect fuzzy number variant")

// Mode is the kind of evaluation a document asks for.
type Mode string

const (
	ModeRank     Mode = "rank"
	ModeClassify Mode = "classify"
)

// ParseMode accepts "rank" and "classify". The empty string yields "" so callers can fall back
// to the document's own mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", "auto":
		return "", nil
	case ModeRank, ModeClassify:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Problem is a fully decoded document.
type Problem struct {
	Mode     Mode
	Kind     fuzzy.Kind
	Decision *ftopsis.Matrix
	// Profiles and Labels are set for classification documents only.
	Profiles *ftopsis.Matrix
	Labels   []string
	Criteria ftopsis.Criteria
	Weights  ftopsis.Weights
}

// RankInput ranks the decision matrix of any document.
func (p *Problem) RankInput() ftopsis.RankInput {
	return ftopsis.RankInput{Decision: p.Decision, Criteria: p.Criteria, Weights: p.Weights}
}

// ClassifyInput fails for documents without reference profiles.
func (p *Problem) ClassifyInput() (ftopsis.ClassifyInput, error) {
	if p.Profiles == nil {
		return ftopsis.ClassifyInput{}, fmt.Errorf("%w: document has no reference profiles", fuzzy.ErrMalformedInput)
	}
	return ftopsis.ClassifyInput{
		Decision: p.Decision,
		Profiles: p.Profiles,
		Labels:   p.Labels,
		Criteria: p.Criteria,
		Weights:  p.Weights,
	}, nil
}

// Load reads and parses a document from disk. A missing file keeps fs.ErrNotExist in the chain;
// invalid JSON keeps the *json.SyntaxError.
func Load(path string) (*Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse input %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes a document of any supported layout.
func Parse(data []byte) (*Problem, error) {
	doc, err := decode(data)
	if err != nil {
		return nil, err
	}
	kind, mode, err := detect(doc)
	if err != nil {
		return nil, err
	}

	switch {
	case mode == ModeRank:
		return buildRanking(doc)
	case kind == fuzzy.KindTrapezoidal:
		return buildTrapezoidal(doc)
	default:
		return buildTriangular(doc)
	}
}

// DetectVariant reports the variant and natural mode of a document without building matrices.
func DetectVariant(data []byte) (fuzzy.Kind, Mode, error) {
	doc, err := decode(data)
	if err != nil {
		return 0, "", err
	}
	return detect(doc)
}

func decode(data []byte) (*document, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %w", fuzzy.ErrMalformedInput, err)
	}
	return &doc, nil
}

func detect(doc *document) (fuzzy.Kind, Mode, error) {
	if present(doc.Parameters) {
		kind, err := detectRanking(doc.Parameters)
		return kind, ModeRank, err
	}

	if present(doc.LinguisticTerms) {
		terms, err := parseTerms(doc.LinguisticTerms, "linguistic_terms")
		if err != nil {
			return 0, "", fmt.Errorf("%w: %w", ErrVariantDetection, err)
		}
		if n, ok := terms.size(); ok && n == fuzzy.KindTrapezoidal.Size() {
			return fuzzy.KindTrapezoidal, ModeClassify, nil
		}
		return 0, "", fmt.Errorf("%w: linguistic_terms must all have 4 parameters", ErrVariantDetection)
	}

	if present(doc.LinguisticAlternatives) {
		terms, err := parseTerms(doc.LinguisticAlternatives, "linguistic_variables_alternatives")
		if err != nil {
			return 0, "", fmt.Errorf("%w: %w", ErrVariantDetection, err)
		}
		if n, ok := terms.size(); ok && n == fuzzy.KindTriangular.Size() {
			return fuzzy.KindTriangular, ModeClassify, nil
		}
		return 0, "", fmt.Errorf("%w: linguistic_variables_alternatives must all have 3 parameters", ErrVariantDetection)
	}

	return 0, "", fmt.Errorf("%w: no parameters, linguistic_terms or linguistic_variables_alternatives", ErrVariantDetection)
}

func detectRanking(raw json.RawMessage) (fuzzy.Kind, error) {
	var params rankingParameters
	if err := json.Unmarshal(raw, &params); err != nil {
		return 0, fmt.Errorf("%w: parameters: %w", fuzzy.ErrMalformedInput, err)
	}
	keys, rows, err := object(params.PerformanceMatrix, "performance_matrix")
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrVariantDetection, err)
	}
	if len(keys) == 0 {
		return 0, fmt.Errorf("%w: performance_matrix is empty", ErrVariantDetection)
	}
	var first [][]float64
	if err := json.Unmarshal(rows[keys[0]], &first); err != nil || len(first) == 0 {
		return 0, fmt.Errorf("%w: performance_matrix.%s must be a list of parameter lists", ErrVariantDetection, keys[0])
	}
	kind, err := fuzzy.KindForSize(len(first[0]))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrVariantDetection, err)
	}
	return kind, nil
}
