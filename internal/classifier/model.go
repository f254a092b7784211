package classifier

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync/atomic"
)

// Message labels
const (
	LabelCargo  = "CARGO"
	LabelVessel = "VESSEL"
	LabelOther  = "OTHER"
)

// Labels lists the three classes in canonical order
var Labels = []string{LabelCargo, LabelVessel, LabelOther}

// ErrUntrained is returned when classifying against a model that has not been
// trained. That is a setup bug, not bad input, so it fails fast.
var ErrUntrained = errors.New("classifier model has not been trained")

// Example is one labeled training document
type Example struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// Result is the outcome of classifying one message
type Result struct {
	Label         string             `json:"label"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities"`
	Features      map[string]float64 `json:"features"`
	StrongSignal  string             `json:"strong_signal,omitempty"`
}

// Model is an immutable term-weighted vector classifier. Train builds a new
// model from scratch; callers swap the reference after retraining rather than
// mutating in place, so a Model is safe for concurrent classification.
type Model struct {
	vocabulary   map[string]int     // term -> vocabulary index
	idf          []float64          // per-term inverse document frequency
	classVectors map[string][]float64
	trainedOn    int
	signals      *strongSignals
}

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// tokenize lower-cases, strips punctuation and drops single-character tokens
func tokenize(text string) []string {
	var tokens []string
	for _, token := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		if len(token) > 1 {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// Train builds a model from the full labeled corpus. It is deterministic:
// training twice on identical data yields identical class vectors.
func Train(corpus []Example) (*Model, error) {
	if len(corpus) == 0 {
		return nil, errors.New("training corpus is empty")
	}

	perClass := make(map[string]int)
	for _, example := range corpus {
		switch example.Label {
		case LabelCargo, LabelVessel, LabelOther:
			perClass[example.Label]++
		default:
			return nil, fmt.Errorf("unknown label %q in training corpus", example.Label)
		}
	}

	// Build the vocabulary over all documents, in sorted term order so that
	// vector layout is reproducible.
	docTokens := make([][]string, len(corpus))
	termSet := make(map[string]bool)
	for i, example := range corpus {
		docTokens[i] = tokenize(example.Text)
		for _, token := range docTokens[i] {
			termSet[token] = true
		}
	}

	terms := make([]string, 0, len(termSet))
	for term := range termSet {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	vocabulary := make(map[string]int, len(terms))
	for i, term := range terms {
		vocabulary[term] = i
	}

	// Document frequency and idf: ln((N+1)/(df+1)) + 1
	df := make([]int, len(terms))
	for _, tokens := range docTokens {
		seen := make(map[int]bool)
		for _, token := range tokens {
			idx := vocabulary[token]
			if !seen[idx] {
				seen[idx] = true
				df[idx]++
			}
		}
	}

	n := float64(len(corpus))
	idf := make([]float64, len(terms))
	for i, count := range df {
		idf[i] = math.Log((n+1)/(float64(count)+1)) + 1
	}

	// Mean tf-idf vector per class
	classVectors := make(map[string][]float64, len(Labels))
	for _, label := range Labels {
		classVectors[label] = make([]float64, len(terms))
	}
	for i, example := range corpus {
		vector := vectorize(docTokens[i], vocabulary, idf)
		class := classVectors[example.Label]
		for j, weight := range vector {
			class[j] += weight
		}
	}
	for label, vector := range classVectors {
		if count := perClass[label]; count > 0 {
			for j := range vector {
				vector[j] /= float64(count)
			}
		}
	}

	return &Model{
		vocabulary:   vocabulary,
		idf:          idf,
		classVectors: classVectors,
		trainedOn:    len(corpus),
		signals:      newStrongSignals(),
	}, nil
}

// vectorize builds a tf-idf vector for one token list
func vectorize(tokens []string, vocabulary map[string]int, idf []float64) []float64 {
	vector := make([]float64, len(idf))
	if len(tokens) == 0 {
		return vector
	}

	counts := make(map[int]int)
	for _, token := range tokens {
		if idx, ok := vocabulary[token]; ok {
			counts[idx]++
		}
	}

	total := float64(len(tokens))
	for idx, count := range counts {
		vector[idx] = (float64(count) / total) * idf[idx]
	}
	return vector
}

func cosine(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Classify labels one message with a confidence and full probability triple
func (m *Model) Classify(text string) (*Result, error) {
	if m == nil || m.trainedOn == 0 {
		return nil, ErrUntrained
	}

	tokens := tokenize(text)
	vector := vectorize(tokens, m.vocabulary, m.idf)

	similarities := make(map[string]float64, len(Labels))
	total := 0.0
	for _, label := range Labels {
		sim := cosine(vector, m.classVectors[label])
		if sim < 0 {
			sim = 0
		}
		similarities[label] = sim
		total += sim
	}

	probabilities := make(map[string]float64, len(Labels))
	if total == 0 {
		// Nothing in the vocabulary matched; fall back to a uniform spread
		for _, label := range Labels {
			probabilities[label] = 1.0 / float64(len(Labels))
		}
	} else {
		for _, label := range Labels {
			probabilities[label] = similarities[label] / total
		}
	}

	strongSignal := m.signals.adjust(text, probabilities)

	best := Labels[0]
	for _, label := range Labels[1:] {
		if probabilities[label] > probabilities[best] {
			best = label
		}
	}

	features := make(map[string]float64)
	for term, idx := range m.vocabulary {
		if vector[idx] != 0 {
			features[term] = vector[idx]
		}
	}

	return &Result{
		Label:         best,
		Confidence:    probabilities[best],
		Probabilities: probabilities,
		Features:      features,
		StrongSignal:  strongSignal,
	}, nil
}

// TrainedOn returns the number of documents the model was trained on
func (m *Model) TrainedOn() int {
	if m == nil {
		return 0
	}
	return m.trainedOn
}

// VocabularySize returns the number of terms in the model vocabulary
func (m *Model) VocabularySize() int {
	if m == nil {
		return 0
	}
	return len(m.vocabulary)
}

// Ref holds the current model and supports atomic swap after retraining, so
// classification never observes a half-trained model.
type Ref struct {
	current atomic.Pointer[Model]
}

// NewRef creates a reference, optionally seeded with an initial model
func NewRef(model *Model) *Ref {
	ref := &Ref{}
	if model != nil {
		ref.current.Store(model)
	}
	return ref
}

// Get returns the current model, or nil if none has been trained yet
func (r *Ref) Get() *Model {
	return r.current.Load()
}

// Swap installs a freshly trained model
func (r *Ref) Swap(model *Model) {
	r.current.Store(model)
}

// Classify labels text against the current model
func (r *Ref) Classify(text string) (*Result, error) {
	model := r.Get()
	if model == nil {
		return nil, ErrUntrained
	}
	return model.Classify(text)
}
