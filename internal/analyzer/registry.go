package analyzer

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/zombar/newscred/internal/models"
)

// Partial is one analyzer's contribution to a result. Apply is called under
// the registry's lock, so implementations write their fields directly.
type Partial interface {
	Apply(result *models.AnalysisResult)
}

// Analyzer computes one independent facet of a text. Implementations must be
// pure: no I/O, no shared mutable state, deterministic for a given input.
type Analyzer interface {
	Name() string
	Analyze(text *NormalizedText) (Partial, error)
}

// Registry holds the analyzers that run on each request. Analyzers are
// registered once at startup; RunAll is safe for concurrent use afterwards.
type Registry struct {
	analyzers []Analyzer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// DefaultRegistry creates a registry with the full analyzer set.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewLanguageAnalyzer())
	r.Register(NewReadabilityAnalyzer())
	r.Register(NewEntityAnalyzer())
	r.Register(NewUniquenessAnalyzer())
	r.Register(NewPropagandaAnalyzer())
	r.Register(NewStyleAnalyzer())
	return r
}

// Register adds an analyzer. Not safe to call concurrently with RunAll.
func (r *Registry) Register(a Analyzer) {
	r.analyzers = append(r.analyzers, a)
}

// Names returns the registered analyzer names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.analyzers))
	for _, a := range r.analyzers {
		names = append(names, a.Name())
	}
	sort.Strings(names)
	return names
}

// RunAll fans the text out to every registered analyzer and merges the
// successful partials into result. It returns a map of analyzer name to
// failure reason for the analyzers that errored or panicked; those contribute
// nothing to the result. A failed analyzer never produces fabricated values.
func (r *Registry) RunAll(text *NormalizedText, result *models.AnalysisResult) map[string]string {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures = make(map[string]string)
	)

	for _, a := range r.analyzers {
		wg.Add(1)
		go func(a Analyzer) {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					slog.Error("analyzer panicked", "analyzer", a.Name(), "panic", rec)
					mu.Lock()
					failures[a.Name()] = fmt.Sprintf("panic: %v", rec)
					mu.Unlock()
				}
			}()

			partial, err := a.Analyze(text)
			if err != nil {
				slog.Warn("analyzer failed", "analyzer", a.Name(), "error", err)
				mu.Lock()
				failures[a.Name()] = err.Error()
				mu.Unlock()
				return
			}

			mu.Lock()
			partial.Apply(result)
			mu.Unlock()
		}(a)
	}

	wg.Wait()
	return failures
}
