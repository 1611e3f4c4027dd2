// Package suggest строит ранжированные подсказки задач по существующей коллекции.
package suggest

import (
	"fmt"
	"sort"
	"time"

	"github.com/St1cky1/task-service/internal/entity"
)

const (
	MinLimit     = 1
	MaxLimit     = 10
	DefaultLimit = 5

	DefaultPerSource     = 2
	DefaultDueSoonWindow = 48 * time.Hour
)

// Context - всё, кроме самих задач, от чего зависит расчет.
type Context struct {
	Now time.Time
}

type Config struct {
	// PerSource - максимум кандидатов от одного генератора.
	PerSource int
	// DueSoonWindow - горизонт, в пределах которого задача считается близкой к сроку.
	DueSoonWindow time.Duration
	Scorer        Scorer
}

// Engine не хранит состояния и безопасен для конкурентного использования.
type Engine struct {
	perSource int
	window    time.Duration
	scorer    Scorer
}

func NewEngine(cfg Config) *Engine {
	e := &Engine{
		perSource: cfg.PerSource,
		window:    cfg.DueSoonWindow,
		scorer:    cfg.Scorer,
	}
	if e.perSource <= 0 {
		e.perSource = DefaultPerSource
	}
	if e.window <= 0 {
		e.window = DefaultDueSoonWindow
	}
	if e.scorer == nil {
		e.scorer = DefaultScorer
	}
	return e
}

// ValidateLimit возвращает ValidationError для limit вне [MinLimit, MaxLimit].
func ValidateLimit(limit int) error {
	if limit < MinLimit || limit > MaxLimit {
		return entity.NewValidationError("limit", fmt.Sprintf("must be between %d and %d", MinLimit, MaxLimit))
	}
	return nil
}

// Suggest возвращает не больше limit подсказок по убыванию уверенности.
// При равной оценке сохраняется порядок генерации: шаблоны названий, продолжения, напоминания, повторы, значения по умолчанию.
func (e *Engine) Suggest(tasks []entity.Task, limit int, ctx Context) ([]entity.Suggestion, error) {
	if err := ValidateLimit(limit); err != nil {
		return nil, err
	}

	candidates := e.Candidates(tasks, ctx)

	type scored struct {
		candidate Candidate
		score     float64
	}
	ranked := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, scored{candidate: c, score: round4(clamp01(e.scorer.Score(c, ctx)))})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	suggestions := make([]entity.Suggestion, 0, len(ranked))
	for _, r := range ranked {
		suggestions = append(suggestions, entity.Suggestion{
			SuggestedTitle:       r.candidate.Title,
			SuggestedDescription: r.candidate.Description,
			ConfidenceScore:      r.score,
			Reasoning:            r.candidate.Reasoning,
		})
	}
	return suggestions, nil
}

// Candidates запускает генераторы в фиксированном порядке. Если задач меньше двух, возвращаются только подсказки по умолчанию.
func (e *Engine) Candidates(tasks []entity.Task, ctx Context) []Candidate {
	if len(tasks) < 2 {
		return defaultCandidates()
	}

	generators := []func([]entity.Task, Context) []Candidate{
		e.titlePatterns,
		e.followUps,
		e.reminders,
		e.recurring,
	}

	var candidates []Candidate
	for _, generate := range generators {
		generated := generate(tasks, ctx)
		if len(generated) > e.perSource {
			generated = generated[:e.perSource]
		}
		candidates = append(candidates, generated...)
	}
	return candidates
}
