package suggest

import "math"

// Kind - источник кандидата.
type Kind string

const (
	KindTitlePattern Kind = "title_pattern"
	KindFollowUp     Kind = "follow_up"
	KindReminder     Kind = "reminder"
	KindRecurring    Kind = "recurring"
	KindDefault      Kind = "default"
)

// Signals - признаки кандидата, нормированные генератором в [0, 1].
type Signals struct {
	// Frequency - доля задач истории, похожих на кандидата.
	Frequency float64
	// Recency - насколько недавно создавались связанные завершённые задачи.
	Recency float64
	// Proximity - близость срока связанной задачи (1 для просроченных).
	Proximity float64
}

// Candidate - подсказка до оценки.
type Candidate struct {
	Kind        Kind
	Title       string
	Description string
	Reasoning   string
	Signals     Signals
	// Prior - базовая оценка, не зависящая от признаков.
	Prior float64
	// Ceiling - потолок оценки для этого вида кандидата. Ноль означает 1.
	Ceiling float64
}

// Scorer выставляет кандидату уверенность в [0, 1].
type Scorer interface {
	Score(c Candidate, ctx Context) float64
}

type ScorerFunc func(c Candidate, ctx Context) float64

func (f ScorerFunc) Score(c Candidate, ctx Context) float64 {
	return f(c, ctx)
}

// WeightedScorer - линейная комбинация сигналов, ограниченная потолком кандидата.
type WeightedScorer struct {
	Frequency float64
	Recency   float64
	Proximity float64
}

// DefaultScorer повторяет частотные оценки генераторов и добавляет небольшой бонус свежести.
var DefaultScorer = WeightedScorer{Frequency: 1.0, Recency: 0.2, Proximity: 1.0}

func (w WeightedScorer) Score(c Candidate, _ Context) float64 {
	score := c.Prior +
		w.Frequency*c.Signals.Frequency +
		w.Recency*c.Signals.Recency +
		w.Proximity*c.Signals.Proximity

	ceiling := c.Ceiling
	if ceiling <= 0 || ceiling > 1 {
		ceiling = 1
	}
	return math.Min(clamp01(score), ceiling)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
