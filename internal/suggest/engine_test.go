package suggest

import (
	"testing"
	"time"

	"github.com/St1cky1/task-service/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func newTask(id int, title string, status entity.TaskStatus, created time.Duration) entity.Task {
	return entity.Task{ID: id, Title: title, Status: status, CreationDate: now.Add(created)}
}

func withDue(t entity.Task, in time.Duration) entity.Task {
	due := now.Add(in)
	t.DueDate = &due
	return t
}

func titles(suggestions []entity.Suggestion) []string {
	out := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, s.SuggestedTitle)
	}
	return out
}

func mixedHistory() []entity.Task {
	return []entity.Task{
		newTask(1, "Weekly sync with team", entity.StatusCompleted, -72*time.Hour),
		newTask(2, "Weekly sync with design", entity.StatusCompleted, -48*time.Hour),
		withDue(newTask(3, "Write quarterly report", entity.StatusPending, 0), -time.Hour),
		withDue(newTask(4, "Review quarterly report", entity.StatusPending, 0), 12*time.Hour),
		newTask(5, "Weekly sync with team", entity.StatusPending, -time.Hour),
		newTask(6, "Fix login bug", entity.StatusInProgress, 0),
	}
}

func TestSuggestDefaultsForSmallHistory(t *testing.T) {
	engine := NewEngine(Config{})

	for _, tasks := range [][]entity.Task{nil, {newTask(1, "Only task", entity.StatusPending, 0)}} {
		got, err := engine.Suggest(tasks, DefaultLimit, Context{Now: now})
		require.NoError(t, err)
		require.Len(t, got, 2)

		assert.Equal(t, "Weekly Planning Session", got[0].SuggestedTitle)
		assert.Equal(t, 0.6, got[0].ConfidenceScore)
		assert.Equal(t, "Progress Review Meeting", got[1].SuggestedTitle)
		assert.Equal(t, 0.5, got[1].ConfidenceScore)
	}

	got, err := engine.Suggest(nil, 1, Context{Now: now})
	require.NoError(t, err)
	assert.Equal(t, []string{"Weekly Planning Session"}, titles(got))
}

func TestSuggestTitlePatternsSkipExistingTitles(t *testing.T) {
	engine := NewEngine(Config{})
	tasks := []entity.Task{
		newTask(1, "Budget meeting", entity.StatusPending, 0),
		newTask(2, "Budget review", entity.StatusPending, 0),
	}

	got, err := engine.Suggest(tasks, MaxLimit, Context{Now: now})
	require.NoError(t, err)

	// "Budget Review" уже есть, поэтому берется следующий вариант
	assert.Equal(t, []string{"Monthly Budget Review", "Budget Follow-up"}, titles(got))
	assert.Equal(t, 0.85, got[0].ConfidenceScore)
	assert.Equal(t, 0.8, got[1].ConfidenceScore)
	assert.Equal(t, "Based on frequent use of 'budget' in 2 existing tasks", got[1].Reasoning)
}

func TestSuggestFollowUpsFromCompletedTasks(t *testing.T) {
	engine := NewEngine(Config{})
	tasks := []entity.Task{
		newTask(1, "Deploy backend", entity.StatusCompleted, -24*time.Hour),
		newTask(2, "Deploy frontend", entity.StatusCompleted, -48*time.Hour),
		newTask(3, "Write docs", entity.StatusPending, 0),
	}

	got, err := engine.Suggest(tasks, MaxLimit, Context{Now: now})
	require.NoError(t, err)

	assert.Equal(t, []string{"Deploy Analysis and Review", "Monthly Deploy Backend", "Deploy Review"}, titles(got))
	assert.Equal(t, 0.9, got[0].ConfidenceScore)
	assert.Equal(t, "Follow-up pattern detected: 2 completed tasks related to 'deploy'", got[0].Reasoning)
}

func TestSuggestReminders(t *testing.T) {
	engine := NewEngine(Config{})
	tasks := []entity.Task{
		withDue(newTask(1, "Pay invoice", entity.StatusPending, 0), -2*time.Hour),
		withDue(newTask(2, "Call dentist", entity.StatusInProgress, 0), 24*time.Hour),
		withDue(newTask(3, "Plan vacation", entity.StatusPending, 0), 10*24*time.Hour),
		withDue(newTask(4, "File taxes", entity.StatusCompleted, 0), -5*time.Hour),
	}

	got, err := engine.Suggest(tasks, MaxLimit, Context{Now: now})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Reminder: Pay invoice", got[0].SuggestedTitle)
	assert.Equal(t, 0.95, got[0].ConfidenceScore)
	assert.Contains(t, got[0].Reasoning, "Overdue since")

	assert.Equal(t, "Reminder: Call dentist", got[1].SuggestedTitle)
	assert.Equal(t, 0.75, got[1].ConfidenceScore)
}

func TestSuggestDueSoonWindow(t *testing.T) {
	engine := NewEngine(Config{DueSoonWindow: 6 * time.Hour})
	tasks := []entity.Task{
		withDue(newTask(1, "Pay invoice", entity.StatusPending, 0), 3*time.Hour),
		withDue(newTask(2, "Call dentist", entity.StatusPending, 0), 24*time.Hour),
	}

	got, err := engine.Suggest(tasks, MaxLimit, Context{Now: now})
	require.NoError(t, err)
	assert.Equal(t, []string{"Reminder: Pay invoice"}, titles(got))
}

func TestSuggestRankingContract(t *testing.T) {
	engine := NewEngine(Config{})
	tasks := mixedHistory()

	got, err := engine.Suggest(tasks, MaxLimit, Context{Now: now})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Reminder: Write quarterly report",
		"Weekly Analysis and Review",
		"Reminder: Review quarterly report",
		"Monthly Weekly Sync With Team",
		"Weekly Review",
		"Sync Review",
		"Monthly Write Quarterly Report",
	}, titles(got))
	assert.InDelta(t, 0.6667, got[6].ConfidenceScore, 1e-9)

	for i, s := range got {
		assert.GreaterOrEqual(t, s.ConfidenceScore, 0.0)
		assert.LessOrEqual(t, s.ConfidenceScore, 1.0)
		if i > 0 {
			assert.GreaterOrEqual(t, got[i-1].ConfidenceScore, s.ConfidenceScore)
		}
	}

	top, err := engine.Suggest(tasks, 3, Context{Now: now})
	require.NoError(t, err)
	assert.Equal(t, got[:3], top)
}

func TestSuggestIsDeterministicAndReadOnly(t *testing.T) {
	engine := NewEngine(Config{})
	tasks := mixedHistory()
	before := make([]entity.Task, len(tasks))
	for i, task := range tasks {
		before[i] = task.Clone()
	}

	first, err := engine.Suggest(tasks, MaxLimit, Context{Now: now})
	require.NoError(t, err)
	second, err := engine.Suggest(tasks, MaxLimit, Context{Now: now})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, before, tasks)
}

func TestSuggestTiesKeepGenerationOrder(t *testing.T) {
	constant := ScorerFunc(func(Candidate, Context) float64 { return 0.5 })
	engine := NewEngine(Config{Scorer: constant})
	tasks := mixedHistory()

	got, err := engine.Suggest(tasks, MaxLimit, Context{Now: now})
	require.NoError(t, err)

	candidates := engine.Candidates(tasks, Context{Now: now})
	require.Len(t, got, len(candidates))
	for i, c := range candidates {
		assert.Equal(t, c.Title, got[i].SuggestedTitle)
		assert.Equal(t, 0.5, got[i].ConfidenceScore)
	}
}

func TestSuggestClampsScorerOutput(t *testing.T) {
	wild := ScorerFunc(func(c Candidate, _ Context) float64 {
		if c.Kind == KindReminder {
			return 7
		}
		return -3
	})
	engine := NewEngine(Config{Scorer: wild})

	got, err := engine.Suggest(mixedHistory(), MaxLimit, Context{Now: now})
	require.NoError(t, err)
	require.NotEmpty(t, got)

	assert.Equal(t, 1.0, got[0].ConfidenceScore)
	assert.Equal(t, 0.0, got[len(got)-1].ConfidenceScore)
}

func TestSuggestPerSourceCap(t *testing.T) {
	engine := NewEngine(Config{PerSource: 1})

	candidates := engine.Candidates(mixedHistory(), Context{Now: now})
	kinds := make(map[Kind]int)
	for _, c := range candidates {
		kinds[c.Kind]++
	}
	for kind, n := range kinds {
		assert.Equal(t, 1, n, "kind %s", kind)
	}
}

func TestSuggestNoCandidates(t *testing.T) {
	engine := NewEngine(Config{})
	tasks := []entity.Task{
		newTask(1, "Paint fence", entity.StatusPending, 0),
		newTask(2, "Call mom", entity.StatusPending, 0),
	}

	got, err := engine.Suggest(tasks, DefaultLimit, Context{Now: now})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSuggestLimitValidation(t *testing.T) {
	engine := NewEngine(Config{})

	for _, limit := range []int{0, -1, 11} {
		_, err := engine.Suggest(nil, limit, Context{Now: now})
		var verr *entity.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "limit", verr.Field)
		assert.ErrorIs(t, err, entity.ErrValidation)
	}
}

func TestWeightedScorer(t *testing.T) {
	scorer := WeightedScorer{Frequency: 0.5, Recency: 0.25, Proximity: 0.25}

	assert.Equal(t, 0.5, scorer.Score(Candidate{Signals: Signals{Frequency: 1}}, Context{}))
	assert.Equal(t, 0.3, scorer.Score(Candidate{Signals: Signals{Frequency: 1}, Ceiling: 0.3}, Context{}))
	assert.Equal(t, 1.0, scorer.Score(Candidate{Prior: 0.9, Signals: Signals{Recency: 1, Proximity: 1}}, Context{}))
	assert.Equal(t, 0.0, scorer.Score(Candidate{Prior: -2}, Context{}))
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Budget", titleCase("budget"))
	assert.Equal(t, "Weekly Sync With Team", titleCase("weekly sync with team"))
	assert.Equal(t, "Follow-Up", titleCase("follow-up"))
	assert.Equal(t, "Q3Report", titleCase("q3REPORT"))
}
