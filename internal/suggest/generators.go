package suggest

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/St1cky1/task-service/internal/entity"
	"github.com/agext/levenshtein"
)

const (
	titlePatternCeiling = 0.8
	followUpCeiling     = 0.9
	recurringCeiling    = 0.85
	reminderCeiling     = 0.95

	// similarityThreshold - минимальная похожесть названий для повторяющейся задачи.
	similarityThreshold = 0.6
	// recencyHorizon - после этого срока завершённые задачи перестают давать бонус свежести.
	recencyHorizon = 30 * 24 * time.Hour
	topWords       = 3
)

var (
	wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

	stopWords = map[string]struct{}{
		"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {}, "in": {},
		"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	}
)

// titlePatterns предлагает задачи вокруг слов, повторяющихся в названиях.
func (e *Engine) titlePatterns(tasks []entity.Task, _ Context) []Candidate {
	type wordCount struct {
		word  string
		count int
	}

	counts := make(map[string]*wordCount)
	var order []*wordCount
	for _, task := range tasks {
		for _, word := range words(task.Title) {
			if _, stop := stopWords[word]; stop || utf8.RuneCountInString(word) <= 2 {
				continue
			}
			wc, ok := counts[word]
			if !ok {
				wc = &wordCount{word: word}
				counts[word] = wc
				order = append(order, wc)
			}
			wc.count++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return order[i].count > order[j].count
	})
	if len(order) > topWords {
		order = order[:topWords]
	}

	var candidates []Candidate
	for _, wc := range order {
		if wc.count < 2 {
			continue
		}
		name := titleCase(wc.word)
		title, ok := firstFree(tasks,
			name+" Review",
			name+" Follow-up",
			name+" Planning",
			"Weekly "+name+" Check",
		)
		if !ok {
			continue
		}
		candidates = append(candidates, Candidate{
			Kind:        KindTitlePattern,
			Title:       title,
			Description: fmt.Sprintf("Follow-up task related to %s activities", wc.word),
			Reasoning:   fmt.Sprintf("Based on frequent use of '%s' in %d existing tasks", wc.word, wc.count),
			Signals:     Signals{Frequency: float64(wc.count) / float64(len(tasks)) * 2},
			Ceiling:     titlePatternCeiling,
		})
	}
	return candidates
}

// followUps группирует завершённые задачи по первому слову названия.
func (e *Engine) followUps(tasks []entity.Task, ctx Context) []Candidate {
	var completed []entity.Task
	for _, task := range tasks {
		if task.Status == entity.StatusCompleted {
			completed = append(completed, task)
		}
	}
	if len(completed) < 2 {
		return nil
	}

	type theme struct {
		name   string
		count  int
		latest time.Time
	}
	themes := make(map[string]*theme)
	var order []*theme
	for _, task := range completed {
		ws := words(task.Title)
		if len(ws) == 0 || utf8.RuneCountInString(ws[0]) <= 3 {
			continue
		}
		th, ok := themes[ws[0]]
		if !ok {
			th = &theme{name: ws[0]}
			themes[ws[0]] = th
			order = append(order, th)
		}
		th.count++
		if task.CreationDate.After(th.latest) {
			th.latest = task.CreationDate
		}
	}

	var candidates []Candidate
	for _, th := range order {
		if th.count < 2 {
			continue
		}
		name := titleCase(th.name)
		title, ok := firstFree(tasks,
			name+" Analysis and Review",
			name+" Next Steps Planning",
			name+" Progress Assessment",
			name+" Optimization",
		)
		if !ok {
			continue
		}
		candidates = append(candidates, Candidate{
			Kind:        KindFollowUp,
			Title:       title,
			Description: fmt.Sprintf("Next logical step after completing %s-related tasks", th.name),
			Reasoning:   fmt.Sprintf("Follow-up pattern detected: %d completed tasks related to '%s'", th.count, th.name),
			Signals: Signals{
				Frequency: float64(th.count) / float64(len(completed)) * 1.5,
				Recency:   recency(th.latest, ctx.Now),
			},
			Ceiling: followUpCeiling,
		})
	}
	return candidates
}

// reminders отмечает незавершённые задачи, просроченные или со сроком внутри окна; ближайшие первыми.
func (e *Engine) reminders(tasks []entity.Task, ctx Context) []Candidate {
	var due []entity.Task
	for _, task := range tasks {
		if task.Status == entity.StatusCompleted || task.DueDate == nil {
			continue
		}
		if task.DueDate.Sub(ctx.Now) <= e.window {
			due = append(due, task)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].DueDate.Before(*due[j].DueDate)
	})

	var candidates []Candidate
	for _, task := range due {
		title := "Reminder: " + task.Title
		if titleExists(tasks, title) {
			continue
		}

		remaining := task.DueDate.Sub(ctx.Now)
		c := Candidate{
			Kind:    KindReminder,
			Title:   title,
			Ceiling: reminderCeiling,
		}
		if remaining <= 0 {
			c.Description = fmt.Sprintf("Task #%d is past its due date and still %s", task.ID, task.Status)
			c.Reasoning = fmt.Sprintf("Overdue since %s", task.DueDate.UTC().Format(time.RFC3339))
			c.Signals.Proximity = 1
		} else {
			c.Description = fmt.Sprintf("Task #%d is due soon and still %s", task.ID, task.Status)
			c.Reasoning = fmt.Sprintf("Due in %s", remaining.Round(time.Minute))
			c.Signals.Proximity = 0.5 + 0.5*(1-float64(remaining)/float64(e.window))
		}
		candidates = append(candidates, c)
	}
	return candidates
}

// recurring ищет названия, достаточно похожие, чтобы считаться повторами одной задачи.
func (e *Engine) recurring(tasks []entity.Task, _ Context) []Candidate {
	type group struct {
		base string
		ids  map[int]struct{}
	}
	groups := make(map[string]*group)
	var order []*group

	titles := make([]string, len(tasks))
	for i, task := range tasks {
		titles[i] = strings.ToLower(task.Title)
	}

	for i := range titles {
		for j := i + 1; j < len(titles); j++ {
			if levenshtein.Similarity(titles[i], titles[j], nil) <= similarityThreshold {
				continue
			}
			base := titles[i]
			if utf8.RuneCountInString(titles[j]) < utf8.RuneCountInString(base) {
				base = titles[j]
			}
			g, ok := groups[base]
			if !ok {
				g = &group{base: base, ids: make(map[int]struct{})}
				groups[base] = g
				order = append(order, g)
			}
			g.ids[tasks[i].ID] = struct{}{}
			g.ids[tasks[j].ID] = struct{}{}
		}
	}

	var candidates []Candidate
	for _, g := range order {
		name := titleCase(g.base)
		title, ok := firstFree(tasks,
			"Monthly "+name,
			"Weekly "+name,
			name+" - Next Quarter",
			"Annual "+name,
		)
		if !ok {
			continue
		}
		candidates = append(candidates, Candidate{
			Kind:        KindRecurring,
			Title:       title,
			Description: "Recurring task based on pattern analysis of similar activities",
			Reasoning:   fmt.Sprintf("Recurring pattern detected: %d similar tasks found", len(g.ids)),
			Signals:     Signals{Frequency: float64(len(g.ids)) / float64(len(tasks)) * 2},
			Ceiling:     recurringCeiling,
		})
	}
	return candidates
}

func defaultCandidates() []Candidate {
	return []Candidate{
		{
			Kind:        KindDefault,
			Title:       "Weekly Planning Session",
			Description: "Plan and organize tasks for the upcoming week",
			Reasoning:   "Default suggestion for task organization",
			Prior:       0.6,
		},
		{
			Kind:        KindDefault,
			Title:       "Progress Review Meeting",
			Description: "Review progress on current projects and tasks",
			Reasoning:   "Default suggestion for progress tracking",
			Prior:       0.5,
		},
	}
}

func words(title string) []string {
	return wordPattern.FindAllString(strings.ToLower(title), -1)
}

// titleCase делает заглавной первую букву каждой последовательности букв, остальные строчными.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}

func titleExists(tasks []entity.Task, title string) bool {
	for _, task := range tasks {
		if strings.EqualFold(task.Title, title) {
			return true
		}
	}
	return false
}

// firstFree возвращает первый вариант, которого еще нет среди названий задач.
func firstFree(tasks []entity.Task, variations ...string) (string, bool) {
	for _, v := range variations {
		if !titleExists(tasks, v) {
			return v, true
		}
	}
	return "", false
}

func recency(at, now time.Time) float64 {
	if at.IsZero() {
		return 0
	}
	age := now.Sub(at)
	if age <= 0 {
		return 1
	}
	return clamp01(1 - float64(age)/float64(recencyHorizon))
}
