// Package query фильтрует, сортирует и постранично режет снимок задач.
// Run - чистая функция: не меняет вход и для одного входа всегда дает один результат.
package query

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/St1cky1/task-service/internal/entity"
)

type SortBy string

const (
	SortByCreationDate SortBy = "creation_date"
	SortByDueDate      SortBy = "due_date"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

const (
	MinLimit = 1
	MaxLimit = 100
)

// Filter - условия отбора, объединяются через AND. nil означает "без ограничения".
type Filter struct {
	Status *entity.TaskStatus
	// DueDate сравнивается по календарной дате в UTC, время суток игнорируется.
	DueDate *time.Time
}

type Params struct {
	Filter    Filter
	SortBy    SortBy
	SortOrder SortOrder
	// Limit nil - всё после Offset.
	Limit  *int
	Offset int
}

// Validate проверяет диапазоны и перечисления. Пустые SortBy/SortOrder допустимы и означают значения по умолчанию.
func (p Params) Validate() error {
	if p.Filter.Status != nil && !p.Filter.Status.Valid() {
		return entity.NewValidationError("status", "must be one of: pending, in_progress, completed")
	}
	switch p.SortBy {
	case "", SortByCreationDate, SortByDueDate:
	default:
		return entity.NewValidationError("sort_by", "must be one of: creation_date, due_date")
	}
	switch p.SortOrder {
	case "", SortAsc, SortDesc:
	default:
		return entity.NewValidationError("sort_order", "must be one of: asc, desc")
	}
	if p.Limit != nil && (*p.Limit < MinLimit || *p.Limit > MaxLimit) {
		return entity.NewValidationError("limit", fmt.Sprintf("must be between %d and %d", MinLimit, MaxLimit))
	}
	if p.Offset < 0 {
		return entity.NewValidationError("offset", "must be greater than or equal to 0")
	}
	return nil
}

func (p Params) withDefaults() Params {
	if p.SortBy == "" {
		p.SortBy = SortByCreationDate
	}
	if p.SortOrder == "" {
		p.SortOrder = SortAsc
	}
	return p
}

// Run фильтрует задачи, стабильно сортирует и вырезает окно [offset, offset+limit).
// При сортировке по due_date задачи без срока идут после всех задач со сроком в любом направлении.
func Run(tasks []entity.Task, p Params) ([]entity.Task, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p = p.withDefaults()

	result := make([]entity.Task, 0, len(tasks))
	for _, task := range tasks {
		if p.Filter.matches(&task) {
			result = append(result, task.Clone())
		}
	}

	sort.SliceStable(result, less(result, p.SortBy, p.SortOrder))

	return paginate(result, p.Offset, p.Limit), nil
}

func (f Filter) matches(task *entity.Task) bool {
	if f.Status != nil && task.Status != *f.Status {
		return false
	}
	if f.DueDate != nil {
		if task.DueDate == nil {
			return false
		}
		if !sameDate(*task.DueDate, *f.DueDate) {
			return false
		}
	}
	return true
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

func less(tasks []entity.Task, by SortBy, order SortOrder) func(i, j int) bool {
	before := func(a, b time.Time) bool {
		if order == SortDesc {
			return a.After(b)
		}
		return a.Before(b)
	}

	if by == SortByDueDate {
		return func(i, j int) bool {
			a, b := tasks[i].DueDate, tasks[j].DueDate
			switch {
			case a == nil:
				return false
			case b == nil:
				return true
			default:
				return before(*a, *b)
			}
		}
	}

	return func(i, j int) bool {
		return before(tasks[i].CreationDate, tasks[j].CreationDate)
	}
}

func paginate(tasks []entity.Task, offset int, limit *int) []entity.Task {
	if offset >= len(tasks) {
		return []entity.Task{}
	}
	end := len(tasks)
	if limit != nil && offset+*limit < end {
		end = offset + *limit
	}
	return tasks[offset:end]
}

// ParseDueDate принимает дату (2006-01-02) или полную метку времени RFC 3339.
// Пробел читается как "+": смещение +02:00 без percent-encoding приходит раскодированным в " 02:00".
func ParseDueDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, strings.Replace(raw, " ", "+", 1))
	if err != nil {
		return time.Time{}, entity.NewValidationError("due_date", "must be a date (YYYY-MM-DD) or an RFC 3339 timestamp")
	}
	return t.UTC(), nil
}
