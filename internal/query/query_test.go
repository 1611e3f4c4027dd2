package query

import (
	"testing"
	"time"

	"github.com/St1cky1/task-service/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T {
	return &v
}

// sample: id в порядке вставки, даты создания с шагом в час.
func sample() []entity.Task {
	due := func(days int, hour int) *time.Time {
		return ptr(base.AddDate(0, 0, days).Add(time.Duration(hour) * time.Hour))
	}
	return []entity.Task{
		{ID: 1, Title: "one", Status: entity.StatusPending, DueDate: due(3, 0), CreationDate: base},
		{ID: 2, Title: "two", Status: entity.StatusCompleted, CreationDate: base.Add(time.Hour)},
		{ID: 3, Title: "three", Status: entity.StatusPending, DueDate: due(1, 4), CreationDate: base.Add(2 * time.Hour)},
		{ID: 4, Title: "four", Status: entity.StatusInProgress, CreationDate: base.Add(3 * time.Hour)},
		{ID: 5, Title: "five", Status: entity.StatusCompleted, DueDate: due(1, 10), CreationDate: base.Add(4 * time.Hour)},
		{ID: 6, Title: "six", Status: entity.StatusPending, DueDate: due(3, 0), CreationDate: base.Add(5 * time.Hour)},
	}
}

func ids(tasks []entity.Task) []int {
	out := make([]int, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestRunDefaults(t *testing.T) {
	got, err := Run(sample(), Params{})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, ids(got))
}

func TestRunFilters(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []int
	}{
		{
			name:   "status completed",
			filter: Filter{Status: ptr(entity.StatusCompleted)},
			want:   []int{2, 5},
		},
		{
			name:   "due date ignores time of day",
			filter: Filter{DueDate: ptr(time.Date(2026, 10, 20, 23, 59, 0, 0, time.UTC))},
			want:   []int{3, 5},
		},
		{
			name:   "conjunction",
			filter: Filter{Status: ptr(entity.StatusPending), DueDate: ptr(base.AddDate(0, 0, 1))},
			want:   []int{3},
		},
		{
			name:   "due date in another zone compares in UTC",
			filter: Filter{DueDate: ptr(time.Date(2026, 10, 22, 1, 0, 0, 0, time.FixedZone("UTC+3", 3*3600)))},
			want:   []int{},
		},
		{
			name:   "no match",
			filter: Filter{DueDate: ptr(base.AddDate(1, 0, 0))},
			want:   []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Run(sample(), Params{Filter: tt.filter})
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestRunSort(t *testing.T) {
	tests := []struct {
		name  string
		by    SortBy
		order SortOrder
		want  []int
	}{
		{name: "creation asc", by: SortByCreationDate, order: SortAsc, want: []int{1, 2, 3, 4, 5, 6}},
		{name: "creation desc", by: SortByCreationDate, order: SortDesc, want: []int{6, 5, 4, 3, 2, 1}},
		// у 1 и 6 один срок, порядок вставки сохраняется; у 2 и 4 срока нет, они в конце
		{name: "due asc", by: SortByDueDate, order: SortAsc, want: []int{3, 5, 1, 6, 2, 4}},
		{name: "due desc", by: SortByDueDate, order: SortDesc, want: []int{1, 6, 5, 3, 2, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Run(sample(), Params{SortBy: tt.by, SortOrder: tt.order})
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestRunPagination(t *testing.T) {
	all := sample()

	got, err := Run(all, Params{Limit: ptr(2)})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ids(got))

	got, err = Run(all, Params{Limit: ptr(2), Offset: 4})
	require.NoError(t, err)
	assert.Equal(t, []int{5, 6}, ids(got))

	got, err = Run(all, Params{Limit: ptr(100)})
	require.NoError(t, err)
	assert.Len(t, got, len(all))

	got, err = Run(all, Params{Offset: 3})
	require.NoError(t, err)
	assert.Equal(t, []int{4, 5, 6}, ids(got))

	for _, offset := range []int{len(all), len(all) + 10} {
		got, err = Run(all, Params{Offset: offset})
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
}

func TestRunValidation(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		field  string
	}{
		{name: "limit zero", params: Params{Limit: ptr(0)}, field: "limit"},
		{name: "limit too large", params: Params{Limit: ptr(101)}, field: "limit"},
		{name: "negative offset", params: Params{Offset: -1}, field: "offset"},
		{name: "unknown sort key", params: Params{SortBy: "title"}, field: "sort_by"},
		{name: "unknown order", params: Params{SortOrder: "up"}, field: "sort_order"},
		{name: "unknown status", params: Params{Filter: Filter{Status: ptr(entity.TaskStatus("done"))}}, field: "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(sample(), tt.params)
			var verr *entity.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.ErrorIs(t, err, entity.ErrValidation)
		})
	}
}

func TestRunIsPureAndDeterministic(t *testing.T) {
	tasks := sample()
	params := Params{SortBy: SortByDueDate, SortOrder: SortDesc, Limit: ptr(3)}

	first, err := Run(tasks, params)
	require.NoError(t, err)
	second, err := Run(tasks, params)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, sample(), tasks)

	// результат не разделяет память со входом
	*first[0].DueDate = base
	assert.Equal(t, sample(), tasks)
}

func TestRunPendingByDueDateDesc(t *testing.T) {
	d1 := base.AddDate(0, 0, 1)
	d2 := base.AddDate(0, 0, 2)
	d3 := base.AddDate(0, 0, 3)
	tasks := []entity.Task{
		{ID: 1, Title: "A", Status: entity.StatusPending, DueDate: &d2, CreationDate: base},
		{ID: 2, Title: "B", Status: entity.StatusPending, DueDate: &d3, CreationDate: base.Add(time.Minute)},
		{ID: 3, Title: "C", Status: entity.StatusPending, DueDate: &d1, CreationDate: base.Add(2 * time.Minute)},
	}

	got, err := Run(tasks, Params{
		Filter:    Filter{Status: ptr(entity.StatusPending)},
		SortBy:    SortByDueDate,
		SortOrder: SortDesc,
		Limit:     ptr(1),
		Offset:    0,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].ID)
}

func TestParseDueDate(t *testing.T) {
	got, err := ParseDueDate("2026-10-20")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseDueDate("2026-10-20T23:30:00-02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 21, 1, 30, 0, 0, time.UTC), got)

	// "+" из query string без кодирования приходит пробелом
	got, err = ParseDueDate("2026-10-20T23:30:00 02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 20, 21, 30, 0, 0, time.UTC), got)

	got, err = ParseDueDate("2026-10-20T23:30:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 20, 21, 30, 0, 0, time.UTC), got)

	_, err = ParseDueDate("tomorrow")
	assert.ErrorIs(t, err, entity.ErrValidation)
}
