package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/cadence/internal/domain"
	"github.com/alexanderramin/cadence/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSchedule(t *testing.T, repo *SQLiteScheduleRepo) *domain.ScheduleInfo {
	t.Helper()
	s := testutil.NewTestSchedule("sched")
	require.NoError(t, repo.Create(context.Background(), s))
	return s
}

func TestItemRepo_TelemetryRoundTrip(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	s := seedSchedule(t, NewSQLiteScheduleRepo(db))
	repo := NewSQLiteItemRepo(db)

	it := testutil.NewTestItem("FLAG1", testutil.WithBitLength(3), testutil.WithRate(2), testutil.WithLink("grp"))
	require.NoError(t, repo.Create(ctx, s.ID, it))

	got, err := repo.GetByName(ctx, s.ID, "FLAG1")
	require.NoError(t, err)
	assert.Equal(t, domain.ItemTelemetry, got.Kind)
	require.NotNil(t, got.Telemetry)
	assert.Equal(t, 3, got.Telemetry.BitLength)
	assert.Nil(t, got.Application)
	assert.InDelta(t, 2.0, got.RateHz, 1e-9)
	assert.Equal(t, "grp", got.LinkID)
	assert.Equal(t, 1, got.SizeBytes)
}

func TestItemRepo_ApplicationRoundTrip(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	s := seedSchedule(t, NewSQLiteScheduleRepo(db))
	repo := NewSQLiteItemRepo(db)

	it := testutil.NewTestItem("APP1", testutil.WithApplication(0x2a), testutil.WithSize(32))
	require.NoError(t, repo.Create(ctx, s.ID, it))

	got, err := repo.GetByName(ctx, s.ID, "APP1")
	require.NoError(t, err)
	assert.Equal(t, domain.ItemApplication, got.Kind)
	require.NotNil(t, got.Application)
	assert.Equal(t, uint16(0x2a), got.Application.AppID)
	assert.Nil(t, got.Telemetry)
	assert.Equal(t, 32, got.SizeBytes)
}

func TestItemRepo_NamesUniquePerSchedule(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	schedules := NewSQLiteScheduleRepo(db)
	repo := NewSQLiteItemRepo(db)

	a := testutil.NewTestSchedule("a")
	b := testutil.NewTestSchedule("b")
	require.NoError(t, schedules.Create(ctx, a))
	require.NoError(t, schedules.Create(ctx, b))

	require.NoError(t, repo.Create(ctx, a.ID, testutil.NewTestItem("X")))
	require.NoError(t, repo.Create(ctx, b.ID, testutil.NewTestItem("X")))
	assert.Error(t, repo.Create(ctx, a.ID, testutil.NewTestItem("X")))
}

func TestItemRepo_RejectsNonPositiveRate(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	s := seedSchedule(t, NewSQLiteScheduleRepo(db))

	err := NewSQLiteItemRepo(db).Create(ctx, s.ID, testutil.NewTestItem("Z", testutil.WithRate(0)))
	assert.Error(t, err)
}

func TestItemRepo_ListAndDelete(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	s := seedSchedule(t, NewSQLiteScheduleRepo(db))
	repo := NewSQLiteItemRepo(db)

	for _, name := range []string{"C", "A", "B"} {
		require.NoError(t, repo.Create(ctx, s.ID, testutil.NewTestItem(name)))
	}
	list, err := repo.ListBySchedule(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, names(list))

	require.NoError(t, repo.Delete(ctx, s.ID, "B"))
	assert.ErrorIs(t, repo.Delete(ctx, s.ID, "B"), ErrNotFound)

	list, err = repo.ListBySchedule(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, names(list))
}

func names(items []*domain.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}
