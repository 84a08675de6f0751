package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/alexanderramin/cadence/internal/contract"
	"github.com/alexanderramin/cadence/internal/domain"
	"github.com/alexanderramin/cadence/internal/repository"
	"github.com/alexanderramin/cadence/internal/testutil"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	db        *sql.DB
	schedules ScheduleService
	items     ItemService
}

func newTestEnv(t *testing.T, observers ...UseCaseObserver) *testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	return &testEnv{
		db:        database,
		schedules: NewScheduleService(repository.NewSQLiteScheduleRepo(database), uow, nil, observers...),
		items:     NewItemService(uow, observers...),
	}
}

// seed creates a schedule with cycle and defines items in order.
func (e *testEnv) seed(t *testing.T, name string, cycle domain.Cycle, items ...*domain.Item) {
	t.Helper()
	ctx := context.Background()
	_, err := e.schedules.Create(ctx, contract.CreateScheduleRequest{Name: name, Cycle: cycle})
	require.NoError(t, err)
	for _, it := range items {
		require.NoError(t, e.items.Define(ctx, name, it))
	}
}

func ptrInt(i int) *int { return &i }

func itemNames(views []contract.ItemView) []string {
	out := make([]string, len(views))
	for i, v := range views {
		out[i] = v.Name
	}
	return out
}

