package database_test

import (
	"context"
	"sync"
	"testing"

	"github.com/localnerve/mapsdb/internal/database"
	"github.com/localnerve/mapsdb/internal/services"
	"github.com/localnerve/mapsdb/internal/testutil"
	"github.com/localnerve/mapsdb/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
)

// TestWithDatabaseServers runs the ordering and uniqueness rules against real servers
func TestWithDatabaseServers(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	for _, dbType := range []string{"postgres", "mariadb"} {
		t.Run(dbType, func(t *testing.T) {
			ctx := context.Background()
			container, err := testutil.StartDatabase(ctx, dbType)
			require.NoError(t, err)
			t.Cleanup(func() {
				if err := container.Terminate(ctx); err != nil {
					t.Logf("Failed to terminate %s container: %v", dbType, err)
				}
			})

			db, err := database.Connect(container.Config)
			require.NoError(t, err, "connect")
			t.Cleanup(func() { _ = database.Close(db) })
			require.NoError(t, database.AutoMigrate(db), "migrate")

			user := testutil.CreateUser(t, db, "planner", false)
			acc := services.Access{Policy: services.AllProjects{}, UserID: user.ID}
			project := testutil.CreateProject(t, db, acc, "INT-1")

			var ids []string
			for _, name := range []string{"A", "B", "C"} {
				area, err := services.CreateMarketArea(db, acc, project.ID, services.MarketAreaInput{
					Name:      testutil.Ptr(name),
					MAType:    testutil.Ptr("county"),
					Locations: testutil.JSON(`[{"id":"08031"}]`),
				})
				require.NoError(t, err)
				ids = append(ids, area.ID)
			}

			reordered, err := services.ReorderMarketAreas(db, acc, project.ID, []string{ids[2], ids[0], ids[1]})
			require.NoError(t, err)
			require.Len(t, reordered, 3)
			assert.Equal(t, []string{"C", "A", "B"}, []string{reordered[0].Name, reordered[1].Name, reordered[2].Name})

			_, err = services.ReorderMarketAreas(db, acc, project.ID, []string{ids[0], ids[0], ids[1]})
			assert.True(t, types.IsKind(err, types.KindValidation), "got %v", err)

			listed, err := services.ListMarketAreas(db, acc, project.ID)
			require.NoError(t, err)
			assert.Equal(t, "C", listed[0].Name, "failed reorder must not change orders")

			// racing creates of one name: exactly one wins
			const racers = 4
			var wg sync.WaitGroup
			errs := make([]error, racers)
			for i := 0; i < racers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, errs[i] = services.CreateMarketArea(db, acc, project.ID, services.MarketAreaInput{
						Name:      testutil.Ptr("Contested"),
						MAType:    testutil.Ptr("zip"),
						Locations: testutil.JSON(`[{"id":"80202"}]`),
					})
				}(i)
			}
			wg.Wait()

			succeeded := 0
			for _, err := range errs {
				if err == nil {
					succeeded++
					continue
				}
				assert.True(t, types.IsKind(err, types.KindConflict), "loser got %v", err)
			}
			assert.Equal(t, 1, succeeded)
		})
	}
}
