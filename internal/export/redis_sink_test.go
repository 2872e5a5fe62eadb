package export

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"bet-ledger-lab/internal/reporting"
)

// setupRedis starts a Redis container and returns a connected client.
func setupRedis(t *testing.T) *redis.Client {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", host, port.Port()),
	})
	require.NoError(t, client.Ping(ctx).Err())

	t.Cleanup(func() {
		client.Close()
		_ = container.Terminate(ctx)
	})
	return client
}

func TestRedisSink_WriteAndRead(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()

	fixed := time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)
	sink := NewRedisSink(client, 0).WithPrefix("test:")
	sink.now = func() time.Time { return fixed }

	require.NoError(t, sink.WriteTables(ctx, sampleTables()))

	slugs, err := sink.ListTables(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"by_day", "kpis"}, slugs)

	byDay, err := sink.ReadTable(ctx, reporting.TableByDay)
	require.NoError(t, err)
	assert.Equal(t, reporting.TableByDay, byDay.Name)
	assert.Equal(t, []string{"Date", "Daily P/L", "Cumulative P/L"}, byDay.Columns)
	require.Len(t, byDay.Rows, 2)
	assert.Equal(t, "2025-03-01", byDay.Rows[0][0])
	assert.Equal(t, 12.5, byDay.Rows[0][1])
	assert.True(t, byDay.UpdatedAt.Equal(fixed))
}

func TestRedisSink_ReplacesPreviousExport(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()
	sink := NewRedisSink(client, time.Hour)

	require.NoError(t, sink.WriteTables(ctx, sampleTables()))
	require.NoError(t, sink.WriteTables(ctx, sampleTables()[1:]))

	slugs, err := sink.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"kpis"}, slugs)

	_, err = sink.ReadTable(ctx, reporting.TableByDay)
	assert.ErrorIs(t, err, ErrTableNotFound)

	ttl, err := client.TTL(ctx, "bdash:table:kpis").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
