package repository_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"checkout-service/database"
	"checkout-service/models"
	"checkout-service/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration tests against a real MongoDB. Run with e.g.
//
//	MONGO_TEST_URI=mongodb://localhost:27017 go test ./repository/...
func setupTestRepo(t *testing.T) (repository.OrderRepository, func()) {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set, skipping Mongo integration tests")
	}

	ctx := context.Background()
	client, err := database.Connect(ctx, uri)
	require.NoError(t, err)

	dbName := "checkout_test_" + uuid.NewString()[:8]
	db := client.Database(dbName)
	require.NoError(t, repository.EnsureIndexes(ctx, db))

	cleanup := func() {
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	}
	return repository.NewMongoOrderRepository(db), cleanup
}

func testOrder(sessionID string) *models.Order {
	return &models.Order{
		SessionID:     sessionID,
		CustomerEmail: "buyer@example.com",
		Amount:        19.00,
		Currency:      "eur",
		Status:        models.OrderStatusPaid,
		Items:         []models.OrderItem{{Name: "Widget", Price: 9.5, Quantity: 2}},
		CreatedAt:     time.Now().UTC(),
	}
}

func TestCreateOrder_Idempotent(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()

	created, err := repo.CreateOrder(ctx, testOrder("cs_itest_1"))
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.CreateOrder(ctx, testOrder("cs_itest_1"))
	require.NoError(t, err)
	assert.False(t, created)

	order, err := repo.GetOrderBySessionID(ctx, "cs_itest_1")
	require.NoError(t, err)
	assert.Equal(t, 19.00, order.Amount)
	assert.Equal(t, "eur", order.Currency)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Widget", order.Items[0].Name)
}

func TestCreateOrder_ConcurrentWritersOneWins(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan bool, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := repo.CreateOrder(ctx, testOrder("cs_itest_race"))
			assert.NoError(t, err)
			results <- created
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for created := range results {
		if created {
			wins++
		}
	}
	assert.Equal(t, 1, wins)
}

func TestGetOrderBySessionID_NotFound(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	order, err := repo.GetOrderBySessionID(context.Background(), "cs_missing")
	assert.ErrorIs(t, err, repository.ErrOrderNotFound)
	assert.Nil(t, order)
}
