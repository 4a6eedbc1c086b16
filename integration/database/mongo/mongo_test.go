package mongo_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/serversession/integration/database/mongo"
)

func TestNewValidation(t *testing.T) {
	t.Parallel()

	_, err := mongo.New(t.Context(), mongo.Config{})
	assert.ErrorIs(t, err, mongo.ErrEmptyConnectionURL)

	_, err = mongo.New(t.Context(), mongo.Config{
		ConnectionURL:  "not-a-uri",
		RetryAttempts:  1,
		ConnectTimeout: 100 * time.Millisecond,
	})
	assert.ErrorIs(t, err, mongo.ErrFailedToConnectToMongo)
}

func TestNewWithDatabase(t *testing.T) {
	url := os.Getenv("MONGO_URL")
	if url == "" {
		t.Skip("MONGO_URL not set")
	}

	db, err := mongo.NewWithDatabase(t.Context(), mongo.Config{ConnectionURL: url, Database: "serversession_test"}, "")
	require.NoError(t, err)
	defer db.Client().Disconnect(t.Context())

	assert.Equal(t, "serversession_test", db.Name())
	assert.NoError(t, mongo.Healthcheck(db.Client())(t.Context()))
}
