package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"

	"adhub/pkg/client"
)

type TestEnv struct {
	MongoURI     string
	DatabaseName string
	ServerURL    string
}

// NewTestEnv reads the target deployment. Tests are skipped unless
// TEST_SERVER_URL or TEST_SERVER_PORT is set.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	serverURL := os.Getenv("TEST_SERVER_URL")
	if port := os.Getenv("TEST_SERVER_PORT"); serverURL == "" && port != "" {
		serverURL = fmt.Sprintf("http://localhost:%s", port)
	}
	if serverURL == "" {
		t.Skip("TEST_SERVER_URL not set, skipping integration tests")
	}

	return &TestEnv{
		MongoURI:     getEnv("TEST_MONGO_URI", DefaultMongoURI),
		DatabaseName: getEnv("TEST_DB_NAME", DefaultDatabaseName),
		ServerURL:    serverURL,
	}
}

func (e *TestEnv) Setup(t *testing.T) (*MongoHelper, *client.AdHubClient) {
	t.Helper()

	mongo := NewMongoHelper(t, e.MongoURI, e.DatabaseName)
	mongo.CleanDatabase(t)

	api := client.NewAdHubClient(e.ServerURL)
	if err := api.HTTP().WaitForHealthy(context.Background(), DefaultHealthCheckTimeout); err != nil {
		t.Fatalf("server not healthy: %v", err)
	}

	return mongo, api
}

func (e *TestEnv) Cleanup(t *testing.T, mongo *MongoHelper) {
	t.Helper()

	if mongo != nil {
		mongo.CleanDatabase(t)
		mongo.Close(t)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

const (
	DefaultHealthCheckTimeout = 3 * ConnectionTimeout
)
