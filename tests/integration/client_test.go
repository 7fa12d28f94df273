package integration

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/brdata-dev/cnpj-enricher/internal/testutil"
	"github.com/brdata-dev/cnpj-enricher/pkg/cache"
	"github.com/brdata-dev/cnpj-enricher/pkg/client"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

// newTestClient wires a client against the mock registry and a real Redis
// cache, with pacing shrunk so the test does not wait out real intervals.
func newTestClient(t *testing.T, mock *testutil.MockReceitaWS, redisClient *redis.Client) *client.Client {
	t.Helper()

	cfg := client.DefaultConfig()
	cfg.BaseURL = mock.URL()
	cfg.MinInterval = 10 * time.Millisecond
	cfg.Cache = cache.NewManager(redisClient)

	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return c
}

// TestFullLookupFlow tests the complete flow: Cache Miss → Registry → Cache Store → Cache Hit.
func TestFullLookupFlow(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockReceitaWS()
	defer mock.Close()

	const id = "11222333000181"
	mock.SetCompanyResponse(id, testutil.NewCompanyResponse())

	c := newTestClient(t, mock, redisClient)
	ctx := context.Background()

	t.Log("Lookup 1: cache miss, fetches from registry")
	company1, err := c.Lookup(ctx, id)
	if err != nil {
		t.Fatalf("Lookup 1 failed: %v", err)
	}
	if company1.Name != "ACME COMERCIO LTDA" {
		t.Errorf("Lookup 1 name = %q, want %q", company1.Name, "ACME COMERCIO LTDA")
	}
	if mock.GetRequestCount() != 1 {
		t.Errorf("After lookup 1: registry requests = %d, want 1", mock.GetRequestCount())
	}

	t.Log("Lookup 2: served from cache, no registry request")
	company2, err := c.Lookup(ctx, id)
	if err != nil {
		t.Fatalf("Lookup 2 failed: %v", err)
	}
	if company2.Name != company1.Name {
		t.Errorf("Lookup 2 name = %q, want cached %q", company2.Name, company1.Name)
	}
	if len(company2.Partners) != 2 {
		t.Errorf("Lookup 2 partners = %d, want 2 (cached QSA preserved)", len(company2.Partners))
	}
	if mock.GetRequestCount() != 1 {
		t.Errorf("After lookup 2: registry requests = %d, want 1 (cache hit)", mock.GetRequestCount())
	}
}

// TestErrorStatusNotCached tests that ERROR payloads hit the registry every time.
func TestErrorStatusNotCached(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockReceitaWS()
	defer mock.Close()

	const id = "00000000000000"
	mock.SetCompanyResponse(id, testutil.NewErrorStatusResponse("CNPJ inválido"))

	c := newTestClient(t, mock, redisClient)
	ctx := context.Background()

	for i := 1; i <= 2; i++ {
		company, err := c.Lookup(ctx, id)
		if err != nil {
			t.Fatalf("Lookup %d failed: %v", i, err)
		}
		if !company.IsError() {
			t.Errorf("Lookup %d IsError() = false, want true", i)
		}
	}

	if mock.GetRequestCount() != 2 {
		t.Errorf("Registry requests = %d, want 2 (ERROR payloads never cached)", mock.GetRequestCount())
	}
}

// TestRetryThenCache tests that a lookup surviving a 429 still lands in the cache.
func TestRetryThenCache(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockReceitaWS()
	defer mock.Close()

	const id = "11222333000181"
	mock.SetSequence(id,
		testutil.NewRateLimitResponse(),
		testutil.NewCompanyResponse(),
	)

	c := newTestClient(t, mock, redisClient)
	ctx := context.Background()

	// The first attempt hits a 429 and backs off for 5s on the real clock.
	lookupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	company, err := c.Lookup(lookupCtx, id)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if company.IsError() {
		t.Fatalf("Lookup returned ERROR payload, want resolved company")
	}
	if mock.GetPathCount(id) != 2 {
		t.Errorf("Registry requests = %d, want 2 (429 then success)", mock.GetPathCount(id))
	}

	// The resolved payload must now be served from the cache.
	if _, err := c.Lookup(ctx, id); err != nil {
		t.Fatalf("Cached lookup failed: %v", err)
	}
	if mock.GetPathCount(id) != 2 {
		t.Errorf("Registry requests after cached lookup = %d, want 2", mock.GetPathCount(id))
	}
}
