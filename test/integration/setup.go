package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	// Create connection pool
	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	poolConfig.MaxConns = 10
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	// Create schema
	createSchema(t, pool)

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// createSchema creates the database schema for testing.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS products (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			category VARCHAR(50) NOT NULL,
			price BIGINT,
			description TEXT NOT NULL DEFAULT '',
			image TEXT NOT NULL DEFAULT '',
			size VARCHAR(100) NOT NULL DEFAULT '',
			is_popular BOOLEAN NOT NULL DEFAULT FALSE,
			is_quote_required BOOLEAN NOT NULL DEFAULT FALSE,
			is_contact_only BOOLEAN NOT NULL DEFAULT FALSE,
			is_model_required BOOLEAN NOT NULL DEFAULT FALSE,
			is_universal_model BOOLEAN NOT NULL DEFAULT FALSE,
			is_hidden BOOLEAN NOT NULL DEFAULT FALSE,
			is_sold_out BOOLEAN NOT NULL DEFAULT FALSE,
			rating DOUBLE PRECISION NOT NULL DEFAULT 0,
			reviews INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS carts (
			session_id VARCHAR(128) PRIMARY KEY,
			lines JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS coupons (
			code VARCHAR(50) PRIMARY KEY,
			discount_percentage INTEGER NOT NULL CHECK (discount_percentage BETWEEN 0 AND 100),
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			max_uses INTEGER CHECK (max_uses >= 1),
			times_used INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS orders (
			id VARCHAR(64) PRIMARY KEY,
			customer_name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL DEFAULT '',
			phone VARCHAR(20) NOT NULL,
			address TEXT NOT NULL,
			items JSONB NOT NULL,
			total BIGINT NOT NULL,
			payment_mode VARCHAR(10) NOT NULL,
			status VARCHAR(20) NOT NULL,
			coupon_code VARCHAR(50),
			client_reference VARCHAR(128),
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_client_reference
			ON orders(client_reference) WHERE client_reference IS NOT NULL;
		CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC);
	`

	_, err := pool.Exec(ctx, schema)
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
}

// SeedProducts inserts test product data into the database.
func SeedProducts(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	products := []struct {
		id        string
		name      string
		category  string
		price     *int64
		quoteReq  bool
		modelReq  bool
		soldOut   bool
		hidden    bool
	}{
		{id: "P001", name: "20W Charger", category: "Chargers", price: int64Ptr(999)},
		{id: "P002", name: "USB-C Cable", category: "Cables", price: int64Ptr(299)},
		{id: "P003", name: "Tempered Glass", category: "ScreenGuards", price: int64Ptr(199), modelReq: true},
		{id: "P004", name: "Battery Replacement", category: "Accessory", quoteReq: true},
		{id: "P005", name: "Neckband Pro", category: "Neckbands", price: int64Ptr(1499), soldOut: true},
		{id: "P006", name: "Old Stock Speaker", category: "Speakers", price: int64Ptr(2499), hidden: true},
	}

	for _, p := range products {
		_, err := pool.Exec(ctx,
			`INSERT INTO products (id, name, category, price, is_quote_required, is_model_required, is_sold_out, is_hidden)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			p.id, p.name, p.category, p.price, p.quoteReq, p.modelReq, p.soldOut, p.hidden,
		)
		if err != nil {
			t.Fatalf("failed to seed product %s: %v", p.id, err)
		}
	}
}

// SeedCoupon inserts one coupon with the given usage cap.
func SeedCoupon(t *testing.T, pool *pgxpool.Pool, code string, pct int, maxUses *int) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		`INSERT INTO coupons (code, discount_percentage, is_active, max_uses, times_used)
		 VALUES ($1, $2, TRUE, $3, 0)`,
		code, pct, maxUses,
	)
	if err != nil {
		t.Fatalf("failed to seed coupon %s: %v", code, err)
	}
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"orders", "carts", "coupons", "products"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

func int64Ptr(v int64) *int64 { return &v }

func intPtr(v int) *int { return &v }
