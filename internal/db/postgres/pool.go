package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// newPool opens a pool sized for the API and worker pair. Pool settings given
// in the URL (pool_max_conns and friends) win over these defaults.
func newPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := parsePoolConfig(databaseURL)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return pool, nil
}

func parsePoolConfig(databaseURL string) (*pgxpool.Config, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database URL: %w", err)
	}

	set := poolParams(config.ConnString())
	if !set["pool_max_conns"] {
		config.MaxConns = 8
	}
	if !set["pool_min_conns"] {
		config.MinConns = 2
	}
	if !set["pool_max_conn_lifetime"] {
		config.MaxConnLifetime = 5 * time.Minute
	}
	if !set["pool_max_conn_idle_time"] {
		config.MaxConnIdleTime = 30 * time.Second
	}
	if !set["pool_health_check_period"] {
		config.HealthCheckPeriod = 1 * time.Minute
	}
	return config, nil
}

var poolKeys = []string{
	"pool_max_conns",
	"pool_min_conns",
	"pool_max_conn_lifetime",
	"pool_max_conn_idle_time",
	"pool_health_check_period",
}

// poolParams reports which pool settings appear in a URL or keyword/value
// connection string.
func poolParams(connString string) map[string]bool {
	set := make(map[string]bool, len(poolKeys))
	for _, k := range poolKeys {
		if strings.Contains(connString, k+"=") {
			set[k] = true
		}
	}
	return set
}
