package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-enrollment-portal/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "portal", Password: "secret", Name: "audit"})
	assert.Equal(t, "host=db port=5432 user=portal password=secret dbname=audit sslmode=disable", dsn)

	dsn = DSN(config.DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Name: "n", SSLMode: "require"})
	assert.Contains(t, dsn, "sslmode=require")
}

func TestConfigureAppliesPoolLimits(t *testing.T) {
	raw, _, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(raw, "sqlmock")
	defer db.Close()

	Configure(db, config.DatabaseConfig{MaxOpenConns: 4, MaxIdleConns: 2})
	assert.Equal(t, 4, db.Stats().MaxOpenConnections)
}
