package db

import (
	"testing"

	"app/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestDSNBuiltFromConfig(t *testing.T) {
	cfg := config.Config{
		PostgresHost:     "db.internal",
		PostgresPort:     5433,
		PostgresUser:     "shop",
		PostgresPassword: "pw",
		PostgresDB:       "storefront",
		PostgresSSLMode:  "require",
	}

	assert.Equal(t,
		"host=db.internal port=5433 user=shop password=pw dbname=storefront sslmode=require",
		dsn(cfg),
	)
}
