package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-idp-batch/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "idp",
		Password: "secret",
		Name:     "repository",
		SSLMode:  "require",
	})
	assert.Equal(t, "host=db.internal port=5433 user=idp password=secret dbname=repository sslmode=require", dsn)
}
