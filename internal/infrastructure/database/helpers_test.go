package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateAvgDuration(t *testing.T) {
	assert.Equal(t, time.Duration(0), calculateAvgDuration(time.Second, 0))
	assert.Equal(t, 250*time.Millisecond, calculateAvgDuration(time.Second, 4))
}

func TestStats_NoPool(t *testing.T) {
	_, err := NewPostgresDB(&DBConfig{}).Stats()
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	db := NewPostgresDB(&DBConfig{
		Host:     "db",
		Port:     5432,
		Username: "eurd",
		Password: "p@ss",
		DBName:   "eurd_payments",
		SSLMode:  "disable",
	})
	assert.Equal(t, "postgresql://eurd:p%40ss@db:5432/eurd_payments?sslmode=disable", db.dsn())
}
