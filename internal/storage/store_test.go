package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ge-price-monitor/internal/config"
)

func TestNewPoolRequiresDSN(t *testing.T) {
	_, err := NewPool(context.Background(), config.DatabaseConfig{})
	assert.True(t, errors.Is(err, ErrNotConfigured))
}

func TestNewPoolRejectsBadDSN(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{DSN: "postgres://%zz"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse database dsn")
}

func TestNilStoreIsNotConfigured(t *testing.T) {
	var s *Store
	s.Close()
	_, err := s.CountSamples(context.Background(), 2)
	assert.True(t, errors.Is(err, ErrNotConfigured))
}
