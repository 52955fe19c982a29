package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/pkg/config"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("otro error")))
}

func TestWrapErr_ConexionEsStorageUnavailable(t *testing.T) {
	err := wrapErr("get product", &pgconn.PgError{Code: "08006"})
	assert.True(t, errors.Is(err, domain.ErrStorageUnavailable))

	err = wrapErr("get product", context.DeadlineExceeded)
	assert.True(t, errors.Is(err, domain.ErrStorageUnavailable))

	err = wrapErr("get product", &pgconn.PgError{Code: "23514"})
	assert.False(t, errors.Is(err, domain.ErrStorageUnavailable))
	assert.Contains(t, err.Error(), "get product")
}

func TestNullableInvoice(t *testing.T) {
	assert.Nil(t, nullableInvoice(""))
	got := nullableInvoice("INV-ABC-123")
	if assert.NotNil(t, got) {
		assert.Equal(t, "INV-ABC-123", *got)
	}
}

func TestBuildPoolConfig(t *testing.T) {
	cfg := config.DBConfig{Host: "db.local", Port: 5433, User: "pos", Password: "p@ss", DBName: "ledger", SSLMode: "disable"}

	pc, err := buildPoolConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(defaultMaxConns), pc.MaxConns)
	assert.Equal(t, "db.local", pc.ConnConfig.Host)
	assert.Equal(t, uint16(5433), pc.ConnConfig.Port)
	assert.Equal(t, "p@ss", pc.ConnConfig.Password)
	assert.NotNil(t, pc.ConnConfig.Tracer)

	cfg.MaxConns = 1
	cfg.ForceIPv4 = true
	pc, err = buildPoolConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(1), pc.MaxConns)
	assert.Equal(t, int32(1), pc.MinConns)

	_, err = buildPoolConfig(config.DBConfig{DatabaseURL: "postgres://%zz"})
	assert.Error(t, err)
}

func TestSQLVerb(t *testing.T) {
	assert.Equal(t, "SELECT", sqlVerb("  select id FROM products"))
	assert.Equal(t, "QUERY", sqlVerb(""))
}
