package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-backend/internal/apperr"
	"pos-backend/internal/policy"
)

func TestMissingHidesForeignRows(t *testing.T) {
	e, ok := apperr.As(missing(policy.Scope{OwnerID: 3}, policy.EntityOrder))
	require.True(t, ok)
	assert.Equal(t, 403, e.Status())
	assert.Equal(t, "not_owner", e.Code)

	e, ok = apperr.As(missing(policy.Scope{All: true, OwnerID: 1}, policy.EntityOrder))
	require.True(t, ok)
	assert.Equal(t, 404, e.Status())
}

func TestWriteTranslatesLostRace(t *testing.T) {
	race := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "idx_employees_restaurant_email"})
	e, ok := apperr.As(write(race))
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, e.Kind)
	require.Len(t, e.Fields, 1)
	assert.Equal(t, "email", e.Fields[0].Field)

	overflow := &pgconn.PgError{Code: "22003", Message: "numeric field overflow"}
	assert.True(t, apperr.IsKind(write(overflow), apperr.KindValidation))

	assert.True(t, apperr.IsKind(write(errors.New("connection reset")), apperr.KindInternal))
	assert.NoError(t, write(nil))
}
