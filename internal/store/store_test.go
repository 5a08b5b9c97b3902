package store

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"queue-system/internal/status"
)

func TestClassifyCodeLookup(t *testing.T) {
	t.Run("hit means taken", func(t *testing.T) {
		taken, err := classifyCodeLookup(nil)
		require.NoError(t, err)
		assert.True(t, taken)
	})

	t.Run("no rows means free", func(t *testing.T) {
		taken, err := classifyCodeLookup(sql.ErrNoRows)
		require.NoError(t, err)
		assert.False(t, taken)
	})

	t.Run("wrapped no rows means free", func(t *testing.T) {
		taken, err := classifyCodeLookup(fmt.Errorf("find: %w", sql.ErrNoRows))
		require.NoError(t, err)
		assert.False(t, taken)
	})

	t.Run("query failure propagates instead of reading as free", func(t *testing.T) {
		dbErr := errors.New("database is locked")
		taken, err := classifyCodeLookup(dbErr)
		require.ErrorIs(t, err, dbErr)
		assert.False(t, taken)
	})
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(status.ErrNotFound))
	assert.True(t, IsNotFound(fmt.Errorf("queue: %w", status.ErrNotFound)))
	assert.False(t, IsNotFound(errors.New("other")))
	assert.False(t, IsNotFound(nil))
}
