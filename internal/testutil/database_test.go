package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/gastos/internal/storage"
)

func TestSetupTestDB(t *testing.T) {
	store := SetupTestDB(t)

	version, err := store.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, storage.ExpectedSchemaVersion, version)

	inserted, err := store.SaveExpenses(context.Background(), "fixture", SampleExpenses())
	require.NoError(t, err)
	assert.Equal(t, len(SampleExpenses()), inserted)
}
