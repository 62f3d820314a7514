package storage_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/vms/internal/models"
	"github.com/your-org/vms/internal/storage"
)

func TestMemoryIdentityStoreCodeLookup(t *testing.T) {
	store := storage.NewMemoryIdentityStore()
	visitor := &models.Visitor{ID: uuid.New(), Code: "V-100", Name: "Ana", Status: models.VisitorStatusActive}
	require.NoError(t, store.PutVisitor(context.Background(), visitor))

	// Codes are matched case-insensitively with surrounding space ignored.
	got, err := store.VisitorByCode(context.Background(), " v-100 ")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, visitor.ID, got.ID)

	missing, err := store.VisitorByCode(context.Background(), "V-200")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryIdentityStoreReturnsCopies(t *testing.T) {
	store := storage.NewMemoryIdentityStore()
	visitor := &models.Visitor{ID: uuid.New(), Code: "V-100", Name: "Ana", Status: models.VisitorStatusActive}
	require.NoError(t, store.PutVisitor(context.Background(), visitor))

	got, err := store.VisitorByID(context.Background(), visitor.ID)
	require.NoError(t, err)
	got.Status = models.VisitorStatusBlacklisted

	fresh, err := store.VisitorByID(context.Background(), visitor.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VisitorStatusActive, fresh.Status)
}

func TestMemoryIdentityStoreDetainees(t *testing.T) {
	store := storage.NewMemoryIdentityStore()
	detainee := &models.Detainee{ID: uuid.New(), Code: "D-007", Name: "Ben", Status: models.DetaineeStatusDetained}
	require.NoError(t, store.PutDetainee(context.Background(), detainee))

	got, err := store.DetaineeByID(context.Background(), detainee.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, detainee.Code, got.Code)

	byCode, err := store.DetaineeByCode(context.Background(), "d-007")
	require.NoError(t, err)
	require.NotNil(t, byCode)
	assert.Equal(t, detainee.ID, byCode.ID)

	missing, err := store.DetaineeByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}
