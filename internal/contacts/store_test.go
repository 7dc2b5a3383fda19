package contacts

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/dbtest"
	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/domain"
)

func TestStoreInsertAndList(t *testing.T) {
	store := NewStore(dbtest.DB(t))
	ctx := dbtest.Context(t)

	m := &domain.ContactSubmission{
		Name:    "Kees Jansen",
		Email:   "kees@example.nl",
		Subject: "Vraag over schuifpui",
		Message: "Kunnen jullie langskomen?",
	}
	require.NoError(t, store.Insert(ctx, m))
	_, err := uuid.Parse(m.ID)
	require.NoError(t, err, "insert returns the generated id")
	assert.Equal(t, domain.ContactStatusNew, m.Status)
	assert.False(t, m.CreatedAt.IsZero())

	list, err := store.List(ctx, 0)
	require.NoError(t, err)
	var stored *domain.ContactSubmission
	for i := range list {
		if list[i].ID == m.ID {
			stored = &list[i]
		}
	}
	require.NotNil(t, stored)
	assert.Equal(t, "Vraag over schuifpui", stored.Subject)
	assert.Equal(t, "", stored.Phone)

	require.NoError(t, store.UpdateStatus(ctx, m.ID, domain.ContactStatusRead))
	got, err := store.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContactStatusRead, got.Status)

	require.NoError(t, store.Delete(ctx, m.ID))
	_, err = store.Get(ctx, m.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStoreMissingContact(t *testing.T) {
	store := NewStore(dbtest.DB(t))
	ctx := dbtest.Context(t)
	id := uuid.NewString()

	assert.ErrorIs(t, store.UpdateStatus(ctx, id, domain.ContactStatusRead), domain.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, id), domain.ErrNotFound)
}
