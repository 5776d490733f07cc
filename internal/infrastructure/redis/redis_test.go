package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anvil-esign/internal/domain/entity"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.GetPacket(ctx, "missing")
	assert.ErrorIs(t, err, entity.ErrNotFound)

	record := &entity.PacketRecord{EID: "p1", Name: "Packet", Status: entity.PacketStatusSent, CreatedAt: time.Now()}
	require.NoError(t, store.SavePacket(ctx, record))

	// stored by value
	record.Status = entity.PacketStatusCompleted
	got, err := store.GetPacket(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, entity.PacketStatusSent, got.Status)

	require.NoError(t, store.DeletePacket(ctx, "p1"))
	_, err = store.GetPacket(ctx, "p1")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}
