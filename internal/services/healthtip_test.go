package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shecare-health/shecare-backend/internal/storage"
)

func TestTipGenerateTextUsesBackend(t *testing.T) {
	gen := NewTipGenerator(workingFailover("Drink a glass of water with every meal."), storage.NewMemoryStore())

	tip := gen.GenerateText(context.Background())
	assert.Equal(t, "Drink a glass of water with every meal.", tip)
}

func TestTipGenerateTextNeverEmpty(t *testing.T) {
	// Backend failure lands on a canned tip, never an error or empty string.
	gen := NewTipGenerator(failingFailover(errors.New("connection refused")), storage.NewMemoryStore())

	for i := 0; i < 10; i++ {
		assert.NotEmpty(t, gen.GenerateText(context.Background()))
	}
}

func TestTipGenerateRecordsUnsent(t *testing.T) {
	store := storage.NewMemoryStore()
	gen := NewTipGenerator(workingFailover("Sleep at least 7 hours."), store)

	tip := gen.Generate(context.Background(), 42)
	assert.Equal(t, "Sleep at least 7 hours.", tip)

	saved := store.HealthTips()
	require.Len(t, saved, 1)
	assert.Equal(t, uint(42), saved[0].UserID)
	assert.False(t, saved[0].Sent)
	assert.Nil(t, saved[0].SentAt)
}

func TestTipRecordSentStampsTime(t *testing.T) {
	store := storage.NewMemoryStore()
	gen := NewTipGenerator(workingFailover("irrelevant"), store)

	gen.Record(7, "Walk after lunch.", true)

	saved := store.HealthTips()
	require.Len(t, saved, 1)
	assert.True(t, saved[0].Sent)
	require.NotNil(t, saved[0].SentAt)
}
