package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shecare-health/shecare-backend/internal/ai"
	"github.com/shecare-health/shecare-backend/internal/storage"
)

func TestPrescriptionReadHappyPath(t *testing.T) {
	store := storage.NewMemoryStore()
	interpreter := &stubBackend{name: "stub", reply: "Amoxicillin 500mg, three times a day. Confirm with your pharmacist."}
	reader := NewPrescriptionReader(
		&stubVision{text: "Amoxicillin 500mg TDS x5d"},
		ai.NewFailover(interpreter, nil),
		&stubMedia{payload: []byte("jpeg-bytes")},
		store,
	)

	reply, err := reader.Read(context.Background(), 1, "https://media.example/abc", "image/jpeg")
	require.NoError(t, err)

	assert.Contains(t, reply, "✅ Prescription uploaded successfully!")
	assert.Contains(t, reply, "Amoxicillin 500mg")

	saved := store.Prescriptions()
	require.Len(t, saved, 1)
	assert.Equal(t, uint(1), saved[0].UserID)
	assert.Equal(t, []byte("jpeg-bytes"), saved[0].Image)
	assert.Contains(t, saved[0].Interpretation, "Amoxicillin")
}

func TestPrescriptionReadUnreadableImageSkipsCompletion(t *testing.T) {
	store := storage.NewMemoryStore()
	interpreter := &stubBackend{name: "stub", reply: "should never run"}
	reader := NewPrescriptionReader(
		&stubVision{text: ""},
		ai.NewFailover(interpreter, nil),
		&stubMedia{payload: []byte("blurry")},
		store,
	)

	reply, err := reader.Read(context.Background(), 1, "https://media.example/abc", "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, retakePhotoMessage, reply)
	assert.Zero(t, interpreter.calls.Load(), "no completion call for an unreadable image")
	assert.Empty(t, store.Prescriptions(), "nothing persisted for an unreadable image")
}

func TestPrescriptionReadExhaustedInterpretation(t *testing.T) {
	store := storage.NewMemoryStore()
	reader := NewPrescriptionReader(
		&stubVision{text: "smudged text"},
		ai.NewFailover(&stubBackend{name: "stub", err: errors.New("insufficient_quota")}, nil),
		&stubMedia{payload: []byte("jpeg")},
		store,
	)

	reply, err := reader.Read(context.Background(), 1, "https://media.example/abc", "image/jpeg")
	require.NoError(t, err)

	assert.Contains(t, reply, unclearInterpretationMessage)

	// The record still lands, carrying the fallback interpretation.
	saved := store.Prescriptions()
	require.Len(t, saved, 1)
	assert.Equal(t, unclearInterpretationMessage, saved[0].Interpretation)
}

func TestPrescriptionReadDownloadErrorPropagates(t *testing.T) {
	reader := NewPrescriptionReader(
		&stubVision{text: "irrelevant"},
		workingFailover("irrelevant"),
		&stubMedia{err: errors.New("403 from media host")},
		storage.NewMemoryStore(),
	)

	_, err := reader.Read(context.Background(), 1, "https://media.example/abc", "image/jpeg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "download prescription media")
}

func TestPrescriptionReadTruncatesLongInterpretation(t *testing.T) {
	long := strings.Repeat("é", maxInterpretationChars+50)
	reader := NewPrescriptionReader(
		&stubVision{text: "lots of text"},
		workingFailover(long),
		&stubMedia{payload: []byte("jpeg")},
		storage.NewMemoryStore(),
	)

	reply, err := reader.Read(context.Background(), 1, "https://media.example/abc", "image/jpeg")
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(reply, "..."), "truncated interpretation ends with an ellipsis")
	assert.Contains(t, reply, strings.Repeat("é", maxInterpretationChars))
	assert.NotContains(t, reply, strings.Repeat("é", maxInterpretationChars+1))
}
