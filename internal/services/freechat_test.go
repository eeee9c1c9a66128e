package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shecare-health/shecare-backend/internal/models"
	"github.com/shecare-health/shecare-backend/internal/storage"
)

func TestFreeChatRespond(t *testing.T) {
	store := storage.NewMemoryStore()
	agent := NewFreeChatAgent(workingFailover("Malaria is caused by a parasite spread by mosquitoes."), store)

	user := &models.User{Phone: "+254700000001"}
	user.ID = 1

	reply, err := agent.Respond(context.Background(), user, "what causes malaria?")
	require.NoError(t, err)
	assert.Contains(t, reply, "Malaria")
}

func TestFreeChatEmptyMessageAsksForRetype(t *testing.T) {
	agent := NewFreeChatAgent(workingFailover("unused"), storage.NewMemoryStore())

	user := &models.User{Phone: "+254700000001"}
	reply, err := agent.Respond(context.Background(), user, "   ")
	require.NoError(t, err)
	assert.Contains(t, reply, "retype")
}

func TestFreeChatExhaustedFallsBack(t *testing.T) {
	agent := NewFreeChatAgent(failingFailover(errors.New("rate limit")), storage.NewMemoryStore())

	user := &models.User{Phone: "+254700000001"}
	reply, err := agent.Respond(context.Background(), user, "which clinic do you recommend?")
	require.NoError(t, err)
	assert.Equal(t, freeChatFallback, reply)
}

func TestFreeChatHardErrorPropagates(t *testing.T) {
	agent := NewFreeChatAgent(failingFailover(errors.New("dial tcp: i/o timeout")), storage.NewMemoryStore())

	user := &models.User{Phone: "+254700000001"}
	_, err := agent.Respond(context.Background(), user, "hello?")
	require.Error(t, err)
}
