package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/pkg/messaging"
)

func newTestBroker(t *testing.T) messaging.Broker {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisBroker(client, nil)
}

func TestRedisBroker_PublishSubscribe(t *testing.T) {
	broker := newTestBroker(t)
	defer broker.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msgs, err := broker.Subscribe(ctx, "hospital.appointments")
	require.NoError(t, err)

	err = broker.Publish(ctx, "hospital.appointments", messaging.Message{
		Type:    "appointment.created",
		Payload: map[string]string{"appointmentId": "APT0001"},
	})
	require.NoError(t, err)

	select {
	case raw := <-msgs:
		var got map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, "appointment.created", got["type"])
	case <-ctx.Done():
		t.Fatal("no message received")
	}
}

func TestRedisBroker_PublishFailsWhenServerDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	broker := NewRedisBroker(client, nil)
	defer broker.Close()
	mr.Close()

	err = broker.Publish(context.Background(), "hospital.appointments", map[string]string{"x": "y"})
	assert.Error(t, err)
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient(Config{URL: "://bad"})
	assert.Error(t, err)
}
