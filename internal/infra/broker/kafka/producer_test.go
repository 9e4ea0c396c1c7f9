package kafka

import (
	"context"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProducerPublish(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	mock.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, err := msg.Key.Encode()
		require.NoError(t, err)
		assert.Equal(t, "venue-1", string(key))
		assert.Equal(t, "calendar.events.v1", msg.Topic)
		require.Len(t, msg.Headers, 1)
		assert.Equal(t, "content-type", string(msg.Headers[0].Key))
		return nil
	})

	p := newProducer(mock)
	err := p.Publish(context.Background(), "calendar.events.v1", "venue-1", []byte(`{}`), map[string]string{"content-type": "application/cloudevents+json"})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestRecordHeadersAreSorted(t *testing.T) {
	hs := recordHeaders(map[string]string{"event-name": "BookingRecorded", "aggregate-type": "calendar", "content-type": "application/json"})
	require.Len(t, hs, 3)
	assert.Equal(t, "aggregate-type", string(hs[0].Key))
	assert.Equal(t, "content-type", string(hs[1].Key))
	assert.Equal(t, "event-name", string(hs[2].Key))
	assert.Equal(t, "BookingRecorded", string(hs[2].Value))
}

func TestBaseConfigKeepsCallerVersion(t *testing.T) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V3_0_0_0
	got := baseConfig(cfg)
	assert.Equal(t, sarama.V3_0_0_0, got.Version)
	assert.Equal(t, "venuecal", got.ClientID)

	assert.Equal(t, sarama.V2_5_0_0, baseConfig(nil).Version)
}
