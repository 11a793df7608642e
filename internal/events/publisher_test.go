package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codr1/courtbook/internal/models"
	"github.com/codr1/courtbook/internal/notify"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	published []published
	err       error
	closed    bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublisherNotify(t *testing.T) {
	ch := &fakeChannel{}
	publisher := &Publisher{queue: "courtbook.events", ch: ch}
	occurred := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	res := models.Reservation{ID: "res-1", Court: 1, Date: "2025-06-10", StartTime: "10:00"}

	err := publisher.Notify(context.Background(), notify.Event{
		Kind:        notify.BookingConfirmed,
		OccurredAt:  occurred,
		Reservation: &res,
	})
	require.NoError(t, err)
	require.Len(t, ch.published, 1)

	got := ch.published[0]
	assert.Equal(t, "", got.exchange)
	assert.Equal(t, "courtbook.events", got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)
	assert.Equal(t, "booking.confirmed", got.msg.Type)
	assert.NotEmpty(t, got.msg.MessageId)
	assert.True(t, got.msg.Timestamp.Equal(occurred))

	var decoded notify.Event
	require.NoError(t, json.Unmarshal(got.msg.Body, &decoded))
	assert.Equal(t, notify.BookingConfirmed, decoded.Kind)
	require.NotNil(t, decoded.Reservation)
	assert.Equal(t, "res-1", decoded.Reservation.ID)

	require.NoError(t, publisher.Close())
	assert.True(t, ch.closed)
}

func TestPublisherNotifyWrapsErrors(t *testing.T) {
	brokerErr := errors.New("channel closed")
	publisher := &Publisher{queue: "courtbook.events", ch: &fakeChannel{err: brokerErr}}

	err := publisher.Notify(context.Background(), notify.Event{Kind: notify.BookingCancelled})
	assert.ErrorIs(t, err, brokerErr)
}
