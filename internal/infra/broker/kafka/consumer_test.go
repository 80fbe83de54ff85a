package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSession struct {
	ctx    context.Context
	marked []string
}

func (s *stubSession) Claims() map[string][]int32                               { return nil }
func (s *stubSession) MemberID() string                                         { return "member-1" }
func (s *stubSession) GenerationID() int32                                      { return 1 }
func (s *stubSession) MarkOffset(string, int32, int64, string)                  {}
func (s *stubSession) Commit()                                                  {}
func (s *stubSession) ResetOffset(string, int32, int64, string)                 {}
func (s *stubSession) Context() context.Context                                 { return s.ctx }
func (s *stubSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.marked = append(s.marked, string(msg.Key))
}

type stubClaim struct {
	messages chan *sarama.ConsumerMessage
}

func (c stubClaim) Topic() string                                 { return BookingEventsTopic }
func (c stubClaim) Partition() int32                              { return 0 }
func (c stubClaim) InitialOffset() int64                          { return 0 }
func (c stubClaim) HighWaterMarkOffset() int64                    { return 0 }
func (c stubClaim) Messages() <-chan *sarama.ConsumerMessage      { return c.messages }

type keyedHandler struct {
	failKey string
	seen    []string
}

func (h *keyedHandler) Handle(_ context.Context, msg *sarama.ConsumerMessage) error {
	h.seen = append(h.seen, string(msg.Key))
	if string(msg.Key) == h.failKey {
		return errors.New("notify: channel unavailable")
	}
	return nil
}

func TestConsumeClaimMarksOnlyHandledMessages(t *testing.T) {
	messages := make(chan *sarama.ConsumerMessage, 3)
	for _, key := range []string{"bkg-1", "bkg-2", "bkg-3"} {
		messages <- &sarama.ConsumerMessage{Topic: BookingEventsTopic, Key: []byte(key)}
	}
	close(messages)

	handler := &keyedHandler{failKey: "bkg-2"}
	session := &stubSession{ctx: context.Background()}
	runner := claimRunner{handler: handler}

	require.NoError(t, runner.ConsumeClaim(session, stubClaim{messages: messages}))
	assert.Equal(t, []string{"bkg-1", "bkg-2", "bkg-3"}, handler.seen)
	assert.Equal(t, []string{"bkg-1", "bkg-3"}, session.marked)
}

func TestNewConsumerRequiresHandler(t *testing.T) {
	_, err := NewConsumer([]string{"localhost:9092"}, "notifier", nil, nil, nil)
	assert.Error(t, err)
}
