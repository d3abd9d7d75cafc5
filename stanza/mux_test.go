package stanza

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMuxSendAndAwaitResult(t *testing.T) {
	var mux *Mux
	out := &recordingSender{}
	out.reply = func(msg *Message) {
		// Reply arrives before Send returns.
		mux.Receive(msg.Answer(TypeResult))
	}
	mux = NewMux("alice@example.com", out)

	req := &Message{Type: TypeSet, ID: "q1", To: "bob@example.com"}
	reply, err := mux.SendAndAwait(context.Background(), req, time.Second)
	require.NoError(t, err)
	assert.Equal(t, TypeResult, reply.Type)
	assert.Equal(t, "q1", reply.ID)
	assert.Equal(t, 0, mux.Tracker().Pending())

	sent := out.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, JID("alice@example.com"), sent[0].From)
}

func TestMuxSendAndAwaitErrorReply(t *testing.T) {
	var mux *Mux
	out := &recordingSender{}
	out.reply = func(msg *Message) {
		mux.Receive(msg.ErrorAnswer(ErrorTypeCancel, ConditionForbidden, "Offer declined"))
	}
	mux = NewMux("alice@example.com", out)

	_, err := mux.SendAndAwait(context.Background(), &Message{Type: TypeSet, ID: "q2", To: "bob@example.com"}, time.Second)
	require.Error(t, err)

	re, ok := AsReplyError(err)
	require.True(t, ok)
	assert.Equal(t, ConditionForbidden, re.Condition())
	assert.Equal(t, 403, re.Reply.Error.Code())
}

func TestMuxSendAndAwaitTimeout(t *testing.T) {
	tp := newManualTimeProvider()
	out := &recordingSender{}
	mux := NewMux("alice@example.com", out)
	mux.SetTimeProvider(tp)

	done := make(chan error, 1)
	go func() {
		_, err := mux.SendAndAwait(context.Background(), &Message{Type: TypeSet, ID: "q3", To: "bob@example.com"}, time.Minute)
		done <- err
	}()

	<-tp.started
	tp.Fire()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrTimeout)
	case <-time.After(2 * time.Second):
		t.Fatal("SendAndAwait did not return after timeout")
	}
	assert.Equal(t, 0, mux.Tracker().Pending())

	// The late reply is dropped without effect.
	mux.Receive(&Message{Type: TypeResult, ID: "q3", From: "bob@example.com"})
	assert.Equal(t, 0, mux.Tracker().Pending())
}

func TestMuxSendAndAwaitContextCancel(t *testing.T) {
	tp := newManualTimeProvider()
	mux := NewMux("alice@example.com", &recordingSender{})
	mux.SetTimeProvider(tp)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := mux.SendAndAwait(ctx, &Message{Type: TypeSet, ID: "q4"}, time.Minute)
		done <- err
	}()

	<-tp.started
	cancel()

	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, mux.Tracker().Pending())
}

func TestMuxSendAndAwaitSendFailure(t *testing.T) {
	sendErr := errors.New("link down")
	mux := NewMux("alice@example.com", &recordingSender{err: sendErr})

	_, err := mux.SendAndAwait(context.Background(), &Message{Type: TypeSet, ID: "q5"}, time.Second)
	assert.ErrorIs(t, err, sendErr)
	assert.Equal(t, 0, mux.Tracker().Pending())
}

func TestMuxSendAndAwaitMissingID(t *testing.T) {
	mux := NewMux("alice@example.com", &recordingSender{})
	_, err := mux.SendAndAwait(context.Background(), &Message{Type: TypeSet}, time.Second)
	assert.ErrorIs(t, err, ErrMissingID)
}

func TestMuxReceiveDispatchesRequests(t *testing.T) {
	out := &recordingSender{}
	mux := NewMux("bob@example.com", out)

	var seen []string
	mux.AddHandler(200, "late", func(msg *Message) bool {
		seen = append(seen, "late")
		return true
	})
	h := mux.AddHandler(100, "early", func(msg *Message) bool {
		seen = append(seen, "early")
		return msg.SI != nil
	})

	mux.Receive(&Message{Type: TypeSet, ID: "r1", From: "alice@example.com", SI: &SI{ID: "s"}})
	assert.Equal(t, []string{"early"}, seen)

	seen = nil
	mux.Receive(&Message{Type: TypeGet, ID: "r2", From: "alice@example.com"})
	assert.Equal(t, []string{"early", "late"}, seen)

	assert.True(t, mux.RemoveHandler(h))
	seen = nil
	mux.Receive(&Message{Type: TypeSet, ID: "r3", From: "alice@example.com", SI: &SI{ID: "s"}})
	assert.Equal(t, []string{"late"}, seen)
	assert.Empty(t, out.Sent())
}

func TestMuxReceiveUnclaimedRequest(t *testing.T) {
	out := &recordingSender{}
	mux := NewMux("bob@example.com", out)

	mux.Receive(&Message{Type: TypeSet, ID: "r4", From: "alice@example.com", To: "bob@example.com"})

	sent := out.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, TypeError, sent[0].Type)
	assert.Equal(t, "r4", sent[0].ID)
	assert.Equal(t, JID("alice@example.com"), sent[0].To)
	require.NotNil(t, sent[0].Error)
	assert.Equal(t, ConditionFeatureNotImplemented, sent[0].Error.Condition)
	assert.Equal(t, ErrorTypeCancel, sent[0].Error.Type)
}

func TestMuxReceiveUnsolicitedReplyDropped(t *testing.T) {
	out := &recordingSender{}
	mux := NewMux("bob@example.com", out)
	called := false
	mux.AddHandler(0, "any", func(msg *Message) bool {
		called = true
		return true
	})

	mux.Receive(&Message{Type: TypeResult, ID: "nobody", From: "alice@example.com"})
	mux.Receive(nil)

	assert.False(t, called)
	assert.Empty(t, out.Sent())
}
