package filexfer

import (
	"context"
	"testing"
	"time"

	"github.com/opd-ai/filexfer/file"
	"github.com/opd-ai/filexfer/simnet"
	"github.com/opd-ai/filexfer/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOptionsDefaults(t *testing.T) {
	opts := NewOptions()

	assert.True(t, opts.AllowBytestreams)
	assert.True(t, opts.AllowIBB)
	assert.Equal(t, 30*time.Second, opts.RequestTimeout)
	assert.Equal(t, 150, opts.StanzaPriority)
	assert.Zero(t, opts.OfferExpiry)
	assert.NotNil(t, opts.IDs)
	assert.NotNil(t, opts.Factory)
	assert.NoError(t, opts.Validate())
}

func TestEnabledMethods(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
		want   []transport.Method
	}{
		{
			name:   "defaults",
			modify: func(*Options) {},
			want:   []transport.Method{transport.MethodBytestreams, transport.MethodIBB},
		},
		{
			name:   "ibb only",
			modify: func(o *Options) { o.AllowBytestreams = false },
			want:   []transport.Method{transport.MethodIBB},
		},
		{
			name:   "none",
			modify: func(o *Options) { o.AllowBytestreams, o.AllowIBB = false, false },
			want:   []transport.Method{},
		},
		{
			name: "extras after built-ins without duplicates",
			modify: func(o *Options) {
				o.ExtraMethods = []transport.Method{"urn:x:webrtc", transport.MethodIBB, "", "urn:x:webrtc"}
			},
			want: []transport.Method{transport.MethodBytestreams, transport.MethodIBB, "urn:x:webrtc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := NewOptions()
			tt.modify(opts)
			assert.Equal(t, tt.want, opts.EnabledMethods())
		})
	}
}

func TestOptionsValidate(t *testing.T) {
	opts := NewOptions()
	opts.RequestTimeout = -time.Second
	assert.ErrorIs(t, opts.Validate(), ErrInvalidConfig)

	opts = NewOptions()
	opts.OfferExpiry = -time.Second
	assert.ErrorIs(t, opts.Validate(), ErrInvalidConfig)

	_, err := New(simnet.New().Join(aliceJID), opts)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewFillsZeroOptions(t *testing.T) {
	ft, err := New(simnet.New().Join(aliceJID), &Options{AllowIBB: true})
	require.NoError(t, err)

	effective := ft.Options()
	assert.Equal(t, DefaultRequestTimeout, effective.RequestTimeout)
	assert.NotNil(t, effective.IDs)
	assert.NotNil(t, effective.Factory)
	assert.Equal(t, []transport.Method{transport.MethodIBB}, effective.EnabledMethods())
}

func TestOfferUsesConfiguredIDs(t *testing.T) {
	aliceOpts := NewOptions()
	aliceOpts.IDs = sequentialIDs("alice")
	p := newTestPeers(t, aliceOpts, nil)

	var sid string
	p.bob.AddIncomingCallback(0, "accept", func(in *IncomingOffer) bool {
		sid = in.Offer.SessionID
		_, err := p.bob.Accept(in, nil)
		require.NoError(t, err)
		return true
	})

	src, err := file.NewBytesSource("r.bin", testData(10))
	require.NoError(t, err)

	outcome, err := p.alice.Offer(context.Background(), bobJID, src, "")
	require.NoError(t, err)
	assert.Equal(t, "alice-1", sid)
	assert.Equal(t, "alice-1", outcome.SessionID)

	records := p.net.Records()
	require.NotEmpty(t, records)
	assert.Equal(t, "alice-2", records[0].ID)
}

func TestOutcomeKindString(t *testing.T) {
	assert.Equal(t, "accepted", OutcomeAccepted.String())
	assert.Equal(t, "declined", OutcomeDeclined.String())
	assert.Equal(t, "failed", OutcomeFailed.String())
	assert.Equal(t, "OutcomeKind(9)", OutcomeKind(9).String())
}
