package filexfer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/opd-ai/filexfer/file"
	"github.com/opd-ai/filexfer/simnet"
	"github.com/opd-ai/filexfer/stanza"
	"github.com/stretchr/testify/require"
)

const (
	aliceJID stanza.JID = "alice@example.com/desk"
	bobJID   stanza.JID = "bob@example.com/phone"
	carolJID stanza.JID = "carol@example.com/raw"
)

// testPeers wires two FileTransfers over a simulated network.
type testPeers struct {
	net   *simnet.Network
	alice *FileTransfer
	bob   *FileTransfer
}

func newTestPeers(t *testing.T, aliceOpts, bobOpts *Options) *testPeers {
	t.Helper()

	n := simnet.New()
	alice, err := New(n.Join(aliceJID), aliceOpts)
	require.NoError(t, err)
	bob, err := New(n.Join(bobJID), bobOpts)
	require.NoError(t, err)

	return &testPeers{net: n, alice: alice, bob: bob}
}

// sequentialIDs issues predictable IDs.
func sequentialIDs(prefix string) stanza.IDGenerator {
	var mu sync.Mutex
	n := 0
	return stanza.IDGeneratorFunc(func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	})
}

// rawPeer is a bare Mux that records what it receives and answers with a
// scripted function. It stands in for peers that misbehave.
type rawPeer struct {
	mux *stanza.Mux

	mu       sync.Mutex
	received []*stanza.Message
}

func newRawPeer(n *simnet.Network, jid stanza.JID, respond func(mux *stanza.Mux, msg *stanza.Message)) *rawPeer {
	p := &rawPeer{mux: n.Join(jid)}
	p.mux.AddHandler(0, "raw", func(msg *stanza.Message) bool {
		p.mu.Lock()
		p.received = append(p.received, msg)
		p.mu.Unlock()
		if respond != nil {
			respond(p.mux, msg)
		}
		return true
	})
	return p
}

func (p *rawPeer) Received() []*stanza.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*stanza.Message(nil), p.received...)
}

// acceptWith answers an offer with the given method and range.
func acceptWith(method string, rng *stanza.Range) func(*stanza.Mux, *stanza.Message) {
	return func(mux *stanza.Mux, msg *stanza.Message) {
		reply := msg.Answer(stanza.TypeResult)
		reply.SI = &stanza.SI{Feature: &stanza.FeatureForm{Type: stanza.FormTypeSubmit, StreamMethods: []string{method}}}
		if rng != nil {
			reply.SI.File = &stanza.File{Range: rng}
		}
		_ = mux.Send(reply)
	}
}

// errSource fails to produce metadata.
type errSource struct{}

var errDiskGone = errors.New("disk gone")

func (errSource) Read([]byte) (int, error) { return 0, errDiskGone }
func (errSource) Metadata() (file.Metadata, error) { return file.Metadata{}, errDiskGone }

func testData(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}

func bytesReader(data []byte) io.Reader {
	return bytes.NewReader(data)
}
