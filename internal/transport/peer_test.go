package transport

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeerTableAddGetRemove(t *testing.T) {
	table := NewPeerTable()
	addr := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 9001}
	peer := NewPeer(5, addr)

	table.Add(peer)
	got, ok := table.Get(5)
	require.True(t, ok)
	assert.Equal(t, peer.SessionID, got.SessionID)

	byAddr, ok := table.GetByAddr(addr)
	require.True(t, ok)
	assert.EqualValues(t, 5, byAddr.PlayerEntityID)

	table.Remove(5)
	_, ok = table.Get(5)
	assert.False(t, ok)
	assert.Equal(t, 0, table.Count())
}

func TestPeerNextSeqMonotonic(t *testing.T) {
	peer := NewPeer(1, &net.UDPAddr{})
	assert.EqualValues(t, 1, peer.NextSeq())
	assert.EqualValues(t, 2, peer.NextSeq())
	assert.EqualValues(t, 3, peer.NextSeq())
}
