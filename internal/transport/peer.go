// Package transport implements the network adapter: a UDP datagram
// socket for replication traffic, plus a gorilla/websocket join
// handshake that hands the client its entity id and UDP endpoint.
package transport

import (
	"net"
	"sync"

	"github.com/google/uuid"
)

// Peer is one connected player's UDP session: a remote address, a
// monotonic outbound sequence counter, and the entity id the world
// assigned them.
type Peer struct {
	SessionID      string
	PlayerEntityID uint32
	Addr           *net.UDPAddr

	mu      sync.Mutex
	outSeq  uint32
	closed  bool
}

func NewPeer(playerEntityID uint32, addr *net.UDPAddr) *Peer {
	return &Peer{
		SessionID:      uuid.New().String(),
		PlayerEntityID: playerEntityID,
		Addr:           addr,
	}
}

// NextSeq returns the next outbound sequence number for this peer's
// server→client direction — one counter per peer, not global.
func (p *Peer) NextSeq() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.outSeq++
	return p.outSeq
}

func (p *Peer) MarkClosed() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

func (p *Peer) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// PeerTable manages all active UDP peers, keyed by player entity id.
type PeerTable struct {
	mu    sync.RWMutex
	byID  map[uint32]*Peer
	byAddr map[string]*Peer
}

func NewPeerTable() *PeerTable {
	return &PeerTable{
		byID:   make(map[uint32]*Peer),
		byAddr: make(map[string]*Peer),
	}
}

func (t *PeerTable) Add(p *Peer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byID[p.PlayerEntityID] = p
	t.byAddr[p.Addr.String()] = p
}

// AddPending registers a peer before its UDP address is known — the
// join handshake runs over WebSocket, so the server learns a client's
// UDP source address only from its first datagram: the client dials
// UDP, sends a 4-byte bind datagram carrying its own entity id, and
// BindAddr below completes registration once that arrives.
func (t *PeerTable) AddPending(entityID uint32) *Peer {
	p := NewPeer(entityID, nil)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byID[entityID] = p
	return p
}

// BindAddr completes a pending registration once the entity id's
// bind datagram arrives from addr. Returns false if entityID has no
// pending registration or is already bound.
func (t *PeerTable) BindAddr(entityID uint32, addr *net.UDPAddr) (*Peer, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.byID[entityID]
	if !ok || p.Addr != nil {
		return nil, false
	}
	p.Addr = addr
	t.byAddr[addr.String()] = p
	return p, true
}

func (t *PeerTable) Remove(id uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p, ok := t.byID[id]; ok {
		delete(t.byAddr, p.Addr.String())
	}
	delete(t.byID, id)
}

func (t *PeerTable) Get(id uint32) (*Peer, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.byID[id]
	return p, ok
}

func (t *PeerTable) GetByAddr(addr *net.UDPAddr) (*Peer, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.byAddr[addr.String()]
	return p, ok
}

func (t *PeerTable) Snapshot() []*Peer {
	t.mu.RLock()
	defer t.mu.RUnlock()
	list := make([]*Peer, 0, len(t.byID))
	for _, p := range t.byID {
		list = append(list, p)
	}
	return list
}

func (t *PeerTable) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byID)
}
