package transport

import (
	"encoding/binary"
	"net"

	"github.com/sirupsen/logrus"
)

const maxDatagramSize = 4096

// Listener is the server-side UDP socket: one unbuffered datagram
// stream demultiplexed to peers by source address.
type Listener struct {
	conn  *net.UDPConn
	peers *PeerTable
	log   *logrus.Entry
}

// Handler is invoked for every datagram received from a known peer.
type Handler func(peer *Peer, payload []byte)

func Listen(addr string, peers *PeerTable) (*Listener, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, err
	}
	return &Listener{
		conn:  conn,
		peers: peers,
		log:   logrus.WithField("component", "udp_listener"),
	}, nil
}

func (l *Listener) LocalAddr() net.Addr { return l.conn.LocalAddr() }

func (l *Listener) Close() error { return l.conn.Close() }

// Serve reads datagrams until the socket is closed, dispatching each to
// handler if its source address matches a known peer. Datagrams from
// unknown addresses are dropped, except a 4-byte bind datagram naming
// an entity id the join handshake registered as pending, which binds
// that peer to the source address.
func (l *Listener) Serve(handler Handler) error {
	buf := make([]byte, maxDatagramSize)
	for {
		n, addr, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			return err
		}
		peer, ok := l.peers.GetByAddr(addr)
		if !ok {
			// A bare 4-byte payload from an unregistered address is a
			// session-bind datagram, not a protocol frame — see
			// PeerTable.AddPending/BindAddr.
			if n == 4 {
				entityID := binary.LittleEndian.Uint32(buf[:4])
				if bound, ok2 := l.peers.BindAddr(entityID, addr); ok2 {
					l.log.WithField("entity_id", entityID).Info("peer bound")
					_ = bound
					continue
				}
			}
			l.log.WithField("addr", addr.String()).Debug("datagram from unregistered peer")
			continue
		}
		payload := make([]byte, n)
		copy(payload, buf[:n])
		handler(peer, payload)
	}
}

// Send writes a datagram to a specific peer's address. Non-blocking,
// may drop on socket overflow, no completion callback.
func (l *Listener) Send(peer *Peer, datagram []byte) error {
	_, err := l.conn.WriteToUDP(datagram, peer.Addr)
	return err
}

// UDPTransport is the client-side transport adapter: a dialed UDP
// socket with a background receive loop and a blocking send.
type UDPTransport struct {
	conn      *net.UDPConn
	onMessage func(datagram []byte)
	done      chan struct{}
	log       *logrus.Entry
}

// Dial connects to addr and begins delivering datagrams to onMessage on
// a background goroutine; onMessage itself only pushes to the engine's
// inbox (Engine.OnMessage), never mutates engine state directly — no
// engine state is touched from the I/O goroutine.
func Dial(addr string, onMessage func(datagram []byte)) (*UDPTransport, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, err
	}
	t := &UDPTransport{
		conn:      conn,
		onMessage: onMessage,
		done:      make(chan struct{}),
		log:       logrus.WithField("component", "udp_transport"),
	}
	go t.readLoop()
	return t, nil
}

func (t *UDPTransport) readLoop() {
	buf := make([]byte, maxDatagramSize)
	for {
		select {
		case <-t.done:
			return
		default:
		}
		n, err := t.conn.Read(buf)
		if err != nil {
			select {
			case <-t.done:
			default:
				t.log.WithError(err).Debug("read error")
			}
			return
		}
		datagram := make([]byte, n)
		copy(datagram, buf[:n])
		t.onMessage(datagram)
	}
}

// Send implements client.Sender.
func (t *UDPTransport) Send(payload []byte) error {
	_, err := t.conn.Write(payload)
	return err
}

// BindSession sends the one-time 4-byte datagram that binds this
// socket's address to entityID in the server's PeerTable (see
// PeerTable.AddPending/BindAddr). Must be called once, immediately
// after Dial, before any protocol frame is sent.
func (t *UDPTransport) BindSession(entityID uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], entityID)
	_, err := t.conn.Write(buf[:])
	return err
}

func (t *UDPTransport) Close() error {
	close(t.done)
	return t.conn.Close()
}
