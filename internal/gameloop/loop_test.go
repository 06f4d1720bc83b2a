package gameloop

import (
	"net"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/acherenovich/snake-app/internal/bot"
	"github.com/acherenovich/snake-app/internal/proto"
	"github.com/acherenovich/snake-app/internal/transport"
	"github.com/acherenovich/snake-app/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestLoop builds a Loop by hand rather than via NewLoop, so tests
// don't pay for config.BotCount's 50 bot spawns on every run.
func newTestLoop(t *testing.T) (*Loop, *transport.Listener) {
	t.Helper()
	w := world.NewWorld()
	peers := transport.NewPeerTable()
	listener, err := transport.Listen("127.0.0.1:0", peers)
	require.NoError(t, err)
	t.Cleanup(func() { listener.Close() })

	gl := &Loop{
		world:     w,
		bots:      bot.NewManager(w),
		peers:     peers,
		listener:  listener,
		inbox:     make(chan inboundDatagram, 16),
		players:   make(map[uint32]*playerState),
		playersMu: newChanMutex(),
		log:       logrus.WithField("component", "game_loop_test"),
	}
	return gl, listener
}

func TestAssignPlayerRegistersSnakeAndPlayerState(t *testing.T) {
	gl, _ := newTestLoop(t)

	id, err := gl.AssignPlayer("Alice")
	require.NoError(t, err)
	assert.NotZero(t, id)

	gl.world.RLock()
	snake, ok := gl.world.Snakes[id]
	gl.world.RUnlock()
	require.True(t, ok)
	assert.Equal(t, "Alice", snake.Name)

	gl.playersMu.Lock()
	ps, ok := gl.players[id]
	gl.playersMu.Unlock()
	require.True(t, ok)
	assert.True(t, ps.pendingFull)
	assert.True(t, ps.pendingFullAllSegments)
}

func TestHandleDatagramClientInputSetsDestination(t *testing.T) {
	gl, _ := newTestLoop(t)

	id, err := gl.AssignPlayer("Bob")
	require.NoError(t, err)

	peer := transport.NewPeer(id, &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 1})
	payload := proto.Frame(proto.MsgClientInput, 1, proto.ClientInputPayload{
		DestX: 123, DestY: 456, ClientFrame: 7,
	}.Encode())

	gl.handleDatagram(peer, payload)

	gl.playersMu.Lock()
	ps := gl.players[id]
	gl.playersMu.Unlock()
	require.True(t, ps.hasDestination)
	assert.Equal(t, float32(123), ps.destination.X)
	assert.Equal(t, float32(456), ps.destination.Y)
}

func TestHandleDatagramRequestSnakeSnapshotQueuesRequest(t *testing.T) {
	gl, _ := newTestLoop(t)

	id, err := gl.AssignPlayer("Carol")
	require.NoError(t, err)

	peer := transport.NewPeer(id, &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 1})
	payload := proto.Frame(proto.MsgRequestSnakeSnapshot, 1, proto.RequestSnakeSnapshotPayload{
		EntityID: 42,
	}.Encode())

	gl.handleDatagram(peer, payload)

	gl.playersMu.Lock()
	ps := gl.players[id]
	gl.playersMu.Unlock()
	require.Len(t, ps.snapshotRequests, 1)
	assert.Equal(t, uint32(42), ps.snapshotRequests[0])
}

func TestDetectCollisionsKillsSmallerSnakeOnHeadOn(t *testing.T) {
	gl, _ := newTestLoop(t)
	w := gl.world

	w.Lock()
	a := world.NewSnake(w.AllocID(), "A", proto.Color{}, 0)
	b := world.NewSnake(w.AllocID(), "B", proto.Color{}, 0)
	a.Segments[0] = proto.Point{X: 100, Y: 100}
	b.Segments[0] = proto.Point{X: 105, Y: 100}
	a.Experience = 1000
	b.Experience = 10
	w.AddSnake(a)
	w.AddSnake(b)
	w.RebuildGrid()
	deaths := gl.detectCollisions()
	w.Unlock()

	killer, died := deaths[b.EntityID]
	require.True(t, died)
	assert.Equal(t, a.EntityID, killer)
	_, aDied := deaths[a.EntityID]
	assert.False(t, aDied)
}

func TestBroadcastSendsFullUpdateOnFirstContact(t *testing.T) {
	gl, _ := newTestLoop(t)

	id, err := gl.AssignPlayer("Dana")
	require.NoError(t, err)

	clientConn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1")})
	require.NoError(t, err)
	defer clientConn.Close()

	clientAddr := clientConn.LocalAddr().(*net.UDPAddr)
	peer := transport.NewPeer(id, clientAddr)
	gl.peers.Add(peer)

	gl.broadcast(nil)

	buf := make([]byte, 4096)
	n, _, err := clientConn.ReadFromUDP(buf)
	require.NoError(t, err)
	require.Greater(t, n, 0)

	h, body, err := proto.ParseHeader(buf[:n])
	require.NoError(t, err)
	assert.Equal(t, proto.MsgFullUpdate, h.Type)

	fu, err := proto.DecodeFullUpdate(body)
	require.NoError(t, err)
	assert.Equal(t, id, fu.Header.PlayerEntityID)

	gl.playersMu.Lock()
	ps := gl.players[id]
	gl.playersMu.Unlock()
	assert.False(t, ps.pendingFull)
}

func TestBroadcastSendsPartialAfterFirstFull(t *testing.T) {
	gl, _ := newTestLoop(t)

	id, err := gl.AssignPlayer("Eve")
	require.NoError(t, err)

	clientConn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1")})
	require.NoError(t, err)
	defer clientConn.Close()

	clientAddr := clientConn.LocalAddr().(*net.UDPAddr)
	peer := transport.NewPeer(id, clientAddr)
	gl.peers.Add(peer)

	gl.broadcast(nil)
	buf := make([]byte, 4096)
	_, _, err = clientConn.ReadFromUDP(buf)
	require.NoError(t, err)

	gl.broadcast(nil)
	n, _, err := clientConn.ReadFromUDP(buf)
	require.NoError(t, err)

	h, _, err := proto.ParseHeader(buf[:n])
	require.NoError(t, err)
	assert.Equal(t, proto.MsgPartialUpdate, h.Type)
}

func TestTickAppliesPlayerInputAndMovesSnake(t *testing.T) {
	gl, _ := newTestLoop(t)

	id, err := gl.AssignPlayer("Frank")
	require.NoError(t, err)

	gl.world.RLock()
	before := gl.world.Snakes[id].Head()
	gl.world.RUnlock()

	gl.playersMu.Lock()
	gl.players[id].hasDestination = true
	gl.players[id].destination = proto.Point{
		X: before.X + 1000,
		Y: before.Y,
	}
	gl.playersMu.Unlock()

	gl.tick()

	gl.world.RLock()
	after := gl.world.Snakes[id].Head()
	gl.world.RUnlock()

	assert.NotEqual(t, before, after)
}
