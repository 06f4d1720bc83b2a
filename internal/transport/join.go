package transport

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// JoinRequest is the one message a client sends over the join
// side-channel: a display name. Authentication is out of scope here
// and is assumed to have already happened before this handshake runs.
type JoinRequest struct {
	Name string `json:"name"`
}

// JoinResponse hands the client everything it needs to start the UDP
// replication session: its assigned entity id and the UDP endpoint to
// dial.
type JoinResponse struct {
	SessionID      string `json:"session_id"`
	PlayerEntityID uint32 `json:"player_entity_id"`
	UDPAddr        string `json:"udp_addr"`
}

// AssignFunc allocates a new player entity id for the given display
// name and returns it; JoinServer then registers the pending peer
// itself. It is supplied by internal/gameloop (Loop.AssignPlayer),
// which allocates the id through internal/world.
type AssignFunc func(name string) (entityID uint32, err error)

// JoinServer upgrades one-shot HTTP requests to a WebSocket, reads a
// single JoinRequest, and replies with a JoinResponse — then the
// connection is closed; no further traffic crosses this channel.
type JoinServer struct {
	upgrader websocket.Upgrader
	udpAddr  string
	assign   AssignFunc
	peers    *PeerTable
	log      *logrus.Entry
}

func NewJoinServer(udpAddr string, peers *PeerTable, assign AssignFunc) *JoinServer {
	return &JoinServer{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		udpAddr: udpAddr,
		assign:  assign,
		peers:   peers,
		log:     logrus.WithField("component", "join_server"),
	}
}

func (s *JoinServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var req JoinRequest
	if err := conn.ReadJSON(&req); err != nil {
		s.log.WithError(err).Debug("bad join request")
		return
	}
	if req.Name == "" {
		req.Name = "Player"
	}

	entityID, err := s.assign(req.Name)
	if err != nil {
		s.log.WithError(err).Warn("failed to assign entity id")
		return
	}
	s.peers.AddPending(entityID)

	resp := JoinResponse{
		SessionID:      uuid.New().String(),
		PlayerEntityID: entityID,
		UDPAddr:        s.udpAddr,
	}
	if err := conn.WriteJSON(resp); err != nil {
		s.log.WithError(err).Debug("failed to write join response")
	}
}

// DialJoin performs the client side of the handshake: connect, send a
// JoinRequest, read back the JoinResponse, close the socket.
func DialJoin(joinURL, name string) (JoinResponse, error) {
	conn, _, err := websocket.DefaultDialer.Dial(joinURL, nil)
	if err != nil {
		return JoinResponse{}, err
	}
	defer conn.Close()

	if err := conn.WriteJSON(JoinRequest{Name: name}); err != nil {
		return JoinResponse{}, err
	}
	var resp JoinResponse
	if err := conn.ReadJSON(&resp); err != nil {
		return JoinResponse{}, err
	}
	return resp, nil
}
