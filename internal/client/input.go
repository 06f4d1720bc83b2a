package client

import (
	"github.com/acherenovich/snake-app/internal/config"
	"github.com/acherenovich/snake-app/internal/proto"
)

// SetPlayerDestination records the local player's movement target
// (mouse/stick position translated to world coordinates by the
// out-of-scope rendering layer). The input producer encodes this at
// its own cadence.
func (e *Engine) SetPlayerDestination(p proto.Point) {
	e.playerDestination = p
}

// produceInput runs at half the simulation tick rate, encoding the
// destination plus any pending repair requests. Nothing is emitted
// after OnDisconnected.
func (e *Engine) produceInput() {
	if e.timedOut {
		return
	}
	if e.localFrame%(config.SimTickRate/config.InputTickRate) != 0 {
		return
	}

	if _, hasPlayer := e.GetPlayerSnake(); hasPlayer {
		e.lastInputSeq++
		payload := proto.ClientInputPayload{
			DestX:       e.playerDestination.X,
			DestY:       e.playerDestination.Y,
			ClientFrame: e.localFrame,
		}.Encode()
		e.send(proto.MsgClientInput, payload)
	}

	if e.pendingFullRequest {
		e.lastInputSeq++
		flags := uint8(0)
		if e.pendingFullRequestAllSegments {
			flags |= proto.RequestFlagAllSegments
		}
		payload := proto.RequestFullUpdatePayload{Flags: flags}.Encode()
		e.send(proto.MsgRequestFullUpdate, payload)
		e.pendingFullRequest = false
		e.pendingFullRequestAllSegments = false
	}

	drained := 0
	for len(e.snapshotQueue) > 0 && drained < config.SnapshotRequestsPerTick {
		id := e.snapshotQueue[0]
		e.snapshotQueue = e.snapshotQueue[1:]
		delete(e.snapshotQueued, id)
		e.snapshotCooldown[id] = e.localFrame + config.SnapshotCooldownFrames

		e.lastInputSeq++
		payload := proto.RequestSnakeSnapshotPayload{EntityID: id}.Encode()
		e.send(proto.MsgRequestSnakeSnapshot, payload)
		drained++
	}
}

func (e *Engine) send(msgType proto.MessageType, payload []byte) {
	if e.sender == nil {
		return
	}
	datagram := proto.Frame(msgType, e.lastInputSeq, payload)
	if err := e.sender.Send(datagram); err != nil {
		e.log.WithError(err).Debug("send failed")
	}
}
