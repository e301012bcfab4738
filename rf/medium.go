package rf

import (
	"log"
	"math"
	"reflect"

	"github.com/sarchlab/ransim/sim"
)

// Speed of light, in m/s.
const lightSpeed = 299792458.0

// HookPosPacketEmit marks when a packet is handed to the medium.
var HookPosPacketEmit = &sim.HookPos{Name: "Packet Emit"}

// HookPosPacketDeliver marks when a packet reaches a receiving node.
var HookPosPacketDeliver = &sim.HookPos{Name: "Packet Deliver"}

type nodeInvokeEvent struct {
	*sim.EventBase
	node Node
}

type deliverEvent struct {
	*sim.EventBase
	node Node
	pkt  *Packet
}

// A Medium connects radio endpoints. Every emitted packet is broadcast to
// all other registered nodes after the line-of-sight propagation delay. The
// medium also acts as the discrete-event driver of its nodes: it invokes
// each node's Run at packet deliveries and at the node's own next-invocation
// times, and never concurrently, which is the serialization the endpoint
// state machines rely on.
type Medium struct {
	sim.HookableBase

	name   string
	engine sim.Engine

	// ExtraDelay is added to every propagation delay, modeling processing
	// and front-end latency.
	ExtraDelay sim.VTimeInNs

	nodes       []Node
	nextInvokes map[string]sim.VTimeInNs
}

// NewMedium creates a Medium.
func NewMedium(name string, engine sim.Engine) *Medium {
	return &Medium{
		name:        name,
		engine:      engine,
		nodes:       make([]Node, 0),
		nextInvokes: make(map[string]sim.VTimeInNs),
	}
}

// Name returns the name of the medium.
func (m *Medium) Name() string {
	return m.name
}

// Register adds a node to the medium.
func (m *Medium) Register(n Node) {
	for _, existing := range m.nodes {
		if existing.Name() == n.Name() {
			log.Panicf("node %s is already registered", n.Name())
		}
	}

	m.nodes = append(m.nodes, n)
	m.nextInvokes[n.Name()] = sim.TimeNever
}

// EmitPacket implements Emitter. It schedules a delivery to every other
// node.
func (m *Medium) EmitPacket(p *Packet) {
	now := m.engine.CurrentTime()

	m.InvokeHook(sim.HookCtx{
		Domain: m,
		Pos:    HookPosPacketEmit,
		Item:   p,
	})

	for _, n := range m.nodes {
		if n.Name() == p.Source {
			continue
		}

		delay := m.propagationDelay(p.Position, n.Position())
		evt := &deliverEvent{
			EventBase: sim.NewEventBase(now+delay, m),
			node:      n,
			pkt:       p,
		}
		m.engine.Schedule(evt)
	}
}

func (m *Medium) propagationDelay(from, to Position) sim.VTimeInNs {
	dist := from.DistanceTo(to)
	return sim.VTimeInNs(math.Round(dist/lightSpeed*1e9)) + m.ExtraDelay
}

// InvokeAt makes sure the node is invoked no later than t. The MAC layer
// calls this after installing contexts so that the endpoint observes them at
// the right symbol.
func (m *Medium) InvokeAt(n Node, t sim.VTimeInNs) {
	if t == sim.TimeNever {
		return
	}

	scheduled := m.nextInvokes[n.Name()]
	if scheduled <= t && scheduled > m.engine.CurrentTime() {
		return
	}

	// Invocations are secondary events so that a packet delivered at
	// exactly t is absorbed before the node finalizes the symbol.
	m.nextInvokes[n.Name()] = t
	m.engine.Schedule(&nodeInvokeEvent{
		EventBase: sim.NewSecondaryEventBase(t, m),
		node:      n,
	})
}

// Handle processes delivery and invocation events.
func (m *Medium) Handle(e sim.Event) error {
	switch e := e.(type) {
	case *deliverEvent:
		m.InvokeHook(sim.HookCtx{
			Domain: m,
			Pos:    HookPosPacketDeliver,
			Item:   e.pkt,
			Detail: e.node.Name(),
		})
		m.runNode(e.node, e.Time(), []*Packet{e.pkt})
	case *nodeInvokeEvent:
		m.runNode(e.node, e.Time(), nil)
	default:
		log.Panicf("cannot handle event of type %s", reflect.TypeOf(e))
	}

	return nil
}

func (m *Medium) runNode(n Node, now sim.VTimeInNs, inbound []*Packet) {
	next := n.Run(now, inbound)

	if next == sim.TimeNever {
		return
	}
	if next <= now {
		log.Panicf("node %s requested an invocation in the past", n.Name())
	}

	m.InvokeAt(n, next)
}
