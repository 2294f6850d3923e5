// Package waypoint holds the ordered, cyclic node sequence a vehicle drives along.
package waypoint

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// NodeHeight is the y coordinate given to nodes created with AddNode.
const NodeHeight = 0.1

// Provider is the read-only waypoint lookup consumed by the movers.
type Provider interface {
	// Position returns the node at index mod Count(). Negative indices wrap too.
	Position(index int) mgl64.Vec3
	Count() int
}

type node struct {
	name string
	pos  mgl64.Vec3
}

// List is an in-memory ordered waypoint sequence.
// It is not safe for concurrent mutation; movers only read from it.
type List struct {
	nodes []node
}

// New creates a list from the given points, naming them Node-0..Node-n.
func New(points ...mgl64.Vec3) *List {
	l := &List{nodes: make([]node, 0, len(points))}
	for _, p := range points {
		l.Add(p)
	}
	return l
}

// Add appends a node at p. Nodes added this way are numbered by position in the list.
func (l *List) Add(p mgl64.Vec3) {
	l.nodes = append(l.nodes, node{
		name: fmt.Sprintf("Node-%d", len(l.nodes)),
		pos:  p,
	})
}

// AddNode appends a node the way the route editor does: the first node goes to
// (0, NodeHeight, 0) as Node-1, later nodes are placed on the last node's x/z
// at NodeHeight and continue its numbering.
func (l *List) AddNode() mgl64.Vec3 {
	if len(l.nodes) == 0 {
		p := mgl64.Vec3{0, NodeHeight, 0}
		l.nodes = append(l.nodes, node{name: "Node-1", pos: p})
		return p
	}

	last := l.nodes[len(l.nodes)-1]
	p := mgl64.Vec3{last.pos.X(), NodeHeight, last.pos.Z()}
	l.nodes = append(l.nodes, node{
		name: fmt.Sprintf("Node-%d", nodeNumber(last.name)+1),
		pos:  p,
	})
	return p
}

// nodeNumber extracts n from "Node-n". Unparseable names count as the list tail.
func nodeNumber(name string) int {
	idx := strings.IndexByte(name, '-')
	if idx < 0 {
		return 0
	}
	n, err := strconv.Atoi(name[idx+1:])
	if err != nil {
		return 0
	}
	return n
}

// Clear removes every node.
func (l *List) Clear() {
	l.nodes = l.nodes[:0]
}

// Count returns the number of nodes.
func (l *List) Count() int {
	return len(l.nodes)
}

// Position returns the node at index mod Count(). It panics on an empty list;
// callers check Count first.
func (l *List) Position(index int) mgl64.Vec3 {
	return l.nodes[wrap(index, len(l.nodes))].pos
}

// Name returns the name of the node at index mod Count().
func (l *List) Name(index int) string {
	return l.nodes[wrap(index, len(l.nodes))].name
}

// Names returns the node names in order.
func (l *List) Names() []string {
	names := make([]string, len(l.nodes))
	for i, n := range l.nodes {
		names[i] = n.name
	}
	return names
}

// Points returns a copy of the node positions in order.
func (l *List) Points() []mgl64.Vec3 {
	points := make([]mgl64.Vec3, len(l.nodes))
	for i, n := range l.nodes {
		points[i] = n.pos
	}
	return points
}

// DistanceToNext returns the 3D distance from node i to node i+1.
func (l *List) DistanceToNext(i int) float64 {
	return l.Position(i + 1).Sub(l.Position(i)).Len()
}

// LapLength returns the length of one closed loop through every node.
func (l *List) LapLength() float64 {
	var total float64
	for i := range l.nodes {
		total += l.DistanceToNext(i)
	}
	return total
}

func wrap(index, count int) int {
	i := index % count
	if i < 0 {
		i += count
	}
	return i
}
