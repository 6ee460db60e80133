package graph

import (
	"encoding/json"
	"fmt"
	"strings"
)

// A path is an alternating node/relationship sequence that starts and
// ends with a node, so a well-formed path always has exactly one more
// node than it has relationships. Both path flavors below store the two
// halves as parallel slices and enforce that invariant at construction.

// Edge is one traversed relationship of an identifier path, tagged with
// the concrete direction it was walked in.
type Edge struct {
	Relationship Ref
	Direction    EdgeDirection
}

// RefPath is an identifier path: its elements are lightweight refs
// rather than hydrated entities.
type RefPath struct {
	nodes []Ref
	edges []Edge

	directionsSynthesized bool
}

// NewRefPath builds an identifier path from its node and edge sequences,
// failing if len(nodes) != len(edges)+1.
func NewRefPath(nodes []Ref, edges []Edge) (*RefPath, error) {
	if len(nodes) != len(edges)+1 {
		return nil, newPathCountError(refStrings(nodes), edgeStrings(edges), nil, false)
	}
	return &RefPath{nodes: nodes, edges: edges}, nil
}

// Nodes returns the node refs in traversal order.
func (p *RefPath) Nodes() []Ref { return p.nodes }

// Edges returns the traversed relationships, each with its concrete
// direction, in traversal order. Edge i connects node i to node i+1.
func (p *RefPath) Edges() []Edge { return p.edges }

// Start returns the first node of the path.
func (p *RefPath) Start() Ref { return p.nodes[0] }

// End returns the last node of the path.
func (p *RefPath) End() Ref { return p.nodes[len(p.nodes)-1] }

// Len returns the number of edges in the path.
func (p *RefPath) Len() int { return len(p.edges) }

// DirectionsSynthesized reports whether the server response omitted the
// directions array, in which case every edge direction was defaulted to
// outgoing. Older servers do not report directions at all; callers that
// care about true edge direction cannot trust such a path and should
// check this flag.
func (p *RefPath) DirectionsSynthesized() bool { return p.directionsSynthesized }

// FullPath is a hydrated path: its elements are full node and
// relationship entities. Direction is not tracked separately; it is
// whatever each relationship entity's start/end URIs imply.
type FullPath struct {
	nodes         []Node
	relationships []Relationship
}

// NewFullPath builds a hydrated path from its node and relationship
// sequences, failing if len(nodes) != len(relationships)+1.
func NewFullPath(nodes []Node, relationships []Relationship) (*FullPath, error) {
	if len(nodes) != len(relationships)+1 {
		return nil, newPathCountError(nodeStrings(nodes), relationshipStrings(relationships), nil, false)
	}
	return &FullPath{nodes: nodes, relationships: relationships}, nil
}

// Nodes returns the hydrated nodes in traversal order.
func (p *FullPath) Nodes() []Node { return p.nodes }

// Relationships returns the hydrated relationships in traversal order.
// Relationship i connects node i to node i+1.
func (p *FullPath) Relationships() []Relationship { return p.relationships }

// Start returns the first node of the path.
func (p *FullPath) Start() Node { return p.nodes[0] }

// End returns the last node of the path.
func (p *FullPath) End() Node { return p.nodes[len(p.nodes)-1] }

// Len returns the number of relationships in the path.
func (p *FullPath) Len() int { return len(p.relationships) }

// refPathWire is the server shape of an identifier path. Node and
// relationship entries are absolute entity URIs. The directions array is
// optional: servers prior to the paged-traversal release never send it.
type refPathWire struct {
	Nodes         []string  `json:"nodes"`
	Relationships []string  `json:"relationships"`
	Directions    *[]string `json:"directions"`
}

// DecodeRefPath rebuilds an identifier path from the server's
// decomposed {nodes, relationships, directions} arrays.
//
// When the directions array is absent the path is still reconstructed,
// with every edge defaulted to outgoing and DirectionsSynthesized set.
// That default is lossy: a path from such a server cannot distinguish a
// true outgoing edge from one whose direction simply went unreported.
func DecodeRefPath(data json.RawMessage) (*RefPath, error) {
	var wire refPathWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decoding path object: %w", err)
	}

	synthesized := false
	var directions []string
	if wire.Directions != nil {
		directions = *wire.Directions
	} else {
		directions = make([]string, len(wire.Relationships))
		for i := range directions {
			directions[i] = directionOutgoingLiteral
		}
		synthesized = true
	}

	if len(wire.Nodes) != len(wire.Relationships)+1 || len(wire.Relationships) != len(directions) {
		return nil, newPathCountError(wire.Nodes, wire.Relationships, directions, true)
	}

	nodes := make([]Ref, len(wire.Nodes))
	for i, uri := range wire.Nodes {
		nodes[i] = RefFromURI(uri)
	}

	edges := make([]Edge, len(wire.Relationships))
	for i, uri := range wire.Relationships {
		direction, err := ParseEdgeDirection(directions[i])
		if err != nil {
			return nil, fmt.Errorf("path edge %d: %w", i, err)
		}
		edges[i] = Edge{Relationship: RefFromURI(uri), Direction: direction}
	}

	return &RefPath{nodes: nodes, edges: edges, directionsSynthesized: synthesized}, nil
}

// fullPathWire is the server shape of a hydrated path: the same
// decomposed arrays, with entities in place of URIs and no directions.
type fullPathWire struct {
	Nodes         []json.RawMessage `json:"nodes"`
	Relationships []json.RawMessage `json:"relationships"`
}

// DecodeFullPath rebuilds a hydrated path from the server's decomposed
// {nodes, relationships} arrays. Only the count invariant is validated;
// direction is passed through inside each relationship entity.
func DecodeFullPath(data json.RawMessage) (*FullPath, error) {
	var wire fullPathWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decoding full path object: %w", err)
	}

	if len(wire.Nodes) != len(wire.Relationships)+1 {
		return nil, newPathCountError(rawStrings(wire.Nodes), rawStrings(wire.Relationships), nil, false)
	}

	nodes := make([]Node, len(wire.Nodes))
	for i, raw := range wire.Nodes {
		n, err := DecodeNode(raw)
		if err != nil {
			return nil, fmt.Errorf("path node %d: %w", i, err)
		}
		nodes[i] = n
	}

	relationships := make([]Relationship, len(wire.Relationships))
	for i, raw := range wire.Relationships {
		r, err := DecodeRelationship(raw)
		if err != nil {
			return nil, fmt.Errorf("path relationship %d: %w", i, err)
		}
		relationships[i] = r
	}

	return &FullPath{nodes: nodes, relationships: relationships}, nil
}

// MarshalJSON renders the path back into the decomposed wire shape,
// directions included.
func (p *RefPath) MarshalJSON() ([]byte, error) {
	directions := make([]string, len(p.edges))
	relationships := make([]string, len(p.edges))
	for i, e := range p.edges {
		relationships[i] = string(e.Relationship)
		directions[i] = e.Direction.String()
	}
	return json.Marshal(map[string]any{
		"nodes":         refStrings(p.nodes),
		"relationships": relationships,
		"directions":    directions,
	})
}

// MarshalJSON renders the path back into the decomposed wire shape.
func (p *FullPath) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"nodes":         p.nodes,
		"relationships": p.relationships,
	})
}

func refStrings(refs []Ref) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = string(r)
	}
	return out
}

func edgeStrings(edges []Edge) []string {
	out := make([]string, len(edges))
	for i, e := range edges {
		out[i] = string(e.Relationship)
	}
	return out
}

func nodeStrings(nodes []Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Self
	}
	return out
}

func relationshipStrings(relationships []Relationship) []string {
	out := make([]string, len(relationships))
	for i, r := range relationships {
		out[i] = r.Self
	}
	return out
}

func rawStrings(raws []json.RawMessage) []string {
	out := make([]string, len(raws))
	for i, raw := range raws {
		out[i] = strings.TrimSpace(string(raw))
	}
	return out
}
