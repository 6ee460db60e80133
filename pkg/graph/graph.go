// Package graph defines the entity and path types returned by graph
// traversals, along with the decoding logic that rebuilds paths from the
// server's decomposed wire representation.
package graph

import (
	"encoding/json"
	"fmt"
	"net/url"
)

// Ref is the canonical resource path of a node or relationship on the
// server, e.g. "/node/42" or "/relationship/7". It is the lightweight
// identifier form of an entity: enough to address it, nothing more.
type Ref string

// ResourcePath returns the ref itself. It exists so that Ref, Node and
// Relationship can all be used as traversal start points.
func (r Ref) ResourcePath() string { return string(r) }

// RefFromURI extracts the path component from an absolute entity URI as
// returned in the server's "self" fields and identifier-path arrays.
// Unparsable input is returned unchanged so the caller still has
// something addressable to report.
func RefFromURI(uri string) Ref {
	u, err := url.Parse(uri)
	if err != nil {
		return Ref(uri)
	}
	return Ref(u.Path)
}

// Entity is anything with a canonical resource path on the server.
type Entity interface {
	ResourcePath() string
}

// Node is a hydrated node entity.
type Node struct {
	Self       string         `json:"self"`
	Labels     []string       `json:"labels,omitempty"`
	Properties map[string]any `json:"data"`
}

var _ Entity = (*Node)(nil)

func (n Node) ResourcePath() string { return string(RefFromURI(n.Self)) }

// Relationship is a hydrated relationship entity. Direction is not a
// separate attribute: it is implied by the Start and End URIs relative
// to whichever node the caller is looking from.
type Relationship struct {
	Self       string         `json:"self"`
	Type       string         `json:"type"`
	Start      string         `json:"start"`
	End        string         `json:"end"`
	Properties map[string]any `json:"data"`
}

var _ Entity = (*Relationship)(nil)

func (r Relationship) ResourcePath() string { return string(RefFromURI(r.Self)) }

// EdgeDirection is the direction of a realized path edge. Unlike the
// three-way traversal filter direction, a traversed edge always has a
// known concrete direction, so only two values exist.
type EdgeDirection int

const (
	// DirectionOutgoing means the edge was traversed from its start node.
	DirectionOutgoing EdgeDirection = iota
	// DirectionIncoming means the edge was traversed toward its start node.
	DirectionIncoming
)

const (
	directionOutgoingLiteral = "->"
	directionIncomingLiteral = "<-"
)

func (d EdgeDirection) String() string {
	if d == DirectionIncoming {
		return directionIncomingLiteral
	}
	return directionOutgoingLiteral
}

// ParseEdgeDirection maps the server's direction literal onto an
// EdgeDirection. Anything other than "->" or "<-" is a decode failure,
// never a default.
func ParseEdgeDirection(literal string) (EdgeDirection, error) {
	switch literal {
	case directionOutgoingLiteral:
		return DirectionOutgoing, nil
	case directionIncomingLiteral:
		return DirectionIncoming, nil
	default:
		return 0, &DirectionLiteralError{Literal: literal}
	}
}

// DecodeNode decodes a single hydrated node object.
func DecodeNode(data json.RawMessage) (Node, error) {
	var n Node
	if err := json.Unmarshal(data, &n); err != nil {
		return Node{}, fmt.Errorf("decoding node: %w", err)
	}
	return n, nil
}

// DecodeRelationship decodes a single hydrated relationship object.
func DecodeRelationship(data json.RawMessage) (Relationship, error) {
	var r Relationship
	if err := json.Unmarshal(data, &r); err != nil {
		return Relationship{}, fmt.Errorf("decoding relationship: %w", err)
	}
	return r, nil
}
