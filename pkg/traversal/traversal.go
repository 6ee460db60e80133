// Package traversal describes server-side graph walks and encodes them
// into the traversal request payload the server expects.
package traversal

import (
	"encoding/json"
	"fmt"
)

// Order is the order in which the server visits nodes during a walk.
type Order int

const (
	// BreadthFirst visits all nodes at one depth before going deeper.
	BreadthFirst Order = iota
	// DepthFirst follows each branch to its full depth before backtracking.
	DepthFirst
)

func (o Order) String() string {
	if o == DepthFirst {
		return "depth_first"
	}
	return "breadth_first"
}

// Direction constrains which relationships a traversal follows relative
// to the node being expanded. Any is only meaningful as a filter: a
// traversed edge always has a concrete direction (see graph.EdgeDirection).
type Direction int

const (
	Outgoing Direction = iota
	Incoming
	Any
)

func (d Direction) String() string {
	switch d {
	case Incoming:
		return "in"
	case Any:
		return "all"
	default:
		return "out"
	}
}

// RelationshipFilter restricts a traversal to relationships of one type
// in one direction. Filters apply in the order they were added.
type RelationshipFilter struct {
	Type      string
	Direction Direction
}

// Uniqueness is the server-side dedup rule limiting revisits of nodes or
// relationships during a walk.
type Uniqueness string

const (
	// UniquenessNone is the server default: no revisit restriction.
	UniquenessNone Uniqueness = "none"

	UniquenessNodeGlobal         Uniqueness = "node_global"
	UniquenessRelationshipGlobal Uniqueness = "relationship_global"
	UniquenessNodePath           Uniqueness = "node_path"
	UniquenessRelationshipPath   Uniqueness = "relationship_path"
)

// Depth bounds how deep a traversal walks: either a fixed integer bound
// (MaxDepth) or a server-evaluated prune expression (PruneEvaluator).
type Depth interface {
	isDepth()
}

// MaxDepth is a fixed non-negative depth bound.
type MaxDepth int

func (MaxDepth) isDepth() {}

// PruneEvaluator is a javascript expression evaluated on the server to
// decide where a walk stops. The body is opaque to the client.
type PruneEvaluator string

func (PruneEvaluator) isDepth() {}

// ReturnFilter decides which visited nodes the server returns: a builtin
// filter or a server-evaluated expression (ReturnEvaluator).
type ReturnFilter interface {
	isReturnFilter()
}

type builtinReturnFilter string

func (builtinReturnFilter) isReturnFilter() {}

const (
	// ReturnAll returns every visited node.
	ReturnAll = builtinReturnFilter("all")
	// ReturnAllButStartNode returns every visited node except the start node.
	ReturnAllButStartNode = builtinReturnFilter("all_but_start_node")
)

// ReturnEvaluator is a javascript expression evaluated on the server to
// decide which visited nodes are returned. The body is opaque to the client.
type ReturnEvaluator string

func (ReturnEvaluator) isReturnFilter() {}

// Descriptor is an immutable description of one traversal. Build it once
// with New and the With* options; the zero-option descriptor is a
// breadth-first walk of depth 1 with no filters that returns every node.
type Descriptor struct {
	order         Order
	relationships []RelationshipFilter
	uniqueness    Uniqueness
	depth         Depth
	returnFilter  ReturnFilter
}

// Option configures a Descriptor during construction.
type Option func(*Descriptor)

// WithOrder sets the traversal order.
func WithOrder(order Order) Option {
	return func(d *Descriptor) {
		d.order = order
	}
}

// WithRelationship appends a relationship filter. Repeatable; filters
// keep the order they were added in.
func WithRelationship(relType string, direction Direction) Option {
	return func(d *Descriptor) {
		d.relationships = append(d.relationships, RelationshipFilter{Type: relType, Direction: direction})
	}
}

// WithUniqueness overrides the server's default uniqueness rule.
func WithUniqueness(u Uniqueness) Option {
	return func(d *Descriptor) {
		d.uniqueness = u
	}
}

// WithMaxDepth bounds the walk at a fixed depth.
func WithMaxDepth(n int) Option {
	return func(d *Descriptor) {
		d.depth = MaxDepth(n)
	}
}

// WithPruneEvaluator bounds the walk with a server-evaluated expression.
func WithPruneEvaluator(body string) Option {
	return func(d *Descriptor) {
		d.depth = PruneEvaluator(body)
	}
}

// WithReturnFilter selects a builtin return filter.
func WithReturnFilter(f ReturnFilter) Option {
	return func(d *Descriptor) {
		d.returnFilter = f
	}
}

// WithReturnEvaluator selects a server-evaluated return expression.
func WithReturnEvaluator(body string) Option {
	return func(d *Descriptor) {
		d.returnFilter = ReturnEvaluator(body)
	}
}

// New builds a Descriptor. Defaults: breadth-first, no relationship
// filters, uniqueness none, max depth 1, return all.
func New(opts ...Option) *Descriptor {
	d := &Descriptor{
		order:        BreadthFirst,
		uniqueness:   UniquenessNone,
		depth:        MaxDepth(1),
		returnFilter: ReturnAll,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Order returns the traversal order.
func (d *Descriptor) Order() Order { return d.order }

// Relationships returns the relationship filters in application order.
func (d *Descriptor) Relationships() []RelationshipFilter { return d.relationships }

// Uniqueness returns the dedup rule sent to the server.
func (d *Descriptor) Uniqueness() Uniqueness { return d.uniqueness }

// Depth returns the depth policy. Switch on MaxDepth vs PruneEvaluator.
func (d *Descriptor) Depth() Depth { return d.depth }

// ReturnFilter returns the node return filter. Switch on the builtin
// filters vs ReturnEvaluator.
func (d *Descriptor) ReturnFilter() ReturnFilter { return d.returnFilter }

// evaluator is the wire form of a builtin or server-evaluated filter.
type evaluator struct {
	Language string `json:"language"`
	Name     string `json:"name,omitempty"`
	Body     string `json:"body,omitempty"`
}

type relationshipFilterWire struct {
	Type      string `json:"type"`
	Direction string `json:"direction"`
}

type descriptorWire struct {
	Order         string                   `json:"order"`
	Relationships []relationshipFilterWire `json:"relationships"`
	Uniqueness    string                   `json:"uniqueness"`
	MaxDepth      *int                     `json:"max_depth,omitempty"`
	Prune         *evaluator               `json:"prune_evaluator,omitempty"`
	ReturnFilter  evaluator                `json:"return_filter"`
}

// MarshalJSON encodes the descriptor as the traversal request body. The
// encoding is total and deterministic: every well-formed descriptor
// serializes, and equal descriptors serialize identically.
func (d *Descriptor) MarshalJSON() ([]byte, error) {
	wire := descriptorWire{
		Order:         d.order.String(),
		Relationships: make([]relationshipFilterWire, 0, len(d.relationships)),
		Uniqueness:    string(d.uniqueness),
	}
	if wire.Uniqueness == "" {
		wire.Uniqueness = string(UniquenessNone)
	}

	for _, f := range d.relationships {
		wire.Relationships = append(wire.Relationships, relationshipFilterWire{
			Type:      f.Type,
			Direction: f.Direction.String(),
		})
	}

	switch depth := d.depth.(type) {
	case MaxDepth:
		n := int(depth)
		wire.MaxDepth = &n
	case PruneEvaluator:
		wire.Prune = &evaluator{Language: "javascript", Body: string(depth)}
	default:
		n := 1
		wire.MaxDepth = &n
	}

	switch filter := d.returnFilter.(type) {
	case builtinReturnFilter:
		wire.ReturnFilter = evaluator{Language: "builtin", Name: string(filter)}
	case ReturnEvaluator:
		wire.ReturnFilter = evaluator{Language: "javascript", Body: string(filter)}
	default:
		wire.ReturnFilter = evaluator{Language: "builtin", Name: string(ReturnAll)}
	}

	return json.Marshal(wire)
}

// PageParams controls paged traversals: how many results the server
// returns per page and how long an idle page cursor stays valid
// server-side before its lease expires.
type PageParams struct {
	PageSize  int
	LeaseTime int // seconds
}

const (
	DefaultPageSize  = 50
	DefaultLeaseTime = 60
)

// DefaultPageParams returns the documented paging defaults.
func DefaultPageParams() PageParams {
	return PageParams{PageSize: DefaultPageSize, LeaseTime: DefaultLeaseTime}
}

// QueryString renders the paging query string appended to the request
// URL. Paging is never part of the request body.
func (p PageParams) QueryString() string {
	size := p.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	lease := p.LeaseTime
	if lease <= 0 {
		lease = DefaultLeaseTime
	}
	return fmt.Sprintf("pageSize=%d&leaseTime=%d", size, lease)
}
