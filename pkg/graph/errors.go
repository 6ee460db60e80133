package graph

import (
	"fmt"
	"strings"
)

// PathCountError reports a path whose decomposed arrays cannot form an
// alternating node/relationship sequence. It keeps the offending
// sequences so the bad server payload can be diagnosed, not just counted.
type PathCountError struct {
	Nodes         []string
	Relationships []string
	// Directions is nil when the input carried no directions array.
	Directions []string
}

func newPathCountError(nodes, relationships, directions []string, withDirections bool) *PathCountError {
	err := &PathCountError{Nodes: nodes, Relationships: relationships}
	if withDirections {
		err.Directions = directions
	}
	return err
}

func (e *PathCountError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "malformed path: %d nodes, %d relationships", len(e.Nodes), len(e.Relationships))
	if e.Directions != nil {
		fmt.Fprintf(&b, ", %d directions", len(e.Directions))
	}
	fmt.Fprintf(&b, " (want one more node than relationships")
	if e.Directions != nil {
		b.WriteString(" and one direction per relationship")
	}
	fmt.Fprintf(&b, "): nodes=[%s] relationships=[%s]",
		strings.Join(e.Nodes, " "), strings.Join(e.Relationships, " "))
	if e.Directions != nil {
		fmt.Fprintf(&b, " directions=[%s]", strings.Join(e.Directions, " "))
	}
	return b.String()
}

// DirectionLiteralError reports a direction entry that is neither "->"
// nor "<-". Unknown literals fail decoding; they are never coerced to a
// default.
type DirectionLiteralError struct {
	Literal string
}

func (e *DirectionLiteralError) Error() string {
	return fmt.Sprintf("unknown direction literal %q (want \"->\" or \"<-\")", e.Literal)
}
