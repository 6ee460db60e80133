package client

import "fmt"

// EntityNotFoundError reports that the traversal start point does not
// exist on the server. Path is the start entity's canonical resource path.
type EntityNotFoundError struct {
	Path string
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("no such entity: %s", e.Path)
}
