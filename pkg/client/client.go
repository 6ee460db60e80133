// Package client executes graph traversals against a remote server and
// decodes the results into typed entity lists and paths.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/graftdb/graft-go/pkg/graph"
	"github.com/graftdb/graft-go/pkg/httpclient"
	"github.com/graftdb/graft-go/pkg/logger"
	"github.com/graftdb/graft-go/pkg/traversal"
)

// Transport is the HTTP collaborator the client issues requests through.
// Implementations report non-2xx responses as *httpclient.UnexpectedStatusError.
type Transport interface {
	// CreateWithBody POSTs a JSON body and decodes a JSON array response.
	CreateWithBody(ctx context.Context, path string, body any) ([]json.RawMessage, error)

	// CreateWithBodyAndHeaders is CreateWithBody, also exposing response headers.
	CreateWithBodyAndHeaders(ctx context.Context, path string, body any) ([]json.RawMessage, http.Header, error)

	// Retrieve GETs a path; false means the server has no data for it.
	Retrieve(ctx context.Context, path string) ([]json.RawMessage, bool, error)
}

var _ Transport = (*httpclient.Client)(nil)

// ReturnType is the traversal sub-resource selecting the result shape.
type ReturnType string

const (
	ReturnNodes         ReturnType = "node"
	ReturnRelationships ReturnType = "relationship"
	ReturnPaths         ReturnType = "path"
	ReturnFullPaths     ReturnType = "fullpath"
)

// Client runs traversals through a Transport. All operations are
// synchronous; the client holds no state between calls.
type Client struct {
	transport Transport
	logger    logger.Logger
}

// Option configures a Client during construction.
type Option func(*Client)

// WithLogger sets the logger used for traversal-level debug logging.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New builds a Client on top of the given transport.
func New(transport Transport, opts ...Option) *Client {
	c := &Client{
		transport: transport,
		logger:    logger.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TraverseNodes runs a traversal from start and returns the visited nodes.
// A nil descriptor means the default traversal (breadth-first, depth 1).
func (c *Client) TraverseNodes(ctx context.Context, start graph.Entity, desc *traversal.Descriptor) ([]graph.Node, error) {
	list, err := c.traverse(ctx, start, ReturnNodes, desc)
	if err != nil {
		return nil, err
	}
	return decodeList(list, graph.DecodeNode)
}

// TraverseRelationships runs a traversal from start and returns the
// traversed relationships.
func (c *Client) TraverseRelationships(ctx context.Context, start graph.Entity, desc *traversal.Descriptor) ([]graph.Relationship, error) {
	list, err := c.traverse(ctx, start, ReturnRelationships, desc)
	if err != nil {
		return nil, err
	}
	return decodeList(list, graph.DecodeRelationship)
}

// TraversePaths runs a traversal from start and returns identifier paths.
func (c *Client) TraversePaths(ctx context.Context, start graph.Entity, desc *traversal.Descriptor) ([]*graph.RefPath, error) {
	list, err := c.traverse(ctx, start, ReturnPaths, desc)
	if err != nil {
		return nil, err
	}
	return decodeList(list, graph.DecodeRefPath)
}

// TraverseFullPaths runs a traversal from start and returns fully
// hydrated paths.
func (c *Client) TraverseFullPaths(ctx context.Context, start graph.Entity, desc *traversal.Descriptor) ([]*graph.FullPath, error) {
	list, err := c.traverse(ctx, start, ReturnFullPaths, desc)
	if err != nil {
		return nil, err
	}
	return decodeList(list, graph.DecodeFullPath)
}

func (c *Client) traverse(ctx context.Context, start graph.Entity, returnType ReturnType, desc *traversal.Descriptor) ([]json.RawMessage, error) {
	if desc == nil {
		desc = traversal.New()
	}

	target := start.ResourcePath() + "/traverse/" + string(returnType)
	c.logger.Debug("traversal request",
		zap.String("start", start.ResourcePath()),
		zap.String("return_type", string(returnType)),
	)

	list, err := c.transport.CreateWithBody(ctx, target, desc)
	if err != nil {
		return nil, mapNotFound(err, start)
	}
	return list, nil
}

// mapNotFound translates a transport-level 404 into an
// EntityNotFoundError for the traversal start point. Every other error
// passes through untouched.
func mapNotFound(err error, start graph.Entity) error {
	var statusErr *httpclient.UnexpectedStatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return &EntityNotFoundError{Path: start.ResourcePath()}
	}
	return err
}

func decodeList[T any](items []json.RawMessage, decode func(json.RawMessage) (T, error)) ([]T, error) {
	out := make([]T, 0, len(items))
	for _, item := range items {
		v, err := decode(item)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
