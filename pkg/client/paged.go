package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/graftdb/graft-go/pkg/graph"
	"github.com/graftdb/graft-go/pkg/traversal"
)

// Paged is a client-side cursor over a paged traversal. It is either
// active, holding the server-issued page cursor and the most recently
// fetched page, or done.
//
// Advance is the only operation that performs I/O. A Paged value is not
// safe for concurrent advancement: two concurrent Advance calls race on
// which page overwrites the state.
type Paged[T any] struct {
	client *Client
	decode func(json.RawMessage) (T, error)

	cursor string
	values []T
	done   bool
}

// TraverseNodesPaged starts a paged node traversal and returns the
// cursor positioned on the first page.
func TraverseNodesPaged(ctx context.Context, c *Client, start graph.Entity, desc *traversal.Descriptor, params traversal.PageParams) (*Paged[graph.Node], error) {
	return traversePaged(ctx, c, start, ReturnNodes, desc, params, graph.DecodeNode)
}

// TraverseRelationshipsPaged starts a paged relationship traversal.
func TraverseRelationshipsPaged(ctx context.Context, c *Client, start graph.Entity, desc *traversal.Descriptor, params traversal.PageParams) (*Paged[graph.Relationship], error) {
	return traversePaged(ctx, c, start, ReturnRelationships, desc, params, graph.DecodeRelationship)
}

// TraversePathsPaged starts a paged identifier-path traversal.
func TraversePathsPaged(ctx context.Context, c *Client, start graph.Entity, desc *traversal.Descriptor, params traversal.PageParams) (*Paged[*graph.RefPath], error) {
	return traversePaged(ctx, c, start, ReturnPaths, desc, params, graph.DecodeRefPath)
}

// TraverseFullPathsPaged starts a paged full-path traversal.
func TraverseFullPathsPaged(ctx context.Context, c *Client, start graph.Entity, desc *traversal.Descriptor, params traversal.PageParams) (*Paged[*graph.FullPath], error) {
	return traversePaged(ctx, c, start, ReturnFullPaths, desc, params, graph.DecodeFullPath)
}

func traversePaged[T any](ctx context.Context, c *Client, start graph.Entity, returnType ReturnType, desc *traversal.Descriptor, params traversal.PageParams, decode func(json.RawMessage) (T, error)) (*Paged[T], error) {
	if desc == nil {
		desc = traversal.New()
	}

	target := start.ResourcePath() + "/paged/traverse/" + string(returnType) + "?" + params.QueryString()
	c.logger.Debug("paged traversal request",
		zap.String("start", start.ResourcePath()),
		zap.String("return_type", string(returnType)),
	)

	list, headers, err := c.transport.CreateWithBodyAndHeaders(ctx, target, desc)
	if err != nil {
		return nil, mapNotFound(err, start)
	}

	values, err := decodeList(list, decode)
	if err != nil {
		return nil, err
	}

	return &Paged[T]{
		client: c,
		decode: decode,
		cursor: pageCursor(headers),
		values: values,
	}, nil
}

// pageCursor extracts the next-page cursor from the response's
// location-style header, keeping only the path component. The cursor is
// opaque and valid only against the originating server; callers must
// never reconstruct or mutate it, because the server binds the paging
// lease to that exact path.
func pageCursor(headers http.Header) string {
	location := headers.Get("Location")
	if location == "" {
		return ""
	}
	u, err := url.Parse(location)
	if err != nil {
		return ""
	}
	return u.Path
}

// Values returns the most recently fetched page. It is empty once the
// traversal is done.
func (p *Paged[T]) Values() []T {
	if p.done {
		return nil
	}
	return p.values
}

// IsDone reports whether the traversal has no further pages.
func (p *Paged[T]) IsDone() bool { return p.done }

// Cursor returns the current page cursor, empty once done.
func (p *Paged[T]) Cursor() string { return p.cursor }

// Advance fetches the next page in place. Once done it is a no-op. The
// cursor itself never changes across pages; only the page contents do.
// An expired server-side lease surfaces as the normal done transition,
// not as an error.
func (p *Paged[T]) Advance(ctx context.Context) error {
	if p.done {
		return nil
	}
	if p.cursor == "" {
		// The server issued no cursor with the first page, so there is
		// nothing to request the next page against.
		p.finish()
		return nil
	}

	list, ok, err := p.client.transport.Retrieve(ctx, p.cursor)
	if err != nil {
		return err
	}
	if !ok {
		p.finish()
		return nil
	}

	values, err := decodeList(list, p.decode)
	if err != nil {
		return err
	}
	p.values = values

	return nil
}

func (p *Paged[T]) finish() {
	p.done = true
	p.cursor = ""
	p.values = nil
}
