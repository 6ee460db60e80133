package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/graftdb/graft-go/cmd/util"
	"github.com/graftdb/graft-go/pkg/client"
	"github.com/graftdb/graft-go/pkg/errors"
	"github.com/graftdb/graft-go/pkg/graph"
	"github.com/graftdb/graft-go/pkg/httpclient"
	"github.com/graftdb/graft-go/pkg/logger"
	"github.com/graftdb/graft-go/pkg/traversal"
)

const (
	apiURLFlag          = "api-url"
	returnTypeFlag      = "return"
	orderFlag           = "order"
	uniquenessFlag      = "uniqueness"
	maxDepthFlag        = "max-depth"
	pruneEvaluatorFlag  = "prune-evaluator"
	returnFilterFlag    = "return-filter"
	returnEvaluatorFlag = "return-evaluator"
	relationshipFlag    = "relationship"
	pagedFlag           = "paged"
	pageSizeFlag        = "page-size"
	leaseTimeFlag       = "lease-time"
	tracingFlag         = "trace"
	logFormatFlag       = "log-format"
	logLevelFlag        = "log-level"
)

// NewTraverseCommand returns the command that runs a traversal from a
// starting entity and prints the results as JSON lines.
func NewTraverseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "traverse <start-ref>",
		Short: "Run a graph traversal from a starting node or relationship",
		Long: `Run a graph traversal from a starting node or relationship, identified by its resource path (e.g. /node/42).

Results are printed to stdout as one JSON document per line. With --paged, pages are fetched and printed one at a time until the server reports no further data.`,
		RunE: traverse,
		Args: cobra.ExactArgs(1),
	}

	flags := cmd.Flags()
	flags.String(apiURLFlag, "http://localhost:7474/db/data", "base URL of the server's data API")
	flags.String(returnTypeFlag, string(client.ReturnNodes), "result shape: node, relationship, path or fullpath")
	flags.String(orderFlag, "breadth_first", "traversal order: breadth_first or depth_first")
	flags.String(uniquenessFlag, "", "uniqueness rule: none, node_global, relationship_global, node_path or relationship_path")
	flags.Int(maxDepthFlag, 1, "maximum traversal depth")
	flags.String(pruneEvaluatorFlag, "", "javascript prune expression evaluated server-side (overrides --max-depth)")
	flags.String(returnFilterFlag, "all", "builtin return filter: all or all_but_start_node")
	flags.String(returnEvaluatorFlag, "", "javascript return expression evaluated server-side (overrides --return-filter)")
	flags.StringArray(relationshipFlag, nil, "relationship filter as TYPE:out|in|all, repeatable")
	flags.Bool(pagedFlag, false, "fetch results page by page")
	flags.Int(pageSizeFlag, traversal.DefaultPageSize, "results per page when paged")
	flags.Int(leaseTimeFlag, traversal.DefaultLeaseTime, "seconds an idle page cursor stays valid when paged")
	flags.Bool(tracingFlag, false, "emit an OpenTelemetry client span per request")
	flags.String(logFormatFlag, "text", "log format: text or json")
	flags.String(logLevelFlag, "info", "log level: none, debug, info, warn, error, panic or fatal")

	util.MustBindPFlag(apiURLFlag, flags.Lookup(apiURLFlag))
	util.MustBindEnv(apiURLFlag, "GRAFT_API_URL")
	util.MustBindPFlag(logFormatFlag, flags.Lookup(logFormatFlag))
	util.MustBindEnv(logFormatFlag, "GRAFT_LOG_FORMAT")
	util.MustBindPFlag(logLevelFlag, flags.Lookup(logLevelFlag))
	util.MustBindEnv(logLevelFlag, "GRAFT_LOG_LEVEL")

	return cmd
}

func traverse(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	log, err := logger.NewLogger(viper.GetString(logFormatFlag), viper.GetString(logLevelFlag))
	if err != nil {
		return err
	}

	desc, err := descriptorFromFlags(cmd)
	if err != nil {
		return err
	}

	returnType, err := parseReturnType(mustGetString(flags, returnTypeFlag))
	if err != nil {
		return err
	}

	transportOpts := []httpclient.Option{httpclient.WithLogger(log)}
	if ok, _ := flags.GetBool(tracingFlag); ok {
		transportOpts = append(transportOpts, httpclient.WithTracing())
	}

	transport, err := httpclient.NewClient(viper.GetString(apiURLFlag), transportOpts...)
	if err != nil {
		return err
	}

	c := client.New(transport, client.WithLogger(log))
	start := graph.Ref(args[0])
	ctx := cmd.Context()

	if paged, _ := flags.GetBool(pagedFlag); paged {
		params := traversal.PageParams{
			PageSize:  mustGetInt(flags, pageSizeFlag),
			LeaseTime: mustGetInt(flags, leaseTimeFlag),
		}
		return errors.ErrorWithStack(runPaged(ctx, cmd.OutOrStdout(), c, start, returnType, desc, params))
	}

	return errors.ErrorWithStack(runSingleShot(ctx, cmd.OutOrStdout(), log, c, start, returnType, desc))
}

func runSingleShot(ctx context.Context, out io.Writer, log logger.Logger, c *client.Client, start graph.Ref, returnType client.ReturnType, desc *traversal.Descriptor) error {
	switch returnType {
	case client.ReturnNodes:
		nodes, err := c.TraverseNodes(ctx, start, desc)
		if err != nil {
			return err
		}
		return printAll(out, nodes)
	case client.ReturnRelationships:
		relationships, err := c.TraverseRelationships(ctx, start, desc)
		if err != nil {
			return err
		}
		return printAll(out, relationships)
	case client.ReturnPaths:
		paths, err := c.TraversePaths(ctx, start, desc)
		if err != nil {
			return err
		}
		for _, p := range paths {
			if p.DirectionsSynthesized() {
				log.Warn("server omitted path directions; all edges reported as outgoing",
					zap.String("start", string(start)))
				break
			}
		}
		return printAll(out, paths)
	case client.ReturnFullPaths:
		paths, err := c.TraverseFullPaths(ctx, start, desc)
		if err != nil {
			return err
		}
		return printAll(out, paths)
	default:
		return fmt.Errorf("unknown return type %q", returnType)
	}
}

func runPaged(ctx context.Context, out io.Writer, c *client.Client, start graph.Ref, returnType client.ReturnType, desc *traversal.Descriptor, params traversal.PageParams) error {
	switch returnType {
	case client.ReturnNodes:
		paged, err := client.TraverseNodesPaged(ctx, c, start, desc, params)
		if err != nil {
			return err
		}
		return drainPages(ctx, out, paged)
	case client.ReturnRelationships:
		paged, err := client.TraverseRelationshipsPaged(ctx, c, start, desc, params)
		if err != nil {
			return err
		}
		return drainPages(ctx, out, paged)
	case client.ReturnPaths:
		paged, err := client.TraversePathsPaged(ctx, c, start, desc, params)
		if err != nil {
			return err
		}
		return drainPages(ctx, out, paged)
	case client.ReturnFullPaths:
		paged, err := client.TraverseFullPathsPaged(ctx, c, start, desc, params)
		if err != nil {
			return err
		}
		return drainPages(ctx, out, paged)
	default:
		return fmt.Errorf("unknown return type %q", returnType)
	}
}

func drainPages[T any](ctx context.Context, out io.Writer, paged *client.Paged[T]) error {
	for !paged.IsDone() {
		if err := printAll(out, paged.Values()); err != nil {
			return err
		}
		if err := paged.Advance(ctx); err != nil {
			return err
		}
	}
	return nil
}

func printAll[T any](out io.Writer, values []T) error {
	enc := json.NewEncoder(out)
	for _, v := range values {
		if err := enc.Encode(v); err != nil {
			return err
		}
	}
	return nil
}

func descriptorFromFlags(cmd *cobra.Command) (*traversal.Descriptor, error) {
	flags := cmd.Flags()
	var opts []traversal.Option

	switch order := mustGetString(flags, orderFlag); order {
	case "breadth_first":
		opts = append(opts, traversal.WithOrder(traversal.BreadthFirst))
	case "depth_first":
		opts = append(opts, traversal.WithOrder(traversal.DepthFirst))
	default:
		return nil, fmt.Errorf("unknown order %q", order)
	}

	relationships, _ := flags.GetStringArray(relationshipFlag)
	for _, spec := range relationships {
		relType, direction, err := parseRelationshipFilter(spec)
		if err != nil {
			return nil, err
		}
		opts = append(opts, traversal.WithRelationship(relType, direction))
	}

	if u := mustGetString(flags, uniquenessFlag); u != "" {
		switch uniqueness := traversal.Uniqueness(u); uniqueness {
		case traversal.UniquenessNone,
			traversal.UniquenessNodeGlobal,
			traversal.UniquenessRelationshipGlobal,
			traversal.UniquenessNodePath,
			traversal.UniquenessRelationshipPath:
			opts = append(opts, traversal.WithUniqueness(uniqueness))
		default:
			return nil, fmt.Errorf("unknown uniqueness %q", u)
		}
	}

	if prune := mustGetString(flags, pruneEvaluatorFlag); prune != "" {
		opts = append(opts, traversal.WithPruneEvaluator(prune))
	} else {
		opts = append(opts, traversal.WithMaxDepth(mustGetInt(flags, maxDepthFlag)))
	}

	if ret := mustGetString(flags, returnEvaluatorFlag); ret != "" {
		opts = append(opts, traversal.WithReturnEvaluator(ret))
	} else {
		switch filter := mustGetString(flags, returnFilterFlag); filter {
		case "all":
			opts = append(opts, traversal.WithReturnFilter(traversal.ReturnAll))
		case "all_but_start_node":
			opts = append(opts, traversal.WithReturnFilter(traversal.ReturnAllButStartNode))
		default:
			return nil, fmt.Errorf("unknown return filter %q", filter)
		}
	}

	return traversal.New(opts...), nil
}

func parseReturnType(s string) (client.ReturnType, error) {
	switch returnType := client.ReturnType(s); returnType {
	case client.ReturnNodes, client.ReturnRelationships, client.ReturnPaths, client.ReturnFullPaths:
		return returnType, nil
	default:
		return "", fmt.Errorf("unknown return type %q", s)
	}
}

func parseRelationshipFilter(spec string) (string, traversal.Direction, error) {
	relType, directionSpec, found := strings.Cut(spec, ":")
	if !found || relType == "" {
		return "", 0, fmt.Errorf("relationship filter %q: want TYPE:out|in|all", spec)
	}
	switch directionSpec {
	case "out":
		return relType, traversal.Outgoing, nil
	case "in":
		return relType, traversal.Incoming, nil
	case "all":
		return relType, traversal.Any, nil
	default:
		return "", 0, fmt.Errorf("relationship filter %q: unknown direction %q", spec, directionSpec)
	}
}

func mustGetString(flags *pflag.FlagSet, name string) string {
	v, err := flags.GetString(name)
	if err != nil {
		panic(err)
	}
	return v
}

func mustGetInt(flags *pflag.FlagSet, name string) int {
	v, err := flags.GetInt(name)
	if err != nil {
		panic(err)
	}
	return v
}
