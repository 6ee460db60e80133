package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/graftdb/graft-go/pkg/traversal"
)

func TestDescriptorFromFlagsDefaults(t *testing.T) {
	cmd := NewTraverseCommand()
	require.NoError(t, cmd.ParseFlags(nil))

	desc, err := descriptorFromFlags(cmd)
	require.NoError(t, err)

	body, err := json.Marshal(desc)
	require.NoError(t, err)
	require.JSONEq(t,
		`{"order":"breadth_first","relationships":[],"uniqueness":"none","max_depth":1,"return_filter":{"language":"builtin","name":"all"}}`,
		string(body),
	)
}

func TestDescriptorFromFlags(t *testing.T) {
	cmd := NewTraverseCommand()
	require.NoError(t, cmd.ParseFlags([]string{
		"--order", "depth_first",
		"--relationship", "KNOWS:out",
		"--relationship", "LIKES:all",
		"--uniqueness", "node_global",
		"--max-depth", "3",
		"--return-filter", "all_but_start_node",
	}))

	desc, err := descriptorFromFlags(cmd)
	require.NoError(t, err)

	require.Equal(t, traversal.DepthFirst, desc.Order())
	require.Equal(t, []traversal.RelationshipFilter{
		{Type: "KNOWS", Direction: traversal.Outgoing},
		{Type: "LIKES", Direction: traversal.Any},
	}, desc.Relationships())
	require.Equal(t, traversal.UniquenessNodeGlobal, desc.Uniqueness())
	require.Equal(t, traversal.MaxDepth(3), desc.Depth())
	require.Equal(t, traversal.ReturnAllButStartNode, desc.ReturnFilter())
}

func TestDescriptorFromFlagsEvaluators(t *testing.T) {
	cmd := NewTraverseCommand()
	require.NoError(t, cmd.ParseFlags([]string{
		"--prune-evaluator", "position.length() > 2",
		"--return-evaluator", "false",
	}))

	desc, err := descriptorFromFlags(cmd)
	require.NoError(t, err)

	require.Equal(t, traversal.PruneEvaluator("position.length() > 2"), desc.Depth())
	require.Equal(t, traversal.ReturnEvaluator("false"), desc.ReturnFilter())
}

func TestDescriptorFromFlagsRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		flags []string
	}{
		{name: "bad_order", flags: []string{"--order", "sideways"}},
		{name: "bad_uniqueness", flags: []string{"--uniqueness", "sometimes"}},
		{name: "bad_return_filter", flags: []string{"--return-filter", "some"}},
		{name: "bad_relationship_direction", flags: []string{"--relationship", "KNOWS:up"}},
		{name: "relationship_without_direction", flags: []string{"--relationship", "KNOWS"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cmd := NewTraverseCommand()
			require.NoError(t, cmd.ParseFlags(test.flags))

			_, err := descriptorFromFlags(cmd)
			require.Error(t, err)
		})
	}
}

func TestParseReturnType(t *testing.T) {
	for _, valid := range []string{"node", "relationship", "path", "fullpath"} {
		_, err := parseReturnType(valid)
		require.NoError(t, err)
	}

	_, err := parseReturnType("edge")
	require.Error(t, err)
}
