package traversal

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultDescriptorEncoding(t *testing.T) {
	body, err := json.Marshal(New())
	require.NoError(t, err)

	require.JSONEq(t,
		`{"order":"breadth_first","relationships":[],"uniqueness":"none","max_depth":1,"return_filter":{"language":"builtin","name":"all"}}`,
		string(body),
	)
}

func TestDescriptorEncodingIsDeterministic(t *testing.T) {
	first, err := json.Marshal(New(WithOrder(DepthFirst), WithMaxDepth(3)))
	require.NoError(t, err)

	second, err := json.Marshal(New(WithOrder(DepthFirst), WithMaxDepth(3)))
	require.NoError(t, err)

	require.Equal(t, string(first), string(second))
}

func TestDescriptorRelationshipFilters(t *testing.T) {
	desc := New(
		WithRelationship("KNOWS", Outgoing),
		WithRelationship("LIKES", Incoming),
		WithRelationship("SEES", Any),
	)

	body, err := json.Marshal(desc)
	require.NoError(t, err)

	require.JSONEq(t,
		`{
			"order":"breadth_first",
			"relationships":[
				{"type":"KNOWS","direction":"out"},
				{"type":"LIKES","direction":"in"},
				{"type":"SEES","direction":"all"}
			],
			"uniqueness":"none",
			"max_depth":1,
			"return_filter":{"language":"builtin","name":"all"}
		}`,
		string(body),
	)
}

func TestDescriptorPruneEvaluator(t *testing.T) {
	desc := New(WithPruneEvaluator("position.length() > 10"))

	body, err := json.Marshal(desc)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))

	require.NotContains(t, decoded, "max_depth")
	require.Equal(t, map[string]any{
		"language": "javascript",
		"body":     "position.length() > 10",
	}, decoded["prune_evaluator"])
}

func TestDescriptorReturnFilters(t *testing.T) {
	body, err := json.Marshal(New(WithReturnFilter(ReturnAllButStartNode)))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	require.Equal(t, map[string]any{
		"language": "builtin",
		"name":     "all_but_start_node",
	}, decoded["return_filter"])

	body, err = json.Marshal(New(WithReturnEvaluator("position.endNode().hasProperty('x')")))
	require.NoError(t, err)

	require.NoError(t, json.Unmarshal(body, &decoded))
	require.Equal(t, map[string]any{
		"language": "javascript",
		"body":     "position.endNode().hasProperty('x')",
	}, decoded["return_filter"])
}

func TestDescriptorUniqueness(t *testing.T) {
	for _, u := range []Uniqueness{
		UniquenessNone,
		UniquenessNodeGlobal,
		UniquenessRelationshipGlobal,
		UniquenessNodePath,
		UniquenessRelationshipPath,
	} {
		body, err := json.Marshal(New(WithUniqueness(u)))
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(body, &decoded))
		require.Equal(t, string(u), decoded["uniqueness"])
	}
}

func TestDirectionStrings(t *testing.T) {
	require.Equal(t, "out", Outgoing.String())
	require.Equal(t, "in", Incoming.String())
	require.Equal(t, "all", Any.String())
}

func TestPageParamsQueryString(t *testing.T) {
	require.Equal(t, "pageSize=25&leaseTime=120", PageParams{PageSize: 25, LeaseTime: 120}.QueryString())
	require.Equal(t, "pageSize=50&leaseTime=60", PageParams{}.QueryString())
	require.Equal(t, "pageSize=50&leaseTime=60", DefaultPageParams().QueryString())
}
