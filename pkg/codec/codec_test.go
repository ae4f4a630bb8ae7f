package codec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/gojunqi/pkg/codec"
	"github.com/sandrolain/gojunqi/pkg/types"
)

const treeJSON = `{"op": "steps", "steps": [
	{"step": "filter", "expr": {"op": "gt", "args": [{"op": "local-path", "path": ["age"]}, 40]}},
	{"step": "sort", "keys": [{"expr": {"op": "local-path", "path": ["name"]}, "desc": true}]},
	{"step": "select", "exprs": [{"op": "object", "fields": [
		{"key": "name", "value": {"op": "local-path", "path": ["name"]}},
		{"key": "tags", "value": {"op": "literal", "value": ["a", "b"]}}
	]}]},
	{"step": "aggregate", "names": ["count"]}
]}`

const treeYAML = `
op: steps
steps:
  - step: filter
    expr:
      op: gt
      args:
        - {op: local-path, path: [age]}
        - 40
  - step: sort
    keys:
      - expr: {op: local-path, path: [name]}
        desc: true
  - step: select
    exprs:
      - op: object
        fields:
          - key: name
            value: {op: local-path, path: [name]}
          - key: tags
            value: {op: literal, value: [a, b]}
  - step: aggregate
    names: [count]
`

func TestDecodeJSON(t *testing.T) {
	n, err := codec.DecodeJSON([]byte(treeJSON))
	require.NoError(t, err)

	require.Equal(t, types.NodeSteps, n.Type)
	require.Len(t, n.Steps, 4)

	filter := n.Steps[0]
	assert.Equal(t, types.StepFilter, filter.Type)
	require.Len(t, filter.Exprs, 1)
	gt := filter.Exprs[0]
	assert.Equal(t, types.NodeGt, gt.Type)
	assert.Equal(t, types.NodeLocalPath, gt.Args[0].Type)
	assert.Equal(t, "age", gt.Args[0].Args[0].Value)
	assert.Equal(t, 40.0, gt.Args[1].Value)

	assert.False(t, n.Steps[1].Keys[0].Ascending)

	obj := n.Steps[2].Exprs[0]
	require.Len(t, obj.Fields, 2)
	assert.Equal(t, "tags", obj.Fields[1].Key)
	assert.Equal(t, []interface{}{"a", "b"}, obj.Fields[1].Value.Value)

	assert.Equal(t, []string{"count"}, n.Steps[3].Names)
}

func TestDecodeYAMLMatchesJSON(t *testing.T) {
	fromJSON, err := codec.DecodeJSON([]byte(treeJSON))
	require.NoError(t, err)
	fromYAML, err := codec.DecodeYAML([]byte(treeYAML))
	require.NoError(t, err)

	a, err := codec.EncodeJSON(fromJSON)
	require.NoError(t, err)
	b, err := codec.EncodeJSON(fromYAML)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEncodeRoundTrip(t *testing.T) {
	tree := types.Pipeline(
		types.Select(types.As(types.This(), "p")),
		types.Filter(types.Binary(types.NodeMatches, types.Lit([]interface{}{"^a", "i"}), types.Local("name"))),
		types.Expand(types.Subquery(types.Local("colors"), types.Filter(types.Binary(types.NodeNeq, types.This(), types.Symbol("favorite"))))),
		types.Extend(types.Obj(types.F("n", types.Param(0, "x")))),
		types.Group(types.Local("n")),
		types.Select(types.Cond(types.Lit(types.NullValue), types.Lit(nil), types.Call("upper", "x"))),
	)

	first, err := codec.EncodeJSON(tree)
	require.NoError(t, err)

	decoded, err := codec.DecodeJSON([]byte(first))
	require.NoError(t, err)
	second, err := codec.EncodeJSON(decoded)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	cond := decoded.Steps[5].Exprs[0]
	assert.Equal(t, types.NullValue, cond.Args[0].Value)
	assert.Nil(t, cond.Args[1].Value)
	assert.Equal(t, "p", decoded.Steps[0].Exprs[0].Args[1].Value)
}

func TestEncodeJSONFingerprint(t *testing.T) {
	a, err := codec.EncodeJSON(types.Pipeline(types.Select(types.Obj(types.F("b", 1.0), types.F("a", 2.0)))))
	require.NoError(t, err)
	b, err := codec.EncodeJSON(types.Pipeline(types.Select(types.Obj(types.F("b", 1.0), types.F("a", 2.0)))))
	require.NoError(t, err)
	c, err := codec.EncodeJSON(types.Pipeline(types.Select(types.Obj(types.F("a", 2.0), types.F("b", 1.0)))))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c, "field order is significant")
}

func TestDecodeUnknownTagsSurvive(t *testing.T) {
	n, err := codec.DecodeJSON([]byte(`{"op":"steps","steps":[{"step":"explode","exprs":[{"op":"frobnicate","args":[1]}]}]}`))
	require.NoError(t, err)
	assert.Equal(t, types.StepType("explode"), n.Steps[0].Type)
	assert.Equal(t, types.NodeType("frobnicate"), n.Steps[0].Exprs[0].Type)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"syntax", `{"op":`},
		{"missing op", `{"steps": []}`},
		{"bare list", `{"op":"array","items":[[1,2]]}`},
		{"step without tag", `{"op":"steps","steps":[{"expr":1}]}`},
		{"bad index", `{"op":"param-path","index":1.5}`},
		{"name not string", `{"op":"symbol-path","name":3}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.DecodeJSON([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestDecodeData(t *testing.T) {
	records, err := codec.DecodeData([]byte(`[{"n":"a","v":3},{"n":"b","v":null}]`), codec.FormatJSON)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 3.0, records[0].(map[string]interface{})["v"])
	assert.Equal(t, types.NullValue, records[1].(map[string]interface{})["v"])

	records, err = codec.DecodeData([]byte("- n: a\n  v: 3\n- n: b\n"), codec.FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, 3.0, records[0].(map[string]interface{})["v"])

	_, err = codec.DecodeData([]byte(`{"n":"a"}`), codec.FormatJSON)
	assert.True(t, types.IsCode(err, types.ErrInvalidInput))
}

func TestSelectRecords(t *testing.T) {
	doc, err := codec.Decode([]byte(`{"data":{"items":[{"id":1},{"id":2}]}}`), codec.FormatJSON)
	require.NoError(t, err)

	records, err := codec.SelectRecords(doc, "$.data.items")
	require.NoError(t, err)
	assert.Len(t, records, 2)

	ids, err := codec.SelectRecords(doc, "$.data.items[*].id")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{1.0, 2.0}, ids)

	none, err := codec.SelectRecords(doc, "$.missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, codec.FormatYAML, codec.FormatFor("tree.YAML"))
	assert.Equal(t, codec.FormatYAML, codec.FormatFor("x.yml"))
	assert.Equal(t, codec.FormatJSON, codec.FormatFor("data.json"))
	assert.Equal(t, codec.FormatJSON, codec.FormatFor("stdin"))
}

func TestMarshal(t *testing.T) {
	out, err := codec.Marshal(map[string]interface{}{"b": types.NullValue, "a": []interface{}{1.0, "x"}}, 0)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":[1,"x"],"b":null}`, string(out))
}
