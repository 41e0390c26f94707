package trigram

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

func TestDistribution_JSONKeepsOrder(t *testing.T) {
	dist := Distribution{{Next: 'z', Prob: 0.5}, {Next: ' ', Prob: 0.25}, {Next: 'a', Prob: 0.25}}

	data, err := json.Marshal(dist)
	require.NoError(t, err)
	assert.JSONEq(t, `{"z":0.5," ":0.25,"a":0.25}`, string(data))
	assert.Equal(t, `{"z":0.5," ":0.25,"a":0.25}`, string(data))

	var decoded Distribution
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, dist, decoded)

	best, _ := decoded.Best()
	assert.Equal(t, 'z', best)
}

func TestModel_JSONRebuildsTieBreaking(t *testing.T) {
	model := mustBuild(t, "abcyabcx")

	data, err := json.Marshal(model)
	require.NoError(t, err)

	var decoded Model
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, model, decoded)
	assert.Equal(t, Infer("abcabc", model, 4), Infer("abcabc", decoded, 4))
}

func TestDistribution_UnmarshalJSONRejectsBadInput(t *testing.T) {
	var dist Distribution
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &dist))
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"ab":1}`), &dist), ErrInvalidModel)
	assert.Error(t, json.Unmarshal([]byte(`{"a":"x"}`), &dist))

	require.NoError(t, json.Unmarshal([]byte(`null`), &dist))
	assert.Nil(t, dist)
}

func TestModel_MsgpackKeepsOrder(t *testing.T) {
	model := Model{
		"abc": {{Next: 'y', Prob: 0.5}, {Next: 'x', Prob: 0.5}},
		"bcy": {{Next: 'a', Prob: 1}},
	}

	data, err := msgpack.Marshal(model)
	require.NoError(t, err)

	var decoded Model
	require.NoError(t, msgpack.Unmarshal(data, &decoded))
	assert.Equal(t, model, decoded)

	best, _ := decoded["abc"].Best()
	assert.Equal(t, 'y', best)
}

func TestModel_YAMLKeepsOrder(t *testing.T) {
	model := Model{
		"abc": {{Next: 'z', Prob: 0.5}, {Next: ' ', Prob: 0.25}, {Next: '7', Prob: 0.25}},
	}

	data, err := yaml.Marshal(model)
	require.NoError(t, err)

	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal(data, &doc))

	root := doc.Content[0]
	require.Len(t, root.Content, 2)
	assert.Equal(t, "abc", root.Content[0].Value)

	dist := root.Content[1]
	var keys, values []string
	for i := 0; i+1 < len(dist.Content); i += 2 {
		keys = append(keys, dist.Content[i].Value)
		values = append(values, dist.Content[i+1].Value)
	}
	assert.Equal(t, []string{"z", " ", "7"}, keys)
	assert.Equal(t, []string{"0.5", "0.25", "0.25"}, values)
	assert.Equal(t, "!!str", dist.Content[4].Tag)
}
