package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuantumDepth(t *testing.T) {
	for label, layers := range map[string]int{
		"Low (1-2 layers)":    1,
		"Medium (3-5 layers)": 3,
		"High (6+ layers)":    6,
	} {
		d, ok := ParseQuantumDepth(label)
		require.True(t, ok, label)
		assert.Equal(t, layers, d.Layers)
	}

	_, ok := ParseQuantumDepth("Medium")
	assert.False(t, ok)
}

func TestQuantumDepth_JSONIsLabel(t *testing.T) {
	b, err := json.Marshal(Analysis{QuantumDepth: &QuantumDepthMedium})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"quantum_depth":"Medium (3-5 layers)"`)

	var a Analysis
	require.NoError(t, json.Unmarshal(b, &a))
	require.NotNil(t, a.QuantumDepth)
	assert.Equal(t, QuantumDepthMedium, *a.QuantumDepth)

	assert.Error(t, json.Unmarshal([]byte(`{"quantum_depth":"Deep"}`), &a))
}

func TestEnumsValid(t *testing.T) {
	assert.True(t, ModelQuantumGNN.Valid())
	assert.False(t, ModelType("CNN").Valid())
	assert.True(t, PredictBBBPermeability.Valid())
	assert.False(t, PredictionType("Potency").Valid())
}

func TestTimestamp(t *testing.T) {
	ts := Timestamp(time.Date(2024, 3, 9, 14, 5, 7, 123456789, time.FixedZone("CET", 3600)))
	assert.Equal(t, "2024-03-09T13:05:07.123Z", ts)
}

func TestUser_PasswordNotSerialized(t *testing.T) {
	b, err := json.Marshal(User{ID: 1, Username: "ada", Password: "secret"})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "secret")
}
