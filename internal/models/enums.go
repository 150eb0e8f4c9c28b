package models

import (
	"encoding/json"
	"fmt"
)

type ModelType string

const (
	ModelGNN           ModelType = "GNN"
	ModelQuantumGNN    ModelType = "Quantum GNN"
	ModelHybridQuantum ModelType = "Hybrid Classical-Quantum"
)

var ModelTypes = []ModelType{ModelGNN, ModelQuantumGNN, ModelHybridQuantum}

func (m ModelType) Valid() bool {
	for _, v := range ModelTypes {
		if m == v {
			return true
		}
	}
	return false
}

type PredictionType string

const (
	PredictBindingAffinity PredictionType = "Binding Affinity"
	PredictToxicity        PredictionType = "Toxicity"
	PredictSolubility      PredictionType = "Solubility"
	PredictBBBPermeability PredictionType = "Blood-Brain Barrier Permeability"
)

var PredictionTypes = []PredictionType{
	PredictBindingAffinity,
	PredictToxicity,
	PredictSolubility,
	PredictBBBPermeability,
}

func (p PredictionType) Valid() bool {
	for _, v := range PredictionTypes {
		if p == v {
			return true
		}
	}
	return false
}

// QuantumDepth pairs the label shown to users with the number of circuit
// layers it stands for. It encodes to JSON as the label alone.
type QuantumDepth struct {
	Label  string
	Layers int
}

var (
	QuantumDepthLow    = QuantumDepth{Label: "Low (1-2 layers)", Layers: 1}
	QuantumDepthMedium = QuantumDepth{Label: "Medium (3-5 layers)", Layers: 3}
	QuantumDepthHigh   = QuantumDepth{Label: "High (6+ layers)", Layers: 6}
)

var QuantumDepths = []QuantumDepth{QuantumDepthLow, QuantumDepthMedium, QuantumDepthHigh}

// ParseQuantumDepth resolves a label to its depth.
func ParseQuantumDepth(label string) (QuantumDepth, bool) {
	for _, d := range QuantumDepths {
		if d.Label == label {
			return d, true
		}
	}
	return QuantumDepth{}, false
}

func (d QuantumDepth) String() string { return d.Label }

func (d QuantumDepth) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Label)
}

func (d *QuantumDepth) UnmarshalJSON(b []byte) error {
	var label string
	if err := json.Unmarshal(b, &label); err != nil {
		return err
	}
	parsed, ok := ParseQuantumDepth(label)
	if !ok {
		return fmt.Errorf("unknown quantum depth %q", label)
	}
	*d = parsed
	return nil
}
