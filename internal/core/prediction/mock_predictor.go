package prediction

import (
	"context"

	"github.com/markdave123-py/Moleqa/internal/core"
	"github.com/markdave123-py/Moleqa/internal/models"
)

var _ core.Predictor = (*MockPredictor)(nil)

// MockPredictor returns a fixed results payload. Only circuit_depth follows
// the request, taken from the requested quantum depth.
type MockPredictor struct {
	Qubits int
}

func NewMockPredictor() *MockPredictor {
	return &MockPredictor{Qubits: 8}
}

func (p *MockPredictor) Predict(ctx context.Context, _ models.Molecule, params core.PredictionParams) (models.AnalysisResults, error) {
	if err := ctx.Err(); err != nil {
		return models.AnalysisResults{}, err
	}

	depth := 0
	if params.QuantumDepth != nil {
		depth = params.QuantumDepth.Layers
	}

	return models.AnalysisResults{
		BindingAffinity: models.BindingAffinity{Value: 8.2, Confidence: 92},
		BBBPermeability: models.GradedScore{Value: "High", Score: 0.88, Confidence: 89},
		ToxicityRisk:    models.GradedScore{Value: "Low", Score: 0.15, Confidence: 96},
		Solubility:      models.Solubility{Value: -2.14, Score: 0.64, Confidence: 87},
		QuantumEnhancement: models.QuantumEnhancement{
			Improvement:  34,
			CircuitDepth: depth,
			Qubits:       p.Qubits,
		},
	}, nil
}
