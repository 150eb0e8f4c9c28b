package core

import (
	"context"

	"github.com/markdave123-py/Moleqa/internal/models"
)

// StructureExtractor turns an uploaded structure file into a SMILES string.
type StructureExtractor interface {
	ExtractSmiles(ctx context.Context, filename string, data []byte) (string, error)
}

// Predictor computes the property predictions for one analysis request.
type Predictor interface {
	Predict(ctx context.Context, molecule models.Molecule, params PredictionParams) (models.AnalysisResults, error)
}

// PredictionParams are the validated analysis options.
type PredictionParams struct {
	ModelType      models.ModelType
	PredictionType models.PredictionType
	QuantumDepth   *models.QuantumDepth
}
