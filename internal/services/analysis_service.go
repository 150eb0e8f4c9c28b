package services

import (
	"context"

	"github.com/markdave123-py/Moleqa/internal/core"
	"github.com/markdave123-py/Moleqa/internal/models"
	"github.com/markdave123-py/Moleqa/internal/schema"
)

const msgInvalidAnalysis = "Invalid analysis parameters"

type AnalysisService struct {
	db        core.DbClient
	predictor core.Predictor
	metrics   *Metrics
}

func NewAnalysisService(db core.DbClient, predictor core.Predictor, metrics *Metrics) *AnalysisService {
	return &AnalysisService{db: db, predictor: predictor, metrics: metrics}
}

// Submit validates the request, resolves the molecule it references, runs
// the predictor and stores the analysis. Nothing is stored when the molecule
// does not exist.
func (s *AnalysisService) Submit(ctx context.Context, input map[string]any) (*models.Analysis, error) {
	req, err := schema.Decode[schema.AnalysisRequest](input)
	if err != nil {
		return nil, rephrase(err, msgInvalidAnalysis)
	}
	params := predictionParams(req.Parameters())

	molecule, err := s.db.GetMolecule(ctx, req.MoleculeID)
	if err != nil {
		return nil, internal("get molecule", err)
	}
	if molecule == nil {
		return nil, notFound("Molecule", req.MoleculeID)
	}

	results, err := s.predictor.Predict(ctx, *molecule, params)
	if err != nil {
		return nil, internal("predict", err)
	}

	insert := models.InsertAnalysis{
		MoleculeID:     molecule.ID,
		ModelType:      params.ModelType,
		PredictionType: params.PredictionType,
		QuantumDepth:   params.QuantumDepth,
		Results:        results,
	}
	if err := schema.Check(insert); err != nil {
		return nil, internal("check analysis", err)
	}

	analysis, err := s.db.CreateAnalysis(ctx, insert)
	if err != nil {
		return nil, internal("create analysis", err)
	}
	s.metrics.analysisCreated(string(analysis.ModelType), string(analysis.PredictionType))
	return analysis, nil
}

func (s *AnalysisService) Get(ctx context.Context, id int64) (*models.Analysis, error) {
	a, err := s.db.GetAnalysis(ctx, id)
	if err != nil {
		return nil, internal("get analysis", err)
	}
	if a == nil {
		return nil, notFound("Analysis", id)
	}
	return a, nil
}

// ListByMolecule never reports not-found; an unknown molecule has no analyses.
func (s *AnalysisService) ListByMolecule(ctx context.Context, moleculeID int64) ([]models.Analysis, error) {
	list, err := s.db.ListAnalysesByMolecule(ctx, moleculeID)
	if err != nil {
		return nil, internal("list analyses", err)
	}
	if list == nil {
		list = []models.Analysis{}
	}
	return list, nil
}

// predictionParams converts a validated form into typed values.
func predictionParams(p schema.AnalysisParameters) core.PredictionParams {
	out := core.PredictionParams{
		ModelType:      models.ModelType(p.ModelType),
		PredictionType: models.PredictionType(p.PredictionType),
	}
	if p.QuantumDepth != nil {
		if d, ok := models.ParseQuantumDepth(*p.QuantumDepth); ok {
			out.QuantumDepth = &d
		}
	}
	return out
}
