package schema

// SmilesInput is the SMILES text form.
type SmilesInput struct {
	Smiles string `json:"smiles" validate:"required,notblank"`
}

// AnalysisParameters is the analysis options form. QuantumDepth is optional.
type AnalysisParameters struct {
	ModelType      string  `json:"model_type" validate:"required,model_type"`
	PredictionType string  `json:"prediction_type" validate:"required,prediction_type"`
	QuantumDepth   *string `json:"quantum_depth" validate:"omitnil,quantum_depth"`
}

// AnalysisRequest is the body of an analysis submission.
type AnalysisRequest struct {
	MoleculeID     int64   `json:"molecule_id" validate:"required,gt=0"`
	ModelType      string  `json:"model_type" validate:"required,model_type"`
	PredictionType string  `json:"prediction_type" validate:"required,prediction_type"`
	QuantumDepth   *string `json:"quantum_depth" validate:"omitnil,quantum_depth"`
}

// Parameters drops the molecule reference.
func (r AnalysisRequest) Parameters() AnalysisParameters {
	return AnalysisParameters{
		ModelType:      r.ModelType,
		PredictionType: r.PredictionType,
		QuantumDepth:   r.QuantumDepth,
	}
}

// MoleculeForm holds the text fields of a molecule submission. Every field is
// optional here; the file/smiles rule is applied by the caller.
type MoleculeForm struct {
	Smiles *string `json:"smiles"`
	Name   *string `json:"name"`
	UserID *int64  `json:"user_id" validate:"omitnil,gt=0"`
}
