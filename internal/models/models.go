package models

import (
	"time"
)

// TimestampLayout is the string form used for every created_at field.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Timestamp formats t the way records store their creation time.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// User is an account record. Password is stored as given.
type User struct {
	ID       int64  `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
	Password string `db:"password" json:"-"`
}

type InsertUser struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Molecule represents a submitted chemical structure.
type Molecule struct {
	ID         int64   `db:"id" json:"id"`
	Name       string  `db:"name" json:"name"`
	Smiles     string  `db:"smiles" json:"smiles"`
	FileFormat *string `db:"file_format" json:"file_format"` // mol | pdb | sdf, nil without upload
	FileKey    string  `db:"file_key" json:"file_key,omitempty"`
	CreatedAt  string  `db:"created_at" json:"created_at"`
	UserID     *int64  `db:"user_id" json:"user_id"`
}

type InsertMolecule struct {
	Name       string  `json:"name"`
	Smiles     string  `json:"smiles" validate:"required"`
	FileFormat *string `json:"file_format" validate:"omitnil,oneof=mol pdb sdf"`
	FileKey    string  `json:"file_key"`
	UserID     *int64  `json:"user_id" validate:"omitnil,gt=0"`
}

// Analysis is one mock prediction run against a molecule.
type Analysis struct {
	ID             int64           `db:"id" json:"id"`
	MoleculeID     int64           `db:"molecule_id" json:"molecule_id"`
	ModelType      ModelType       `db:"model_type" json:"model_type"`
	PredictionType PredictionType  `db:"prediction_type" json:"prediction_type"`
	QuantumDepth   *QuantumDepth   `db:"quantum_depth" json:"quantum_depth"`
	Results        AnalysisResults `db:"results" json:"results"`
	CreatedAt      string          `db:"created_at" json:"created_at"`
}

type InsertAnalysis struct {
	MoleculeID     int64           `json:"molecule_id" validate:"required,gt=0"`
	ModelType      ModelType       `json:"model_type" validate:"required,model_type"`
	PredictionType PredictionType  `json:"prediction_type" validate:"required,prediction_type"`
	QuantumDepth   *QuantumDepth   `json:"quantum_depth"`
	Results        AnalysisResults `json:"results"`
}

// AnalysisResults is the payload rendered by the results page.
type AnalysisResults struct {
	BindingAffinity    BindingAffinity    `json:"binding_affinity"`
	BBBPermeability    GradedScore        `json:"bbb_permeability"`
	ToxicityRisk       GradedScore        `json:"toxicity_risk"`
	Solubility         Solubility         `json:"solubility"`
	QuantumEnhancement QuantumEnhancement `json:"quantum_enhancement"`
}

type BindingAffinity struct {
	Value      float64 `json:"value"`
	Confidence float64 `json:"confidence"`
}

// GradedScore is a High/Medium/Low verdict with its underlying 0..1 score.
type GradedScore struct {
	Value      string  `json:"value"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
}

type Solubility struct {
	Value      float64 `json:"value"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
}

type QuantumEnhancement struct {
	Improvement  float64 `json:"improvement"`
	CircuitDepth int     `json:"circuit_depth"`
	Qubits       int     `json:"qubits"`
}
