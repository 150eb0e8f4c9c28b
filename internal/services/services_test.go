package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/Moleqa/internal/core"
	db "github.com/markdave123-py/Moleqa/internal/core/database"
	objectclient "github.com/markdave123-py/Moleqa/internal/core/object-client"
	"github.com/markdave123-py/Moleqa/internal/core/prediction"
	"github.com/markdave123-py/Moleqa/internal/models"
	"github.com/markdave123-py/Moleqa/internal/schema"
)

const aspirin = "CC(=O)OC1=CC=CC=C1C(=O)O"

type fixture struct {
	db        *db.MemoryClient
	storage   *objectclient.MemoryClient
	metrics   *Metrics
	molecules *MoleculeService
	analyses  *AnalysisService
	users     *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		db:      db.NewMemoryClient(),
		storage: objectclient.NewMemoryClient(),
		metrics: NewMetrics(prometheus.NewRegistry()),
	}
	f.molecules = NewMoleculeService(f.db, f.storage, prediction.PlaceholderExtractor{}, f.metrics)
	f.analyses = NewAnalysisService(f.db, prediction.NewMockPredictor(), f.metrics)
	f.users = NewUserService(f.db, f.metrics)
	return f
}

func requireValidation(t *testing.T, err error) *schema.ValidationError {
	t.Helper()
	var verr *schema.ValidationError
	require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
	return verr
}

func TestMoleculeService_SubmitSmiles(t *testing.T) {
	f := newFixture(t)

	m, err := f.molecules.Submit(context.Background(), SubmitMoleculeInput{
		Fields: map[string]any{"smiles": aspirin, "name": "Aspirin"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), m.ID)
	assert.Equal(t, "Aspirin", m.Name)
	assert.Equal(t, aspirin, m.Smiles)
	assert.Nil(t, m.FileFormat)
	assert.Nil(t, m.UserID)
	assert.Equal(t, 0, f.storage.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.molecules.WithLabelValues("smiles")))

	got, err := f.molecules.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestMoleculeService_DefaultName(t *testing.T) {
	f := newFixture(t)

	m, err := f.molecules.Submit(context.Background(), SubmitMoleculeInput{
		Fields: map[string]any{"smiles": "CCO", "name": "   "},
	})
	require.NoError(t, err)
	assert.Regexp(t, `^Molecule_[0-9a-f]{6}$`, m.Name)
}

func TestMoleculeService_SubmitFileOnly(t *testing.T) {
	f := newFixture(t)
	data := []byte("aspirin\n  mol block\n")

	m, err := f.molecules.Submit(context.Background(), SubmitMoleculeInput{
		File:   &FileUpload{Filename: "My Aspirin.MOL", Size: int64(len(data)), Data: data},
		Fields: map[string]any{"user_id": int64(3)},
	})
	require.NoError(t, err)
	assert.Equal(t, prediction.PlaceholderSmiles, m.Smiles)
	require.NotNil(t, m.FileFormat)
	assert.Equal(t, "mol", *m.FileFormat)
	require.NotNil(t, m.UserID)
	assert.Equal(t, int64(3), *m.UserID)
	assert.True(t, strings.HasPrefix(m.FileKey, "molecules/"))
	assert.True(t, strings.HasSuffix(m.FileKey, "/My_Aspirin.MOL"))
	assert.Equal(t, 1, f.storage.Len())

	rc, got, err := f.molecules.OpenFile(context.Background(), m.ID)
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, data, body)
	assert.Equal(t, m.ID, got.ID)
}

func TestMoleculeService_FileKeepsProvidedSmiles(t *testing.T) {
	f := newFixture(t)

	m, err := f.molecules.Submit(context.Background(), SubmitMoleculeInput{
		File:   &FileUpload{Filename: "x.sdf", Size: 1, Data: []byte("x")},
		Fields: map[string]any{"smiles": "CCO"},
	})
	require.NoError(t, err)
	assert.Equal(t, "CCO", m.Smiles)
	assert.Equal(t, "sdf", *m.FileFormat)
}

func TestMoleculeService_SubmitRejections(t *testing.T) {
	tests := []struct {
		name    string
		in      SubmitMoleculeInput
		field   string
		reason  string
		message string
	}{
		{
			name:    "nothing supplied",
			in:      SubmitMoleculeInput{Fields: map[string]any{}},
			field:   "smiles",
			reason:  schema.ReasonMissing,
			message: msgSmilesOrFile,
		},
		{
			name:    "blank smiles",
			in:      SubmitMoleculeInput{Fields: map[string]any{"smiles": "  "}},
			field:   "file",
			reason:  schema.ReasonMissing,
			message: msgSmilesOrFile,
		},
		{
			name:    "unsupported extension",
			in:      SubmitMoleculeInput{File: &FileUpload{Filename: "notes.txt", Size: 3, Data: []byte("abc")}},
			field:   "file",
			reason:  schema.ReasonUnsupported,
			message: msgInvalidFile,
		},
		{
			name:    "too large",
			in:      SubmitMoleculeInput{File: &FileUpload{Filename: "big.pdb", Size: MaxUploadBytes + 1}},
			field:   "file",
			reason:  schema.ReasonTooLarge,
			message: msgFileTooLarge,
		},
		{
			name:    "smiles wrong type",
			in:      SubmitMoleculeInput{Fields: map[string]any{"smiles": true}},
			field:   "smiles",
			reason:  schema.ReasonWrongType,
			message: msgInvalidFields,
		},
		{
			name:    "non-positive user id",
			in:      SubmitMoleculeInput{Fields: map[string]any{"smiles": "C", "user_id": int64(0)}},
			field:   "user_id",
			reason:  schema.ReasonOutOfRange,
			message: msgInvalidFields,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.molecules.Submit(context.Background(), tt.in)
			verr := requireValidation(t, err)
			assert.Equal(t, tt.message, verr.Message)
			assert.Equal(t, tt.reason, verr.Reason(tt.field))
			assert.Equal(t, 0, f.storage.Len())

			// a rejected submission consumes no id
			m, err := f.molecules.Submit(context.Background(), SubmitMoleculeInput{Fields: map[string]any{"smiles": "C"}})
			require.NoError(t, err)
			assert.Equal(t, int64(1), m.ID)
		})
	}
}

func TestMoleculeService_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.molecules.Get(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, "Molecule not found")

	_, err = f.molecules.FindBySmiles(ctx, "CCO")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.molecules.FindBySmiles(ctx, " ")
	requireValidation(t, err)

	m, err := f.molecules.Submit(ctx, SubmitMoleculeInput{Fields: map[string]any{"smiles": "CCO"}})
	require.NoError(t, err)
	_, _, err = f.molecules.OpenFile(ctx, m.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, "Molecule file not found")

	found, err := f.molecules.FindBySmiles(ctx, "CCO")
	require.NoError(t, err)
	assert.Equal(t, m.ID, found.ID)
}

func TestAnalysisService_Submit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.molecules.Submit(ctx, SubmitMoleculeInput{Fields: map[string]any{"smiles": aspirin, "name": "Aspirin"}})
	require.NoError(t, err)

	a, err := f.analyses.Submit(ctx, map[string]any{
		"molecule_id":     int64(1),
		"model_type":      "Quantum GNN",
		"prediction_type": "Toxicity",
		"quantum_depth":   "Medium (3-5 layers)",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int64(1), a.MoleculeID)
	assert.Equal(t, models.ModelQuantumGNN, a.ModelType)
	assert.Equal(t, models.PredictToxicity, a.PredictionType)
	require.NotNil(t, a.QuantumDepth)
	assert.Equal(t, models.QuantumDepthMedium, *a.QuantumDepth)
	assert.Equal(t, 3, a.Results.QuantumEnhancement.CircuitDepth)
	assert.Equal(t, 8, a.Results.QuantumEnhancement.Qubits)
	assert.Equal(t, 8.2, a.Results.BindingAffinity.Value)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.analyses.WithLabelValues("Quantum GNN", "Toxicity")))

	b, err := f.analyses.Submit(ctx, map[string]any{
		"molecule_id":     int64(1),
		"model_type":      "GNN",
		"prediction_type": "Solubility",
	})
	require.NoError(t, err)
	assert.Nil(t, b.QuantumDepth)
	assert.Equal(t, 0, b.Results.QuantumEnhancement.CircuitDepth)

	list, err := f.analyses.ListByMolecule(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, b.ID, list[1].ID)

	got, err := f.analyses.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b, got)
}

func TestAnalysisService_UnknownMoleculeStoresNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.analyses.Submit(ctx, map[string]any{
		"molecule_id":     int64(999),
		"model_type":      "Hybrid Classical-Quantum",
		"prediction_type": "Binding Affinity",
		"quantum_depth":   "High (6+ layers)",
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, "Molecule not found")

	list, err := f.analyses.ListByMolecule(ctx, 999)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	_, err = f.analyses.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAnalysisService_InvalidRequest(t *testing.T) {
	f := newFixture(t)

	_, err := f.analyses.Submit(context.Background(), map[string]any{
		"molecule_id":     "abc",
		"model_type":      "CNN",
		"prediction_type": "Toxicity",
		"quantum_depth":   "Deep",
	})
	verr := requireValidation(t, err)
	assert.Equal(t, msgInvalidAnalysis, verr.Message)
	assert.Equal(t, schema.ReasonWrongType, verr.Reason("molecule_id"))
	assert.Equal(t, schema.ReasonNotInEnum, verr.Reason("model_type"))
	assert.Equal(t, schema.ReasonNotInEnum, verr.Reason("quantum_depth"))
	assert.Empty(t, verr.Reason("prediction_type"))

	_, err = f.analyses.Submit(context.Background(), map[string]any{
		"model_type":      "GNN",
		"prediction_type": "Toxicity",
	})
	verr = requireValidation(t, err)
	assert.Equal(t, schema.ReasonMissing, verr.Reason("molecule_id"))
}

func TestUserService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.users.Create(ctx, map[string]any{"username": "ada", "password": "secret"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)

	dup, err := f.users.Create(ctx, map[string]any{"username": "ada", "password": "other"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), dup.ID)

	byName, err := f.users.GetByUsername(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	_, err = f.users.Get(ctx, 9)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.users.GetByUsername(ctx, "")
	requireValidation(t, err)

	_, err = f.users.Create(ctx, map[string]any{"username": "bob"})
	verr := requireValidation(t, err)
	assert.Equal(t, schema.ReasonMissing, verr.Reason("password"))
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.users))
}

func TestNilMetricsRecordNothing(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.moleculeCreated("smiles")
		m.analysisCreated("GNN", "Toxicity")
		m.userCreated()
	})
}

type mockDB struct {
	mock.Mock
}

var _ core.DbClient = (*mockDB)(nil)

func (m *mockDB) CreateUser(ctx context.Context, in models.InsertUser) (*models.User, error) {
	args := m.Called(ctx, in)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockDB) GetUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockDB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockDB) CreateMolecule(ctx context.Context, in models.InsertMolecule) (*models.Molecule, error) {
	args := m.Called(ctx, in)
	mol, _ := args.Get(0).(*models.Molecule)
	return mol, args.Error(1)
}

func (m *mockDB) GetMolecule(ctx context.Context, id int64) (*models.Molecule, error) {
	args := m.Called(ctx, id)
	mol, _ := args.Get(0).(*models.Molecule)
	return mol, args.Error(1)
}

func (m *mockDB) GetMoleculeBySmiles(ctx context.Context, smiles string) (*models.Molecule, error) {
	args := m.Called(ctx, smiles)
	mol, _ := args.Get(0).(*models.Molecule)
	return mol, args.Error(1)
}

func (m *mockDB) CreateAnalysis(ctx context.Context, in models.InsertAnalysis) (*models.Analysis, error) {
	args := m.Called(ctx, in)
	a, _ := args.Get(0).(*models.Analysis)
	return a, args.Error(1)
}

func (m *mockDB) GetAnalysis(ctx context.Context, id int64) (*models.Analysis, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*models.Analysis)
	return a, args.Error(1)
}

func (m *mockDB) ListAnalysesByMolecule(ctx context.Context, moleculeID int64) ([]models.Analysis, error) {
	args := m.Called(ctx, moleculeID)
	list, _ := args.Get(0).([]models.Analysis)
	return list, args.Error(1)
}

func (m *mockDB) Close() error { return m.Called().Error(0) }

func TestMoleculeService_UploadRemovedWhenInsertFails(t *testing.T) {
	store := new(mockDB)
	store.On("CreateMolecule", mock.Anything, mock.AnythingOfType("models.InsertMolecule")).
		Return(nil, errors.New("connection reset"))
	storage := objectclient.NewMemoryClient()
	svc := NewMoleculeService(store, storage, prediction.PlaceholderExtractor{}, nil)

	_, err := svc.Submit(context.Background(), SubmitMoleculeInput{
		File: &FileUpload{Filename: "a.pdb", Size: 4, Data: []byte("ATOM")},
	})
	var ierr *InternalError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, "create molecule", ierr.Op)
	assert.Equal(t, 0, storage.Len())
	store.AssertExpectations(t)
}

func TestAnalysisService_StoreFailureIsInternal(t *testing.T) {
	store := new(mockDB)
	store.On("GetMolecule", mock.Anything, int64(5)).Return(nil, errors.New("timeout"))
	store.On("ListAnalysesByMolecule", mock.Anything, int64(5)).Return(nil, nil)
	svc := NewAnalysisService(store, prediction.NewMockPredictor(), nil)

	_, err := svc.Submit(context.Background(), map[string]any{
		"molecule_id":     int64(5),
		"model_type":      "GNN",
		"prediction_type": "Toxicity",
	})
	var ierr *InternalError
	require.ErrorAs(t, err, &ierr)
	assert.NotErrorIs(t, err, ErrNotFound)
	store.AssertNotCalled(t, "CreateAnalysis", mock.Anything, mock.Anything)

	list, err := svc.ListByMolecule(context.Background(), 5)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
	store.AssertExpectations(t)
}
