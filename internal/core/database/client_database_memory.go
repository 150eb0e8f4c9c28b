package db

import (
	"context"
	"sync"
	"time"

	"github.com/markdave123-py/Moleqa/internal/core"
	"github.com/markdave123-py/Moleqa/internal/models"
)

var _ core.DbClient = (*MemoryClient)(nil)

// MemoryClient keeps every record in process memory. Each entity type has
// its own lock guarding both its map and its id counter.
type MemoryClient struct {
	now func() time.Time

	userMu sync.RWMutex
	users  map[int64]models.User
	userID int64

	moleculeMu sync.RWMutex
	molecules  map[int64]models.Molecule
	moleculeID int64

	analysisMu    sync.RWMutex
	analyses      map[int64]models.Analysis
	analysisOrder []int64
	analysisID    int64
}

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		now:       time.Now,
		users:     make(map[int64]models.User),
		molecules: make(map[int64]models.Molecule),
		analyses:  make(map[int64]models.Analysis),
	}
}

func (c *MemoryClient) Close() error { return nil }

func (c *MemoryClient) CreateUser(ctx context.Context, in models.InsertUser) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.userMu.Lock()
	defer c.userMu.Unlock()

	c.userID++
	u := models.User{ID: c.userID, Username: in.Username, Password: in.Password}
	c.users[u.ID] = u
	return &u, nil
}

func (c *MemoryClient) GetUser(_ context.Context, id int64) (*models.User, error) {
	c.userMu.RLock()
	defer c.userMu.RUnlock()

	u, ok := c.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// GetUserByUsername returns the earliest created user with that name.
func (c *MemoryClient) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	c.userMu.RLock()
	defer c.userMu.RUnlock()

	for id := int64(1); id <= c.userID; id++ {
		if u, ok := c.users[id]; ok && u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

func (c *MemoryClient) CreateMolecule(ctx context.Context, in models.InsertMolecule) (*models.Molecule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.moleculeMu.Lock()
	defer c.moleculeMu.Unlock()

	c.moleculeID++
	m := models.Molecule{
		ID:         c.moleculeID,
		Name:       in.Name,
		Smiles:     in.Smiles,
		FileFormat: cloneString(in.FileFormat),
		FileKey:    in.FileKey,
		CreatedAt:  models.Timestamp(c.now()),
		UserID:     cloneInt64(in.UserID),
	}
	c.molecules[m.ID] = m
	return copyMolecule(m), nil
}

func (c *MemoryClient) GetMolecule(_ context.Context, id int64) (*models.Molecule, error) {
	c.moleculeMu.RLock()
	defer c.moleculeMu.RUnlock()

	m, ok := c.molecules[id]
	if !ok {
		return nil, nil
	}
	return copyMolecule(m), nil
}

func (c *MemoryClient) GetMoleculeBySmiles(_ context.Context, smiles string) (*models.Molecule, error) {
	c.moleculeMu.RLock()
	defer c.moleculeMu.RUnlock()

	for id := int64(1); id <= c.moleculeID; id++ {
		if m, ok := c.molecules[id]; ok && m.Smiles == smiles {
			return copyMolecule(m), nil
		}
	}
	return nil, nil
}

func (c *MemoryClient) CreateAnalysis(ctx context.Context, in models.InsertAnalysis) (*models.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.analysisMu.Lock()
	defer c.analysisMu.Unlock()

	c.analysisID++
	a := models.Analysis{
		ID:             c.analysisID,
		MoleculeID:     in.MoleculeID,
		ModelType:      in.ModelType,
		PredictionType: in.PredictionType,
		QuantumDepth:   cloneDepth(in.QuantumDepth),
		Results:        in.Results,
		CreatedAt:      models.Timestamp(c.now()),
	}
	c.analyses[a.ID] = a
	c.analysisOrder = append(c.analysisOrder, a.ID)
	return copyAnalysis(a), nil
}

func (c *MemoryClient) GetAnalysis(_ context.Context, id int64) (*models.Analysis, error) {
	c.analysisMu.RLock()
	defer c.analysisMu.RUnlock()

	a, ok := c.analyses[id]
	if !ok {
		return nil, nil
	}
	return copyAnalysis(a), nil
}

func (c *MemoryClient) ListAnalysesByMolecule(_ context.Context, moleculeID int64) ([]models.Analysis, error) {
	c.analysisMu.RLock()
	defer c.analysisMu.RUnlock()

	out := make([]models.Analysis, 0)
	for _, id := range c.analysisOrder {
		if a := c.analyses[id]; a.MoleculeID == moleculeID {
			out = append(out, *copyAnalysis(a))
		}
	}
	return out, nil
}

func copyMolecule(m models.Molecule) *models.Molecule {
	m.FileFormat = cloneString(m.FileFormat)
	m.UserID = cloneInt64(m.UserID)
	return &m
}

func copyAnalysis(a models.Analysis) *models.Analysis {
	a.QuantumDepth = cloneDepth(a.QuantumDepth)
	return &a
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneInt64(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneDepth(p *models.QuantumDepth) *models.QuantumDepth {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
