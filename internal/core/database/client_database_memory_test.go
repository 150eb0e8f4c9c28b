package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/Moleqa/internal/models"
)

func TestMemoryClient_MoleculeIDsAndRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryClient()
	c.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }

	mol := "mol"
	uid := int64(7)
	first, err := c.CreateMolecule(ctx, models.InsertMolecule{Name: "Aspirin", Smiles: "CC(=O)OC1=CC=CC=C1C(=O)O", FileFormat: &mol, UserID: &uid})
	require.NoError(t, err)
	second, err := c.CreateMolecule(ctx, models.InsertMolecule{Name: "Caffeine", Smiles: "CN1C=NC2=C1C(=O)N(C(=O)N2C)C"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, "2025-01-02T03:04:05.000Z", first.CreatedAt)

	got, err := c.GetMolecule(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	// returned records are copies
	*got.FileFormat = "pdb"
	again, _ := c.GetMolecule(ctx, first.ID)
	assert.Equal(t, "mol", *again.FileFormat)
}

func TestMemoryClient_AbsentIsNilNil(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryClient()

	m, err := c.GetMolecule(ctx, 42)
	assert.NoError(t, err)
	assert.Nil(t, m)

	a, err := c.GetAnalysis(ctx, 1)
	assert.NoError(t, err)
	assert.Nil(t, a)

	u, err := c.GetUserByUsername(ctx, "nobody")
	assert.NoError(t, err)
	assert.Nil(t, u)

	bySmiles, err := c.GetMoleculeBySmiles(ctx, "C")
	assert.NoError(t, err)
	assert.Nil(t, bySmiles)
}

func TestMemoryClient_GetBySmilesReturnsFirstMatch(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryClient()

	_, _ = c.CreateMolecule(ctx, models.InsertMolecule{Name: "a", Smiles: "CCO"})
	_, _ = c.CreateMolecule(ctx, models.InsertMolecule{Name: "b", Smiles: "CCO"})

	m, err := c.GetMoleculeBySmiles(ctx, "CCO")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "a", m.Name)
}

func TestMemoryClient_UsersAllowDuplicateNames(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryClient()

	a, err := c.CreateUser(ctx, models.InsertUser{Username: "ada", Password: "one"})
	require.NoError(t, err)
	b, err := c.CreateUser(ctx, models.InsertUser{Username: "ada", Password: "two"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int64(2), b.ID)

	found, err := c.GetUserByUsername(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, a.ID, found.ID)

	byID, err := c.GetUser(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "two", byID.Password)
}

func TestMemoryClient_ListAnalysesInInsertionOrder(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryClient()

	for _, molID := range []int64{1, 2, 1, 1, 2} {
		_, err := c.CreateAnalysis(ctx, models.InsertAnalysis{
			MoleculeID:     molID,
			ModelType:      models.ModelGNN,
			PredictionType: models.PredictToxicity,
		})
		require.NoError(t, err)
	}

	list, err := c.ListAnalysesByMolecule(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int64{1, 3, 4}, []int64{list[0].ID, list[1].ID, list[2].ID})

	empty, err := c.ListAnalysesByMolecule(ctx, 99)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestMemoryClient_CountersAreIndependent(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryClient()

	_, _ = c.CreateUser(ctx, models.InsertUser{Username: "u", Password: "p"})
	_, _ = c.CreateUser(ctx, models.InsertUser{Username: "v", Password: "p"})
	m, _ := c.CreateMolecule(ctx, models.InsertMolecule{Smiles: "C"})
	a, _ := c.CreateAnalysis(ctx, models.InsertAnalysis{MoleculeID: m.ID, ModelType: models.ModelGNN, PredictionType: models.PredictSolubility})

	assert.Equal(t, int64(1), m.ID)
	assert.Equal(t, int64(1), a.ID)
}

func TestMemoryClient_ConcurrentCreatesGetDistinctIDs(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryClient()

	const n = 200
	ids := make([]int64, n)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			m, err := c.CreateMolecule(gctx, models.InsertMolecule{Smiles: "C"})
			if err != nil {
				return err
			}
			ids[i] = m.ID
			return nil
		})
	}
	require.NoError(t, g.Wait())

	seen := make(map[int64]bool, n)
	for _, id := range ids {
		assert.False(t, seen[id], "id %d assigned twice", id)
		assert.True(t, id >= 1 && id <= n)
		seen[id] = true
	}
}

func TestMemoryClient_CanceledContextConsumesNoID(t *testing.T) {
	c := NewMemoryClient()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.CreateMolecule(ctx, models.InsertMolecule{Smiles: "C"})
	require.ErrorIs(t, err, context.Canceled)

	m, err := c.CreateMolecule(context.Background(), models.InsertMolecule{Smiles: "C"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), m.ID)
}
