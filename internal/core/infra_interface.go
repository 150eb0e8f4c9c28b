package core

import (
	"context"
	"errors"
	"io"

	"github.com/markdave123-py/Moleqa/internal/models"
)

// DbClient defines all persistence operations the services need.
// Get* methods return (nil, nil) when the record does not exist.
type DbClient interface {
	CreateUser(ctx context.Context, in models.InsertUser) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	CreateMolecule(ctx context.Context, in models.InsertMolecule) (*models.Molecule, error)
	GetMolecule(ctx context.Context, id int64) (*models.Molecule, error)
	GetMoleculeBySmiles(ctx context.Context, smiles string) (*models.Molecule, error)

	// CreateAnalysis does not check that MoleculeID exists; callers do.
	CreateAnalysis(ctx context.Context, in models.InsertAnalysis) (*models.Analysis, error)
	GetAnalysis(ctx context.Context, id int64) (*models.Analysis, error)
	// ListAnalysesByMolecule returns analyses in creation order, never nil.
	ListAnalysesByMolecule(ctx context.Context, moleculeID int64) ([]models.Analysis, error)

	Close() error
}

// ErrObjectNotFound is returned by ObjectClient when a key has no object.
var ErrObjectNotFound = errors.New("object not found")

// ObjectClient stores uploaded molecule files in S3 or any object storage.
type ObjectClient interface {
	UploadFile(ctx context.Context, key string, data io.Reader, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, key string) error
	GetObjectReader(ctx context.Context, key string) (io.ReadCloser, error)
}
