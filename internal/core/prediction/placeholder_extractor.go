package prediction

import (
	"context"

	"github.com/markdave123-py/Moleqa/internal/core"
)

// PlaceholderSmiles is celecoxib, handed out for every uploaded file.
const PlaceholderSmiles = "CC1=CC=C(C=C1)C2=CC(=NN2C3=CC=C(C=C3)S(=O)(=O)N)C(F)(F)F"

var _ core.StructureExtractor = PlaceholderExtractor{}

// PlaceholderExtractor stands in for real file-to-structure conversion.
// It ignores the file and returns PlaceholderSmiles; a converter that parses
// mol/pdb/sdf content implements the same StructureExtractor interface.
type PlaceholderExtractor struct{}

func (PlaceholderExtractor) ExtractSmiles(ctx context.Context, _ string, _ []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return PlaceholderSmiles, nil
}
