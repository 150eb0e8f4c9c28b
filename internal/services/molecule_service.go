package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/markdave123-py/Moleqa/internal/core"
	"github.com/markdave123-py/Moleqa/internal/models"
	"github.com/markdave123-py/Moleqa/internal/schema"
)

// MaxUploadBytes caps an uploaded structure file.
const MaxUploadBytes = 10 << 20

// SupportedFormats are the accepted upload extensions, without the dot.
var SupportedFormats = []string{"mol", "pdb", "sdf"}

const (
	msgSmilesOrFile   = "Either SMILES string or molecular file is required"
	msgInvalidSmiles  = "Invalid SMILES string format"
	msgInvalidFile    = "Invalid file type. Supported formats: .mol, .pdb, .sdf"
	msgFileTooLarge   = "File exceeds the 10 MiB limit"
	msgInvalidFields  = "Invalid molecule fields"
	msgSmilesRequired = "smiles query parameter is required"
)

// FileUpload is a decoded upload, already read into memory.
type FileUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

// SubmitMoleculeInput carries an optional file and the untyped form fields
// smiles, name and user_id.
type SubmitMoleculeInput struct {
	File   *FileUpload
	Fields map[string]any
}

type MoleculeService struct {
	db        core.DbClient
	storage   core.ObjectClient
	extractor core.StructureExtractor
	metrics   *Metrics
}

func NewMoleculeService(db core.DbClient, storage core.ObjectClient, extractor core.StructureExtractor, metrics *Metrics) *MoleculeService {
	return &MoleculeService{db: db, storage: storage, extractor: extractor, metrics: metrics}
}

// Submit validates a molecule submission, archives its file if any, and
// stores the record. No id is consumed when validation fails.
func (s *MoleculeService) Submit(ctx context.Context, in SubmitMoleculeInput) (*models.Molecule, error) {
	form, err := schema.Decode[schema.MoleculeForm](in.Fields)
	if err != nil {
		return nil, rephrase(err, msgInvalidFields)
	}

	var smiles string
	if form.Smiles != nil && strings.TrimSpace(*form.Smiles) != "" {
		smiles = *form.Smiles
	}

	var fileFormat *string
	if in.File != nil {
		format, err := checkUpload(in.File)
		if err != nil {
			return nil, err
		}
		fileFormat = &format

		if smiles == "" {
			smiles, err = s.extractor.ExtractSmiles(ctx, in.File.Filename, in.File.Data)
			if err != nil {
				return nil, internal("extract smiles", err)
			}
		}
	} else if smiles != "" {
		if _, err := schema.Decode[schema.SmilesInput](map[string]any{"smiles": smiles}); err != nil {
			return nil, rephrase(err, msgInvalidSmiles)
		}
	}

	if smiles == "" {
		return nil, schema.Invalid(msgSmilesOrFile,
			schema.FieldError{Field: "smiles", Reason: schema.ReasonMissing},
			schema.FieldError{Field: "file", Reason: schema.ReasonMissing},
		)
	}

	name := ""
	if form.Name != nil {
		name = strings.TrimSpace(*form.Name)
	}
	if name == "" {
		name = defaultMoleculeName()
	}

	insert := models.InsertMolecule{
		Name:       name,
		Smiles:     smiles,
		FileFormat: fileFormat,
		UserID:     form.UserID,
	}
	if err := schema.Check(insert); err != nil {
		return nil, rephrase(err, msgInvalidFields)
	}

	if in.File != nil {
		key := objectKey(uuid.NewString(), in.File.Filename)
		url, err := s.storage.UploadFile(ctx, key, bytes.NewReader(in.File.Data), uploadContentType(in.File))
		if err != nil {
			return nil, internal("archive upload", err)
		}
		log.Printf("archived %s (%d bytes) at %s", in.File.Filename, len(in.File.Data), url)
		insert.FileKey = key
	}

	molecule, err := s.db.CreateMolecule(ctx, insert)
	if err != nil {
		if insert.FileKey != "" {
			if delErr := s.storage.DeleteFile(context.WithoutCancel(ctx), insert.FileKey); delErr != nil {
				log.Printf("cleanup of %s failed: %v", insert.FileKey, delErr)
			}
		}
		return nil, internal("create molecule", err)
	}

	source := "smiles"
	if in.File != nil {
		source = "file"
	}
	s.metrics.moleculeCreated(source)
	return molecule, nil
}

func (s *MoleculeService) Get(ctx context.Context, id int64) (*models.Molecule, error) {
	m, err := s.db.GetMolecule(ctx, id)
	if err != nil {
		return nil, internal("get molecule", err)
	}
	if m == nil {
		return nil, notFound("Molecule", id)
	}
	return m, nil
}

// FindBySmiles returns the first molecule stored with exactly this SMILES.
func (s *MoleculeService) FindBySmiles(ctx context.Context, smiles string) (*models.Molecule, error) {
	if strings.TrimSpace(smiles) == "" {
		return nil, schema.Invalid(msgSmilesRequired, schema.FieldError{Field: "smiles", Reason: schema.ReasonMissing})
	}
	m, err := s.db.GetMoleculeBySmiles(ctx, smiles)
	if err != nil {
		return nil, internal("find molecule by smiles", err)
	}
	if m == nil {
		return nil, notFound("Molecule", smiles)
	}
	return m, nil
}

// OpenFile streams the archived upload of a molecule. The caller closes the
// reader.
func (s *MoleculeService) OpenFile(ctx context.Context, id int64) (io.ReadCloser, *models.Molecule, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if m.FileKey == "" {
		return nil, nil, notFound("Molecule file", id)
	}
	rc, err := s.storage.GetObjectReader(ctx, m.FileKey)
	if errors.Is(err, core.ErrObjectNotFound) {
		return nil, nil, notFound("Molecule file", id)
	}
	if err != nil {
		return nil, nil, internal("open molecule file", err)
	}
	return rc, m, nil
}

func checkUpload(f *FileUpload) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(f.Filename), "."))
	supported := false
	for _, format := range SupportedFormats {
		if ext == format {
			supported = true
			break
		}
	}
	if !supported {
		return "", schema.Invalid(msgInvalidFile, schema.FieldError{Field: "file", Reason: schema.ReasonUnsupported})
	}
	if f.Size > MaxUploadBytes || len(f.Data) > MaxUploadBytes {
		return "", schema.Invalid(msgFileTooLarge, schema.FieldError{Field: "file", Reason: schema.ReasonTooLarge})
	}
	return ext, nil
}

// ContentTypeFor maps a stored file format to its chemical MIME type.
func ContentTypeFor(format string) string {
	switch format {
	case "mol":
		return "chemical/x-mol"
	case "pdb":
		return "chemical/x-pdb"
	case "sdf":
		return "chemical/x-mdl-sdfile"
	default:
		return "application/octet-stream"
	}
}

func uploadContentType(f *FileUpload) string {
	if f.ContentType != "" && f.ContentType != "application/octet-stream" {
		return f.ContentType
	}
	return ContentTypeFor(strings.ToLower(strings.TrimPrefix(filepath.Ext(f.Filename), ".")))
}

func defaultMoleculeName() string {
	return "Molecule_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}

// objectKey creates a consistent storage key layout.
func objectKey(id, filename string) string {
	filename = filepath.Base(strings.TrimSpace(filename))
	filename = strings.ReplaceAll(filename, " ", "_")
	return path.Join("molecules", id, filename)
}

// rephrase swaps the display message of a validation error and passes any
// other error through.
func rephrase(err error, message string) error {
	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		return verr.WithMessage(message)
	}
	return fmt.Errorf("%s: %w", message, err)
}
