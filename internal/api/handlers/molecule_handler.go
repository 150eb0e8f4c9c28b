package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"path"

	"github.com/markdave123-py/Moleqa/internal/schema"
	"github.com/markdave123-py/Moleqa/internal/services"
)

// Request bodies may carry a full-size upload plus form overhead.
const maxRequestBytes = services.MaxUploadBytes + 1<<20

var moleculeFormFields = []string{"smiles", "name", "user_id"}

type MoleculeHandler struct {
	molecules *services.MoleculeService
}

func NewMoleculeHandler(molecules *services.MoleculeService) *MoleculeHandler {
	return &MoleculeHandler{molecules: molecules}
}

// SubmitMolecule accepts multipart (optional file), urlencoded or JSON bodies.
func (h *MoleculeHandler) SubmitMolecule(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	in, err := decodeSubmission(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, schema.Invalid("File exceeds the 10 MiB limit",
				schema.FieldError{Field: "file", Reason: schema.ReasonTooLarge}))
			return
		}
		writeMessage(w, http.StatusBadRequest, "invalid body")
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	molecule, err := h.molecules.Submit(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, molecule)
}

func (h *MoleculeHandler) GetMolecule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, "Molecule not found")
		return
	}
	molecule, err := h.molecules.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, molecule)
}

// FindMolecule looks a molecule up by its exact SMILES string.
func (h *MoleculeHandler) FindMolecule(w http.ResponseWriter, r *http.Request) {
	molecule, err := h.molecules.FindBySmiles(r.Context(), r.URL.Query().Get("smiles"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, molecule)
}

// DownloadFile streams the structure file a molecule was uploaded with.
func (h *MoleculeHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, "Molecule not found")
		return
	}
	rc, molecule, err := h.molecules.OpenFile(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer rc.Close()

	format := ""
	if molecule.FileFormat != nil {
		format = *molecule.FileFormat
	}
	w.Header().Set("Content-Type", services.ContentTypeFor(format))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": path.Base(molecule.FileKey),
	}))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		log.Printf("stream molecule %d file: %v", id, err)
	}
}

func decodeSubmission(r *http.Request) (services.SubmitMoleculeInput, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxRequestBytes); err != nil {
			return services.SubmitMoleculeInput{}, err
		}
		in := services.SubmitMoleculeInput{Fields: formFields(r.MultipartForm.Value)}

		file, header, err := r.FormFile("file")
		if errors.Is(err, http.ErrMissingFile) {
			return in, nil
		}
		if err != nil {
			return services.SubmitMoleculeInput{}, fmt.Errorf("read file part: %w", err)
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, services.MaxUploadBytes+1))
		if err != nil {
			return services.SubmitMoleculeInput{}, fmt.Errorf("read file part: %w", err)
		}
		in.File = &services.FileUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Data:        data,
		}
		return in, nil

	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return services.SubmitMoleculeInput{}, err
		}
		return services.SubmitMoleculeInput{Fields: formFields(r.PostForm)}, nil

	default:
		body, err := decodeObject(r)
		if errors.Is(err, io.EOF) {
			return services.SubmitMoleculeInput{Fields: map[string]any{}}, nil
		}
		if err != nil {
			return services.SubmitMoleculeInput{}, err
		}
		return services.SubmitMoleculeInput{Fields: body}, nil
	}
}

// formFields keeps the first non-empty value of each known field.
func formFields(values map[string][]string) map[string]any {
	out := make(map[string]any, len(moleculeFormFields))
	for _, key := range moleculeFormFields {
		if v := values[key]; len(v) > 0 && v[0] != "" {
			out[key] = v[0]
		}
	}
	return out
}
