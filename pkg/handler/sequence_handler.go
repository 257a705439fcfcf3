package handler

import (
	"bytes"
	"net/http"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/yumyai/protlit/logger"
	"github.com/yumyai/protlit/pkg/rcsb"
	"github.com/yumyai/protlit/pkg/structure"
)

// GetStructureSequenceHandler returns the ATOM-derived chain sequences as FASTA.
func (app *AppContext) GetStructureSequenceHandler(w http.ResponseWriter, r *http.Request) {
	pdbID, err := rcsb.NormalizeID(r.PathValue("pdb_id"))
	if err != nil {
		http.Error(w, "Invalid PDB ID", http.StatusBadRequest)
		return
	}

	data, err := app.loadStructure(r.Context(), pdbID)
	if err != nil {
		logger.Error("load structure", zap.String("pdb_id", pdbID), zap.Error(err))
		http.Error(w, "Structure not available", http.StatusBadGateway)
		return
	}

	s, err := structure.ParsePDB(bytes.NewReader(data))
	if err != nil {
		logger.Error("parse structure", zap.String("pdb_id", pdbID), zap.Error(err))
		status := http.StatusInternalServerError
		if errors.Is(err, structure.ErrNoAtoms) {
			status = http.StatusUnprocessableEntity
		}
		http.Error(w, "Structure could not be parsed", status)
		return
	}

	var buf bytes.Buffer
	if err := structure.WriteFASTA(&buf, pdbID, s.Sequences()); err != nil {
		http.Error(w, "Could not write FASTA", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
