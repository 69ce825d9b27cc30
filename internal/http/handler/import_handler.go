package handler

import (
	"errors"
	"net/http"

	"github.com/coverline/agency-api/internal/config"
	"github.com/coverline/agency-api/internal/domain"
	"github.com/coverline/agency-api/internal/importer"
	"github.com/coverline/agency-api/internal/service"
	"github.com/coverline/agency-api/internal/tenant"
	"go.uber.org/zap"
)

// ImportHandler handles CSV bulk imports
type ImportHandler struct {
	imports *service.ImportService
	cfg     *config.Config
	logger  *zap.Logger
}

// NewImportHandler creates a new import handler
func NewImportHandler(imports *service.ImportService, cfg *config.Config, logger *zap.Logger) *ImportHandler {
	return &ImportHandler{imports: imports, cfg: cfg, logger: logger}
}

// ImportCSV handles POST /api/v1/imports/csv. Expects a multipart form
// with the spreadsheet under the "file" field. The whole file is
// validated up front; the import is rejected with the list of missing
// columns when required headers cannot be mapped.
func (h *ImportHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	tc := tenant.MustFromContext(r.Context())

	maxBytes := h.cfg.Server.MaxImportSizeMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	file, _, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "missing file upload")
		return
	}
	defer file.Close()

	header, rows, err := importer.ParseCSV(file)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	mapping, err := importer.BuildHeaderMapping(header)
	if err != nil {
		var missing *importer.MissingColumnsError
		if errors.As(err, &missing) {
			respondJSON(w, http.StatusBadRequest, domain.APIError{
				Type:   domain.ErrorTypeValidation,
				Title:  "Unmappable Columns",
				Status: http.StatusBadRequest,
				Detail: missing.Error(),
			})
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	results := importer.ValidateRows(rows, mapping)

	summary, err := h.imports.ImportCSVData(r.Context(), tc.AgencyID, results, nil)
	if err != nil {
		h.logger.Error("import failed",
			zap.String("agency_id", tc.AgencyID),
			zap.Error(err),
		)
		respondWithError(w, http.StatusInternalServerError, "import failed")
		return
	}

	// cap the error report so a pathological file cannot produce an
	// unbounded response
	if limit := h.cfg.Import.MaxErrorReport; limit > 0 && len(summary.Errors) > limit {
		summary.Errors = summary.Errors[:limit]
	}

	respondJSON(w, http.StatusOK, summary)
}
