package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plusiam/sisu/internal/service"
	appErrors "github.com/plusiam/sisu/pkg/errors"
	"github.com/plusiam/sisu/pkg/response"
)

// ImportHandler accepts legacy .xls uploads.
type ImportHandler struct {
	imports *service.ImportService
	maxSize int64
}

// NewImportHandler constructs a new ImportHandler.
func NewImportHandler(imports *service.ImportService, maxSize int64) *ImportHandler {
	if maxSize <= 0 {
		maxSize = 5 << 20
	}
	return &ImportHandler{imports: imports, maxSize: maxSize}
}

// Roster godoc
// @Summary Import roster from .xls
// @Description Replaces the whole roster with the uploaded sheet.
// @Tags Imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Roster .xls file"
// @Success 200 {object} response.Envelope
// @Router /imports/roster [post]
func (h *ImportHandler) Roster(c *gin.Context) {
	file, ok := h.openUpload(c)
	if !ok {
		return
	}
	defer file.Close() //nolint:errcheck

	summary, err := h.imports.ImportRoster(c.Request.Context(), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Demands godoc
// @Summary Import subject demands from .xls
// @Description Merges uploaded rows into the demand table by subject name.
// @Tags Imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Demands .xls file"
// @Success 200 {object} response.Envelope
// @Router /imports/demands [post]
func (h *ImportHandler) Demands(c *gin.Context) {
	file, ok := h.openUpload(c)
	if !ok {
		return
	}
	defer file.Close() //nolint:errcheck

	summary, err := h.imports.ImportDemands(c.Request.Context(), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

type uploadFile interface {
	Read(p []byte) (int, error)
	Seek(offset int64, whence int) (int64, error)
	Close() error
}

func (h *ImportHandler) openUpload(c *gin.Context) (uploadFile, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file field required"))
		return nil, false
	}
	if header.Size > h.maxSize {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file too large"))
		return nil, false
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open upload"))
		return nil, false
	}
	return file, true
}
