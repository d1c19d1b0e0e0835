// Package handler exposes the sourcing HTTP endpoints: BOM suggestion runs,
// BOM file uploads, raw part search, and provider discovery.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bomsource_backend/internal/bomimport"
	"bomsource_backend/internal/sourcing/service"
	"bomsource_backend/internal/sourcing/transport"
	"bomsource_backend/platform/httpkit"
	"bomsource_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request body"
	msgValidationFailed = "validation failed"

	// maxUploadBytes caps BOM uploads at 10 MiB.
	maxUploadBytes = 10 << 20
)

// Handler holds the sourcing endpoints' dependencies.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new sourcing handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// SuggestBoms runs a suggestion pipeline over pre-parsed line items.
// POST /api/v1/bom/suggest
func (h *Handler) SuggestBoms(c *gin.Context) {
	var req transport.SuggestBomsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.SuggestBoms(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UploadBom accepts a multipart BOM file (field "bom", CSV or XLSX) with an
// optional YAML sourcing profile (field "profile") and runs the suggestion
// pipeline over the parsed items.
// POST /api/v1/bom/upload
func (h *Handler) UploadBom(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	fileHeader, err := c.FormFile("bom")
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "multipart field 'bom' is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "failed to open uploaded file", nil)
		return
	}
	defer file.Close()

	items, err := bomimport.Parse(file, fileHeader.Filename)
	if httpkit.HandleError(c, err) {
		return
	}

	var providers []string
	if profileHeader, err := c.FormFile("profile"); err == nil {
		profileFile, err := profileHeader.Open()
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "failed to open profile file", nil)
			return
		}
		defer profileFile.Close()

		profile, err := bomimport.ParseProfile(profileFile)
		if httpkit.HandleError(c, err) {
			return
		}
		items = profile.Apply(items)
		providers = profile.Providers
	}

	result, err := h.svc.SuggestBoms(c.Request.Context(), transport.SuggestBomsRequest{
		Items:     items,
		Providers: providers,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// SearchParts fans a free-text part query out to the configured providers.
// POST /api/v1/search/parts
func (h *Handler) SearchParts(c *gin.Context) {
	var req transport.SearchPartsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.SearchParts(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListProviders reports the available and configured provider gateways.
// GET /api/v1/search/providers
func (h *Handler) ListProviders(c *gin.Context) {
	httpkit.OK(c, h.svc.Providers())
}
