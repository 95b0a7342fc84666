package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/rtowner/charguess/internal/api/request"
	"github.com/rtowner/charguess/internal/api/response"
	"github.com/rtowner/charguess/internal/model"
	"github.com/rtowner/charguess/internal/services/catalog"
)

// CatalogHandler handles character pool endpoints
type CatalogHandler struct {
	catalog *catalog.Service
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(cat *catalog.Service) *CatalogHandler {
	return &CatalogHandler{
		catalog: cat,
	}
}

// List handles GET /api/v1/characters
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	chars, err := h.catalog.List(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.CharactersFromModel(chars))
}

// Create handles POST /api/v1/characters
func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateCharacterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Name == "" {
		WriteError(w, NewInvalidRequestError("name is required"))
		return
	}
	if req.ImageRef == "" {
		WriteError(w, NewInvalidRequestError("image_ref is required"))
		return
	}

	character, err := h.catalog.Insert(r.Context(), req.Name, req.Rarity, req.ImageRef)
	if err != nil {
		if errors.Is(err, model.ErrValidation) {
			WriteError(w, NewInvalidRequestError("name is required"))
			return
		}
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.CharacterFromModel(character))
}

// Delete handles DELETE /api/v1/characters/{id}
func (h *CatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		WriteError(w, NewInvalidRequestError("id must be an integer"))
		return
	}

	removed, err := h.catalog.DeleteByID(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	if !removed {
		WriteError(w, model.ErrCharacterNotFound)
		return
	}

	response.NoContent(w)
}
