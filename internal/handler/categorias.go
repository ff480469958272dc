package handler

import (
	"net/http"

	"github.com/Crissancio/Backend-Taller/internal/dto"
	"github.com/Crissancio/Backend-Taller/internal/service"

	"github.com/gin-gonic/gin"
)

type CategoriasHandler struct{ svc service.CategoriaService }

func NewCategoriasHandler(svc service.CategoriaService) *CategoriasHandler {
	return &CategoriasHandler{svc: svc}
}

// Crear POST /v1/categorias
func (h *CategoriasHandler) Crear(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	var req dto.CrearCategoriaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), alc, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar GET /v1/categorias?incluir_inactivas=true
func (h *CategoriasHandler) Listar(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), alc, c.Query("incluir_inactivas") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Actualizar PUT /v1/categorias/:id
func (h *CategoriasHandler) Actualizar(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarCategoriaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), alc, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Desactivar DELETE /v1/categorias/:id
func (h *CategoriasHandler) Desactivar(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Desactivar(c.Request.Context(), alc, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
