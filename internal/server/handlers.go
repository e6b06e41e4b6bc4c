package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"tracker/internal/ledger"
	"tracker/internal/models"
	"tracker/internal/operations"
	"tracker/internal/remote"
	"tracker/internal/report"
	"tracker/internal/store"
)

// statusCode maps an operation failure onto an HTTP status.
func statusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case ledger.IsValidation(err):
		return http.StatusBadRequest
	case operations.IsNotFound(err):
		return http.StatusNotFound
	case remote.IsConflict(err), errors.Is(err, store.ErrPendingSaves):
		return http.StatusConflict
	case remote.IsTransport(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeResult(c *gin.Context, res operations.Result, created bool) {
	if !res.Success {
		c.JSON(statusCode(res.Err), res)
		return
	}
	if created {
		c.JSON(http.StatusCreated, res)
		return
	}
	c.JSON(http.StatusOK, res)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, operations.Result{Error: "invalid request body: " + err.Error()})
}

func create[T any](fn func(context.Context, T) operations.Result) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in T
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, err)
			return
		}
		writeResult(c, fn(c.Request.Context(), in), true)
	}
}

func update[T any](fn func(context.Context, string, T) operations.Result) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in T
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, err)
			return
		}
		writeResult(c, fn(c.Request.Context(), c.Param("id"), in), false)
	}
}

func remove(fn func(context.Context, string) operations.Result) gin.HandlerFunc {
	return func(c *gin.Context) {
		writeResult(c, fn(c.Request.Context(), c.Param("id")), false)
	}
}

type statusResponse struct {
	DataFile    string              `json:"dataFile"`
	Status      store.SaveStatus    `json:"status"`
	Pending     bool                `json:"hasPendingSaves"`
	Version     remote.Version      `json:"version"`
	Metadata    models.Metadata     `json:"metadata"`
	Collections []models.Collection `json:"collections"`
}

func (h *handler) status(c *gin.Context) {
	c.JSON(http.StatusOK, statusResponse{
		DataFile:    h.store.Path(),
		Status:      h.store.Status(),
		Pending:     h.store.HasPendingSaves(),
		Version:     h.store.Version(),
		Metadata:    h.store.Metadata(),
		Collections: h.store.Collections(),
	})
}

func (h *handler) collection(c *gin.Context) {
	name := models.Collection(c.Param("name"))
	if !models.IsKnown(name) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown collection " + string(name)})
		return
	}
	records, err := store.Get[json.RawMessage](h.store, name)
	if err != nil {
		requestLog(c).Error().Err(err).Str("collection", string(name)).Msg("Failed to read collection")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *handler) report(c *gin.Context) {
	s, err := report.ForManager(h.store)
	if err != nil {
		requestLog(c).Error().Err(err).Msg("Failed to build report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *handler) files(c *gin.Context) {
	files, err := h.store.Files(c.Request.Context())
	if err != nil {
		c.JSON(statusCode(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"active": h.store.Path(), "files": files})
}

type switchRequest struct {
	Path string `json:"path" binding:"required"`
}

func (h *handler) switchFile(c *gin.Context) {
	var req switchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.store.Switch(c.Request.Context(), req.Path); err != nil {
		requestLog(c).Warn().Err(err).Str("path", req.Path).Msg("Switch refused")
		c.JSON(statusCode(err), operations.Result{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, operations.Result{Success: true, ID: h.store.Path()})
}

func (h *handler) flush(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()
	if err := h.store.Flush(ctx); err != nil {
		c.JSON(statusCode(err), operations.Result{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, operations.Result{Success: true})
}
