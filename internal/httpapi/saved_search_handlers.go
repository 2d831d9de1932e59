package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go-jobtailor/internal/models"

	"github.com/gin-gonic/gin"
)

type SavedSearchesHandler struct {
	Store   Store
	Runner  SavedSearchRunner
	Timeout time.Duration
}

func (h SavedSearchesHandler) List(c *gin.Context) {
	searches, err := h.Store.ListSavedSearches(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	c.JSON(http.StatusOK, searches)
}

func (h SavedSearchesHandler) Save(c *gin.Context) {
	var s models.SavedSearch
	if err := c.ShouldBindJSON(&s); err != nil {
		writeError(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	s.Query = strings.TrimSpace(s.Query)
	s.Location = strings.TrimSpace(s.Location)
	if s.Query == "" {
		writeError(c, http.StatusBadRequest, "bad_request", "query is required")
		return
	}

	saved, created, err := h.Store.SaveSearch(c.Request.Context(), &s)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	if !created {
		c.JSON(http.StatusOK, gin.H{"message": "Search already saved", "search": saved})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Search saved", "search": saved})
}

func (h SavedSearchesHandler) Delete(c *gin.Context) {
	if err := h.Store.DeleteSavedSearch(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Search removed"})
}

// RunAll re-runs every saved search and returns the merged listings.
func (h SavedSearchesHandler) RunAll(c *gin.Context) {
	searches, err := h.Store.ListSavedSearches(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "db_error", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	jobs := h.Runner.Run(ctx, searches)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		writeError(c, http.StatusGatewayTimeout, "timeout", "automated search did not finish in time")
		return
	}
	c.JSON(http.StatusOK, jobs)
}
