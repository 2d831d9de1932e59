package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	Searcher        Searcher
	DefaultLocation string
	RecencyHours    int
	Timeout         time.Duration
}

// Search answers GET /search-jobs/?query=&location=&hours=. A search that
// runs past the request deadline is a 504, never an empty 200.
func (h SearchHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		writeError(c, http.StatusBadRequest, "bad_request", "query is required")
		return
	}
	location := strings.TrimSpace(c.Query("location"))
	if location == "" {
		location = h.DefaultLocation
	}
	hours := h.RecencyHours
	if raw := c.Query("hours"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(c, http.StatusBadRequest, "bad_request", "hours must be a positive integer")
			return
		}
		hours = n
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	jobs := h.Searcher.Aggregate(ctx, query, location, hours)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		writeError(c, http.StatusGatewayTimeout, "timeout", "job search did not finish in time")
		return
	}
	c.JSON(http.StatusOK, jobs)
}
