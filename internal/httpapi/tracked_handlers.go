package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"go-jobtailor/internal/database"
	"go-jobtailor/internal/models"

	"github.com/gin-gonic/gin"
)

type TrackedJobsHandler struct {
	Store Store
}

func (h TrackedJobsHandler) List(c *gin.Context) {
	jobs, err := h.Store.ListTrackedJobs(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (h TrackedJobsHandler) Track(c *gin.Context) {
	var job models.TrackedJob
	if err := c.ShouldBindJSON(&job); err != nil {
		writeError(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if strings.TrimSpace(job.Title) == "" {
		writeError(c, http.StatusBadRequest, "bad_request", "title is required")
		return
	}
	if job.Status != "" {
		if _, err := models.ParseStatus(string(job.Status)); err != nil {
			writeError(c, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
	}

	saved, created, err := h.Store.TrackJob(c.Request.Context(), &job)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	if !created {
		c.JSON(http.StatusOK, gin.H{"message": "Job already tracked", "job": saved})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Job tracked successfully", "job": saved})
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus takes the new status from ?status= or a JSON body.
func (h TrackedJobsHandler) UpdateStatus(c *gin.Context) {
	raw := c.Query("status")
	if raw == "" {
		var req statusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "bad_request", "status is required")
			return
		}
		raw = req.Status
	}
	status, err := models.ParseStatus(raw)
	if err != nil {
		writeError(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	job, err := h.Store.UpdateJobStatus(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(c, http.StatusNotFound, "not_found", "Job not found")
			return
		}
		writeError(c, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Status updated to " + string(status), "job": job})
}

func (h TrackedJobsHandler) Delete(c *gin.Context) {
	if err := h.Store.DeleteTrackedJob(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Job removed"})
}
