package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func NewRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = 3 * time.Minute
	}
	if d.DefaultLocation == "" {
		d.DefaultLocation = "Germany"
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), requestLogger(d.Logger), cors())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Job search API is running",
			"status":  "healthy",
		})
	})

	sh := SearchHandler{Searcher: d.Searcher, DefaultLocation: d.DefaultLocation, RecencyHours: d.RecencyHours, Timeout: d.RequestTimeout}
	r.GET("/search-jobs/", sh.Search)

	store := r.Group("/", requireStore(d.Store))
	th := TrackedJobsHandler{Store: d.Store}
	store.GET("/tracked-jobs/", th.List)
	store.POST("/tracked-jobs/", th.Track)
	store.PATCH("/tracked-jobs/:id/status", th.UpdateStatus)
	store.DELETE("/tracked-jobs/:id", th.Delete)

	ssh := SavedSearchesHandler{Store: d.Store, Runner: d.Runner, Timeout: d.RequestTimeout}
	store.GET("/saved-searches/", ssh.List)
	store.POST("/saved-searches/", ssh.Save)
	store.DELETE("/saved-searches/:id", ssh.Delete)
	store.POST("/run-automated-search/", ssh.RunAll)

	return r
}
