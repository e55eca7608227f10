package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// eventsRequest is the POST body form of an events query
type eventsRequest struct {
	Query string `json:"query"`
}

// eventsHandler runs the filter, rule detection and histogram pipeline over
// the currently loaded dataset. The query can come from the "query"
// parameter or, on POST, from a JSON body.
func (s *HTTP) eventsHandler(c *gin.Context) {
	dataset, found := s.service.Current()
	if !found {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no dataset loaded"})
		return
	}

	queryString := c.Query("query")
	if queryString == "" && c.Request.Method == http.MethodPost {
		var req eventsRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			queryString = req.Query
		}
	}

	view := s.service.BuildView(dataset, queryString)

	c.JSON(http.StatusOK, gin.H{
		"filename":       dataset.Filename,
		"query":          queryString,
		"total":          len(dataset.Batch.Events),
		"visible":        len(view.Events),
		"events":         view.Events,
		"detections":     view.Detections,
		"has_detections": len(view.Detections) > 0,
		"histogram":      view.Histogram,
		"errors":         view.Errors,
		"warnings":       view.Warnings,
	})
}
