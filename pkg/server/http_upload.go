package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// uploadHandler ingests an NDJSON payload from the request body and replaces
// the currently loaded dataset. The payload may be gzip compressed.
func (s *HTTP) uploadHandler(c *gin.Context) {
	start := time.Now()

	reader, err := getBodyReader(c.Request)
	if err != nil {
		if s.metric != nil {
			s.metric.IncUploadsTotal("bad_body")
		}
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	defer reader.Close()

	filename := c.Query("filename")
	if filename == "" {
		filename = "upload.ndjson"
	}

	dataset, err := s.service.Upload(reader, filename)
	if err != nil {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "failed to read payload"})
		return
	}

	batch := dataset.Batch
	c.JSON(http.StatusOK, gin.H{
		"message":         "success",
		"filename":        dataset.Filename,
		"events":          len(batch.Events),
		"errors":          len(batch.Errors) + len(batch.IngestErrors),
		"warnings":        len(batch.Warnings),
		"processing_time": time.Since(start).Seconds(),
	})
}
