package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// translateRequest is the natural language input
type translateRequest struct {
	Text string `json:"text"`
}

// translateHandler converts a natural language request into a query string
// through the external provider.
func (s *HTTP) translateHandler(c *gin.Context) {
	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "empty input"})
		return
	}

	result, err := s.service.GetTranslator().Translate(c.Request.Context(), text)
	if err != nil {
		s.log.Error().Err(err).Msg("Translation provider failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"kql":         "",
			"explanation": fmt.Sprintf("error: %v", err),
			"warnings":    "",
		})
		return
	}

	// Quotes confuse the downstream tokenizer when pasted verbatim.
	c.JSON(http.StatusOK, gin.H{
		"kql":         strings.ReplaceAll(result.Query, `"`, ""),
		"explanation": result.Explanation,
		"warnings":    result.Warning,
	})
}
