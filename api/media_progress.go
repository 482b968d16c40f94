package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MediaProgress reports per-file and aggregate progress for one batch.
func (a *API) MediaProgress(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	b := a.batch(c.Param("batchID"))
	if b == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error":     "Batch not found",
			"requestID": requestID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"progress": b.Progress(),
		"files":    b.Snapshot(),
	})
}

// MediaCancel aborts a single in-flight file. The file leaves the progress
// list; anything already written for it stays behind.
func (a *API) MediaCancel(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	b := a.batch(c.Param("batchID"))
	if b == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error":     "Batch not found",
			"requestID": requestID,
		})
		return
	}

	if !b.Cancel(c.Param("fileID")) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error":     "File not found in batch",
			"requestID": requestID,
		})
		return
	}

	c.Status(http.StatusNoContent)
}
