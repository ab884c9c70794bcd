package handlers

import (
  "errors"
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/basespeak/basespeak-backend/internal/services"
)

type JobHandler struct {
  jobService services.JobService
}

func NewJobHandler(jobService services.JobService) *JobHandler {
  return &JobHandler{jobService: jobService}
}

func (jh *JobHandler) GetJobStatus(c *gin.Context) {
  jobID := c.Param("id")
  if jobID == "" {
    c.JSON(http.StatusBadRequest, gin.H{"error": "Missing job id"})
    return
  }

  resp, err := jh.jobService.GetJobStatus(c.Request.Context(), jobID)
  if err != nil {
    if errors.Is(err, services.ErrJobNotFound) {
      c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
      return
    }
    c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to poll job"})
    return
  }
  c.JSON(http.StatusOK, resp)
}
