package handlers

import (
  "net/http"
  "os"
  "time"

  "github.com/gin-gonic/gin"
)

func Healthz(c *gin.Context) {
  c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC().Format(time.RFC3339)})
}

// VendorStatus reports which external collaborators have credentials
// configured, so the mobile app can surface degraded modes.
func VendorStatus(c *gin.Context) {
  c.JSON(http.StatusOK, gin.H{
    "storage": os.Getenv("GCS_BUCKET_NAME") != "",
    "llm":     os.Getenv("NOVITA_KEY") != "",
    "speech":  os.Getenv("NOVITA_KEY") != "",
    "lipsync": os.Getenv("GOOEY_KEY") != "",
  })
}
