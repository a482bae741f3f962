package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"scope-chat/internal/service"
)

// ConfigHandler expone la configuracion publica que necesita la UI.
type ConfigHandler struct {
	selector service.SourceSelector
}

func NewConfigHandler(selector service.SourceSelector) *ConfigHandler {
	return &ConfigHandler{selector: selector}
}

// GetConfig maneja GET /api/config.
func (h *ConfigHandler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"GROUPS_STARTING_ID": h.selector.Start()})
}
