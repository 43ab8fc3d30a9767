// internal/handler/routes.go
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router gin.IRouter, h *OfferHandler) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/", h.Page)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/offers", h.ListOffers)
		v1.GET("/banks", h.ListBanks)
	}
}
