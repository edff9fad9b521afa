package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-renderer/internal/shared/server/middleware"
	"resume-renderer/internal/shared/server/respond"
)

// meHandler echoes the identity carried by the bearer token.
func meHandler(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", "")
		return
	}

	response := gin.H{
		"userId": userID,
	}
	if email := middleware.UserEmailFromContext(c); email != "" {
		response["email"] = email
	}
	if name := middleware.UserNameFromContext(c); name != "" {
		response["name"] = name
	}

	respond.JSON(c, http.StatusOK, response)
}
