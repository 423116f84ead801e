package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sahilm-dev/vidtube/dto"
	"github.com/sahilm-dev/vidtube/services"
	"github.com/sahilm-dev/vidtube/utils"
)

func Login(svc *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.LoginDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		user, pair, err := svc.Login(c.Request.Context(), body.Username, body.Password)
		if err != nil {
			respondError(c, err)
			return
		}

		utils.SetAuthCookies(c, pair.AccessToken, pair.RefreshToken, svc.AccessTTL(), svc.RefreshTTL())
		c.JSON(http.StatusOK, gin.H{
			"user":         user,
			"accessToken":  pair.AccessToken,
			"refreshToken": pair.RefreshToken,
		})
	}
}

// Refresh rotates the token pair. The refresh token is read from the cookie
// set at login, falling back to the request body for non-browser clients.
func Refresh(svc *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		incoming, _ := c.Cookie(utils.RefreshTokenCookie)
		if incoming == "" {
			var body dto.RefreshTokenDTO
			_ = c.ShouldBindJSON(&body)
			incoming = body.RefreshToken
		}

		pair, err := svc.Refresh(c.Request.Context(), incoming)
		if err != nil {
			respondError(c, err)
			return
		}

		utils.SetAuthCookies(c, pair.AccessToken, pair.RefreshToken, svc.AccessTTL(), svc.RefreshTTL())
		c.JSON(http.StatusOK, gin.H{
			"accessToken":  pair.AccessToken,
			"refreshToken": pair.RefreshToken,
		})
	}
}

func Logout(svc *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		if !ok {
			return
		}

		if err := svc.Logout(c.Request.Context(), userID); err != nil {
			respondError(c, err)
			return
		}

		utils.ClearAuthCookies(c)
		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
	}
}
