package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sahilm-dev/vidtube/dto"
	"github.com/sahilm-dev/vidtube/services"
	"github.com/sahilm-dev/vidtube/utils"
)

// POST /api/v1/users/register (multipart: fields + avatar + optional coverImage)
func Register(svc *services.UserService, v *utils.FileValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.RegisterUserDTO
		if err := c.ShouldBind(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		avatar, err := c.FormFile("avatar")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "avatar file is required"})
			return
		}
		if _, err := v.ValidateFile(avatar); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		coverImage, _ := c.FormFile("coverImage")
		if coverImage != nil {
			if _, err := v.ValidateFile(coverImage); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}

		user, err := svc.Register(c.Request.Context(), body, avatar, coverImage)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"user": user})
	}
}

// GET /api/v1/users/current-user
func CurrentUser(svc *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		if !ok {
			return
		}

		user, err := svc.CurrentUser(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// PUT /api/v1/users/change-password
func ChangePassword(svc *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.ChangePasswordDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		userID, ok := userIDFromContext(c)
		if !ok {
			return
		}

		if err := svc.ChangePassword(c.Request.Context(), userID, body.CurrentPassword, body.NewPassword); err != nil {
			respondError(c, err)
			return
		}

		// the stored refresh token was cleared, so the cookies are stale now
		utils.ClearAuthCookies(c)
		c.JSON(http.StatusOK, gin.H{"message": "password changed"})
	}
}

// PATCH /api/v1/users/update-account
func UpdateAccount(svc *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.UpdateAccountDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		userID, ok := userIDFromContext(c)
		if !ok {
			return
		}

		user, err := svc.UpdateAccount(c.Request.Context(), userID, body)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// PATCH /api/v1/users/update-avatar (multipart: avatar)
func UpdateAvatar(svc *services.UserService, v *utils.FileValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		if !ok {
			return
		}

		file, err := c.FormFile("avatar")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "avatar file is required"})
			return
		}
		if _, err := v.ValidateFile(file); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		user, err := svc.UpdateAvatar(c.Request.Context(), userID, file)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// PATCH /api/v1/users/update-cover-image (multipart: coverImage)
func UpdateCoverImage(svc *services.UserService, v *utils.FileValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		if !ok {
			return
		}

		file, err := c.FormFile("coverImage")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cover image file is required"})
			return
		}
		if _, err := v.ValidateFile(file); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		user, err := svc.UpdateCoverImage(c.Request.Context(), userID, file)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// GET /api/v1/users/channel/:username
func ChannelProfile(svc *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		if !ok {
			return
		}

		profile, err := svc.ChannelProfile(c.Request.Context(), c.Param("username"), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"channel": profile})
	}
}

// GET /api/v1/users/watch-history
func WatchHistory(svc *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		if !ok {
			return
		}

		history, err := svc.WatchHistory(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"watchHistory": history})
	}
}
