package utils

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// SetAuthCookies stores both tokens as secure, HTTP-only cookies so scripts
// cannot read them.
func SetAuthCookies(c *gin.Context, accessToken, refreshToken string, accessTTL, refreshTTL time.Duration) {
	secure := os.Getenv("COOKIE_SECURE") != "false"
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    accessToken,
		Path:     "/",
		MaxAge:   int(accessTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteNoneMode, // for cross-site
	})
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   int(refreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteNoneMode,
	})
}

func ClearAuthCookies(c *gin.Context) {
	secure := os.Getenv("COOKIE_SECURE") != "false"
	domain := os.Getenv("COOKIE_DOMAIN")

	c.SetCookie(AccessTokenCookie, "", -1, "/", domain, secure, true)
	c.SetCookie(RefreshTokenCookie, "", -1, "/", domain, secure, true)
}
