package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/HuyGoodBoy/yogalanding-sub000/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ctxKey string

const (
	clientCtxKey ctxKey = "clientID"

	clientCookie  = "sf_client"
	clientHeader  = "X-Client-ID"
	clientMaxAge  = 365 * 24 * 60 * 60
	maxClientIDLn = 64
)

// clientMiddleware resolves the browser profile a request belongs to. The id
// namespaces the persisted session and cart; a new one is issued when the
// request carries none.
func clientMiddleware(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(clientHeader))
		if id == "" {
			if v, err := c.Cookie(clientCookie); err == nil {
				id = strings.TrimSpace(v)
			}
		}
		if !validClientID(id) {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(clientCookie, id, clientMaxAge, "/", "", secure, true)
		}
		c.Header(clientHeader, id)

		ctx := context.WithValue(c.Request.Context(), clientCtxKey, id)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func validClientID(id string) bool {
	if id == "" || len(id) > maxClientIDLn {
		return false
	}
	for _, r := range id {
		if !(r == '-' || r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}

func clientID(c *gin.Context) string {
	id, _ := c.Request.Context().Value(clientCtxKey).(string)
	return id
}

type profileReader interface {
	Profile(ctx context.Context, clientID string) (*domain.Profile, error)
}

// adminOnly hides the back-office from profiles without the admin flag. The
// backend still authorizes every admin procedure on its own.
func adminOnly(profiles profileReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, err := profiles.Profile(c.Request.Context(), clientID(c))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				err = domain.ErrForbidden
			}
			writeError(c, err)
			c.Abort()
			return
		}
		if !profile.IsAdmin {
			writeError(c, domain.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
