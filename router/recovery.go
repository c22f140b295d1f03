package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/remiges-tech/leu/wscutils"
)

// Recovery turns a handler panic into a 500 with the standard error
// envelope, and records the panic for LogRequest. It must run inside
// LogRequest for the panic to show up in the request log.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if r == http.ErrAbortHandler {
				panic(r)
			}
			c.Set(CtxKeyPanicRecovered, true)
			c.Set(CtxKeyPanicValue, fmt.Sprint(r))
			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, wscutils.NewErrorResponse(wscutils.ErrcodeUnknown))
		}()
		c.Next()
	}
}
