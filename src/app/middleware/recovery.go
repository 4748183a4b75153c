package middleware

import (
	"errors"
	"log/slog"
	"net"
	"os"
	"runtime/debug"
	"syscall"

	"github.com/gin-gonic/gin"

	"jokesite/src/app/http/response"
	"jokesite/src/infra/logger"
)

// Recovery turns a panicking handler into the generic failure page.
// A panic caused by the client hanging up is logged at warn and nothing
// is written back.
func Recovery(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			requestID := GetRequestID(c)
			reqLog := logger.WithRequestID(log, requestID)

			if brokenPipe(rec) {
				reqLog.Warn("client went away", "path", c.Request.URL.Path, "error", rec)
				c.Abort()
				return
			}

			reqLog.Error("panic recovered",
				"error", rec,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"stack", string(debug.Stack()),
			)
			c.Abort()
			if !c.Writer.Written() {
				response.InternalError(c, requestID)
			}
		}()

		c.Next()
	}
}

func brokenPipe(rec any) bool {
	err, ok := rec.(error)
	if !ok {
		return false
	}
	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		return false
	}
	var sysErr *os.SyscallError
	if errors.As(opErr, &sysErr) {
		return errors.Is(sysErr.Err, syscall.EPIPE) || errors.Is(sysErr.Err, syscall.ECONNRESET)
	}
	return false
}
