package rest

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/portfoliotrack/portfolio_tracker_api/internal/model/restModel"
	"github.com/portfoliotrack/portfolio_tracker_api/utils"
)

const userIDKey = "userID"

// RequestID takes the caller's X-Request-ID or mints one, and threads it
// into the request context so every downstream log line carries it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rqID := c.GetHeader("X-Request-ID")
		if rqID == "" {
			rqID = uuid.New().String()
		}

		ctx := utils.CtxWithRqID(c.Request.Context(), rqID)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-ID", rqID)

		c.Next()
	}
}

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		slog.Info(
			"http request",
			slog.String("rqID", utils.GetRequestIDFromCtx(c.Request.Context())),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		)
	}
}

func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				slog.Error(
					"panic recovered",
					slog.String("rqID", utils.GetRequestIDFromCtx(c.Request.Context())),
					slog.Any("panic", r),
					slog.String("stacktrace", string(debug.Stack())),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, restModel.ErrorResponse{Error: "internal server error"})
			}
		}()

		c.Next()
	}
}

// Identity resolves the request owner from the X-User-ID header.
// Authentication proper sits in front of this service; the header is
// trusted as already verified.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, restModel.ErrorResponse{Error: "X-User-ID header is required"})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}
