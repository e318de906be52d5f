package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// TraceIDHeader carries the trace identifier on requests and responses.
	TraceIDHeader = "X-Trace-ID"
	// TraceIDKey is the gin context key holding the trace identifier.
	TraceIDKey = "trace_id"
	// UserIDKey is the gin context key holding the authenticated user ID.
	UserIDKey = "user_id"

	requestContextKey = "request_context"
)

// RequestContext carries per-request metadata that handlers and later
// middleware can enrich. RequireAuth fills in UserID once the session
// resolves.
type RequestContext struct {
	TraceID   string
	UserID    string
	IP        string
	UserAgent string
}

// EnrichContext propagates the inbound trace ID, minting one when the client
// did not send any, and records client metadata for the request.
func EnrichContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		c.Set(TraceIDKey, traceID)
		c.Header(TraceIDHeader, traceID)

		c.Set(requestContextKey, &RequestContext{
			TraceID:   traceID,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})

		c.Next()
	}
}

// GetTraceID returns the trace ID for the current request, or "" when
// EnrichContext did not run.
func GetTraceID(c *gin.Context) string {
	val, ok := c.Get(TraceIDKey)
	if !ok {
		return ""
	}
	id, _ := val.(string)
	return id
}

// GetRequestContext returns the request metadata. It never returns nil.
func GetRequestContext(c *gin.Context) *RequestContext {
	val, ok := c.Get(requestContextKey)
	if !ok {
		return &RequestContext{}
	}
	reqCtx, ok := val.(*RequestContext)
	if !ok {
		return &RequestContext{}
	}
	return reqCtx
}
