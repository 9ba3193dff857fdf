package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bilal-alaabadi/mahen-b/internal/logging"
)

const reqBodyLimit = 8 * 1024 // 8KB

// redactedKey reports whether a JSON key carries credentials or customer
// contact data that must not reach the log files.
func redactedKey(k string) bool {
	switch k {
	case "password", "authorization", "token", "secret", "email":
		return true
	}
	return strings.Contains(k, "phone")
}

// redactJSON masks credential- and contact-looking keys before a payload
// hits the log.
func redactJSON(raw []byte) []byte {
	if len(raw) == 0 {
		return raw
	}
	var m any
	if err := json.Unmarshal(raw, &m); err != nil {
		return raw // not JSON
	}
	var scrub func(any) any
	scrub = func(x any) any {
		switch v := x.(type) {
		case map[string]any:
			for k, val := range v {
				if redactedKey(strings.ToLower(k)) {
					v[k] = "***redacted***"
					continue
				}
				v[k] = scrub(val)
			}
			return v
		case []any:
			for i := range v {
				v[i] = scrub(v[i])
			}
			return v
		default:
			return v
		}
	}
	out := scrub(m)
	b, err := json.Marshal(out)
	if err != nil {
		return raw
	}
	return b
}

// teeBody lets a rebuilt reader carry the original body's Close.
type teeBody struct {
	io.Reader
	io.Closer
}

// capRequestBody copies at most n bytes for logging and rebuilds
// c.Request.Body so handlers still read the full payload; only the logged
// copy is capped.
func capRequestBody(c *gin.Context, n int) (body []byte, truncated bool) {
	orig := c.Request.Body
	var buf bytes.Buffer
	_, _ = io.CopyN(&buf, orig, int64(n+1)) // read up to n+1
	b := buf.Bytes()
	c.Request.Body = teeBody{
		Reader: io.MultiReader(bytes.NewReader(b), orig),
		Closer: orig,
	}
	if len(b) > n {
		return b[:n], true
	}
	return b, false
}

// Logging returns a Gin middleware that logs each request and injects a
// request-scoped slog.Logger into the context.
func Logging(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
			c.Request.Header.Set("X-Request-Id", reqID)
		}
		c.Header("X-Request-Id", reqID)

		l := base.With(
			"req_id", reqID,
			"method", c.Request.Method,
			"path", c.FullPath(), // may be empty if no route matched
			"remote", c.ClientIP(),
		)
		logging.With(c, l)
		c.Request = c.Request.WithContext(logging.WithCtx(c.Request.Context(), l))

		// capture request body (JSON only)
		var reqBodyLogged string
		ct := c.GetHeader("Content-Type")
		if strings.Contains(ct, "application/json") && c.Request.Body != nil {
			body, truncated := capRequestBody(c, reqBodyLimit)
			body = redactJSON(body)
			if truncated {
				body = append(body, []byte("...truncated...")...)
			}
			reqBodyLogged = string(body)
		}

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"status", status,
			"dur_ms", time.Since(start).Milliseconds(),
			"resp_bytes", c.Writer.Size(),
		}
		// request bodies go to the log only for server errors; client
		// payloads carry contact data that has no business in routine logs
		if reqBodyLogged != "" && status >= http.StatusInternalServerError {
			attrs = append(attrs, "req_body", reqBodyLogged)
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}

		if status >= http.StatusBadRequest {
			l.Error("http_request", attrs...)
			return
		}
		l.Info("http_request", attrs...)
	}
}
