package middleware

import (
	"bytes"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/receiptly/receiptly-api/internal/domain/entity"
	"github.com/receiptly/receiptly-api/internal/domain/repository"
	"github.com/receiptly/receiptly-api/internal/presentation/http/dto/response"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyKeyTTL is how long keys are valid
	IdempotencyKeyTTL = 24 * time.Hour

	maxIdempotentBody = 1 << 20
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo repository.IdempotencyRepository
	Log  *zap.Logger
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// fingerprint returns the hex BLAKE2b-256 digest of a request body
func fingerprint(body []byte) string {
	sum := blake2b.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// IdempotencyRequired requires an Idempotency-Key on POST requests. A retry
// with the same key and body replays the stored response; the same key with a
// different body is rejected. Keys are scoped to the organization and user.
func IdempotencyRequired(config IdempotencyConfig) gin.HandlerFunc {
	var inflight sync.Map

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		idempotencyKey := c.GetHeader(IdempotencyKeyHeader)
		if idempotencyKey == "" {
			response.BadRequest(c, "Idempotency-Key header is required for this request")
			c.Abort()
			return
		}
		if len(idempotencyKey) > 255 {
			response.BadRequest(c, "Idempotency-Key must be at most 255 characters")
			c.Abort()
			return
		}

		userID := c.GetString("user_id")
		orgID := GetOrganizationID(c)
		if userID == "" {
			response.Unauthorized(c, "User not authenticated")
			c.Abort()
			return
		}

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxIdempotentBody))
		if err != nil {
			response.BadRequest(c, "Could not read request body")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		hash := fingerprint(body)

		existing, err := config.Repo.GetByKey(c.Request.Context(), idempotencyKey, orgID, userID)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		if existing != nil && !existing.IsExpired() {
			if existing.RequestHash != hash {
				response.ErrorWithCode(c, http.StatusUnprocessableEntity, "Idempotency-Key was already used with a different request body")
				c.Abort()
				return
			}
			c.Header("X-Idempotency-Replayed", "true")
			c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
			c.Abort()
			return
		}

		scope := orgID.String() + "|" + userID + "|" + idempotencyKey
		if _, busy := inflight.LoadOrStore(scope, struct{}{}); busy {
			response.ErrorWithCode(c, http.StatusConflict, "A request with this Idempotency-Key is already in progress")
			c.Abort()
			return
		}
		defer inflight.Delete(scope)

		// Capture the response
		blw := &responseWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		// Only store successful responses (2xx status codes)
		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}

		ikey := &entity.IdempotencyKey{
			Key:            idempotencyKey,
			OrganizationID: orgID,
			UserID:         userID,
			Endpoint:       c.Request.Method + " " + c.FullPath(),
			RequestHash:    hash,
			ResponseCode:   c.Writer.Status(),
			ResponseBody:   blw.body.String(),
			ExpiresAt:      time.Now().Add(IdempotencyKeyTTL),
		}
		if err := config.Repo.Create(c.Request.Context(), ikey); err != nil && config.Log != nil {
			config.Log.Warn("failed to store idempotency key",
				zap.String("endpoint", ikey.Endpoint),
				zap.Error(err),
			)
		}
	}
}
