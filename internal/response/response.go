package response

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Response is the JSON envelope every API endpoint answers with, except the
// room token endpoint whose body shape is fixed by its clients.
type Response struct {
	Data     any        `json:"data"`
	Error    *ErrorBody `json:"error,omitempty"`
	Metadata Metadata   `json:"metadata"`
}

// ErrorBody is the machine-readable error plus a display message.
type ErrorBody struct {
	Code    ErrCode           `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Metadata ties a response to its request for support and log lookups.
type Metadata struct {
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

// Success writes data with the given status.
func Success(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, Envelope(c, data, ""))
}

// Fail writes an error envelope for code.
func Fail(c *gin.Context, statusCode int, code ErrCode) {
	c.JSON(statusCode, Envelope(c, nil, code))
}

// FailWithFields writes an error envelope with per-field validation messages.
func FailWithFields(c *gin.Context, statusCode int, code ErrCode, fields map[string]string) {
	r := Envelope(c, nil, code)
	r.Error.Fields = fields
	c.JSON(statusCode, r)
}

// AbortFail stops the middleware chain and writes an error envelope.
func AbortFail(c *gin.Context, statusCode int, code ErrCode) {
	c.AbortWithStatusJSON(statusCode, Envelope(c, nil, code))
}

// Envelope builds a body without writing it, e.g. for WebSocket frames. An
// empty code means success.
func Envelope(c *gin.Context, data any, code ErrCode) Response {
	r := Response{Data: data, Metadata: metadataFor(c)}
	if code != "" {
		r.Error = &ErrorBody{Code: code, Message: GetMessage(code)}
	}
	return r
}

func metadataFor(c *gin.Context) Metadata {
	id := RequestID(c)
	if id == "" {
		id = uuid.NewString()
	}
	return Metadata{
		RequestID: id,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
