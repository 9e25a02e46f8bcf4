package utils

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/coffee-focus/coffeefocus/internal/apperr"
)

// Payload is a decoded JSON object. Keeping it untyped lets handlers tell a
// missing key apart from an explicit null.
type Payload map[string]any

// RequireJSON rejects bodies not declared as application/json. Browsers only
// send that content type cross-site after a CORS preflight, so plain form
// posts from other origins never reach a handler.
func RequireJSON(ctx *gin.Context) error {
	if ctx.ContentType() != binding.MIMEJSON {
		return apperr.Validation("Content-Type must be application/json")
	}
	return nil
}

func BindPayload(ctx *gin.Context) (Payload, error) {
	if err := RequireJSON(ctx); err != nil {
		return nil, err
	}

	var payload Payload
	if err := ctx.ShouldBindJSON(&payload); err != nil || payload == nil {
		return nil, apperr.Validation("Invalid JSON body")
	}
	return payload, nil
}

func (p Payload) Has(key string) bool {
	_, ok := p[key]
	return ok
}

func (p Payload) Get(key string) any {
	return p[key]
}

// String returns the value at key when it is a string.
func (p Payload) String(key string) (string, bool) {
	s, ok := p[key].(string)
	return s, ok
}

func (p Payload) Bool(key string) (bool, bool) {
	b, ok := p[key].(bool)
	return b, ok
}
