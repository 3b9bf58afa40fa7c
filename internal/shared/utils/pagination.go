package utils

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
)

// QueryInt reads an integer query parameter, falling back when absent or
// malformed. Query params arrive as strings regardless of shape, so this
// goes through cast instead of a bare strconv.Atoi to also accept forms
// such as "0x10" or "20.0"; exponent forms such as "1e2" fall back.
func QueryInt(c *gin.Context, key string, fallback int) int {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return fallback
	}
	return n
}
