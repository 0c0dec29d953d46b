package utils

import (
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"
)

// CacheKey builds a stable cache key from a namespace and its parts.
// Parts are hashed so arbitrary inputs cannot collide with other
// namespaces or blow past backend key-length limits.
func CacheKey(namespace string, parts ...string) string {
	h := xxh3.HashString(strings.Join(parts, "\x1f"))
	return fmt.Sprintf("%s:%016x", namespace, h)
}
