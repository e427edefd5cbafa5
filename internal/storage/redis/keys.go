package redis

import "strings"

// DefaultKeyPrefix namespaces every notebook key inside a shared Redis database.
const DefaultKeyPrefix = "jot:"

// Key returns the Redis key for a storage key.
// Example: ("jot:", "notes") -> "jot:notes"
func Key(prefix, key string) string {
	return prefix + key
}

// ExtractKey strips the prefix back off a Redis key.
func ExtractKey(prefix, redisKey string) (string, bool) {
	if !strings.HasPrefix(redisKey, prefix) || len(redisKey) == len(prefix) {
		return "", false
	}
	return redisKey[len(prefix):], true
}
