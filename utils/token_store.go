package utils

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Opaque bearer tokens bound to a user id. Tokens carry no claims and stay
// valid until RevokeToken is called for them. Redis is the primary backend
// so tokens survive restarts; without Redis the store lives in memory.

const tokenKeyPrefix = "auth:token:"

var (
	tokens   = map[string]uint{}
	tokensMu sync.RWMutex
)

// IssueToken mints a new opaque token for the user.
func IssueToken(userID uint) (string, error) {
	token := strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")

	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rc.Set(ctx, tokenKeyPrefix+token, strconv.FormatUint(uint64(userID), 10), 0).Err(); err != nil {
			return "", err
		}
		return token, nil
	}

	tokensMu.Lock()
	tokens[token] = userID
	tokensMu.Unlock()
	return token, nil
}

// ResolveToken maps a bearer token back to its user id.
func ResolveToken(token string) (uint, bool) {
	if token == "" {
		return 0, false
	}

	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		val, err := rc.Get(ctx, tokenKeyPrefix+token).Result()
		if err != nil {
			return 0, false
		}
		id, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			return 0, false
		}
		return uint(id), true
	}

	tokensMu.RLock()
	id, ok := tokens[token]
	tokensMu.RUnlock()
	return id, ok
}

// RevokeToken invalidates a token immediately.
func RevokeToken(token string) {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = rc.Del(ctx, tokenKeyPrefix+token).Err()
		return
	}

	tokensMu.Lock()
	delete(tokens, token)
	tokensMu.Unlock()
}
