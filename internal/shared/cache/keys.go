package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

const (
	leaderboardPrefix = "leaderboard:top:"
	revokedPrefix     = "auth:revoked:"
)

// OddsKey retorna "odds:event:{eventID}"
func OddsKey(eventID string) string { return "odds:event:" + eventID }

// LeaderboardKey retorna "leaderboard:top:{limit}"
func LeaderboardKey(limit int) string { return leaderboardPrefix + strconv.Itoa(limit) }

// RevokedKey guarda só o hash do token, nunca o token em si
func RevokedKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return revokedPrefix + hex.EncodeToString(sum[:])
}
