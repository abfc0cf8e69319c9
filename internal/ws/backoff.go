package ws

import "time"

// maxReconnectAttempts is the hard cap on automatic reconnects. Past it
// the manager gives up and surfaces a terminal exhausted condition; the
// user has to reconnect manually.
const maxReconnectAttempts = 10

// maxReconnectDelay caps the exponential backoff.
const maxReconnectDelay = 30 * time.Second

// ReconnectDelay returns the wait before reconnect attempt n (1-based):
// 1s, 2s, 4s, 8s, 16s, then 30s for every further attempt.
func ReconnectDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := time.Duration(1<<uint(attempt-1)) * time.Second
	if d > maxReconnectDelay || d <= 0 {
		return maxReconnectDelay
	}
	return d
}
