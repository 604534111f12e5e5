package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"
)

var (
	// Counter for sequential IDs
	idCounter uint64
)

// GenerateRunID generates a tuning-run ID with a timestamp prefix.
func GenerateRunID() string {
	timestamp := time.Now().Format("20060102-150405")
	b := make([]byte, 4)
	_, err := rand.Read(b)
	if err != nil {
		count := atomic.AddUint64(&idCounter, 1)
		return fmt.Sprintf("tune-%s-%x", timestamp, count)
	}
	return fmt.Sprintf("tune-%s-%s", timestamp, hex.EncodeToString(b))
}

// GenerateAttemptID generates an ID for a single probe attempt within a
// search stage. stage names the parameter being tuned, seq is the attempt
// ordinal within the stage.
func GenerateAttemptID(stage string, seq int) string {
	return fmt.Sprintf("%s-%d", stage, seq)
}
