package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// ComputeBetKey computes a deterministic content key for a bet without an explicit id.
// Formula: SHA256(market|selection|settled_at|stake|profit_loss)
// Timestamps are rendered as RFC3339Nano in UTC and numbers in shortest
// round-trip form, so the same logical value always hashes identically.
// Absent values render as empty strings.
// Returns hex-encoded hash (64 characters).
func ComputeBetKey(
	market string,
	selection string,
	settledAt *time.Time,
	stake *float64,
	profitLoss *float64,
) string {
	data := fmt.Sprintf("%s|%s|%s|%s|%s",
		market,
		selection,
		formatTime(settledAt),
		formatFloat(stake),
		formatFloat(profitLoss),
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
