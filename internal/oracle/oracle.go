// Package oracle is the boundary to the predictive model that turns a window of draws
// into per-digit scores.
package oracle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/yourusername/digit-edge/internal/models"
)

var (
	// ErrOracleUnavailable indicates the oracle could not be reached
	ErrOracleUnavailable = errors.New("oracle unavailable")

	// ErrInvalidResponse indicates the oracle answered with something unusable
	ErrInvalidResponse = errors.New("invalid response from oracle")

	// ErrNoPrediction indicates a replay oracle has nothing recorded for the period
	ErrNoPrediction = errors.New("no prediction recorded")
)

// Request asks for the scores of the period that follows Window
type Request struct {
	PeriodID string
	Window   []models.Digits // chronological, oldest first
}

// Oracle produces one probability vector per request
type Oracle interface {
	Name() string
	Predict(ctx context.Context, req Request) (models.ProbabilityVector, error)
}

// Fingerprint identifies a window by content so identical windows share a cache entry
func Fingerprint(window []models.Digits) string {
	h := sha256.New()
	buf := make([]byte, 0, len(window)*3)
	for _, d := range window {
		buf = append(buf, byte(d[0]), byte(d[1]), byte(d[2]))
	}
	h.Write(buf)
	return hex.EncodeToString(h.Sum(nil))
}
