package datasource

import (
	"context"
	"errors"
)

// DrawSource defines the interface for fetching historical draws from a provider
type DrawSource interface {
	// FetchDraws retrieves every draw the source knows about, in any order
	FetchDraws(ctx context.Context) ([]RawDraw, error)

	// Name returns the name of the data source
	Name() string
}

// RawDraw is a draw as delivered by a source, before validation
type RawDraw struct {
	Period  string `json:"period"`
	Date    string `json:"date"`
	Numbers []int  `json:"numbers"`
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "invalid_data")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeNotFound     = "not_found"
	ErrCodeInvalidData  = "invalid_data"
	ErrCodeNetworkError = "network_error"
	ErrCodeServerError  = "server_error"
)

var (
	ErrNotFound     = errors.New("data not found")
	ErrInvalidData  = errors.New("invalid data format")
	ErrNetworkError = errors.New("network error")
	ErrServerError  = errors.New("server error")
)

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
