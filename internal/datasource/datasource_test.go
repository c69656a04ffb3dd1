package datasource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/digit-edge/internal/config"
	"github.com/yourusername/digit-edge/internal/models"
)

const sampleExport = `{"data":[
	{"period":"2024003","date":"2024-01-03","numbers":[7,7,1]},
	{"period":"2024001","date":"2024-01-01","numbers":[1,2,3]},
	{"period":"2024002","date":"2024-01-02","numbers":[4,5,6]}
]}`

func TestDecodeDraws(t *testing.T) {
	draws, err := DecodeDraws(strings.NewReader(sampleExport))
	require.NoError(t, err)
	require.Len(t, draws, 3)
	assert.Equal(t, "2024003", draws[0].Period)
	assert.Equal(t, []int{7, 7, 1}, draws[0].Numbers)

	_, err = DecodeDraws(strings.NewReader("{not json"))
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestLoadJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draws.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleExport), 0o644))

	draws, err := JSONFileSource{Path: path}.FetchDraws(context.Background())
	require.NoError(t, err)
	assert.Len(t, draws, 3)

	_, err = LoadJSONFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDrawValidatorIngest(t *testing.T) {
	raw := []RawDraw{
		{Period: "2024003", Date: "2024-01-03", Numbers: []int{7, 7, 1}},
		{Period: "2024001", Date: "2024-01-01", Numbers: []int{1, 2, 3}},
		{Period: "2024002", Numbers: []int{4, 5}},
		{Period: "2024004", Numbers: []int{4, 5, 10}},
		{Period: "", Numbers: []int{1, 1, 1}},
		{Period: "2024005", Date: "03/01/2024", Numbers: []int{0, 0, 0}},
		{Period: "2024001", Numbers: []int{9, 9, 9}},
		{Period: "2024006", Numbers: []int{0, 0, 0}},
	}

	result := NewDrawValidator(nil).Ingest("test", raw)

	require.Len(t, result.Accepted, 4)
	assert.Equal(t, "2024001", result.Accepted[0].PeriodID)
	assert.Equal(t, models.Digits{1, 2, 3}, result.Accepted[0].Digits)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), result.Accepted[0].Date)
	assert.Equal(t, "2024003", result.Accepted[1].PeriodID)
	assert.Equal(t, "2024005", result.Accepted[2].PeriodID)
	assert.True(t, result.Accepted[2].Date.IsZero())
	assert.Equal(t, "2024006", result.Accepted[3].PeriodID)
	assert.True(t, result.Accepted[3].Date.IsZero())
	assert.Equal(t, []string{"2024005"}, result.UndatedPeriods)

	reasons := make(map[string]int)
	for _, r := range result.Rejections {
		reasons[r.Reason]++
	}
	assert.Equal(t, 2, reasons[RejectBadNumbers])
	assert.Equal(t, 1, reasons[RejectEmptyPeriod])
	assert.Equal(t, 1, reasons[RejectDuplicate])
	assert.Equal(t, 1, result.Duplicates())
}

func TestDrawValidatorAcceptsDateLayouts(t *testing.T) {
	raw := []RawDraw{
		{Period: "2024001", Date: "2024-01-01 21:15:00", Numbers: []int{1, 2, 3}},
		{Period: "2024002", Date: "2024/01/02", Numbers: []int{4, 5, 6}},
		{Period: "2024003", Date: "2024-01-03T21:15:00Z", Numbers: []int{7, 8, 9}},
		{Period: "2024004", Date: "not a date", Numbers: []int{0, 1, 1}},
	}

	result := NewDrawValidator(nil).Ingest("test", raw)

	require.Len(t, result.Accepted, 4)
	assert.Empty(t, result.Rejections)
	assert.Equal(t, time.Date(2024, 1, 1, 21, 15, 0, 0, time.UTC), result.Accepted[0].Date)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), result.Accepted[1].Date)
	assert.Equal(t, time.Date(2024, 1, 3, 21, 15, 0, 0, time.UTC), result.Accepted[2].Date)
	assert.True(t, result.Accepted[3].Date.IsZero())
	assert.Equal(t, models.Digits{0, 1, 1}, result.Accepted[3].Digits)
	assert.Equal(t, []string{"2024004"}, result.UndatedPeriods)
}

func TestHTTPSourceFetchDraws(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/draws" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(sampleExport))
	}))
	defer server.Close()

	cfg := DefaultHTTPClientConfig()
	cfg.MaxRetries = 0
	cfg.RateLimit = 100

	draws, err := NewHTTPSource(server.URL+"/draws", cfg, nil).FetchDraws(context.Background())
	require.NoError(t, err)
	assert.Len(t, draws, 3)

	_, err = NewHTTPSource(server.URL+"/missing", cfg, nil).FetchDraws(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewDrawSource(t *testing.T) {
	src, err := NewDrawSource(config.DataConfig{Source: "json", Path: "draws.json"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "json_file", src.Name())

	src, err = NewDrawSource(config.DataConfig{Source: "http", URL: "http://localhost/draws"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "http", src.Name())

	_, err = NewDrawSource(config.DataConfig{Source: "http"}, nil)
	assert.Error(t, err)

	_, err = NewDrawSource(config.DataConfig{Source: "postgres"}, nil)
	assert.Error(t, err)
}
