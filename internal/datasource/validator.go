package datasource

import (
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/digit-edge/internal/logger"
	"github.com/yourusername/digit-edge/internal/models"
)

// Rejection reasons
const (
	RejectEmptyPeriod = "empty_period"
	RejectBadNumbers  = "bad_numbers"
	RejectDuplicate   = "duplicate"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"2006/01/02 15:04:05",
	"20060102",
}

// Rejection records a raw draw that did not make it into the store
type Rejection struct {
	Period string
	Reason string
	Detail string
}

// IngestResult is the outcome of validating a batch of raw draws
type IngestResult struct {
	Accepted   []models.Draw
	Rejections []Rejection
	// UndatedPeriods lists accepted draws whose date could not be parsed
	UndatedPeriods []string
}

// Duplicates counts rejections caused by repeated period ids
func (r IngestResult) Duplicates() int {
	n := 0
	for _, rej := range r.Rejections {
		if rej.Reason == RejectDuplicate {
			n++
		}
	}
	return n
}

// DrawValidator turns raw draws into a clean, chronologically ordered history
type DrawValidator struct {
	audit *logger.AuditLogger
}

// NewDrawValidator creates a validator; a nil logger discards audit output
func NewDrawValidator(log *logrus.Logger) *DrawValidator {
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.PanicLevel)
	}
	return &DrawValidator{audit: logger.NewAuditLogger(log)}
}

// Ingest validates every raw draw. The first occurrence of a period wins.
// Accepted draws come back sorted by period id.
func (v *DrawValidator) Ingest(source string, raw []RawDraw) IngestResult {
	var result IngestResult
	seen := make(map[string]struct{}, len(raw))

	for _, r := range raw {
		draw, rej, ok := v.check(r)
		if !ok {
			result.Rejections = append(result.Rejections, rej)
			v.audit.LogDrawRejected(source, rej.Period, rej.Reason, rej.Detail)
			continue
		}
		if _, dup := seen[draw.PeriodID]; dup {
			rej := Rejection{Period: draw.PeriodID, Reason: RejectDuplicate}
			result.Rejections = append(result.Rejections, rej)
			v.audit.LogDrawRejected(source, rej.Period, rej.Reason, "")
			continue
		}
		seen[draw.PeriodID] = struct{}{}
		if text := strings.TrimSpace(r.Date); text != "" {
			date, ok := parseDrawDate(text)
			if !ok {
				result.UndatedPeriods = append(result.UndatedPeriods, draw.PeriodID)
				v.audit.LogUnparsedDate(source, draw.PeriodID, text)
			}
			draw.Date = date
		}
		result.Accepted = append(result.Accepted, draw)
	}

	sort.SliceStable(result.Accepted, func(i, j int) bool {
		return result.Accepted[i].PeriodID < result.Accepted[j].PeriodID
	})

	v.audit.LogIngestion(source, len(result.Accepted), len(result.Rejections), result.Duplicates())
	return result
}

func (v *DrawValidator) check(r RawDraw) (models.Draw, Rejection, bool) {
	period := strings.TrimSpace(r.Period)
	if period == "" {
		return models.Draw{}, Rejection{Reason: RejectEmptyPeriod}, false
	}

	digits, err := models.DigitsFromSlice(r.Numbers)
	if err != nil {
		return models.Draw{}, Rejection{Period: period, Reason: RejectBadNumbers, Detail: err.Error()}, false
	}

	return models.Draw{PeriodID: period, Digits: digits}, Rejection{}, true
}

// parseDrawDate accepts the common date layouts; a date is never a reason to drop a draw
func parseDrawDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
