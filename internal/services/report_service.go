package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"queue-system/config"
	"queue-system/internal/store"
	"queue-system/models"
)

// ReportService is the read side: filter+aggregate over participants and
// line-length samples. No data always means zeros, never a division error.
type ReportService struct {
	App    core.App
	Redis  *redis.Client
	Config *config.Config
}

func NewReportService(app core.App, redisClient *redis.Client, cfg *config.Config) *ReportService {
	return &ReportService{App: app, Redis: redisClient, Config: cfg}
}

const dbTimeLayout = "2006-01-02 15:04:05.000Z"

// Stats builds the reporting snapshot for one queue, optionally bounded by
// a joined_at date range. Snapshots are cached briefly in Redis.
func (s *ReportService) Stats(ctx context.Context, queueCode string, from, to *time.Time) (*models.QueueStats, error) {
	cacheKey := statsCacheKey(queueCode, from, to)
	if cached := s.cachedStats(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	queueRecord, err := store.QueueByCode(s.App, queueCode)
	if err != nil {
		return nil, err
	}

	stats := &models.QueueStats{QueueCode: queueCode}

	if err := s.fillStateCounts(stats, queueRecord.Id, from, to); err != nil {
		return nil, err
	}
	if err := s.fillDurations(stats, queueRecord.Id, from, to); err != nil {
		return nil, err
	}
	if err := s.fillLineLengths(stats, queueRecord.Id, from, to); err != nil {
		return nil, err
	}
	fillPercentages(stats)

	s.cacheStats(ctx, cacheKey, stats)
	return stats, nil
}

func (s *ReportService) fillStateCounts(stats *models.QueueStats, queueID string, from, to *time.Time) error {
	query := "SELECT state, COUNT(*) AS total FROM participants WHERE queue = {:queue}"
	params := dbx.Params{"queue": queueID}
	query += rangeClause("joined_at", from, to, params)
	query += " GROUP BY state"

	var rows []struct {
		State string `db:"state"`
		Total int    `db:"total"`
	}
	if err := s.App.DB().NewQuery(query).Bind(params).All(&rows); err != nil {
		return fmt.Errorf("state counts: %w", err)
	}

	for _, row := range rows {
		stats.TotalJoined += row.Total
		switch models.ParticipantState(row.State) {
		case models.StateWaiting:
			stats.WaitingCount = row.Total
		case models.StateServing:
			stats.ServingCount = row.Total
		case models.StateCompleted:
			stats.CompletedCount = row.Total
		case models.StateCancelled:
			stats.CancelledCount = row.Total
		case models.StateNoShow:
			stats.NoShowCount = row.Total
		}
	}
	return nil
}

func (s *ReportService) fillDurations(stats *models.QueueStats, queueID string, from, to *time.Time) error {
	params := dbx.Params{"queue": queueID}
	waitQuery := "SELECT MIN(waited_minutes) AS min_v, AVG(waited_minutes) AS avg_v, MAX(waited_minutes) AS max_v" +
		" FROM participants WHERE queue = {:queue} AND state = 'completed'"
	waitQuery += rangeClause("joined_at", from, to, params)

	var wait struct {
		Min sql.NullFloat64 `db:"min_v"`
		Avg sql.NullFloat64 `db:"avg_v"`
		Max sql.NullFloat64 `db:"max_v"`
	}
	if err := s.App.DB().NewQuery(waitQuery).Bind(params).One(&wait); err != nil {
		return fmt.Errorf("wait durations: %w", err)
	}
	stats.MinWaitMinutes = int(wait.Min.Float64)
	stats.AvgWaitMinutes = wait.Avg.Float64
	stats.MaxWaitMinutes = int(wait.Max.Float64)

	serveParams := dbx.Params{"queue": queueID}
	serveQuery := "SELECT MIN(d) AS min_v, AVG(d) AS avg_v, MAX(d) AS max_v FROM (" +
		"SELECT (julianday(service_completed_at) - julianday(service_started_at)) * 1440 AS d" +
		" FROM participants WHERE queue = {:queue} AND state = 'completed'" +
		" AND service_started_at != '' AND service_completed_at != ''" +
		rangeClause("joined_at", from, to, serveParams) + ")"

	var serve struct {
		Min sql.NullFloat64 `db:"min_v"`
		Avg sql.NullFloat64 `db:"avg_v"`
		Max sql.NullFloat64 `db:"max_v"`
	}
	if err := s.App.DB().NewQuery(serveQuery).Bind(serveParams).One(&serve); err != nil {
		return fmt.Errorf("serve durations: %w", err)
	}
	stats.MinServeMinutes = int(serve.Min.Float64)
	stats.AvgServeMinutes = serve.Avg.Float64
	stats.MaxServeMinutes = int(serve.Max.Float64)
	return nil
}

func (s *ReportService) fillLineLengths(stats *models.QueueStats, queueID string, from, to *time.Time) error {
	params := dbx.Params{"queue": queueID}
	query := "SELECT MAX(length) AS max_v, AVG(length) AS avg_v FROM line_lengths WHERE queue = {:queue}"
	query += rangeClause("recorded_at", from, to, params)

	var row struct {
		Max sql.NullFloat64 `db:"max_v"`
		Avg sql.NullFloat64 `db:"avg_v"`
	}
	if err := s.App.DB().NewQuery(query).Bind(params).One(&row); err != nil {
		return fmt.Errorf("line lengths: %w", err)
	}
	stats.PeakLineLength = int(row.Max.Float64)
	stats.AverageLineLength = row.Avg.Float64
	return nil
}

// fillPercentages derives the share of each terminal outcome. Zero joins
// leaves all percentages at zero.
func fillPercentages(stats *models.QueueStats) {
	if stats.TotalJoined == 0 {
		return
	}
	total := decimal.NewFromInt(int64(stats.TotalJoined))
	percent := func(count int) float64 {
		v, _ := decimal.NewFromInt(int64(count)).
			Div(total).
			Mul(decimal.NewFromInt(100)).
			Round(1).
			Float64()
		return v
	}
	stats.ServedPercent = percent(stats.CompletedCount)
	stats.CancelledPercent = percent(stats.CancelledCount)
	stats.NoShowPercent = percent(stats.NoShowCount)
}

func rangeClause(field string, from, to *time.Time, params dbx.Params) string {
	clause := ""
	if from != nil {
		clause += " AND " + field + " >= {:range_from}"
		params["range_from"] = from.UTC().Format(dbTimeLayout)
	}
	if to != nil {
		clause += " AND " + field + " <= {:range_to}"
		params["range_to"] = to.UTC().Format(dbTimeLayout)
	}
	return clause
}

func statsCacheKey(queueCode string, from, to *time.Time) string {
	f, t := "", ""
	if from != nil {
		f = from.UTC().Format(time.RFC3339)
	}
	if to != nil {
		t = to.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("queue:stats:%s:%s:%s", queueCode, f, t)
}

func (s *ReportService) cachedStats(ctx context.Context, key string) *models.QueueStats {
	if s.Redis == nil {
		return nil
	}
	data, err := s.Redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	var stats models.QueueStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil
	}
	return &stats
}

func (s *ReportService) cacheStats(ctx context.Context, key string, stats *models.QueueStats) {
	if s.Redis == nil {
		return
	}
	data, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.Redis.Set(ctx, key, data, s.Config.StatsCacheTTL).Err(); err != nil {
		slog.Warn("stats cache write failed", "key", key, "error", err)
	}
}
