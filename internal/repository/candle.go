package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"quantsim/types"
)

var bucketToInterval = map[types.Interval]string{
	types.OneMinute:      "1 minute",
	types.FiveMinutes:    "5 minutes",
	types.FifteenMinutes: "15 minutes",
	types.ThirtyMinutes:  "30 minutes",
	types.Hour:           "1 hour",
	types.FourHours:      "4 hours",
	types.Day:            "1 day",
	types.Week:           "1 week",
}

// GetCandles returns bucketed OHLCV aggregates for the asset over [start, end).
func (db *Database) GetCandles(assetId int, symbol string, interval types.Interval, start, end time.Time, ctx context.Context) ([]types.Candle, error) {
	bucket, ok := bucketToInterval[interval]
	if !ok {
		return nil, ErrIntervalNotSupported
	}
	rows, err := db.candles.candleAggregates(ctx, bucket, int32(assetId), start, end)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoCandles
		}
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoCandles
	}
	return convertCandles(rows, interval, symbol), nil
}

func convertCandles(rows []candleRow, interval types.Interval, symbol string) []types.Candle {
	var candles []types.Candle
	for _, row := range rows {
		candle := types.Candle{
			AssetId:  int(row.AssetID),
			Symbol:   symbol,
			Open:     row.Open,
			Close:    row.Close,
			High:     row.High,
			Low:      row.Low,
			Volume:   row.Volume,
			Interval: interval,
		}
		if row.Bucket != nil {
			candle.Timestamp = *row.Bucket
		}
		candles = append(candles, candle)
	}
	return candles
}
