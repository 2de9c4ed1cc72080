package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"slotsim/internal/biz"
	"slotsim/internal/slot"

	"github.com/redis/go-redis/v9"
	"github.com/yola1107/kratos/v2/log"
)

const (
	// hash of pass id to PassStats
	_statsKey = "slotsim:stats:%s"

	// last pass id of a mode
	_latestKey = "slotsim:stats:%s:latest"

	// pending CalibrationUpdate, consumed by the next pass
	_updateKey = "slotsim:calibration:%s"

	_statsTTL = 7 * 24 * time.Hour
)

type calibrationRepo struct {
	data *Data
	log  *log.Helper
}

// NewCalibrationRepo .
func NewCalibrationRepo(data *Data, logger log.Logger) biz.CalibrationRepo {
	return &calibrationRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *calibrationRepo) SaveStats(ctx context.Context, passID string, stats *slot.PassStats) error {
	body, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode stats of pass %s: %w", passID, err)
	}
	key := fmt.Sprintf(_statsKey, stats.Mode)
	_, err = r.data.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, passID, body)
		pipe.Expire(ctx, key, _statsTTL)
		pipe.Set(ctx, fmt.Sprintf(_latestKey, stats.Mode), passID, _statsTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save stats of pass %s: %w", passID, err)
	}
	return nil
}

func (r *calibrationRepo) TakeUpdate(ctx context.Context, mode string) (*slot.CalibrationUpdate, error) {
	body, err := r.data.rdb.GetDel(ctx, fmt.Sprintf(_updateKey, mode)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read calibration update for %s: %w", mode, err)
	}
	var u slot.CalibrationUpdate
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, fmt.Errorf("decode calibration update for %s: %w", mode, err)
	}
	if u.Mode == "" {
		u.Mode = mode
	}
	if u.Mode != mode {
		r.log.WithContext(ctx).Warnf("calibration update under %s names mode %s", mode, u.Mode)
		return nil, fmt.Errorf("calibration update under %s names mode %s", mode, u.Mode)
	}
	return &u, nil
}
