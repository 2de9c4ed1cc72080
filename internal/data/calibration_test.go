package data

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"slotsim/internal/slot"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/yola1107/kratos/v2/log"
)

// memRedis serves the few commands calibrationRepo issues from in-memory maps.
type memRedis struct {
	redis.UniversalClient

	strings map[string]string
	hashes  map[string]map[string]string
	ttl     map[string]time.Duration
	err     error
}

func newMemRedis() *memRedis {
	return &memRedis{
		strings: make(map[string]string),
		hashes:  make(map[string]map[string]string),
		ttl:     make(map[string]time.Duration),
	}
}

func (m *memRedis) GetDel(_ context.Context, key string) *redis.StringCmd {
	if m.err != nil {
		return redis.NewStringResult("", m.err)
	}
	v, ok := m.strings[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	delete(m.strings, key)
	return redis.NewStringResult(v, nil)
}

func (m *memRedis) TxPipelined(_ context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error) {
	if m.err != nil {
		return nil, m.err
	}
	return nil, fn(&memPipe{m: m})
}

type memPipe struct {
	redis.Pipeliner
	m *memRedis
}

func (p *memPipe) HSet(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	h, ok := p.m.hashes[key]
	if !ok {
		h = make(map[string]string)
		p.m.hashes[key] = h
	}
	for i := 0; i+1 < len(values); i += 2 {
		switch v := values[i+1].(type) {
		case []byte:
			h[fmt.Sprint(values[i])] = string(v)
		default:
			h[fmt.Sprint(values[i])] = fmt.Sprint(v)
		}
	}
	return redis.NewIntResult(int64(len(values)/2), nil)
}

func (p *memPipe) Expire(_ context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	p.m.ttl[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (p *memPipe) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	p.m.strings[key] = fmt.Sprint(value)
	p.m.ttl[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func newTestCalibrationRepo(rdb *memRedis) *calibrationRepo {
	return &calibrationRepo{data: &Data{rdb: rdb}, log: log.NewHelper(log.DefaultLogger)}
}

func TestTakeUpdate(t *testing.T) {
	ctx := context.Background()
	rdb := newMemRedis()
	repo := newTestCalibrationRepo(rdb)

	u, err := repo.TakeUpdate(ctx, "base")
	if err != nil || u != nil {
		t.Fatalf("missing key: update = %+v, err = %v", u, err)
	}

	rdb.strings[fmt.Sprintf(_updateKey, "base")] = `{"mode":"base","quotas":{"wincap":0.002,"0":0.4}}`
	u, err = repo.TakeUpdate(ctx, "base")
	if err != nil {
		t.Fatal(err)
	}
	if u.Mode != "base" || u.Quotas["wincap"] != 0.002 || u.Quotas["0"] != 0.4 {
		t.Fatalf("update = %+v", u)
	}
	// consumed by the read
	if _, ok := rdb.strings[fmt.Sprintf(_updateKey, "base")]; ok {
		t.Fatal("update still stored after take")
	}
	if u, err = repo.TakeUpdate(ctx, "base"); err != nil || u != nil {
		t.Fatalf("second take: update = %+v, err = %v", u, err)
	}
}

func TestTakeUpdateDefaultsMode(t *testing.T) {
	rdb := newMemRedis()
	rdb.strings[fmt.Sprintf(_updateKey, "bonus")] = `{"quotas":{"freegame":0.9}}`
	u, err := newTestCalibrationRepo(rdb).TakeUpdate(context.Background(), "bonus")
	if err != nil {
		t.Fatal(err)
	}
	if u.Mode != "bonus" {
		t.Fatalf("mode = %q, want bonus", u.Mode)
	}
}

func TestTakeUpdateErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
	}{
		{name: "mode mismatch", body: `{"mode":"bonus"}`},
		{name: "bad json", body: `{"mode":`},
		{name: "redis down", err: errors.New("connection refused")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rdb := newMemRedis()
			rdb.err = tt.err
			key := fmt.Sprintf(_updateKey, "base")
			if tt.body != "" {
				rdb.strings[key] = tt.body
			}
			u, err := newTestCalibrationRepo(rdb).TakeUpdate(context.Background(), "base")
			if err == nil {
				t.Fatalf("update = %+v, want error", u)
			}
			if tt.err != nil && !errors.Is(err, tt.err) {
				t.Fatalf("err = %v, want wrapping %v", err, tt.err)
			}
			if tt.body != "" {
				if _, ok := rdb.strings[key]; ok {
					t.Fatal("rejected update must still be consumed")
				}
			}
		})
	}
}

func TestSaveStats(t *testing.T) {
	rdb := newMemRedis()
	stats := &slot.PassStats{Mode: "base", Rounds: 100, TotalWin: decimal.NewFromInt(97), RTP: 0.97}
	if err := newTestCalibrationRepo(rdb).SaveStats(context.Background(), "pass-7", stats); err != nil {
		t.Fatal(err)
	}
	statsKey := fmt.Sprintf(_statsKey, "base")
	body, ok := rdb.hashes[statsKey]["pass-7"]
	if !ok {
		t.Fatalf("hashes = %v", rdb.hashes)
	}
	var got slot.PassStats
	if err := json.UnmarshalFromString(body, &got); err != nil {
		t.Fatal(err)
	}
	if got.Rounds != 100 || got.RTP != 0.97 || !got.TotalWin.Equal(stats.TotalWin) {
		t.Fatalf("stats = %+v", got)
	}
	if latest := rdb.strings[fmt.Sprintf(_latestKey, "base")]; latest != "pass-7" {
		t.Fatalf("latest = %q", latest)
	}
	if rdb.ttl[statsKey] != _statsTTL {
		t.Fatalf("ttl = %v", rdb.ttl[statsKey])
	}
}
