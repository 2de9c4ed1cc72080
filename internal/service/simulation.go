package service

import (
	"slotsim/internal/biz"

	"github.com/yola1107/kratos/v2/log"
	"github.com/yola1107/kratos/v2/transport/http"
)

// SimulationService exposes simulation passes over HTTP.
type SimulationService struct {
	uc  *biz.SimulationUsecase
	log *log.Helper
}

// NewSimulationService new a simulation service.
func NewSimulationService(uc *biz.SimulationUsecase, logger log.Logger) *SimulationService {
	return &SimulationService{uc: uc, log: log.NewHelper(logger)}
}

// ModeInfo describes one bet mode of the loaded game.
type ModeInfo struct {
	Name       string       `json:"name"`
	Cost       string       `json:"cost"`
	RTP        float64      `json:"rtp"`
	IsBuyBonus bool         `json:"isBuyBonus"`
	Buckets    []BucketInfo `json:"buckets"`
}

type BucketInfo struct {
	Criteria string  `json:"criteria"`
	Quota    float64 `json:"quota"`
}

// RunPass handles POST /v1/passes.
func (s *SimulationService) RunPass(ctx http.Context) error {
	var req biz.PassRequest
	if err := ctx.Bind(&req); err != nil {
		return biz.ErrInvalidPass.WithCause(err)
	}
	pass, err := s.uc.RunPass(ctx, &req)
	if err != nil {
		return err
	}
	return ctx.Result(200, pass)
}

// GetPass handles GET /v1/passes/{id}.
func (s *SimulationService) GetPass(ctx http.Context) error {
	pass, err := s.uc.Pass(ctx.Vars().Get("id"))
	if err != nil {
		return err
	}
	return ctx.Result(200, pass)
}

// ListModes handles GET /v1/modes.
func (s *SimulationService) ListModes(ctx http.Context) error {
	g := s.uc.Game()
	out := make([]ModeInfo, 0)
	for _, name := range g.ModeNames() {
		m, err := g.Mode(name)
		if err != nil {
			return err
		}
		info := ModeInfo{Name: m.Name, Cost: m.Cost.String(), RTP: m.RTP, IsBuyBonus: m.IsBuyBonus}
		for _, b := range m.Buckets {
			info.Buckets = append(info.Buckets, BucketInfo{Criteria: b.Criteria, Quota: b.Quota})
		}
		out = append(out, info)
	}
	return ctx.Result(200, out)
}
