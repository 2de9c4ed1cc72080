package server

import (
	"slotsim/internal/conf"
	"slotsim/internal/service"

	"github.com/yola1107/kratos/v2/log"
	"github.com/yola1107/kratos/v2/middleware/recovery"
	"github.com/yola1107/kratos/v2/transport/http"
)

// NewHTTPServer new an HTTP server.
func NewHTTPServer(c *conf.Server, sim *service.SimulationService, logger log.Logger) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
	}
	if c.HTTP != nil {
		if c.HTTP.Network != "" {
			opts = append(opts, http.Network(c.HTTP.Network))
		}
		if c.HTTP.Addr != "" {
			opts = append(opts, http.Address(c.HTTP.Addr))
		}
		if d := c.HTTP.TimeoutDuration(); d > 0 {
			opts = append(opts, http.Timeout(d))
		}
	}
	srv := http.NewServer(opts...)
	RegisterSimulationHTTPServer(srv, sim)
	return srv
}

// RegisterSimulationHTTPServer mounts the simulation routes on srv.
func RegisterSimulationHTTPServer(srv *http.Server, sim *service.SimulationService) {
	r := srv.Route("/v1")
	r.POST("/passes", sim.RunPass)
	r.GET("/passes/{id}", sim.GetPass)
	r.GET("/modes", sim.ListModes)
}
