// Package conf holds the bootstrap configuration scanned from configs/config.yaml.
package conf

import "time"

type Bootstrap struct {
	Server     *Server     `json:"server"`
	Data       *Data       `json:"data"`
	Simulation *Simulation `json:"simulation"`
}

type Server struct {
	HTTP *Server_HTTP `json:"http"`
}

type Server_HTTP struct {
	Network string `json:"network"`
	Addr    string `json:"addr"`
	Timeout string `json:"timeout"` // time.ParseDuration syntax
}

// TimeoutDuration returns the parsed timeout, 0 when unset or malformed.
func (h *Server_HTTP) TimeoutDuration() time.Duration {
	if h == nil || h.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(h.Timeout)
	if err != nil {
		return 0
	}
	return d
}

type Data struct {
	Database *Data_Database `json:"database"`
	Redis    *Data_Redis    `json:"redis"`
	Rabbitmq *Data_Rabbitmq `json:"rabbitmq"`
}

type Data_Database struct {
	Driver string `json:"driver"`
	Source string `json:"source"`
}

type Data_Redis struct {
	Addr string `json:"addr"`
}

type Data_Rabbitmq struct {
	Host       string `json:"host"`
	Port       int    `json:"port"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	Vhost      string `json:"vhost"`
	Exchange   string `json:"exchange"`
	RoutingKey string `json:"routing_key"`
}

type Simulation struct {
	GameConfig  string `json:"game_config"` // empty selects the embedded definition
	Seed        uint64 `json:"seed"`
	Workers     int    `json:"workers"`
	BatchSize   int    `json:"batch_size"`
	ExactQuotas bool   `json:"exact_quotas"`
	Calibrate   bool   `json:"calibrate"` // apply pending optimizer updates before a pass
	MaxRounds   int    `json:"max_rounds"`  // per pass, 0 selects the default
	KeepPasses  int    `json:"keep_passes"` // finished passes kept for lookup, 0 selects the default
}
