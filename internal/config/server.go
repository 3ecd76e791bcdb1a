package config

import "github.com/caarlos0/env/v11"

type ServerConfig struct {
	HTTPAddr    string `env:"REALTIME_ADDR" envDefault:":4100"`
	PostgresDSN string `env:"POSTGRES_DSN"`

	MinPlayersToStart   int `env:"MIN_PLAYERS_TO_START" envDefault:"3"`
	MatchDurationSec    int `env:"MATCH_DURATION_SEC" envDefault:"60"`
	DefaultRoomCapacity int `env:"DEFAULT_ROOM_CAPACITY" envDefault:"4"`
	MaxRoomCapacity     int `env:"MAX_ROOM_CAPACITY" envDefault:"16"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
