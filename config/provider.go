package config

import "go.uber.org/fx"

func Provide() *Config {
	cfg := &Config{}
	if err := LoadConfig(cfg); err != nil {
		panic(err)
	}
	return cfg
}

// NewProvider lets tests and embedders supply a pre-built config instead of
// reading the environment.
func NewProvider(customConfig *Config) fx.Option {
	if customConfig != nil {
		return fx.Provide(func() *Config {
			return customConfig
		})
	}
	return fx.Provide(Provide)
}

var Module = fx.Options(
	fx.Provide(Provide),
)
