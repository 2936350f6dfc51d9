package config

import "time"

type Auth struct {
	JWTSecret           string        `env:"AUTH_JWT_SECRET,required"`
	AccessTokenDuration time.Duration `env:"AUTH_ACCESS_TOKEN_DURATION" envDefault:"24h"`
	Issuer              string        `env:"AUTH_ISSUER" envDefault:"retail-pos"`
}
