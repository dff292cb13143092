package config

import (
	"errors"
	"fmt"
	"log"
)

var supportedDrivers = map[string]bool{"pgx": true, "pq": true, "sqlite": true}

// Validate reports every missing or malformed required setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("missing required env DATABASE_URL"))
	}
	if !supportedDrivers[c.DBDriver] {
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver))
	}
	if len(c.JWTAccessSecret) == 0 {
		errs = append(errs, errors.New("missing required env JWT_SECRET"))
	}
	if len(c.JWTRefreshSecret) == 0 {
		errs = append(errs, errors.New("missing required env JWT_REFRESH_SECRET"))
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid SERVER_PORT %d", c.ServerPort))
	}
	return errors.Join(errs...)
}

func MustValid(c Config) {
	if err := c.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
}
