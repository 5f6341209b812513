package config

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/ayusman/pinchpoint/internal/arbiter"
)

// EnvPrefix prefixes every environment variable read by FromEnv.
const EnvPrefix = "PINCHPOINT_"

// ErrInvalidEnv wraps every environment parse failure.
var ErrInvalidEnv = errors.New("invalid environment")

var envOptions = env.Options{
	Prefix: EnvPrefix,
	FuncMap: map[reflect.Type]env.ParserFunc{
		reflect.TypeOf(time.Duration(0)):    parseDuration,
		reflect.TypeOf(arbiter.WakeMode("")): parseWakeMode,
	},
}

// parseDuration accepts Go duration syntax ("250ms") or a bare number of milliseconds.
func parseDuration(v string) (any, error) {
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(v)
}

func parseWakeMode(v string) (any, error) {
	return arbiter.ParseWakeMode(v)
}

// FromEnv returns base overlaid with any PINCHPOINT_* variables that are set, named
// by the env tags on Config. Empty variables are ignored. The result is not validated.
func FromEnv(base Config) (Config, error) {
	c := base
	if err := env.ParseWithOptions(&c, envOptions); err != nil {
		return base, fmt.Errorf("%w: %w", ErrInvalidEnv, err)
	}
	return c, nil
}
