package app

import (
	"time"

	intervals "github.com/MawKKe/integer-interval-expressions-go"
	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap/zapcore"
)

// Environment defines the interface that all environment configurations must implement.
// Embed BaseEnvironment in your struct to satisfy this interface.
type Environment interface {
	port() int
	serviceName() string
	logLevel() zapcore.Level
	showExceptions() bool
	errorPages() string
	shutdownGrace() time.Duration
}

// BaseEnvironment contains the required environment variables. Embed this in your
// custom environment struct.
type BaseEnvironment struct {
	Port        int           `env:"AHTTP_PORT" envDefault:"8080"`
	ServiceName string        `env:"AHTTP_SERVICE_NAME,required"`
	LogLevel    zapcore.Level `env:"AHTTP_LOG_LEVEL" envDefault:"info"`
	// ShowExceptions renders full error detail instead of error pages. Never
	// enable outside development.
	ShowExceptions bool `env:"AHTTP_SHOW_EXCEPTIONS" envDefault:"false"`
	// ErrorPages selects which status codes get the service's plain error page,
	// as an integer interval expression, e.g. "500-599" or "404,500-503".
	ErrorPages    string        `env:"AHTTP_ERROR_PAGES" envDefault:"500-599"`
	ShutdownGrace time.Duration `env:"AHTTP_SHUTDOWN_GRACE" envDefault:"15s"`
}

func (e BaseEnvironment) port() int {
	return e.Port
}

func (e BaseEnvironment) serviceName() string {
	return e.ServiceName
}

func (e BaseEnvironment) logLevel() zapcore.Level {
	return e.LogLevel
}

func (e BaseEnvironment) showExceptions() bool {
	return e.ShowExceptions
}

func (e BaseEnvironment) errorPages() string {
	return e.ErrorPages
}

func (e BaseEnvironment) shutdownGrace() time.Duration {
	return e.ShutdownGrace
}

var _ Environment = BaseEnvironment{}

// ParseEnv parses environment variables into the given Environment type.
func ParseEnv[E Environment]() func() (E, error) {
	return func() (e E, err error) {
		if err := env.Parse(&e); err != nil {
			return e, errors.Wrap(err, "failed to parse environment")
		}
		return e, nil
	}
}

// ValidateErrorStatusCodes checks that the interval expression expr covers every
// required status code. Deferred routes settle failures with 500 by default, so the
// expression should at least include it.
func ValidateErrorStatusCodes(expr string, required ...int) error {
	parsed, err := intervals.ParseExpression(expr)
	if err != nil {
		return errors.Wrapf(err, "failed to parse status code expression %q", expr)
	}

	var missing []int
	for _, code := range required {
		if !parsed.Matches(code) {
			missing = append(missing, code)
		}
	}

	if len(missing) > 0 {
		return errors.Newf(
			"status code expression %q does not cover required codes, missing: %v, recommended value: %q",
			expr, missing, "500-599")
	}

	return nil
}

// errorPageCodes expands the interval expression into the concrete HTTP error status
// codes (400-599) it matches.
func errorPageCodes(expr string) ([]int, error) {
	parsed, err := intervals.ParseExpression(expr)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse status code expression %q", expr)
	}

	var codes []int
	for code := 400; code <= 599; code++ {
		if parsed.Matches(code) {
			codes = append(codes, code)
		}
	}

	return codes, nil
}
