package appconf

import (
	"fmt"
	"strings"
)

// Environment selects environment-dependent defaults such as the log level.
type Environment int

const (
	Development Environment = iota
	Test
	Production
)

func (e Environment) String() string {
	switch e {
	case Development:
		return "development"
	case Test:
		return "test"
	case Production:
		return "production"
	}
	return fmt.Sprintf("Environment(%d)", int(e))
}

// EnvFromString parses an environment name. Common abbreviations are
// accepted.
func EnvFromString(s string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "development", "dev":
		return Development, nil
	case "test", "testing":
		return Test, nil
	case "production", "prod":
		return Production, nil
	}
	return Development, fmt.Errorf("unknown environment %q", s)
}

// UnmarshalText lets Environment be read from YAML scalars.
func (e *Environment) UnmarshalText(text []byte) error {
	env, err := EnvFromString(string(text))
	if err != nil {
		return err
	}
	*e = env
	return nil
}

// DefaultLogLevel is the log level used when none is configured.
func (e Environment) DefaultLogLevel() string {
	switch e {
	case Development:
		return "debug"
	case Production:
		return "warn"
	}
	return "info"
}
