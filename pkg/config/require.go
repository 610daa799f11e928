package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var ErrMissingEnv = errors.New("missing required env")

type EnvError struct {
	Key   string
	Value string
	Err   error
}

func (e *EnvError) Error() string {
	return fmt.Sprintf("env %s=%q: %v", e.Key, e.Value, e.Err)
}

func (e *EnvError) Unwrap() error { return e.Err }

// RequireEnv returns the trimmed value of key or ErrMissingEnv.
func RequireEnv(key string) (string, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return "", fmt.Errorf("%w %s", ErrMissingEnv, key)
	}
	return v, nil
}
