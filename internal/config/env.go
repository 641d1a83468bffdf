package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// LoadEnv reads the process-level overrides from the environment.
func LoadEnv() (Env, error) {
	var env Env
	if err := cleanenv.ReadEnv(&env); err != nil {
		return Env{}, fmt.Errorf("%s: %w", ErrEnvLoad, err)
	}
	return env, nil
}
