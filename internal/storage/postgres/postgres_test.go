package postgres

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/OCAP2/waypointsim/internal/config"
)

func TestInit_Unreachable(t *testing.T) {
	b := New(config.PostgresConfig{
		Host:     "127.0.0.1",
		Port:     "1",
		Username: "postgres",
		Password: "postgres",
		Database: "waypointsim",
	}, nil, zerolog.Nop())

	err := b.Init()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to postgres")
	assert.NoError(t, b.Close(), "close after failed init is safe")
}
