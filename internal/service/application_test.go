package service

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

func TestModules_Validate(t *testing.T) {
	require.NoError(t, fx.ValidateApp(Modules()))
}
