package main

import (
	"go.uber.org/fx"

	"anvil-esign/internal/service"
)

func main() {
	fx.New(service.Modules()).Run()
}
