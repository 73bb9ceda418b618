package main

import (
	_ "media-pipeline/docs"

	"media-pipeline/internal/app"

	"go.uber.org/fx"
)

// @title        Media Pipeline API
// @version      1.0
// @BasePath     /api
// @securityDefinitions.apikey FunctionKey
// @in           header
// @name         x-functions-key
func main() {
	fx.New(app.Server).Run()
}
