package main //worker

import (
	"media-pipeline/internal/app"

	"go.uber.org/fx"
)

func main() {
	fx.New(app.Worker).Run()
}
