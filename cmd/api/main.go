// PlatePicker API server.
package main

import (
	"go.uber.org/fx"

	"github.com/JamieKoz/platepicker-api/internal/infrastructure/container"
)

func main() {
	fx.New(container.Module).Run()
}
