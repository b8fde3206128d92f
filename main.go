package main

import (
	"context"
	"time"

	"github.com/shandysiswandi/gosales/internal/app"
)

func main() {
	application := app.New()
	<-application.Start()

	// The drain budget starts counting when the termination signal arrives,
	// not at boot.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	application.Stop(ctx)
}
