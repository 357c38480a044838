package main

import (
	"context"

	"github.com/avolkovs/codepad/internal/client/cli"
	"github.com/avolkovs/codepad/internal/client/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	app := cli.NewApp(cfg)
	app.Run(ctx)

}
