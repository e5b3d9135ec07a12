package main

import (
	"context"
	"os"

	"github.com/dmitrijs2005/draftkeeper/internal/server"
)

func main() {
	if err := server.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
