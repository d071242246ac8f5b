package main

import (
	"context"
	"os"

	"pifko/internal/boot"
)

func main() {
	os.Exit(boot.Run(context.Background(), boot.Orders))
}
