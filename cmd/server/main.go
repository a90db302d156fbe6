package main

import (
	"fmt"
	"os"

	// distroless環境でもタイムゾーンDBを利用できるようにする
	_ "time/tzdata"

	"github.com/suissan/secret-board/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
