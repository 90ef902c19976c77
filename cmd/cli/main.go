package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/mesadesk/ticketdesk/internal/cli"
)

func main() {

	baseURL := flag.String("s", "http://127.0.0.1:8080", "server base URL")
	flag.Parse()

	ctx := context.Background()
	app := cli.NewApp(*baseURL, os.Stdin, os.Stdout)

	if err := app.Register(ctx); err != nil {
		log.Fatalf("%v", err)
	}

}
