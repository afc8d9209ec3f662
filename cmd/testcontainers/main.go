package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/localnerve/mapsdb/internal/testutil"
)

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	var dbType string
	flag.StringVar(&dbType, "db", "", "database type: postgres or mariadb (default DB_TYPE, then postgres)")
	flag.Parse()

	usage := `
Start a throwaway database container for local mapsdb development and print
the environment that points the server at it. Ctrl-C removes the container.

Usage:

testcontainers [-h] [-f ENV_FILE_PATH] [-db postgres|mariadb]

ENV_FILE_PATH: path to the .env file

example
  testcontainers -f /path/to/something/.env -db mariadb
`
	// if -h flag print usage and return
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		log.Printf("Loading environment variables from %s\n", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v\n", err)
		}
	}
	if dbType == "" {
		dbType = os.Getenv("DB_TYPE")
	}
	switch dbType {
	case "":
		dbType = "postgres"
	case "mysql":
		dbType = "mariadb"
	}

	ctx := context.Background()
	db, err := testutil.StartDatabase(ctx, dbType)
	if err != nil {
		log.Fatalf("Failed to create test container: %v\n", err)
	}

	for _, kv := range db.Env() {
		fmt.Println(kv)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	sig := <-sigs
	log.Printf("\nReceived signal: %v, terminating test container...\n", sig)
	if err := db.Terminate(ctx); err != nil {
		log.Printf("Failed to terminate container: %v\n", err)
	}
}
