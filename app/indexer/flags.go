package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
)

var (
	sourceFlag     = pflag.StringP("source", "s", "", "Catalog source: local path or gs://bucket/object (default $CATALOG_SOURCE)")
	schemaOnlyFlag = pflag.Bool("schema-only", false, "Create the vector extension, tables and index, then exit")
	enqueueFlag    = pflag.Bool("enqueue", false, "Queue the job for the server's index workers instead of running it here")
	logLevelFlag   = pflag.String("log-level", "", "Log level (default $LOG_LEVEL)")
)

func parseFlags() {
	pflag.CommandLine.SortFlags = false
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "\nEmbed a certification catalog and upsert it into the vector index.\n\n %s [flags]\n\n", filepath.Base(os.Args[0]))
		pflag.PrintDefaults()
	}

	pflag.Parse()
}
