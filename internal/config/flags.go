package config

import (
	"flag"
	"os"
	"time"

	"github.com/dkurov/campdir/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-e string   GraphQL API endpoint URL (default from Config)
//	-r string   AWS region of the user pool (default from Config)
//	-u string   Cognito app client id (default from Config)
//	-t int      request timeout in seconds (default from Config)
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-e", "-r", "-u", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.GraphQLEndpoint, "e", cfg.GraphQLEndpoint, "GraphQL API endpoint URL")
	fs.StringVar(&cfg.AWSRegion, "r", cfg.AWSRegion, "AWS region of the Cognito user pool")
	fs.StringVar(&cfg.CognitoClientID, "u", cfg.CognitoClientID, "Cognito user-pool app client id")
	requestTimeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
}
