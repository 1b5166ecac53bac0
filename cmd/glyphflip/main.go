package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const usage = `glyphflip - turn upside-down printed text right side up, character by character

Usage:
  glyphflip flip [options] <input> [output]   Flip every character of an image
  glyphflip detect [options] <input>          Print the detected character regions as JSON
  glyphflip capture [options]                 Take a picture and optionally flip it
  glyphflip serve [options]                   Run the MCP server on stdin/stdout
  glyphflip version                           Print version information
  glyphflip help                              Print this help message

Inputs and outputs are file paths or s3://bucket/key URLs.
Run "glyphflip <command> -h" for the options of a command.

Environment variables:
  GLYPHFLIP_CONFIG             Configuration file (default: <user config dir>/glyphflip/config.json)
  GLYPHFLIP_LOG_LEVEL          debug, info, warn or error
  GLYPHFLIP_WIDTH_THRESHOLD    Minimum character width, exclusive
  GLYPHFLIP_BACKEND            native or opencv
  GLYPHFLIP_OUTPUT_FORMAT      png, jpeg, webp, bmp, tiff or gif
  GLYPHFLIP_S3_REGION          Region for s3:// references
  GLYPHFLIP_S3_ENDPOINT        Custom S3 endpoint (MinIO and friends)

A .env file in the working directory is read before the environment.
`

func main() {
	// Logging goes to stderr; stdout is for results and MCP protocol
	log.SetOutput(os.Stderr)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to read .env: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	var err error
	switch args[0] {
	case "flip":
		err = runFlip(ctx, args[1:], stdout, stderr)
	case "detect":
		err = runDetect(ctx, args[1:], stdout, stderr)
	case "capture":
		err = runCapture(ctx, args[1:], stdout, stderr)
	case "serve":
		err = runServe(args[1:], stderr)
	case "--version", "-v", "version":
		fmt.Fprintf(stdout, "glyphflip %s\n", Version)
		fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
		fmt.Fprintf(stdout, "  Backends:   %v\n", backendNames())
		return 0
	case "--help", "-h", "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintf(stderr, "glyphflip %s: %v\n", args[0], err)
		return 2
	default:
		fmt.Fprintf(stderr, "glyphflip %s: %v\n", args[0], err)
		return 1
	}
}
