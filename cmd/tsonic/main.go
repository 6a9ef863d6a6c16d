package main

import (
	"fmt"
	"os"
	"strings"
)

const version = "0.1.0-dev"

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 {
		// No subcommand — default to build.
		return runBuild(os.Args[1:])
	}

	switch os.Args[1] {
	case "build":
		return runBuild(os.Args[2:])
	case "--version", "-v":
		fmt.Println("tsonic", version)
		return 0
	case "--help", "-h":
		printUsage()
		return 0
	default:
		if strings.HasPrefix(os.Args[1], "-") {
			return runBuild(os.Args[1:])
		}
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		return 1
	}
}

func printUsage() {
	fmt.Println("tsonic - TypeScript to C# compiler targeting .NET NativeAOT")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  tsonic [flags]              Build project (default)")
	fmt.Println("  tsonic build [flags]        Build project")
	fmt.Println()
	fmt.Println("Global Flags:")
	fmt.Println("  --version, -v          Print version and exit")
	fmt.Println("  --help, -h             Print this help message")
	fmt.Println()
	fmt.Println("Build Flags:")
	fmt.Println("  --project, -p <path>   Path to tsconfig.json (default: tsconfig.json)")
	fmt.Println("  --config <path>        Path to tsonic.json")
	fmt.Println("  --mode <mode>          Override mode: dotnet or js")
	fmt.Println("  --publish              Run dotnet publish after emission")
	fmt.Println("  --timing               Print per-phase timing to stderr")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  tsonic")
	fmt.Println("  tsonic build --config tsonic.json")
	fmt.Println("  tsonic build --mode js --publish")
	fmt.Println()
}
