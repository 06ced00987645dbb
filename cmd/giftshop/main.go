package main

import "os"

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the command line and returns the process exit status. Cobra
// has already printed any error to stderr.
func run(args []string) int {
	rootCmd.SetArgs(args)
	if err := Execute(); err != nil {
		return 1
	}
	return 0
}
