package main

import (
	"fmt"
	"os"

	"rescueDispatch/cmd"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "token" {
		if err := cmd.IssueToken(os.Args[2:], os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := cmd.Run(); err != nil {
		os.Exit(1)
	}
}
