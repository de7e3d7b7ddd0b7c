package main

import (
	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{Use: "lexsearch"}

	root.AddCommand(serveCMD(), searchCMD(), askCMD())
	_ = root.Execute()
}
