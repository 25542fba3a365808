package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"resolution-rag-be/pkg/variation"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "variations [term]",
		Short: "List the keyword variants generated for a term",
		Args:  cobra.MinimumNArgs(1),
		Run:   runVariations,
	}

	RootCmd.AddCommand(cmd)
}

func runVariations(cmd *cobra.Command, args []string) {
	term := strings.Join(args, " ")
	variants := variation.Expand(term)

	if jsonOutput {
		b, _ := json.MarshalIndent(variants, "", "  ")
		fmt.Println(string(b))
		return
	}

	heading.Printf("%s (%d variants)\n", term, len(variants))
	for _, v := range variants {
		fmt.Println("  " + v)
	}
}
