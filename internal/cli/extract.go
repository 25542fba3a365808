package cli

import (
	"encoding/json"
	"fmt"

	"resolution-rag-be/internal/config"
	"resolution-rag-be/pkg/resolution"
	"resolution-rag-be/pkg/utils"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "extract [pdf]",
		Short: "Print the structure of a resolution PDF",
		Long:  "Read a resolution PDF and print its identifier, operative page, considerations, copy recipients and chunks.",
		Args:  cobra.ExactArgs(1),
		Run:   runExtract,
	}
	cmd.Flags().Bool("chunks", false, "Also print the chunks that would be embedded")

	RootCmd.AddCommand(cmd)
}

type extractOutput struct {
	*resolution.Result
	ResolvePage string            `json:"resolve_page"`
	Chunks      []utils.ChunkPair `json:"chunks,omitempty"`
}

func runExtract(cmd *cobra.Command, args []string) {
	showChunks, _ := cmd.Flags().GetBool("chunks")

	pages, err := resolution.ReadFile(args[0])
	if err != nil {
		exitErr("read pdf", err)
	}
	res := resolution.Extract(pages, args[0])

	out := extractOutput{Result: res, ResolvePage: res.ResolvePage()}
	if showChunks {
		cfg := config.Load()
		out.Chunks = utils.SplitPaired(res.OperativeRaw, res.OperativeEmbed, cfg.Rag.ChunkSize, cfg.Rag.ChunkOverlap)
	}

	if jsonOutput {
		b, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(b))
		return
	}

	heading.Println(res.ResolutionID)
	label.Print("Pages: ")
	fmt.Println(res.TotalPages)
	label.Print("Number: ")
	fmt.Println(res.NumberResolution)
	label.Print("Operative page: ")
	fmt.Println(res.ResolvePage())
	if !res.OperativePage.Found {
		warn.Printf("  %s\n", res.OperativePage.Reason)
	}
	if !res.IDFromDocument {
		warn.Println("  identifier taken from the file name")
	}

	label.Printf("Considerations (%d):\n", len(res.Considerations))
	for i, c := range res.Considerations {
		fmt.Printf("  %d. %s\n", i+1, c)
	}
	label.Print("Copy: ")
	fmt.Println(res.CopyRecipients)
	label.Println("Operative clause:")
	fmt.Println(res.OperativeRaw)

	for _, c := range out.Chunks {
		label.Printf("Chunk %d:\n", c.Index)
		fmt.Println(c.Normalized)
	}
}
