package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"resolution-rag-be/internal/bootstrap"
	"resolution-rag-be/internal/entity"
	"resolution-rag-be/internal/repository/implementation"
	"resolution-rag-be/internal/service"
	"resolution-rag-be/pkg/embedding"
	"resolution-rag-be/pkg/resolution"
	"resolution-rag-be/pkg/rag/search"
	"resolution-rag-be/pkg/utils"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Run the hybrid retrieval for a query",
		Long:  "Run the numeric, keyword and vector strategies over every collection and print the selected context. With --memory the given PDFs are indexed into a throwaway in-process store instead of using the database.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}
	cmd.Flags().StringSliceP("words", "w", nil, "Keywords for the keyword strategy")
	cmd.Flags().IntP("n", "n", 5, "Number of documents to select")
	cmd.Flags().Bool("memory", false, "Search an in-memory index built from --pdf files")
	cmd.Flags().StringSlice("pdf", nil, "PDF files to index with --memory")
	cmd.Flags().StringP("collection", "c", "default", "Collection for --pdf files")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	words, _ := cmd.Flags().GetStringSlice("words")
	n, _ := cmd.Flags().GetInt("n")
	inMemory, _ := cmd.Flags().GetBool("memory")
	pdfs, _ := cmd.Flags().GetStringSlice("pdf")
	collection, _ := cmd.Flags().GetString("collection")
	query := strings.Join(args, " ")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := loadConfig()
	rdb := bootstrap.NewRedisClient(cfg.App.RedisURL)
	if rdb != nil {
		defer rdb.Close()
	}
	embedder := bootstrap.NewEmbeddingProvider(cfg, rdb)

	var st search.Store
	if inMemory {
		index := search.NewMemoryIndex()
		for _, path := range pdfs {
			added, err := indexInMemory(ctx, index, embedder, collection, path, cfg.Rag.ChunkSize, cfg.Rag.ChunkOverlap)
			if err != nil {
				exitErr("index "+path, err)
			}
			label.Printf("• %s: %d chunks\n", path, added)
		}
		st = index
	} else {
		db, err := openDB(cfg)
		if err != nil {
			exitErr("connect database", err)
		}
		st = implementation.NewEmbeddingRepository(db)
	}

	retriever := search.NewRetriever(st, embedder, nil, search.Config{VectorLimit: cfg.Rag.VectorLimit})
	res, err := retriever.Search(ctx, query, words, n)
	if err != nil {
		exitErr("search", err)
	}

	if jsonOutput {
		b, _ := json.MarshalIndent(res, "", "  ")
		fmt.Println(string(b))
		return
	}

	heading.Printf("%d results for %q\n", len(res.Items), query)
	for i, item := range res.Items {
		ok.Printf("%d. %s", i+1, item.DocumentName)
		fmt.Printf("  page %s  %s  %.4f\n", item.ResolvePage, item.Strategy, item.Similarity)
		fmt.Printf("   %s\n", item.Content)
	}
}

// indexInMemory extracts, chunks and embeds one PDF into index.
func indexInMemory(ctx context.Context, index *search.MemoryIndex, embedder embedding.EmbeddingProvider, collection, path string, chunkSize, overlap int) (int, error) {
	pages, err := resolution.ReadFile(path)
	if err != nil {
		return 0, err
	}
	res := resolution.Extract(pages, path)
	doc := &entity.Document{Name: filepath.Base(path), CollectionName: collection, Path: path}
	base := service.BaseMetadata(doc, res)

	added := 0
	for _, chunk := range utils.SplitPaired(res.OperativeRaw, res.OperativeEmbed, chunkSize, overlap) {
		emb, err := embedder.Generate(ctx, chunk.Normalized, embedding.TaskRetrievalDocument)
		if err != nil {
			return added, err
		}
		meta := base
		meta.UUID = uuid.NewString()
		meta.ChunkIndex = chunk.Index
		meta.Text = chunk.Raw
		created, err := index.Add(meta, emb.Vector())
		if err != nil {
			return added, err
		}
		if created {
			added++
		}
	}
	return added, nil
}
