package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"resolution-rag-be/internal/bootstrap"
	"resolution-rag-be/internal/entity"
	"resolution-rag-be/internal/repository/specification"
	"resolution-rag-be/internal/repository/unitofwork"
	"resolution-rag-be/internal/service"
	"resolution-rag-be/pkg/events"
	"resolution-rag-be/pkg/resolution"
	"resolution-rag-be/pkg/storage"
	"resolution-rag-be/pkg/utils"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "index [pdf...]",
		Short: "Store and index resolution PDFs synchronously",
		Long:  "Copy each PDF into the upload directory, register it and embed its chunks. Re-running on an indexed file only fills missing chunks.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runIndex,
	}
	cmd.Flags().StringP("collection", "c", "", "Collection name (required)")
	_ = cmd.MarkFlagRequired("collection")

	RootCmd.AddCommand(cmd)
}

func runIndex(cmd *cobra.Command, args []string) {
	collection, _ := cmd.Flags().GetString("collection")
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := loadConfig()
	db, err := openDB(cfg)
	if err != nil {
		exitErr("connect database", err)
	}
	log := cliLogger(cfg)
	defer log.Sync()

	rdb := bootstrap.NewRedisClient(cfg.App.RedisURL)
	if rdb != nil {
		defer rdb.Close()
	}

	uowFactory := unitofwork.NewRepositoryFactory(db)
	blobs := storage.NewLocalStore(cfg.App.UploadDir, cfg.App.BaseURL, cfg.App.UploadMountPath)
	indexer := service.NewIndexingService(
		uowFactory,
		bootstrap.NewEmbeddingProvider(cfg, rdb),
		nil,
		events.NopPublisher{},
		service.IndexingConfig{ChunkSize: cfg.Rag.ChunkSize, ChunkOverlap: cfg.Rag.ChunkOverlap},
		log,
	)

	failed := 0
	for _, path := range args {
		if err := indexFile(ctx, uowFactory, blobs, indexer, collection, path); err != nil {
			warn.Printf("✗ %s: %v\n", path, err)
			failed++
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func indexFile(ctx context.Context, uowFactory unitofwork.RepositoryFactory, blobs *storage.LocalStore, indexer service.IIndexingService, collection, path string) error {
	pages, err := resolution.ReadFile(path)
	if err != nil {
		return err
	}

	doc, err := registerFile(ctx, uowFactory, blobs, collection, path)
	if err != nil {
		return err
	}

	report, err := indexer.IndexPages(ctx, doc.Id, pages)
	if err != nil {
		return err
	}

	ok.Printf("✓ %s", report.ResolutionId)
	fmt.Printf(" (document %d): %d chunks, %d stored, %d skipped, %d failed in %.2fs\n",
		report.DocumentId, report.Chunks, report.Stored, report.Skipped, report.Failed, report.Duration)
	if report.PageFallback != "" {
		warn.Printf("  operative page %s: %s\n", report.OperativePage, report.PageFallback)
	}
	return nil
}

// registerFile copies the PDF into storage and creates its document row,
// reusing both when the file was registered before.
func registerFile(ctx context.Context, uowFactory unitofwork.RepositoryFactory, blobs *storage.LocalStore, collection, path string) (*entity.Document, error) {
	name := filepath.Base(path)
	objectPath := collection + "/" + utils.CleanFilename(name)

	uow := uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByPath{Path: objectPath})
	if err != nil {
		return nil, err
	}
	if doc != nil {
		label.Printf("• %s already registered as document %d\n", name, doc.Id)
		return doc, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	publicURL, err := blobs.Upload(ctx, objectPath, f, "application/pdf")
	if errors.Is(err, storage.ErrObjectExists) {
		publicURL = blobs.PublicURL(objectPath)
	} else if err != nil {
		return nil, err
	}

	doc = &entity.Document{
		Name:           name,
		CollectionName: collection,
		Path:           publicURL,
		PhysicalPath:   objectPath,
	}
	if err := uow.DocumentRepository().Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}
