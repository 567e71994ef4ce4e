// Command chatlas serves the chatbot knowledge service: crawl websites,
// ingest documents, embed content, and search it over HTTP and
// optionally MCP.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/chatlas/chatlas/api"
	"github.com/chatlas/chatlas/chunk"
	"github.com/chatlas/chatlas/config"
	"github.com/chatlas/chatlas/crawl"
	"github.com/chatlas/chatlas/dbopen"
	"github.com/chatlas/chatlas/docpipe"
	"github.com/chatlas/chatlas/hashembed"
	"github.com/chatlas/chatlas/search"
	"github.com/chatlas/chatlas/store"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG"))
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	var lvl slog.Level
	switch cfg.Log.Level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := dbopen.Open(cfg.DB.Path, dbopen.WithMkdirAll(), dbopen.WithSchema(store.Schema))
	if err != nil {
		slog.Error("open database", "path", cfg.DB.Path, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	st := store.NewStore(db).WithLogger(logger)
	embedder := hashembed.New(hashembed.Config{Logger: logger})
	crawler := crawl.New(st, crawl.Config{
		Fetcher: crawl.FetcherConfig{
			Timeout:   cfg.Crawl.Timeout,
			MaxBytes:  cfg.Crawl.MaxBytes,
			UserAgent: cfg.Crawl.UserAgent,
		},
		Logger: logger,
	})
	searcher := search.New(st, embedder, search.Config{
		TopK:   cfg.Search.TopK,
		Logger: logger,
	})
	docs := docpipe.New(docpipe.Config{Logger: logger})

	server := api.New(st, crawler, embedder, searcher, docs, api.Config{
		ChunkSize:     cfg.Chunk.Size,
		ChunkOverlap:  cfg.Chunk.Overlap,
		ChunkStrategy: chunk.Strategy(cfg.Chunk.Strategy),
		MaxBodyBytes:  cfg.Server.MaxBodyBytes,
		Logger:        logger,
	})

	// Optional MCP over stdio, alongside HTTP. The MCP framing owns
	// stdout in this mode, so logs move to stderr.
	if os.Getenv("MCP_TRANSPORT") == "stdio" {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
		slog.SetDefault(logger)

		mcpSrv := mcp.NewServer(&mcp.Implementation{
			Name:    "chatlas",
			Version: "1.0.0",
		}, nil)
		hashembed.RegisterMCP(mcpSrv, embedder)
		server.RegisterMCP(mcpSrv)

		go func() {
			slog.Info("MCP stdio starting")
			if err := mcpSrv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
				slog.Error("MCP stdio", "error", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	slog.Info("server stopped")
}
