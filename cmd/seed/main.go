// seed inserts development sample content: one published series with two posts and a draft post.
// Idempotent: skips everything when the sample series slug already exists.
package main

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/jaehkim-quant/research-platform/internal/config"
	contentrepo "github.com/jaehkim-quant/research-platform/internal/content/repository"
	contentservice "github.com/jaehkim-quant/research-platform/internal/content/service"
	"github.com/jaehkim-quant/research-platform/internal/db"
	"github.com/jaehkim-quant/research-platform/internal/logging"
)

const seriesSlug = "market-microstructure"

type samplePost struct {
	slug, title, summary, content string
	tags                          []string
	published                     bool
}

var samplePosts = []samplePost{
	{
		slug:      "order-book-basics",
		title:     "Order book basics",
		summary:   "How limit orders queue and what the spread tells you.",
		content:   "# Order book basics\n\nA limit order book keeps resting bids and asks sorted by price, then time.",
		tags:      []string{"microstructure", "liquidity"},
		published: true,
	},
	{
		slug:      "measuring-market-impact",
		title:     "Measuring market impact",
		summary:   "Square-root impact and why participation rate matters.",
		content:   "# Measuring market impact\n\nImpact grows roughly with the square root of traded volume.",
		tags:      []string{"microstructure", "execution"},
		published: true,
	},
	{
		slug:    "draft-queue-position",
		title:   "Queue position (draft)",
		summary: "Work in progress.",
		content: "Not ready yet.",
		tags:    []string{"draft"},
	},
}

func main() {
	logger := logging.Must(os.Getenv("APP_ENV"))
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}
	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db", zap.Error(err))
	}
	defer conn.Close()

	ctx := context.Background()
	seriesRepo := contentrepo.NewPostgresSeriesRepository(conn)
	exists, err := seriesRepo.SlugExists(ctx, seriesSlug)
	if err != nil {
		logger.Fatal("seed check", zap.Error(err))
	}
	if exists {
		logger.Info("seed already applied, skipping", zap.String("series", seriesSlug))
		return
	}

	opts := []contentservice.Option{contentservice.WithLogger(logger)}
	seriesSvc := contentservice.NewSeriesService(seriesRepo, opts...)
	postSvc := contentservice.NewPostService(contentrepo.NewPostgresPostRepository(conn), seriesRepo, opts...)

	series, err := seriesSvc.Create(ctx, contentservice.SeriesInput{
		Slug:        ptr(seriesSlug),
		Title:       ptr("Market microstructure"),
		Description: ptr("Notes on how trading venues actually match orders."),
		Level:       ptr("intermediate"),
		Published:   ptr(true),
	})
	if err != nil {
		logger.Fatal("create series", zap.Error(err))
	}

	order := 0
	for _, p := range samplePosts {
		in := contentservice.PostInput{
			Slug:      ptr(p.slug),
			Title:     ptr(p.title),
			Summary:   ptr(p.summary),
			Content:   ptr(p.content),
			Tags:      p.tags,
			Published: ptr(p.published),
		}
		if p.published {
			order++
			in.SeriesID = contentservice.Optional[string]{Set: true, Value: ptr(series.ID)}
			in.SeriesOrder = contentservice.Optional[int]{Set: true, Value: ptr(order)}
		}
		post, err := postSvc.Create(ctx, in)
		if err != nil {
			logger.Fatal("create post", zap.String("slug", p.slug), zap.Error(err))
		}
		logger.Info("seeded post", zap.String("id", post.ID), zap.String("slug", post.Slug))
	}
	logger.Info("seed completed", zap.String("series", series.ID))
}

func ptr[T any](v T) *T { return &v }
