package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/SimoHua/symphonyx/internal/config"
	"github.com/SimoHua/symphonyx/internal/handler"
	"github.com/SimoHua/symphonyx/internal/i18n"
	"github.com/SimoHua/symphonyx/internal/logger"
	"github.com/SimoHua/symphonyx/internal/markdown"
	"github.com/SimoHua/symphonyx/internal/middleware"
	"github.com/SimoHua/symphonyx/internal/service"
	"github.com/SimoHua/symphonyx/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	configFile := flag.String("config", "", "config file path (e.g. etc/config-dev.yaml)")
	flag.Parse()

	cfg := config.Load(*configFile)
	logger.Init(cfg.Log)
	db, err := cfg.OpenGormDB()
	if err != nil {
		slog.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	labels, err := i18n.New(cfg.Journal.Locale, cfg.Journal.Labels)
	if err != nil {
		slog.Error("labels init failed", "err", err)
		os.Exit(1)
	}

	users := store.NewUserStore(db)
	articles := store.NewArticleStore(db)
	archives := store.NewArchiveStore(db)
	comments := store.NewCommentStore(db)
	tags := store.NewTagStore(db)
	jc := cfg.Journal

	content := service.NewContentService(users, articles, tags, markdown.New(), labels, jc.ServePath, jc.StaticServePath)
	journalSvc := service.NewJournalService(service.JournalDeps{
		Users:        users,
		Articles:     articles,
		Archives:     archives,
		Fetcher:      service.NewParagraphFetcher(articles, jc.Location()),
		Roster:       service.NewRosterResolver(users),
		Content:      content,
		Participants: service.NewParticipantService(comments, users, jc.ParticipantsCnt, jc.TransformWorkers, jc.ServePath),
		Labels:       labels,
		Workers:      jc.TransformWorkers,
		FetchTimeout: jc.FetchTimeout,
	})
	journalH := handler.NewJournalHandler(journalSvc, labels, jc.Location())

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog())
	r.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", middleware.ViewerHeader, middleware.RequestIDHeader},
	}))

	api := r.Group("/api", middleware.Timeout(cfg.Server.RequestTimeout), middleware.Viewer(users))
	journalH.Register(api)

	slog.Info("server starting", "addr", cfg.Addr(), "locale", labels.Locale(), "timezone", jc.Location().String())
	if err := r.Run(cfg.Addr()); err != nil {
		slog.Error("server failed", "err", err)
	}
}
