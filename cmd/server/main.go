package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ArowuTest/lucky-lottery/internal/auth"
	"github.com/ArowuTest/lucky-lottery/internal/config"
	"github.com/ArowuTest/lucky-lottery/internal/handlers"
	"github.com/ArowuTest/lucky-lottery/internal/lots"
	"github.com/ArowuTest/lucky-lottery/internal/lottery"
	"github.com/ArowuTest/lucky-lottery/internal/metrics"
	"github.com/ArowuTest/lucky-lottery/internal/models"
)

func main() {
	// Load config & init
	appCfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := config.NewLogger(appCfg.LogLevel)
	auth.Init(appCfg.JWTSecret)
	if appCfg.JWTSecret == "" {
		log.Warn("JWT_SECRET_KEY is empty, operator routes will reject every request")
	}

	var store lottery.Store
	switch appCfg.StoreDriver {
	case "memory":
		log.Warn("using the in-memory store, the ledger is lost on restart")
		store = lottery.NewMemoryStore()
	default:
		db, err := config.InitDB(appCfg, log)
		if err != nil {
			log.WithError(err).Fatal("database")
		}
		if err := models.Migrate(db); err != nil {
			log.WithError(err).Fatal("migrate")
		}
		store = lottery.NewGormStore(db)
	}

	src, err := config.NewRandomSource(appCfg)
	if err != nil {
		log.WithError(err).Fatal("random source")
	}
	drawer := lots.NewDrawer(src, lots.WithMaxAttempts(appCfg.DrawMaxAttempts))
	svc := lottery.NewService(store, drawer,
		lottery.WithLogger(logrus.NewEntry(log)),
		lottery.WithMinQuantity(appCfg.MinQuantity),
	)

	// Setup router
	if !log.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), metrics.GinMiddleware(), config.CORSMiddleware(appCfg))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	h := handlers.New(svc, handlers.Operator{
		Username:     appCfg.OperatorUsername,
		PasswordHash: appCfg.OperatorPasswordHash,
	}, logrus.NewEntry(log))
	h.Register(r.Group("/api/v1"))

	srv := &http.Server{
		Addr:              ":" + appCfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithFields(logrus.Fields{
			"port":   appCfg.Port,
			"store":  appCfg.StoreDriver,
			"random": appCfg.RandomSource,
		}).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("serve")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("shutdown")
	}
	log.Info("stopped")
}
