package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cppla/postboard/config"
	"github.com/cppla/postboard/routes"
	"github.com/cppla/postboard/store"
	"github.com/cppla/postboard/utils"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the JSON config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	if err := run(cfg); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}

func run(cfg config.AppConfig) error {
	ctx := context.Background()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			utils.Logger.Warn("close store", zap.Error(err))
		}
	}()

	r := routes.SetupRouter(routes.Deps{
		Config:    cfg,
		Store:     st,
		Tokens:    utils.NewTokenManager(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		AccessLog: utils.NewRollingFileLogger(cfg.GinPath, cfg),
	})

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	return utils.NewServer(":"+cfg.AppPort, r, utils.Logger).Run(ctx)
}

// openStore picks the configured backend and, when asked, moves refresh tokens to Redis.
func openStore(ctx context.Context, cfg config.AppConfig) (store.Store, error) {
	var st store.Store
	if cfg.StoreDriver == config.DriverMongo {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		ms, err := store.NewMongoStore(connectCtx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		st = ms
	} else {
		db, err := config.OpenDatabase(cfg, utils.Logger, store.Models...)
		if err != nil {
			return nil, err
		}
		st = store.NewGormStore(db)
	}
	utils.Logger.Info("store ready", zap.String("driver", cfg.StoreDriver))

	if cfg.TokenStore != config.TokenStoreRedis {
		return st, nil
	}
	rc, err := utils.NewRedis(ctx, cfg)
	if err != nil {
		_ = st.Close(ctx)
		return nil, err
	}
	utils.Logger.Info("refresh tokens kept in redis", zap.String("addr", cfg.RedisAddr()))
	return store.WithTokenStore(st, store.NewRedisTokenStore(rc)), nil
}
