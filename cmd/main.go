package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	httpcontext "github.com/peroxide-labs/peroxide/internal/api/http/context"
	"github.com/peroxide-labs/peroxide/internal/api/http/router"
	httpserver "github.com/peroxide-labs/peroxide/internal/api/http/server"
	"github.com/peroxide-labs/peroxide/internal/config"
	"github.com/peroxide-labs/peroxide/internal/logger"
	"github.com/peroxide-labs/peroxide/internal/model"
	"github.com/peroxide-labs/peroxide/internal/repository/postgres"
	"github.com/peroxide-labs/peroxide/internal/server"
	"github.com/peroxide-labs/peroxide/internal/service"
	"github.com/peroxide-labs/peroxide/internal/site"
	storage "github.com/peroxide-labs/peroxide/internal/storage/minio"
	"github.com/peroxide-labs/peroxide/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	wordpressImport := flag.String("wordpress-import", "", "import posts, pages and media from a WordPress site URL instead of serving")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	if *wordpressImport != "" {
		if err := runWordpressImport(ctx, cfg, logger, *wordpressImport); err != nil {
			logger.Fatal("wordpress import failed", "error", err)
		}
		return
	}

	if len(cfg.Sites) == 0 {
		logger.Fatal("no site directories configured, set SITE_DIRS")
	}

	var sl model.SecurityLayer
	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	storageClient, err := newMediaStorage(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize storage client", "error", err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	servers := make([]model.Server, 0, len(cfg.Sites))

	for _, dir := range cfg.Sites {
		wg.Add(1)
		go func(dir string) {
			defer wg.Done()

			// A site that fails to boot must not take down its siblings.
			s, err := bootSite(ctx, cfg, logger, storageClient, dir)
			if err != nil {
				logger.Error("failed to boot site", "dir", dir, "error", err)
				return
			}

			mu.Lock()
			servers = append(servers, s)
			mu.Unlock()

			logger.Info("Starting server on", "address", s.Address(), "dir", dir)
			if err := s.Start(sl); err != nil {
				logger.Error("failed to start server", "dir", dir, "error", err)
			}
		}(dir)
	}

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	mu.Lock()
	for _, s := range servers {
		if err := s.Stop(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", "error", err, "address", s.Address())
		}
	}
	mu.Unlock()

	wg.Wait()
	logger.Info("shutdown complete")
}

func newMediaStorage(ctx context.Context, cfg *config.Config) (model.MediaStorage, error) {
	minioClient, err := minio.New(cfg.Media.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Media.AccessKey, cfg.Media.SecretKey, ""),
		Secure: cfg.Media.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return storage.NewClient(ctx, minioClient, cfg.Media.Bucket)
}

func bootSite(ctx context.Context, cfg *config.Config, logger *logger.Logger, media model.MediaStorage, dir string) (model.Server, error) {
	siteCfg, err := site.Load(dir)
	if err != nil {
		return nil, err
	}

	dsn := cfg.Database.DSN
	if siteCfg.DatabaseDSN != "" {
		dsn = siteCfg.DatabaseDSN
	}

	db, err := postgres.NewConnection(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	keyring, err := token.NewKeyring(cfg.JWT.Secret)
	if err != nil {
		return nil, err
	}

	userRepo := postgres.NewUserRepository(db)
	postRepo := postgres.NewPostRepository(db)

	authService := service.NewAuth(userRepo, keyring, logger)
	postService := service.NewPost(postRepo, logger)
	profileService := service.NewProfile(userRepo, media, logger)
	ctxMgr := httpcontext.NewManager()

	r := router.New(authService, postService, profileService, ctxMgr, siteCfg, logger)

	return httpserver.NewHTTPServer(r.Register(), siteCfg.Domain), nil
}

func runWordpressImport(ctx context.Context, cfg *config.Config, logger *logger.Logger, siteURL string) error {
	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer db.Close()

	storageClient, err := newMediaStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage client: %w", err)
	}

	userRepo := postgres.NewUserRepository(db)
	postRepo := postgres.NewPostRepository(db)
	importer := service.NewWordpressImporter(postRepo, userRepo, storageClient, nil, logger)

	return importer.Import(ctx, siteURL)
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
