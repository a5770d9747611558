package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/rentloop/accounts/internal/auth"
	"github.com/rentloop/accounts/internal/blob"
	"github.com/rentloop/accounts/internal/config"
	"github.com/rentloop/accounts/internal/handlers/api"
	"github.com/rentloop/accounts/internal/mail"
	"github.com/rentloop/accounts/internal/middlewares"
	"github.com/rentloop/accounts/internal/store"
	"github.com/rentloop/accounts/internal/users"
	"github.com/rentloop/accounts/model"
	"github.com/rentloop/accounts/params"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

var (
	app       *cli.App
	gitCommit string
	gitDate   string
)

var (
	configFileFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "YAML config file",
		Value: "config.yaml",
	}
	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Enable debug logging",
	}
)

func init() {
	app = cli.NewApp()
	app.EnableBashCompletion = true
	app.Usage = "accounts - registration and login service for the rentloop marketplace"
	app.Flags = []cli.Flag{
		configFileFlag,
		debugFlag,
	}
	app.Commands = []*cli.Command{
		{
			Name: "version",
			Action: func(ctx *cli.Context) error {
				fmt.Println(params.VersionWithCommit(gitCommit, gitDate))
				return nil
			},
		},
	}
	app.Action = run
}

func mustInitLogger(debug bool) {
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}

func mustInitDatabase(dbConfig config.MySQLConfig) *gorm.DB {
	db, err := gorm.Open(mysql.Open(dbConfig.Dsn), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   dbConfig.TablePrefix,
			SingularTable: true,
		},
	})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := model.AutoMigrate(db); err != nil {
		slog.Error("Database migration failed", "error", err)
		os.Exit(1)
	}

	return db
}

func mustInitMailSender(mailCfg config.MailConfig) mail.MailSender {
	if mailCfg.Backend == "" || mailCfg.Backend == "smtp" {
		sender, err := mail.NewSMTPMailSender(mail.SMTPConfig{
			Host:     mailCfg.SMTP.Host,
			Port:     mailCfg.SMTP.Port,
			Username: mailCfg.SMTP.Username,
			Password: mailCfg.SMTP.Password,
			TLS:      mailCfg.SMTP.TLS,
			CertFile: mailCfg.SMTP.CertFile,
			KeyFile:  mailCfg.SMTP.KeyFile,
			CAFile:   mailCfg.SMTP.CAFile,
		}, mailCfg.SMTP.From)
		if err != nil {
			log.Fatalf("Failed to initialize SMTP mail sender: %v", err)
		}
		return sender
	}
	log.Fatalf("Unsupported mail sender backend %s", mailCfg.Backend)
	return nil
}

func mustInitCacheStorage(redisCfg config.RedisConfig) (store.Storage, redis.UniversalClient) {
	if redisCfg.URL == "" {
		slog.Info("Redis not configured, pending registrations kept in process memory")
		return store.NewMemoryStorage(), nil
	}
	opts, err := redis.ParseURL(redisCfg.URL)
	if err != nil {
		slog.Error("Invalid redis URL", "error", err)
		os.Exit(1)
	}
	if redisCfg.PoolSize > 0 {
		opts.PoolSize = redisCfg.PoolSize
	}
	rdb := redis.NewClient(opts)
	return store.NewRedisStorage(rdb), rdb
}

func mustInitBlobStore(ctx context.Context, uploadsCfg config.UploadsConfig) blob.Store {
	switch uploadsCfg.Backend {
	case "local":
		blobStore, err := blob.NewLocalStore(uploadsCfg.Dir)
		if err != nil {
			slog.Error("Failed to initialize local blob store", "error", err)
			os.Exit(1)
		}
		return blobStore
	case "s3":
		blobStore, err := blob.NewS3Store(ctx, blob.S3Config{
			Region:      uploadsCfg.S3.Region,
			Bucket:      uploadsCfg.S3.Bucket,
			AccessKeyID: uploadsCfg.S3.AccessKeyID,
			SecretKey:   uploadsCfg.S3.SecretKey,
			EndpointURL: uploadsCfg.S3.EndpointURL,
			KeyPrefix:   uploadsCfg.S3.KeyPrefix,
		})
		if err != nil {
			slog.Error("Failed to initialize S3 blob store", "error", err)
			os.Exit(1)
		}
		return blobStore
	default:
		slog.Error("Unsupported uploads backend", "backend", uploadsCfg.Backend)
		os.Exit(1)
		return nil
	}
}

func run(ctx *cli.Context) error {
	cfg, err := config.LoadConfig(ctx.String(configFileFlag.Name))
	if err != nil {
		slog.Error("Could not load config file.", "error", err)
		return err
	}

	mustInitLogger(cfg.Debug || ctx.IsSet(debugFlag.Name))

	db := mustInitDatabase(cfg.MySQL)
	cacheStorage, rdb := mustInitCacheStorage(cfg.Redis)
	mailSender := mustInitMailSender(cfg.Mail)
	blobStore := mustInitBlobStore(ctx.Context, cfg.Uploads)
	tokenIssuer := auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.ExpiresIn)

	// repositories and services
	var (
		userRepo    = users.NewUserRepository(db)
		userService = users.NewUserService(userRepo, cacheStorage)
		authHandler = api.NewAuthHandler(userService, blobStore, mailSender, tokenIssuer)
	)

	router := fiber.New(fiber.Config{
		Prefork:       false,
		CaseSensitive: true,
		BodyLimit:     params.ServerBodyLimit,
		IdleTimeout:   params.ServerIdleTimeout,
		ReadTimeout:   params.ServerReadTimeout,
		WriteTimeout:  params.ServerWriteTimeout,
		ErrorHandler:  middlewares.ErrorHandler,
	})

	router.Use(recover.New())
	router.Use(logger.New())
	router.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.AllowOrigins, ", "),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	if cfg.Uploads.Backend == "local" {
		router.Static("/uploads", cfg.Uploads.Dir)
	}
	router.Post("/register", authHandler.PostRegister)
	router.Post("/verify-otp", authHandler.PostVerifyOTP)
	router.Post("/login", authHandler.PostLogin)
	router.Get("/me", middlewares.RequireAuth(tokenIssuer), authHandler.GetMe)

	healthCheckCtx, term := context.WithCancel(ctx.Context)
	done := make(chan struct{})
	go startHealthCheckServer(healthCheckCtx, done, params.HealthCheckServerAddr, rdb, db)
	defer func() {
		term()
		<-done
	}()
	return router.Listen(cfg.ListenAddr)
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
