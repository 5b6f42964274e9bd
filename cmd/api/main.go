package main

import (
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/booksbridge/books-gateway/internal/config"
	gateway "github.com/booksbridge/books-gateway/internal/gateways"
	"github.com/booksbridge/books-gateway/internal/handlers"
	"github.com/booksbridge/books-gateway/internal/repository"
	"github.com/booksbridge/books-gateway/internal/services"
	xhttp "github.com/booksbridge/books-gateway/pkg/http"
	"github.com/booksbridge/books-gateway/pkg/logger"
	"github.com/booksbridge/books-gateway/pkg/pg"
	"github.com/booksbridge/books-gateway/pkg/prom"
	"github.com/booksbridge/books-gateway/pkg/redis"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	// transport (tcp for now)
	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(time.Second * 15))
	s.Use(xhttp.RequestIDMiddleware)
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

	readConf := pg.Config{
		User:     config.Get().PostgresReadUser,
		Host:     config.Get().PostgresReadHost,
		Port:     config.Get().PostgresReadPort,
		Password: config.Get().PostgresReadPassword,
		Database: config.Get().PostgresReadDatabase,
	}
	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}

	pgDebug := false
	if config.Get().AppEnv == "dev" {
		pgDebug = true
	}
	db, err := pg.CreateReadWrite(readConf, writeConf, pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	redisAdap, err := redis.NewRedisAdapter("default", config.Get().RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{config.Get().RedisAddr},
		ClientName: "default",
		DB:         config.Get().RedisDatabase,
		Username:   config.Get().RedisUsername,
		Password:   config.Get().RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	err = prom.Create(hostname, config.Get().AppEnv, config.Get().PromNamespace)
	if err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		return
	}
	if config.Get().AppDebugMetricsAddr != "" {
		go func() {
			prom.ListenAndServer(config.Get().AppDebugMetricsAddr, config.Get().AppDebugMetricsURI)
		}()
	}

	renderer := gateway.NewRendererClient(gateway.RendererConfig{
		URL:     config.Get().RendererURL,
		Timeout: config.Get().RendererTimeout,
	})

	chartRepo := repository.NewChartRepository(db)
	contactRepo := repository.NewContactRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	counterRepo := repository.NewCounterRepository(db)

	// services
	reportService := services.NewReportService(transactionRepo, vehicleRepo, redisAdap, config.Get().ReportCacheTTL)
	invoiceService := services.NewInvoiceService(invoiceRepo, counterRepo, contactRepo, chartRepo, transactionRepo, renderer, reportService)
	transactionService := services.NewTransactionService(transactionRepo, chartRepo, contactRepo, vehicleRepo, reportService)
	healthService := services.NewHealthService(db)

	// v1 handlers
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	reportHandler := handlers.NewReportHandler(reportService)
	healthHandler := handlers.NewHealthHandler(healthService)

	g := s.Router.Group("/api/v1")
	handlers.RegisterInvoiceRoutes(g, invoiceHandler)
	handlers.RegisterTransactionRoutes(g, transactionHandler)
	handlers.RegisterReportRoutes(g, reportHandler)
	handlers.RegisterHealthRoutes(g, healthHandler)

	// Create new server
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Kill)

	go func() {
		var err = s.ListenAndServe(config.Get().HttpListenAddr)
		if err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	select {
	case <-c:
		s.Shutdown()
	}
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
