package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariebrainware/medibook/appointment"
	"github.com/ariebrainware/medibook/config"
	_ "github.com/ariebrainware/medibook/docs"
	"github.com/ariebrainware/medibook/endpoint"
	"github.com/ariebrainware/medibook/jobs"
	"github.com/ariebrainware/medibook/middleware"
	"github.com/ariebrainware/medibook/model"
	"github.com/ariebrainware/medibook/util"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

const appointmentsCollection = "appointments"

// @title           Medibook API
// @version         1.0
// @description     Hospital appointment booking: patients request appointments, doctors approve or reject them.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @securityDefinitions.apikey SessionToken
// @in header
// @name session-token
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "medibook",
		Short: "Hospital appointment booking API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
		SilenceUsage: true,
	}
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	return rootCmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the SQL schema and seed roles",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := config.ConnectDatabase()
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			if err := model.Migrate(db); err != nil {
				return err
			}
			log.Println("Migration completed")
			return nil
		},
	}
}

func runServer(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	gin.SetMode(cfg.GinMode)

	db, err := config.ConnectDatabase()
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if err := model.Migrate(db); err != nil {
		return err
	}

	util.SetSecurityLoggerDB(db)
	util.InitUserEmailCache(cfg.UserEmailCacheSize)
	if err := util.InitGeoIP(cfg.GeoIPDBPath); err != nil {
		log.Printf("GeoIP disabled: %v", err)
	}
	defer util.CloseGeoIP()

	if rdb, err := config.ConnectRedis(); err != nil {
		log.Printf("Redis unavailable, sessions are served from the database: %v", err)
	} else if rdb != nil {
		defer rdb.Close()
	}

	repo, closeRepo, err := newAppointmentRepository(ctx, db)
	if err != nil {
		return err
	}
	defer closeRepo()

	scheduler, err := jobs.StartSessionCleanup(db, cfg.SessionCleanupSpec)
	if err != nil {
		return err
	}
	defer scheduler.Stop()

	router := setupRouter(cfg, db, appointment.NewStore(repo))
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("%s listening on %s", cfg.AppName, srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error starting server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newAppointmentRepository stores appointments in Mongo when MONGOURI is set
// and in the SQL database otherwise.
func newAppointmentRepository(ctx context.Context, db *gorm.DB) (appointment.Repository, func(), error) {
	client, mdb, err := config.ConnectMongo(ctx)
	if errors.Is(err, config.ErrMongoDisabled) {
		return appointment.NewGormRepository(db), func() {}, nil
	}
	if err != nil {
		return nil, nil, err
	}

	repo := appointment.NewMongoRepository(mdb.Collection(appointmentsCollection))
	if err := repo.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ensure appointment indexes: %w", err)
	}
	return repo, disconnect(client), nil
}

func disconnect(client *mongo.Client) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			log.Printf("Mongo disconnect: %v", err)
		}
	}
}

func setupRouter(cfg *config.Config, db *gorm.DB, store *appointment.Store) *gin.Engine {
	router := gin.Default()
	router.Use(gzip.Gzip(gzip.DefaultCompression))
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.ValidateAPIToken(cfg.APIToken))
	router.Use(middleware.EndpointCallLogger())
	router.Use(middleware.DatabaseMiddleware(db))
	router.Use(middleware.AppointmentStore(store))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("Welcome to %s!", cfg.AppName),
		})
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authLimit := middleware.RateLimiter(middleware.RateLimitConfig{})
	router.POST("/signup", authLimit, endpoint.Signup)
	router.POST("/login", authLimit, endpoint.Login)
	router.GET("/token/validate", endpoint.ValidateToken)

	auth := router.Group("/")
	auth.Use(middleware.ValidateLoginToken())
	{
		auth.DELETE("/logout", endpoint.Logout)
		auth.POST("/verify-password", endpoint.VerifyPassword)

		auth.POST("/appointments", endpoint.CreateAppointment)
		auth.GET("/appointments", endpoint.ListAppointments)
		auth.PUT("/appointments/:id", endpoint.UpdateAppointmentStatus)
	}

	return router
}
