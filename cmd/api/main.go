package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hrandria/hospital-api/internal/config"
	"github.com/hrandria/hospital-api/internal/handlers"
	"github.com/hrandria/hospital-api/internal/middleware"
	"github.com/hrandria/hospital-api/internal/models"
	"github.com/hrandria/hospital-api/internal/services"
	"github.com/hrandria/hospital-api/internal/storage"
	"github.com/hrandria/hospital-api/internal/store"
)

func main() {
	// A missing .env is fine: production relies on real environment variables.
	_ = godotenv.Load()
	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()

	if cfg.JWTSecret == "" {
		logger.Fatal().Msg("JWT_SECRET is not set")
	}

	// --- Database connection ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	st := store.NewMongo(client, cfg.MongoDatabase, logger)
	if err := st.EnsureIndexes(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to create indexes")
	}
	logger.Info().Str("database", cfg.MongoDatabase).Msg("connected to MongoDB")

	// --- Email ---
	var sender services.EmailSender
	if smtp := services.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, services.FromAddress(cfg.ProjectID)); smtp != nil {
		sender = smtp
		logger.Info().Str("host", cfg.SMTPHost).Msg("email notifications enabled")
	} else {
		sender = services.NewStubSender(logger)
		logger.Warn().Msg("SMTP not configured, email notifications disabled")
	}
	notifier := services.NewNotifier(sender, logger)

	// --- Photo storage ---
	var s3Client storage.S3API
	if cfg.S3Bucket != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3Region))
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to load AWS configuration")
		}
		s3Client = s3.NewFromConfig(awsCfg)
	}
	photos := storage.NewPhotoStore(s3Client, cfg.S3Bucket, cfg.S3Region, cfg.PhotoBaseURL, logger)

	// --- Services & handlers ---
	doctorSvc := services.NewDoctorService(st, notifier, logger)
	apptSvc := services.NewAppointmentService(st, notifier, logger)
	h := handlers.NewHandler(st, doctorSvc, apptSvc, photos, []byte(cfg.JWTSecret), logger)

	// --- Reminder worker ---
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	reminders := services.NewReminderWorker(st, notifier, cfg.ReminderInterval, cfg.ReminderWindow, logger)
	go reminders.Run(runCtx)

	// --- Router ---
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", h.RegisterUser)
		authRoutes.POST("/login", h.Login)
	}

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware([]byte(cfg.JWTSecret)))
	{
		// Directory & profile
		api.GET("/doctors", h.ListDoctors)
		api.GET("/profile", h.GetProfile)
		api.PUT("/profile", h.UpdateProfile)
		api.POST("/profile/photo", h.UploadProfilePhoto)

		// Patient booking
		api.POST("/appointments", middleware.RequireRole(models.RolePatient), h.CreateAppointment)
		api.GET("/appointments", middleware.RequireRole(models.RolePatient), h.GetMyAppointments)

		// Doctor review queue
		api.GET("/appointments/pending", middleware.RequireRole(models.RoleDoctor), h.GetPendingAppointments)
		api.PATCH("/appointments/:id/approve", middleware.RequireRole(models.RoleDoctor), h.ApproveAppointment)
		api.PATCH("/appointments/:id/reject", middleware.RequireRole(models.RoleDoctor), h.RejectAppointment)

		// Admin approval queue, gated on the admin custom claim
		admin := api.Group("/admin")
		admin.Use(middleware.RequireAdmin())
		{
			admin.GET("/doctors/pending", h.ListPendingDoctors)
			admin.PATCH("/doctors/:id/decision", h.DecideDoctor)
			admin.GET("/doctors/:id/approvals", h.ListDoctorApprovals)
		}
	}

	logger.Info().Str("port", cfg.Port).Msg("starting server")
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
