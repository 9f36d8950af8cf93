package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"

	config "brandpanel/configs"
	"brandpanel/internal/api/handlers"
	"brandpanel/internal/api/middleware"
	job "brandpanel/internal/jobs"
	"brandpanel/internal/queue"
	"brandpanel/internal/repository"
	"brandpanel/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	if err := repository.CreateTables(context.Background(), db); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	brandRepo := repository.NewBrandRepository(db)
	brandCredentialsRepo := repository.NewBrandCredentialsRepository(db)
	globalTokenRepo := repository.NewGlobalTokenRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	postRepo := repository.NewPostRepository(db)

	authService := service.NewAuthService(*cfg, userRepo)
	userService := service.NewUserService(userRepo)
	r2Service := service.NewR2Service(*cfg)
	tokenService := service.NewTokenService(*cfg, globalTokenRepo)
	webhookService := service.NewWebhookService(*cfg, postRepo, brandRepo, brandCredentialsRepo, tokenService)
	brandService := service.NewBrandService(*cfg, brandRepo, brandCredentialsRepo)
	documentService := service.NewDocumentService(brandRepo, documentRepo, r2Service, webhookService)
	postService := service.NewPostService(postRepo, brandRepo, r2Service)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	auth := handlers.NewAuthHandler(*cfg, authService)
	app.Post("/register", auth.Register)
	app.Post("/login", auth.Login)
	app.Get("/login/google", auth.GoogleLogin)
	app.Get("/login/google/callback", auth.GoogleLoginCallback)
	app.Get("/logout", auth.Logout)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	user := handlers.NewUserHandler(userService)
	api.Get("/user/info", user.GetUserInfo)
	api.Post("/user/remove", user.RemoveUser)

	brand := handlers.NewBrandHandler(brandService)
	api.Post("/brands/create", brand.CreateBrand)
	api.Get("/brands", brand.ListBrands)
	api.Put("/brands/:id", brand.UpdateBrand)
	api.Post("/brands/remove", brand.RemoveBrand)
	api.Get("/brands/:id/providers", brand.ListProviders)
	api.Put("/brands/:id/credentials/:provider", brand.SetCredentials)
	api.Delete("/brands/:id/credentials/:provider", brand.RemoveCredentials)

	document := handlers.NewDocumentHandler(documentService)
	api.Post("/brands/:id/documents", document.UploadDocument)
	api.Get("/brands/:id/documents", document.ListDocuments)
	api.Post("/documents/remove", document.RemoveDocument)

	post := handlers.NewPostHandler(postService, webhookService, client)
	api.Post("/posts/create", post.CreatePost)
	api.Get("/posts", post.ListPosts)
	api.Put("/posts/update", post.UpdatePost)
	api.Post("/posts/generate", post.GeneratePost)
	api.Post("/posts/:id/approve", post.ApprovePost)
	api.Post("/posts/:id/schedule", post.SchedulePost)
	api.Post("/posts/remove", post.RemovePost)

	token := handlers.NewTokenHandler(tokenService)
	api.Get("/token", token.GetGlobalToken)
	api.Post("/token", token.SetGlobalToken)

	// cron jobs
	dispatchJob := job.NewDispatchJob(postRepo, webhookService)

	// queue
	queueW := queue.NewQueue(webhookService)

	c := cron.New()
	c.AddFunc("@every 00h01m00s", dispatchJob.DispatchDuePosts)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypePublishPost, queueW.HandlePublishPostTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
