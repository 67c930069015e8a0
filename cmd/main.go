package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"traindesk/internal/caching"
	"traindesk/internal/handlers"
	"traindesk/internal/jobs/background"
	"traindesk/internal/middleware"
	"traindesk/internal/repositories"
	"traindesk/internal/services"
	"traindesk/pkg/database"
)

const version = "1.0.0"

func main() {
	// Database connection
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Session configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: Using generated JWT secret; sessions will not survive a restart")
	}
	jwksURL := os.Getenv("AUTH_JWKS_URL")

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379" // Default Redis address
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	// MinIO configuration
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000" // Default MinIO endpoint
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin" // Default for development
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin" // Default for development
	}
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	contentBucket := os.Getenv("CONTENT_BUCKET")
	if contentBucket == "" {
		contentBucket = "traindesk-content"
	}

	storageSvc, err := services.NewMinioStorageService(minioEndpoint, minioAccessKey, minioSecretKey, useSSL)
	if err != nil {
		log.Fatalf("Failed to initialize storage service: %v", err)
	}
	if err := storageSvc.EnsureBucketExists(context.Background(), contentBucket); err != nil {
		log.Printf("WARN: failed to ensure content bucket exists: %v", err)
	}

	// Create repositories
	tenantRepo := repositories.NewTenantRepo(pool)
	profileRepo := repositories.NewProfileRepo(pool)
	membershipRepo := repositories.NewMembershipRepo(pool)
	courseRepo := repositories.NewCourseRepo(pool)
	moduleRepo := repositories.NewModuleRepo(pool)
	contentRepo := repositories.NewContentItemRepo(pool)
	assignmentRepo := repositories.NewAssignmentRepo(pool)
	auditLogsRepo := repositories.NewAuditLogsRepo(pool)
	cohortRepo := repositories.NewCohortRepo(pool)
	searchRepo := repositories.NewSearchRepo(pool)

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Create services
	var sessionSvc services.SessionService
	if jwksURL != "" {
		// External identity provider mode: tokens are validated against the
		// provider's JWKS and never issued locally.
		sessionSvc, err = services.NewJWKSSessionService(profileRepo, jwksURL)
		if err != nil {
			log.Fatalf("Failed to initialize JWKS session service: %v", err)
		}
		log.Printf("Session validation delegated to %s", jwksURL)
	} else {
		sessionSvc = services.NewSessionService(profileRepo, jwtSecret, 24*time.Hour, 1*time.Hour)
	}

	auditSvc := services.NewAuditService(auditLogsRepo)
	tenantCtxSvc := services.NewTenantContextService(tenantRepo, membershipRepo)
	setupSvc := services.NewSetupService(tenantRepo, membershipRepo, auditSvc)
	employeeSvc := services.NewEmployeeService(profileRepo, membershipRepo, auditSvc, cacheSvc)
	courseSvc := services.NewCourseService(courseRepo, moduleRepo, assignmentRepo, auditSvc, cacheSvc)
	contentSvc := services.NewContentService(contentRepo, moduleRepo, courseRepo, assignmentRepo, membershipRepo, storageSvc, auditSvc, contentBucket)
	assignmentSvc := services.NewAssignmentService(assignmentRepo, auditSvc, cacheSvc)
	importSvc := services.NewImportService(courseRepo, moduleRepo, contentRepo, auditSvc)
	cohortSvc := services.NewCohortService(cohortRepo, auditSvc)
	searchSvc := services.NewSearchService(searchRepo)

	// Background jobs
	scheduler, err := background.NewJobScheduler(cacheSvc, tenantRepo, courseRepo, assignmentRepo)
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("WARN: scheduler shutdown failed: %v", err)
		}
	}()

	// Create handlers
	authHandlers := handlers.NewAuthHandlers(profileRepo, membershipRepo, sessionSvc, cacheSvc)
	setupHandlers := handlers.NewSetupHandlers(setupSvc)
	courseHandlers := handlers.NewCourseHandlers(courseSvc)
	contentHandlers := handlers.NewContentHandlers(contentSvc)
	employeeHandlers := handlers.NewEmployeeHandlers(employeeSvc)
	assignmentHandlers := handlers.NewAssignmentHandlers(assignmentSvc)
	auditHandlers := handlers.NewAuditHandlers(auditSvc)
	importHandlers := handlers.NewImportHandlers(importSvc)
	cohortHandlers := handlers.NewCohortHandlers(cohortSvc)
	searchHandlers := handlers.NewSearchHandlers(searchSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc, scheduler)

	// Middleware
	gate := middleware.NewAccessGate(sessionSvc)
	tenantCtx := middleware.NewTenantContextMiddleware(tenantCtxSvc)

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// The gate runs on every route: session resolution, cookie refresh, and
	// the forced-password-reset redirect all happen before routing decisions.
	e.Use(gate.Middleware())

	// Health endpoints
	e.GET("/health", healthHandlers.Health)
	e.GET("/health/ready", healthHandlers.Health)
	e.GET("/health/jobs", healthHandlers.Jobs)

	// Authentication routes
	auth := e.Group("/auth")
	auth.POST("/signup", authHandlers.Signup)
	auth.POST("/login", authHandlers.Login)
	auth.POST("/signout", authHandlers.Signout)

	// Password update: reachable by flagged users, requires a session.
	e.POST("/update-password", authHandlers.UpdatePassword, middleware.RequireAuthenticated())

	// First-tenant setup
	e.POST("/setup", setupHandlers.CreateTenant, middleware.RequireAuthenticated())

	// Content download links sit outside the tenant tree; the access check is
	// explicit in the service.
	e.GET("/api/content/signed-url", contentHandlers.SignedURL, middleware.RequireAuthenticated())

	// Tenant-scoped routes. Every request resolves the slug into a tenant
	// context; every denial is a 404.
	tenant := e.Group("/t/:tenantSlug", tenantCtx.Resolve())

	// Admin tree: owner/admin/trainer only.
	admin := tenant.Group("/admin", middleware.RequireManager())
	admin.GET("/courses", courseHandlers.ListCourses)
	admin.POST("/courses", courseHandlers.CreateCourse)
	admin.GET("/courses/:id", courseHandlers.GetCourse)
	admin.PUT("/courses/:id", courseHandlers.UpdateCourse)
	admin.DELETE("/courses/:id", courseHandlers.DeleteCourse)
	admin.GET("/courses/:courseId/modules", courseHandlers.ListModules)
	admin.POST("/modules", courseHandlers.CreateModule)
	admin.DELETE("/modules/:id", courseHandlers.DeleteModule)
	admin.GET("/modules/:moduleId/content", contentHandlers.ListContent)
	admin.POST("/content", contentHandlers.CreateContent)
	admin.PUT("/content/:id", contentHandlers.UpdateContent)
	admin.DELETE("/content/:id", contentHandlers.DeleteContent)
	admin.POST("/content/upload", contentHandlers.Upload)
	admin.GET("/employees", employeeHandlers.ListEmployees)
	admin.POST("/employees", employeeHandlers.CreateEmployee)
	admin.DELETE("/employees/:employeeId", employeeHandlers.DeactivateEmployee)
	admin.GET("/employees/:employeeId/assignments", assignmentHandlers.GetAssignments)
	admin.PUT("/employees/:employeeId/assignments", assignmentHandlers.ReconcileAssignments)
	admin.GET("/cohorts", cohortHandlers.ListCohorts)
	admin.POST("/cohorts", cohortHandlers.CreateCohort)
	admin.DELETE("/cohorts/:id", cohortHandlers.DeleteCohort)
	admin.GET("/cohorts/:id/members", cohortHandlers.ListMembers)
	admin.POST("/cohorts/:id/members", cohortHandlers.AddMember)
	admin.DELETE("/cohorts/:id/members/:employeeId", cohortHandlers.RemoveMember)
	admin.GET("/search", searchHandlers.Search)
	admin.PUT("/settings", setupHandlers.UpdateTenant)
	admin.GET("/audit-logs", auditHandlers.ListAuditLogs)
	admin.POST("/tools/import", importHandlers.BulkImport)

	// Employee tree: any active member. Course detail and module content only
	// come back for published courses the caller is assigned to.
	employee := tenant.Group("/employee")
	employee.GET("/courses", courseHandlers.MyCourses)
	employee.GET("/courses/:id", courseHandlers.CourseDetail)
	employee.GET("/modules/:moduleId/content", contentHandlers.AssignedContent)

	// Start server
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	log.Printf("Traindesk server v%s starting on port %d", version, port)

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}
