package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/iagbolahan/college-registry-api/api/swagger"
	"github.com/iagbolahan/college-registry-api/internal/handler"
	"github.com/iagbolahan/college-registry-api/internal/middleware"
	"github.com/iagbolahan/college-registry-api/internal/repository"
	"github.com/iagbolahan/college-registry-api/internal/rules"
	"github.com/iagbolahan/college-registry-api/internal/service"
	"github.com/iagbolahan/college-registry-api/pkg/cache"
	"github.com/iagbolahan/college-registry-api/pkg/config"
	"github.com/iagbolahan/college-registry-api/pkg/database"
	"github.com/iagbolahan/college-registry-api/pkg/logger"
	corsmiddleware "github.com/iagbolahan/college-registry-api/pkg/middleware/cors"
	reqidmiddleware "github.com/iagbolahan/college-registry-api/pkg/middleware/requestid"
)

// @title College Registry API
// @version 0.1.0
// @description Role-constrained membership and course offering registry
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	calendar, err := rules.NewCalendar(cfg.Academic)
	if err != nil {
		logr.Sugar().Fatalw("invalid academic calendar", "error", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	cacheRepo := repository.NewCacheRepository(nil, logr)
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
		defer cacheRepo.Close() //nolint:errcheck
	}

	validate := validator.New()

	personRepo := repository.NewPersonRepository(db)
	lecturerRepo := repository.NewLecturerRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	researcherRepo := repository.NewResearcherRepository(db)
	collegeRepo := repository.NewCollegeRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	degreeRepo := repository.NewDegreeRepository(db)
	grantRepo := repository.NewGrantRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	metricsSvc := service.NewMetricsService()
	personSvc := service.NewPersonService(personRepo, validate, logr)
	roleSvc := service.NewRoleService(personRepo, lecturerRepo, studentRepo, researcherRepo, departmentRepo, degreeRepo, calendar, validate, logr)
	orgSvc := service.NewOrgService(collegeRepo, departmentRepo, courseRepo, lecturerRepo, validate, logr)
	degreeSvc := service.NewDegreeService(degreeRepo, validate, logr)
	grantSvc := service.NewGrantService(grantRepo, lecturerRepo, validate, logr)
	sessionSvc := service.NewSessionService(sessionRepo, enrollmentRepo, courseRepo, researcherRepo, studentRepo, cacheRepo, metricsSvc, calendar, cfg.Cache.SessionTTL, validate, logr)
	transcriptSvc := service.NewTranscriptService(enrollmentRepo, studentRepo, personRepo, cfg.Exports.Title, logr)

	personHandler := handler.NewPersonHandler(personSvc)
	roleHandler := handler.NewRoleHandler(roleSvc)
	orgHandler := handler.NewOrgHandler(orgSvc)
	degreeHandler := handler.NewDegreeHandler(degreeSvc)
	grantHandler := handler.NewGrantHandler(grantSvc)
	sessionHandler := handler.NewSessionHandler(sessionSvc)
	transcriptHandler := handler.NewTranscriptHandler(transcriptSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)
	auditHandler := handler.NewAuditHandler(auditRepo)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.OptionalActor(cfg.JWT.Secret))

	persons := api.Group("/persons")
	{
		persons.GET("", personHandler.List)
		persons.POST("", middleware.Audit(auditRepo, "create", "person", ""), personHandler.Create)
		persons.GET("/:regNo", personHandler.Get)
		persons.PUT("/:regNo", middleware.Audit(auditRepo, "update", "person", "regNo"), personHandler.Update)
		persons.DELETE("/:regNo", middleware.Audit(auditRepo, "delete", "person", "regNo"), personHandler.Delete)

		persons.POST("/:regNo/lecturer", middleware.Audit(auditRepo, "assign_lecturer", "person", "regNo"), roleHandler.AssignLecturer)
		persons.POST("/:regNo/student", middleware.Audit(auditRepo, "assign_student", "person", "regNo"), roleHandler.AssignStudent)
		persons.POST("/:regNo/graduate", middleware.Audit(auditRepo, "assign_graduate", "person", "regNo"), roleHandler.AssignGraduate)
		persons.PUT("/:regNo/graduate", middleware.Audit(auditRepo, "update_graduate", "person", "regNo"), roleHandler.UpdateGraduate)
		persons.POST("/:regNo/researcher", middleware.Audit(auditRepo, "assign_researcher", "person", "regNo"), roleHandler.AssignResearcher)
	}

	lecturers := api.Group("/lecturers")
	{
		lecturers.PUT("/:id", middleware.Audit(auditRepo, "update", "lecturer", "id"), roleHandler.UpdateLecturer)
		lecturers.DELETE("/:id", middleware.Audit(auditRepo, "delete", "lecturer", "id"), roleHandler.RemoveLecturer)
	}

	students := api.Group("/students")
	{
		students.PUT("/:id", middleware.Audit(auditRepo, "update", "student", "id"), roleHandler.UpdateStudent)
		students.DELETE("/:id", middleware.Audit(auditRepo, "delete", "student", "id"), roleHandler.RemoveStudent)
		students.GET("/:id/transcript", transcriptHandler.Get)
		students.GET("/:id/transcript/export", transcriptHandler.Export)
	}

	researchers := api.Group("/researchers")
	{
		researchers.DELETE("/:id", middleware.Audit(auditRepo, "delete", "researcher", "id"), roleHandler.RemoveResearcher)
	}

	colleges := api.Group("/colleges")
	{
		colleges.GET("", orgHandler.ListColleges)
		colleges.POST("", middleware.Audit(auditRepo, "create", "college", ""), orgHandler.CreateCollege)
		colleges.GET("/:name", orgHandler.GetCollege)
		colleges.PUT("/:name", middleware.Audit(auditRepo, "update", "college", "name"), orgHandler.UpdateCollege)
		colleges.DELETE("/:name", middleware.Audit(auditRepo, "delete", "college", "name"), orgHandler.DeleteCollege)
	}

	departments := api.Group("/departments")
	{
		departments.GET("", orgHandler.ListDepartments)
		departments.POST("", middleware.Audit(auditRepo, "create", "department", ""), orgHandler.CreateDepartment)
		departments.GET("/:name", orgHandler.GetDepartment)
		departments.PUT("/:name", middleware.Audit(auditRepo, "update", "department", "name"), orgHandler.UpdateDepartment)
		departments.DELETE("/:name", middleware.Audit(auditRepo, "delete", "department", "name"), orgHandler.DeleteDepartment)
	}

	courses := api.Group("/courses")
	{
		courses.GET("", orgHandler.ListCourses)
		courses.POST("", middleware.Audit(auditRepo, "create", "course", ""), orgHandler.CreateCourse)
		courses.GET("/:code", orgHandler.GetCourse)
		courses.PUT("/:code", middleware.Audit(auditRepo, "update", "course", "code"), orgHandler.UpdateCourse)
		courses.DELETE("/:code", middleware.Audit(auditRepo, "delete", "course", "code"), orgHandler.DeleteCourse)
	}

	degrees := api.Group("/degrees")
	{
		degrees.GET("", degreeHandler.List)
		degrees.POST("", middleware.Audit(auditRepo, "create", "degree", ""), degreeHandler.Create)
		degrees.GET("/:id", degreeHandler.Get)
		degrees.PUT("/:id", middleware.Audit(auditRepo, "update", "degree", "id"), degreeHandler.Update)
		degrees.DELETE("/:id", middleware.Audit(auditRepo, "delete", "degree", "id"), degreeHandler.Delete)
	}

	grants := api.Group("/grants")
	{
		grants.GET("", grantHandler.List)
		grants.POST("", middleware.Audit(auditRepo, "create", "grant", ""), grantHandler.Create)
		grants.GET("/:grantNo", grantHandler.Get)
		grants.PUT("/:grantNo/support", middleware.Audit(auditRepo, "set_support", "grant", "grantNo"), grantHandler.SetSupport)
		grants.DELETE("/:grantNo", middleware.Audit(auditRepo, "delete", "grant", "grantNo"), grantHandler.Delete)
	}

	sessions := api.Group("/sessions")
	{
		sessions.GET("", sessionHandler.List)
		sessions.POST("", middleware.Audit(auditRepo, "create", "session", ""), sessionHandler.Create)
		sessions.GET("/:id", sessionHandler.Get)
		sessions.GET("/:id/status", sessionHandler.Status)
		sessions.PUT("/:id", middleware.Audit(auditRepo, "update", "session", "id"), sessionHandler.Update)
		sessions.DELETE("/:id", middleware.Audit(auditRepo, "delete", "session", "id"), sessionHandler.Delete)
		sessions.POST("/:id/promote", middleware.Audit(auditRepo, "promote", "session", "id"), sessionHandler.Promote)
		sessions.POST("/:id/archive", middleware.Audit(auditRepo, "archive", "session", "id"), sessionHandler.Archive)
		sessions.GET("/:id/registrations", sessionHandler.Roster)
		sessions.POST("/:id/registrations", middleware.Audit(auditRepo, "register", "session", "id"), sessionHandler.Register)
		sessions.DELETE("/:id/registrations/:studentId", middleware.Audit(auditRepo, "unregister", "session", "id"), sessionHandler.Unregister)
	}

	api.GET("/audit/:resource/:id", auditHandler.List)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
