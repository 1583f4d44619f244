package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-registration-api/internal/handler"
	"github.com/noah-isme/uni-registration-api/internal/middleware"
	"github.com/noah-isme/uni-registration-api/internal/models"
	appErrors "github.com/noah-isme/uni-registration-api/pkg/errors"
	"github.com/noah-isme/uni-registration-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/uni-registration-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/uni-registration-api/pkg/middleware/requestid"
	"github.com/noah-isme/uni-registration-api/pkg/response"
)

// Options configures the HTTP surface.
type Options struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool
	MetricsPath    string
	Logger         *zap.Logger
	Auth           middleware.TokenValidator
	Observer       middleware.HTTPObserver
}

// Handlers groups the endpoint handlers mounted by New.
type Handlers struct {
	Health               *handler.HealthHandler
	SemesterRegistration *handler.SemesterRegistrationHandler
	StudentRegistration  *handler.StudentRegistrationHandler
	OfferedCourseSection *handler.OfferedCourseSectionHandler
}

var (
	admins   = []models.UserRole{models.RoleSuperAdmin, models.RoleAdmin}
	students = []models.UserRole{models.RoleStudent}
	staff    = []models.UserRole{models.RoleSuperAdmin, models.RoleAdmin, models.RoleFaculty}
)

// New builds the gin engine with middleware and every route registered.
func New(opts Options, h Handlers) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.APIPrefix == "" {
		opts.APIPrefix = "/api/v1"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(opts.Logger))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	if opts.Observer != nil {
		r.Use(middleware.Metrics(opts.Observer))
	}
	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "API not found"))
	})

	r.GET("/health", h.Health.Health)
	r.GET("/ready", h.Health.Ready)
	if opts.MetricsPath != "" {
		r.GET(opts.MetricsPath, h.Health.Prometheus)
	}
	if opts.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(opts.APIPrefix)
	api.Use(middleware.JWT(opts.Auth))

	regs := api.Group("/semester-registrations")
	{
		// static student paths are registered before the :id routes they would otherwise shadow
		regs.POST("/start-registration", middleware.RequireRoles(students...), h.StudentRegistration.StartRegistration)
		regs.GET("/get-my-registration", middleware.RequireRoles(students...), h.StudentRegistration.GetMyRegistration)
		regs.POST("/enroll-into-course", middleware.RequireRoles(students...), h.StudentRegistration.EnrollIntoCourse)
		regs.POST("/withdraw-from-course", middleware.RequireRoles(students...), h.StudentRegistration.WithdrawFromCourse)
		regs.POST("/confirm-my-registration", middleware.RequireRoles(students...), h.StudentRegistration.ConfirmMyRegistration)
		regs.GET("/get-my-semester-courses", middleware.RequireRoles(students...), h.StudentRegistration.GetMySemesterCourses)

		regs.POST("", middleware.RequireRoles(admins...), h.SemesterRegistration.Create)
		regs.GET("", h.SemesterRegistration.List)
		regs.GET("/:id", h.SemesterRegistration.Get)
		regs.PATCH("/:id", middleware.RequireRoles(admins...), h.SemesterRegistration.Update)
		regs.DELETE("/:id", middleware.RequireRoles(admins...), h.SemesterRegistration.Delete)
		regs.POST("/:id/start-new-semester", middleware.RequireRoles(admins...), h.SemesterRegistration.StartNewSemester)
		regs.POST("/:id/resume-rollover", middleware.RequireRoles(admins...), h.SemesterRegistration.ResumeRollover)
	}

	sections := api.Group("/offered-course-sections")
	{
		sections.POST("", middleware.RequireRoles(admins...), h.OfferedCourseSection.Create)
		sections.GET("/:id/roster", middleware.RequireRoles(staff...), h.OfferedCourseSection.Roster)
	}
	api.POST("/offered-course-class-schedules", middleware.RequireRoles(admins...), h.OfferedCourseSection.CreateSchedule)

	return r
}

