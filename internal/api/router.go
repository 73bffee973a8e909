package api

import (
	"context"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"schooladmin/internal/auth"
	"schooladmin/internal/httpmiddleware"
	"schooladmin/internal/metrics"
)

// Options configures the router around the handlers.
type Options struct {
	// WebDir holds the SPA bundle; index.html is served for client routes.
	WebDir string
	// FilesDir is served under /files when the local blob store is used.
	FilesDir      string
	Limiter       httpmiddleware.Limiter
	SignInLimiter httpmiddleware.Limiter
	Health        map[string]func(context.Context) bool
	AllowOrigins  []string
}

// clientRoutes are the console's own paths; the SPA router renders them.
var clientRoutes = []string{
	"/",
	"/profile/:id",
	"/dash",
	"/student",
	"/attendance",
	"/homework",
	"/notice",
	"/test",
	"/teacher",
	"/teacherattendace",
	"/result",
	"/fees",
	"/idcard",
	"/idcard/:studentId",
	"/absentstudent",
	"/marksheet/:studentId",
	"/help",
	"/all-report/:className",
	"/change-password",
	"/exam-time",
	"/manage",
}

// NewRouter builds the gin engine.
func NewRouter(h *Handler, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(metrics.GinMiddleware())

	corsCfg := cors.DefaultConfig()
	if len(opts.AllowOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = opts.AllowOrigins
		corsCfg.AllowCredentials = true
	}
	corsCfg.AddAllowHeaders("Authorization")
	r.Use(cors.New(corsCfg))
	r.Use(securityHeaders())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", healthz(opts.Health))
	if opts.FilesDir != "" {
		r.Static("/files", opts.FilesDir)
	}

	v1 := r.Group("/v1")
	if opts.Limiter != nil {
		v1.Use(httpmiddleware.RateLimit(opts.Limiter, "api", h.Log))
	}

	signIn := v1.Group("/auth")
	if opts.SignInLimiter != nil {
		signIn.Use(httpmiddleware.RateLimit(opts.SignInLimiter, "signin", h.Log))
	}
	signIn.POST("/signin", h.SignIn)
	signIn.POST("/refresh", h.Refresh)

	api := v1.Group("", auth.AdminAuth(h.Signer))
	{
		api.POST("/auth/password", h.ChangePassword)
		api.GET("/dashboard", h.DashboardSummary)
		api.GET("/live/:collection", h.Live)
		api.POST("/uploads/:folder", h.Upload)

		api.GET("/students", h.ListStudents)
		api.POST("/students", h.CreateStudent)
		api.GET("/students/:id", h.GetStudent)
		api.PATCH("/students/:id", h.UpdateStudent)
		api.DELETE("/students/:id", h.DeleteStudent)
		api.POST("/students/:id/photo", h.StudentPhoto)
		api.GET("/students/:id/fees", h.FeeStatement)
		api.POST("/students/:id/fees/:month/pay", h.PayFee)
		api.PUT("/students/:id/attendance/:day", h.MarkStudentDay)
		api.GET("/students/:id/attendance/month/:month", h.StudentMonth)
		api.GET("/students/:id/marksheet", h.Marksheet)

		api.POST("/attendance/class", h.MarkClassDay)
		api.GET("/attendance/absent", h.AbsentStudents)

		api.GET("/teachers", h.ListTeachers)
		api.POST("/teachers", h.CreateTeacher)
		api.GET("/teachers/:id", h.GetTeacher)
		api.PATCH("/teachers/:id", h.UpdateTeacher)
		api.DELETE("/teachers/:id", h.DeleteTeacher)
		api.POST("/teachers/:id/photo", h.TeacherPhoto)
		api.PUT("/teachers/:id/attendance/:day", h.MarkTeacherDay)
		api.GET("/teachers/:id/attendance/month/:month", h.TeacherMonth)
		api.GET("/teachers/:id/salary/:month", h.SalaryQuote)
		api.POST("/teachers/:id/salary/:month/pay", h.PaySalary)

		api.GET("/results", h.ListResults)
		api.GET("/results/class/:class", h.ClassReport)
		api.GET("/results/student/:student/:exam", h.ResultSummary)
		api.PUT("/results/student/:student/:exam", h.SaveResult)
		api.DELETE("/results/student/:student/:exam", h.DeleteResult)

		api.GET("/homework", h.ListHomework)
		api.POST("/homework", h.CreateHomework)
		api.DELETE("/homework/:id", h.DeleteHomework)
		api.GET("/notices", h.ListNotices)
		api.POST("/notices", h.CreateNotice)
		api.DELETE("/notices/:id", h.DeleteNotice)

		api.GET("/timetables/:class", h.GetTimetable)
		api.PUT("/timetables/:class", h.SaveTimetable)
		api.GET("/settings/school", h.SchoolDetails)
		api.PUT("/settings/school", h.SaveSchoolDetails)

		api.GET("/applications", h.ListApplications)
		api.POST("/applications", h.CreateApplication)
		api.DELETE("/applications/:id", h.DeleteApplication)
	}

	index := filepath.Join(opts.WebDir, "index.html")
	for _, p := range clientRoutes {
		r.GET(p, func(c *gin.Context) { c.File(index) })
	}
	r.NoRoute(spaFallback(opts.WebDir))
	return r
}

// spaFallback serves bundle assets, answers unknown API paths with 404 and
// redirects everything else to the dashboard.
func spaFallback(webDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if p == "/v1" || strings.HasPrefix(p, "/v1/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		if c.Request.Method == http.MethodGet && webDir != "" {
			file := filepath.Join(webDir, filepath.FromSlash(path.Clean("/"+p)))
			if info, err := os.Stat(file); err == nil && !info.IsDir() {
				c.File(file)
				return
			}
		}
		c.Redirect(http.StatusFound, "/dash")
	}
}

func healthz(checks map[string]func(context.Context) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		body := gin.H{"status": "ok"}
		for name, check := range checks {
			ok := check(c.Request.Context())
			body[name] = ok
			if !ok {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
			}
		}
		c.JSON(status, body)
	}
}

func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}
