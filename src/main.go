package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"regexp"

	"taskhub/src/boot"
	"taskhub/src/config"
	"taskhub/src/controllers"
	"taskhub/src/db"
	"taskhub/src/lib"
	"taskhub/src/lib/jobs"
	"taskhub/src/membership"
	"taskhub/src/middlewares"
	"taskhub/src/types"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

const apiPrefix = "/api/v1"

// assignableRole accepts the roles a member can be given directly. Owner only moves by transfer.
var assignableRole validator.Func = func(fl validator.FieldLevel) bool {
	role, err := types.ParseRole(fl.Field().String())
	return err == nil && role != types.ROLE_OWNER
}

func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("assignablerole", assignableRole)
	}
}

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(middlewares.SecureHeaders)
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, "ok")
	})
	return router
}

func maintenanceModeMiddleware(g *gin.Engine, enabled bool) *gin.Engine {
	g.Use(func(ctx *gin.Context) {
		if enabled {
			err := errors.New("server is under maintenance")
			log.Println(err.Error())
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, err.Error())
			return
		}
	})
	return g
}

func corsMiddleware(cfg config.Config) gin.HandlerFunc {
	if cfg.APIEnv == config.ENV_LOCAL || cfg.APIEnv == config.ENV_MEMORY {
		return cors.Default()
	}
	appHost := os.Getenv("APP_HOST")
	cc := cors.DefaultConfig()
	cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "PATCH", "PUT", "DELETE", "HEAD")
	cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Authorization")
	cc.AllowOriginFunc = func(origin string) bool {
		if appHost == "" {
			return false
		}
		match, _ := regexp.MatchString(appHost, origin)
		return match
	}
	cc.AllowCredentials = true
	cc.AllowAllOrigins = false
	return cors.New(cc)
}

// setupApp wires the membership routes onto a fresh router.
func setupApp(cfg config.Config, svc *membership.Service, cache *lib.RoleCache) *gin.Engine {
	router := setupRouter()
	router.Use(corsMiddleware(cfg))
	registerValidators()
	router = maintenanceModeMiddleware(router, cfg.MaintenanceMode)

	c := controllers.NewMembership(svc, cache)
	authorized := router.Group(apiPrefix)
	authorized.Use(middlewares.AuthMiddleware)
	{
		userHandlers(authorized, c)
		workspaceHandlers(authorized, c, svc, cache)
	}
	return router
}

func initLogger() {
	cwd, _ := os.Getwd()
	logsDir := path.Join(cwd, "logs")
	os.MkdirAll(logsDir, 0o755)
	gin.ForceConsoleColor()

	f, err := os.Create(path.Join(logsDir, "api.log"))
	if err == nil {
		gin.DefaultWriter = io.MultiWriter(f, os.Stdout)
	}
	log.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   path.Join(logsDir, "server.log"),
		MaxSize:    500,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	}))
}

func main() {
	apiEnv := os.Getenv("API_ENV")
	if apiEnv == "" || apiEnv == config.ENV_LOCAL || apiEnv == config.ENV_MEMORY {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			log.Printf("No .env loaded: %s\n", err.Error())
		}
	}
	initLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := config.LoadSecrets(ctx); err != nil {
		log.Fatalf("Failed to load secrets: %s", err)
	}
	cfg := config.Load()
	middlewares.SetJWTKey(cfg.JWTSecret)

	var conn *gorm.DB
	if cfg.APIEnv == config.ENV_MEMORY {
		log.Println("Using in-memory database")
		conn = boot.InitMemoryDb()
	} else {
		conn = boot.InitDb()
	}
	store := db.NewStore(conn)

	queue, err := jobs.New(ctx, cfg)
	if err != nil {
		log.Printf("Error initializing %s queue, logging jobs instead: %s\n", cfg.QueueDriver, err.Error())
		queue = jobs.LogQueue{}
	}

	var cache *lib.RoleCache
	if cfg.RedisHost != "" {
		if rdb := lib.GetRedisClient(cfg.RedisHost); rdb != nil {
			cache = lib.NewRoleCache(rdb, cfg.RoleCacheTTL)
		}
	}

	boot.InitScheduler(store, queue, cfg.AuditInterval)
	defer boot.StopScheduler()
	go boot.InitBroker(ctx, cfg, conn)

	svc := membership.NewService(store, queue)
	router := setupApp(cfg, svc, cache)

	if os.Getenv("TLS_ENABLE") == "true" {
		cwd, _ := os.Getwd()
		certpath := path.Join(cwd, "certificates", "localhost.pem")
		keypath := path.Join(cwd, "certificates", "localhost-key.pem")
		if err := router.RunTLS(":"+cfg.Port, certpath, keypath); err != nil {
			log.Fatalf("Failed to start server: %s", err)
		}
	}
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %s", err)
	}
}
