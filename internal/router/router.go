package router

import (
	"time"

	"cajaflow/internal/config"
	"cajaflow/internal/handler"
	"cajaflow/internal/middleware"
	"cajaflow/internal/repository"
	"cajaflow/internal/service"
	"cajaflow/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	cajaRepo := repository.NewCajaRepository(db)
	aperturaRepo := repository.NewAperturaRepository(db)
	movimientoRepo := repository.NewMovimientoRepository(db)
	cierreRepo := repository.NewCierreRepository(db)
	auditoriaRepo := repository.NewAuditoriaRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authz := service.NewAutorizadorPorRol()

	// Worker dispatcher — cierres enqueue review notices through it
	dispatcher := worker.NewDispatcher(rdb)

	authSvc := service.NewAuthService(usuarioRepo, cfg)
	cajaSvc := service.NewCajaService(cajaRepo)
	aperturaSvc := service.NewAperturaService(aperturaRepo, cajaRepo, movimientoRepo, authz)
	movimientoSvc := service.NewMovimientoService(movimientoRepo, aperturaRepo)
	cierreSvc := service.NewCierreService(cierreRepo, aperturaRepo, movimientoRepo, authz, dispatcher)
	aprobacionSvc := service.NewAprobacionService(cierreRepo, movimientoRepo, authz, dispatcher)
	barridoSvc := service.NewBarridoService(cajaRepo, aperturaRepo, auditoriaRepo, cierreSvc, aprobacionSvc, authz)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	cajaH := handler.NewCajaHandler(cajaSvc, aperturaSvc, movimientoSvc, cierreSvc)
	cierresH := handler.NewCierreHandler(cierreSvc, aprobacionSvc, barridoSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		operadores := middleware.RequireRole("cajero", "supervisor", "administrador")
		supervision := middleware.RequireRole("supervisor", "administrador")

		// Registro de cajas — administrador administra, todos consultan
		v1.GET("/cajas", operadores, cajaH.ListarCajas)
		cajas := v1.Group("/cajas", middleware.RequireRole("administrador"))
		{
			cajas.POST("", cajaH.CrearCaja)
			cajas.PATCH("/:id/activa", cajaH.SetActiva)
		}

		// Ciclo de vida de la sesión
		caja := v1.Group("/caja")
		{
			caja.POST("/abrir", operadores, cajaH.Abrir)
			caja.GET("/activa", operadores, cajaH.Activa)
			caja.POST("/movimientos", operadores, cajaH.Movimiento)
			caja.POST("/cerrar", operadores, cajaH.Cerrar)
			caja.GET("/aperturas/:id", operadores, cajaH.Reporte)
			caja.GET("/aperturas/:id/movimientos", operadores, cajaH.Movimientos)
			caja.GET("/historial", supervision, cajaH.Historial)
		}

		// Flujo de aprobación — corregir queda abierto a operadores porque
		// el servicio verifica que el actor sea el dueño del cierre
		cierres := v1.Group("/cierres")
		{
			cierres.GET("", supervision, cierresH.Listar)
			cierres.GET("/:id", operadores, cierresH.Obtener)
			cierres.GET("/:id/revisiones", operadores, cierresH.Revisiones)
			cierres.POST("/:id/aprobar", supervision, cierresH.Aprobar)
			cierres.POST("/:id/rechazar", supervision, cierresH.Rechazar)
			cierres.POST("/:id/corregir", operadores, cierresH.Corregir)
			cierres.POST("/consolidar", supervision, cierresH.ConsolidarLote)
			cierres.POST("/barrido", middleware.RequireRole("administrador"), cierresH.Barrido)
		}

		usuarios := v1.Group("/usuarios", middleware.RequireRole("administrador"))
		{
			usuarios.POST("", authH.CrearUsuario)
			usuarios.GET("", authH.ListarUsuarios)
			usuarios.DELETE("/:id", authH.DesactivarUsuario)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
