package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/imonitoring/classroom-reservation-backend/internal/auth"
	"github.com/imonitoring/classroom-reservation-backend/internal/building"
	buildingHttp "github.com/imonitoring/classroom-reservation-backend/internal/building/http"
	"github.com/imonitoring/classroom-reservation-backend/internal/classroom"
	classroomHttp "github.com/imonitoring/classroom-reservation-backend/internal/classroom/http"
	"github.com/imonitoring/classroom-reservation-backend/internal/photo"
	photoHttp "github.com/imonitoring/classroom-reservation-backend/internal/photo/http"
	"github.com/imonitoring/classroom-reservation-backend/internal/reservation"
	reservationHttp "github.com/imonitoring/classroom-reservation-backend/internal/reservation/http"
	"github.com/imonitoring/classroom-reservation-backend/internal/user"
	userHttp "github.com/imonitoring/classroom-reservation-backend/internal/user/http"
)

// Config collects everything the router needs.
type Config struct {
	IsProduction bool
	ProdOrigins  string

	UserService        user.Service
	BuildingService    building.Service
	ClassroomService   classroom.Service
	ReservationService reservation.Service
	PhotoService       photo.Service

	JWTManager *auth.JWTManager
	Logger     zerolog.Logger
}

// NewRouter assembles the Gin engine: recovery, request logging, CORS,
// and every module's routes under /v1.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(cfg.Logger))

	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction && cfg.ProdOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(cfg.ProdOrigins, ",")
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	staffMiddleware := RequireStaff()
	adminMiddleware := RequireAdmin()

	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	buildingHandler := buildingHttp.NewHandler(cfg.BuildingService)
	classroomHandler := classroomHttp.NewHandler(cfg.ClassroomService)
	reservationHandler := reservationHttp.NewHandler(cfg.ReservationService)
	photoHandler := photoHttp.NewHandler(cfg.PhotoService)

	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware, staffMiddleware, adminMiddleware)
		buildingHttp.RegisterRoutes(v1, buildingHandler, authMiddleware, staffMiddleware)
		classroomHttp.RegisterRoutes(v1, classroomHandler, authMiddleware, staffMiddleware)
		reservationHttp.RegisterRoutes(v1, reservationHandler, authMiddleware)
		photoHttp.RegisterRoutes(v1, photoHandler, authMiddleware, staffMiddleware)
	}

	return r
}
