package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/imonitoring/classroom-reservation-backend/internal/api"
	"github.com/imonitoring/classroom-reservation-backend/internal/auth"
	"github.com/imonitoring/classroom-reservation-backend/internal/building"
	"github.com/imonitoring/classroom-reservation-backend/internal/classroom"
	"github.com/imonitoring/classroom-reservation-backend/internal/notification"
	"github.com/imonitoring/classroom-reservation-backend/internal/photo"
	"github.com/imonitoring/classroom-reservation-backend/internal/pkg/keylock"
	"github.com/imonitoring/classroom-reservation-backend/internal/pkg/storage"
	"github.com/imonitoring/classroom-reservation-backend/internal/reservation"
	"github.com/imonitoring/classroom-reservation-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction     bool
	ProdOrigins      string
	DBPool           *pgxpool.Pool
	JWTSecret        string
	JWTTTL           time.Duration
	BcryptCost       int
	PhotoStoragePath string
	NotifyTimeout    time.Duration
	Logger           zerolog.Logger
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) (*Container, error) {
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	photoStore, err := storage.NewLocalStorage(cfg.PhotoStoragePath)
	if err != nil {
		return nil, err
	}

	dispatcher := notification.NewDispatcher(
		notification.NewLogNotifier(cfg.Logger),
		cfg.NotifyTimeout,
		cfg.Logger,
	)

	// User module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher)

	// Building module
	buildingRepo := building.NewPgxRepository(cfg.DBPool)
	buildingService := building.NewService(buildingRepo)

	// Reservation repository first: deleting a classroom purges its
	// reservations, so the classroom service depends on it.
	reservationRepo := reservation.NewPgxRepository(cfg.DBPool)

	// Classroom module
	classroomRepo := classroom.NewPgxRepository(cfg.DBPool)
	classroomService := classroom.NewService(classroomRepo, buildingService, reservationRepo)

	// Reservation module
	reservationService := reservation.NewService(
		reservationRepo,
		classroomService,
		userService,
		keylock.New(),
		dispatcher,
		cfg.Logger,
	)

	// Photo module
	photoRepo := photo.NewPgxRepository(cfg.DBPool)
	photoService := photo.NewService(photoRepo, classroomService, photoStore, cfg.Logger)

	router := api.NewRouter(api.Config{
		IsProduction:       cfg.IsProduction,
		ProdOrigins:        cfg.ProdOrigins,
		UserService:        userService,
		BuildingService:    buildingService,
		ClassroomService:   classroomService,
		ReservationService: reservationService,
		PhotoService:       photoService,
		JWTManager:         jwtManager,
		Logger:             cfg.Logger,
	})

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
	}, nil
}
