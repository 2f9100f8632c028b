package api

import (
	"time"

	"github.com/atomizehq/atomize/internal/db"
	"github.com/atomizehq/atomize/internal/services"
	"gorm.io/gorm"
)

const defaultTokenTTL = 7 * 24 * time.Hour

type Handler struct {
	repos      *db.Repositories
	membership *services.MembershipEngine
	squads     *services.SquadService
	stats      *services.StatsService
	streaks    *services.StreakService
	secretKey  []byte
	tokenTTL   time.Duration
}

func NewHandler(database *gorm.DB, secretKey string, tokenTTL time.Duration) *Handler {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	repos := db.NewRepositories(database)
	return &Handler{
		repos:      repos,
		membership: services.NewMembershipEngine(repos.Squads),
		squads:     services.NewSquadService(repos.Squads),
		stats:      services.NewStatsService(repos.Completions, repos.Habits),
		streaks:    services.NewStreakService(repos.Completions, repos.Habits),
		secretKey:  []byte(secretKey),
		tokenTTL:   tokenTTL,
	}
}
