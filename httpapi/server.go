// Package httpapi is the HTTPFacade: httptreemux routes binding the five
// public HTTP operations of spec.md §6 to the Migrator/MVTBuilder/
// TileCache/WritePath components, grounded on chartos/views.py,
// chartos/modify.py and chartos/truncate.py. dimfeld/httptreemux/v5 replaces
// FastAPI's APIRouter/Depends machinery (design note §9: Config is an
// injected reference parameter, not a DI singleton).
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/DGEXSolutions/chartos/mvt"
	"github.com/DGEXSolutions/chartos/schema"
	"github.com/DGEXSolutions/chartos/writepath"
	"github.com/dimfeld/httptreemux/v5"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DB is the slice of pgxpool.Pool the facade needs directly: MVTBuilder's
// QueryRow doubles as the health check's SELECT 1.
type DB interface {
	mvt.Querier
}

// RedisPinger is the slice of redis.Cmdable the health check needs.
type RedisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// Cache is the slice of tilecache.Cache the tile handler needs: a plain
// interface so handlers_test.go can substitute a fake without a Redis
// server.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// Server holds every collaborator a route handler needs.
type Server struct {
	Config    *schema.Config
	DB        DB
	Redis     RedisPinger
	Cache     Cache
	WritePath *writepath.WritePath
	RootURL   string
	MaxZoom   uint
	Log       *logrus.Logger
}

// Router builds the httptreemux router with every spec.md §6 route bound.
func (s *Server) Router() http.Handler {
	router := httptreemux.NewContextMux()
	router.GET("/health", s.handleHealth)
	router.GET("/info", s.handleInfo)
	router.GET("/layer/:layer/mvt/:view/", s.handleMVTMetadata)
	router.GET("/tile/:layer/:view/:z/:x/:y/", s.handleTile)
	router.POST("/push/:layer/:change/", s.handlePush)
	return router
}
