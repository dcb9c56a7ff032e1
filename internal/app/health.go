package app

import (
	"context"
	"time"

	"github.com/mehran-jafari/account/internal/pkg/goerror"
	"github.com/mehran-jafari/account/internal/pkg/router"
)

// registerHealth exposes a readiness probe that checks the two backing
// stores the auth flows cannot run without.
func (a *App) registerHealth() {
	a.router.GET("/health", func(r *router.Request) (any, error) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := a.dbConn.Ping(ctx); err != nil {
			return nil, goerror.NewServer(err)
		}
		if err := a.cacheConn.Ping(ctx).Err(); err != nil {
			return nil, goerror.NewServer(err)
		}

		return map[string]string{"status": "ok"}, nil
	})
}
