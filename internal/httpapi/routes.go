package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DoyleJ11/dualstrike/internal/engine"
	"github.com/DoyleJ11/dualstrike/internal/hub"
	"github.com/DoyleJ11/dualstrike/internal/ws"
)

type RouterOptions struct {
	Lister         Lister
	Logger         *zap.Logger
	OriginPatterns []string
}

func SetupRoutes(h *hub.Hub, opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	hd := NewHandlers(h, opts.Lister, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger.Named("access")))

	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, logger, ws.Options{OriginPatterns: opts.OriginPatterns}))

	r.Route("/matches", func(r chi.Router) {
		r.Post("/", hd.CreateMatch)
		r.Get("/", hd.ListMatches)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", hd.GetMatch)
			r.Get("/rankings", hd.Rankings)
			r.Post("/ready", hd.command(markReady))
			r.Post("/toss", hd.command(recordToss))
			r.Post("/lock", hd.command(lockMatch))

			r.Route("/innings/{idx}", func(r chi.Router) {
				r.Post("/start", hd.command(inningsCommand(engine.CmdStartInnings)))
				r.Post("/undo", hd.command(inningsCommand(engine.CmdUndoBall)))
				r.Post("/complete", hd.command(inningsCommand(engine.CmdCompleteInnings)))

				r.Route("/overs/{over}", func(r chi.Router) {
					r.Post("/assign", hd.command(assignOver))
					r.Post("/powerplay", hd.command(setPowerplay))
					r.Post("/balls", hd.command(recordBall))
				})
			})
		})
	})
	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
