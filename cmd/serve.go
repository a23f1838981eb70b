package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/partnerforge/partnerforge/internal/config"
	"github.com/partnerforge/partnerforge/internal/distribution"
	"github.com/partnerforge/partnerforge/internal/model"
	"github.com/partnerforge/partnerforge/internal/scoring"
	"github.com/partnerforge/partnerforge/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		scoringCfg, err := scoring.EffectiveConfig(cfg.Scoring)
		if err != nil {
			return err
		}
		if err := scoring.ValidateConfig(scoringCfg); err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		api := &apiServer{store: st, scoringCfg: scoringCfg}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           api.router(cfg.Server),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

type apiServer struct {
	store      store.Store
	scoringCfg config.ScoringConfig
}

func (a *apiServer) router(serverCfg config.ServerConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: serverCfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	if serverCfg.RateLimit > 0 {
		r.Use(newClientLimiter(rate.Limit(serverCfg.RateLimit), serverCfg.RateBurst).middleware)
	}

	r.Get("/health", a.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/companies", a.handleListCompanies)
		r.Get("/companies/{domain}/score", a.handleCompanyScore)
		r.Get("/distribution", a.handleDistribution)
		r.Get("/scores", a.handleLatestScores)
	})
	return r
}

func (a *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *apiServer) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	filter := store.CompanyFilter{
		Vertical: r.URL.Query().Get("vertical"),
		Limit:    queryInt(r, "limit", 100),
		Offset:   queryInt(r, "offset", 0),
	}
	companies, err := a.store.ListCompanies(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if companies == nil {
		companies = []model.Company{}
	}
	writeJSON(w, http.StatusOK, companies)
}

func (a *apiServer) handleCompanyScore(w http.ResponseWriter, r *http.Request) {
	domain, err := model.NormalizeDomain(chi.URLParam(r, "domain"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	company, err := a.store.GetCompany(r.Context(), domain)
	if err != nil {
		if eris.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, scoring.ScoredCompany{
		Company: *company,
		Score:   scoring.Score(company, a.scoringCfg),
	})
}

func (a *apiServer) handleDistribution(w http.ResponseWriter, r *http.Request) {
	companies, err := a.store.ListCompanies(r.Context(), store.CompanyFilter{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	scored, err := scoring.ScoreAll(r.Context(), companies, a.scoringCfg)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	topN := queryInt(r, "top", distribution.DefaultTopVerticals)
	writeJSON(w, http.StatusOK, distribution.Aggregate(scored, topN))
}

func (a *apiServer) handleLatestScores(w http.ResponseWriter, r *http.Request) {
	scores, err := a.store.LatestScores(r.Context(), queryInt(r, "min", 0), queryInt(r, "limit", 100))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if scores == nil {
		scores = []store.StoredScore{}
	}
	writeJSON(w, http.StatusOK, scores)
}

// clientLimiter applies a per-client-IP token bucket to the API.
type clientLimiter struct {
	mu      sync.Mutex
	clients map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

func newClientLimiter(limit rate.Limit, burst int) *clientLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &clientLimiter{
		clients: make(map[string]*rate.Limiter),
		limit:   limit,
		burst:   burst,
	}
}

func (c *clientLimiter) limiterFor(addr string) *rate.Limiter {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	lim, ok := c.clients[host]
	if !ok {
		lim = rate.NewLimiter(c.limit, c.burst)
		c.clients[host] = lim
	}
	return lim
}

func (c *clientLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !c.limiterFor(r.RemoteAddr).Allow() {
			writeError(w, http.StatusTooManyRequests, eris.New("rate limit exceeded"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		zap.L().Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	var n int
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil || n < 0 {
		return def
	}
	return n
}
