package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kinetics-tools/thermofit/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the read-only thermochemistry API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		r := chi.NewRouter()
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "OPTIONS"},
		}))
		r.Use(rateLimit(rate.Limit(cfg.Server.RatePerSecond), cfg.Server.RateBurst))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		r.Get("/api/species", handleListSpecies(st))
		r.Get("/api/species/{label}", handleGetSpecies(st))
		r.Get("/api/species/{label}/thermo", handleSpeciesThermo(st))

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx) //nolint:errcheck
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

// rateLimit applies one shared token bucket across all requests.
func rateLimit(limit rate.Limit, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(limit, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func handleListSpecies(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := st.ListRecords(r.Context())
		if err != nil {
			zap.L().Error("serve: list species", zap.Error(err))
			writeJSONError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, recs)
	}
}

func handleGetSpecies(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		label := chi.URLParam(r, "label")
		rec, err := st.GetRecord(r.Context(), label)
		if err != nil {
			zap.L().Error("serve: get species", zap.String("label", label), zap.Error(err))
			writeJSONError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if rec == nil {
			writeJSONError(w, http.StatusNotFound, "species not found")
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

// handleSpeciesThermo evaluates the fitted model at a caller-supplied
// temperature: GET /api/species/{label}/thermo?T=1000.
func handleSpeciesThermo(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		label := chi.URLParam(r, "label")

		T, err := strconv.ParseFloat(r.URL.Query().Get("T"), 64)
		if err != nil || T <= 0 {
			writeJSONError(w, http.StatusBadRequest, "query parameter T must be a positive temperature in K")
			return
		}

		rec, err := st.GetRecord(r.Context(), label)
		if err != nil {
			zap.L().Error("serve: get species", zap.String("label", label), zap.Error(err))
			writeJSONError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if rec == nil || rec.Thermo == nil {
			writeJSONError(w, http.StatusNotFound, "species not found")
			return
		}
		if T < rec.Thermo.Tmin() || T > rec.Thermo.Tmax() {
			writeJSONError(w, http.StatusBadRequest,
				fmt.Sprintf("temperature %g K outside fitted range [%g, %g]",
					T, rec.Thermo.Tmin(), rec.Thermo.Tmax()))
			return
		}

		cp, cpErr := rec.Thermo.Cp(T)
		h, hErr := rec.Thermo.H(T)
		s, sErr := rec.Thermo.S(T)
		for _, evalErr := range []error{cpErr, hErr, sErr} {
			if evalErr != nil {
				zap.L().Error("serve: evaluate thermo", zap.String("label", label), zap.Error(evalErr))
				writeJSONError(w, http.StatusInternalServerError, "internal error")
				return
			}
		}

		writeJSON(w, http.StatusOK, map[string]float64{
			"temperature_k": T,
			"cp_j_mol_k":    cp,
			"h_kj_mol":      h / 1000,
			"s_j_mol_k":     s,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
