// Package httpapi exposes the strip analyzer over HTTP with gin.
//
// Routes:
//
//	GET  /health          liveness and version
//	GET  /v1/calibration  the active calibration table
//	POST /v1/analyze      multipart upload: "image" file, optional
//	                      "water_source" and "annotate" fields
//
// Responses are JSON unless the client sends Accept: application/msgpack.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ironsheep/stripscan/internal/analysis"
	"github.com/ironsheep/stripscan/internal/config"
	"github.com/ironsheep/stripscan/internal/imaging"
	"github.com/ironsheep/stripscan/internal/water"
)

// AnalyzeResponse is the body of a successful POST /v1/analyze.
type AnalyzeResponse struct {
	RequestID string                  `json:"request_id" msgpack:"request_id"`
	Format    string                  `json:"format" msgpack:"format"`
	Report    *analysis.Report        `json:"report" msgpack:"report"`
	Annotated *imaging.AnnotateResult `json:"annotated,omitempty" msgpack:"annotated,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string `json:"error" msgpack:"error"`
	Message   string `json:"message,omitempty" msgpack:"message,omitempty"`
	RequestID string `json:"request_id,omitempty" msgpack:"request_id,omitempty"`
}

// Server serves the analyzer over HTTP.
type Server struct {
	analyzer *analysis.Analyzer
	cfg      config.HTTPConfig
	maxDim   int
	version  string
	logger   *zap.SugaredLogger
}

// New creates a Server. A nil logger disables logging and a non-positive
// request timeout takes the default.
func New(a *analysis.Analyzer, cfg config.HTTPConfig, maxDimension int, version string, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if maxDimension <= 0 {
		maxDimension = imaging.DefaultMaxDimension
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = config.Default().HTTP.RequestTimeout
	}
	return &Server{analyzer: a, cfg: cfg, maxDim: maxDimension, version: version, logger: logger}
}

// Handler returns the gin engine with every route registered.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(
		gin.Recovery(),
		requestID(),
		requestLogger(s.logger),
		requestSizeLimiter(s.cfg.MaxRequestBodySize),
	)

	r.GET("/health", s.health)
	v1 := r.Group("/v1")
	v1.GET("/calibration", s.calibration)
	v1.POST("/analyze", s.analyze)
	return r
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Address(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Infow("http api listening", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(c *gin.Context) {
	render(c, http.StatusOK, gin.H{
		"status":  "available",
		"version": s.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) calibration(c *gin.Context) {
	render(c, http.StatusOK, s.analyzer.Matcher().Calibration().Table())
}

func (s *Server) analyze(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.RequestTimeout)
	defer cancel()

	source := water.Other
	if raw := c.PostForm("water_source"); raw != "" {
		var ok bool
		if source, ok = water.ParseSource(raw); !ok {
			respondError(c, http.StatusBadRequest, "unknown water source",
				fmt.Errorf("%q is not one of %v", raw, water.Sources()))
			return
		}
	}
	annotate := false
	if raw := c.PostForm("annotate"); raw != "" {
		var err error
		if annotate, err = strconv.ParseBool(raw); err != nil {
			respondError(c, http.StatusBadRequest, "invalid annotate flag", err)
			return
		}
	}

	fh, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "missing image upload", err)
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "unreadable image upload", err)
		return
	}
	defer f.Close()

	img, format, err := imaging.Decode(f)
	if err != nil {
		respondError(c, http.StatusBadRequest, "failed to decode image", err)
		return
	}
	img = imaging.Downscale(img, s.maxDim)

	report, err := s.analyzer.Analyze(ctx, img, source)
	if err != nil {
		respondError(c, statusFor(err), "analysis failed", err)
		return
	}

	resp := AnalyzeResponse{RequestID: c.GetString(requestIDKey), Format: format, Report: report}
	if annotate {
		if resp.Annotated, err = imaging.AnnotateEncoded(img, report.Boxes()); err != nil {
			respondError(c, http.StatusInternalServerError, "failed to annotate image", err)
			return
		}
	}

	s.logger.Infow("strip analyzed",
		"request_id", resp.RequestID,
		"water_source", source,
		"regions", report.RegionsDetected,
		"overall_confidence", report.OverallConfidence,
		"qa_passed", report.QA.Passed,
	)
	render(c, http.StatusOK, resp)
}

// statusFor maps analysis failures to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	switch analysis.KindOf(err) {
	case analysis.KindInvalidInput:
		return http.StatusUnprocessableEntity
	case analysis.KindCanceled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
