package host

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/benoitkugler/okchart/chart"
	"github.com/benoitkugler/okchart/config"
	"github.com/benoitkugler/okchart/source"
	"github.com/benoitkugler/okchart/svgdraw"
	"github.com/benoitkugler/okchart/svgicon"
	"github.com/benoitkugler/okchart/svgpdf"
	"github.com/benoitkugler/okchart/svgraster"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DeliveryResponse is returned after a payload is rendered.
type DeliveryResponse struct {
	Records int `json:"records"`
	Groups  int `json:"groups"`
	Issues  int `json:"issues"`
}

// GroupInfo describes one rendered series.
type GroupInfo struct {
	EntityID   string `json:"entity_id"`
	IsMain     bool   `json:"is_main"`
	Records    int    `json:"records"`
	Duplicates int    `json:"duplicates"`
	LastDate   string `json:"last_date"`
	LogoURL    string `json:"logo_url"`
	Overshoots bool   `json:"overshoots"`
}

func abort(c *gin.Context, status int, code string, err error) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: ErrorDetail{Code: code, Message: err.Error()}})
}

func recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		message := "An unexpected error occurred"
		if s, ok := recovered.(string); ok {
			message = s
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{Code: "INTERNAL_ERROR", Message: message},
		})
	})
}

// Server exposes a Coordinator over HTTP.
type Server struct {
	coordinator *Coordinator
	logos       *svgicon.Loader
	options     config.ServerConfig
	handler     http.Handler
}

// NewServer builds the gin router, wrapped by a CORS handler.
func NewServer(coordinator *Coordinator, logos *svgicon.Loader, options config.ServerConfig) *Server {
	s := &Server{coordinator: coordinator, logos: logos, options: options}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/chart.svg", s.chartSVG)
	router.GET("/chart.png", s.chartPNG)
	router.GET("/chart.pdf", s.chartPDF)

	api := router.Group("/api/v1")
	{
		api.POST("/payload", s.postPayload)
		api.GET("/groups", s.listGroups)
	}

	s.handler = cors.New(cors.Options{
		AllowedOrigins: options.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(router)
	return s
}

func (s *Server) Handler() http.Handler { return s.handler }

// ListenAndServe serves until `ctx` is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{Addr: s.options.Addr, Handler: s.handler}
	errc := make(chan error, 1)
	go func() {
		log.Printf("host: listening on %s", s.options.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// postPayload handles POST /api/v1/payload
func (s *Server) postPayload(c *gin.Context) {
	body := c.Request.Body
	if s.options.MaxPayloadBytes > 0 {
		body = http.MaxBytesReader(c.Writer, body, s.options.MaxPayloadBytes)
	}
	payload, err := source.DecodePayload(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abort(c, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", err)
			return
		}
		abort(c, http.StatusBadRequest, "INVALID_PAYLOAD", err)
		return
	}

	if err := s.coordinator.Deliver(payload); err != nil {
		var (
			dateErr   *chart.DateError
			metricErr *chart.ParseError
		)
		switch {
		case errors.Is(err, chart.ErrNoRecords):
			abort(c, http.StatusUnprocessableEntity, "NO_RECORDS", err)
		case errors.As(err, &dateErr):
			abort(c, http.StatusUnprocessableEntity, "INVALID_DATE", err)
		case errors.As(err, &metricErr):
			abort(c, http.StatusUnprocessableEntity, "INVALID_METRIC", err)
		default:
			abort(c, http.StatusInternalServerError, "RENDER_FAILED", err)
		}
		return
	}

	_, report := s.coordinator.Mount().Current()
	c.JSON(http.StatusOK, DeliveryResponse{
		Records: len(report.Records),
		Groups:  len(report.Groups),
		Issues:  len(report.Issues),
	})
}

var errNoChart = errors.New("no chart is mounted")

// mounted returns the current scene, or aborts with 404.
func (s *Server) mounted(c *gin.Context) (*svgdraw.Scene, chart.Report, bool) {
	scene, report := s.coordinator.Mount().Current()
	if scene == nil {
		abort(c, http.StatusNotFound, "NO_CHART", errNoChart)
		return nil, report, false
	}
	return scene, report, true
}

func (s *Server) chartSVG(c *gin.Context) {
	scene, _, ok := s.mounted(c)
	if !ok {
		return
	}
	data, err := scene.ToSVG()
	if err != nil {
		abort(c, http.StatusInternalServerError, "ENCODING_FAILED", err)
		return
	}
	c.Data(http.StatusOK, "image/svg+xml", data)
}

func (s *Server) chartPNG(c *gin.Context) {
	scene, _, ok := s.mounted(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := svgraster.WritePNG(c.Request.Context(), &buf, scene, s.logos); err != nil {
		abort(c, http.StatusInternalServerError, "ENCODING_FAILED", err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) chartPDF(c *gin.Context) {
	scene, _, ok := s.mounted(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := svgpdf.WritePDF(c.Request.Context(), &buf, scene, s.logos); err != nil {
		abort(c, http.StatusInternalServerError, "ENCODING_FAILED", err)
		return
	}
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// listGroups handles GET /api/v1/groups
func (s *Server) listGroups(c *gin.Context) {
	_, report, ok := s.mounted(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, Groups(report, s.coordinator.options.Layout))
}

// Groups summarizes the series of a report.
func Groups(report chart.Report, layout chart.Layout) []GroupInfo {
	out := make([]GroupInfo, len(report.Groups))
	for i, g := range report.Groups {
		last := g.Last()
		out[i] = GroupInfo{
			EntityID:   g.EntityID,
			IsMain:     g.IsMain,
			Records:    len(g.Records),
			Duplicates: g.Duplicates(),
			LastDate:   last.Date,
			LogoURL:    last.LogoURL,
		}
		if i < len(report.Extents) {
			out[i].Overshoots = report.Extents[i].Overshoots(layout)
		}
	}
	return out
}
