// README: JSON-RPC style transport over gin; one POST /rpc endpoint.
package rpc

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"smartride/internal/observability"
	"smartride/internal/pipeline"
)

const rpcVersion = "2.0"

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type response struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id"`
	Result  any       `json:"result,omitempty"`
	Error   *rpcError `json:"error,omitempty"`
}

type Server struct {
	pipeline *pipeline.Pipeline
	validate *validator.Validate
	logger   *slog.Logger
}

func NewServer(p *pipeline.Pipeline, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		pipeline: p,
		validate: validator.New(),
		logger:   logger,
	}
}

// Routes builds the gin engine exposing the RPC endpoint plus health and
// metrics.
func (s *Server) Routes() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.POST("/rpc", s.handleRPC)
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.logger.Debug("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status())
	}
}

func (s *Server) handleRPC(c *gin.Context) {
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response{
			JSONRPC: rpcVersion,
			Error:   &rpcError{Code: CodeInvalidRequest, Message: "malformed request envelope"},
		})
		return
	}

	result, rpcErr := s.dispatch(c, &req)

	code := "OK"
	if rpcErr != nil {
		code = rpcErr.Code
	}
	observability.RPCRequestsTotal.WithLabelValues(req.Method, code).Inc()

	// Domain errors ride inside the envelope with HTTP 200, JSON-RPC style;
	// only a malformed envelope gets a non-200.
	c.JSON(http.StatusOK, response{
		JSONRPC: rpcVersion,
		ID:      req.ID,
		Result:  result,
		Error:   rpcErr,
	})
}
