// Package server exposes the routing core over a thin HTTP surface.
// Channel adapters talk to these endpoints; all formatting for a
// specific medium stays on their side.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/zen-systems/cortexgate/pkg/agent"
	"github.com/zen-systems/cortexgate/pkg/brain"
	"github.com/zen-systems/cortexgate/pkg/cortex"
	"github.com/zen-systems/cortexgate/pkg/keypool"
	"github.com/zen-systems/cortexgate/pkg/provider"
)

// Server wires the core entry points to HTTP handlers.
type Server struct {
	cortex *cortex.Cortex
	brain  *brain.Chain
	pool   *keypool.Pool
}

// New creates the HTTP server facade.
func New(c *cortex.Cortex, b *brain.Chain, pool *keypool.Pool) *Server {
	return &Server{cortex: c, brain: b, pool: pool}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.handleHealth)
	r.GET("/v1/keys", s.handleKeys)
	r.POST("/v1/route", s.handleRoute)
	r.POST("/v1/brain", s.handleBrain)
	return r
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	log.Info().Str("addr", addr).Msg("server: listening")
	return s.Router().Run(addr)
}

type attachmentPayload struct {
	Kind string `json:"kind"`
	MIME string `json:"mime_type"`
	Data []byte `json:"data"`
}

type routeRequest struct {
	Text        string              `json:"text"`
	CallerName  string              `json:"caller_name"`
	OrgID       string              `json:"org_id"`
	Attachments []attachmentPayload `json:"attachments"`
}

type answerResponse struct {
	Answer string `json:"answer"`
}

func toAttachments(payloads []attachmentPayload) []provider.Attachment {
	if len(payloads) == 0 {
		return nil
	}
	atts := make([]provider.Attachment, 0, len(payloads))
	for _, p := range payloads {
		atts = append(atts, provider.Attachment{
			Kind: provider.AttachmentKind(p.Kind),
			Data: p.Data,
			MIME: p.MIME,
		})
	}
	return atts
}

func (s *Server) handleRoute(c *gin.Context) {
	var req routeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var reqctx *agent.Context
	if req.CallerName != "" || req.OrgID != "" {
		reqctx = &agent.Context{CallerName: req.CallerName, OrgID: req.OrgID}
	}

	answer := s.cortex.Route(c.Request.Context(), req.Text, reqctx, toAttachments(req.Attachments))
	c.JSON(http.StatusOK, answerResponse{Answer: answer})
}

type brainRequest struct {
	Text        string              `json:"text"`
	Attachments []attachmentPayload `json:"attachments"`
}

func (s *Server) handleBrain(c *gin.Context) {
	var req brainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer := s.brain.Ask(c.Request.Context(), req.Text, toAttachments(req.Attachments))
	c.JSON(http.StatusOK, answerResponse{Answer: answer})
}

func (s *Server) handleKeys(c *gin.Context) {
	c.JSON(http.StatusOK, s.pool.Status())
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
