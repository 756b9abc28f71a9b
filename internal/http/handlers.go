package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"plushbot/internal/catalog"
	"plushbot/internal/domain"
	"plushbot/internal/session"
)

type Server struct {
	engine   *gin.Engine
	sessions *session.Manager
	catalog  *catalog.Catalog
}

func NewServer(sessions *session.Manager, cat *catalog.Catalog) *Server {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	s := &Server{engine: r, sessions: sessions, catalog: cat}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := s.engine.Group("/api/v1")
	{
		v1.GET("/catalog", s.listCatalog)

		sessions := v1.Group("/sessions")
		sessions.POST("", s.createSession)
		sessions.GET(":id", s.getSession)
		sessions.POST(":id/input", s.postInput)
		sessions.DELETE(":id", s.deleteSession)
	}
}

// snapshotResp снимок разговора для рендера
type snapshotResp struct {
	SessionID string           `json:"session_id"`
	Messages  []domain.Message `json:"messages"`
	CartCount int64            `json:"cart_count"`
	Composing bool             `json:"composing"`
}

func snapshot(s *session.Session) snapshotResp {
	return snapshotResp{
		SessionID: s.ID().String(),
		Messages:  s.Messages(),
		CartCount: s.CartCount(),
		Composing: s.Composing(),
	}
}

// @Summary List catalog products
// @Tags catalog
// @Produce json
// @Success 200 {array} domain.Product
// @Router /catalog [get]
func (s *Server) listCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, s.catalog.Products())
}

// @Summary Start chat session
// @Tags sessions
// @Produce json
// @Success 201 {object} snapshotResp
// @Router /sessions [post]
func (s *Server) createSession(c *gin.Context) {
	sess := s.sessions.Create()
	c.JSON(http.StatusCreated, snapshot(sess))
}

// @Summary Get conversation snapshot
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} snapshotResp
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /sessions/{id} [get]
func (s *Server) getSession(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, snapshot(sess))
}

type inputReq struct {
	Text string `json:"text"`
}

// @Summary Submit user input or button action
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param input body inputReq true "Text or action token"
// @Success 200 {object} snapshotResp
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /sessions/{id}/input [post]
func (s *Server) postInput(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	var req inputReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := sess.HandleInput(c.Request.Context(), req.Text); err != nil {
		status := mapErrorToStatus(err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snapshot(sess))
}

// @Summary End chat session
// @Tags sessions
// @Param id path string true "Session ID"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /sessions/{id} [delete]
func (s *Server) deleteSession(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := s.sessions.Delete(id); err != nil {
		status := mapErrorToStatus(err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) lookup(c *gin.Context) (*session.Session, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return nil, false
	}
	sess, err := s.sessions.Get(id)
	if err != nil {
		status := mapErrorToStatus(err)
		c.JSON(status, gin.H{"error": err.Error()})
		return nil, false
	}
	return sess, true
}

func mapErrorToStatus(err error) int {
	switch err {
	case session.ErrEmptyInput:
		return http.StatusBadRequest
	case session.ErrSessionNotFound:
		return http.StatusNotFound
	case session.ErrBusy:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
