package handler

import (
	"net/http"
	"strings"

	"github.com/Crissancio/Backend-Taller/internal/apierror"
	"github.com/Crissancio/Backend-Taller/internal/dto"
	"github.com/Crissancio/Backend-Taller/internal/middleware"
	"github.com/Crissancio/Backend-Taller/internal/service"
	"github.com/Crissancio/Backend-Taller/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type NotificacionesHandler struct {
	svc       service.NotificacionService
	hub       *ws.Hub
	jwtSecret string
	upgrader  websocket.Upgrader
}

func NewNotificacionesHandler(svc service.NotificacionService, hub *ws.Hub, jwtSecret string) *NotificacionesHandler {
	return &NotificacionesHandler{
		svc:       svc,
		hub:       hub,
		jwtSecret: jwtSecret,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browsers cannot set headers on WS handshakes; the token in the
			// query string is the authentication, not the origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Listar GET /v1/notificaciones?no_leidas=true
func (h *NotificacionesHandler) Listar(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	var filter dto.NotificacionFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), alc, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// MarcarLeida PATCH /v1/notificaciones/:id/leida
func (h *NotificacionesHandler) MarcarLeida(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.MarcarLeida(c.Request.Context(), alc, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarcarTodasLeidas PATCH /v1/notificaciones/leidas
func (h *NotificacionesHandler) MarcarTodasLeidas(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	n, err := h.svc.MarcarTodasLeidas(c.Request.Context(), alc)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"actualizadas": n})
}

func (h *NotificacionesHandler) ListarPreferencias(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	resp, err := h.svc.ListarPreferencias(c.Request.Context(), alc)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *NotificacionesHandler) ActualizarPreferencia(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	var req dto.PreferenciaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarPreferencia(c.Request.Context(), alc, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Conectar godoc
// @Summary Canal en vivo de notificaciones
// @Description Upgrade a WebSocket. El access token va en ?token= o en Authorization.
// @Tags notificaciones
// @Param token query string false "Access token JWT"
// @Success 101
// @Failure 401 {object} apierror.APIError
// @Router /ws/notificaciones [get]
func (h *NotificacionesHandler) Conectar(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	}
	claims, err := middleware.ParseToken(h.jwtSecret, token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token invalido o expirado"))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		log.Warn().Err(err).Uint("usuario_id", claims.UserID).Msg("ws: upgrade failed")
		return
	}
	h.hub.Serve(conn, claims.UserID)
}
