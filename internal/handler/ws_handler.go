package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/stemsi/paxcalc-backend/internal/middleware"
	"github.com/stemsi/paxcalc-backend/internal/model"
	"github.com/stemsi/paxcalc-backend/internal/response"
	"github.com/stemsi/paxcalc-backend/internal/service"
	"github.com/stemsi/paxcalc-backend/internal/validator"
	ws "github.com/stemsi/paxcalc-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams live conversions while the user types.
type WSHandler struct {
	calculatorService *service.CalculatorService
	log               zerolog.Logger
	upgrader          websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(calculatorService *service.CalculatorService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		calculatorService: calculatorService,
		log:               log.With().Str("component", "ws_handler").Logger(),
		upgrader:          buildUpgrader(allowedOrigins),
	}
}

// CalculateStream godoc
// WS /ws/v1/calculate?client_id=...
// Previews are never recorded; the client posts to /calculate to keep one.
func (h *WSHandler) CalculateStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()
	ws.Prepare(conn)

	clientID := middleware.GetClientID(c)
	wsLog := h.log.With().Str("client_id", clientID).Logger()
	wsLog.Debug().Msg("Client connected")

	for {
		action, data, err := ws.ReadMessage(conn)
		if errors.Is(err, ws.ErrMalformedMessage) {
			ws.WriteError(conn, 0, string(response.ErrInvalidPayload), "message must be a JSON object")
			continue
		}
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch action {
		case ws.ActionConvert:
			h.handleConvert(c, conn, clientID, data)
		case ws.ActionPing:
			ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		default:
			ws.WriteError(conn, 0, string(response.ErrInvalidPayload), "unknown action: "+string(action))
		}
	}
}

func (h *WSHandler) handleConvert(c *gin.Context, conn *websocket.Conn, clientID string, data []byte) {
	var req ws.ConvertRequest
	if err := json.Unmarshal(data, &req); err != nil {
		ws.WriteError(conn, 0, string(response.ErrInvalidPayload), err.Error())
		return
	}

	if fields := validator.Struct(&req.CalculateRequest); fields != nil {
		ws.WriteTyped(conn, ws.ErrorResponse{
			Event:  ws.EventError,
			Seq:    req.Seq,
			Code:   string(response.ErrValidation),
			Error:  response.GetMessage(response.ErrValidation),
			Fields: fields,
		})
		return
	}

	calc, err := h.calculatorService.Calculate(c.Request.Context(), model.CalculateInput{
		ClientID:  clientID,
		Year:      req.Year,
		IndexType: model.IndexType(req.IndexType),
		Time:      req.Time,
		FromClass: req.FromClass,
		ToClass:   req.ToClass,
	})
	if err != nil {
		_, code := failureFor(err)
		ws.WriteError(conn, req.Seq, string(code), err.Error())
		return
	}

	ws.WriteTyped(conn, ws.ResultResponse{Event: ws.EventResult, Seq: req.Seq, Result: calc})
}
