package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/commonfund/ledgerd/api/transport"
	"github.com/commonfund/ledgerd/domain"
	"github.com/commonfund/ledgerd/pkg/httpcontext"
	"github.com/commonfund/ledgerd/usecase/membership"
)

type AuthHandler struct {
	baseHandler
	registry *membership.Registry
	secret   string
	issuer   string
	ttl      time.Duration
}

func NewAuthHandler(registry *membership.Registry, adapter *httpcontext.Adapter, logger *zap.Logger, secret, issuer string, ttl time.Duration) *AuthHandler {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		registry:    registry,
		secret:      secret,
		issuer:      issuer,
		ttl:         ttl,
	}
}

// @Summary Login
// @Tags auth
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	var req transport.LoginRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Address == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	member, err := h.registry.GetByAddress(stdCtx, req.Address)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"address": member.Address,
		"handle":  member.Handle,
		"iss":     h.issuer,
		"iat":     now.Unix(),
		"exp":     now.Add(h.ttl).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.secret))
	if err != nil {
		h.respondError(ctx, domain.WrapError(domain.ErrCodeInternal, "token signing failed", err))
		return
	}

	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"token":      token,
		"expires_at": now.Add(h.ttl).UTC(),
	})
}
