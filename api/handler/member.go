package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/commonfund/ledgerd/api/transport"
	"github.com/commonfund/ledgerd/domain"
	"github.com/commonfund/ledgerd/pkg/httpcontext"
	"github.com/commonfund/ledgerd/usecase/membership"
)

type MemberHandler struct {
	baseHandler
	registry *membership.Registry
}

func NewMemberHandler(registry *membership.Registry, adapter *httpcontext.Adapter, logger *zap.Logger) *MemberHandler {
	return &MemberHandler{
		baseHandler: newBaseHandler(adapter, logger),
		registry:    registry,
	}
}

// @Summary Register membership
// @Tags members
// @Router /api/v1/members [post]
func (h *MemberHandler) Register(ctx *fasthttp.RequestCtx) {
	var req transport.RegisterMemberRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Address == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	member, err := h.registry.Register(stdCtx, req.Address)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, member)
}

// @Summary Current member
// @Tags members
// @Router /api/v1/members/me [get]
func (h *MemberHandler) Me(ctx *fasthttp.RequestCtx) {
	address := h.memberAddress(ctx)
	if address == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	member, err := h.registry.GetByAddress(stdCtx, address)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, member)
}

// @Summary Pay subscription
// @Tags members
// @Router /api/v1/members/subscription [post]
func (h *MemberHandler) PaySubscription(ctx *fasthttp.RequestCtx) {
	address := h.memberAddress(ctx)
	if address == "" {
		return
	}

	var req transport.PaySubscriptionRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	handle, err := h.registry.HandleOf(stdCtx, address)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	member, err := h.registry.PaySubscription(stdCtx, handle, req.AmountCents)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, member)
}
