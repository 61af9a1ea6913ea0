package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/commonfund/ledgerd/api/transport"
	"github.com/commonfund/ledgerd/domain"
	"github.com/commonfund/ledgerd/pkg/httpcontext"
	"github.com/commonfund/ledgerd/repository"
	effortUC "github.com/commonfund/ledgerd/usecase/effort"
)

type EffortHandler struct {
	baseHandler
	ledger *effortUC.Ledger
}

func NewEffortHandler(ledger *effortUC.Ledger, adapter *httpcontext.Adapter, logger *zap.Logger) *EffortHandler {
	return &EffortHandler{
		baseHandler: newBaseHandler(adapter, logger),
		ledger:      ledger,
	}
}

// @Summary List efforts
// @Tags efforts
// @Router /api/v1/efforts [get]
func (h *EffortHandler) List(ctx *fasthttp.RequestCtx) {
	filter := repository.EffortFilter{
		Handle: string(ctx.QueryArgs().Peek("handle")),
		State:  string(ctx.QueryArgs().Peek("state")),
		Limit:  parseInt(string(ctx.QueryArgs().Peek("limit")), 50),
		Offset: parseInt(string(ctx.QueryArgs().Peek("offset")), 0),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	efforts, err := h.ledger.ListEfforts(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, efforts)
}

// @Summary Get effort
// @Tags efforts
// @Router /api/v1/efforts/{id} [get]
func (h *EffortHandler) Get(ctx *fasthttp.RequestCtx) {
	id, ok := h.effortID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	effort, err := h.ledger.GetEffort(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, effort)
}

// @Summary Effort audit trail
// @Tags efforts
// @Router /api/v1/efforts/{id}/events [get]
func (h *EffortHandler) Events(ctx *fasthttp.RequestCtx) {
	id, ok := h.effortID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	events, err := h.ledger.ListEvents(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, events)
}

// @Summary Submit effort proposal
// @Tags efforts
// @Router /api/v1/efforts [post]
func (h *EffortHandler) Submit(ctx *fasthttp.RequestCtx) {
	address := h.memberAddress(ctx)
	if address == "" {
		return
	}

	var req transport.SubmitProposalRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	effort, err := h.ledger.SubmitProposal(stdCtx, address, req.PerformerAddress, req.DepositCents, req.DurationDays)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, effort)
}

// @Summary Request duration update
// @Tags efforts
// @Router /api/v1/efforts/{id}/duration [post]
func (h *EffortHandler) RequestDuration(ctx *fasthttp.RequestCtx) {
	address := h.memberAddress(ctx)
	if address == "" {
		return
	}
	id, ok := h.effortID(ctx)
	if !ok {
		return
	}

	var req transport.DurationUpdateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	effort, err := h.ledger.RequestDurationUpdate(stdCtx, address, id, req.DurationDays)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, effort)
}

// @Summary Approve duration update
// @Tags efforts
// @Router /api/v1/efforts/{id}/duration/approve [post]
func (h *EffortHandler) ApproveDuration(ctx *fasthttp.RequestCtx) {
	h.transition(ctx, true, h.ledger.ApproveDurationUpdate)
}

// @Summary Commit to effort
// @Tags efforts
// @Router /api/v1/efforts/{id}/commit [post]
func (h *EffortHandler) Commit(ctx *fasthttp.RequestCtx) {
	h.transition(ctx, true, h.ledger.CommitToEffort)
}

// @Summary Mark effort completed
// @Tags efforts
// @Router /api/v1/efforts/{id}/complete [post]
func (h *EffortHandler) Complete(ctx *fasthttp.RequestCtx) {
	h.transition(ctx, true, h.ledger.MarkEffortCompleted)
}

// @Summary Approve effort completion
// @Tags efforts
// @Router /api/v1/efforts/{id}/approve [post]
func (h *EffortHandler) Approve(ctx *fasthttp.RequestCtx) {
	h.transition(ctx, true, h.ledger.ApproveEffortCompletion)
}

// @Summary Force refund after missed approval window
// @Tags efforts
// @Router /api/v1/efforts/{id}/auto-fail [post]
func (h *EffortHandler) AutoFail(ctx *fasthttp.RequestCtx) {
	h.transition(ctx, false, h.ledger.AutoFailIfNoApproval)
}

// @Summary Force refund after missed deadline
// @Tags efforts
// @Router /api/v1/efforts/{id}/deadline-fail [post]
func (h *EffortHandler) DeadlineFail(ctx *fasthttp.RequestCtx) {
	h.transition(ctx, false, h.ledger.FailIfNotCompletedByDeadline)
}

type transitionFunc func(ctx context.Context, address string, id int64) (*domain.Effort, error)

func (h *EffortHandler) transition(ctx *fasthttp.RequestCtx, requireAuth bool, fn transitionFunc) {
	address := string(ctx.Request.Header.Peek("X-Member-Address"))
	if requireAuth && address == "" {
		h.respondJSON(ctx, http.StatusUnauthorized, transport.NewError(string(domain.ErrCodeUnauthorized), "missing member address", nil))
		return
	}
	id, ok := h.effortID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	effort, err := fn(stdCtx, address, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, effort)
}

func (h *EffortHandler) effortID(ctx *fasthttp.RequestCtx) (int64, bool) {
	raw, _ := ctx.UserValue("id").(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid effort id", nil))
		return 0, false
	}
	return id, true
}

func parseInt(value string, fallback int) int {
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}
