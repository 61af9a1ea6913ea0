package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/commonfund/ledgerd/pkg/httpcontext"
	treasuryUC "github.com/commonfund/ledgerd/usecase/treasury"
)

type TreasuryHandler struct {
	baseHandler
	treasury *treasuryUC.Treasury
}

func NewTreasuryHandler(treasury *treasuryUC.Treasury, adapter *httpcontext.Adapter, logger *zap.Logger) *TreasuryHandler {
	return &TreasuryHandler{
		baseHandler: newBaseHandler(adapter, logger),
		treasury:    treasury,
	}
}

// @Summary Treasury balance
// @Tags treasury
// @Router /api/v1/treasury [get]
func (h *TreasuryHandler) Balance(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	balance, err := h.treasury.Balance(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"balance_cents": balance,
	})
}
