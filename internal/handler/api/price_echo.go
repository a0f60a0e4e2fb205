package api

import (
	"time"

	"PriceTrust/internal/domain/models"
	drepo "PriceTrust/internal/domain/repository"
	"PriceTrust/internal/service/lifecycle"
	"PriceTrust/internal/usecase"
	xcache "PriceTrust/pkg/cache"
	xhttp "PriceTrust/pkg/http"
	xlogger "PriceTrust/pkg/logger"
	"PriceTrust/pkg/util"

	"github.com/labstack/echo/v4"
)

// ToolPriceVerified is the lifecycle descriptor key for cached proofs.
const ToolPriceVerified = "price_verified"

// PriceEchoHandler exposes the verification pipeline over HTTP.
type PriceEchoHandler struct {
	logger   *xlogger.Logger
	verifier *usecase.Verifier
	cache    xcache.Service
	calc     *lifecycle.Calculator
	registry *lifecycle.Registry
	audit    drepo.AuditPublisher
	store    drepo.AuditStore
}

func NewPriceEchoHandler(
	logger *xlogger.Logger,
	verifier *usecase.Verifier,
	cacheSvc xcache.Service,
	calc *lifecycle.Calculator,
	registry *lifecycle.Registry,
	audit drepo.AuditPublisher,
	store drepo.AuditStore,
) *PriceEchoHandler {
	return &PriceEchoHandler{
		logger:   logger,
		verifier: verifier,
		cache:    cacheSvc,
		calc:     calc,
		registry: registry,
		audit:    audit,
		store:    store,
	}
}

func (h *PriceEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/price", h.Price)
	g.GET("/ttl", h.TTL)
	e.GET("/healthz", h.Health)
}

// Price resolves a verified daily price. Proofs are cached under the
// price_verified lifecycle descriptor, so freshness follows the market
// session rather than a fixed expiry.
func (h *PriceEchoHandler) Price(c echo.Context) error {
	req := &models.VerifiedPriceRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	ctx := c.Request().Context()
	now := time.Now()
	asOf := util.ParseDateDefault(req.Date, util.DateOnly(now.UTC()))

	key := xcache.Key("proof", req.Symbol, util.FormatDate(asOf), req.Lookback)
	var cached models.PriceProof
	if err := h.cache.Get(ctx, key, &cached); err == nil {
		return xhttp.SuccessResponse(c, &cached)
	}

	proof, err := h.verifier.VerifiedPrice(ctx, req.Symbol, asOf, req.Lookback)
	if err != nil {
		// Only malformed input reaches here; provider trouble lands in
		// the proof's warnings.
		return xhttp.BadRequestResponse(c, map[string]string{"error": err.Error()})
	}

	ttl := h.calc.TTL(h.registry.Descriptor(ToolPriceVerified), now)
	if err := h.cache.Set(ctx, key, &proof, ttl); err != nil {
		h.logger.Warn("proof cache set failed", xlogger.String("key", key), xlogger.Error(err))
	}

	if h.audit != nil {
		if err := h.audit.Publish(ctx, models.AuditEventFromProof(&proof, now)); err != nil {
			h.logger.Warn("audit publish failed",
				xlogger.String("symbol", proof.Symbol.ID), xlogger.Error(err))
		}
	}

	return xhttp.SuccessResponse(c, &proof)
}

// TTL reports the freshness window for a tool at a given instant.
func (h *PriceEchoHandler) TTL(c echo.Context) error {
	req := &models.TTLRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	at := util.ParseTimeDefault(req.At, time.Now())
	desc := h.registry.Descriptor(req.Tool)
	ttl := h.calc.TTL(desc, at)

	return xhttp.SuccessResponse(c, &models.TTLResponse{
		Tool:       req.Tool,
		Lifecycle:  string(desc.Lifecycle),
		TTLSeconds: int64(ttl / time.Second),
	})
}

// Health reports liveness plus audit store reachability.
func (h *PriceEchoHandler) Health(c echo.Context) error {
	status := map[string]string{"status": "ok"}
	if h.store != nil {
		if err := h.store.Health(c.Request().Context()); err != nil {
			status["audit_store"] = "unreachable"
			h.logger.Warn("health: audit store unreachable", xlogger.Error(err))
		} else {
			status["audit_store"] = "ok"
		}
	}
	return xhttp.SuccessResponse(c, status)
}
