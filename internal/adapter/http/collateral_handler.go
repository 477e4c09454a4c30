package http

import (
	"context"
	"net/http"

	"agrolend-backend/internal/adapter/docvalidator"
	"agrolend-backend/internal/apperr"
	"agrolend-backend/internal/domain/user"

	"github.com/labstack/echo/v4"
)

// minDocConfidence gates collateral-document acceptance.
const minDocConfidence = 0.8

// DocValidator is the contract against the document-validation service.
type DocValidator interface {
	Validate(ctx context.Context, document string) (*docvalidator.Result, error)
}

type CollateralHandler struct{ validator DocValidator }

func NewCollateralHandler(v DocValidator) *CollateralHandler {
	return &CollateralHandler{validator: v}
}

type collateralDocReq struct {
	Document string `json:"document" validate:"required"`
}

// SubmitDocument validates a warehouse receipt before collateral-token
// issuance. This gate never touches the funding engine.
func (h *CollateralHandler) SubmitDocument(c echo.Context) error {
	ident := CurrentIdentity(c)
	if ident == nil || ident.Role != user.RoleProducer {
		return writeError(c, apperr.ErrProducerRole)
	}

	var req collateralDocReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}

	res, err := h.validator.Validate(c.Request().Context(), req.Document)
	if err != nil {
		return writeError(c, apperr.Wrap(apperr.ErrDocValidatorFailed, err))
	}

	accepted := res.IsValid && res.Confidence >= minDocConfidence
	return c.JSON(http.StatusOK, map[string]any{
		"accepted":   accepted,
		"confidence": res.Confidence,
	})
}
