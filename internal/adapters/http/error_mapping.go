package httpadapter

import (
	"net/http"

	"github.com/kirillkom/brandvoice-promptgen/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrValidation), domain.IsKind(err, domain.ErrInvalidTemplate):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrPostNotFound), domain.IsKind(err, domain.ErrTemplateNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrDuplicateID):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrEmptyKnowledgeBase),
		domain.IsKind(err, domain.ErrNoMatch),
		domain.IsKind(err, domain.ErrMissingPlaceholder):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrConnectivity):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrGeneration):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// compositionOutcome labels a composition result for metrics.
func compositionOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case domain.IsKind(err, domain.ErrValidation):
		return "validation"
	case domain.IsKind(err, domain.ErrEmptyKnowledgeBase):
		return "empty_knowledge_base"
	case domain.IsKind(err, domain.ErrNoMatch):
		return "no_match"
	case domain.IsKind(err, domain.ErrMissingPlaceholder), domain.IsKind(err, domain.ErrInvalidTemplate),
		domain.IsKind(err, domain.ErrTemplateNotFound):
		return "template"
	case domain.IsKind(err, domain.ErrConnectivity):
		return "connectivity"
	case domain.IsKind(err, domain.ErrGeneration):
		return "generation"
	default:
		return "error"
	}
}
