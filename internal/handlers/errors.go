package handlers

import (
	"errors"
	"fmt"
	"html"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amaumene/filmdocs/internal/document"
	apperrors "github.com/amaumene/filmdocs/internal/errors"
	"github.com/amaumene/filmdocs/internal/middleware"
	"github.com/amaumene/filmdocs/pkg/telemetry"
)

const errorPageTemplate = `<!DOCTYPE html><html><head><meta charset="UTF-8"><title>Error</title></head>` +
	`<body><h1>Error</h1><p><u>%s</u> (<em>%s</em>)</p></body></html>`

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindBadInput:
		return http.StatusBadRequest
	case apperrors.KindDataGatheringFailed:
		return http.StatusBadGateway
	case apperrors.KindPoolExhausted:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// describe returns the outward message and its cause detail.
func describe(err error) (string, string) {
	var fe *apperrors.FilmError
	if !errors.As(err, &fe) {
		return apperrors.MessageInner, err.Error()
	}
	return fe.Message, apperrors.Detail(err)
}

// errorPage answers with the HTML error page.
func (h *Handler) errorPage(c *gin.Context, err error) {
	status := h.report(c, err)
	message, detail := describe(err)
	body := fmt.Sprintf(errorPageTemplate, html.EscapeString(message), html.EscapeString(detail))
	c.Data(status, "text/html; charset=utf-8", []byte(body))
}

// errorDocument answers document requests. Bad input gets the error page;
// other failures get a one-paragraph document carrying the message.
func (h *Handler) errorDocument(c *gin.Context, err error) {
	if apperrors.KindOf(err) == apperrors.KindBadInput {
		h.errorPage(c, err)
		return
	}

	status := h.report(c, err)
	message, detail := describe(err)
	data, serr := document.NewMessage(fmt.Sprintf("%s: %s", message, detail)).Bytes()
	if serr != nil {
		h.services.Logger.Errorf("[Handler] failed to build error document: %v", serr)
		h.errorPage(c, err)
		return
	}
	h.attachment(c, status, data)
}

// report logs err, sends server-side failures to Sentry and returns the status.
func (h *Handler) report(c *gin.Context, err error) int {
	status := statusFor(err)
	log := h.services.Logger.WithField(middleware.RequestIDKey, middleware.GetRequestID(c))

	if status < http.StatusInternalServerError {
		log.Infof("[Handler] request rejected: %v", err)
		return status
	}

	log.Errorf("[Handler] request failed: %v", err)
	if status != http.StatusServiceUnavailable {
		telemetry.CaptureError(err, map[string]string{
			"kind":       string(apperrors.KindOf(err)),
			"route":      c.FullPath(),
			"request_id": middleware.GetRequestID(c),
		})
	}
	return status
}
