package errclass

import (
	"context"
	"errors"
	"net"
	"os"
	"strings"
)

// Generic user-facing messages per kind. Validation and not-found errors
// prefer the server's own wording when the payload carries one.
const (
	msgTimeout      = "A requisição demorou demais. Tente novamente."
	msgConnection   = "Falha de conexão com o servidor. Verifique sua internet."
	msgCORS         = "Requisição bloqueada pela política de origem."
	msgUnauthorized = "Sessão expirada. Faça login novamente."
	msgForbidden    = "Acesso negado."
	msgNotFound     = "Recurso não encontrado."
	msgRateLimit    = "Muitas requisições. Aguarde um instante."
	msgServerError  = "Erro no servidor. Tente novamente em instantes."
	msgValidation   = "Dados inválidos. Revise as informações enviadas."
	msgUnknown      = "Ocorreu um erro inesperado."
)

// corsMarkers are substrings a proxy or gateway places in the error text when
// a request is rejected by cross-origin policy. There is no status code to
// key on, so text matching is the only signal available.
var corsMarkers = []string{"cors", "cross-origin", "blocked by"}

// ClassifyStatus maps an HTTP status plus its error payload to a
// Classification. First match wins, in the order of the decision table.
func ClassifyStatus(status int, payload Payload) Classification {
	switch {
	case status == 401:
		return Classification{Kind: KindUnauthorized, UserMessage: msgUnauthorized, Retryable: false}
	case status == 403:
		return Classification{Kind: KindForbidden, UserMessage: msgForbidden, Retryable: false}
	case status == 404:
		msg := msgNotFound
		if m := payload.ServerMessage(); m != "" {
			msg = m
		}
		return Classification{Kind: KindNotFound, UserMessage: msg, Retryable: false}
	case status == 429:
		return Classification{Kind: KindRateLimit, UserMessage: msgRateLimit, Retryable: true}
	case status >= 500 && status <= 599:
		return Classification{Kind: KindServerError, UserMessage: msgServerError, Retryable: true}
	case status == 400 || status == 422:
		msg := msgValidation
		if m := payload.ServerMessage(); m != "" {
			msg = m
		}
		return Classification{Kind: KindValidation, UserMessage: msg, Retryable: false}
	default:
		return Classification{Kind: KindUnknown, UserMessage: msgUnknown, Retryable: false}
	}
}

// ClassifyTransport maps an error raised before any HTTP status was observed
// (timeout, connection reset, policy rejection) to a Classification.
func ClassifyTransport(err error) Classification {
	if isTimeout(err) {
		return Classification{Kind: KindTimeout, UserMessage: msgTimeout, Retryable: true}
	}
	text := strings.ToLower(err.Error())
	for _, m := range corsMarkers {
		if strings.Contains(text, m) {
			return Classification{Kind: KindCORS, UserMessage: msgCORS, Retryable: false}
		}
	}
	return Classification{Kind: KindConnection, UserMessage: msgConnection, Retryable: true}
}

// Classify resolves the Classification for any error the SDK can produce.
// Errors already carrying a classification return it verbatim; everything
// else goes through the transport table.
func Classify(err error) Classification {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Classification
	}
	return ClassifyTransport(err)
}

// IsRetryable reports whether err is eligible for automatic retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return Classify(err).Retryable
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
