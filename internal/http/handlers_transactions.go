package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"finman/internal/core"
	"finman/internal/store"
)

// parseTransactionInput builds the mutation payload from a form or JSON
// body. Price errors surface the exact validation message; everything
// else is left for the gateway's pre-validation.
func parseTransactionInput(p *RequestBodyParser) (core.TransactionInput, *HTMXResponseBuilder) {
	price, err := core.AmountFromString(p.Get("price"))
	if err != nil {
		return core.TransactionInput{}, UnprocessableEntityError(err.Error())
	}

	isIncome := p.GetBool("isIncome")
	if t := p.Get("type"); t != "" {
		isIncome = t == "income"
	}

	ts := p.Get("time")
	if ts == "" {
		ts = time.Now().UTC().Format(time.RFC3339)
	}

	return core.TransactionInput{
		Name:     p.Get("name"),
		Price:    price,
		IsIncome: isIncome,
		Category: p.Get("category"),
		Time:     ts,
	}, nil
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		s.logger.ErrorContext(r.Context(), "Parse body error", "error", err, "url", r.URL.Path)
		BadRequestError("Invalid request format").Write(w)
		return
	}

	in, errResp := parseTransactionInput(p)
	if errResp != nil {
		errResp.Write(w)
		return
	}

	sess := sessionFromRequest(r)
	ctx, cancel := context.WithTimeout(r.Context(), s.backendTimeout)
	defer cancel()
	if err := s.gateway.Create(ctx, sess, in); err != nil {
		s.logger.WarnContext(r.Context(), "Create transaction failed", "error", err)
		GatewayErrorResponse(err).Write(w)
		return
	}

	s.invalidateSession(sess)
	s.structured.LogMutation(r.Context(), string(store.OpCreate), "", in.Category, in.IsIncome)

	NewHTMXResponse().
		TriggerTransactionsChanged().
		TriggerFormReset().
		TriggerSuccessNotification("Transaction added").
		Write(w)
}

// handleTransactionByID routes POST (update) and DELETE under
// /transactions/{id}.
func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	id := sanitizeInput(strings.TrimPrefix(r.URL.Path, "/transactions/"))
	if id == "" || strings.Contains(id, "/") {
		UnprocessableEntityError(core.ErrInvalidTransaction.Error()).Write(w)
		return
	}

	switch r.Method {
	case http.MethodPost, http.MethodPut:
		s.updateTransaction(w, r, id)
	case http.MethodDelete:
		s.deleteTransaction(w, r, id)
	default:
		MethodNotAllowedError("POST, PUT, DELETE").Write(w)
	}
}

func (s *Server) updateTransaction(w http.ResponseWriter, r *http.Request, id string) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		s.logger.ErrorContext(r.Context(), "Parse body error", "error", err, "url", r.URL.Path)
		BadRequestError("Invalid request format").Write(w)
		return
	}

	in, errResp := parseTransactionInput(p)
	if errResp != nil {
		errResp.Write(w)
		return
	}

	sess := sessionFromRequest(r)
	ctx, cancel := context.WithTimeout(r.Context(), s.backendTimeout)
	defer cancel()
	if err := s.gateway.Update(ctx, sess, id, in); err != nil {
		s.logger.WarnContext(r.Context(), "Update transaction failed",
			"error", err, "transaction_id", id)
		GatewayErrorResponse(err).Write(w)
		return
	}

	s.invalidateSession(sess)
	s.structured.LogMutation(r.Context(), string(store.OpUpdate), id, in.Category, in.IsIncome)

	NewHTMXResponse().
		TriggerTransactionsChanged().
		TriggerSuccessNotification("Transaction updated").
		Write(w)
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request, id string) {
	sess := sessionFromRequest(r)
	ctx, cancel := context.WithTimeout(r.Context(), s.backendTimeout)
	defer cancel()
	if err := s.gateway.Delete(ctx, sess, id); err != nil {
		s.logger.WarnContext(r.Context(), "Delete transaction failed",
			"error", err, "transaction_id", id)
		GatewayErrorResponse(err).Write(w)
		return
	}

	s.invalidateSession(sess)
	s.structured.LogMutation(r.Context(), string(store.OpDelete), id, "", false)

	NewHTMXResponse().
		TriggerTransactionsChanged().
		TriggerSuccessNotification("Transaction deleted").
		Write(w)
}
