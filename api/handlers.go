package api

import (
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/superbridgeapp/superchain-token-list/chains"
	"github.com/superbridgeapp/superchain-token-list/config"
	"github.com/superbridgeapp/superchain-token-list/log"
	"github.com/superbridgeapp/superchain-token-list/tokenlist"
)

// Artifacts are the files served by the API. They are loaded once, at startup.
type Artifacts struct {
	TokenList *tokenlist.TokenList
	// TokenListFile is the token list file as committed. When set it is
	// served verbatim, fields unknown to TokenList included.
	TokenListFile []byte
	Tokens    []tokenlist.TokenData
	Chains    []chains.Chain
}

// LoadArtifacts reads the token list and the data directory.
func LoadArtifacts(paths *config.PathsConfig, registry *chains.Registry) (*Artifacts, error) {
	list, err := tokenlist.LoadTokenList(paths.TokenList)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(paths.TokenList)
	if err != nil {
		return nil, fmt.Errorf("reading token list: %w", err)
	}
	tokens, err := tokenlist.ReadDataDir(paths.DataDir)
	if err != nil {
		return nil, err
	}
	return &Artifacts{
		TokenList:     list,
		TokenListFile: raw,
		Tokens:        tokens,
		Chains:        registry.All(),
	}, nil
}

type handler struct {
	artifacts *Artifacts
	byID      map[string]*tokenlist.TokenData
	logger    *log.Logger
}

func newHandler(artifacts *Artifacts, logger *log.Logger) *handler {
	byID := make(map[string]*tokenlist.TokenData, len(artifacts.Tokens))
	for i := range artifacts.Tokens {
		byID[artifacts.Tokens[i].OpTokenID] = &artifacts.Tokens[i]
	}
	return &handler{
		artifacts: artifacts,
		byID:      byID,
		logger:    logger,
	}
}

func (h *handler) getTokenList(w http.ResponseWriter, r *http.Request) {
	if h.artifacts.TokenListFile != nil {
		h.writeRaw(w, r, h.artifacts.TokenListFile)
		return
	}
	h.writeJSON(w, r, h.artifacts.TokenList)
}

func (h *handler) getTokens(w http.ResponseWriter, r *http.Request) {
	tokens := h.artifacts.Tokens
	if tokens == nil {
		tokens = []tokenlist.TokenData{}
	}
	h.writeJSON(w, r, tokens)
}

func (h *handler) getToken(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "opTokenId")
	token, ok := h.byID[id]
	if !ok {
		HumanReadableJsonErrorHandler(w, r, fmt.Errorf("token %s: %w", id, ErrNotFound))
		return
	}
	h.writeJSON(w, r, token)
}

func (h *handler) getChains(w http.ResponseWriter, r *http.Request) {
	all := h.artifacts.Chains
	if all == nil {
		all = []chains.Chain{}
	}
	h.writeJSON(w, r, all)
}

// writeJSON renders v in the same layout as the files in the repository.
func (h *handler) writeJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	raw, err := tokenlist.Marshal(v)
	if err != nil {
		h.logger.Error("encoding response", "path", r.URL.Path, "err", err)
		HumanReadableJsonErrorHandler(w, r, err)
		return
	}
	h.writeRaw(w, r, raw)
}

func (h *handler) writeRaw(w http.ResponseWriter, r *http.Request, raw []byte) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(raw); err != nil {
		h.logger.Debug("writing response", "path", r.URL.Path, "err", err)
	}
}
