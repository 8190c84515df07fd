package handler

import (
	"net/http"

	"github.com/thingbox/thingbox-go/internal/crypto"
	"github.com/thingbox/thingbox-go/internal/model"
)

// KeyHandler publishes the server's public encryption key.
type KeyHandler struct {
	box *crypto.SealedBox
}

// NewKeyHandler creates a KeyHandler.
func NewKeyHandler(box *crypto.SealedBox) *KeyHandler {
	return &KeyHandler{box: box}
}

// HandlePublicKey handles GET /public-key requests.
func (h *KeyHandler) HandlePublicKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.PublicKeyResponse{PublicKeyB58: h.box.PublicKeyB58()})
}
