package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"returns-service/internal/clients"
	"returns-service/internal/services"
)

func TestRespondError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantError   string
		wantDetails string
	}{
		{"store not found", services.ErrStoreNotFound, http.StatusNotFound, "Loja não encontrada", ""},
		{"wrapped transition", fmt.Errorf("%w: pending -> completed", services.ErrInvalidTransition), http.StatusConflict, "Transição de status inválida", ""},
		{"concurrent update", services.ErrConcurrentUpdate, http.StatusConflict, "A solicitação foi alterada por outra operação. Atualize e tente novamente.", ""},
		{"upstream auth", clients.NewStatusError("Melhor Envio", 401, []byte(`{"message":"Unauthenticated."}`)), http.StatusBadGateway, "Credenciais da plataforma inválidas", `{"message":"Unauthenticated."}`},
		{"upstream down", clients.NewTransportError("Nuvemshop", errors.New("dial tcp: timeout")), http.StatusBadGateway, "Erro ao comunicar com o serviço externo", ""},
		{"breaker open", fmt.Errorf("%w for resend", clients.ErrCircuitOpen), http.StatusServiceUnavailable, "Serviço externo indisponível no momento", ""},
		{"unknown", errors.New("disk full"), http.StatusInternalServerError, msgInternal, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter("")
			router.GET("/", func(c *gin.Context) { respondError(c, tt.err) })

			w := performRequest(router, http.MethodGet, "/", nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeBody(w)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantError, body["error"])
			if tt.wantDetails != "" {
				assert.Equal(t, tt.wantDetails, body["details"])
			} else {
				assert.NotContains(t, body, "details")
			}
		})
	}
}

func TestRespondOK(t *testing.T) {
	router := setupTestRouter("")
	router.GET("/", func(c *gin.Context) { respondOK(c, gin.H{"stores": []string{}}) })

	w := performRequest(router, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"stores":[]}`, w.Body.String())
}
