package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"returns-service/internal/clients"
	"returns-service/internal/services"
)

// Messages shown to merchants and customers
const (
	msgInternal           = "Erro interno"
	msgInvalidAction      = "Ação inválida"
	msgInvalidBody        = "Corpo da requisição inválido"
	msgInvalidID          = "Identificador inválido"
	msgInvalidStatus      = "Status inválido"
	msgShipmentNotCreated = "Etiqueta não criada. Crie primeiro."
	msgShipmentNotFound   = "Etiqueta não encontrada"
)

type errorMapping struct {
	err     error
	status  int
	message string
}

// errorMappings is checked in order with errors.Is
var errorMappings = []errorMapping{
	{services.ErrStoreNotFound, http.StatusNotFound, "Loja não encontrada"},
	{services.ErrOrderNotFound, http.StatusNotFound, "Pedido não encontrado. Verifique o número do pedido e e-mail."},
	{services.ErrReturnRequestNotFound, http.StatusNotFound, "Solicitação não encontrada"},
	{services.ErrMissingStoreAddress, http.StatusBadRequest, "Endereço da loja não configurado. Configure em Configurações."},
	{services.ErrMissingCustomerPostal, http.StatusBadRequest, "CEP do cliente não informado na solicitação."},
	{services.ErrMissingShipment, http.StatusBadRequest, msgShipmentNotCreated},
	{services.ErrNoItemsSelected, http.StatusBadRequest, "Selecione pelo menos um item"},
	{services.ErrInvalidItem, http.StatusBadRequest, "Item inválido na solicitação"},
	{services.ErrInvalidResolution, http.StatusBadRequest, "Tipo de resolução inválido"},
	{services.ErrResolutionNotAllowed, http.StatusBadRequest, "Tipo de resolução não permitido pela loja"},
	{services.ErrReasonRequired, http.StatusBadRequest, "Informe o motivo da solicitação"},
	{services.ErrMissingCustomerDetails, http.StatusBadRequest, "Nome e e-mail do cliente são obrigatórios"},
	{services.ErrInvalidSettings, http.StatusBadRequest, "Configurações inválidas"},
	{services.ErrInvalidOAuthState, http.StatusBadRequest, "Estado inválido"},
	{services.ErrTokenExchange, http.StatusBadRequest, "Falha ao obter token de acesso"},
	{services.ErrInvalidState, http.StatusConflict, "A solicitação não está em um status válido para esta operação"},
	{services.ErrInvalidTransition, http.StatusConflict, "Transição de status inválida"},
	{services.ErrConcurrentUpdate, http.StatusConflict, "A solicitação foi alterada por outra operação. Atualize e tente novamente."},
	{services.ErrCarrierNotConfigured, http.StatusInternalServerError, "Token do Melhor Envio não configurado"},
	{clients.ErrCircuitOpen, http.StatusServiceUnavailable, "Serviço externo indisponível no momento"},
	{clients.ErrUpstreamAuth, http.StatusBadGateway, "Credenciais da plataforma inválidas"},
	{clients.ErrUpstreamUnavailable, http.StatusBadGateway, "Erro ao comunicar com o serviço externo"},
}

// respondError maps a service error to the JSON error envelope
func respondError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			body := gin.H{"success": false, "error": m.message}
			var upstream *clients.UpstreamError
			if errors.As(err, &upstream) && upstream.Body != "" {
				body["details"] = upstream.Body
			}
			c.JSON(m.status, body)
			return
		}
	}

	log.Printf("[Handlers] Unhandled error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": msgInternal})
}

func respondUnauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Autenticação necessária"})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": message})
}

func respondOK(c *gin.Context, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}
