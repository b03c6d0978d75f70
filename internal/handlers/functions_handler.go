package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"returns-service/internal/clients"
	"returns-service/internal/middleware"
	"returns-service/internal/models"
	"returns-service/internal/services"
)

// FunctionsHandler serves the action-style endpoints used by the dashboard and portal
type FunctionsHandler struct {
	stores   *services.StoreService
	returns  *services.ReturnService
	lookup   *services.OrderLookupService
	shipping *services.ShippingService
	oauth    *services.OAuthService
	notifier *services.EmailNotifier
}

// NewFunctionsHandler creates a new FunctionsHandler
func NewFunctionsHandler(
	stores *services.StoreService,
	returns *services.ReturnService,
	lookup *services.OrderLookupService,
	shipping *services.ShippingService,
	oauth *services.OAuthService,
	notifier *services.EmailNotifier,
) *FunctionsHandler {
	return &FunctionsHandler{
		stores:   stores,
		returns:  returns,
		lookup:   lookup,
		shipping: shipping,
		oauth:    oauth,
		notifier: notifier,
	}
}

// NuvemshopRequest is the body of the commerce platform action endpoint
type NuvemshopRequest struct {
	Action        string `json:"action"`
	APIKey        string `json:"apiKey"`
	APIURL        string `json:"apiUrl"`
	StoreSlug     string `json:"storeSlug"`
	OrderNumber   string `json:"orderNumber"`
	CustomerEmail string `json:"customerEmail"`
}

// Nuvemshop dispatches validate, get-order and list-orders. validate and
// list-orders require a merchant token.
// @Summary Commerce platform actions
// @Tags Functions
// @Accept json
// @Produce json
// @Param request body NuvemshopRequest true "Action request"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /functions/v1/nuvemshop [post]
func (h *FunctionsHandler) Nuvemshop(c *gin.Context) {
	var req NuvemshopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, msgInvalidBody)
		return
	}
	ctx := c.Request.Context()

	// validate and list-orders call a merchant supplied URL, get-order serves the portal
	if (req.Action == "validate" || req.Action == "list-orders") && middleware.GetUserID(c) == "" {
		respondUnauthorized(c)
		return
	}

	switch req.Action {
	case "validate":
		if req.APIKey == "" || req.APIURL == "" {
			respondBadRequest(c, "apiKey e apiUrl são obrigatórios")
			return
		}
		store, err := h.stores.ValidateCredentials(ctx, req.APIKey, req.APIURL)
		if err != nil {
			var upstream *clients.UpstreamError
			if errors.As(err, &upstream) && upstream.StatusCode > 0 {
				respondBadRequest(c, fmt.Sprintf("Credenciais inválidas: %d", upstream.StatusCode))
				return
			}
			respondError(c, err)
			return
		}
		respondOK(c, gin.H{"store": store})

	case "get-order":
		if req.StoreSlug == "" || req.OrderNumber == "" || req.CustomerEmail == "" {
			respondBadRequest(c, "storeSlug, orderNumber e customerEmail são obrigatórios")
			return
		}
		result, err := h.lookup.LookupOrder(ctx, req.StoreSlug, req.OrderNumber, req.CustomerEmail)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, gin.H{
			"order":       result.Order,
			"eligibility": result.Eligibility,
			"settings":    result.Settings,
			"storeId":     result.StoreID,
			"storeName":   result.StoreName,
		})

	case "list-orders":
		if req.APIKey == "" || req.APIURL == "" {
			respondBadRequest(c, "apiKey e apiUrl são obrigatórios")
			return
		}
		orders, err := h.stores.ListOrders(ctx, req.APIKey, req.APIURL)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, gin.H{"orders": orders})

	default:
		respondBadRequest(c, msgInvalidAction)
	}
}

// MelhorEnvioRequest is the body of the shipping action endpoint
type MelhorEnvioRequest struct {
	Action          models.ShippingAction `json:"action"`
	ReturnRequestID string                `json:"returnRequestId"`
	ServiceID       int                   `json:"serviceId"`
	UseSandbox      *bool                 `json:"useSandbox"`
}

// MelhorEnvio runs one step of the label workflow for a return request
// @Summary Shipping label actions
// @Tags Functions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body MelhorEnvioRequest true "Action request"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /functions/v1/melhor-envio [post]
func (h *FunctionsHandler) MelhorEnvio(c *gin.Context) {
	if !h.shipping.Configured() {
		respondError(c, services.ErrCarrierNotConfigured)
		return
	}

	var req MelhorEnvioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, msgInvalidBody)
		return
	}

	switch req.Action {
	case models.ShippingActionCalculate, models.ShippingActionCreateLabel,
		models.ShippingActionCheckout, models.ShippingActionTracking:
	default:
		respondBadRequest(c, msgInvalidAction)
		return
	}

	if req.Action == models.ShippingActionCreateLabel && (req.ReturnRequestID == "" || req.ServiceID == 0) {
		respondBadRequest(c, "returnRequestId e serviceId são obrigatórios")
		return
	}
	if req.ReturnRequestID == "" {
		respondBadRequest(c, "returnRequestId é obrigatório")
		return
	}
	id, err := uuid.Parse(req.ReturnRequestID)
	if err != nil {
		respondError(c, services.ErrReturnRequestNotFound)
		return
	}

	ctx := c.Request.Context()
	ownerID := middleware.GetUserID(c)

	switch req.Action {
	case models.ShippingActionCalculate:
		quotes, err := h.shipping.Calculate(ctx, ownerID, id, req.UseSandbox)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, gin.H{"quotes": quotes})

	case models.ShippingActionCreateLabel:
		reservation, err := h.shipping.CreateLabel(ctx, ownerID, id, req.ServiceID, req.UseSandbox)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, gin.H{"shippingId": reservation.ShippingID, "data": reservation.Data})

	case models.ShippingActionCheckout:
		purchase, err := h.shipping.Checkout(ctx, ownerID, id, req.UseSandbox)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, gin.H{
			"labelUrl":     purchase.LabelURL,
			"trackingCode": purchase.TrackingCode,
			"shippingCost": purchase.ShippingCost,
			"checkoutData": purchase.CheckoutData,
		})

	case models.ShippingActionTracking:
		snapshot, err := h.shipping.Tracking(ctx, ownerID, id, req.UseSandbox)
		if errors.Is(err, services.ErrMissingShipment) {
			respondBadRequest(c, msgShipmentNotFound)
			return
		}
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, gin.H{
			"tracking":     snapshot.Tracking,
			"trackingCode": snapshot.TrackingCode,
			"labelUrl":     snapshot.LabelURL,
		})
	}
}

// OAuthRequest is the body of the OAuth action endpoint
type OAuthRequest struct {
	Action    string `json:"action"`
	UserID    string `json:"userId"`
	StoreName string `json:"storeName"`
	Code      string `json:"code"`
	State     string `json:"state"`
}

// NuvemshopOAuth generates install URLs and exchanges authorization codes
// @Summary Commerce platform OAuth actions
// @Tags Functions
// @Accept json
// @Produce json
// @Param request body OAuthRequest true "Action request"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Router /functions/v1/nuvemshop-oauth [post]
func (h *FunctionsHandler) NuvemshopOAuth(c *gin.Context) {
	var req OAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, msgInvalidBody)
		return
	}

	switch req.Action {
	case "get-install-url":
		userID := middleware.GetUserID(c)
		if userID == "" {
			userID = req.UserID
		}
		if userID == "" {
			respondBadRequest(c, "userId é obrigatório")
			return
		}
		installURL, err := h.oauth.GetInstallURL(userID, req.StoreName)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, gin.H{"installUrl": installURL})

	case "exchange-token":
		if req.Code == "" || req.State == "" {
			respondBadRequest(c, "Estado inválido")
			return
		}
		result, err := h.oauth.ExchangeToken(c.Request.Context(), req.Code, req.State)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, gin.H{
			"storeId":   result.StoreID,
			"storeName": result.StoreName,
			"updated":   result.Updated,
		})

	default:
		respondBadRequest(c, msgInvalidAction)
	}
}

var oauthCallbackPage = template.Must(template.New("oauth-callback").Parse(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <title>Conectando loja...</title>
    <style>
      body { font-family: system-ui, sans-serif; display: flex; align-items: center; justify-content: center; height: 100vh; margin: 0; background: #0f172a; color: white; }
      .container { text-align: center; padding: 2rem; }
      .spinner { width: 40px; height: 40px; border: 3px solid rgba(255,255,255,0.3); border-top-color: #3b82f6; border-radius: 50%; animation: spin 1s linear infinite; margin: 0 auto 1rem; }
      @keyframes spin { to { transform: rotate(360deg); } }
    </style>
  </head>
  <body>
    <div class="container" id="content">
      <div class="spinner"></div>
      <h2>Conectando sua loja...</h2>
      <p>Por favor, aguarde.</p>
    </div>
    <script>
      const code = {{.Code}};
      const state = {{.State}};
      if (window.opener) {
        window.opener.postMessage({ type: 'nuvemshop-oauth-callback', code: code, state: state }, '*');
      }
      setTimeout(function () {
        document.getElementById('content').innerHTML = '<h2>Loja conectada!</h2><p>Você pode fechar esta janela.</p>';
        setTimeout(function () { window.close(); }, 2000);
      }, 1000);
    </script>
  </body>
</html>`))

const oauthErrorPage = `<html>
  <head><meta charset="utf-8"><title>Erro</title></head>
  <body>
    <h1>Erro na autenticação</h1>
    <p>Parâmetros inválidos. Por favor, tente novamente.</p>
    <script>setTimeout(function () { window.close(); }, 3000);</script>
  </body>
</html>`

// NuvemshopOAuthCallback renders the popup page that hands code and state to the opener
// @Summary OAuth callback page
// @Tags Functions
// @Produce html
// @Param code query string true "Authorization code"
// @Param state query string true "Signed state"
// @Success 200 {string} string "HTML page"
// @Router /functions/v1/nuvemshop-oauth [get]
func (h *FunctionsHandler) NuvemshopOAuthCallback(c *gin.Context) {
	code := strings.TrimSpace(c.Query("code"))
	state := strings.TrimSpace(c.Query("state"))

	c.Header("Content-Type", "text/html; charset=utf-8")
	if code == "" || state == "" {
		c.String(http.StatusOK, oauthErrorPage)
		return
	}

	c.Status(http.StatusOK)
	if err := oauthCallbackPage.Execute(c.Writer, gin.H{"Code": code, "State": state}); err != nil {
		_ = c.Error(err)
	}
}

// SendReturnNotificationRequest is the body of the notification endpoint
type SendReturnNotificationRequest struct {
	ReturnRequestID string `json:"returnRequestId" binding:"required"`
}

// SendReturnNotification sends the status email of a request owned by the caller
// synchronously. Recipient and template fields come from the stored request.
// @Summary Send return status email
// @Tags Functions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SendReturnNotificationRequest true "Notification"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /functions/v1/send-return-notification [post]
func (h *FunctionsHandler) SendReturnNotification(c *gin.Context) {
	var req SendReturnNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "returnRequestId é obrigatório")
		return
	}
	id, err := uuid.Parse(req.ReturnRequestID)
	if err != nil {
		respondError(c, services.ErrReturnRequestNotFound)
		return
	}

	notification, err := h.returns.NotificationFor(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !models.IsNotifiableReturnStatus(notification.Status) {
		respondBadRequest(c, msgInvalidStatus)
		return
	}

	response, err := h.notifier.Send(c.Request.Context(), *notification)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", response)
}
