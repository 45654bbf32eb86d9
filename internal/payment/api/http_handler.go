package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/apparel-store/internal/order/domain"
	"github.com/ridloal/apparel-store/internal/order/repository"
	orderService "github.com/ridloal/apparel-store/internal/order/service"
	"github.com/ridloal/apparel-store/internal/payment/gateway"
	"github.com/ridloal/apparel-store/internal/payment/service"
	"github.com/ridloal/apparel-store/internal/platform/auth"
	"github.com/ridloal/apparel-store/internal/platform/logger"
)

const maxCallbackBytes = 64 << 10

// PaymentPreparer membuat ulang parameter redirect untuk order Pending.
type PaymentPreparer interface {
	PreparePayment(ctx context.Context, orderID, userID string) (*gateway.PaymentRequest, error)
}

type PaymentHandler struct {
	paymentService service.PaymentService
	preparer       PaymentPreparer
}

func NewPaymentHandler(ps service.PaymentService, preparer PaymentPreparer) *PaymentHandler {
	return &PaymentHandler{paymentService: ps, preparer: preparer}
}

// RegisterRoutes: callback publik (dipanggil bank), redirect butuh login.
func (h *PaymentHandler) RegisterRoutes(router *gin.RouterGroup, authenticate gin.HandlerFunc) {
	paymentRoutes := router.Group("/payments")
	{
		paymentRoutes.POST("/callback", h.Callback)
		paymentRoutes.GET("/:orderId/redirect", authenticate, h.Redirect)
	}
}

// readCallbackFields menerima form-encoded (dari browser via bank) atau JSON.
func readCallbackFields(c *gin.Context) (gateway.Fields, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxCallbackBytes)

	if c.ContentType() == gin.MIMEJSON {
		raw := map[string]interface{}{}
		dec := json.NewDecoder(c.Request.Body)
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		fields := make(gateway.Fields, len(raw))
		for k, v := range raw {
			switch val := v.(type) {
			case nil:
				fields[k] = ""
			case string:
				fields[k] = val
			case json.Number:
				fields[k] = val.String()
			case bool:
				fields[k] = fmt.Sprint(val)
			default:
				return nil, fmt.Errorf("field %q is not a scalar", k)
			}
		}
		return fields, nil
	}

	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		if err := c.Request.ParseMultipartForm(maxCallbackBytes); err != nil {
			return nil, err
		}
	} else if err := c.Request.ParseForm(); err != nil {
		return nil, err
	}
	fields := make(gateway.Fields, len(c.Request.PostForm))
	for k, vals := range c.Request.PostForm {
		if len(vals) > 0 {
			fields[k] = vals[0]
		}
	}
	return fields, nil
}

func wantsJSON(c *gin.Context) bool {
	return c.ContentType() == gin.MIMEJSON || c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON
}

// respond selalu memberi jawaban final ke bank/pembeli: HTML untuk browser, JSON untuk API.
func respond(c *gin.Context, status int, page gateway.ResultPage, paymentStatus domain.PaymentStatus) {
	if wantsJSON(c) {
		body := gin.H{"order_id": page.OrderID, "message": page.Message}
		if paymentStatus != "" {
			body["payment_status"] = paymentStatus
		}
		if status >= http.StatusBadRequest {
			body["error"] = page.Title
		}
		c.JSON(status, body)
		return
	}
	var buf bytes.Buffer
	if err := gateway.RenderResultPage(&buf, page); err != nil {
		logger.Error("Callback: result page render failed", err)
		c.String(status, page.Message)
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

func (h *PaymentHandler) Callback(c *gin.Context) {
	fields, err := readCallbackFields(c)
	if err != nil {
		respond(c, http.StatusBadRequest, gateway.ResultPage{Title: "Invalid callback", Message: "The payment response could not be read."}, "")
		return
	}

	res, err := h.paymentService.HandleCallback(c.Request.Context(), fields)
	switch {
	case err == nil:
		if res.Status == domain.PaymentPaid {
			respond(c, http.StatusOK, gateway.ResultPage{Title: "Payment successful", Message: "Thank you, your order has been paid.", OrderID: res.OrderID}, res.Status)
			return
		}
		respond(c, http.StatusOK, gateway.ResultPage{Title: "Payment failed", Message: "This order could not be paid.", OrderID: res.OrderID}, res.Status)
	case errors.Is(err, service.ErrPaymentDeclined):
		page := gateway.ResultPage{Title: "Payment failed", Message: "Your bank declined the payment."}
		if res != nil {
			page.OrderID = res.OrderID
		}
		respond(c, http.StatusOK, page, domain.PaymentFailed)
	case errors.Is(err, gateway.ErrCallbackAuthentication):
		respond(c, http.StatusBadRequest, gateway.ResultPage{Title: "Payment verification failed", Message: "The payment response could not be verified."}, "")
	case errors.Is(err, repository.ErrOrderNotFound):
		respond(c, http.StatusNotFound, gateway.ResultPage{Title: "Order not found", Message: "No order matches this payment."}, "")
	default:
		logger.Error("Callback: processing failed", err)
		respond(c, http.StatusInternalServerError, gateway.ResultPage{Title: "Payment processing error", Message: "Please contact support."}, "")
	}
}

// Redirect merender form auto-submit ke halaman 3D Secure bank.
func (h *PaymentHandler) Redirect(c *gin.Context) {
	id, _ := auth.GetIdentity(c)

	req, err := h.preparer.PreparePayment(c.Request.Context(), c.Param("orderId"), id.UserID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, orderService.ErrNotAuthorized):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, orderService.ErrOrderNotPayable):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, gateway.ErrMissingOrderField):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Redirect: could not prepare payment", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to prepare payment"})
		}
		return
	}

	var buf bytes.Buffer
	if err := gateway.RenderRedirectForm(&buf, req); err != nil {
		logger.Error("Redirect: form render failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to prepare payment"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
