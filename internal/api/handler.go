package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"frameguru/internal/chat"
	"frameguru/internal/models"
	"frameguru/internal/notify"
	"frameguru/internal/pricing"
	"frameguru/internal/service"
	"frameguru/internal/store"
	"frameguru/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	orderService    *service.OrderService
	catalogService  *service.CatalogService
	customerService *service.CustomerService
	statusQuery     *service.StatusQueryService
	chatService     *chat.Service
	dispatcher      *notify.Dispatcher
}

// NewHandler creates a new HTTP handler
func NewHandler(
	orderService *service.OrderService,
	catalogService *service.CatalogService,
	customerService *service.CustomerService,
	statusQuery *service.StatusQueryService,
	chatService *chat.Service,
	dispatcher *notify.Dispatcher,
) *Handler {
	return &Handler{
		orderService:    orderService,
		catalogService:  catalogService,
		customerService: customerService,
		statusQuery:     statusQuery,
		chatService:     chatService,
		dispatcher:      dispatcher,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)
		v1.POST("/products", h.createProduct)
		v1.PUT("/products/:id", h.updateProduct)
		v1.DELETE("/products/:id", h.deactivateProduct)
		v1.POST("/products/seed", h.seedCatalog)

		v1.GET("/framing-tiers", h.listFramingTiers)
		v1.POST("/quotes", h.calculateQuote)

		v1.POST("/customers", h.createCustomer)
		v1.GET("/customers/:id", h.getCustomer)
		v1.PUT("/customers/:id", h.updateCustomer)
		v1.GET("/customers/:id/orders", h.getCustomerOrders)

		v1.POST("/orders", h.createOrder)
		v1.GET("/orders/:id", h.getOrder)
		v1.POST("/orders/:id/status", h.advanceOrderStatus)
		v1.GET("/orders/:id/notifications", h.getOrderNotifications)
		v1.GET("/track/:orderNumber", h.trackOrder)

		v1.POST("/chat/message", h.chatMessage)
		v1.GET("/chat/history/:sessionID", h.chatHistory)
		v1.POST("/chat/webhook", h.chatWebhook)

		v1.POST("/notifications/test", h.sendTestNotification)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// --- catalog ---

func (h *Handler) listProducts(c *gin.Context) {
	filter := store.ProductFilter{
		Category:  c.Query("category"),
		FrameType: c.Query("frame_type"),
	}

	products, err := h.catalogService.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

func (h *Handler) getProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *Handler) createProduct(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	if err := h.catalogService.CreateProduct(c.Request.Context(), &product); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

func (h *Handler) updateProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	product.ID = id

	if err := h.catalogService.UpdateProduct(c.Request.Context(), &product); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *Handler) deactivateProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.catalogService.DeactivateProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}

func (h *Handler) seedCatalog(c *gin.Context) {
	if err := h.catalogService.SeedCatalog(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "seeded"})
}

func (h *Handler) listFramingTiers(c *gin.Context) {
	tiers, err := h.catalogService.ListFramingTiers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"framing_tiers": tiers})
}

func (h *Handler) calculateQuote(c *gin.Context) {
	var req pricing.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	price, err := h.catalogService.Quote(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tier":     req.Tier,
		"price":    price,
		"currency": "USD",
	})
}

// --- customers ---

func (h *Handler) createCustomer(c *gin.Context) {
	var customer models.Customer
	if err := c.ShouldBindJSON(&customer); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	if customer.Email == "" || customer.FirstName == "" {
		badRequest(c, "email and first_name are required", nil)
		return
	}

	if err := h.customerService.CreateCustomer(c.Request.Context(), &customer); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, customer)
}

func (h *Handler) getCustomer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	customer, err := h.customerService.GetCustomer(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, customer)
}

func (h *Handler) updateCustomer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var customer models.Customer
	if err := c.ShouldBindJSON(&customer); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	customer.ID = id

	if err := h.customerService.UpdateCustomer(c.Request.Context(), &customer); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, customer)
}

func (h *Handler) getCustomerOrders(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	orders, err := h.orderService.GetCustomerOrders(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

// --- orders ---

func (h *Handler) createOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *Handler) getOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *Handler) advanceOrderStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req service.AdvanceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	order, err := h.orderService.AdvanceStatus(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *Handler) getOrderNotifications(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	notifications, err := h.orderService.GetOrderNotifications(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications, "count": len(notifications)})
}

// trackOrder answers status lookups by order number. An unknown number is a
// friendly message, not a 404, because this endpoint backs the chatbot and
// the public tracking page.
func (h *Handler) trackOrder(c *gin.Context) {
	orderNumber := c.Param("orderNumber")

	summary, err := h.statusQuery.Lookup(c.Request.Context(), orderNumber)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// --- chat ---

type chatMessageRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

func (h *Handler) chatMessage(c *gin.Context) {
	var req chatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	resp := h.chatService.ProcessMessage(c.Request.Context(), req.SessionID, req.Message)
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) chatHistory(c *gin.Context) {
	sessionID := c.Param("sessionID")

	history, err := h.chatService.History(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "messages": history})
}

// chatWebhook serves the dialog service's fulfillment callback. The request
// and response shapes follow its webhook contract, which is why they differ
// from the rest of the API.
type chatWebhookRequest struct {
	QueryResult struct {
		Intent struct {
			DisplayName string `json:"displayName"`
		} `json:"intent"`
		Parameters map[string]string `json:"parameters"`
	} `json:"queryResult"`
}

func (h *Handler) chatWebhook(c *gin.Context) {
	var req chatWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid webhook payload", err)
		return
	}

	text := "I'm not sure how to help with that."
	if req.QueryResult.Intent.DisplayName == "order_status" {
		text = h.chatService.FulfillOrderStatus(c.Request.Context(), req.QueryResult.Parameters["order_number"])
	}

	c.JSON(http.StatusOK, gin.H{"fulfillmentText": text})
}

// --- notifications ---

type testNotificationRequest struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

func (h *Handler) sendTestNotification(c *gin.Context) {
	var req testNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	if req.Email == "" && req.Phone == "" {
		badRequest(c, "email or phone is required", nil)
		return
	}

	results := h.dispatcher.SendTest(c.Request.Context(), req.Email, req.Phone)
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// --- helpers ---

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

func badRequest(c *gin.Context, message string, err error) {
	body := gin.H{"error": message}
	if err != nil {
		body["details"] = err.Error()
	}
	c.JSON(http.StatusBadRequest, body)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, service.ErrDuplicateEmail):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrMissingActor),
		errors.Is(err, models.ErrUnknownStatus),
		errors.Is(err, pricing.ErrInvalidTier),
		errors.Is(err, pricing.ErrInvalidDimensions),
		errors.Is(err, service.ErrUnknownFeature),
		errors.Is(err, service.ErrInvalidOrderItem):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"details": err.Error(),
		})
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
