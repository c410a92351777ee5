package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SimulateC2BRequest asks the mock gateway to emit a customer-to-business
// payment confirmation, the way Daraja does after a till or paybill payment.
type SimulateC2BRequest struct {
	OwnerID       string  `json:"owner_id" binding:"required"`
	MSISDN        string  `json:"msisdn" binding:"required"`
	Amount        float64 `json:"amount" binding:"required"`
	BillRefNumber string  `json:"bill_ref_number"`
}

// C2BConfirmation mirrors the confirmation payload Daraja delivers to a
// registered confirmation URL.
type C2BConfirmation struct {
	TransactionType   string `json:"TransactionType"`
	TransID           string `json:"TransID"`
	TransTime         string `json:"TransTime"`
	TransAmount       string `json:"TransAmount"`
	BusinessShortCode string `json:"BusinessShortCode"`
	BillRefNumber     string `json:"BillRefNumber"`
	MSISDN            string `json:"MSISDN"`
	FirstName         string `json:"FirstName"`
}

type SimulateC2BResponse struct {
	TransID     string    `json:"trans_id"`
	Delivered   bool      `json:"delivered"`
	ErrorMsg    string    `json:"error_msg,omitempty"`
	ProcessedAt time.Time `json:"processed_at"`
}

type HealthResponse struct {
	Status       string    `json:"status"`
	GatewayID    string    `json:"gateway_id"`
	Timestamp    time.Time `json:"timestamp"`
	DeliveryRate float64   `json:"delivery_rate"`
}

// MockGateway simulates the Safaricom Daraja C2B flow: it invents receipt
// numbers and pushes confirmations at a configurable reliability.
type MockGateway struct {
	confirmationURL string
	shortCode       string
	deliveryRate    float64
	minDelay        time.Duration
	maxDelay        time.Duration
	gatewayID       string
	client          *http.Client
	rng             *rand.Rand
}

func NewMockGateway(confirmationURL string, deliveryRate float64, minDelay, maxDelay time.Duration) *MockGateway {
	return &MockGateway{
		confirmationURL: confirmationURL,
		shortCode:       "600986",
		deliveryRate:    deliveryRate,
		minDelay:        minDelay,
		maxDelay:        maxDelay,
		gatewayID:       "MOCK_DARAJA_" + uuid.New().String()[:8],
		client:          &http.Client{Timeout: 10 * time.Second},
		rng:             rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// receiptNumber invents an mpesa-looking receipt like "SI79KWT3QA".
func (m *MockGateway) receiptNumber() string {
	const letters = "ABCDEFGHJKLMNPQRSTUVWXYZ123456789"
	b := make([]byte, 8)
	for i := range b {
		b[i] = letters[m.rng.Intn(len(letters))]
	}
	return "S" + string(letters[m.rng.Intn(26)]) + string(b)
}

func (m *MockGateway) simulatePayment(req *SimulateC2BRequest) *SimulateC2BResponse {
	delay := m.randomDelay()
	time.Sleep(delay)

	confirmation := C2BConfirmation{
		TransactionType:   "Pay Bill",
		TransID:           m.receiptNumber(),
		TransTime:         time.Now().Format("20060102150405"),
		TransAmount:       fmt.Sprintf("%.2f", req.Amount),
		BusinessShortCode: m.shortCode,
		BillRefNumber:     req.BillRefNumber,
		MSISDN:            req.MSISDN,
		FirstName:         "TEST",
	}

	response := &SimulateC2BResponse{
		TransID:     confirmation.TransID,
		ProcessedAt: time.Now(),
	}

	if !m.shouldSucceed() {
		response.ErrorMsg = "confirmation dropped by gateway"
		log.Warn().
			Str("trans_id", confirmation.TransID).
			Str("msisdn", req.MSISDN).
			Msg("Confirmation dropped, reconciler will see it on statement import")
		return response
	}

	url := strings.ReplaceAll(m.confirmationURL, "{owner_id}", req.OwnerID)
	body, _ := json.Marshal(confirmation)
	resp, err := m.client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		response.ErrorMsg = err.Error()
		log.Error().Err(err).Str("trans_id", confirmation.TransID).Msg("Confirmation delivery failed")
		return response
	}
	defer resp.Body.Close()

	response.Delivered = resp.StatusCode == http.StatusOK
	log.Info().
		Str("trans_id", confirmation.TransID).
		Str("msisdn", req.MSISDN).
		Int("status", resp.StatusCode).
		Dur("delay", delay).
		Msg("Confirmation delivered")

	return response
}

func (m *MockGateway) randomDelay() time.Duration {
	delta := m.maxDelay - m.minDelay
	if delta <= 0 {
		return m.minDelay
	}
	return m.minDelay + time.Duration(m.rng.Int63n(int64(delta)))
}

func (m *MockGateway) shouldSucceed() bool {
	return m.rng.Float64() < m.deliveryRate
}

// Handler struct holds the mock gateway and routes
type Handler struct {
	gateway *MockGateway
}

func NewHandler(gateway *MockGateway) *Handler {
	return &Handler{gateway: gateway}
}

func (h *Handler) SimulateC2B(c *gin.Context) {
	var req SimulateC2BRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	log.Info().
		Str("owner_id", req.OwnerID).
		Str("msisdn", req.MSISDN).
		Float64("amount", req.Amount).
		Msg("Received C2B simulation request")

	response := h.gateway.simulatePayment(&req)

	statusCode := http.StatusOK
	if !response.Delivered {
		statusCode = http.StatusAccepted
	}
	c.JSON(statusCode, response)
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:       "healthy",
		GatewayID:    h.gateway.gatewayID,
		Timestamp:    time.Now(),
		DeliveryRate: h.gateway.deliveryRate,
	})
}

// UpdateConfig allows changing gateway behaviour at runtime
func (h *Handler) UpdateConfig(c *gin.Context) {
	var config struct {
		DeliveryRate *float64 `json:"delivery_rate"`
	}

	if err := c.ShouldBindJSON(&config); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	if config.DeliveryRate != nil {
		if *config.DeliveryRate >= 0 && *config.DeliveryRate <= 1.0 {
			h.gateway.deliveryRate = *config.DeliveryRate
			log.Info().Float64("rate", *config.DeliveryRate).Msg("Updated delivery rate")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Configuration updated",
		"delivery_rate": h.gateway.deliveryRate,
	})
}

// SetupRouter configures all routes
func SetupRouter(handler *Handler) *gin.Engine {
	router := gin.Default()

	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Msg("Request processed")
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/c2b/simulate", handler.SimulateC2B)
		v1.GET("/health", handler.HealthCheck)
		v1.PUT("/config", handler.UpdateConfig)
	}

	router.GET("/health", handler.HealthCheck)

	return router
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	confirmationURL := getEnv("CONFIRMATION_URL", "http://localhost:8080/api/v1/webhooks/c2b/{owner_id}")
	listenAddr := getEnv("LISTEN_ADDR", ":8090")

	gateway := NewMockGateway(confirmationURL, 0.95, 50*time.Millisecond, 500*time.Millisecond)
	handler := NewHandler(gateway)
	router := SetupRouter(handler)

	srv := &http.Server{
		Addr:    listenAddr,
		Handler: router,
	}

	go func() {
		log.Info().
			Str("addr", listenAddr).
			Str("confirmation_url", confirmationURL).
			Str("gateway_id", gateway.gatewayID).
			Msg("Mock Daraja gateway listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown")
	}
	log.Info().Msg("Mock Daraja gateway stopped")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
