package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newAdminHandler(catalog *MockCatalogService, orders *MockOrderService, stats *MockStatsService) *AdminHandler {
	return NewAdminHandler(catalog, orders, stats, zerolog.Nop())
}

func TestAdminHandler_CreateProduct(t *testing.T) {
	productID := uuid.New()

	tests := []struct {
		name           string
		body           string
		mockReturn     *model.Product
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success",
			body:           `{"name":"Walnut Desk","description":"Solid walnut work desk","price":250000,"stock":5}`,
			mockReturn:     &model.Product{ID: productID, Name: "Walnut Desk", Price: 250000, Stock: 5, Active: true},
			expectedStatus: http.StatusCreated,
			expectService:  true,
		},
		{
			name:           "Validation failure",
			body:           `{"name":"","price":-1}`,
			mockError:      model.NewInvalidInputError("Product name is required"),
			expectedStatus: http.StatusBadRequest,
			expectService:  true,
		},
		{
			name:           "Invalid JSON body",
			body:           `{"name":`,
			expectedStatus: http.StatusBadRequest,
			expectService:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := new(MockCatalogService)
			handler := newAdminHandler(catalog, new(MockOrderService), new(MockStatsService))

			if tt.expectService {
				catalog.On("Create", mock.Anything, mock.AnythingOfType("*model.CreateProductRequest")).
					Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.CreateProduct(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			catalog.AssertExpectations(t)
		})
	}
}

func TestAdminHandler_UpdateProduct(t *testing.T) {
	productID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		catalog := new(MockCatalogService)
		handler := newAdminHandler(catalog, new(MockOrderService), new(MockStatsService))

		updated := &model.Product{ID: productID, Name: "Walnut Desk", Price: 275000, Active: true}
		catalog.On("Update", mock.Anything, productID, mock.AnythingOfType("*model.UpdateProductRequest")).
			Return(updated, nil)

		req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/products/"+productID.String(), strings.NewReader(`{"price":275000}`))
		req.SetPathValue("id", productID.String())
		w := httptest.NewRecorder()

		handler.UpdateProduct(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		catalog.AssertExpectations(t)
	})

	t.Run("Invalid product ID", func(t *testing.T) {
		catalog := new(MockCatalogService)
		handler := newAdminHandler(catalog, new(MockOrderService), new(MockStatsService))

		req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/products/bogus", strings.NewReader(`{"price":275000}`))
		req.SetPathValue("id", "bogus")
		w := httptest.NewRecorder()

		handler.UpdateProduct(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		catalog.AssertNotCalled(t, "Update")
	})

	t.Run("Product not found", func(t *testing.T) {
		catalog := new(MockCatalogService)
		handler := newAdminHandler(catalog, new(MockOrderService), new(MockStatsService))

		catalog.On("Update", mock.Anything, productID, mock.AnythingOfType("*model.UpdateProductRequest")).
			Return(nil, model.ErrProductNotFound)

		req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/products/"+productID.String(), strings.NewReader(`{"price":275000}`))
		req.SetPathValue("id", productID.String())
		w := httptest.NewRecorder()

		handler.UpdateProduct(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		catalog.AssertExpectations(t)
	})
}

func TestAdminHandler_LowStock(t *testing.T) {
	catalog := new(MockCatalogService)
	handler := newAdminHandler(catalog, new(MockOrderService), new(MockStatsService))

	low := []model.Product{{ID: uuid.New(), Name: "Oak Shelf", Stock: 2, Active: true}}
	catalog.On("LowStock", mock.Anything, 5, 50).Return(low, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/products/low-stock?threshold=5&limit=50", nil)
	w := httptest.NewRecorder()

	handler.LowStock(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Oak Shelf")
	catalog.AssertExpectations(t)
}

func TestAdminHandler_ListOrders(t *testing.T) {
	pending := model.OrderStatusPending

	tests := []struct {
		name           string
		queryParams    string
		expectedFilter model.OrderFilter
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success unfiltered",
			queryParams:    "",
			expectedFilter: model.OrderFilter{Limit: 20, Offset: 0},
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Success filtered by status",
			queryParams:    "?status=pending&limit=10",
			expectedFilter: model.OrderFilter{Status: &pending, Limit: 10, Offset: 0},
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Unknown status",
			queryParams:    "?status=returned",
			expectedStatus: http.StatusBadRequest,
			expectService:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := new(MockOrderService)
			handler := newAdminHandler(new(MockCatalogService), orders, new(MockStatsService))

			if tt.expectService {
				orders.On("List", mock.Anything, tt.expectedFilter).
					Return([]model.Order{{ID: uuid.New(), Status: model.OrderStatusPending}}, nil)
			}

			req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders"+tt.queryParams, nil)
			w := httptest.NewRecorder()

			handler.ListOrders(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			orders.AssertExpectations(t)
		})
	}
}

func TestAdminHandler_UpdateOrderStatus(t *testing.T) {
	orderID := uuid.New()

	tests := []struct {
		name           string
		body           string
		mockReturn     *model.Order
		mockError      error
		nextStatus     model.OrderStatus
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success",
			body:           `{"status":"processing"}`,
			mockReturn:     &model.Order{ID: orderID, Status: model.OrderStatusProcessing},
			nextStatus:     model.OrderStatusProcessing,
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Illegal transition",
			body:           `{"status":"shipped"}`,
			mockError:      model.NewInvalidTransitionError(model.OrderStatusDelivered, model.OrderStatusShipped),
			nextStatus:     model.OrderStatusShipped,
			expectedStatus: http.StatusConflict,
			expectService:  true,
		},
		{
			name:           "Unknown status",
			body:           `{"status":"returned"}`,
			expectedStatus: http.StatusBadRequest,
			expectService:  false,
		},
		{
			name:           "Invalid JSON body",
			body:           `{"status":`,
			expectedStatus: http.StatusBadRequest,
			expectService:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := new(MockOrderService)
			handler := newAdminHandler(new(MockCatalogService), orders, new(MockStatsService))

			if tt.expectService {
				orders.On("UpdateStatus", mock.Anything, orderID, tt.nextStatus).
					Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/orders/"+orderID.String()+"/status", strings.NewReader(tt.body))
			req.SetPathValue("id", orderID.String())
			w := httptest.NewRecorder()

			handler.UpdateOrderStatus(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			orders.AssertExpectations(t)
		})
	}
}

func TestAdminHandler_Dashboard(t *testing.T) {
	t.Run("Defaults to week", func(t *testing.T) {
		stats := new(MockStatsService)
		handler := newAdminHandler(new(MockCatalogService), new(MockOrderService), stats)

		dashboard := &model.DashboardStats{
			OrderCounts:  map[model.OrderStatus]int{model.OrderStatusPending: 3},
			Revenue:      1000000,
			AverageOrder: 250000,
			Period:       model.PeriodWeek,
		}
		stats.On("Dashboard", mock.Anything, model.PeriodWeek).Return(dashboard, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats/dashboard", nil)
		w := httptest.NewRecorder()

		handler.Dashboard(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"revenue":1000000`)
		stats.AssertExpectations(t)
	})

	t.Run("Invalid period", func(t *testing.T) {
		stats := new(MockStatsService)
		handler := newAdminHandler(new(MockCatalogService), new(MockOrderService), stats)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats/dashboard?period=fortnight", nil)
		w := httptest.NewRecorder()

		handler.Dashboard(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		stats.AssertNotCalled(t, "Dashboard")
	})
}

func TestAdminHandler_Sales(t *testing.T) {
	stats := new(MockStatsService)
	handler := newAdminHandler(new(MockCatalogService), new(MockOrderService), stats)

	stats.On("Sales", mock.Anything, model.PeriodMonth).
		Return([]model.SalesBucket{{OrderCount: 4, Revenue: 1220000}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats/sales?period=month", nil)
	w := httptest.NewRecorder()

	handler.Sales(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"revenue":1220000`)
	stats.AssertExpectations(t)
}
