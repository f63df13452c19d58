package database_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/nutesshop/storefront/internal/models"
)

func deliveryOrder() models.CreateOrderRequest {
	return models.CreateOrderRequest{
		CustomerName:    "Thandi M",
		CustomerEmail:   "thandi@example.com",
		FulfillmentType: "Delivery",
		City:            "Cape Town",
		Delivery: &models.DeliveryAddress{
			City:         "Cape Town",
			Suburb:       "Claremont",
			AddressLine1: "12 Main Rd",
			PostalCode:   "7708",
		},
		Items: []models.OrderItem{
			{ProductSlug: "macadamia", ProductName: "Macadamia Nuts", UnitPriceCents: 12000, Quantity: 2},
			{ProductSlug: "pecan", ProductName: "Pecan Halves", UnitPriceCents: 8900, Quantity: 1},
		},
	}
}

func TestRepository_CreateOrder(t *testing.T) {
	repo, mock := newMockRepository(t)
	req := deliveryOrder()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(sqlmock.AnyArg(), "Thandi M", "thandi@example.com", "Delivery", "Cape Town",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), nil, 32900).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(sqlmock.AnyArg(), "macadamia", "Macadamia Nuts", 12000, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(sqlmock.AnyArg(), "pecan", "Pecan Halves", 8900, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	orderID, err := repo.CreateOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}
	if orderID == uuid.Nil {
		t.Error("CreateOrder() returned nil order id")
	}
	if expErr := mock.ExpectationsWereMet(); expErr != nil {
		t.Errorf("unmet expectations: %v", expErr)
	}
}

func TestRepository_CreateOrder_RollsBackOnItemFailure(t *testing.T) {
	repo, mock := newMockRepository(t)
	req := deliveryOrder()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	if _, err := repo.CreateOrder(context.Background(), req); err == nil {
		t.Fatal("CreateOrder() error = nil, want failure from item insert")
	}
	if expErr := mock.ExpectationsWereMet(); expErr != nil {
		t.Errorf("unmet expectations: %v", expErr)
	}
}
