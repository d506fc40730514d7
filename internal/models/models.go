// AceGrocer - E-Commerce Storefront and Admin Back-Office
// Copyright 2026 AceGrocer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acegrocer/acegrocer

// Package models defines the domain entities shared across the storefront.
package models

import "time"

// Role is the authorization role carried by a session credential.
type Role string

// Roles understood by the storefront.
const (
	RoleCustomer Role = "CUSTOMER"
	RoleAdmin    Role = "ADMIN"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

// Order lifecycle states.
const (
	OrderPending   OrderStatus = "PENDING"
	OrderPaid      OrderStatus = "PAID"
	OrderShipped   OrderStatus = "SHIPPED"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCanceled  OrderStatus = "CANCELED"
)

// Valid reports whether the status is one of the known values.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderPaid, OrderShipped, OrderDelivered, OrderCanceled:
		return true
	}
	return false
}

// User is a registered account. PasswordHash never leaves the process.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	EmailLower   string    `json:"-"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Product is a catalog entry. Description, Category and ImageURL are
// optional and render as null when absent.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	PriceCents  int64     `json:"priceCents"`
	SKU         string    `json:"sku"`
	Category    *string   `json:"category"`
	Stock       int64     `json:"stock"`
	ImageURL    *string   `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CartItem is one product line in a user's cart. Product is populated on
// reads that join the catalog.
type CartItem struct {
	UserID    int64    `json:"userId"`
	ProductID int64    `json:"productId"`
	Qty       int64    `json:"qty"`
	Product   *Product `json:"product,omitempty"`
}

// OrderItem is one product line in a placed order, priced at checkout time.
type OrderItem struct {
	OrderID     int64  `json:"orderId"`
	ProductID   int64  `json:"productId"`
	Qty         int64  `json:"qty"`
	PriceCents  int64  `json:"priceCents"`
	ProductName string `json:"productName,omitempty"`
}

// Order is a placed order. UserEmail is populated for admin listings only.
type Order struct {
	ID         int64       `json:"id"`
	UserID     int64       `json:"userId"`
	TotalCents int64       `json:"totalCents"`
	Status     OrderStatus `json:"status"`
	CreatedAt  time.Time   `json:"createdAt"`
	UserEmail  string      `json:"userEmail,omitempty"`
	Items      []OrderItem `json:"items,omitempty"`
}

// Transaction is a payment record for an order. The provider is mocked;
// no real payment gateway is wired.
type Transaction struct {
	ID          int64     `json:"id"`
	OrderID     int64     `json:"orderId"`
	AmountCents int64     `json:"amountCents"`
	Status      string    `json:"status"`
	Provider    string    `json:"provider"`
	CreatedAt   time.Time `json:"createdAt"`
}
