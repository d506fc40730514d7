// AceGrocer - E-Commerce Storefront and Admin Back-Office
// Copyright 2026 AceGrocer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acegrocer/acegrocer

package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/acegrocer/acegrocer/internal/config"
	"github.com/acegrocer/acegrocer/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(&config.DatabaseConfig{
		Path:      filepath.Join(t.TempDir(), "test.db"),
		MaxMemory: "512MB",
		Threads:   2,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})
	return db
}

func mustCreateUser(t *testing.T, db *DB, email string, role models.Role) *models.User {
	t.Helper()
	user, err := db.CreateUser(context.Background(), email, "Test User", "fake-hash", role)
	if err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", email, err)
	}
	return user
}

func mustCreateProduct(t *testing.T, db *DB, name, sku string, priceCents, stock int64) *models.Product {
	t.Helper()
	product, err := db.CreateProduct(context.Background(), &models.Product{
		Name:       name,
		SKU:        sku,
		PriceCents: priceCents,
		Stock:      stock,
	})
	if err != nil {
		t.Fatalf("CreateProduct(%s) failed: %v", sku, err)
	}
	return product
}

func TestUsers_CreateAndLookup(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := mustCreateUser(t, db, "Alice@Example.com", models.RoleCustomer)
	if user.ID == 0 {
		t.Fatal("CreateUser assigned no ID")
	}
	if user.EmailLower != "alice@example.com" {
		t.Errorf("EmailLower = %q", user.EmailLower)
	}

	// Lookup is case-insensitive.
	got, err := db.GetUserByEmail(ctx, "ALICE@example.COM")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("lookup returned user %d, want %d", got.ID, user.ID)
	}

	// Duplicate email (any casing) conflicts.
	if _, err := db.CreateUser(ctx, "alice@EXAMPLE.com", "Other", "h", models.RoleCustomer); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate email error = %v, want ErrEmailTaken", err)
	}

	if _, err := db.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing user error = %v, want ErrNotFound", err)
	}
}

func TestUsers_UpdateName(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := mustCreateUser(t, db, "bob@example.com", models.RoleCustomer)
	updated, err := db.UpdateUserName(ctx, user.ID, "Robert")
	if err != nil {
		t.Fatalf("UpdateUserName failed: %v", err)
	}
	if updated.Name != "Robert" {
		t.Errorf("Name = %q, want Robert", updated.Name)
	}

	if _, err := db.UpdateUserName(ctx, 99999, "X"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing user error = %v, want ErrNotFound", err)
	}
}

func TestProducts_ListFilters(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	banana := mustCreateProduct(t, db, "Bananas", "BNN-001", 199, 100)
	apple := mustCreateProduct(t, db, "Apples", "APL-001", 299, 100)
	milk, err := db.CreateProduct(ctx, &models.Product{
		Name: "Milk", SKU: "MLK-001", PriceCents: 249, Stock: 50,
		Category: strPtr("Dairy"), Description: strPtr("Fresh dairy milk"),
	})
	if err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}

	all, err := db.ListProducts(ctx, ProductFilter{})
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len(all) = %d, want 3", len(all))
	}

	// Search matches name or description, case-insensitively.
	cases := []struct {
		name   string
		filter ProductFilter
		want   []int64
	}{
		{"search name", ProductFilter{Search: "banan"}, []int64{banana.ID}},
		{"search description", ProductFilter{Search: "DAIRY"}, []int64{milk.ID}},
		{"category", ProductFilter{Category: "Dairy"}, []int64{milk.ID}},
		{"min price", ProductFilter{MinPrice: i64(250)}, []int64{apple.ID}},
		{"max price", ProductFilter{MaxPrice: i64(200)}, []int64{banana.ID}},
		{"price band", ProductFilter{MinPrice: i64(200), MaxPrice: i64(260)}, []int64{milk.ID}},
		{"no match", ProductFilter{Search: "durian"}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := db.ListProducts(ctx, tc.filter)
			if err != nil {
				t.Fatalf("ListProducts failed: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %d products, want %d", len(got), len(tc.want))
			}
			for i, p := range got {
				if p.ID != tc.want[i] {
					t.Errorf("result[%d].ID = %d, want %d", i, p.ID, tc.want[i])
				}
			}
		})
	}
}

func i64(v int64) *int64 { return &v }

func TestProducts_UpdatePartialAndNullClears(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	p, err := db.CreateProduct(ctx, &models.Product{
		Name: "Bread", SKU: "BRD-001", PriceCents: 349, Stock: 40,
		Category: strPtr("Bakery"),
	})
	if err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}

	newPrice := int64(399)
	updated, err := db.UpdateProduct(ctx, p.ID, ProductUpdate{PriceCents: &newPrice})
	if err != nil {
		t.Fatalf("UpdateProduct failed: %v", err)
	}
	if updated.PriceCents != 399 {
		t.Errorf("PriceCents = %d, want 399", updated.PriceCents)
	}
	if updated.Category == nil || *updated.Category != "Bakery" {
		t.Error("untouched category changed")
	}

	// Explicit null clears the optional column.
	var nilStr *string
	updated, err = db.UpdateProduct(ctx, p.ID, ProductUpdate{Category: &nilStr})
	if err != nil {
		t.Fatalf("UpdateProduct failed: %v", err)
	}
	if updated.Category != nil {
		t.Errorf("Category = %v, want nil", *updated.Category)
	}
}

func TestProducts_SKUConflictAndDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	p := mustCreateProduct(t, db, "Eggs", "EGG-001", 499, 30)
	if _, err := db.CreateProduct(ctx, &models.Product{Name: "Eggs 2", SKU: "EGG-001"}); !errors.Is(err, ErrSKUTaken) {
		t.Errorf("duplicate SKU error = %v, want ErrSKUTaken", err)
	}

	if err := db.DeleteProduct(ctx, p.ID); err != nil {
		t.Fatalf("DeleteProduct failed: %v", err)
	}
	if err := db.DeleteProduct(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestCart_AddIncrementsAndPatchSets(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := mustCreateUser(t, db, "cart@example.com", models.RoleCustomer)
	p := mustCreateProduct(t, db, "Bananas", "BNN-001", 199, 100)

	item, err := db.AddCartItem(ctx, user.ID, p.ID, 2)
	if err != nil {
		t.Fatalf("AddCartItem failed: %v", err)
	}
	if item.Qty != 2 {
		t.Errorf("Qty = %d, want 2", item.Qty)
	}

	// Adding again increments the same line.
	item, err = db.AddCartItem(ctx, user.ID, p.ID, 3)
	if err != nil {
		t.Fatalf("AddCartItem failed: %v", err)
	}
	if item.Qty != 5 {
		t.Errorf("Qty after second add = %d, want 5", item.Qty)
	}

	// Patch sets the exact quantity.
	item, err = db.SetCartItemQty(ctx, user.ID, p.ID, 1)
	if err != nil {
		t.Fatalf("SetCartItemQty failed: %v", err)
	}
	if item.Qty != 1 {
		t.Errorf("Qty after set = %d, want 1", item.Qty)
	}

	count, err := db.CartCount(ctx, user.ID)
	if err != nil {
		t.Fatalf("CartCount failed: %v", err)
	}
	if count != 1 {
		t.Errorf("CartCount = %d, want 1", count)
	}

	// Zero quantity removes the line; removing a missing line is fine.
	if _, err := db.SetCartItemQty(ctx, user.ID, p.ID, 0); err != nil {
		t.Fatalf("SetCartItemQty(0) failed: %v", err)
	}
	if _, err := db.SetCartItemQty(ctx, user.ID, p.ID, -1); err != nil {
		t.Fatalf("SetCartItemQty(-1) on empty cart failed: %v", err)
	}

	items, err := db.ListCartItems(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListCartItems failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("cart has %d items after removal, want 0", len(items))
	}
}

func TestCart_AddUnknownProduct(t *testing.T) {
	db := newTestDB(t)
	user := mustCreateUser(t, db, "u@example.com", models.RoleCustomer)

	if _, err := db.AddCartItem(context.Background(), user.ID, 12345, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown product error = %v, want ErrNotFound", err)
	}
}

func TestCheckout_HappyPath(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := mustCreateUser(t, db, "buyer@example.com", models.RoleCustomer)
	banana := mustCreateProduct(t, db, "Bananas", "BNN-001", 199, 10)
	apple := mustCreateProduct(t, db, "Apples", "APL-001", 299, 10)

	if _, err := db.AddCartItem(ctx, user.ID, banana.ID, 3); err != nil {
		t.Fatal(err)
	}
	if _, err := db.AddCartItem(ctx, user.ID, apple.ID, 2); err != nil {
		t.Fatal(err)
	}

	order, err := db.Checkout(ctx, user.ID)
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}
	if order.Status != models.OrderPaid {
		t.Errorf("Status = %s, want PAID", order.Status)
	}
	wantTotal := int64(3*199 + 2*299)
	if order.TotalCents != wantTotal {
		t.Errorf("TotalCents = %d, want %d", order.TotalCents, wantTotal)
	}
	if len(order.Items) != 2 {
		t.Fatalf("order has %d items, want 2", len(order.Items))
	}

	// Stock decremented.
	gotBanana, err := db.GetProduct(ctx, banana.ID)
	if err != nil {
		t.Fatal(err)
	}
	if gotBanana.Stock != 7 {
		t.Errorf("banana stock = %d, want 7", gotBanana.Stock)
	}

	// Cart cleared.
	count, err := db.CartCount(ctx, user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("cart count after checkout = %d, want 0", count)
	}

	// Mock payment recorded.
	tx, err := db.GetTransactionForOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetTransactionForOrder failed: %v", err)
	}
	if tx.Status != "AUTHORIZED" || tx.Provider != "MOCK" {
		t.Errorf("transaction = %+v", tx)
	}
	if tx.AmountCents != wantTotal {
		t.Errorf("AmountCents = %d, want %d", tx.AmountCents, wantTotal)
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	db := newTestDB(t)
	user := mustCreateUser(t, db, "empty@example.com", models.RoleCustomer)

	if _, err := db.Checkout(context.Background(), user.ID); !errors.Is(err, ErrCartEmpty) {
		t.Errorf("empty cart error = %v, want ErrCartEmpty", err)
	}
}

func TestCheckout_InsufficientStockRollsBack(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := mustCreateUser(t, db, "greedy@example.com", models.RoleCustomer)
	p := mustCreateProduct(t, db, "Rare Truffle", "TRF-001", 9999, 2)
	if _, err := db.AddCartItem(ctx, user.ID, p.ID, 5); err != nil {
		t.Fatal(err)
	}

	_, err := db.Checkout(ctx, user.ID)
	var stockErr *StockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("error = %v, want *StockError", err)
	}
	if stockErr.ProductID != p.ID || stockErr.Available != 2 || stockErr.Requested != 5 {
		t.Errorf("StockError = %+v", stockErr)
	}

	// Nothing happened: stock intact, cart intact, no orders.
	got, err := db.GetProduct(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Stock != 2 {
		t.Errorf("stock = %d, want 2", got.Stock)
	}
	count, err := db.CartCount(ctx, user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if count != 5 {
		t.Errorf("cart count = %d, want 5", count)
	}
	orders, err := db.ListOrdersForUser(ctx, user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 0 {
		t.Errorf("found %d orders after failed checkout, want 0", len(orders))
	}
}

func TestOrders_OwnershipAndAdminListing(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	alice := mustCreateUser(t, db, "alice@example.com", models.RoleCustomer)
	bob := mustCreateUser(t, db, "bob@example.com", models.RoleCustomer)
	p := mustCreateProduct(t, db, "Bananas", "BNN-001", 199, 100)

	for _, u := range []*models.User{alice, bob} {
		if _, err := db.AddCartItem(ctx, u.ID, p.ID, 1); err != nil {
			t.Fatal(err)
		}
		if _, err := db.Checkout(ctx, u.ID); err != nil {
			t.Fatal(err)
		}
	}

	aliceOrders, err := db.ListOrdersForUser(ctx, alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(aliceOrders) != 1 {
		t.Fatalf("alice has %d orders, want 1", len(aliceOrders))
	}

	// Bob cannot read alice's order.
	if _, err := db.GetOrderForUser(ctx, bob.ID, aliceOrders[0].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-user order read error = %v, want ErrNotFound", err)
	}

	// The unscoped lookup works regardless of owner.
	if _, err := db.GetOrder(ctx, aliceOrders[0].ID); err != nil {
		t.Errorf("GetOrder failed: %v", err)
	}

	// Admin listing sees both, with emails.
	orders, total, err := db.ListOrdersAdmin(ctx, OrderFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(orders) != 2 {
		t.Fatalf("admin listing total=%d len=%d, want 2/2", total, len(orders))
	}
	for _, o := range orders {
		if o.UserEmail == "" {
			t.Errorf("order %d missing UserEmail", o.ID)
		}
	}

	// Email filter narrows to one; unknown email yields an empty page.
	orders, total, err = db.ListOrdersAdmin(ctx, OrderFilter{Email: "ALICE@example.com"})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || len(orders) != 1 {
		t.Errorf("email filter total=%d len=%d, want 1/1", total, len(orders))
	}
	orders, total, err = db.ListOrdersAdmin(ctx, OrderFilter{Email: "ghost@example.com"})
	if err != nil {
		t.Fatal(err)
	}
	if total != 0 || len(orders) != 0 {
		t.Errorf("unknown email total=%d len=%d, want 0/0", total, len(orders))
	}

	// Pagination.
	orders, total, err = db.ListOrdersAdmin(ctx, OrderFilter{Page: 2, PageSize: 1})
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(orders) != 1 {
		t.Errorf("page 2 total=%d len=%d, want 2/1", total, len(orders))
	}
}

func TestOrders_UpdateStatus(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := mustCreateUser(t, db, "s@example.com", models.RoleCustomer)
	p := mustCreateProduct(t, db, "Bananas", "BNN-001", 199, 100)
	if _, err := db.AddCartItem(ctx, user.ID, p.ID, 1); err != nil {
		t.Fatal(err)
	}
	order, err := db.Checkout(ctx, user.ID)
	if err != nil {
		t.Fatal(err)
	}

	updated, err := db.UpdateOrderStatus(ctx, order.ID, models.OrderShipped)
	if err != nil {
		t.Fatalf("UpdateOrderStatus failed: %v", err)
	}
	if updated.Status != models.OrderShipped {
		t.Errorf("Status = %s, want SHIPPED", updated.Status)
	}

	if _, err := db.UpdateOrderStatus(ctx, 98765, models.OrderCanceled); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing order error = %v, want ErrNotFound", err)
	}
}

func TestSeed_IsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedCfg := &config.SeedConfig{AdminEmail: "admin@example.com", AdminPassword: "ChangeMe123!"}
	if err := db.Seed(ctx, seedCfg); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	if err := db.Seed(ctx, seedCfg); err != nil {
		t.Fatalf("second Seed failed: %v", err)
	}

	admin, err := db.GetUserByEmail(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("admin missing after seed: %v", err)
	}
	if admin.Role != models.RoleAdmin {
		t.Errorf("admin role = %s", admin.Role)
	}

	count, err := db.CountProducts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != int64(len(starterProducts)) {
		t.Errorf("product count = %d, want %d (seed must not duplicate)", count, len(starterProducts))
	}
}
