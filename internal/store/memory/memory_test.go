package memory

import (
	"context"
	"errors"
	"testing"

	"finman/internal/core"
	"finman/internal/store"
)

func input(t *testing.T, name, price string) core.TransactionInput {
	t.Helper()
	a, err := core.AmountFromString(price)
	if err != nil {
		t.Fatal(err)
	}
	return core.TransactionInput{Name: name, Price: a, Category: "Food", Time: "2026-08-15"}
}

func TestCreateListUpdateDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.Create(ctx, nil, input(t, "Coffee", "3.50")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	txs, err := s.List(ctx, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(txs) != 1 || txs[0].Name != "Coffee" {
		t.Fatalf("list = %+v", txs)
	}
	id := txs[0].ID

	if err := s.Update(ctx, nil, id, input(t, "Espresso", "4")); err != nil {
		t.Fatalf("Update: %v", err)
	}
	txs, _ = s.List(ctx, nil)
	if txs[0].Name != "Espresso" || txs[0].Price.String() != "4" {
		t.Errorf("after update: %+v", txs[0])
	}

	if err := s.Delete(ctx, nil, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	txs, _ = s.List(ctx, nil)
	if len(txs) != 0 {
		t.Errorf("after delete: %+v", txs)
	}
}

func TestMissingRecordMapsToNotFound(t *testing.T) {
	ctx := context.Background()
	s := New()

	err := s.Update(ctx, nil, "nope", input(t, "X", "1"))
	var apiErr *store.APIError
	if !errors.As(err, &apiErr) || apiErr.Category != store.CategoryNotFound {
		t.Errorf("Update error = %v, want not_found", err)
	}
	err = s.Delete(ctx, nil, "nope")
	if !errors.As(err, &apiErr) || apiErr.Category != store.CategoryNotFound {
		t.Errorf("Delete error = %v, want not_found", err)
	}
}

func TestAuthFlow(t *testing.T) {
	ctx := context.Background()
	s := New()

	res, err := s.Login(ctx, "555", "anything")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if len(res.Cookies) != 1 {
		t.Fatalf("cookies = %v", res.Cookies)
	}

	u, err := s.Me(ctx, store.Session(res.Cookies))
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if u.PhoneNumber != "555" {
		t.Errorf("user = %+v", u)
	}

	if _, err := s.Me(ctx, nil); err == nil {
		t.Error("Me without session should fail")
	}
}

func TestListReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.Seed([]core.Transaction{{Name: "A"}})

	txs, _ := s.List(ctx, nil)
	txs[0].Name = "mutated"
	again, _ := s.List(ctx, nil)
	if again[0].Name != "A" {
		t.Error("List exposed internal state")
	}
}
