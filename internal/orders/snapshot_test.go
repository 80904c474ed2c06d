package orders

import (
	"errors"
	"testing"
	"time"
)

func publishedLine(skuID int64, price int64, qty, stock int32) CartLine {
	pub := time.Now().Add(-time.Hour)
	return CartLine{
		CartItemID:    skuID,
		Quantity:      qty,
		SKUID:         skuID,
		SKUValue:      "M",
		SKUPriceCents: price,
		Stock:         stock,
		ProductID:     1,
		ProductName:   "Kaos Polos",
		PublishedAt:   &pub,
	}
}

func TestBuildSnapshots(t *testing.T) {
	now := time.Now()
	lines := []CartLine{
		publishedLine(1, 15000, 2, 10),
		publishedLine(2, 9900, 1, 3),
	}

	items, total, err := BuildSnapshots(lines, now)
	if err != nil {
		t.Fatalf("BuildSnapshots: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if want := int64(2*15000 + 9900); total != want {
		t.Errorf("total = %d, want %d", total, want)
	}
	if items[0].SKUPriceCents != 15000 || items[0].Quantity != 2 {
		t.Errorf("snapshot tidak membawa harga/qty: %+v", items[0])
	}
}

func TestBuildSnapshotsOutOfStock(t *testing.T) {
	lines := []CartLine{
		publishedLine(1, 15000, 2, 10),
		publishedLine(2, 9900, 5, 3),
	}
	items, _, err := BuildSnapshots(lines, time.Now())
	if !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("err = %v, want ErrOutOfStock", err)
	}
	if items != nil {
		t.Errorf("tidak boleh ada partial result, got %d items", len(items))
	}
}

func TestBuildSnapshotsProductGone(t *testing.T) {
	now := time.Now()
	deleted := publishedLine(1, 15000, 1, 10)
	del := now.Add(-time.Minute)
	deleted.DeletedAt = &del

	unpublished := publishedLine(2, 9900, 1, 10)
	unpublished.PublishedAt = nil

	future := publishedLine(3, 9900, 1, 10)
	fut := now.Add(time.Hour)
	future.PublishedAt = &fut

	for _, ln := range []CartLine{deleted, unpublished, future} {
		if _, _, err := BuildSnapshots([]CartLine{ln}, now); !errors.Is(err, ErrProductNotFound) {
			t.Errorf("line sku=%d: err = %v, want ErrProductNotFound", ln.SKUID, err)
		}
	}
}

func TestSnapshotTotalCents(t *testing.T) {
	items := []ItemSnapshot{
		{SKUPriceCents: 15000, Quantity: 2},
		{SKUPriceCents: 9900, Quantity: 3},
	}
	if got, want := SnapshotTotalCents(items), int64(2*15000+3*9900); got != want {
		t.Errorf("SnapshotTotalCents = %d, want %d", got, want)
	}
	if got := SnapshotTotalCents(nil); got != 0 {
		t.Errorf("SnapshotTotalCents(nil) = %d, want 0", got)
	}
}
