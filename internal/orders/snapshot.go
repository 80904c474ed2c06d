package orders

import (
	"encoding/json"
	"time"
)

// CartLine adalah baris cart yang sudah di-join dengan SKU + product,
// hasil resolve di dalam transaksi create order.
type CartLine struct {
	CartItemID    int64
	Quantity      int32
	SKUID         int64
	SKUValue      string
	SKUPriceCents int64
	SKUImage      string
	Stock         int32
	ProductID     int64
	ProductName   string
	PublishedAt   *time.Time
	DeletedAt     *time.Time
	Translation   json.RawMessage
}

// BuildSnapshots memvalidasi tiap baris lalu membekukannya jadi ItemSnapshot.
// Product yang soft-deleted atau belum publish -> ErrProductNotFound.
// Stok kurang -> ErrOutOfStock. Tidak ada partial result: error manapun
// membatalkan seluruh order.
func BuildSnapshots(lines []CartLine, now time.Time) ([]ItemSnapshot, int64, error) {
	items := make([]ItemSnapshot, 0, len(lines))
	var total int64
	for _, ln := range lines {
		if ln.DeletedAt != nil || ln.PublishedAt == nil || ln.PublishedAt.After(now) {
			return nil, 0, ErrProductNotFound
		}
		if ln.Stock < ln.Quantity {
			return nil, 0, ErrOutOfStock
		}
		items = append(items, ItemSnapshot{
			ProductName:        ln.ProductName,
			SKUID:              ln.SKUID,
			SKUValue:           ln.SKUValue,
			SKUPriceCents:      ln.SKUPriceCents,
			Quantity:           ln.Quantity,
			Image:              ln.SKUImage,
			ProductTranslation: ln.Translation,
		})
		total += ln.SKUPriceCents * int64(ln.Quantity)
	}
	return items, total, nil
}
