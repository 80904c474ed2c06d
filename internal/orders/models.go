package orders

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Receiver struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Email   string `json:"email,omitempty"`
	Note    string `json:"note,omitempty"`
}

type Order struct {
	ID        uuid.UUID `json:"id"`
	UserID    int64     `json:"userId"`
	Status    Status    `json:"status"`
	Receiver  Receiver  `json:"receiver"`
	PaymentID int64     `json:"paymentId"`
	Items     []ItemSnapshot `json:"items,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ItemSnapshot adalah salinan denormalisasi product/SKU pada saat checkout.
// Setelah dibuat tidak pernah di-update; edit katalog belakangan tidak
// mengubah order lama.
type ItemSnapshot struct {
	ID                 int64           `json:"id"`
	OrderID            uuid.UUID       `json:"orderId"`
	ProductName        string          `json:"productName"`
	SKUID              int64           `json:"skuId"`
	SKUValue           string          `json:"skuValue"`
	SKUPriceCents      int64           `json:"skuPrice"`
	Quantity           int32           `json:"quantity"`
	Image              string          `json:"image,omitempty"`
	ProductTranslation json.RawMessage `json:"productTranslation,omitempty"`
}

type Payment struct {
	ID        int64         `json:"id"`
	Status    PaymentStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// PaymentTransaction: satu baris per panggilan webhook bank, PK = id transaksi
// milik gateway. Keberadaan baris = idempotency guard.
type PaymentTransaction struct {
	ID                  int64     `json:"id"`
	Gateway             string    `json:"gateway"`
	TransactionDate     time.Time `json:"transactionDate"`
	AccountNumber       *string   `json:"accountNumber"`
	Code                *string   `json:"code"`
	Content             *string   `json:"content"`
	TransferType        string    `json:"transferType"`
	TransferAmountCents int64     `json:"transferAmount"`
	AccumulatedCents    int64     `json:"accumulated"`
	SubAccount          *string   `json:"subAccount"`
	ReferenceCode       *string   `json:"referenceCode"`
	Description         string    `json:"description"`
	PaymentID           int64     `json:"paymentId"`
	CreatedAt           time.Time `json:"createdAt"`
}

// Total tagihan dihitung dari snapshot, bukan harga SKU live.
func SnapshotTotalCents(items []ItemSnapshot) int64 {
	var total int64
	for _, it := range items {
		total += it.SKUPriceCents * int64(it.Quantity)
	}
	return total
}
