package warehouse

import "strings"

type Status string

const (
	StatusPending   Status = "pending"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// statusLabels: label bebas dari client -> status kanonik.
// Label warisan API lama berbahasa Rusia; nama kanonik juga diterima
// supaya output API bisa dipakai ulang sebagai input.
var statusLabels = map[string]Status{
	"в процессе": StatusPending,
	"отправлен":  StatusShipped,
	"доставлен":  StatusDelivered,
	"отменен":    StatusCancelled, // juga meng-handle "отменён", lihat foldLabel

	"pending":   StatusPending,
	"shipped":   StatusShipped,
	"delivered": StatusDelivered,
	"cancelled": StatusCancelled,
}

// foldLabel: lowercase + lipat "ё" ke "е" sebelum lookup.
func foldLabel(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	return strings.ReplaceAll(s, "ё", "е")
}

func ParseStatus(label string) (Status, error) {
	st, ok := statusLabels[foldLabel(label)]
	if !ok {
		return "", &UnknownStatusError{Label: label}
	}
	return st, nil
}

// CanTransition: semua transisi boleh, kecuali keluar dari cancelled
// (termasuk cancel ulang).
func CanTransition(from, to Status) bool {
	return from != StatusCancelled
}
