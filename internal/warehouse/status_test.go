package warehouse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatusLabels(t *testing.T) {
	cases := map[string]Status{
		"в процессе": StatusPending,
		"отправлен":  StatusShipped,
		"доставлен":  StatusDelivered,
		"отменен":    StatusCancelled,

		// case-insensitive + lipatan ё->е
		"отменён":    StatusCancelled,
		"ОтМеНЁн":    StatusCancelled,
		"ОТМЕНЕН":    StatusCancelled,
		"ДОСТАВЛЕН":  StatusDelivered,
		"В Процессе": StatusPending,

		// nama kanonik diterima balik sebagai input
		"pending":   StatusPending,
		"shipped":   StatusShipped,
		"delivered": StatusDelivered,
		"cancelled": StatusCancelled,
		"CANCELLED": StatusCancelled,
	}
	for label, want := range cases {
		got, err := ParseStatus(label)
		require.NoError(t, err, "label %q", label)
		assert.Equal(t, want, got, "label %q", label)
	}
}

func TestParseStatusUnknown(t *testing.T) {
	for _, label := range []string{"", "unknown", "в пути", "canceled"} {
		_, err := ParseStatus(label)
		var unknown *UnknownStatusError
		require.ErrorAs(t, err, &unknown, "label %q", label)
		assert.Equal(t, label, unknown.Label)
	}
}

func TestCanTransition(t *testing.T) {
	all := []Status{StatusPending, StatusShipped, StatusDelivered, StatusCancelled}
	for _, from := range all {
		for _, to := range all {
			want := from != StatusCancelled
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}
