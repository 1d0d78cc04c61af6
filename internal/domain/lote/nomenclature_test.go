package lote_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/donaciones-api/internal/domain"
	"github.com/jhoicas/donaciones-api/internal/domain/lote"
)

func TestValidateCode_Validos(t *testing.T) {
	for _, c := range []string{"LOT-20250101-001", "LOT-20241231-999", "LOT-20240229-000"} {
		assert.NoError(t, lote.ValidateCode(c), c)
	}
}

func TestValidateCode_Invalidos(t *testing.T) {
	casos := []string{
		"LOTE-2025-01",
		"LOT-20250101-1",
		"LOT-2025010-001",
		"lot-20250101-001",
		"LOT-20250101-0001",
		"LOT_20250101_001",
		" LOT-20250101-001",
		"LOT-20250231-001", // 31 de febrero
		"LOT-20251301-001",
		"",
	}
	for _, c := range casos {
		err := lote.ValidateCode(c)
		require.Error(t, err, c)
		assert.ErrorIs(t, err, domain.ErrValidation, c)
	}
}

func TestSuggestCode_FormatoYRango(t *testing.T) {
	fecha := time.Date(2025, 3, 7, 15, 0, 0, 0, time.UTC)

	code, err := lote.SuggestCode(fecha, 7)
	require.NoError(t, err)
	assert.Equal(t, "LOT-20250307-007", code)
	assert.NoError(t, lote.ValidateCode(code), "la sugerencia debe pasar la validación")

	code, err = lote.SuggestCode(fecha, 999)
	require.NoError(t, err)
	assert.Equal(t, "LOT-20250307-999", code)

	for _, seq := range []int{0, -1, 1000} {
		_, err := lote.SuggestCode(fecha, seq)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
}

func TestSuggestCode_Determinista(t *testing.T) {
	fecha := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	a, _ := lote.SuggestCode(fecha, 12)
	b, _ := lote.SuggestCode(fecha, 12)
	assert.Equal(t, a, b)
}

func TestValidateDates(t *testing.T) {
	fab := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.NoError(t, lote.ValidateDates(fab, fab.AddDate(1, 0, 0)))
	assert.ErrorIs(t, lote.ValidateDates(fab, fab), domain.ErrValidation)
	assert.ErrorIs(t, lote.ValidateDates(fab, fab.AddDate(0, 0, -1)), domain.ErrValidation)
	assert.ErrorIs(t, lote.ValidateDates(time.Time{}, fab), domain.ErrValidation)
}
