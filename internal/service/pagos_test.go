package service

import (
	"testing"

	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/apierror"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sumaPagos(r ResultadoPagos) decimal.Decimal { return sumaTenders(r.Pagos) }

func TestDividirPagos_EfectivoExacto(t *testing.T) {
	r, err := DividirPagos(dec("232"), []Tender{{Metodo: model.MetodoEfectivo, Monto: dec("232")}}, false, false)
	require.NoError(t, err)
	require.Len(t, r.Pagos, 1)
	assert.True(t, r.Pagos[0].Monto.Equal(dec("232")))
	assert.True(t, r.Vuelto.IsZero())
	assert.Equal(t, model.MetodoEfectivo, r.MetodoDominante())
}

func TestDividirPagos_EfectivoConVuelto(t *testing.T) {
	r, err := DividirPagos(dec("87.50"), []Tender{{Metodo: model.MetodoEfectivo, Monto: dec("100")}}, false, false)
	require.NoError(t, err)
	assert.True(t, r.Vuelto.Equal(dec("12.50")))
	assert.True(t, sumaPagos(r).Equal(dec("87.50")))
	assert.True(t, r.Efectivo().Equal(dec("87.50")))
}

func TestDividirPagos_VueltoSaleDelUltimoEfectivo(t *testing.T) {
	tenders := []Tender{
		{Metodo: model.MetodoEfectivo, Monto: dec("50")},
		{Metodo: model.MetodoTarjeta, Monto: dec("30")},
		{Metodo: model.MetodoEfectivo, Monto: dec("40")},
	}
	r, err := DividirPagos(dec("100"), tenders, false, false)
	require.NoError(t, err)

	require.Len(t, r.Pagos, 3)
	assert.True(t, r.Pagos[2].Monto.Equal(dec("20")))
	assert.True(t, r.Vuelto.Equal(dec("20")))
	assert.True(t, sumaPagos(r).Equal(dec("100")))
	// input untouched
	assert.True(t, tenders[2].Monto.Equal(dec("40")))
}

func TestDividirPagos_TenderEnCeroSeDescarta(t *testing.T) {
	tenders := []Tender{
		{Metodo: model.MetodoTarjeta, Monto: dec("80")},
		{Metodo: model.MetodoEfectivo, Monto: dec("20")},
	}
	r, err := DividirPagos(dec("80"), tenders, false, false)
	require.NoError(t, err)
	require.Len(t, r.Pagos, 1)
	assert.Equal(t, model.MetodoTarjeta, r.Pagos[0].Metodo)
	assert.True(t, r.Vuelto.Equal(dec("20")))
}

func TestDividirPagos_ExcesoNoEfectivo(t *testing.T) {
	_, err := DividirPagos(dec("100"), []Tender{{Metodo: model.MetodoTarjeta, Monto: dec("120")}}, false, false)
	assert.ErrorIs(t, err, apierror.ErrOverPaymentMismatch)
}

func TestDividirPagos_SintetizaCredito(t *testing.T) {
	r, err := DividirPagos(dec("150"), []Tender{{Metodo: model.MetodoEfectivo, Monto: dec("50")}}, true, true)
	require.NoError(t, err)
	require.Len(t, r.Pagos, 2)
	assert.Equal(t, model.MetodoCredito, r.Pagos[1].Metodo)
	assert.True(t, r.Credito().Equal(dec("100")))
	assert.True(t, sumaPagos(r).Equal(dec("150")))
	assert.Equal(t, model.MetodoCredito, r.MetodoDominante())
}

func TestDividirPagos_CreditoExplicitoSeRecalcula(t *testing.T) {
	tenders := []Tender{
		{Metodo: model.MetodoCredito, Monto: dec("30")},
		{Metodo: model.MetodoEfectivo, Monto: dec("50")},
		{Metodo: model.MetodoCredito, Monto: dec("10")},
	}
	r, err := DividirPagos(dec("150"), tenders, true, true)
	require.NoError(t, err)
	require.Len(t, r.Pagos, 2)
	assert.True(t, r.Credito().Equal(dec("100")))
}

func TestDividirPagos_CreditoSobranteSeDescarta(t *testing.T) {
	tenders := []Tender{
		{Metodo: model.MetodoEfectivo, Monto: dec("100")},
		{Metodo: model.MetodoCredito, Monto: dec("50")},
	}
	r, err := DividirPagos(dec("100"), tenders, true, true)
	require.NoError(t, err)
	assert.True(t, r.Credito().IsZero())
	assert.True(t, sumaPagos(r).Equal(dec("100")))
}

func TestDividirPagos_CreditoSobranteSinCliente(t *testing.T) {
	tenders := []Tender{
		{Metodo: model.MetodoEfectivo, Monto: dec("100")},
		{Metodo: model.MetodoCredito, Monto: dec("10")},
	}
	r, err := DividirPagos(dec("100"), tenders, false, true)
	require.NoError(t, err)
	require.Len(t, r.Pagos, 1)
	assert.Equal(t, model.MetodoEfectivo, r.Pagos[0].Metodo)
	assert.True(t, r.Pagos[0].Monto.Equal(dec("100")))
	assert.True(t, r.Vuelto.IsZero())
}

func TestDividirPagos_CreditoRequiereCliente(t *testing.T) {
	_, err := DividirPagos(dec("150"), []Tender{{Metodo: model.MetodoEfectivo, Monto: dec("50")}}, false, true)
	assert.ErrorIs(t, err, apierror.ErrCreditRequiresCustomer)

	_, err = DividirPagos(dec("150"), []Tender{{Metodo: model.MetodoCredito, Monto: dec("150")}}, false, true)
	assert.ErrorIs(t, err, apierror.ErrCreditRequiresCustomer)
}

func TestDividirPagos_CreditoDeshabilitado(t *testing.T) {
	_, err := DividirPagos(dec("150"), []Tender{{Metodo: model.MetodoEfectivo, Monto: dec("50")}}, true, false)
	assert.ErrorIs(t, err, apierror.ErrUnderPayment)
}

func TestDividirPagos_Validaciones(t *testing.T) {
	cases := []struct {
		name    string
		tenders []Tender
	}{
		{"sin pagos", nil},
		{"metodo desconocido", []Tender{{Metodo: "bitcoin", Monto: dec("10")}}},
		{"monto cero", []Tender{{Metodo: model.MetodoEfectivo, Monto: decimal.Zero}}},
		{"monto negativo", []Tender{{Metodo: model.MetodoTarjeta, Monto: dec("-5")}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DividirPagos(dec("10"), tc.tenders, true, true)
			assert.ErrorIs(t, err, apierror.ErrValidation)
		})
	}
}

func TestDividirPagos_TotalCero(t *testing.T) {
	r, err := DividirPagos(decimal.Zero, []Tender{{Metodo: model.MetodoEfectivo, Monto: dec("5")}}, false, false)
	require.NoError(t, err)
	require.Len(t, r.Pagos, 1)
	assert.True(t, r.Pagos[0].Monto.IsZero())
	assert.True(t, r.Vuelto.Equal(dec("5")))
}

func TestMetodoDominante_EmpatePrimero(t *testing.T) {
	r := ResultadoPagos{Pagos: []Tender{
		{Metodo: model.MetodoTarjeta, Monto: dec("50")},
		{Metodo: model.MetodoEfectivo, Monto: dec("50")},
	}}
	assert.Equal(t, model.MetodoTarjeta, r.MetodoDominante())
}
