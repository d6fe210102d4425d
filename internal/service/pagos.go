package service

import (
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/apierror"
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/model"

	"github.com/shopspring/decimal"
)

// toleranciaPagos is the only rounding slack allowed between Σpagos and the total.
var toleranciaPagos = decimal.New(1, -2)

// Tender is one method/amount pair offered by the customer.
type Tender struct {
	Metodo string
	Monto  decimal.Decimal
}

// ResultadoPagos is the finalized tender set of a sale.
// Σ Pagos == total exactly; Vuelto is change handed back and never stored.
type ResultadoPagos struct {
	Pagos  []Tender
	Vuelto decimal.Decimal
}

// Credito returns the amount tendered on credit (zero if none).
func (r ResultadoPagos) Credito() decimal.Decimal { return r.sumaMetodo(model.MetodoCredito) }

// Efectivo returns the cash actually kept after change.
func (r ResultadoPagos) Efectivo() decimal.Decimal { return r.sumaMetodo(model.MetodoEfectivo) }

func (r ResultadoPagos) sumaMetodo(metodo string) decimal.Decimal {
	total := decimal.Zero
	for _, p := range r.Pagos {
		if p.Metodo == metodo {
			total = total.Add(p.Monto)
		}
	}
	return total
}

// MetodoDominante labels a sale with its largest tender (the first one on ties).
func (r ResultadoPagos) MetodoDominante() string {
	if len(r.Pagos) == 0 {
		return model.MetodoEfectivo
	}
	dominante := r.Pagos[0]
	for _, p := range r.Pagos[1:] {
		if p.Monto.GreaterThan(dominante.Monto) {
			dominante = p
		}
	}
	return dominante.Metodo
}

var metodosValidos = map[string]bool{
	model.MetodoEfectivo:      true,
	model.MetodoTarjeta:       true,
	model.MetodoTransferencia: true,
	model.MetodoCredito:       true,
}

// DividirPagos reconciles the tendered payments against total and returns a
// new tender list; the input slice is never modified.
//
//   - every tender must be positive and use a known method
//   - credit tenders only count as a request for credit; the amount is recomputed
//   - when non-credit tenders cover the total, credit is dropped and any excess
//     is taken back from cash tenders (last first) as change
//   - excess that cash cannot absorb is OverPaymentMismatch
//   - otherwise the pending remainder is folded into a single trailing credit
//     tender, which needs a customer and a store that sells on credit
func DividirPagos(total decimal.Decimal, tenders []Tender, tieneCliente, creditoHabilitado bool) (ResultadoPagos, error) {
	if len(tenders) == 0 {
		return ResultadoPagos{}, apierror.Validation("se requiere al menos un pago")
	}

	noCredito := make([]Tender, 0, len(tenders))
	for _, t := range tenders {
		if !metodosValidos[t.Metodo] {
			return ResultadoPagos{}, apierror.Validation("método de pago desconocido: %q", t.Metodo)
		}
		monto := t.Monto.Round(2)
		if !monto.IsPositive() {
			return ResultadoPagos{}, apierror.Validation("el monto de cada pago debe ser mayor a cero")
		}
		if t.Metodo == model.MetodoCredito {
			continue
		}
		noCredito = append(noCredito, Tender{Metodo: t.Metodo, Monto: monto})
	}
	pagado := sumaTenders(noCredito)
	if pagado.GreaterThanOrEqual(total) {
		return recortarExceso(noCredito, pagado.Sub(total))
	}

	pendiente := total.Sub(pagado)
	if !tieneCliente {
		return ResultadoPagos{}, apierror.CreditRequiresCustomer()
	}
	if !creditoHabilitado {
		return ResultadoPagos{}, apierror.UnderPayment(pendiente)
	}
	return ResultadoPagos{
		Pagos:  append(noCredito, Tender{Metodo: model.MetodoCredito, Monto: pendiente}),
		Vuelto: decimal.Zero,
	}, nil
}

// recortarExceso gives excess back as change from the cash tenders, walking
// them from last to first and dropping any that reach zero.
func recortarExceso(pagos []Tender, exceso decimal.Decimal) (ResultadoPagos, error) {
	vuelto := exceso
	for i := len(pagos) - 1; i >= 0 && exceso.IsPositive(); i-- {
		if pagos[i].Metodo != model.MetodoEfectivo {
			continue
		}
		recorte := decimal.Min(pagos[i].Monto, exceso)
		pagos[i].Monto = pagos[i].Monto.Sub(recorte)
		exceso = exceso.Sub(recorte)
	}
	if exceso.IsPositive() {
		return ResultadoPagos{}, apierror.OverPaymentMismatch(exceso)
	}

	finales := make([]Tender, 0, len(pagos))
	for _, p := range pagos {
		if p.Monto.IsPositive() {
			finales = append(finales, p)
		}
	}
	if len(finales) == 0 {
		// only reachable with a zero total: keep one zero tender so the set is never empty
		metodo := model.MetodoEfectivo
		if len(pagos) > 0 {
			metodo = pagos[0].Metodo
		}
		finales = append(finales, Tender{Metodo: metodo, Monto: decimal.Zero})
	}
	return ResultadoPagos{Pagos: finales, Vuelto: vuelto}, nil
}

func sumaTenders(tenders []Tender) decimal.Decimal {
	total := decimal.Zero
	for _, t := range tenders {
		total = total.Add(t.Monto)
	}
	return total
}
