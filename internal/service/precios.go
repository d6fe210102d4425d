package service

import (
	"github.com/Alejandroperezitsur/Punto-de-Venta-sub000/internal/apierror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineaVenta is a requested line before pricing.
type LineaVenta struct {
	ProductoID     uuid.UUID
	Cantidad       int
	PrecioUnitario *decimal.Decimal // overrides the catalog price when set
}

// LineaCalculada is a priced line. TasaImpuesto is the rate actually applied.
type LineaCalculada struct {
	ProductoID     uuid.UUID
	Nombre         string
	Cantidad       int
	PrecioUnitario decimal.Decimal
	TotalLinea     decimal.Decimal
	TasaImpuesto   decimal.Decimal
	Impuesto       decimal.Decimal
}

type Totales struct {
	Lineas    []LineaCalculada
	Subtotal  decimal.Decimal
	Impuesto  decimal.Decimal
	Descuento decimal.Decimal
	Total     decimal.Decimal
}

// CalcularTotales prices every line against the snapshot:
//
//	unit  = override ?? precio
//	sub   = unit × cantidad
//	tax   = 0 if exento else round2(sub × (tasa producto ?? tasaDefault))
//	total = Σsub + Σtax − descuento
//
// The discount is not clamped; a negative total is InvalidDiscount.
func CalcularTotales(lineas []LineaVenta, productos map[uuid.UUID]ProductoSnapshot, tasaDefault, descuento decimal.Decimal) (Totales, error) {
	if len(lineas) == 0 {
		return Totales{}, apierror.Validation("la venta debe tener al menos un item")
	}
	if descuento.IsNegative() {
		return Totales{}, apierror.Validation("el descuento no puede ser negativo")
	}

	t := Totales{
		Lineas:    make([]LineaCalculada, 0, len(lineas)),
		Subtotal:  decimal.Zero,
		Impuesto:  decimal.Zero,
		Descuento: descuento.Round(2),
	}
	for _, l := range lineas {
		if l.Cantidad <= 0 {
			return Totales{}, apierror.Validation("la cantidad debe ser mayor a cero")
		}
		p, ok := productos[l.ProductoID]
		if !ok {
			return Totales{}, apierror.NotFound("Producto", l.ProductoID)
		}
		if !p.Activo {
			return Totales{}, apierror.Validation("producto %s está inactivo y no puede venderse", p.Nombre)
		}

		precio := p.Precio
		if l.PrecioUnitario != nil {
			if l.PrecioUnitario.IsNegative() {
				return Totales{}, apierror.Validation("el precio unitario no puede ser negativo")
			}
			precio = l.PrecioUnitario.Round(2)
		}
		sub := precio.Mul(decimal.NewFromInt(int64(l.Cantidad)))

		tasa := tasaDefault
		if p.TasaImpuesto != nil {
			tasa = *p.TasaImpuesto
		}
		impuesto := decimal.Zero
		if p.Exento {
			tasa = decimal.Zero
		} else {
			impuesto = sub.Mul(tasa).Round(2)
		}

		t.Lineas = append(t.Lineas, LineaCalculada{
			ProductoID:     l.ProductoID,
			Nombre:         p.Nombre,
			Cantidad:       l.Cantidad,
			PrecioUnitario: precio,
			TotalLinea:     sub,
			TasaImpuesto:   tasa,
			Impuesto:       impuesto,
		})
		t.Subtotal = t.Subtotal.Add(sub)
		t.Impuesto = t.Impuesto.Add(impuesto)
	}

	t.Total = t.Subtotal.Add(t.Impuesto).Sub(t.Descuento)
	if t.Total.IsNegative() {
		return Totales{}, apierror.InvalidDiscount(t.Total)
	}
	return t, nil
}
