package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type DashboardFilter struct {
	Periodo string `form:"periodo,default=mes" validate:"oneof=mes trimestre anio"`
}

type PuntoSerie struct {
	Fecha    string          `json:"fecha"` // YYYY-MM-DD
	Ingresos decimal.Decimal `json:"ingresos"`
	Gastos   decimal.Decimal `json:"gastos"`
}

type DashboardResponse struct {
	Periodo             string          `json:"periodo"`
	Desde               time.Time       `json:"desde"`
	Hasta               time.Time       `json:"hasta"`
	Ingresos            decimal.Decimal `json:"ingresos"`
	Gastos              decimal.Decimal `json:"gastos"`
	Utilidad            decimal.Decimal `json:"utilidad"`
	CantidadVentas      int64           `json:"cantidad_ventas"`
	VentasPendientes    int64           `json:"ventas_pendientes"`
	ProductosBajoMinimo int64           `json:"productos_bajo_minimo"`
	Serie               []PuntoSerie    `json:"serie"`
}
