package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Crissancio/Backend-Taller/internal/dto"
	"github.com/Crissancio/Backend-Taller/internal/repository"

	"github.com/shopspring/decimal"
)

const formatoDia = "2006-01-02"

type ReporteService interface {
	Dashboard(ctx context.Context, alc Alcance, filter dto.DashboardFilter) (*dto.DashboardResponse, error)
}

type reporteService struct {
	repo      repository.ReporteRepository
	stockRepo repository.StockRepository
	now       func() time.Time
}

func NewReporteService(repo repository.ReporteRepository, stockRepo repository.StockRepository) ReporteService {
	return &reporteService{repo: repo, stockRepo: stockRepo, now: time.Now}
}

// rangoPeriodo returns [desde, hasta) for the calendar month, quarter or year
// containing now; hasta is the start of the following day. An empty periodo
// means the month.
func rangoPeriodo(periodo string, now time.Time) (time.Time, time.Time, error) {
	y, m, d := now.Date()
	loc := now.Location()
	hasta := time.Date(y, m, d, 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	switch periodo {
	case "", "mes":
		return time.Date(y, m, 1, 0, 0, 0, 0, loc), hasta, nil
	case "trimestre":
		inicio := time.Month((int(m)-1)/3*3 + 1)
		return time.Date(y, inicio, 1, 0, 0, 0, 0, loc), hasta, nil
	case "anio":
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc), hasta, nil
	}
	return time.Time{}, time.Time{}, invalido(fmt.Sprintf("periodo %q no soportado (mes, trimestre, anio)", periodo))
}

func (s *reporteService) Dashboard(ctx context.Context, alc Alcance, filter dto.DashboardFilter) (*dto.DashboardResponse, error) {
	mid, err := alc.empresa()
	if err != nil {
		return nil, err
	}
	periodo := filter.Periodo
	if periodo == "" {
		periodo = "mes"
	}
	desde, hasta, err := rangoPeriodo(periodo, s.now())
	if err != nil {
		return nil, err
	}

	ingresos, cantidad, err := s.repo.TotalVentas(ctx, mid, desde, hasta)
	if err != nil {
		return nil, err
	}
	gastos, err := s.repo.TotalCompras(ctx, mid, desde, hasta)
	if err != nil {
		return nil, err
	}
	serieVentas, err := s.repo.SerieVentas(ctx, mid, desde, hasta)
	if err != nil {
		return nil, err
	}
	serieCompras, err := s.repo.SerieCompras(ctx, mid, desde, hasta)
	if err != nil {
		return nil, err
	}
	pendientes, err := s.repo.CountVentasPendientes(ctx, mid)
	if err != nil {
		return nil, err
	}
	bajoMinimo, err := s.stockRepo.CountBajoMinimo(ctx, mid)
	if err != nil {
		return nil, err
	}

	return &dto.DashboardResponse{
		Periodo:             periodo,
		Desde:               desde,
		Hasta:               hasta,
		Ingresos:            ingresos,
		Gastos:              gastos,
		Utilidad:            ingresos.Sub(gastos),
		CantidadVentas:      cantidad,
		VentasPendientes:    pendientes,
		ProductosBajoMinimo: bajoMinimo,
		Serie:               combinarSeries(serieVentas, serieCompras),
	}, nil
}

// combinarSeries merges both daily series by date, ascending. Days with no
// movement are omitted.
func combinarSeries(ventas, compras []repository.SerieDia) []dto.PuntoSerie {
	puntos := make(map[string]*dto.PuntoSerie)
	var orden []string
	punto := func(dia time.Time) *dto.PuntoSerie {
		k := dia.Format(formatoDia)
		p, ok := puntos[k]
		if !ok {
			p = &dto.PuntoSerie{Fecha: k, Ingresos: decimal.Zero, Gastos: decimal.Zero}
			puntos[k] = p
			orden = append(orden, k)
		}
		return p
	}
	for _, v := range ventas {
		p := punto(v.Dia)
		p.Ingresos = p.Ingresos.Add(v.Monto)
	}
	for _, c := range compras {
		p := punto(c.Dia)
		p.Gastos = p.Gastos.Add(c.Monto)
	}
	sort.Strings(orden)
	out := make([]dto.PuntoSerie, len(orden))
	for i, k := range orden {
		out[i] = *puntos[k]
	}
	return out
}
