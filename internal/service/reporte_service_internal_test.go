package service

import (
	"context"
	"testing"
	"time"

	"github.com/Crissancio/Backend-Taller/internal/dto"
	"github.com/Crissancio/Backend-Taller/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangoPeriodo(t *testing.T) {
	now := time.Date(2026, time.August, 14, 17, 30, 0, 0, time.UTC)
	manana := time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		periodo string
		desde   time.Time
	}{
		{"mes", time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)},
		{"", time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)},
		{"trimestre", time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)},
		{"anio", time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.periodo, func(t *testing.T) {
			desde, hasta, err := rangoPeriodo(tc.periodo, now)
			require.NoError(t, err)
			assert.Equal(t, tc.desde, desde)
			assert.Equal(t, manana, hasta)
		})
	}
}

func TestRangoPeriodo_PrimerTrimestre(t *testing.T) {
	desde, _, err := rangoPeriodo("trimestre", time.Date(2026, time.March, 31, 23, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, time.January, desde.Month())
}

func TestDashboard_PeriodoDesconocido(t *testing.T) {
	for _, periodo := range []string{"semana", "dia", "MES"} {
		_, _, err := rangoPeriodo(periodo, time.Now())
		assert.ErrorIs(t, err, ErrValidacion, periodo)
	}

	svc := &reporteService{now: time.Now}
	_, err := svc.Dashboard(context.Background(), Alcance{UsuarioID: 2, Rol: "admin", MicroempresaID: 3}, dto.DashboardFilter{Periodo: "semana"})
	assert.ErrorIs(t, err, ErrValidacion, "unknown periods are rejected before any query")
}

func TestCombinarSeries(t *testing.T) {
	d1 := time.Date(2026, time.May, 3, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	d3 := time.Date(2026, time.May, 2, 0, 0, 0, 0, time.UTC)

	serie := combinarSeries(
		[]repository.SerieDia{{Dia: d1, Monto: decimal.NewFromInt(100)}, {Dia: d2, Monto: decimal.NewFromInt(40)}},
		[]repository.SerieDia{{Dia: d1, Monto: decimal.NewFromInt(30)}, {Dia: d3, Monto: decimal.NewFromInt(25)}},
	)

	require.Len(t, serie, 3)
	assert.Equal(t, "2026-05-01", serie[0].Fecha)
	assert.True(t, serie[0].Gastos.IsZero())
	assert.Equal(t, "2026-05-02", serie[1].Fecha)
	assert.True(t, serie[1].Ingresos.IsZero())
	assert.True(t, serie[1].Gastos.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, "2026-05-03", serie[2].Fecha)
	assert.True(t, serie[2].Ingresos.Equal(decimal.NewFromInt(100)))
	assert.True(t, serie[2].Gastos.Equal(decimal.NewFromInt(30)))
}

func TestAlcance(t *testing.T) {
	super := Alcance{UsuarioID: 1, Rol: "superadmin"}
	assert.NoError(t, super.verificar(7))
	_, err := super.empresa()
	assert.ErrorIs(t, err, ErrValidacion)

	admin := Alcance{UsuarioID: 2, Rol: "admin", MicroempresaID: 3}
	assert.NoError(t, admin.verificar(3))
	assert.ErrorIs(t, admin.verificar(4), ErrFueraDeAlcance)
	mid, err := admin.empresa()
	require.NoError(t, err)
	assert.Equal(t, uint(3), mid)
}
