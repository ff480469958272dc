package service_test

import (
	"context"
	"testing"

	"github.com/Crissancio/Backend-Taller/internal/dto"
	"github.com/Crissancio/Backend-Taller/internal/model"
	"github.com/Crissancio/Backend-Taller/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var superadmin = service.Alcance{UsuarioID: 1, Rol: model.RolSuperadmin}

func intPtr(v int) *int { return &v }

func TestPlan_CrearSoloSuperadmin(t *testing.T) {
	svc := service.NewPlanService(newStubPlanRepo())
	ctx := context.Background()
	req := dto.PlanRequest{Nombre: " Basico ", Precio: dec("49.999"), LimiteProductos: intPtr(50)}

	_, err := svc.Crear(ctx, service.Alcance{UsuarioID: 2, Rol: model.RolAdmin, MicroempresaID: 1}, req)
	assert.ErrorIs(t, err, service.ErrPermisoDenegado)

	resp, err := svc.Crear(ctx, superadmin, req)
	require.NoError(t, err)
	assert.Equal(t, "Basico", resp.Nombre)
	assert.True(t, dec("50").Equal(resp.Precio), "price is rounded to cents")
	assert.True(t, resp.Activo)
	assert.Nil(t, resp.LimiteVendedores, "a missing limit stays unlimited")

	_, err = svc.Crear(ctx, superadmin, dto.PlanRequest{Nombre: "Basico", Precio: dec("10")})
	assert.ErrorIs(t, err, service.ErrConflicto)
}

func TestPlan_CambiarEstado(t *testing.T) {
	svc := service.NewPlanService(newStubPlanRepo())
	ctx := context.Background()
	p, err := svc.Crear(ctx, superadmin, dto.PlanRequest{Nombre: "Pro", Precio: dec("99")})
	require.NoError(t, err)

	_, err = svc.CambiarEstado(ctx, superadmin, p.ID, true)
	assert.ErrorIs(t, err, service.ErrValidacion)

	resp, err := svc.CambiarEstado(ctx, superadmin, p.ID, false)
	require.NoError(t, err)
	assert.False(t, resp.Activo)

	activo := true
	list, err := svc.Listar(ctx, superadmin, dto.PlanFilter{Activo: &activo})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPlan_EliminarConSuscripcionesEsConflicto(t *testing.T) {
	planes := newStubPlanRepo()
	subs := newStubSuscripcionRepo(planes)
	f := newFixture(t)
	svc := service.NewPlanService(planes)
	susSvc := service.NewSuscripcionService(subs, planes, f.empresas, newStubUsuarioRepo(), f.productos, f.outbox)
	ctx := context.Background()

	usado, err := svc.Crear(ctx, superadmin, dto.PlanRequest{Nombre: "Usado", Precio: dec("10")})
	require.NoError(t, err)
	libre, err := svc.Crear(ctx, superadmin, dto.PlanRequest{Nombre: "Libre", Precio: dec("10")})
	require.NoError(t, err)
	_, err = susSvc.Crear(ctx, superadmin, dto.CrearSuscripcionRequest{MicroempresaID: f.empresa.ID, PlanID: usado.ID})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Eliminar(ctx, superadmin, usado.ID), service.ErrConflicto)
	require.NoError(t, svc.Eliminar(ctx, superadmin, libre.ID))
	_, err = svc.Obtener(ctx, superadmin, libre.ID)
	assert.ErrorIs(t, err, service.ErrNoEncontrado)
}
