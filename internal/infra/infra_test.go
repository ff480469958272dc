package infra

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/Crissancio/Backend-Taller/internal/model"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSMTP = errors.New("smtp caido")

func TestCircuitBreaker_Ciclo(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "smtp", FailureThreshold: 3, SuccessThreshold: 2, OpenTimeout: time.Minute})
	reloj := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	cb.now = func() time.Time { return reloj }

	falla := func() error { return errSMTP }
	ok := func() error { return nil }

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(falla), errSMTP)
	}
	assert.Equal(t, CBOpen, cb.State())

	llamado := false
	err := cb.Execute(func() error { llamado = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, llamado)

	reloj = reloj.Add(time.Minute)
	assert.Equal(t, CBHalfOpen, cb.State())

	require.NoError(t, cb.Execute(ok))
	assert.Equal(t, CBHalfOpen, cb.State())
	require.NoError(t, cb.Execute(ok))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_FalloEnSondeoReabre(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "kafka", FailureThreshold: 1, OpenTimeout: time.Second})
	reloj := time.Now()
	cb.now = func() time.Time { return reloj }

	assert.Error(t, cb.Execute(func() error { return errSMTP }))
	reloj = reloj.Add(time.Second)
	assert.Error(t, cb.Execute(func() error { return errSMTP }))
	assert.Equal(t, CBOpen, cb.State())
}

func TestCircuitBreaker_ExitoReiniciaFallos(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "smtp", FailureThreshold: 2})
	assert.Error(t, cb.Execute(func() error { return errSMTP }))
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Error(t, cb.Execute(func() error { return errSMTP }))
	assert.Equal(t, CBClosed, cb.State())
	assert.Equal(t, "closed", cb.State().String())
}

func TestEventPublisher_MismaClaveMismaParticion(t *testing.T) {
	assert.Nil(t, NewEventPublisher(nil, "eventos"))

	p := NewEventPublisher([]string{"localhost:9092"}, "eventos")
	require.NotNil(t, p)
	t.Cleanup(func() { _ = p.Close() })

	particiones := []int{0, 1, 2, 3, 4, 5}
	for _, clave := range []string{"1", "7", "42"} {
		msg := kafka.Message{Key: []byte(clave)}
		primera := p.writer.Balancer.Balance(msg, particiones...)
		for i := 0; i < 20; i++ {
			assert.Equal(t, primera, p.writer.Balancer.Balance(msg, particiones...), "microempresa %s", clave)
		}
	}
}

func TestGenerarComprobanteVentaPDF(t *testing.T) {
	dir := "Av. Busch 123"
	empresa := &model.Microempresa{Nombre: "Almacén Doña Rosa", NIT: "99887766", Moneda: "BOB", Direccion: &dir}
	venta := &model.Venta{
		ID:      42,
		Fecha:   time.Date(2026, 2, 14, 10, 30, 0, 0, time.UTC),
		Total:   decimal.RequireFromString("57.50"),
		Estado:  model.VentaPagada,
		Tipo:    model.VentaOnline,
		Cliente: &model.Cliente{Nombre: "Jose Peña"},
		Detalles: []model.DetalleVenta{
			{ProductoID: 1, Cantidad: 2, Subtotal: decimal.RequireFromString("25"), Producto: &model.Producto{Nombre: "Aceite de girasol de un litro"}},
			{ProductoID: 2, Cantidad: 1, Subtotal: decimal.RequireFromString("32.50")},
		},
		Pagos: []model.PagoVenta{{Metodo: "QR", Estado: model.PagoValidado}},
	}

	pdf, err := GenerarComprobanteVentaPDF(venta, empresa)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
}
