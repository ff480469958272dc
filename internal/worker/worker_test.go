package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Crissancio/Backend-Taller/internal/infra"
	"github.com/Crissancio/Backend-Taller/internal/model"
	"github.com/Crissancio/Backend-Taller/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Outbox relay ─────────────────────────────────────────────────────────────

type stubOutbox struct {
	eventos []model.EventoOutbox
}

func (r *stubOutbox) CreateTx(_ *gorm.DB, e *model.EventoOutbox) error {
	e.ID = uint(len(r.eventos) + 1)
	r.eventos = append(r.eventos, *e)
	return nil
}

func (r *stubOutbox) ClaimPendientesTx(_ *gorm.DB, now time.Time, limit int) ([]model.EventoOutbox, error) {
	var out []model.EventoOutbox
	for _, e := range r.eventos {
		if e.Estado == model.OutboxPendiente && !e.ProximoIntento.After(now) && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *stubOutbox) SaveTx(_ *gorm.DB, e *model.EventoOutbox) error {
	for i := range r.eventos {
		if r.eventos[i].ID == e.ID {
			r.eventos[i] = *e
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubOutbox) CountByEstado(_ context.Context, estado string) (int64, error) {
	var n int64
	for _, e := range r.eventos {
		if e.Estado == estado {
			n++
		}
	}
	return n, nil
}

func (r *stubOutbox) DB() *gorm.DB { return nil }

var _ repository.OutboxRepository = (*stubOutbox)(nil)

type stubEncolador struct {
	err  error
	jobs []EventoJob
}

func (e *stubEncolador) EnqueueEvento(_ context.Context, ev EventoJob) error {
	if e.err != nil {
		return e.err
	}
	e.jobs = append(e.jobs, ev)
	return nil
}

type stubSink struct {
	keys []string
}

func (s *stubSink) Publish(_ context.Context, key string, _ []byte) error {
	s.keys = append(s.keys, key)
	return errors.New("broker no disponible")
}

func nuevoEvento(repo *stubOutbox, tipo string, now time.Time) {
	_ = repo.CreateTx(nil, &model.EventoOutbox{
		EventoID:       uuid.New(),
		MicroempresaID: 4,
		Tipo:           tipo,
		Mensaje:        "evento de prueba",
		Payload:        `{"producto_id":9}`,
		Estado:         model.OutboxPendiente,
		ProximoIntento: now,
		CreatedAt:      now,
	})
}

func TestOutboxRelay_Despacha(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	repo := &stubOutbox{}
	nuevoEvento(repo, model.EventoStockBajo, now)
	nuevoEvento(repo, model.EventoVentaRegistrada, now)
	enc := &stubEncolador{}
	sink := &stubSink{}

	relay := NewOutboxRelay(OutboxRelayConfig{Repo: repo, Encolador: enc, Sink: sink})
	relay.now = func() time.Time { return now }

	n, err := relay.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, enc.jobs, 2)
	assert.Equal(t, model.EventoStockBajo, enc.jobs[0].Tipo)
	assert.JSONEq(t, `{"producto_id":9}`, string(enc.jobs[0].Datos))
	assert.Equal(t, []string{"4", "4"}, sink.keys, "sink failures do not block dispatch")

	for _, e := range repo.eventos {
		assert.Equal(t, model.OutboxDespachado, e.Estado)
		require.NotNil(t, e.DespachadoAt)
	}

	n, err = relay.Tick(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOutboxRelay_ReintentaYMarcaFallido(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	repo := &stubOutbox{}
	nuevoEvento(repo, model.EventoCompraFinalizada, now)
	enc := &stubEncolador{err: errors.New("redis caido")}

	relay := NewOutboxRelay(OutboxRelayConfig{Repo: repo, Encolador: enc, MaxIntentos: 3})
	relay.now = func() time.Time { return now }

	_, err := relay.Tick(context.Background())
	require.NoError(t, err)
	e := repo.eventos[0]
	assert.Equal(t, model.OutboxPendiente, e.Estado)
	assert.Equal(t, 1, e.Intentos)
	assert.Equal(t, now.Add(2*time.Second), e.ProximoIntento)
	require.NotNil(t, e.UltimoError)
	assert.Equal(t, "redis caido", *e.UltimoError)

	n, err := relay.Tick(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "the event is not due before its backoff elapses")

	for i := 0; i < 2; i++ {
		now = repo.eventos[0].ProximoIntento
		_, err = relay.Tick(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, model.OutboxFallido, repo.eventos[0].Estado)
	assert.Equal(t, 3, repo.eventos[0].Intentos)

	enc.err = nil
	now = now.Add(time.Hour)
	n, err = relay.Tick(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "failed events are never claimed again")
}

func TestRelayBackoff(t *testing.T) {
	assert.Equal(t, 2*time.Second, relayBackoff(1))
	assert.Equal(t, 16*time.Second, relayBackoff(4))
	assert.Equal(t, maxRelayBackoff, relayBackoff(9))
	assert.Equal(t, maxRelayBackoff, relayBackoff(40))
}

// ── Notification fan-out ─────────────────────────────────────────────────────

type stubAdmins struct {
	admins []model.Usuario
}

func (s *stubAdmins) ListAdminsActivos(_ context.Context, _ uint) ([]model.Usuario, error) {
	return s.admins, nil
}

type stubNotifStore struct {
	rows []model.Notificacion
}

func (s *stubNotifStore) Create(_ context.Context, n *model.Notificacion) error {
	n.ID = uint(len(s.rows) + 1)
	s.rows = append(s.rows, *n)
	return nil
}

func (s *stubNotifStore) Find(_ context.Context, eventoID uuid.UUID, usuarioID uint, canal string) (*model.Notificacion, error) {
	for i := range s.rows {
		if s.rows[i].EventoID == eventoID && s.rows[i].UsuarioID == usuarioID && s.rows[i].Canal == canal {
			n := s.rows[i]
			return &n, nil
		}
	}
	return nil, nil
}

func (s *stubNotifStore) MarcarEncolada(_ context.Context, id uint) error {
	for i := range s.rows {
		if s.rows[i].ID == id {
			s.rows[i].Encolado = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *stubNotifStore) MarcarEnviada(_ context.Context, id uint) error {
	for i := range s.rows {
		if s.rows[i].ID == id {
			s.rows[i].Enviado = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type stubCanales struct {
	sinEmail map[uint]bool
}

func (s *stubCanales) Canales(_ context.Context, usuarioID uint, _ string) (bool, bool, error) {
	return true, !s.sinEmail[usuarioID], nil
}

type stubPusher struct {
	mu     sync.Mutex
	frames map[uint]int
}

func (p *stubPusher) SendToUser(usuarioID uint, _ []byte) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frames[usuarioID]++
	return true
}

type stubCorreo struct {
	emails []EmailJobPayload
	fallos int
}

func (c *stubCorreo) EnqueueEmail(_ context.Context, p EmailJobPayload) error {
	if c.fallos > 0 {
		c.fallos--
		return errors.New("redis: connection refused")
	}
	c.emails = append(c.emails, p)
	return nil
}

func TestNotificacionWorker_FanOutIdempotente(t *testing.T) {
	admins := &stubAdmins{admins: []model.Usuario{
		{ID: 1, Nombre: "Ana", Email: "ana@tienda.bo", Rol: model.RolAdmin, Activo: true},
		{ID: 2, Nombre: "Luis", Email: "luis@tienda.bo", Rol: model.RolAdmin, Activo: true},
	}}
	store := &stubNotifStore{}
	pusher := &stubPusher{frames: make(map[uint]int)}
	correo := &stubCorreo{}
	w := NewNotificacionWorker(admins, store, &stubCanales{sinEmail: map[uint]bool{2: true}}, pusher, correo)

	raw, err := json.Marshal(EventoJob{
		EventoID:       uuid.New(),
		MicroempresaID: 4,
		Tipo:           model.EventoStockAgotado,
		Mensaje:        "Atun lata se agoto",
		Fecha:          time.Now(),
	})
	require.NoError(t, err)

	require.NoError(t, w.Process(context.Background(), raw))
	require.NoError(t, w.Process(context.Background(), raw))

	// Two in-app rows plus one email row, even though the job ran twice.
	require.Len(t, store.rows, 3)
	assert.Equal(t, map[uint]int{1: 1, 2: 1}, pusher.frames)
	require.Len(t, correo.emails, 1)
	assert.Equal(t, "ana@tienda.bo", correo.emails[0].ToEmail)
	assert.Equal(t, "Alerta: producto agotado", correo.emails[0].Subject)
}

func TestNotificacionWorker_ReencolaEmailNoEnviado(t *testing.T) {
	admins := &stubAdmins{admins: []model.Usuario{
		{ID: 1, Nombre: "Ana", Email: "ana@tienda.bo", Rol: model.RolAdmin, Activo: true},
	}}
	store := &stubNotifStore{}
	correo := &stubCorreo{fallos: 1}
	w := NewNotificacionWorker(admins, store, &stubCanales{}, &stubPusher{frames: make(map[uint]int)}, correo)

	raw, err := json.Marshal(EventoJob{
		EventoID:       uuid.New(),
		MicroempresaID: 4,
		Tipo:           model.EventoStockBajo,
		Mensaje:        "Arroz bajo el minimo",
		Fecha:          time.Now(),
	})
	require.NoError(t, err)

	require.Error(t, w.Process(context.Background(), raw))
	assert.Empty(t, correo.emails)

	require.NoError(t, w.Process(context.Background(), raw))
	require.Len(t, correo.emails, 1, "the retry queues the email that failed to enqueue")
	require.Len(t, store.rows, 2, "no duplicate rows on retry")
	assert.Equal(t, store.rows[1].ID, correo.emails[0].NotificacionID)
	assert.True(t, store.rows[1].Encolado)

	require.NoError(t, w.Process(context.Background(), raw))
	assert.Len(t, correo.emails, 1, "queued emails are not queued again")
}

func TestNotificacionWorker_PayloadInvalidoNoReintenta(t *testing.T) {
	w := NewNotificacionWorker(&stubAdmins{}, &stubNotifStore{}, &stubCanales{}, &stubPusher{frames: map[uint]int{}}, nil)
	assert.NoError(t, w.Process(context.Background(), json.RawMessage(`{"evento_id":`)))
}

// ── Email ────────────────────────────────────────────────────────────────────

type stubMailer struct {
	err   error
	calls int
}

func (m *stubMailer) Send(_, _, _ string) error {
	m.calls++
	return m.err
}

func TestEmailWorker_MarcaEnviada(t *testing.T) {
	store := &stubNotifStore{}
	require.NoError(t, store.Create(context.Background(), &model.Notificacion{Canal: model.CanalEmail}))
	mailer := &stubMailer{}
	w := NewEmailWorker(mailer, infra.NewCircuitBreaker(infra.DefaultCBConfig("smtp")), store)

	raw, _ := json.Marshal(EmailJobPayload{NotificacionID: 1, ToEmail: "ana@tienda.bo", Subject: "s", Body: "b"})
	require.NoError(t, w.Process(context.Background(), raw))
	assert.Equal(t, 1, mailer.calls)
	assert.True(t, store.rows[0].Enviado)
}

func TestEmailWorker_CircuitoAbierto(t *testing.T) {
	mailer := &stubMailer{err: errors.New("smtp timeout")}
	cb := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{Name: "smtp", FailureThreshold: 2, OpenTimeout: time.Hour})
	w := NewEmailWorker(mailer, cb, &stubNotifStore{})

	raw, _ := json.Marshal(EmailJobPayload{ToEmail: "ana@tienda.bo", Subject: "s", Body: "b"})
	assert.Error(t, w.Process(context.Background(), raw))
	assert.Error(t, w.Process(context.Background(), raw))

	err := w.Process(context.Background(), raw)
	assert.ErrorIs(t, err, infra.ErrCircuitOpen)
	assert.Equal(t, 2, mailer.calls, "an open breaker fails fast without calling SMTP")
}

func TestEmailWorker_SinDestinatario(t *testing.T) {
	mailer := &stubMailer{}
	w := NewEmailWorker(mailer, infra.NewCircuitBreaker(infra.DefaultCBConfig("smtp")), &stubNotifStore{})
	raw, _ := json.Marshal(EmailJobPayload{Subject: "s"})
	assert.NoError(t, w.Process(context.Background(), raw))
	assert.Zero(t, mailer.calls)
}

// ── Expiration ───────────────────────────────────────────────────────────────

type stubExpirador struct {
	antes time.Time
}

func (e *stubExpirador) ExpirarPendientes(_ context.Context, antes time.Time) (int, error) {
	e.antes = antes
	return 2, nil
}

func TestExpirarPendientes_UsaTTL(t *testing.T) {
	exp := &stubExpirador{}
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	n := expirarPendientes(context.Background(), ExpiracionCronConfig{Ventas: exp, TTL: 24 * time.Hour}, now)
	assert.Equal(t, 2, n)
	assert.Equal(t, now.Add(-24*time.Hour), exp.antes)
}
