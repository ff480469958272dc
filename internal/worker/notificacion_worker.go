package worker

// Fans a domain event out to the active admins of its business: an in-app
// row plus live push, and an email job when the user opted in. Every step is
// keyed by (evento, usuario, canal) so a retried job never duplicates a row;
// an email row that never reached the queue is queued again on retry.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Crissancio/Backend-Taller/internal/dto"
	"github.com/Crissancio/Backend-Taller/internal/metrics"
	"github.com/Crissancio/Backend-Taller/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type AdminLister interface {
	ListAdminsActivos(ctx context.Context, microempresaID uint) ([]model.Usuario, error)
}

type NotificacionStore interface {
	Create(ctx context.Context, n *model.Notificacion) error
	Find(ctx context.Context, eventoID uuid.UUID, usuarioID uint, canal string) (*model.Notificacion, error)
	MarcarEncolada(ctx context.Context, id uint) error
}

type CanalResolver interface {
	Canales(ctx context.Context, usuarioID uint, tipoEvento string) (app, email bool, err error)
}

type Pusher interface {
	SendToUser(usuarioID uint, data []byte) bool
}

type EmailEncolador interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
}

type NotificacionWorker struct {
	usuarios AdminLister
	store    NotificacionStore
	canales  CanalResolver
	hub      Pusher
	correo   EmailEncolador // nil when SMTP is not configured
}

func NewNotificacionWorker(usuarios AdminLister, store NotificacionStore, canales CanalResolver, hub Pusher, correo EmailEncolador) *NotificacionWorker {
	return &NotificacionWorker{usuarios: usuarios, store: store, canales: canales, hub: hub, correo: correo}
}

func (w *NotificacionWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var ev EventoJob
	if err := json.Unmarshal(raw, &ev); err != nil {
		// A malformed payload will never succeed; drop it instead of retrying.
		log.Error().Err(err).Msg("notificacion_worker: invalid payload")
		return nil
	}

	admins, err := w.usuarios.ListAdminsActivos(ctx, ev.MicroempresaID)
	if err != nil {
		return fmt.Errorf("listar admins de microempresa %d: %w", ev.MicroempresaID, err)
	}
	for i := range admins {
		if err := w.notificar(ctx, &ev, &admins[i]); err != nil {
			return err
		}
	}
	log.Debug().Str("evento_id", ev.EventoID.String()).Str("tipo", ev.Tipo).Int("destinatarios", len(admins)).
		Msg("notificacion_worker: evento procesado")
	return nil
}

func (w *NotificacionWorker) notificar(ctx context.Context, ev *EventoJob, u *model.Usuario) error {
	app, email, err := w.canales.Canales(ctx, u.ID, ev.Tipo)
	if err != nil {
		return err
	}
	if app {
		if err := w.inApp(ctx, ev, u); err != nil {
			return err
		}
	}
	if email && w.correo != nil && u.Email != "" {
		if err := w.email(ctx, ev, u); err != nil {
			return err
		}
	}
	return nil
}

func (w *NotificacionWorker) inApp(ctx context.Context, ev *EventoJob, u *model.Usuario) error {
	previa, err := w.store.Find(ctx, ev.EventoID, u.ID, model.CanalInApp)
	if err != nil || previa != nil {
		return err
	}
	n := w.nueva(ev, u, model.CanalInApp)
	n.Enviado = true
	if err := w.store.Create(ctx, n); err != nil {
		return err
	}
	metrics.NotificacionesEnviadas.WithLabelValues(model.CanalInApp).Inc()

	frame, err := json.Marshal(dto.NotificacionPush{
		ID:           n.ID,
		Tipo:         n.Tipo,
		Mensaje:      n.Mensaje,
		ReferenciaID: n.ReferenciaID,
		Fecha:        n.Fecha,
	})
	if err == nil {
		w.hub.SendToUser(u.ID, frame)
	}
	return nil
}

func (w *NotificacionWorker) email(ctx context.Context, ev *EventoJob, u *model.Usuario) error {
	n, err := w.store.Find(ctx, ev.EventoID, u.ID, model.CanalEmail)
	if err != nil {
		return err
	}
	if n != nil && (n.Encolado || n.Enviado) {
		return nil
	}
	if n == nil {
		n = w.nueva(ev, u, model.CanalEmail)
		if err := w.store.Create(ctx, n); err != nil {
			return err
		}
	}
	err = w.correo.EnqueueEmail(ctx, EmailJobPayload{
		NotificacionID: n.ID,
		ToEmail:        u.Email,
		Subject:        asuntoEvento(ev.Tipo),
		Body:           fmt.Sprintf("Hola %s,\n\n%s\n\nFecha: %s\n", u.Nombre, ev.Mensaje, ev.Fecha.Format("02/01/2006 15:04")),
	})
	if err != nil {
		return fmt.Errorf("encolar email de notificacion %d: %w", n.ID, err)
	}
	// A failure here only risks one duplicate email on a later retry.
	if err := w.store.MarcarEncolada(ctx, n.ID); err != nil {
		log.Warn().Err(err).Uint("notificacion_id", n.ID).Msg("notificacion_worker: could not flag email as queued")
	}
	return nil
}

func (w *NotificacionWorker) nueva(ev *EventoJob, u *model.Usuario, canal string) *model.Notificacion {
	return &model.Notificacion{
		MicroempresaID: ev.MicroempresaID,
		UsuarioID:      u.ID,
		EventoID:       ev.EventoID,
		Tipo:           ev.Tipo,
		Canal:          canal,
		Mensaje:        ev.Mensaje,
		ReferenciaID:   ev.ReferenciaID,
		Fecha:          ev.Fecha,
	}
}

func asuntoEvento(tipo string) string {
	switch tipo {
	case model.EventoStockBajo:
		return "Alerta: stock bajo"
	case model.EventoStockAgotado:
		return "Alerta: producto agotado"
	case model.EventoVentaRegistrada:
		return "Nueva venta registrada"
	case model.EventoVentaOnlineCreada:
		return "Nuevo pedido online"
	case model.EventoPagoVentaConfirmado:
		return "Pago confirmado"
	case model.EventoVentaCancelada:
		return "Venta cancelada"
	case model.EventoCompraFinalizada:
		return "Compra finalizada"
	case model.EventoSuscripcionCreada:
		return "Suscripcion activada"
	}
	return "Notificacion"
}
