package service

import (
	"context"
	"errors"

	"github.com/Crissancio/Backend-Taller/internal/dto"
	"github.com/Crissancio/Backend-Taller/internal/model"
	"github.com/Crissancio/Backend-Taller/internal/repository"

	"gorm.io/gorm"
)

// NotificacionService serves the in-app inbox of the authenticated user and
// the per-event channel preferences.
type NotificacionService interface {
	Listar(ctx context.Context, alc Alcance, filter dto.NotificacionFilter) ([]dto.NotificacionResponse, error)
	MarcarLeida(ctx context.Context, alc Alcance, id uint) error
	MarcarTodasLeidas(ctx context.Context, alc Alcance) (int64, error)
	ListarPreferencias(ctx context.Context, alc Alcance) ([]dto.PreferenciaResponse, error)
	ActualizarPreferencia(ctx context.Context, alc Alcance, req dto.PreferenciaRequest) (*dto.PreferenciaResponse, error)
	// Canales resolves the effective channels for one user and event type.
	Canales(ctx context.Context, usuarioID uint, tipoEvento string) (app, email bool, err error)
}

type notificacionService struct {
	repo repository.NotificacionRepository
}

func NewNotificacionService(repo repository.NotificacionRepository) NotificacionService {
	return &notificacionService{repo: repo}
}

func preferenciaPorDefecto(usuarioID uint, tipo string) model.PreferenciaNotificacion {
	return model.PreferenciaNotificacion{UsuarioID: usuarioID, TipoEvento: tipo, RecibirApp: true}
}

func notificacionToResponse(n *model.Notificacion) dto.NotificacionResponse {
	return dto.NotificacionResponse{
		ID:           n.ID,
		Tipo:         n.Tipo,
		Canal:        n.Canal,
		Mensaje:      n.Mensaje,
		ReferenciaID: n.ReferenciaID,
		Leido:        n.Leido,
		Fecha:        n.Fecha,
	}
}

func (s *notificacionService) Listar(ctx context.Context, alc Alcance, filter dto.NotificacionFilter) ([]dto.NotificacionResponse, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	list, err := s.repo.ListByUsuario(ctx, alc.UsuarioID, filter.SoloNoLeidas, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.NotificacionResponse, len(list))
	for i := range list {
		out[i] = notificacionToResponse(&list[i])
	}
	return out, nil
}

func (s *notificacionService) MarcarLeida(ctx context.Context, alc Alcance, id uint) error {
	return noEncontrado(s.repo.MarcarLeida(ctx, alc.UsuarioID, id), "notificacion", id)
}

func (s *notificacionService) MarcarTodasLeidas(ctx context.Context, alc Alcance) (int64, error) {
	return s.repo.MarcarTodasLeidas(ctx, alc.UsuarioID)
}

func (s *notificacionService) ListarPreferencias(ctx context.Context, alc Alcance) ([]dto.PreferenciaResponse, error) {
	guardadas, err := s.repo.ListPreferencias(ctx, alc.UsuarioID)
	if err != nil {
		return nil, err
	}
	porTipo := make(map[string]model.PreferenciaNotificacion, len(guardadas))
	for _, p := range guardadas {
		porTipo[p.TipoEvento] = p
	}
	out := make([]dto.PreferenciaResponse, 0, len(model.TiposEvento))
	for _, tipo := range model.TiposEvento {
		p, ok := porTipo[tipo]
		if !ok {
			p = preferenciaPorDefecto(alc.UsuarioID, tipo)
		}
		out = append(out, dto.PreferenciaResponse{TipoEvento: tipo, RecibirApp: p.RecibirApp, RecibirEmail: p.RecibirEmail})
	}
	return out, nil
}

func (s *notificacionService) ActualizarPreferencia(ctx context.Context, alc Alcance, req dto.PreferenciaRequest) (*dto.PreferenciaResponse, error) {
	if req.RecibirApp == nil || req.RecibirEmail == nil {
		return nil, invalido("recibir_app y recibir_email son requeridos")
	}
	p := &model.PreferenciaNotificacion{
		UsuarioID:    alc.UsuarioID,
		TipoEvento:   req.TipoEvento,
		RecibirApp:   *req.RecibirApp,
		RecibirEmail: *req.RecibirEmail,
	}
	if err := s.repo.UpsertPreferencia(ctx, p); err != nil {
		return nil, err
	}
	return &dto.PreferenciaResponse{TipoEvento: p.TipoEvento, RecibirApp: p.RecibirApp, RecibirEmail: p.RecibirEmail}, nil
}

func (s *notificacionService) Canales(ctx context.Context, usuarioID uint, tipoEvento string) (bool, bool, error) {
	p, err := s.repo.FindPreferencia(ctx, usuarioID, tipoEvento)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		d := preferenciaPorDefecto(usuarioID, tipoEvento)
		return d.RecibirApp, d.RecibirEmail, nil
	}
	if err != nil {
		return false, false, err
	}
	return p.RecibirApp, p.RecibirEmail, nil
}
