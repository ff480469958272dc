package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Crissancio/Backend-Taller/internal/config"
	"github.com/Crissancio/Backend-Taller/internal/dto"
	"github.com/Crissancio/Backend-Taller/internal/model"
	"github.com/Crissancio/Backend-Taller/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Token kinds carried in the "tipo" claim. Protected routes only accept access tokens.
const (
	TokenAcceso  = "access"
	TokenRefresh = "refresh"
)

const bcryptCost = 12

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	CrearUsuario(ctx context.Context, alc Alcance, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error)
	ListarUsuarios(ctx context.Context, alc Alcance) ([]dto.UsuarioResponse, error)
	DesactivarUsuario(ctx context.Context, alc Alcance, id uint) error
	Me(ctx context.Context, alc Alcance) (*dto.UsuarioResponse, error)
}

type authService struct {
	repo             repository.UsuarioRepository
	microempresaRepo repository.MicroempresaRepository
	limites          LimitesPlan
	cfg              *config.Config
}

// NewAuthService accepts nil limites; user creation is then never capped by a plan.
func NewAuthService(repo repository.UsuarioRepository, microempresaRepo repository.MicroempresaRepository, limites LimitesPlan, cfg *config.Config) AuthService {
	return &authService{repo: repo, microempresaRepo: microempresaRepo, limites: limites, cfg: cfg}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func usuarioToResponse(u *model.Usuario) dto.UsuarioResponse {
	return dto.UsuarioResponse{
		ID:             u.ID,
		MicroempresaID: u.MicroempresaID,
		Nombre:         u.Nombre,
		Email:          u.Email,
		Rol:            u.Rol,
		Activo:         u.Activo,
	}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCredenciales
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrCredenciales
	}
	if !user.Activo {
		return nil, ErrCredenciales
	}
	if user.Microempresa != nil && !user.Microempresa.Activo {
		return nil, fmt.Errorf("la microempresa esta desactivada: %w", ErrPermisoDenegado)
	}
	return s.emitirTokens(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("refresh token invalido o expirado: %w", ErrCredenciales)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["tipo"] != TokenRefresh {
		return nil, fmt.Errorf("token mal formado: %w", ErrCredenciales)
	}
	// JSON numbers decode as float64.
	raw, ok := claims["user_id"].(float64)
	if !ok || raw <= 0 {
		return nil, fmt.Errorf("token mal formado: %w", ErrCredenciales)
	}

	user, err := s.repo.FindByID(ctx, uint(raw))
	if err != nil || !user.Activo {
		return nil, fmt.Errorf("usuario no encontrado o inactivo: %w", ErrCredenciales)
	}
	if user.MicroempresaID != nil {
		m, err := s.microempresaRepo.FindByID(ctx, *user.MicroempresaID)
		if err != nil || !m.Activo {
			return nil, fmt.Errorf("la microempresa esta desactivada: %w", ErrPermisoDenegado)
		}
	}
	return s.emitirTokens(user)
}

func (s *authService) emitirTokens(user *model.Usuario) (*dto.LoginResponse, error) {
	accessToken, err := s.generateToken(user, TokenAcceso, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(user, TokenRefresh, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         usuarioToResponse(user),
	}, nil
}

func (s *authService) generateToken(user *model.Usuario, tipo string, duration time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":         user.ID,
		"rol":             user.Rol,
		"microempresa_id": user.MicroempresaID,
		"tipo":            tipo,
		"exp":             now.Add(duration).Unix(),
		"iat":             now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// CrearUsuario: a superadmin may create any user; an admin only creates admin
// or vendedor users inside its own business.
func (s *authService) CrearUsuario(ctx context.Context, alc Alcance, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error) {
	var mid *uint
	switch alc.Rol {
	case model.RolSuperadmin:
		if req.Rol != model.RolSuperadmin {
			if req.MicroempresaID == nil {
				return nil, invalido("microempresa_id requerido para usuarios de una microempresa")
			}
			if _, err := s.microempresaRepo.FindByID(ctx, *req.MicroempresaID); err != nil {
				return nil, noEncontrado(err, "microempresa", *req.MicroempresaID)
			}
			mid = req.MicroempresaID
		}
	case model.RolAdmin:
		if req.Rol == model.RolSuperadmin {
			return nil, fmt.Errorf("un admin no puede crear superadmins: %w", ErrPermisoDenegado)
		}
		if req.MicroempresaID != nil && *req.MicroempresaID != alc.MicroempresaID {
			return nil, ErrFueraDeAlcance
		}
		mid = ptrUint(alc.MicroempresaID)
	default:
		return nil, ErrPermisoDenegado
	}
	if mid != nil && s.limites != nil {
		if err := s.limites.VerificarUsuario(ctx, *mid, req.Rol); err != nil {
			return nil, err
		}
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	existe, err := s.repo.ExistsEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existe {
		return nil, fmt.Errorf("el email %s ya esta registrado: %w", email, ErrConflicto)
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &model.Usuario{
		MicroempresaID: mid,
		Nombre:         req.Nombre,
		Email:          email,
		PasswordHash:   hash,
		Rol:            req.Rol,
		Activo:         true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	resp := usuarioToResponse(user)
	return &resp, nil
}

func (s *authService) ListarUsuarios(ctx context.Context, alc Alcance) ([]dto.UsuarioResponse, error) {
	var filtro *uint
	if !alc.EsSuperadmin() || alc.MicroempresaID != 0 {
		filtro = ptrUint(alc.MicroempresaID)
	}
	users, err := s.repo.List(ctx, filtro)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.UsuarioResponse, len(users))
	for i := range users {
		resp[i] = usuarioToResponse(&users[i])
	}
	return resp, nil
}

func (s *authService) DesactivarUsuario(ctx context.Context, alc Alcance, id uint) error {
	if id == alc.UsuarioID {
		return invalido("no puede desactivar su propio usuario")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return noEncontrado(err, "usuario", id)
	}
	if !alc.EsSuperadmin() {
		if user.MicroempresaID == nil || *user.MicroempresaID != alc.MicroempresaID {
			return ErrFueraDeAlcance
		}
	}
	return noEncontrado(s.repo.SetActivo(ctx, id, false), "usuario", id)
}

func (s *authService) Me(ctx context.Context, alc Alcance) (*dto.UsuarioResponse, error) {
	user, err := s.repo.FindByID(ctx, alc.UsuarioID)
	if err != nil {
		return nil, noEncontrado(err, "usuario", alc.UsuarioID)
	}
	resp := usuarioToResponse(user)
	return &resp, nil
}
