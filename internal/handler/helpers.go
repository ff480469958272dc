package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"

	"github.com/Crissancio/Backend-Taller/internal/apierror"
	"github.com/Crissancio/Backend-Taller/internal/middleware"
	"github.com/Crissancio/Backend-Taller/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	return runValidation(c, req)
}

// bindQuery is bindAndValidate for query-string filters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parametros invalidos: "+err.Error()))
		return false
	}
	return runValidation(c, req)
}

func runValidation(c *gin.Context, req interface{}) bool {
	err := validate.Struct(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return false
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
	return false
}

// respondError maps service errors to HTTP status codes. Anything unknown is
// attached to the context for ErrorHandler and answered with a generic 500.
func respondError(c *gin.Context, err error) {
	var stockErr *service.StockInsuficienteError
	if errors.As(err, &stockErr) {
		faltantes := make([]apierror.Faltante, len(stockErr.Faltantes))
		for i, f := range stockErr.Faltantes {
			faltantes[i] = apierror.Faltante{
				ProductoID: f.ProductoID,
				Producto:   f.Producto,
				Solicitado: f.Solicitado,
				Disponible: f.Disponible,
			}
		}
		c.JSON(http.StatusConflict, apierror.NewStock(faltantes))
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNoEncontrado):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrFueraDeAlcance), errors.Is(err, service.ErrPermisoDenegado):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrValidacion):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrTransicionInvalida), errors.Is(err, service.ErrConflicto):
		status = http.StatusConflict
	case errors.Is(err, service.ErrCredenciales):
		status = http.StatusUnauthorized
	}
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, apierror.New("Error interno del servidor"))
		return
	}
	c.JSON(status, apierror.New(err.Error()))
}

// parseID reads a positive integer path parameter.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return 0, false
	}
	return uint(id), true
}

// alcance builds the caller scope from the JWT. Non-superadmins are bound to
// their own business; a superadmin names the target with ?microempresa_id=.
func alcance(c *gin.Context) (service.Alcance, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Autenticacion requerida"))
		return service.Alcance{}, false
	}
	alc := service.Alcance{UsuarioID: claims.UserID, Rol: claims.Rol}
	if !alc.EsSuperadmin() {
		if claims.MicroempresaID == nil {
			c.JSON(http.StatusForbidden, apierror.New("Usuario sin microempresa asignada"))
			return service.Alcance{}, false
		}
		alc.MicroempresaID = *claims.MicroempresaID
		return alc, true
	}
	if raw := c.Query("microempresa_id"); raw != "" {
		mid, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || mid == 0 {
			c.JSON(http.StatusBadRequest, apierror.New("microempresa_id invalido"))
			return service.Alcance{}, false
		}
		alc.MicroempresaID = uint(mid)
	}
	return alc, true
}
