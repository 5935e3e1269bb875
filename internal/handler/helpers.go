package handler

import (
	"errors"
	"net/http"
	"reflect"

	"cajaflow/internal/apierror"
	"cajaflow/internal/service"

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
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// writeServiceError maps the service error taxonomy onto HTTP statuses:
// conflicts are reported distinctly so clients can retry deliberately.
func writeServiceError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, service.ErrSesionYaAbierta), errors.Is(err, service.ErrConflicto):
		status = http.StatusConflict
	case errors.Is(err, service.ErrNoAutorizado), errors.Is(err, service.ErrNoEsPropietario):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrCajaNoEncontrada),
		errors.Is(err, service.ErrCierreNoEncontrado),
		errors.Is(err, service.ErrNoSesionAbierta):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrEstadoInvalido):
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, apierror.New(err.Error()))
}
