package v1

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	catalogdomain "pricetrack/internal/catalog/domain"
	shareddomain "pricetrack/internal/shared/domain"
)

// APIError corps d'erreur retourné au client
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ErrorEnvelope enveloppe {"error": {...}}
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// PageMeta métadonnées de pagination
type PageMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func newPageMeta(p shareddomain.Page, total int) PageMeta {
	pages := 0
	if p.Size() > 0 {
		pages = (total + p.Size() - 1) / p.Size()
	}
	return PageMeta{Page: p.Number(), Limit: p.Size(), Total: total, TotalPages: pages}
}

func respondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{Message: msg, Code: code},
	})
}

// statusFor associe une catégorie d'erreur à un statut HTTP
func statusFor(kind shareddomain.ErrorKind) int {
	switch kind {
	case shareddomain.KindInvalidInput:
		return http.StatusBadRequest
	case shareddomain.KindInvalidReference:
		return http.StatusNotFound
	case shareddomain.KindConstraintViolation:
		return http.StatusConflict
	case shareddomain.KindTransientStore:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError traduit une erreur de service; les erreurs internes ne sont pas exposées
func respondServiceError(c *gin.Context, err error) {
	var e *shareddomain.Error
	if !errors.As(err, &e) {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "internal", errors.New("internal server error"))
		return
	}

	status := statusFor(e.Kind)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	respondError(c, status, string(e.Kind), errors.New(e.Message))
}

func badRequest(c *gin.Context, format string, args ...interface{}) {
	respondServiceError(c, shareddomain.InvalidInput("http", format, args...))
}

func parseID(c *gin.Context, param string) (int64, bool) {
	raw := c.Param(param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid %s %q", param, raw)
		return 0, false
	}
	return id, true
}

func finalProductParam(c *gin.Context) (catalogdomain.FinalProductID, bool) {
	id, ok := parseID(c, "id")
	return catalogdomain.FinalProductID(id), ok
}

// queryInt lit un entier optionnel; une valeur absente donne def
func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, "invalid %s %q", name, raw)
		return 0, false
	}
	return v, true
}

func queryFloat(c *gin.Context, name string, def float64) (float64, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		badRequest(c, "invalid %s %q", name, raw)
		return 0, false
	}
	return v, true
}

// pagination lit page et limit; les valeurs hors bornes sont ramenées par le domaine
func pagination(c *gin.Context) (page, limit int, ok bool) {
	if page, ok = queryInt(c, "page", 1); !ok {
		return 0, 0, false
	}
	if limit, ok = queryInt(c, "limit", shareddomain.DefaultPageSize); !ok {
		return 0, 0, false
	}
	return page, limit, true
}

// parseIDList lit "1,2,3"
func parseIDList(raw string) ([]catalogdomain.FinalProductID, error) {
	var ids []catalogdomain.FinalProductID
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, shareddomain.InvalidInput("http", "invalid final product id %q", part)
		}
		ids = append(ids, catalogdomain.FinalProductID(id))
	}
	return ids, nil
}

func sendCSV(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}
