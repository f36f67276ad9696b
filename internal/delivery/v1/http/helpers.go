package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/jimlawless/whereami"
)

const maxJSONBody = 1 << 20

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func NewErrorResponse(code int, message, field string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
		Field:   field,
	}
}

// ToHTTPResponse переводит ошибку операции в код ответа, сообщение и поле для ошибок валидации.
func ToHTTPResponse(err error) (int, string, string) {
	if v, ok := e.AsValidation(err); ok {
		return http.StatusBadRequest, v.Error(), v.Field
	}

	switch {
	case errors.Is(err, e.ErrInvalidCredentials):
		return http.StatusUnauthorized, e.ErrInvalidCredentials.Error(), ""
	case errors.Is(err, e.ErrUnauthenticated):
		return http.StatusUnauthorized, e.ErrUnauthenticated.Error(), ""
	case errors.Is(err, e.ErrForbidden):
		return http.StatusForbidden, e.ErrForbidden.Error(), ""
	case errors.Is(err, e.ErrNotFound):
		return http.StatusNotFound, e.ErrNotFound.Error(), ""
	case errors.Is(err, e.ErrOutOfStock):
		return http.StatusConflict, e.ErrOutOfStock.Error(), ""
	case errors.Is(err, e.ErrConflict):
		return http.StatusConflict, e.ErrConflict.Error(), ""
	case errors.Is(err, e.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, e.ErrFileTooLarge.Error(), ""
	case errors.Is(err, e.ErrExpectedMultipart):
		return http.StatusBadRequest, e.ErrExpectedMultipart.Error(), ""
	case errors.Is(err, e.ErrNoImages):
		return http.StatusBadRequest, e.ErrNoImages.Error(), ""
	case errors.Is(err, e.ErrStatusBadRequest):
		return http.StatusBadRequest, e.ErrStatusBadRequest.Error(), ""
	case errors.Is(err, e.ErrTransientIO):
		return http.StatusServiceUnavailable, e.ErrTransientIO.Error(), ""
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error(), ""
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg, field := ToHTTPResponse(err)
	WriteSuccess(w, code, NewErrorResponse(code, msg, field))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeJSON читает тело запроса в dst. Неизвестные поля и мусор после объекта отклоняются.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return e.Wrap(whereami.WhereAmI(), errors.Join(e.ErrStatusBadRequest, err))
	}
	if dec.More() {
		return e.Wrap(whereami.WhereAmI(), e.ErrStatusBadRequest)
	}

	return nil
}

func ensureMultipartForm(r *http.Request, maxMemory int64) error {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return e.Wrap(whereami.WhereAmI(), e.ErrExpectedMultipart)
	}

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return e.Wrap(whereami.WhereAmI(), e.ErrFileTooLarge)
		}
		return e.Wrap(whereami.WhereAmI(), errors.Join(e.ErrStatusBadRequest, err))
	}

	return nil
}

// parseImage читает единственный файл формы. Тип определяется по содержимому, а не по заголовку клиента.
func parseImage(files []*multipart.FileHeader, maxSize int64) (*usecase.ProductImage, error) {
	if len(files) == 0 {
		return nil, e.ErrNoImages
	}

	fh := files[0]
	data, mimeType, err := readFile(fh, maxSize)
	if err != nil {
		return nil, err
	}

	return usecase.NewProductImage(data, mimeType, int64(len(data)), fh.Filename), nil
}

func readFile(fh *multipart.FileHeader, maxSize int64) ([]byte, string, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, "", e.Wrap(whereami.WhereAmI(), err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxSize+1))
	if err != nil {
		return nil, "", e.Wrap(whereami.WhereAmI(), err)
	}
	if int64(len(data)) > maxSize {
		return nil, "", e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	mimeType := http.DetectContentType(data[:min(len(data), 512)])
	return data, mimeType, nil
}
