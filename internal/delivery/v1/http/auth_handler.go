package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

const sseKeepAlive = 25 * time.Second

// SessionSubscriber - источник событий входа и выхода пользователя.
type SessionSubscriber interface {
	Subscribe(userID string) (<-chan domain.SessionEvent, func())
}

type AuthHandler struct {
	authUC   usecase.AuthUC
	sessions SessionSubscriber
	logger   logger.Logger
}

func NewAuthHandler(authUC usecase.AuthUC, sessions SessionSubscriber, logger logger.Logger) *AuthHandler {
	return &AuthHandler{authUC: authUC, sessions: sessions, logger: logger}
}

// signUp
//
//	@Summary		Регистрация
//	@Description	Создаёт учётную запись и профиль, возвращает токен сессии
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SignUpRequest	true	"Данные регистрации"
//	@Success		201		{object}	SessionResponse
//	@Failure		400		{object}	ErrorResponse	"Ошибка валидации"
//	@Failure		409		{object}	ErrorResponse	"Email или имя заняты"
//	@Router			/auth/signup [post]
func (h *AuthHandler) signUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	res, err := h.authUC.SignUp(r.Context(), &usecase.SignUpReq{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
	})
	if err != nil {
		h.logger.Warnf("signup: %s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toSessionResponse(res))
}

// signIn
//
//	@Summary		Вход
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SignInRequest	true	"Email и пароль"
//	@Success		200		{object}	SessionResponse
//	@Failure		401		{object}	ErrorResponse	"Неверные учётные данные"
//	@Router			/auth/signin [post]
func (h *AuthHandler) signIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	res, err := h.authUC.SignIn(r.Context(), &usecase.SignInReq{Email: req.Email, Password: req.Password})
	if err != nil {
		h.logger.Debugf("signin: %s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toSessionResponse(res))
}

// signOut
//
//	@Summary	Выход
//	@Tags		auth
//	@Security	BearerAuth
//	@Success	204
//	@Failure	401	{object}	ErrorResponse
//	@Router		/auth/signout [post]
func (h *AuthHandler) signOut(w http.ResponseWriter, r *http.Request) {
	if err := h.authUC.SignOut(r.Context()); err != nil {
		WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// currentSession
//
//	@Summary	Текущая сессия
//	@Tags		auth
//	@Produce	json
//	@Success	200	{object}	CurrentSessionResponse
//	@Router		/auth/session [get]
func (h *AuthHandler) currentSession(w http.ResponseWriter, r *http.Request) {
	identity, err := h.authUC.CurrentSession(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	res := CurrentSessionResponse{}
	if identity != nil {
		res.Session = &IdentityResponse{UserID: identity.UserID, Email: identity.Email}
	}

	WriteSuccess(w, http.StatusOK, res)
}

// events отдаёт поток Server-Sent Events о входах и выходах текущего пользователя.
//
//	@Summary	Поток событий сессии
//	@Tags		auth
//	@Security	BearerAuth
//	@Produce	text/event-stream
//	@Success	200
//	@Failure	401	{object}	ErrorResponse
//	@Router		/auth/events [get]
func (h *AuthHandler) events(w http.ResponseWriter, r *http.Request) {
	identity, err := h.authUC.CurrentSession(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	if identity == nil {
		WriteError(w, e.ErrUnauthenticated)
		return
	}

	rc := http.NewResponseController(w)
	// Поток живёт дольше WriteTimeout сервера
	_ = rc.SetWriteDeadline(time.Time{})

	events, unsubscribe := h.sessions.Subscribe(identity.UserID)
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		h.logger.Errorf(err, "session stream for %s: flush not supported", identity.UserID)
		return
	}

	ticker := time.NewTicker(sseKeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
		case ev, ok := <-events:
			if !ok {
				return
			}

			data, err := json.Marshal(toSessionEventResponse(ev))
			if err != nil {
				h.logger.Errorf(err, "session stream for %s: marshal event", identity.UserID)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind, data); err != nil {
				return
			}
		}

		if err := rc.Flush(); err != nil {
			return
		}
	}
}
