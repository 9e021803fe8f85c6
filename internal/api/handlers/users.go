package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/taiyeoguns/gen-ai-llm-api/internal/apperrors"
	"github.com/taiyeoguns/gen-ai-llm-api/internal/models"
	"github.com/taiyeoguns/gen-ai-llm-api/internal/repositories"
	"github.com/taiyeoguns/gen-ai-llm-api/internal/utils"
)

const maxBodyBytes = 1 << 20

var errNoSession = errors.New("no database session in request context")

type UsersResponse struct {
	Users []models.User `json:"users"`
}

type UserResponse struct {
	User models.User `json:"user"`
}

type CreatedResponse struct {
	User uuid.UUID `json:"user" swaggertype:"string" format:"uuid"`
}

type UserHandler struct {
	store repositories.UserRepository
	log   logrus.FieldLogger
}

func NewUserHandler(store repositories.UserRepository, log logrus.FieldLogger) *UserHandler {
	return &UserHandler{store: store, log: log}
}

// ListUsers godoc
// @Summary      List users
// @Description  Returns every user in creation order.
// @Tags         users
// @Produce      json
// @Success      200  {object}  UsersResponse
// @Failure      401  {object}  utils.Payload
// @Failure      500  {object}  utils.Payload
// @Security     BearerAuth
// @Router       /users [get]
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	h.log.Info("getting all users...")

	s, ok := repositories.SessionFromContext(r.Context())
	if !ok {
		h.fail(w, r, errNoSession)
		return
	}

	users, err := h.store.List(r.Context(), s)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, UsersResponse{Users: users})
}

// GetUser godoc
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Param        user_id  path      string  true  "User UUID"
// @Success      200      {object}  UserResponse
// @Failure      400      {object}  utils.Payload
// @Failure      401      {object}  utils.Payload
// @Failure      404      {object}  utils.Payload
// @Failure      500      {object}  utils.Payload
// @Security     BearerAuth
// @Router       /user/{user_id} [get]
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	h.log.Info("getting user...")

	s, ok := repositories.SessionFromContext(r.Context())
	if !ok {
		h.fail(w, r, errNoSession)
		return
	}

	u, err := h.store.Get(r.Context(), s, r.PathValue("user_id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, UserResponse{User: *u})
}

// CreateUser godoc
// @Summary      Create a user
// @Description  Creates a user and returns its UUID.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        user  body      models.UserSchema  true  "New user"
// @Success      200   {object}  CreatedResponse
// @Failure      400   {object}  utils.Payload
// @Failure      401   {object}  utils.Payload
// @Failure      409   {object}  utils.Payload
// @Failure      413   {object}  utils.Payload
// @Failure      500   {object}  utils.Payload
// @Security     BearerAuth
// @Router       /users [post]
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	h.log.Info("creating user...")

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var in models.UserSchema
	if err := dec.Decode(&in); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.ErrorResponse(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large", nil)
			return
		}
		h.fail(w, r, apperrors.Validation("Invalid input", map[string]string{"body": err.Error()}))
		return
	}
	if dec.More() {
		h.fail(w, r, apperrors.Validation("Invalid input", map[string]string{"body": "unexpected data after JSON object"}))
		return
	}

	in.Normalize()
	if err := in.Validate(); err != nil {
		h.fail(w, r, err)
		return
	}

	s, ok := repositories.SessionFromContext(r.Context())
	if !ok {
		h.fail(w, r, errNoSession)
		return
	}

	u, err := h.store.Create(r.Context(), s, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.log.WithField("uuid", u.UUID.String()).Debug("user created")
	utils.JSONResponse(w, http.StatusOK, CreatedResponse{User: u.UUID})
}

// fail renders domain errors as-is. Anything else is logged and hidden
// behind a generic 500.
func (h *UserHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	de, ok := apperrors.As(err)
	if !ok || de.Kind == apperrors.KindStorage {
		h.log.WithError(err).WithFields(logrus.Fields{"method": r.Method, "path": r.URL.Path}).Error("request failed")
		utils.ErrorResponse(w, http.StatusInternalServerError, string(apperrors.KindStorage), "Internal server error", nil)
		return
	}
	utils.ErrorResponse(w, de.HTTPStatus(), string(de.Kind), de.Message, de.Details)
}
