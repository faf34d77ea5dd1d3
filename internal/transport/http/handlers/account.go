package http_handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/account"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/logger"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/dto"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/response"
)

type AccountHandler struct {
	svc *account.Service
}

func NewAccountHandler(svc *account.Service) *AccountHandler {
	return &AccountHandler{svc: svc}
}

// ListUsers handles GET /users
func (h *AccountHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.ListAccounts(r.Context())
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	out := dto.ListUsersResponse{Users: make([]dto.UserView, 0, len(accounts))}
	for _, a := range accounts {
		out.Users = append(out.Users, dto.NewUserView(a))
	}
	response.WriteJSON(w, http.StatusOK, out)
}

// LookupUserID handles GET /user-id?email=
func (h *AccountHandler) LookupUserID(w http.ResponseWriter, r *http.Request) {
	id, err := h.svc.LookupIDByEmail(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, dto.UserIDResponse{User: id})
}

// CreateUser handles POST /users
func (h *AccountHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.CreateAccount(r.Context(), account.CreateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Username:  req.Username,
		Role:      req.Role,
	})
	if err != nil {
		if res.Created {
			// row committed, invite not delivered
			logger.WithCtx(r.Context()).Warn().
				Int64("user_id", res.ID).
				Msg("account created without invite")
		}
		response.WriteError(w, r, err)
		return
	}
	if !res.Created {
		response.Soft(w, domain.ErrUsernameAlreadyExists())
		return
	}

	response.WriteJSON(w, http.StatusCreated, dto.CreateUserResponse{
		Message: "User created successfully.",
		UserID:  res.ID,
	})
}

// SetPassword handles POST /set-password
func (h *AccountHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.SetPasswordRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.svc.RedeemSetupToken(r.Context(), req.Token, req.Password); err != nil {
		writeOutcome(w, r, err, domain.CodeSetupTokenInvalid)
		return
	}
	response.Message(w, http.StatusOK, "Password set successfully")
}

// UpdateUser handles PUT /users
func (h *AccountHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateUserRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	p, err := h.svc.UpdateProfile(r.Context(), domain.Profile{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, dto.UpdateUserResponse{
		Message: "User updated successfully",
		User: dto.ProfileView{
			FirstName: p.FirstName,
			LastName:  p.LastName,
			Email:     p.Email,
		},
	})
}

// ChangePassword handles POST /change-password
func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ChangePasswordRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	err := h.svc.ChangePassword(r.Context(), int64(req.UserID), req.CurrentPassword, req.NewPassword)
	if err != nil {
		writeOutcome(w, r, err, domain.CodeCurrentPasswordIncorrect)
		return
	}
	response.Message(w, http.StatusOK, "Password updated successfully.")
}

// ToggleVerification handles PATCH /users/{id}/verify
func (h *AccountHandler) ToggleVerification(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(strings.TrimSpace(chi.URLParam(r, "id")), 10, 64)
	if err != nil {
		response.WriteError(w, r, domain.ErrInvalidField("id", "must be an integer"))
		return
	}

	verified, err := h.svc.ToggleVerification(r.Context(), id)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, dto.ToggleVerificationResponse{
		Message:    "User verification status toggled",
		IsVerified: verified,
	})
}

// Role handles GET /role?token=
func (h *AccountHandler) Role(w http.ResponseWriter, r *http.Request) {
	role, err := h.svc.LookupRoleByToken(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, dto.RoleResponse{Role: role})
}

// writeOutcome reports softCode as a 200 with message; anything else is an error.
func writeOutcome(w http.ResponseWriter, r *http.Request, err error, softCode string) {
	var de *domain.Error
	if errors.As(err, &de) && de.Code == softCode {
		response.Soft(w, de)
		return
	}
	response.WriteError(w, r, err)
}
