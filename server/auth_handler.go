package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"rhythmfm/core/auth"
	"rhythmfm/logger"
	"rhythmfm/model"
	"rhythmfm/repository"
)

type contextKey string

const (
	contextKeyUserID contextKey = "userID"
	contextKeyRole   contextKey = "role"
)

// userIDFrom extracts the authenticated user ID placed by AuthMiddleware.
func userIDFrom(r *http.Request) (int64, bool) {
	id, ok := r.Context().Value(contextKeyUserID).(int64)
	return id, ok
}

func roleFrom(r *http.Request) string {
	role, _ := r.Context().Value(contextKeyRole).(string)
	return role
}

// AuthMiddleware validates the Bearer token and stores the caller's
// identity in the request context.
func (h *APIHandler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "Authentication credentials were not provided")
			return
		}

		claims, err := auth.ParseToken(h.cfg.JWTSecret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUserID, claims.UserID)
		ctx = context.WithValue(ctx, contextKeyRole, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireBroadcaster gates upload endpoints to broadcaster and admin roles.
func (h *APIHandler) requireBroadcaster(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := roleFrom(r)
		if role != model.RoleBroadcaster && role != model.RoleAdmin {
			writeError(w, http.StatusForbidden, msgPermissionDenied)
			return
		}
		next(w, r)
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// RegisterHandler creates an account and returns a fresh access token.
func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	fieldErrors := map[string]string{}
	if req.Email == "" {
		fieldErrors["email"] = "This field is required"
	}
	if len(req.Password) < 8 {
		fieldErrors["password"] = "Password must be at least 8 characters"
	}
	if len(fieldErrors) > 0 {
		writeErrorDetails(w, http.StatusBadRequest, "Validation failed", fieldErrors)
		return
	}

	existing, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		logger.Error("failed to look up user by email", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	if existing != nil {
		writeErrorDetails(w, http.StatusBadRequest, "Validation failed",
			map[string]string{"email": "A user with this email already exists"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.Error("failed to hash password", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	role := model.RoleCustomer
	if req.Role == model.RoleBroadcaster {
		role = model.RoleBroadcaster
	}

	user := &model.User{Email: req.Email, PasswordHash: hash, Role: role}
	id, err := h.users.CreateUser(r.Context(), user)
	if err != nil {
		logger.Error("failed to create user", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	user.ID = id

	token, err := auth.GenerateToken(h.cfg.JWTSecret, user.ID, user.Email, user.Role, h.cfg.JWTExpiry)
	if err != nil {
		logger.Error("failed to generate token", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	logger.Info("user registered", logger.Int64("userId", user.ID), logger.String("role", user.Role))
	writeSuccess(w, http.StatusCreated, "User registered successfully", authResponse{Token: token, User: user})
}

// LoginHandler authenticates by email and password.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		logger.Error("failed to look up user by email", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	if user == nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := auth.GenerateToken(h.cfg.JWTSecret, user.ID, user.Email, user.Role, h.cfg.JWTExpiry)
	if err != nil {
		logger.Error("failed to generate token", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	writeSuccess(w, http.StatusOK, "Login successful", authResponse{Token: token, User: user})
}

// MeHandler returns the authenticated user with their listening profile.
func (h *APIHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication credentials were not provided")
		return
	}

	user, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil {
		logger.Error("failed to load user", logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	profile, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		logger.Error("failed to load profile", logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	writeSuccess(w, http.StatusOK, msgDataRetrieved, map[string]interface{}{
		"user":    user,
		"profile": profile,
	})
}

type updateProfileRequest struct {
	Language          *string  `json:"language,omitempty"`
	Bio               *string  `json:"bio,omitempty"`
	ImageURL          *string  `json:"image_url,omitempty"`
	FavoriteArtistIDs *[]int64 `json:"favorite_artist_ids,omitempty"`
}

func supportedLocale(locale string) bool {
	for _, candidate := range model.SupportedLocales {
		if candidate == locale {
			return true
		}
	}
	return false
}

// UpdateProfileHandler applies a partial update to the caller's listening
// profile: locale, bio, image and the favorite-artist set. The home feed
// picks the changes up on its next cache miss.
func (h *APIHandler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r)

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Language != nil && !supportedLocale(*req.Language) {
		writeErrorDetails(w, http.StatusBadRequest, "Validation failed",
			map[string]string{"language": "Unsupported language"})
		return
	}

	update := repository.ProfileUpdate{
		Language: req.Language,
		Bio:      req.Bio,
		ImageURL: req.ImageURL,
	}
	if err := h.users.UpdateProfile(r.Context(), userID, update); err != nil {
		logger.Error("failed to update profile", logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	if req.FavoriteArtistIDs != nil {
		if err := h.users.SetFavoriteArtists(r.Context(), userID, *req.FavoriteArtistIDs); err != nil {
			logger.Error("failed to set favorite artists", logger.Int64("userId", userID), logger.ErrorField(err))
			writeError(w, http.StatusInternalServerError, msgInternalError)
			return
		}
	}

	profile, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		logger.Error("failed to load profile", logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	writeSuccess(w, http.StatusOK, "Updated successfully", profile)
}
