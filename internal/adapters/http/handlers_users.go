package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adhassan/salescast/internal/core/domain"
)

func pathSuffix(path, prefix string) string {
	return strings.TrimPrefix(path, prefix)
}

func (rt *Router) listUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	users, err := rt.users.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (rt *Router) userByID(w http.ResponseWriter, r *http.Request) {
	id := pathSuffix(r.URL.Path, "/v1/admin/users/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user id is required"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		rt.getUser(w, r, id)
	case http.MethodPatch:
		rt.patchUser(w, r, id)
	case http.MethodDelete:
		rt.deleteUser(w, r, id)
	default:
		methodNotAllowed(w)
	}
}

func (rt *Router) getUser(w http.ResponseWriter, r *http.Request, id string) {
	user, err := rt.users.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (rt *Router) patchUser(w http.ResponseWriter, r *http.Request, id string) {
	var patch domain.UserPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if patch.Role != nil && *patch.Role != domain.RoleAdmin && *patch.Role != domain.RoleUser {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown role"})
		return
	}

	user, err := rt.users.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	patch.Apply(user)
	user.UpdatedAt = time.Now().UTC()

	if err := rt.users.Update(r.Context(), user); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (rt *Router) deleteUser(w http.ResponseWriter, r *http.Request, id string) {
	identity := identityFromContext(r.Context())
	if identity != nil && identity.UserID == id {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cannot delete own account"})
		return
	}

	if err := rt.users.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (rt *Router) rolesCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		roles, err := rt.roles.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, roles)
	case http.MethodPost:
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "role name is required"})
			return
		}
		role := &domain.Role{ID: uuid.NewString(), Name: strings.TrimSpace(req.Name)}
		if err := rt.roles.Create(r.Context(), role); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, role)
	default:
		methodNotAllowed(w)
	}
}

func (rt *Router) roleByID(w http.ResponseWriter, r *http.Request) {
	id := pathSuffix(r.URL.Path, "/v1/admin/roles/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "role id is required"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		role, err := rt.roles.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, role)
	case http.MethodPut:
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "role name is required"})
			return
		}
		role := &domain.Role{ID: id, Name: strings.TrimSpace(req.Name)}
		if err := rt.roles.Update(r.Context(), role); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, role)
	case http.MethodDelete:
		if err := rt.roles.Delete(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w)
	}
}
